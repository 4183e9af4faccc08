package region

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

const (
	CollisionTile = "tile"
	CollisionMesh = "mesh"

	BlockAlways = "always"
	BlockNever  = "never"
)

// Config is the per-region game table. It is read once at region start.
type Config struct {
	TicksPerMinute      int     `yaml:"ticks_per_minute"`
	TargetFPS           int     `yaml:"target_fps"`
	Health              string  `yaml:"health"`
	MaxHealth           string  `yaml:"max_health"`
	EntityBlockMode     string  `yaml:"entity_block_mode"`
	CollisionMode       string  `yaml:"collision_mode"`
	MovementUnitsPerSec float64 `yaml:"movement_units_per_sec"`
	TurnSpeedDegPerSec  float64 `yaml:"turn_speed_deg_per_sec"`
	CollisionAttempts   int     `yaml:"collision_attempts"`
	DefaultCastSuccess  float64 `yaml:"default_cast_success"`
	InventorySlots      int     `yaml:"inventory_slots"`
	IntentDistance      float64 `yaml:"intent_distance"`
	StepHeight          float64 `yaml:"step_height"`
	MaxScriptPasses     int     `yaml:"max_script_passes"`
	MessageWrap         int     `yaml:"message_wrap"`
	Debug               bool    `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		TicksPerMinute:      4,
		TargetFPS:           30,
		Health:              "HP",
		MaxHealth:           "MAX_HP",
		EntityBlockMode:     BlockAlways,
		CollisionMode:       CollisionTile,
		MovementUnitsPerSec: 4,
		TurnSpeedDegPerSec:  120,
		CollisionAttempts:   5,
		DefaultCastSuccess:  100,
		InventorySlots:      12,
		IntentDistance:      2,
		StepHeight:          0.5,
		MaxScriptPasses:     8,
		MessageWrap:         80,
	}
}

// ParseConfig reads the game table out of a YAML document. Missing keys keep
// their defaults.
func ParseConfig(data []byte) (Config, error) {
	doc := struct {
		Game Config `yaml:"game"`
	}{Game: DefaultConfig()}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Config{}, fmt.Errorf("parsing game config: %w", err)
		}
	}
	if err := doc.Game.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating game config: %w", err)
	}
	return doc.Game, nil
}

func (c Config) Validate() error {
	el := errors.NewErrorList()

	if c.TicksPerMinute < 1 {
		el.Add(fmt.Errorf("ticks_per_minute must be at least 1"))
	}
	if c.TargetFPS < 1 {
		el.Add(fmt.Errorf("target_fps must be at least 1"))
	}
	if c.Health == "" {
		el.Add(fmt.Errorf("health attribute name is required"))
	}
	switch c.EntityBlockMode {
	case BlockAlways, BlockNever:
	default:
		el.Add(fmt.Errorf("entity_block_mode must be %q or %q", BlockAlways, BlockNever))
	}
	switch c.CollisionMode {
	case CollisionTile, CollisionMesh:
	default:
		el.Add(fmt.Errorf("collision_mode must be %q or %q", CollisionTile, CollisionMesh))
	}
	if c.MovementUnitsPerSec <= 0 {
		el.Add(fmt.Errorf("movement_units_per_sec must be positive"))
	}
	if c.CollisionAttempts < 1 {
		el.Add(fmt.Errorf("collision_attempts must be at least 1"))
	}
	if c.InventorySlots < 0 {
		el.Add(fmt.Errorf("inventory_slots must not be negative"))
	}
	if c.MaxScriptPasses < 1 {
		el.Add(fmt.Errorf("max_script_passes must be at least 1"))
	}

	return el.Err()
}

// RedrawInterval is the frame length implied by target_fps.
func (c Config) RedrawInterval() time.Duration {
	return time.Second / time.Duration(c.TargetFPS)
}

// MaxDelta caps the measured frame time so a stall does not teleport
// entities.
func (c Config) MaxDelta() float64 {
	return 3 / float64(c.TargetFPS)
}

// Ticks converts in-game minutes into system ticks.
func (c Config) Ticks(minutes float64) int64 {
	return int64(minutes * float64(c.TicksPerMinute))
}

func (c Config) BlocksEntities() bool {
	return c.EntityBlockMode != BlockNever
}
