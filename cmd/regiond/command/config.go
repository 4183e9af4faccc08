package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

const (
	defaultTickInterval   = 15 * time.Second
	defaultRedrawInterval = time.Second / 30
)

type Config struct {
	// TickInterval is the system tick. It should match the maps'
	// ticks_per_minute.
	TickInterval   string        `json:"tick_interval"`
	RedrawInterval string        `json:"redraw_interval"`
	Storage        StorageConfig `json:"storage"`
	Nats           NatsConfig    `json:"nats"`
	Regions        RegionsConfig `json:"regions"`
	Metrics        MetricsConfig `json:"metrics"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if _, err := parseInterval(c.TickInterval, defaultTickInterval, time.Second); err != nil {
		el.Add(fmt.Errorf("tick_interval: %w", err))
	}
	if _, err := parseInterval(c.RedrawInterval, defaultRedrawInterval, time.Millisecond); err != nil {
		el.Add(fmt.Errorf("redraw_interval: %w", err))
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Regions.validate())
	el.Add(c.Metrics.validate())

	return el.Err()
}

func parseInterval(s string, def, min time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}
	if d < min {
		return 0, fmt.Errorf("must be at least %s", min)
	}
	return d, nil
}
