package region

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/storage"
)

// EntityClass is a stored entity template.
type EntityClass struct {
	Name       string         `json:"name"`
	Script     string         `json:"script,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (c *EntityClass) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ItemClass is a stored item template. Spells are item classes with
// is_spell set.
type ItemClass struct {
	Name       string         `json:"name"`
	Script     string         `json:"script,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (c *ItemClass) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

type Sector struct {
	Name     string       `json:"name"`
	Vertices []mgl64.Vec2 `json:"vertices"`
	Floor    float64      `json:"floor,omitempty"`
	// Item names the item class placed at the sector centre, such as a
	// door. Its blocking attribute drives the sector's collision opening.
	Item string `json:"item,omitempty"`
}

func (s *Sector) Contains(p mgl64.Vec3) bool {
	return collision.PointInPolygon(collision.Flat(p), s.Vertices)
}

func (s *Sector) Center() mgl64.Vec3 {
	var c mgl64.Vec2
	for _, v := range s.Vertices {
		c = c.Add(v)
	}
	if len(s.Vertices) > 0 {
		c = c.Mul(1 / float64(len(s.Vertices)))
	}
	return mgl64.Vec3{c.X(), s.Floor, c.Y()}
}

// Linedef is a named segment. Same-named linedefs form patrol routes.
type Linedef struct {
	Name  string     `json:"name"`
	Start mgl64.Vec2 `json:"start"`
	End   mgl64.Vec2 `json:"end"`
}

type EntitySpawn struct {
	Class       storage.SmartIdentifier[*EntityClass] `json:"class"`
	Pos         mgl64.Vec3                            `json:"pos"`
	Orientation mgl64.Vec2                            `json:"orientation,omitempty"`
	Attributes  map[string]any                        `json:"attributes,omitempty"`
}

type ItemSpawn struct {
	Class      storage.SmartIdentifier[*ItemClass] `json:"class"`
	Pos        mgl64.Vec3                          `json:"pos"`
	Attributes map[string]any                      `json:"attributes,omitempty"`
}

// Map is the static description of one region.
type Map struct {
	Name string `json:"name"`
	// GameConfig is a YAML document with a game table.
	GameConfig string `json:"game_config,omitempty"`

	TileSize     float64          `json:"tile_size,omitempty"`
	BlockedTiles []collision.Cell `json:"blocked_tiles,omitempty"`
	Colliders    []collision.Box  `json:"colliders,omitempty"`
	Sectors      []Sector         `json:"sectors,omitempty"`
	Linedefs     []Linedef        `json:"linedefs,omitempty"`
	Entities     []EntitySpawn    `json:"entities,omitempty"`
	Items        []ItemSpawn      `json:"items,omitempty"`
}

func (m *Map) Validate() error {
	el := errors.NewErrorList()

	if m.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	seen := map[string]bool{}
	for i, s := range m.Sectors {
		if len(s.Vertices) < 3 {
			el.Add(fmt.Errorf("sector %d: at least 3 vertices are required", i))
		}
		if s.Name != "" && seen[s.Name] {
			el.Add(fmt.Errorf("sector %d: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
	}
	for i, sp := range m.Entities {
		if err := sp.Class.Validate(); err != nil {
			el.Add(fmt.Errorf("entity spawn %d: %w", i, err))
		}
	}
	for i, sp := range m.Items {
		if err := sp.Class.Validate(); err != nil {
			el.Add(fmt.Errorf("item spawn %d: %w", i, err))
		}
	}

	return el.Err()
}

// SectorAt returns the first sector containing p.
func (m *Map) SectorAt(p mgl64.Vec3) *Sector {
	for i := range m.Sectors {
		if m.Sectors[i].Contains(p) {
			return &m.Sectors[i]
		}
	}
	return nil
}

func (m *Map) SectorByName(name string) *Sector {
	for i := range m.Sectors {
		if m.Sectors[i].Name == name {
			return &m.Sectors[i]
		}
	}
	return nil
}
