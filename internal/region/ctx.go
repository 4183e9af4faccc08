package region

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
)

const minutesPerDay = 1440

type SubjectKind uint8

const (
	SubjectEntity SubjectKind = iota
	SubjectItem
)

// Subject names the entity or item a script runs as.
type Subject struct {
	Kind SubjectKind `msgpack:"kind"`
	ID   uint32      `msgpack:"id"`
}

func EntitySubject(id uint32) Subject { return Subject{Kind: SubjectEntity, ID: id} }
func ItemSubject(id uint32) Subject   { return Subject{Kind: SubjectItem, ID: id} }

func (s Subject) String() string {
	if s.Kind == SubjectItem {
		return fmt.Sprintf("item %d", s.ID)
	}
	return fmt.Sprintf("entity %d", s.ID)
}

// Script entry points.
const (
	EntryEvent     = "event"
	EntryUserEvent = "user_event"
)

// ScriptCall is a queued invocation of a subject's script.
type ScriptCall struct {
	Subject Subject
	Entry   string
	Name    string
	Value   script.Value
}

type notification struct {
	Subject Subject
	Due     int64
	Event   string
}

// RegionCtx is the complete mutable state of one region. It is only
// reachable through Registry.With.
type RegionCtx struct {
	ID     uuid.UUID
	Name   string
	Config Config
	Map    *Map
	Grid   *collision.Grid
	World  *collision.World

	Entities []*Entity
	Items    []*Item

	// Programs are keyed by class name.
	Programs      map[string]*script.Program
	ItemTemplates map[string]*ItemClass
	spells        map[string]*combat.Spell

	Ticks int64
	// TimeOffset shifts the clock set by a Time message, in minutes.
	TimeOffset int64
	Paused     bool
	// DeltaTime is the clamped length of the current frame in seconds.
	DeltaTime float64

	notifications []notification
	proximity     map[uint32]float64
	blocks        map[eventKey]int64
	// executed holds the events that ran during executedTick.
	executed     map[eventKey]struct{}
	executedTick int64
	queue        []ScriptCall

	Rand *rand.Rand
	ids  *IDAllocator

	outbox []Message
	debug  map[Subject]map[string]string

	StartupErrors []error
}

func NewRegionCtx(id uuid.UUID, m *Map, cfg Config, ids *IDAllocator) *RegionCtx {
	tile := m.TileSize
	if tile <= 0 {
		tile = 1
	}
	world := collision.NewWorld(m.Colliders)
	world.StepHeight = cfg.StepHeight

	if ids == nil {
		ids = NewIDAllocator()
	}

	return &RegionCtx{
		ID:            id,
		Name:          m.Name,
		Config:        cfg,
		Map:           m,
		Grid:          collision.NewGrid(tile, m.BlockedTiles),
		World:         world,
		Programs:      map[string]*script.Program{},
		ItemTemplates: map[string]*ItemClass{},
		spells:        map[string]*combat.Spell{},
		proximity:     map[uint32]float64{},
		blocks:        map[eventKey]int64{},
		executed:      map[eventKey]struct{}{},
		Rand:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		ids:           ids,
		debug:         map[Subject]map[string]string{},
	}
}

func (c *RegionCtx) NextID() uint32 {
	return c.ids.Next()
}

// TimeOfDay is minutes past midnight.
func (c *RegionCtx) TimeOfDay() int64 {
	t := (c.Ticks/int64(c.Config.TicksPerMinute) + c.TimeOffset) % minutesPerDay
	if t < 0 {
		t += minutesPerDay
	}
	return t
}

// SetTimeOfDay adjusts the offset so TimeOfDay reports minutes.
func (c *RegionCtx) SetTimeOfDay(minutes int64) {
	c.TimeOffset = minutes - c.Ticks/int64(c.Config.TicksPerMinute)
}

func (c *RegionCtx) Entity(id uint32) *Entity {
	if id == 0 {
		return nil
	}
	for _, e := range c.Entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Item finds an item lying in the region.
func (c *RegionCtx) Item(id uint32) *Item {
	if id == 0 {
		return nil
	}
	for _, it := range c.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// FindItem looks in the region first and then in every inventory. owner is
// nil for items lying in the region.
func (c *RegionCtx) FindItem(id uint32) (it *Item, owner *Entity) {
	if it := c.Item(id); it != nil {
		return it, nil
	}
	for _, e := range c.Entities {
		if it, _, _ := e.FindItem(id); it != nil {
			return it, e
		}
	}
	return nil, nil
}

func (c *RegionCtx) AddEntity(e *Entity) {
	c.ids.Observe(e.ID)
	e.MarkAll()
	c.Entities = append(c.Entities, e)
}

func (c *RegionCtx) RemoveEntity(id uint32) *Entity {
	for i, e := range c.Entities {
		if e.ID == id {
			c.Entities = append(c.Entities[:i], c.Entities[i+1:]...)
			delete(c.proximity, id)
			return e
		}
	}
	return nil
}

func (c *RegionCtx) AddItem(it *Item) {
	c.ids.Observe(it.ID)
	it.MarkAll()
	c.Items = append(c.Items, it)
}

func (c *RegionCtx) RemoveItem(id uint32) *Item {
	for i, it := range c.Items {
		if it.ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return it
		}
	}
	return nil
}

// SubjectAttrs returns the attribute bag of s, or nil when s is gone.
func (c *RegionCtx) SubjectAttrs(s Subject) Attributes {
	if s.Kind == SubjectItem {
		if it, _ := c.FindItem(s.ID); it != nil {
			return it.Attrs
		}
		return nil
	}
	if e := c.Entity(s.ID); e != nil {
		return e.Attrs
	}
	return nil
}

func (c *RegionCtx) subjectClass(s Subject) (string, bool) {
	if s.Kind == SubjectItem {
		if it, _ := c.FindItem(s.ID); it != nil {
			return it.Class, true
		}
		return "", false
	}
	if e := c.Entity(s.ID); e != nil {
		return e.Class, true
	}
	return "", false
}

// SectorCenter resolves a sector name to a point on its floor.
func (c *RegionCtx) SectorCenter(name string) (mgl64.Vec3, bool) {
	s := c.Map.SectorByName(name)
	if s == nil {
		return mgl64.Vec3{}, false
	}
	return s.Center(), true
}

func (c *RegionCtx) emit(m Message) {
	c.outbox = append(c.outbox, m)
}

// TakeOutbox returns and clears the messages produced since the last call.
func (c *RegionCtx) TakeOutbox() []Message {
	out := c.outbox
	c.outbox = nil
	return out
}

func (c *RegionCtx) log(text string) {
	c.emit(LogMessage{Region: c.ID, Text: text})
}

// pushDebug records a script level failure against the source location
// currently executing.
func (c *RegionCtx) pushDebug(s Subject, location, text string) {
	slog.Debug("script debug", "region", c.Name, "subject", s.String(), "at", location, "value", text)
	if !c.Config.Debug {
		return
	}
	vals, ok := c.debug[s]
	if !ok {
		vals = map[string]string{}
		c.debug[s] = vals
	}
	if location == "" {
		location = "?"
	}
	vals[location] = text
}

func (c *RegionCtx) flushDebug() {
	for s, vals := range c.debug {
		c.emit(DebugData{Region: c.ID, Subject: s, Values: vals})
	}
	clear(c.debug)
}
