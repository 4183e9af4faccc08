package region

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-regions/internal/storage"
)

const (
	DefaultInboxSize  = 256
	DefaultOutboxSize = 1024
)

// Instance is the actor driving one region. Messages arrive on its inbox;
// the system and redraw ticks are driven from outside.
type Instance struct {
	id       uuid.UUID
	name     string
	registry *Registry
	engine   *script.Engine

	in  chan Message
	out chan Message

	lastRedraw time.Time
	stopped    atomic.Bool
	done       chan struct{}
	stopOnce   sync.Once

	inboxSize   int
	outboxSize  int
	callTimeout time.Duration
}

// NewInstance builds a region from assets and registers it. Problems with
// individual assets do not stop the region; they are logged and sent out
// as log messages once it is running.
func NewInstance(reg *Registry, ids *IDAllocator, assets Assets, opts ...InstanceOpt) (*Instance, error) {
	if assets.Map == nil {
		return nil, fmt.Errorf("region map is required")
	}

	i := &Instance{
		id:          uuid.New(),
		name:        assets.Map.Name,
		registry:    reg,
		done:        make(chan struct{}),
		inboxSize:   DefaultInboxSize,
		outboxSize:  DefaultOutboxSize,
		callTimeout: script.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.in = make(chan Message, i.inboxSize)
	i.out = make(chan Message, i.outboxSize)
	i.engine = script.NewEngine(script.WithCallTimeout(i.callTimeout))

	ctx := i.build(ids, assets)

	if err := reg.Register(i.id, ctx); err != nil {
		i.engine.Close()
		return nil, fmt.Errorf("registering region %q: %w", i.name, err)
	}

	i.with(func(c *RegionCtx) {
		if n := len(c.StartupErrors); n > 0 {
			c.log(fmt.Sprintf("region %s: %d startup errors", c.Name, n))
			for _, err := range c.StartupErrors {
				slog.Warn("region startup error", "region", c.Name, "error", err)
				c.log(err.Error())
			}
		}
		slog.Info("region started", "region", c.Name, "id", c.ID, "entities", len(c.Entities), "items", len(c.Items))
	})

	return i, nil
}

// build creates the region state, collecting rather than failing on bad
// assets.
func (i *Instance) build(ids *IDAllocator, assets Assets) *RegionCtx {
	var errs []error
	errs = append(errs, assets.Errors...)

	m := assets.Map
	cfg, err := ParseConfig([]byte(m.GameConfig))
	if err != nil {
		errs = append(errs, err)
		cfg = DefaultConfig()
	}

	c := NewRegionCtx(i.id, m, cfg, ids)

	if assets.ItemClasses != nil {
		for _, ic := range assets.ItemClasses.GetAll() {
			c.ItemTemplates[ic.Name] = ic
		}
	}
	for name, p := range assets.Programs {
		c.Programs[name] = p
		if err := i.engine.Load(p); err != nil {
			errs = append(errs, err)
		}
	}

	for idx := range m.Entities {
		if err := spawnEntity(c, &m.Entities[idx], assets.EntityClasses); err != nil {
			errs = append(errs, fmt.Errorf("entity spawn %d: %w", idx, err))
		}
	}
	for idx := range m.Items {
		if err := spawnItem(c, &m.Items[idx], assets.ItemClasses); err != nil {
			errs = append(errs, fmt.Errorf("item spawn %d: %w", idx, err))
		}
	}
	for idx := range m.Sectors {
		if err := spawnSectorItem(c, &m.Sectors[idx]); err != nil {
			errs = append(errs, err)
		}
	}

	c.StartupErrors = errs
	return c
}

func spawnEntity(c *RegionCtx, sp *EntitySpawn, classes storage.Storer[*EntityClass]) error {
	if classes == nil {
		return fmt.Errorf("no entity classes loaded")
	}
	if err := sp.Class.Resolve(classes); err != nil {
		return err
	}
	class := sp.Class.Resolved()

	attrs, err := mergedAttrs(class.Attributes, sp.Attributes)
	if err != nil {
		return fmt.Errorf("entity class %q: %w", class.Name, err)
	}

	e := NewEntity(c.NextID(), class.Name, c.Config.InventorySlots)
	e.Attrs = attrs
	e.Pos = sp.Pos
	if sp.Orientation.Len() > 0 {
		e.Orientation = sp.Orientation.Normalize()
	}
	c.AddEntity(e)
	c.QueueEvent(EntitySubject(e.ID), "startup", script.None())
	return nil
}

func spawnItem(c *RegionCtx, sp *ItemSpawn, classes storage.Storer[*ItemClass]) error {
	if classes == nil {
		return fmt.Errorf("no item classes loaded")
	}
	if err := sp.Class.Resolve(classes); err != nil {
		return err
	}
	class := sp.Class.Resolved()

	attrs, err := mergedAttrs(class.Attributes, sp.Attributes)
	if err != nil {
		return fmt.Errorf("item class %q: %w", class.Name, err)
	}

	it := NewItem(c.NextID(), class.Name)
	it.Attrs = attrs
	it.Pos = sp.Pos
	placeItem(c, it)
	return nil
}

// spawnSectorItem places the item a sector profile names, such as a door,
// at the sector centre and binds its blocking state to the sector opening.
func spawnSectorItem(c *RegionCtx, s *Sector) error {
	if s.Item == "" {
		return nil
	}
	it, err := c.newItemFromTemplate(s.Item)
	if err != nil {
		return fmt.Errorf("sector %q: %w", s.Name, err)
	}
	it.Pos = s.Center()
	it.Attrs[AttrSector] = script.String(s.Name)
	placeItem(c, it)
	return nil
}

func placeItem(c *RegionCtx, it *Item) {
	if sector := it.Attrs.Str(AttrSector); sector != "" {
		c.World.SetOpen(sector, !it.IsBlocking())
	}
	c.AddItem(it)
	c.QueueEvent(ItemSubject(it.ID), "startup", script.None())
}

func mergedAttrs(base, override map[string]any) (Attributes, error) {
	attrs, err := AttributesFromNative(base)
	over, oerr := AttributesFromNative(override)
	for k, v := range over {
		attrs[k] = v
	}
	if err != nil {
		return attrs, err
	}
	return attrs, oerr
}

func (i *Instance) ID() uuid.UUID { return i.id }
func (i *Instance) Name() string  { return i.name }

// Out carries everything the region emits.
func (i *Instance) Out() <-chan Message { return i.out }

// Done is closed once the region has processed Quit.
func (i *Instance) Done() <-chan struct{} { return i.done }

func (i *Instance) Stopped() bool { return i.stopped.Load() }

// Send queues m for the region without blocking. A full inbox drops the
// message and reports false.
func (i *Instance) Send(m Message) bool {
	select {
	case i.in <- m:
		return true
	default:
		droppedMessages.WithLabelValues("in").Inc()
		slog.Warn("region inbox full, dropping message", "region", i.name, "kind", m.Kind())
		return false
	}
}

// Close stops the region and releases its script engine.
func (i *Instance) Close() {
	i.stop()
	if !i.registry.With(i.id, func(*RegionCtx) { i.engine.Close() }) {
		i.engine.Close()
	}
}

func (i *Instance) stop() {
	i.stopOnce.Do(func() {
		i.stopped.Store(true)
		close(i.done)
	})
}

// with runs fn under the region lock and forwards what it emitted.
func (i *Instance) with(fn func(*RegionCtx)) {
	var outbox []Message
	i.registry.With(i.id, func(c *RegionCtx) {
		fn(c)
		outbox = c.TakeOutbox()
	})
	for _, m := range outbox {
		select {
		case i.out <- m:
		default:
			droppedMessages.WithLabelValues("out").Inc()
			slog.Warn("region outbox full, dropping message", "region", i.name, "kind", m.Kind())
		}
	}
}

// SystemTick advances the logical clock by one tick.
func (i *Instance) SystemTick() {
	if i.Stopped() {
		return
	}
	start := time.Now()
	i.with(func(c *RegionCtx) {
		// Close may have released the engine while we waited for the lock.
		if c.Paused || i.Stopped() {
			return
		}
		c.Ticks++
		c.pruneEvents()
		c.decrementCooldowns()
		c.fireNotifications()
		c.scanProximity()
		runScripts(c, i.engine)
		c.flushDebug()
	})
	ticksTotal.WithLabelValues("system").Inc()
	tickSeconds.WithLabelValues("system").Observe(time.Since(start).Seconds())
}

// RedrawTick processes inbound messages, moves everything by one frame and
// publishes what changed.
func (i *Instance) RedrawTick(now time.Time) {
	if i.Stopped() {
		return
	}
	start := time.Now()

	var dt float64
	if !i.lastRedraw.IsZero() {
		dt = now.Sub(i.lastRedraw).Seconds()
	}
	i.lastRedraw = now

	i.drain()
	if i.Stopped() {
		return
	}

	i.with(func(c *RegionCtx) {
		c.DeltaTime = clampDelta(dt, c.Config.MaxDelta())
		if !c.Paused {
			stepEntities(c)
			stepSpells(c)
		}

		ents, items, err := packDirty(c, Pack)
		if err != nil {
			slog.Error("packing region updates", "region", c.Name, "error", err)
		}
		if len(ents) > 0 {
			c.emit(EntitiesUpdate{Region: c.ID, Diffs: ents})
		}
		if len(items) > 0 {
			c.emit(ItemsUpdate{Region: c.ID, Diffs: items})
		}

		if !c.Paused && !i.Stopped() {
			runScripts(c, i.engine)
		}
		c.flushDebug()
	})

	ticksTotal.WithLabelValues("redraw").Inc()
	tickSeconds.WithLabelValues("redraw").Observe(time.Since(start).Seconds())
}

func clampDelta(dt, limit float64) float64 {
	if dt < 0 {
		return 0
	}
	if dt > limit {
		return limit
	}
	return dt
}

// drain applies every message waiting in the inbox.
func (i *Instance) drain() {
	for {
		select {
		case m := <-i.in:
			i.handle(m)
		default:
			return
		}
	}
}
