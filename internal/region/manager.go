package region

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers region output to whatever is listening.
type Publisher interface {
	Publish(region uuid.UUID, m Message) error
}

// Manager runs a set of regions that share one id space, and routes
// entities travelling between them.
type Manager struct {
	registry *Registry
	ids      *IDAllocator
	pub      Publisher
	opts     []InstanceOpt

	mu        sync.RWMutex
	instances map[uuid.UUID]*Instance
	byName    map[string]uuid.UUID
}

// NewManager creates an empty manager. opts apply to every region it adds.
// A nil publisher discards output.
func NewManager(pub Publisher, opts ...InstanceOpt) *Manager {
	return &Manager{
		registry:  NewRegistry(),
		ids:       NewIDAllocator(),
		pub:       pub,
		opts:      opts,
		instances: map[uuid.UUID]*Instance{},
		byName:    map[string]uuid.UUID{},
	}
}

// SetPublisher replaces the publisher. Call before ticking starts.
func (m *Manager) SetPublisher(pub Publisher) {
	m.pub = pub
}

func (m *Manager) Registry() *Registry { return m.registry }

// AddRegion starts a region. Region names must be unique.
func (m *Manager) AddRegion(assets Assets, opts ...InstanceOpt) (*Instance, error) {
	if assets.Map == nil {
		return nil, fmt.Errorf("region map is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[assets.Map.Name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrRegionExists, assets.Map.Name)
	}

	inst, err := NewInstance(m.registry, m.ids, assets, append(m.opts, opts...)...)
	if err != nil {
		return nil, err
	}
	m.instances[inst.ID()] = inst
	m.byName[inst.Name()] = inst.ID()
	return inst, nil
}

// Lookup finds a region id by name.
func (m *Manager) Lookup(name string) (uuid.UUID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[name]
	return id, ok
}

func (m *Manager) Instance(id uuid.UUID) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// Send queues msg for a region.
func (m *Manager) Send(id uuid.UUID, msg Message) error {
	inst, ok := m.Instance(id)
	if !ok {
		return fmt.Errorf("unknown region %s", id)
	}
	if !inst.Send(msg) {
		return fmt.Errorf("region %s inbox full", inst.Name())
	}
	return nil
}

func (m *Manager) SendByName(name string, msg Message) error {
	id, ok := m.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown region %q", name)
	}
	return m.Send(id, msg)
}

func (m *Manager) snapshot() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Instance, 0, len(m.instances))
	for _, id := range m.registry.IDs() {
		if inst, ok := m.instances[id]; ok {
			out = append(out, inst)
		}
	}
	return out
}

// RedrawInterval is the shortest frame length any running region asks
// for through its target_fps, or zero with no regions.
func (m *Manager) RedrawInterval() time.Duration {
	var fastest time.Duration
	for _, id := range m.registry.IDs() {
		d, ok := WithResult(m.registry, id, func(c *RegionCtx) time.Duration { return c.Config.RedrawInterval() })
		if ok && (fastest == 0 || d < fastest) {
			fastest = d
		}
	}
	return fastest
}

// TickSystem advances every region's logical clock.
func (m *Manager) TickSystem(ctx context.Context) error {
	for _, inst := range m.snapshot() {
		inst.SystemTick()
	}
	return m.flush(ctx)
}

// TickRedraw runs one frame in every region.
func (m *Manager) TickRedraw(ctx context.Context) error {
	now := time.Now()
	for _, inst := range m.snapshot() {
		inst.RedrawTick(now)
	}
	return m.flush(ctx)
}

// flush routes pending output and retires regions that have quit.
func (m *Manager) flush(ctx context.Context) error {
	for _, inst := range m.snapshot() {
		m.route(ctx, inst)
		if inst.Stopped() {
			m.retire(inst)
		}
	}
	return nil
}

func (m *Manager) route(ctx context.Context, inst *Instance) {
	for {
		select {
		case msg := <-inst.Out():
			m.deliver(ctx, inst, msg)
		default:
			return
		}
	}
}

func (m *Manager) deliver(ctx context.Context, from *Instance, msg Message) {
	if t, ok := msg.(TransferEntity); ok {
		m.transfer(ctx, from, t)
		return
	}
	if m.pub == nil {
		return
	}
	if err := m.pub.Publish(from.ID(), msg); err != nil {
		slog.WarnContext(ctx, "publishing region output", "region", from.Name(), "kind", msg.Kind(), "error", err)
	}
}

// transfer hands an entity to its destination. If there is no such region
// the entity goes back where it came from.
func (m *Manager) transfer(ctx context.Context, from *Instance, t TransferEntity) {
	if t.Entity == nil {
		return
	}

	dest, ok := m.Lookup(t.DestRegion)
	sector := t.DestSector
	if !ok {
		slog.WarnContext(ctx, "transfer to unknown region", "region", from.Name(), "dest", t.DestRegion, "entity", t.Entity.ID)
		dest, sector = from.ID(), ""
	}

	err := m.Send(dest, CreateEntity{Region: dest, Entity: t.Entity, Sector: sector})
	if err != nil {
		slog.ErrorContext(ctx, "entity lost in transfer", "region", from.Name(), "dest", t.DestRegion, "entity", t.Entity.ID, "error", err)
	}
}

func (m *Manager) retire(inst *Instance) {
	m.mu.Lock()
	delete(m.instances, inst.ID())
	if m.byName[inst.Name()] == inst.ID() {
		delete(m.byName, inst.Name())
	}
	m.mu.Unlock()

	inst.Close()
	m.registry.Remove(inst.ID())
	slog.Info("region retired", "region", inst.Name(), "id", inst.ID())
}

// Start blocks until ctx is done, then stops every region.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()

	for _, inst := range m.snapshot() {
		inst.Send(Quit{})
		inst.drain()
		m.route(context.Background(), inst)
		m.retire(inst)
	}
	return nil
}
