package region

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

type slot struct {
	mu  deadlock.Mutex
	ctx *RegionCtx
}

// Registry owns every live RegionCtx. State is only handed out inside a
// scope holding that region's lock; scopes must not nest.
type Registry struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*slot
}

func NewRegistry() *Registry {
	return &Registry{slots: map[uuid.UUID]*slot{}}
}

func (r *Registry) Register(id uuid.UUID, ctx *RegionCtx) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; ok {
		return fmt.Errorf("%w: %s", ErrRegionExists, id)
	}
	r.slots[id] = &slot{ctx: ctx}
	activeRegions.Inc()
	return nil
}

// Remove drops the region. Scopes already holding it finish normally.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return false
	}
	delete(r.slots, id)
	activeRegions.Dec()
	return true
}

// Handle is a reference to one registered region.
type Handle struct {
	id uuid.UUID
	s  *slot
}

func (h *Handle) ID() uuid.UUID { return h.id }

func (h *Handle) With(fn func(*RegionCtx)) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	fn(h.s.ctx)
}

func (r *Registry) Get(id uuid.UUID) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, false
	}
	return &Handle{id: id, s: s}, true
}

// With runs fn with exclusive access to the region. It reports false when
// the region is not registered.
func (r *Registry) With(id uuid.UUID, fn func(*RegionCtx)) bool {
	h, ok := r.Get(id)
	if !ok {
		return false
	}
	h.With(fn)
	return true
}

// WithResult is With for scopes that produce a value.
func WithResult[T any](r *Registry, id uuid.UUID, fn func(*RegionCtx) T) (T, bool) {
	var out T
	ok := r.With(id, func(c *RegionCtx) {
		out = fn(c)
	})
	return out, ok
}

// IDs lists registered regions in a stable order.
func (r *Registry) IDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}
