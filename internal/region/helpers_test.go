package region

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/script"
)

func newTestCtx(t *testing.T, m *Map) *RegionCtx {
	t.Helper()
	if m == nil {
		m = &Map{Name: "test"}
	}
	c := NewRegionCtx(uuid.New(), m, DefaultConfig(), NewIDAllocator())
	c.Rand = rand.New(rand.NewPCG(1, 2))
	c.DeltaTime = 1.0 / 30
	return c
}

func addTestEntity(c *RegionCtx, pos mgl64.Vec3, attrs Attributes) *Entity {
	e := NewEntity(c.NextID(), "npc", c.Config.InventorySlots)
	e.Pos = pos
	for k, v := range attrs {
		e.Attrs[k] = v
	}
	c.AddEntity(e)
	return e
}

func addTestItem(c *RegionCtx, pos mgl64.Vec3, attrs Attributes) *Item {
	it := NewItem(c.NextID(), "thing")
	it.Pos = pos
	for k, v := range attrs {
		it.Attrs[k] = v
	}
	c.AddItem(it)
	return it
}

// queued counts pending calls to name on s, across both entry points.
func queued(c *RegionCtx, s Subject, name string) int {
	n := 0
	for _, call := range c.queue {
		if call.Subject == s && call.Name == name {
			n++
		}
	}
	return n
}

func queuedValue(t *testing.T, c *RegionCtx, s Subject, name string) script.Value {
	t.Helper()
	for _, call := range c.queue {
		if call.Subject == s && call.Name == name {
			return call.Value
		}
	}
	t.Fatalf("no %q queued for %s", name, s)
	return script.None()
}

func outboxOf[T Message](c *RegionCtx) []T {
	var out []T
	for _, m := range c.outbox {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func nearlyEqual(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-6)
}
