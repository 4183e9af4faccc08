package region

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/script"
)

// eventKey identifies an event by subject and name. The entry point it
// arrives through is not part of it.
type eventKey struct {
	Subject Subject
	Name    string
}

func (c *RegionCtx) QueueEvent(s Subject, name string, v script.Value) {
	c.queue = append(c.queue, ScriptCall{Subject: s, Entry: EntryEvent, Name: name, Value: v})
}

func (c *RegionCtx) QueueUserEvent(s Subject, name string, v script.Value) {
	c.queue = append(c.queue, ScriptCall{Subject: s, Entry: EntryUserEvent, Name: name, Value: v})
}

// Pending is the number of queued script calls.
func (c *RegionCtx) Pending() int {
	return len(c.queue)
}

// BlockEvents suppresses the named events for s during the next minutes of
// game time.
func (c *RegionCtx) BlockEvents(s Subject, minutes float64, names ...string) {
	until := c.Ticks + c.Config.Ticks(minutes)
	for _, n := range names {
		c.blocks[eventKey{Subject: s, Name: n}] = until
	}
}

// Notify fires event on s after minutes of game time.
func (c *RegionCtx) Notify(s Subject, minutes float64, event string) {
	c.notifications = append(c.notifications, notification{
		Subject: s,
		Due:     c.Ticks + c.Config.Ticks(minutes),
		Event:   event,
	})
}

// SetProximity subscribes entity id to proximity_warning events. A radius
// of zero or less unsubscribes.
func (c *RegionCtx) SetProximity(id uint32, radius float64) {
	if radius <= 0 {
		delete(c.proximity, id)
		return
	}
	c.proximity[id] = radius
}

// admit decides whether call may run now. Blocked events are dropped
// silently. An event name that already ran for the same subject this tick
// is dropped and logged, whether it came in as event or user_event.
func (c *RegionCtx) admit(call ScriptCall) bool {
	key := eventKey{Subject: call.Subject, Name: call.Name}
	if until, ok := c.blocks[key]; ok {
		if c.Ticks < until {
			return false
		}
		delete(c.blocks, key)
	}

	if c.executedTick != c.Ticks {
		clear(c.executed)
		c.executedTick = c.Ticks
	}
	if _, ok := c.executed[key]; ok {
		slog.Debug("suppressing repeated event", "region", c.Name, "subject", call.Subject.String(), "event", call.Name, "tick", c.Ticks)
		suppressedEvents.Inc()
		return false
	}
	c.executed[key] = struct{}{}
	return true
}

// pruneEvents forgets executions from earlier ticks and blocks that have
// run out, including those for subjects that no longer exist.
func (c *RegionCtx) pruneEvents() {
	if c.executedTick != c.Ticks {
		clear(c.executed)
		c.executedTick = c.Ticks
	}
	for k, until := range c.blocks {
		if c.Ticks >= until {
			delete(c.blocks, k)
		}
	}
}

// fireNotifications queues every notification that is due.
func (c *RegionCtx) fireNotifications() {
	keep := c.notifications[:0]
	for _, n := range c.notifications {
		if n.Due > c.Ticks {
			keep = append(keep, n)
			continue
		}
		c.QueueEvent(n.Subject, n.Event, script.None())
	}
	c.notifications = keep
}

// scanProximity warns each subscriber about the nearest other live entity
// inside its radius.
func (c *RegionCtx) scanProximity() {
	ids := make([]uint32, 0, len(c.proximity))
	for id := range c.proximity {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		e := c.Entity(id)
		if e == nil || !e.Live() {
			continue
		}
		radius := c.proximity[id]
		var nearest *Entity
		best := radius
		for _, o := range c.Entities {
			if o == e || !o.Live() {
				continue
			}
			if d := flatDistance(e.Pos, o.Pos); d <= best {
				nearest, best = o, d
			}
		}
		if nearest != nil {
			c.QueueEvent(EntitySubject(id), "proximity_warning", script.Int(int(nearest.ID)))
		}
	}
}

// decrementCooldowns counts every spell cooldown down by one tick.
func (c *RegionCtx) decrementCooldowns() {
	for _, e := range c.Entities {
		for _, k := range e.Attrs.Keys() {
			if !isCooldownAttr(k) {
				continue
			}
			if n := e.Attrs.Int(k, 0); n > 0 {
				e.SetAttr(k, script.Int(n-1))
			}
		}
	}
}

// runScripts executes queued calls. Calls queued by scripts run in later
// passes of the same invocation, up to max_script_passes.
func runScripts(c *RegionCtx, eng *script.Engine) {
	for pass := 0; pass < c.Config.MaxScriptPasses && len(c.queue) > 0; pass++ {
		calls := c.queue
		c.queue = nil
		for _, call := range calls {
			class, ok := c.subjectClass(call.Subject)
			if !ok || !eng.Has(class, call.Entry) {
				continue
			}
			if !c.admit(call) {
				continue
			}
			b := &Bridge{ctx: c, subject: call.Subject, engine: eng}
			if _, err := eng.Invoke(b, class, call.Entry, script.String(call.Name), call.Value); err != nil {
				scriptErrors.Inc()
				slog.Warn("script error", "region", c.Name, "subject", call.Subject.String(), "event", call.Name, "error", err)
				c.log(fmt.Sprintf("script error in %s: %v", call.Subject, err))
			}
		}
	}
	if n := len(c.queue); n > 0 {
		slog.Debug("deferring script calls", "region", c.Name, "pending", n)
	}
}

func flatDistance(a, b mgl64.Vec3) float64 {
	return collision.Flat(a).Sub(collision.Flat(b)).Len()
}
