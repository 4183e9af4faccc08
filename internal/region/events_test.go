package region

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-testutil"
)

func TestAdmit_OncePerTick(t *testing.T) {
	c := newTestCtx(t, nil)
	s := EntitySubject(7)
	call := ScriptCall{Subject: s, Entry: EntryEvent, Name: "ping"}

	c.Ticks = 5
	testutil.AssertEqual(t, "first", c.admit(call), true)
	testutil.AssertEqual(t, "repeat", c.admit(call), false)

	other := call
	other.Entry = EntryUserEvent
	testutil.AssertEqual(t, "same name as user event", c.admit(other), false)

	otherSubject := call
	otherSubject.Subject = ItemSubject(7)
	testutil.AssertEqual(t, "other subject", c.admit(otherSubject), true)

	c.Ticks = 6
	testutil.AssertEqual(t, "next tick", c.admit(call), true)
}

func TestPruneEvents_BoundedAcrossTicks(t *testing.T) {
	c := newTestCtx(t, nil)

	for tick := int64(1); tick <= 1000; tick++ {
		c.Ticks = tick
		c.pruneEvents()
		s := ItemSubject(uint32(tick))
		testutil.AssertEqual(t, "startup admitted", c.admit(ScriptCall{Subject: s, Entry: EntryEvent, Name: "startup"}), true)
		c.BlockEvents(s, 1, "bumped_by_entity")
	}

	testutil.AssertEqual(t, "executed", len(c.executed), 1)
	// One minute is four ticks, so only the last four blocks are live.
	testutil.AssertEqual(t, "blocks", len(c.blocks), 4)
}

func TestAdmit_Blocked(t *testing.T) {
	tests := map[string]struct {
		entry   string
		name    string
		tick    int64
		expRuns bool
	}{
		"blocked event":       {entry: EntryEvent, name: "bumped_into_entity", tick: 3, expRuns: false},
		"blocked user event":  {entry: EntryUserEvent, name: "bumped_into_entity", tick: 3, expRuns: false},
		"unblocked name":      {entry: EntryEvent, name: "arrived", tick: 3, expRuns: true},
		"block expired":       {entry: EntryEvent, name: "bumped_into_entity", tick: 8, expRuns: true},
		"block expired later": {entry: EntryEvent, name: "bumped_into_entity", tick: 50, expRuns: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestCtx(t, nil)
			s := EntitySubject(3)
			// Two minutes at four ticks a minute.
			c.BlockEvents(s, 2, "bumped_into_entity")

			c.Ticks = tt.tick
			got := c.admit(ScriptCall{Subject: s, Entry: tt.entry, Name: tt.name})
			testutil.AssertEqual(t, "runs", got, tt.expRuns)
		})
	}
}

func TestFireNotifications(t *testing.T) {
	c := newTestCtx(t, nil)
	s := EntitySubject(1)
	c.Notify(s, 1, "wake")
	c.Notify(s, 3, "later")

	c.Ticks = 3
	c.fireNotifications()
	testutil.AssertEqual(t, "early", queued(c, s, "wake"), 0)

	c.Ticks = 4
	c.fireNotifications()
	testutil.AssertEqual(t, "due", queued(c, s, "wake"), 1)
	testutil.AssertEqual(t, "not due", queued(c, s, "later"), 0)
	testutil.AssertEqual(t, "remaining", len(c.notifications), 1)

	c.fireNotifications()
	testutil.AssertEqual(t, "fires once", queued(c, s, "wake"), 1)
}

func TestScanProximity(t *testing.T) {
	c := newTestCtx(t, nil)
	watcher := addTestEntity(c, mgl64.Vec3{0, 0, 0}, nil)
	far := addTestEntity(c, mgl64.Vec3{10, 0, 0}, nil)
	near := addTestEntity(c, mgl64.Vec3{0, 0, 2}, nil)
	corpse := addTestEntity(c, mgl64.Vec3{1, 0, 0}, Attributes{AttrMode: script.String(ModeDead)})

	c.SetProximity(watcher.ID, 3)
	c.scanProximity()

	s := EntitySubject(watcher.ID)
	testutil.AssertEqual(t, "warnings", queued(c, s, "proximity_warning"), 1)
	testutil.AssertEqual(t, "nearest", queuedValue(t, c, s, "proximity_warning").IntOr(0), int(near.ID))
	testutil.AssertEqual(t, "far untouched", queued(c, EntitySubject(far.ID), "proximity_warning"), 0)
	testutil.AssertEqual(t, "corpse untouched", queued(c, EntitySubject(corpse.ID), "proximity_warning"), 0)

	c.SetProximity(watcher.ID, 0)
	c.queue = nil
	c.scanProximity()
	testutil.AssertEqual(t, "unsubscribed", c.Pending(), 0)
}

func TestDecrementCooldowns(t *testing.T) {
	c := newTestCtx(t, nil)
	key := combat.CooldownAttr("fireball")
	e := addTestEntity(c, mgl64.Vec3{}, Attributes{
		key:  script.Int(2),
		"HP": script.Int(9),
	})

	c.decrementCooldowns()
	testutil.AssertEqual(t, "after one", e.Attrs.Int(key, -1), 1)
	c.decrementCooldowns()
	c.decrementCooldowns()
	testutil.AssertEqual(t, "floors at zero", e.Attrs.Int(key, -1), 0)
	testutil.AssertEqual(t, "other attrs", e.Attrs.Int("HP", -1), 9)
}

func TestTimeOfDay(t *testing.T) {
	c := newTestCtx(t, nil)

	c.Ticks = 40
	testutil.AssertEqual(t, "from ticks", c.TimeOfDay(), int64(10))

	c.SetTimeOfDay(600)
	testutil.AssertEqual(t, "set", c.TimeOfDay(), int64(600))

	c.Ticks += 4 * 60
	testutil.AssertEqual(t, "advanced", c.TimeOfDay(), int64(660))

	c.SetTimeOfDay(1439)
	c.Ticks += 4
	testutil.AssertEqual(t, "wraps", c.TimeOfDay(), int64(0))
}

func TestRunScripts_MissingEntryDoesNotClaimTheTick(t *testing.T) {
	p, err := script.Compile("npc", `
function event(name, value)
  set_attr("last", name)
end
`)
	if err != nil {
		t.Fatalf("compiling: %v", err)
	}
	eng := script.NewEngine()
	defer eng.Close()
	if err := eng.Load(p); err != nil {
		t.Fatalf("loading: %v", err)
	}

	c := newTestCtx(t, nil)
	e := addTestEntity(c, mgl64.Vec3{}, nil)
	c.QueueUserEvent(EntitySubject(e.ID), "wave", script.None())
	c.QueueEvent(EntitySubject(e.ID), "wave", script.None())

	runScripts(c, eng)

	testutil.AssertEqual(t, "event ran", e.Attrs.Str("last"), "wave")
}
