package region

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-testutil"
)

func TestBuildRoute(t *testing.T) {
	tests := map[string]struct {
		linedefs  []Linedef
		from      mgl64.Vec3
		expPoints []mgl64.Vec3
		expErr    string
	}{
		"stitches reversed segments": {
			linedefs: []Linedef{
				{Name: "walk", Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{1, 0}},
				{Name: "walk", Start: mgl64.Vec2{2, 0}, End: mgl64.Vec2{1, 0}},
				{Name: "other", Start: mgl64.Vec2{5, 5}, End: mgl64.Vec2{6, 6}},
			},
			from:      mgl64.Vec3{0, 1, 0},
			expPoints: []mgl64.Vec3{{0, 1, 0}, {1, 1, 0}, {2, 1, 0}},
		},
		"starts at nearest end": {
			linedefs: []Linedef{
				{Name: "walk", Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{0, 4}},
			},
			from:      mgl64.Vec3{0, 0, 5},
			expPoints: []mgl64.Vec3{{0, 0, 4}, {0, 0, 0}},
		},
		"gap keeps both ends": {
			linedefs: []Linedef{
				{Name: "walk", Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{1, 0}},
				{Name: "walk", Start: mgl64.Vec2{3, 0}, End: mgl64.Vec2{4, 0}},
			},
			from:      mgl64.Vec3{},
			expPoints: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {3, 0, 0}, {4, 0, 0}},
		},
		"unknown route": {
			linedefs: []Linedef{{Name: "walk", Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{1, 0}}},
			expErr:   "no route named",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			route := "walk"
			if tt.expErr != "" {
				route = "missing"
			}
			points, err := BuildRoute(tt.linedefs, route, tt.from)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "length", len(points), len(tt.expPoints))
			for i := range points {
				testutil.AssertEqual(t, "point", points[i], tt.expPoints[i])
			}
		})
	}
}

func TestPatrolAdvance(t *testing.T) {
	tests := map[string]struct {
		mode       PatrolMode
		index      int
		forward    bool
		expIndex   int
		expForward bool
	}{
		"loop steps":        {mode: PatrolLoop, index: 0, forward: true, expIndex: 1, expForward: true},
		"loop wraps":        {mode: PatrolLoop, index: 2, forward: true, expIndex: 0, expForward: true},
		"pingpong forward":  {mode: PatrolPingPong, index: 1, forward: true, expIndex: 2, expForward: true},
		"pingpong reverses": {mode: PatrolPingPong, index: 2, forward: true, expIndex: 1, expForward: false},
		"pingpong back":     {mode: PatrolPingPong, index: 1, forward: false, expIndex: 0, expForward: false},
		"pingpong returns":  {mode: PatrolPingPong, index: 0, forward: false, expIndex: 1, expForward: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := &ActionPatrol{
				Points:  make([]mgl64.Vec3, 3),
				Mode:    tt.mode,
				Index:   tt.index,
				Forward: tt.forward,
			}
			p.advance()
			testutil.AssertEqual(t, "index", p.Index, tt.expIndex)
			testutil.AssertEqual(t, "forward", p.Forward, tt.expForward)
		})
	}
}

func TestStepPatrol_ArrivesAndReverses(t *testing.T) {
	c := newTestCtx(t, nil)
	e := addTestEntity(c, mgl64.Vec3{2, 0, 0}, nil)
	patrol := &ActionPatrol{
		Points:  []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		Wait:    1,
		Speed:   1,
		Mode:    PatrolPingPong,
		Index:   2,
		Forward: true,
	}
	e.SetAction(patrol)

	stepEntities(c)

	testutil.AssertEqual(t, "arrived", queuedValue(t, c, EntitySubject(e.ID), "arrived"), script.Int(2))
	testutil.AssertEqual(t, "next index", patrol.Index, 1)
	testutil.AssertEqual(t, "reversed", patrol.Forward, false)
	testutil.AssertEqual(t, "waits", patrol.WaitUntil, c.Ticks+4)

	stepEntities(c)
	testutil.AssertEqual(t, "waiting in place", e.Pos, mgl64.Vec3{2, 0, 0})

	c.Ticks = patrol.WaitUntil
	stepEntities(c)
	if !nearlyEqual(e.Pos, mgl64.Vec3{2 - 4.0/30, 0, 0}) {
		t.Errorf("expected to head back toward waypoint 1, got %v", e.Pos)
	}
}

func TestHostMovement_OneActionAtATime(t *testing.T) {
	m := &Map{
		Name: "test",
		Linedefs: []Linedef{
			{Name: "beat", Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{4, 0}},
		},
		Sectors: []Sector{
			{Name: "yard", Vertices: []mgl64.Vec2{{10, 10}, {14, 10}, {14, 14}, {10, 14}}},
		},
	}
	c := newTestCtx(t, m)
	e := addTestEntity(c, mgl64.Vec3{}, nil)
	b := NewBridge(c, EntitySubject(e.ID), nil)

	call := func(name string, args ...script.Value) script.Value {
		t.Helper()
		v, ok := b.OnHostCall(name, args)
		if !ok {
			t.Fatalf("host call %q not handled", name)
		}
		return v
	}

	testutil.AssertEqual(t, "goto sector", call("goto", script.String("yard")), script.Bool(true))
	g, ok := e.Action.(ActionGoto)
	testutil.AssertEqual(t, "goto action", ok, true)
	testutil.AssertEqual(t, "goto point", g.Point, mgl64.Vec3{12, 0, 12})

	testutil.AssertEqual(t, "patrol", call("patrol", script.String("beat"), script.Int(0), script.Int(2), script.String("pingpong")), script.Bool(true))
	p, ok := e.Action.(*ActionPatrol)
	testutil.AssertEqual(t, "patrol replaces goto", ok, true)
	testutil.AssertEqual(t, "patrol mode", p.Mode, PatrolPingPong)
	testutil.AssertEqual(t, "patrol points", len(p.Points), 2)

	testutil.AssertEqual(t, "bad sector", call("goto", script.String("nowhere")), script.Bool(false))
	_, still := e.Action.(*ActionPatrol)
	testutil.AssertEqual(t, "failed call keeps action", still, true)

	call("stop")
	testutil.AssertEqual(t, "stopped", ActionName(e.Action), "off")
}

func TestHostTeleport(t *testing.T) {
	m := &Map{
		Name: "test",
		Sectors: []Sector{
			{Name: "hall", Floor: 1, Vertices: []mgl64.Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}},
		},
	}

	t.Run("same region", func(t *testing.T) {
		c := newTestCtx(t, m)
		e := addTestEntity(c, mgl64.Vec3{9, 0, 9}, nil)
		b := NewBridge(c, EntitySubject(e.ID), nil)

		got, _ := b.OnHostCall("teleport", []script.Value{script.String("hall")})
		testutil.AssertEqual(t, "result", got, script.Bool(true))
		testutil.AssertEqual(t, "pos", e.Pos, mgl64.Vec3{1, 1, 1})
	})

	t.Run("other region", func(t *testing.T) {
		c := newTestCtx(t, m)
		e := addTestEntity(c, mgl64.Vec3{9, 0, 9}, nil)
		b := NewBridge(c, EntitySubject(e.ID), nil)

		got, _ := b.OnHostCall("teleport", []script.Value{script.String("gate"), script.String("castle")})
		testutil.AssertEqual(t, "result", got, script.Bool(true))
		testutil.AssertEqual(t, "left region", c.Entity(e.ID) == nil, true)

		transfers := outboxOf[TransferEntity](c)
		testutil.AssertEqual(t, "transfers", len(transfers), 1)
		testutil.AssertEqual(t, "dest", transfers[0].DestRegion, "castle")
		testutil.AssertEqual(t, "sector", transfers[0].DestSector, "gate")
		testutil.AssertEqual(t, "entity", transfers[0].Entity.ID, e.ID)
	})
}
