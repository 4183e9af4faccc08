package region

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
)

const randomWalkTries = 10

// stepEntities advances every live entity's action by one frame and then
// derives its animation.
func stepEntities(c *RegionCtx) {
	casting := map[uint32]bool{}
	for _, it := range c.Items {
		if it.Flight != nil && it.Flight.Phase == combat.PhaseCasting {
			casting[it.Flight.Caster] = true
		}
	}

	for _, e := range c.Entities {
		if e.Live() {
			stepAction(c, e)
		}
		updateAnim(c, e, casting[e.ID])
	}
}

func stepAction(c *RegionCtx, e *Entity) {
	switch a := e.Action.(type) {
	case ActionMove:
		stepDirectional(c, e, a.Dir)
	case ActionCloseIn:
		stepCloseIn(c, e, a)
	case ActionGoto:
		arrived, _ := MoveToward(c, e, a.Point, a.Speed, DefaultArriveRadius)
		if arrived {
			c.QueueEvent(EntitySubject(e.ID), "arrived", script.Vec3(a.Point.X(), a.Point.Y(), a.Point.Z()))
			e.SetAction(ActionOff{})
		}
	case ActionRandomWalk:
		stepRandomWalk(c, e, a)
	case *ActionPatrol:
		stepPatrol(c, e, a)
	case ActionSleepAndSwitch:
		if c.Ticks >= a.WakeTick {
			e.SetAction(a.Next)
		}
	}
}

func stepDirectional(c *RegionCtx, e *Entity, dir Direction) {
	if intent := e.Attrs.Str(AttrIntent); e.IsPlayer() && intent != "" {
		dispatchIntent(c, e, dir, intent)
		e.SetAction(ActionOff{})
		return
	}

	blocking := c.Config.BlocksEntities()
	if e.Camera == CameraFirstPerson {
		move, turn := dir.firstPerson()
		if turn != 0 {
			e.Turn(turn * c.Config.TurnSpeedDegPerSec * c.DeltaTime)
		}
		if move != 0 {
			MoveEntity(c, e, move, blocking)
		}
		return
	}

	e.SetOrientation(dir.compass())
	MoveEntity(c, e, 1, blocking)
}

// dispatchIntent delivers a player's intent to whatever occupies the spot
// in front of them.
func dispatchIntent(c *RegionCtx, e *Entity, dir Direction, intent string) {
	heading := dir.compass()
	if e.Camera == CameraFirstPerson {
		heading = e.Orientation
	}

	target, ok := c.intentTarget(e, heading)
	if !ok {
		return
	}
	c.QueueEvent(target, "intent", script.Tagged(float64(e.ID), 0, intent))
	c.QueueUserEvent(EntitySubject(e.ID), "intent", script.Tagged(float64(target.ID), 0, intent))
}

func (c *RegionCtx) intentTarget(e *Entity, heading mgl64.Vec2) (Subject, bool) {
	origin := collision.Flat(e.Pos)

	if c.Config.CollisionMode == CollisionTile {
		ahead := origin.Add(heading.Mul(c.Grid.TileSize()))
		cell := c.Grid.CellAt(mgl64.Vec3{ahead.X(), 0, ahead.Y()})
		for _, o := range c.Entities {
			if o != e && o.Live() && c.Grid.CellAt(o.Pos) == cell {
				return EntitySubject(o.ID), true
			}
		}
		for _, it := range c.Items {
			if it.IsVisible() && it.Flight == nil && c.Grid.CellAt(it.Pos) == cell {
				return ItemSubject(it.ID), true
			}
		}
		return Subject{}, false
	}

	best := c.Config.IntentDistance
	var found Subject
	ok := false
	consider := func(s Subject, p mgl64.Vec3) {
		d := collision.Flat(p).Sub(origin)
		dist := d.Len()
		if dist > best || dist < collision.Epsilon {
			return
		}
		if d.Normalize().Dot(heading) < 0.7 {
			return
		}
		best, found, ok = dist, s, true
	}
	for _, o := range c.Entities {
		if o != e && o.Live() {
			consider(EntitySubject(o.ID), o.Pos)
		}
	}
	for _, it := range c.Items {
		if it.IsVisible() && it.Flight == nil {
			consider(ItemSubject(it.ID), it.Pos)
		}
	}
	return found, ok
}

func stepCloseIn(c *RegionCtx, e *Entity, a ActionCloseIn) {
	t := c.Entity(a.Target)
	if t == nil || !t.Live() {
		e.SetAction(ActionOff{})
		return
	}
	reach := a.Radius + e.Radius() + t.Radius()
	arrived, _ := MoveToward(c, e, t.Pos, a.Speed, reach)
	if arrived && !a.Reached {
		c.QueueEvent(EntitySubject(e.ID), "closed_in", script.Int(int(t.ID)))
	}
	a.Reached = arrived
	e.Action = a
}

func stepRandomWalk(c *RegionCtx, e *Entity, a ActionRandomWalk) {
	if a.Phase == 0 {
		p, ok := c.pickWalkTarget(e, a)
		if !ok {
			sleepThen(c, e, a.MaxSleep, a)
			return
		}
		a.Phase = 1
		a.Target = p
		e.SetAction(a)
		return
	}

	arrived, blocked := MoveToward(c, e, a.Target, a.Speed, DefaultArriveRadius)
	if arrived || blocked {
		a.Phase = 0
		sleepThen(c, e, a.MaxSleep, a)
	}
}

// sleepThen parks e for a random part of maxSleep minutes before switching
// to next.
func sleepThen(c *RegionCtx, e *Entity, maxSleep float64, next Action) {
	minutes := c.Rand.Float64() * maxSleep
	e.SetAction(ActionSleepAndSwitch{
		WakeTick: c.Ticks + c.Config.Ticks(minutes),
		Next:     next,
	})
}

func (c *RegionCtx) pickWalkTarget(e *Entity, a ActionRandomWalk) (mgl64.Vec3, bool) {
	var sector *Sector
	if a.InSector {
		sector = c.Map.SectorByName(a.Sector)
	}
	radius := e.Radius()

	for range randomWalkTries {
		angle := c.Rand.Float64() * 2 * math.Pi
		dist := c.Rand.Float64() * a.Distance
		p := mgl64.Vec3{
			e.Pos.X() + math.Cos(angle)*dist,
			e.Pos.Y(),
			e.Pos.Z() + math.Sin(angle)*dist,
		}
		if sector != nil && !sector.Contains(p) {
			continue
		}
		if c.Config.CollisionMode == CollisionMesh {
			if !c.World.Free(p, radius) {
				continue
			}
		} else if !c.Grid.Free(p, radius) {
			continue
		}
		return p, true
	}
	return mgl64.Vec3{}, false
}

func stepPatrol(c *RegionCtx, e *Entity, a *ActionPatrol) {
	if len(a.Points) == 0 {
		e.SetAction(ActionOff{})
		return
	}
	if c.Ticks < a.WaitUntil {
		return
	}

	arrived, blocked := MoveToward(c, e, a.Points[a.Index], a.Speed, DefaultArriveRadius)
	if arrived {
		c.QueueEvent(EntitySubject(e.ID), "arrived", script.Int(a.Index))
		a.WaitUntil = c.Ticks + c.Config.Ticks(a.Wait)
		a.advance()
		return
	}
	if blocked {
		e.SetAction(ActionSleepAndSwitch{WakeTick: c.Ticks + c.Config.Ticks(1), Next: a})
	}
}

// updateAnim derives the animation tag. Attacking wins over casting, which
// wins over walking.
func updateAnim(c *RegionCtx, e *Entity, casting bool) {
	anim := AnimIdle
	switch {
	case e.attackUntil > c.Ticks:
		anim = AnimAttack
	case casting:
		anim = AnimCast
	case e.movedThisFrame:
		anim = AnimWalk
	}
	e.movedThisFrame = false

	if anim != e.Anim {
		e.Anim = anim
		e.markDirty(DirtyAnim)
	}
}
