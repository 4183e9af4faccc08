package region

import (
	"github.com/pixil98/go-regions/internal/script"
)

const defaultSpeed = 1.0

func hostGoto(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "goto: %v", ErrNotAnEntity)
	}
	dest := arg(args, 0)
	point, ok := dest.Vec()
	if !ok {
		point, ok = b.ctx.SectorCenter(dest.Str())
		if !ok {
			return b.fail(script.Bool(false), "goto: %v %q", ErrUnknownSector, dest.Str())
		}
	}
	e.SetAction(ActionGoto{Point: point, Speed: arg(args, 1).FloatOr(defaultSpeed)})
	return script.Bool(true)
}

func hostCloseIn(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "close_in: %v", ErrNotAnEntity)
	}
	id := argID(args, 0)
	if t := b.ctx.Entity(id); t == nil || !t.Live() || t == e {
		return b.fail(script.Bool(false), "close_in: %v %d", ErrInvalidTarget, id)
	}
	e.SetAction(ActionCloseIn{
		Target: id,
		Radius: arg(args, 1).FloatOr(0),
		Speed:  arg(args, 2).FloatOr(defaultSpeed),
	})
	return script.Bool(true)
}

func hostRandomWalk(b *Bridge, args []script.Value) script.Value {
	return startRandomWalk(b, args, false)
}

func hostRandomWalkInSector(b *Bridge, args []script.Value) script.Value {
	return startRandomWalk(b, args, true)
}

func startRandomWalk(b *Bridge, args []script.Value, inSector bool) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "random_walk: %v", ErrNotAnEntity)
	}
	a := ActionRandomWalk{
		Distance: arg(args, 0).FloatOr(1),
		Speed:    arg(args, 1).FloatOr(defaultSpeed),
		MaxSleep: arg(args, 2).FloatOr(0),
		InSector: inSector,
	}
	if inSector {
		s := b.ctx.Map.SectorAt(e.Pos)
		if s == nil {
			return b.fail(script.Bool(false), "random_walk_in_sector: entity is not inside a sector")
		}
		a.Sector = s.Name
	}
	e.SetAction(a)
	return script.Bool(true)
}

func hostPatrol(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "patrol: %v", ErrNotAnEntity)
	}
	route := arg(args, 0).Str()
	points, err := BuildRoute(b.ctx.Map.Linedefs, route, e.Pos)
	if err != nil {
		return b.fail(script.Bool(false), "patrol: %v", err)
	}
	mode := PatrolMode(arg(args, 3).Str())
	if mode != PatrolPingPong {
		mode = PatrolLoop
	}
	e.SetAction(&ActionPatrol{
		Route:   route,
		Points:  points,
		Wait:    arg(args, 1).FloatOr(0),
		Speed:   arg(args, 2).FloatOr(defaultSpeed),
		Mode:    mode,
		Forward: true,
	})
	return script.Bool(true)
}

func hostStop(b *Bridge, _ []script.Value) script.Value {
	if e := b.entity(); e != nil {
		e.SetAction(ActionOff{})
	}
	return script.None()
}

// hostTeleport moves the subject to a sector. Naming another region hands
// the entity to the manager as a transfer.
func hostTeleport(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "teleport: %v", ErrNotAnEntity)
	}
	sector := arg(args, 0).Str()
	region := arg(args, 1).Str()

	if region != "" && region != b.ctx.Name {
		b.ctx.RemoveEntity(e.ID)
		e.SetAction(ActionOff{})
		b.ctx.emit(TransferEntity{
			Region:     b.ctx.ID,
			Entity:     e,
			DestRegion: region,
			DestSector: sector,
		})
		return script.Bool(true)
	}

	p, ok := b.ctx.SectorCenter(sector)
	if !ok {
		return b.fail(script.Bool(false), "teleport: %v %q", ErrUnknownSector, sector)
	}
	e.SetPos(p)
	e.SetAction(ActionOff{})
	return script.Bool(true)
}
