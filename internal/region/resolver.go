package region

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/script"
)

// DefaultArriveRadius is how close goto and patrol need to get to a point.
const DefaultArriveRadius = 0.1

type obstacle struct {
	subject Subject
	pos     mgl64.Vec2
	radius  float64
	blocks  bool
}

func (c *RegionCtx) obstacles(mover *Entity, blockEntities bool) []obstacle {
	var obs []obstacle
	for _, o := range c.Entities {
		if o == mover || !o.Live() {
			continue
		}
		obs = append(obs, obstacle{
			subject: EntitySubject(o.ID),
			pos:     collision.Flat(o.Pos),
			radius:  o.Radius(),
			blocks:  blockEntities,
		})
	}
	for _, it := range c.Items {
		if !it.IsVisible() || it.Flight != nil {
			continue
		}
		obs = append(obs, obstacle{
			subject: ItemSubject(it.ID),
			pos:     collision.Flat(it.Pos),
			radius:  it.Radius(),
			blocks:  it.IsBlocking(),
		})
	}
	return obs
}

// MoveEntity moves e along its orientation for one frame. dir is the sign
// of the move, 1 forward and -1 backward. The result reports whether map
// geometry shortened the move.
func MoveEntity(c *RegionCtx, e *Entity, dir float64, blocking bool) bool {
	step := c.Config.MovementUnitsPerSec * e.Attrs.Float(AttrSpeed, 1) * c.DeltaTime * dir
	disp := mgl64.Vec3{e.Orientation.X() * step, 0, e.Orientation.Y() * step}
	return moveBy(c, e, disp, blocking)
}

// MoveToward steers e to goal at speed. arriveRadius is the flat distance
// that counts as arrival. blocked is true when geometry stopped most of the
// move.
func MoveToward(c *RegionCtx, e *Entity, goal mgl64.Vec3, speed, arriveRadius float64) (arrived, blocked bool) {
	if c.arrivedAt(e, goal, arriveRadius) {
		return true, false
	}
	e.Face(goal)

	dist := flatDistance(e.Pos, goal)
	step := c.Config.MovementUnitsPerSec * speed * c.DeltaTime
	if step > dist {
		step = dist
	}
	if step <= 0 {
		return false, false
	}
	disp := mgl64.Vec3{e.Orientation.X() * step, 0, e.Orientation.Y() * step}

	from := e.Pos
	geo := moveBy(c, e, disp, c.Config.BlocksEntities())
	moved := flatDistance(from, e.Pos)
	return c.arrivedAt(e, goal, arriveRadius), geo && moved < step/2
}

func (c *RegionCtx) arrivedAt(e *Entity, goal mgl64.Vec3, radius float64) bool {
	if flatDistance(e.Pos, goal) > math.Max(radius, collision.Epsilon) {
		return false
	}
	if c.Config.CollisionMode == CollisionMesh {
		return math.Abs(e.Pos.Y()-goal.Y()) <= c.Config.StepHeight
	}
	return true
}

// moveBy resolves a displacement against other bodies and then the map.
func moveBy(c *RegionCtx, e *Entity, disp mgl64.Vec3, blocking bool) bool {
	if collision.Flat(disp).Len() < collision.Epsilon {
		return false
	}
	from := e.Pos
	origin := collision.Flat(from)
	delta := collision.Flat(disp)
	radius := e.Radius()

	obs := c.obstacles(e, blocking)
	bumped := map[Subject]bool{}

	for range c.Config.CollisionAttempts {
		corrected := false
		for _, o := range obs {
			cand := origin.Add(delta)
			minDist := radius + o.radius
			away := cand.Sub(o.pos)
			if away.Len() >= minDist-collision.Epsilon {
				continue
			}
			if !bumped[o.subject] {
				bumped[o.subject] = true
				c.bump(e, o.subject)
			}
			if !o.blocks {
				continue
			}

			n := contactNormal(away, delta)
			if into := delta.Dot(n); into < 0 {
				delta = delta.Sub(n.Mul(into))
			}
			cand = origin.Add(delta)
			if rest := cand.Sub(o.pos); rest.Len() < minDist {
				if rest.Len() > collision.Epsilon {
					n = rest.Normalize()
				}
				delta = o.pos.Add(n.Mul(minDist)).Sub(origin)
			}
			corrected = true
		}
		if !corrected {
			break
		}
	}

	to := mgl64.Vec3{origin.X() + delta.X(), from.Y(), origin.Y() + delta.Y()}

	var final mgl64.Vec3
	var geoBlocked bool
	if c.Config.CollisionMode == CollisionMesh {
		final, geoBlocked = c.World.MoveSwept(from, to, radius)
	} else {
		final, geoBlocked = c.Grid.Move(from, to, radius)
	}

	final[1] = c.floorAt(final)
	e.SetPos(final)
	if final != from {
		e.movedThisFrame = true
	}
	return geoBlocked
}

// contactNormal points from an obstacle toward the mover. Coincident
// centres push straight back against the move.
func contactNormal(away, delta mgl64.Vec2) mgl64.Vec2 {
	if away.Len() > collision.Epsilon {
		return away.Normalize()
	}
	if delta.Len() > collision.Epsilon {
		return delta.Normalize().Mul(-1)
	}
	return mgl64.Vec2{0, 1}
}

// floorAt resamples the height under p from the colliders, then the
// sector floor.
func (c *RegionCtx) floorAt(p mgl64.Vec3) float64 {
	if y, ok := c.World.FloorHeight(p.X(), p.Y(), p.Z()); ok {
		return y
	}
	if s := c.Map.SectorAt(p); s != nil {
		return s.Floor
	}
	return p.Y()
}

func (c *RegionCtx) bump(mover *Entity, other Subject) {
	val := script.Int(int(other.ID))
	self := EntitySubject(mover.ID)
	if other.Kind == SubjectItem {
		c.QueueEvent(self, "bumped_into_item", val)
	} else {
		c.QueueEvent(self, "bumped_into_entity", val)
	}
	c.QueueEvent(other, "bumped_by_entity", script.Int(int(mover.ID)))
}
