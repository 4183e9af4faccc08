package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for all overlap tests.
const Epsilon = 1e-6

// Rect is an axis aligned rectangle on the X/Z plane.
type Rect struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// CircleRectOverlap reports whether a circle centred at (x, z) intersects r.
func CircleRectOverlap(x, z, radius float64, r Rect) bool {
	nx := math.Max(r.MinX, math.Min(x, r.MaxX))
	nz := math.Max(r.MinZ, math.Min(z, r.MaxZ))
	dx := x - nx
	dz := z - nz
	return dx*dx+dz*dz < radius*radius-Epsilon
}

// Flat drops the height component of p.
func Flat(p mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{p.X(), p.Z()}
}

// PointInPolygon uses the even-odd rule on the X/Z plane.
func PointInPolygon(p mgl64.Vec2, poly []mgl64.Vec2) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y() > p.Y()) != (b.Y() > p.Y()) {
			x := (b.X()-a.X())*(p.Y()-a.Y())/(b.Y()-a.Y()) + a.X()
			if p.X() < x {
				inside = !inside
			}
		}
	}
	return inside
}

// sweep advances from toward to in small steps, sliding along whichever
// axis stays free when the full step is blocked.
func sweep(from, to mgl64.Vec3, stepLen float64, free func(mgl64.Vec3) bool) (mgl64.Vec3, bool) {
	delta := to.Sub(from)
	dist := Flat(delta).Len()
	if dist < Epsilon {
		return from, false
	}

	steps := int(math.Ceil(dist / stepLen))
	step := delta.Mul(1 / float64(steps))

	pos := from
	blocked := false
	for range steps {
		next := pos.Add(step)
		if free(next) {
			pos = next
			continue
		}
		blocked = true

		alongX := mgl64.Vec3{next.X(), pos.Y(), pos.Z()}
		alongZ := mgl64.Vec3{pos.X(), pos.Y(), next.Z()}
		switch {
		case step.X() != 0 && free(alongX):
			pos = alongX
		case step.Z() != 0 && free(alongZ):
			pos = alongZ
		default:
			return pos, true
		}
	}
	return pos, blocked
}
