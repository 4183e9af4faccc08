package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultStepHeight = 0.5
	DefaultBodyHeight = 1.8
)

// Box is an axis aligned collider. A named Opening ties the box to
// whatever opens and closes it, e.g. the door item of a sector.
type Box struct {
	Min     mgl64.Vec3 `json:"min"`
	Max     mgl64.Vec3 `json:"max"`
	Opening string     `json:"opening,omitempty"`
}

func (b Box) rect() Rect {
	return Rect{MinX: b.Min.X(), MinZ: b.Min.Z(), MaxX: b.Max.X(), MaxZ: b.Max.Z()}
}

func (b Box) containsFlat(x, z float64) bool {
	return x >= b.Min.X() && x <= b.Max.X() && z >= b.Min.Z() && z <= b.Max.Z()
}

// World is the mesh collision layer: a set of boxes that both block and
// carry floors.
type World struct {
	StepHeight float64
	BodyHeight float64

	boxes []Box
	open  map[string]bool
}

func NewWorld(boxes []Box) *World {
	return &World{
		StepHeight: DefaultStepHeight,
		BodyHeight: DefaultBodyHeight,
		boxes:      boxes,
		open:       map[string]bool{},
	}
}

// SetOpen marks every box bound to opening as passable or not.
func (w *World) SetOpen(opening string, open bool) {
	if open {
		w.open[opening] = true
		return
	}
	delete(w.open, opening)
}

func (w *World) IsOpen(opening string) bool {
	return w.open[opening]
}

// HasOpening reports whether any box is bound to opening.
func (w *World) HasOpening(opening string) bool {
	for _, b := range w.boxes {
		if b.Opening == opening {
			return true
		}
	}
	return false
}

func (w *World) blocks(b Box, p mgl64.Vec3) bool {
	if b.Opening != "" && w.open[b.Opening] {
		return false
	}
	// Anything the body can step onto is floor, not wall.
	if b.Max.Y() <= p.Y()+w.StepHeight {
		return false
	}
	return b.Min.Y() < p.Y()+w.BodyHeight
}

// Free reports whether a body of radius at p touches no blocking box.
func (w *World) Free(p mgl64.Vec3, radius float64) bool {
	for _, b := range w.boxes {
		if !w.blocks(b, p) {
			continue
		}
		if CircleRectOverlap(p.X(), p.Z(), radius, b.rect()) {
			return false
		}
	}
	return true
}

// MoveSwept limits a move from -> to against the boxes.
func (w *World) MoveSwept(from, to mgl64.Vec3, radius float64) (mgl64.Vec3, bool) {
	stepLen := math.Max(radius/2, 0.05)
	return sweep(from, to, stepLen, func(p mgl64.Vec3) bool {
		return w.Free(p, radius)
	})
}

// FloorHeight returns the highest box top under (x, z) reachable from
// height y. The second result is false when no box lies underneath.
func (w *World) FloorHeight(x, y, z float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, b := range w.boxes {
		if b.Opening != "" && w.open[b.Opening] {
			continue
		}
		if !b.containsFlat(x, z) {
			continue
		}
		top := b.Max.Y()
		if top > y+w.StepHeight {
			continue
		}
		if top > best {
			best = top
			found = true
		}
	}
	return best, found
}
