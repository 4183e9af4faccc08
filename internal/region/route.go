package region

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/collision"
)

// BuildRoute stitches every linedef named name into one ordered chain of
// points. The chain starts at the endpoint nearest from, and each step
// continues with the unused segment whose endpoint lies nearest the end of
// the chain so far.
func BuildRoute(linedefs []Linedef, name string, from mgl64.Vec3) ([]mgl64.Vec3, error) {
	var segs []Linedef
	for _, l := range linedefs {
		if l.Name == name {
			segs = append(segs, l)
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("no route named %q", name)
	}

	used := make([]bool, len(segs))
	cursor := collision.Flat(from)

	first, firstFlip := nearestSegment(segs, used, cursor)
	used[first] = true
	a, b := ends(segs[first], firstFlip)
	chain := []mgl64.Vec2{a, b}
	cursor = b

	for range len(segs) - 1 {
		idx, flip := nearestSegment(segs, used, cursor)
		used[idx] = true
		a, b := ends(segs[idx], flip)
		if a.Sub(cursor).Len() > collision.Epsilon {
			chain = append(chain, a)
		}
		chain = append(chain, b)
		cursor = b
	}

	points := make([]mgl64.Vec3, len(chain))
	for i, p := range chain {
		points[i] = mgl64.Vec3{p.X(), from.Y(), p.Y()}
	}
	return points, nil
}

// nearestSegment finds the unused segment with an endpoint closest to p.
// flip is true when that endpoint is the segment's End.
func nearestSegment(segs []Linedef, used []bool, p mgl64.Vec2) (int, bool) {
	best, bestFlip := -1, false
	bestDist := math.Inf(1)
	for i, s := range segs {
		if used[i] {
			continue
		}
		if d := s.Start.Sub(p).Len(); d < bestDist {
			best, bestFlip, bestDist = i, false, d
		}
		if d := s.End.Sub(p).Len(); d < bestDist {
			best, bestFlip, bestDist = i, true, d
		}
	}
	return best, bestFlip
}

func ends(l Linedef, flip bool) (mgl64.Vec2, mgl64.Vec2) {
	if flip {
		return l.End, l.Start
	}
	return l.Start, l.End
}
