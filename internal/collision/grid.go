package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cell addresses one tile of a Grid.
type Cell struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Grid is the tile based blocking layer used in tile collision mode.
type Grid struct {
	tileSize float64
	blocked  map[Cell]struct{}
}

func NewGrid(tileSize float64, blocked []Cell) *Grid {
	if tileSize <= 0 {
		tileSize = 1
	}
	g := &Grid{
		tileSize: tileSize,
		blocked:  make(map[Cell]struct{}, len(blocked)),
	}
	for _, c := range blocked {
		g.blocked[c] = struct{}{}
	}
	return g
}

func (g *Grid) TileSize() float64 { return g.tileSize }

func (g *Grid) SetBlocked(c Cell, blocked bool) {
	if blocked {
		g.blocked[c] = struct{}{}
		return
	}
	delete(g.blocked, c)
}

func (g *Grid) Blocked(c Cell) bool {
	_, ok := g.blocked[c]
	return ok
}

// CellAt returns the tile containing p.
func (g *Grid) CellAt(p mgl64.Vec3) Cell {
	return Cell{
		X: int(math.Floor(p.X() / g.tileSize)),
		Z: int(math.Floor(p.Z() / g.tileSize)),
	}
}

// Center returns the centre of c at height y.
func (g *Grid) Center(c Cell, y float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(float64(c.X) + 0.5) * g.tileSize,
		y,
		(float64(c.Z) + 0.5) * g.tileSize,
	}
}

// Free reports whether a circle of radius at p touches no blocked tile.
func (g *Grid) Free(p mgl64.Vec3, radius float64) bool {
	minC := g.CellAt(mgl64.Vec3{p.X() - radius, 0, p.Z() - radius})
	maxC := g.CellAt(mgl64.Vec3{p.X() + radius, 0, p.Z() + radius})
	for x := minC.X; x <= maxC.X; x++ {
		for z := minC.Z; z <= maxC.Z; z++ {
			if !g.Blocked(Cell{X: x, Z: z}) {
				continue
			}
			r := Rect{
				MinX: float64(x) * g.tileSize,
				MinZ: float64(z) * g.tileSize,
				MaxX: float64(x+1) * g.tileSize,
				MaxZ: float64(z+1) * g.tileSize,
			}
			if CircleRectOverlap(p.X(), p.Z(), radius, r) {
				return false
			}
		}
	}
	return true
}

// Move limits a move from -> to against blocked tiles. The second result
// reports whether the grid shortened the move.
func (g *Grid) Move(from, to mgl64.Vec3, radius float64) (mgl64.Vec3, bool) {
	return sweep(from, to, g.tileSize/4, func(p mgl64.Vec3) bool {
		return g.Free(p, radius)
	})
}
