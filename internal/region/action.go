package region

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Action is what an entity is currently doing. An entity has exactly one;
// ActionOff means idle.
type Action interface {
	actionName() string
}

// Direction is one of the eight directional intents.
type Direction uint8

const (
	DirForward Direction = iota
	DirBackward
	DirLeft
	DirRight
	DirForwardLeft
	DirForwardRight
	DirBackwardLeft
	DirBackwardRight
)

var directionNames = map[Direction]string{
	DirForward:       "forward",
	DirBackward:      "backward",
	DirLeft:          "left",
	DirRight:         "right",
	DirForwardLeft:   "forward_left",
	DirForwardRight:  "forward_right",
	DirBackwardLeft:  "backward_left",
	DirBackwardRight: "backward_right",
}

func (d Direction) String() string { return directionNames[d] }

// ParseDirection accepts the names produced by Direction.String.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// compass returns the fixed heading of d for top-down cameras. North is -Z.
func (d Direction) compass() mgl64.Vec2 {
	const diag = 0.7071067811865476
	switch d {
	case DirForward:
		return mgl64.Vec2{0, -1}
	case DirBackward:
		return mgl64.Vec2{0, 1}
	case DirLeft:
		return mgl64.Vec2{-1, 0}
	case DirRight:
		return mgl64.Vec2{1, 0}
	case DirForwardLeft:
		return mgl64.Vec2{-diag, -diag}
	case DirForwardRight:
		return mgl64.Vec2{diag, -diag}
	case DirBackwardLeft:
		return mgl64.Vec2{-diag, diag}
	}
	return mgl64.Vec2{diag, diag}
}

// firstPerson splits d into a move sign along the orientation and a turn
// sign for first person cameras.
func (d Direction) firstPerson() (move, turn float64) {
	switch d {
	case DirForward:
		return 1, 0
	case DirBackward:
		return -1, 0
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	case DirForwardLeft:
		return 1, -1
	case DirForwardRight:
		return 1, 1
	case DirBackwardLeft:
		return -1, -1
	}
	return -1, 1
}

type ActionOff struct{}

type ActionMove struct {
	Dir Direction
}

type ActionCloseIn struct {
	Target uint32
	Radius float64
	Speed  float64
	// Reached is set while the target is within reach, so closed_in fires
	// once per approach.
	Reached bool
}

type ActionGoto struct {
	Point mgl64.Vec3
	Speed float64
}

type ActionRandomWalk struct {
	Distance float64
	Speed    float64
	// MaxSleep is in in-game minutes.
	MaxSleep float64
	InSector bool
	Sector   string

	// Phase 0 picks a destination, phase 1 walks to it.
	Phase  int
	Target mgl64.Vec3
}

type PatrolMode string

const (
	PatrolLoop     PatrolMode = "loop"
	PatrolPingPong PatrolMode = "pingpong"
)

type ActionPatrol struct {
	Route  string
	Points []mgl64.Vec3
	// Wait is in in-game minutes.
	Wait  float64
	Speed float64
	Mode  PatrolMode

	Index     int
	Forward   bool
	WaitUntil int64
}

type ActionSleepAndSwitch struct {
	WakeTick int64
	Next     Action
}

func (ActionOff) actionName() string            { return "off" }
func (a ActionMove) actionName() string         { return a.Dir.String() }
func (ActionCloseIn) actionName() string        { return "close_in" }
func (ActionGoto) actionName() string           { return "goto" }
func (ActionRandomWalk) actionName() string     { return "random_walk" }
func (*ActionPatrol) actionName() string        { return "patrol" }
func (ActionSleepAndSwitch) actionName() string { return "sleep" }

// ActionName is the wire name of a, used in diffs and logs.
func ActionName(a Action) string {
	if a == nil {
		return "off"
	}
	return a.actionName()
}

// advance moves the patrol to its next waypoint.
func (p *ActionPatrol) advance() {
	n := len(p.Points)
	if n < 2 {
		return
	}
	if p.Mode != PatrolPingPong {
		p.Index = (p.Index + 1) % n
		return
	}
	if p.Forward {
		if p.Index >= n-1 {
			p.Forward = false
			p.Index = n - 2
			return
		}
		p.Index++
		return
	}
	if p.Index <= 0 {
		p.Forward = true
		p.Index = 1
		return
	}
	p.Index--
}
