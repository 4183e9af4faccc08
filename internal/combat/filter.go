package combat

import (
	"fmt"
	"strconv"
	"strings"
)

// AlignmentAttr decides who is an ally and who is an enemy.
const AlignmentAttr = "alignment"

type FilterKind uint8

const (
	FilterAny FilterKind = iota
	FilterSelf
	FilterAlly
	FilterEnemy
	FilterAttr
)

// Subject is the view of an entity a Filter needs.
type Subject interface {
	CombatID() uint32
	Attr(name string) (float64, bool)
}

// Filter selects which entities a spell may affect. Only FilterSelf ever
// matches the caster.
type Filter struct {
	Kind  FilterKind
	Attr  string
	Op    string
	Value float64
}

var filterOps = []string{"<=", ">=", "==", "!=", "<", ">"}

// ParseFilter accepts self, ally, enemy, any or <attr><op><number>.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "any", "all":
		return Filter{Kind: FilterAny}, nil
	case "self":
		return Filter{Kind: FilterSelf}, nil
	case "ally", "allies":
		return Filter{Kind: FilterAlly}, nil
	case "enemy", "enemies":
		return Filter{Kind: FilterEnemy}, nil
	}

	for _, op := range filterOps {
		attr, rhs, ok := strings.Cut(s, op)
		if !ok {
			continue
		}
		attr = strings.TrimSpace(attr)
		if attr == "" {
			return Filter{}, fmt.Errorf("target filter %q: missing attribute", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
		if err != nil {
			return Filter{}, fmt.Errorf("target filter %q: %w", s, err)
		}
		return Filter{Kind: FilterAttr, Attr: attr, Op: op, Value: v}, nil
	}

	return Filter{}, fmt.Errorf("unknown target filter %q", s)
}

func (f Filter) Match(caster, target Subject) bool {
	self := caster.CombatID() == target.CombatID()
	if f.Kind == FilterSelf {
		return self
	}
	if self {
		return false
	}

	switch f.Kind {
	case FilterAny:
		return true
	case FilterAlly:
		return sameSide(caster, target)
	case FilterEnemy:
		return !sameSide(caster, target)
	case FilterAttr:
		v, ok := target.Attr(f.Attr)
		if !ok {
			return false
		}
		return compare(v, f.Op, f.Value)
	}
	return false
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterSelf:
		return "self"
	case FilterAlly:
		return "ally"
	case FilterEnemy:
		return "enemy"
	case FilterAttr:
		return f.Attr + f.Op + strconv.FormatFloat(f.Value, 'f', -1, 64)
	}
	return "any"
}

func sameSide(a, b Subject) bool {
	av, _ := a.Attr(AlignmentAttr)
	bv, _ := b.Attr(AlignmentAttr)
	return (av < 0) == (bv < 0)
}

func compare(v float64, op string, rhs float64) bool {
	switch op {
	case "<=":
		return v <= rhs
	case ">=":
		return v >= rhs
	case "==":
		return v == rhs
	case "!=":
		return v != rhs
	case "<":
		return v < rhs
	case ">":
		return v > rhs
	}
	return false
}
