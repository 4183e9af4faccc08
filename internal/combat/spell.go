package combat

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/script"
)

// Spell attribute keys read from an item template.
const (
	AttrIsSpell        = "is_spell"
	AttrCastTime       = "spell_cast_time"
	AttrCastOffset     = "spell_cast_offset"
	AttrSpeed          = "spell_speed"
	AttrMaxDistance    = "spell_max_distance"
	AttrLifetime       = "spell_lifetime"
	AttrEffect         = "spell_effect"
	AttrEffectDuration = "spell_effect_duration"
	AttrCooldown       = "spell_cooldown"
	AttrSuccessPct     = "spell_success_pct"
	AttrDamage         = "spell_damage"
	AttrHeal           = "spell_heal"
	AttrTargets        = "spell_targets"
	AttrRadius         = "spell_radius"
)

// Spell is the parsed, immutable description of a castable template.
type Spell struct {
	Name           string
	CastTime       int64
	CastOffset     float64
	Speed          float64
	MaxDistance    float64
	Lifetime       int64
	Effect         string
	EffectDuration int64
	Cooldown       int
	SuccessPct     float64
	Damage         int
	Heal           int
	Radius         float64
	Targets        Filter
}

// CooldownAttr is the caster attribute counting down a spell's cooldown.
func CooldownAttr(spell string) string {
	return "spell_cooldown_" + spell
}

// ParseSpell reads a spell out of template attributes.
func ParseSpell(name string, attrs map[string]script.Value, defaultSuccess float64) (*Spell, error) {
	if !attrs[AttrIsSpell].Truthy() {
		return nil, fmt.Errorf("template %q is not a spell", name)
	}

	num := func(key string, def float64) float64 {
		v, ok := attrs[key]
		if !ok {
			return def
		}
		return v.FloatOr(def)
	}

	s := &Spell{
		Name:           name,
		CastTime:       int64(num(AttrCastTime, 0)),
		CastOffset:     num(AttrCastOffset, 0.5),
		Speed:          num(AttrSpeed, 6),
		MaxDistance:    num(AttrMaxDistance, 20),
		Lifetime:       int64(num(AttrLifetime, 40)),
		Effect:         attrs[AttrEffect].Str(),
		EffectDuration: int64(num(AttrEffectDuration, 0)),
		Cooldown:       int(num(AttrCooldown, 0)),
		SuccessPct:     num(AttrSuccessPct, defaultSuccess),
		Damage:         int(num(AttrDamage, 0)),
		Heal:           int(num(AttrHeal, 0)),
		Radius:         num(AttrRadius, 0.25),
	}

	el := errors.NewErrorList()
	f, err := ParseFilter(attrs[AttrTargets].Str())
	if err != nil {
		el.Add(err)
	}
	s.Targets = f
	if s.Speed <= 0 {
		el.Add(fmt.Errorf("%s must be positive", AttrSpeed))
	}
	if s.CastTime < 0 || s.Lifetime < 0 || s.EffectDuration < 0 {
		el.Add(fmt.Errorf("spell durations must not be negative"))
	}
	if err := el.Err(); err != nil {
		return nil, fmt.Errorf("spell %q: %w", name, err)
	}
	return s, nil
}

type Phase uint8

const (
	PhaseCasting Phase = iota
	PhaseFlying
	PhaseImpacting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseCasting:
		return "casting"
	case PhaseFlying:
		return "flying"
	case PhaseImpacting:
		return "impacting"
	}
	return "done"
}

// Flight is the runtime state of one spell item.
type Flight struct {
	Spell  *Spell
	Caster uint32
	// Target is 0 when the spell was cast at Point.
	Target uint32
	Point  mgl64.Vec3

	Phase      Phase
	SpawnTick  int64
	PhaseUntil int64
	Travelled  float64
}

func NewFlight(spell *Spell, caster, target uint32, point mgl64.Vec3, tick int64) *Flight {
	return &Flight{
		Spell:      spell,
		Caster:     caster,
		Target:     target,
		Point:      point,
		Phase:      PhaseCasting,
		SpawnTick:  tick,
		PhaseUntil: tick + spell.CastTime,
	}
}

// Advance applies the time based transitions for tick.
func (f *Flight) Advance(tick int64) {
	switch f.Phase {
	case PhaseCasting:
		if tick >= f.PhaseUntil {
			f.Phase = PhaseFlying
		}
	case PhaseFlying:
		if f.Spell.Lifetime > 0 && tick-f.SpawnTick > f.Spell.Lifetime {
			f.Phase = PhaseDone
		}
	case PhaseImpacting:
		if tick >= f.PhaseUntil {
			f.Phase = PhaseDone
		}
	}
}

// HoldPosition is where a casting spell sits relative to its caster.
func (f *Flight) HoldPosition(casterPos mgl64.Vec3, facing mgl64.Vec2) mgl64.Vec3 {
	if facing.Len() > 0 {
		facing = facing.Normalize()
	}
	return casterPos.Add(mgl64.Vec3{facing.X() * f.Spell.CastOffset, 0, facing.Y() * f.Spell.CastOffset})
}

// Fly moves pos toward goal for dt seconds. Exceeding the maximum travel
// distance ends the flight.
func (f *Flight) Fly(pos, goal mgl64.Vec3, dt float64) mgl64.Vec3 {
	if f.Phase != PhaseFlying {
		return pos
	}
	dir := goal.Sub(pos)
	step := f.Spell.Speed * dt
	dist := dir.Len()

	next := goal
	if dist > step {
		next = pos.Add(dir.Mul(step / dist))
	} else {
		step = dist
	}
	f.Travelled += step

	if f.Spell.MaxDistance > 0 && f.Travelled > f.Spell.MaxDistance {
		f.Phase = PhaseDone
	}
	return next
}

// Impact ends the flight, holding the effect if the spell has one.
func (f *Flight) Impact(tick int64) {
	if f.Spell.EffectDuration > 0 {
		f.Phase = PhaseImpacting
		f.PhaseUntil = tick + f.Spell.EffectDuration
		return
	}
	f.Phase = PhaseDone
}
