package region

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/collision"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
)

// Attributes stamped on spell items at cast time.
const (
	AttrSpellCaster   = "spell_caster_id"
	AttrSpellTarget   = "spell_target_id"
	AttrSpellPoint    = "spell_target_pos"
	AttrSpellPhase    = "spell_phase"
	cooldownAttrStart = "spell_cooldown_"
)

func isCooldownAttr(key string) bool {
	return strings.HasPrefix(key, cooldownAttrStart)
}

// spell returns the parsed template, parsing it once per region.
func (c *RegionCtx) spell(name string) (*combat.Spell, error) {
	if s, ok := c.spells[name]; ok {
		return s, nil
	}
	tmpl, ok := c.ItemTemplates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpell, name)
	}
	attrs, err := AttributesFromNative(tmpl.Attributes)
	if err != nil {
		return nil, fmt.Errorf("spell %q: %w", name, err)
	}
	s, err := combat.ParseSpell(name, attrs, c.Config.DefaultCastSuccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownSpell, err)
	}
	c.spells[name] = s
	return s, nil
}

// castSpell creates a spell item on behalf of caster. target is an entity
// id or a point.
func castSpell(c *RegionCtx, caster *Entity, template string, target script.Value) (uint32, error) {
	s, err := c.spell(template)
	if err != nil {
		return 0, err
	}
	if caster.Attrs.Int(combat.CooldownAttr(template), 0) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrSpellCooldown, template)
	}

	var (
		targetID uint32
		point    mgl64.Vec3
	)
	if p, ok := target.Vec(); ok {
		point = p
	} else if f, ok := target.Float(); ok {
		t := c.Entity(uint32(f))
		if t == nil || !t.Live() {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTarget, target)
		}
		targetID = t.ID
		point = t.Pos
	} else {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTarget, target)
	}

	if !combat.RollSuccess(c.Rand, s.SuccessPct) {
		c.QueueEvent(EntitySubject(caster.ID), "cast_failed", script.String(template))
		return 0, fmt.Errorf("%w: %s", ErrCastFailed, template)
	}

	caster.Face(point)

	tmpl := c.ItemTemplates[template]
	it := NewItem(c.NextID(), tmpl.Name)
	if attrs, err := AttributesFromNative(tmpl.Attributes); err == nil {
		it.Attrs = attrs
	}
	it.Attrs[combat.AttrIsSpell] = script.Bool(true)
	it.Attrs[AttrSpellCaster] = script.Int(int(caster.ID))
	if targetID != 0 {
		it.Attrs[AttrSpellTarget] = script.Int(int(targetID))
	} else {
		it.Attrs[AttrSpellPoint] = script.Vec3(point.X(), point.Y(), point.Z())
	}
	it.Flight = combat.NewFlight(s, caster.ID, targetID, point, c.Ticks)
	it.Attrs[AttrSpellPhase] = script.String(it.Flight.Phase.String())
	it.Pos = it.Flight.HoldPosition(caster.Pos, caster.Orientation)
	c.AddItem(it)

	if s.Cooldown > 0 {
		caster.SetAttr(combat.CooldownAttr(template), script.Int(s.Cooldown))
	}
	return it.ID, nil
}

// stepSpells advances every spell item by one frame and despawns finished
// ones.
func stepSpells(c *RegionCtx) {
	var done []uint32
	for _, it := range c.Items {
		f := it.Flight
		if f == nil {
			continue
		}
		f.Advance(c.Ticks)

		switch f.Phase {
		case combat.PhaseCasting:
			if caster := c.Entity(f.Caster); caster != nil {
				it.SetPos(f.HoldPosition(caster.Pos, caster.Orientation))
			} else {
				f.Phase = combat.PhaseDone
			}
		case combat.PhaseFlying:
			stepFlight(c, it, f)
		}

		it.SetAttr(AttrSpellPhase, script.String(f.Phase.String()))
		if f.Phase == combat.PhaseDone {
			done = append(done, it.ID)
		}
	}

	for _, id := range done {
		c.RemoveItem(id)
		c.emit(RemoveItem{Region: c.ID, ID: id})
	}
}

func stepFlight(c *RegionCtx, it *Item, f *combat.Flight) {
	goal := f.Point
	if f.Target != 0 {
		t := c.Entity(f.Target)
		if t == nil || !t.Live() {
			f.Phase = combat.PhaseDone
			return
		}
		goal = t.Pos
	}

	it.SetPos(f.Fly(it.Pos, goal, c.DeltaTime))
	if f.Phase != combat.PhaseFlying {
		return
	}

	caster := c.Entity(f.Caster)
	for _, e := range c.Entities {
		if !e.Live() {
			continue
		}
		if flatDistance(it.Pos, e.Pos) >= f.Spell.Radius+e.Radius()-collision.Epsilon {
			continue
		}
		if !spellAccepts(c, f, caster, e) {
			continue
		}
		hitEntity(c, f, e)
		f.Impact(c.Ticks)
		return
	}

	if f.Target == 0 && flatDistance(it.Pos, goal) < collision.Epsilon {
		f.Impact(c.Ticks)
	}
}

func spellAccepts(c *RegionCtx, f *combat.Flight, caster, target *Entity) bool {
	if caster == nil {
		return f.Spell.Targets.Kind == combat.FilterAny && target.ID != f.Caster
	}
	return f.Spell.Targets.Match(combatant{e: caster, cfg: c.Config}, combatant{e: target, cfg: c.Config})
}

func hitEntity(c *RegionCtx, f *combat.Flight, e *Entity) {
	if f.Spell.Damage > 0 {
		applyDamage(c, f.Caster, e, f.Spell.Damage)
	}
	if f.Spell.Heal > 0 {
		applyHeal(c, e, f.Spell.Heal)
	}
	c.QueueEvent(EntitySubject(e.ID), "spell_hit", script.Tagged(float64(f.Caster), 0, f.Spell.Name))
}
