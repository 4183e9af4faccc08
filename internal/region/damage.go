package region

import (
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
)

// combatant adapts an entity to the combat package using the configured
// health attributes.
type combatant struct {
	e   *Entity
	cfg Config
}

func (c combatant) CombatID() uint32 { return c.e.ID }
func (c combatant) Health() int      { return c.e.Attrs.Int(c.cfg.Health, 0) }
func (c combatant) IsDead() bool     { return c.e.IsDead() }

func (c combatant) MaxHealth() (int, bool) {
	if c.cfg.MaxHealth == "" {
		return 0, false
	}
	v, ok := c.e.Attrs.Get(c.cfg.MaxHealth)
	if !ok {
		return 0, false
	}
	f, ok := v.Float()
	return int(f), ok
}

func (c combatant) SetHealth(hp int) {
	c.e.SetAttr(c.cfg.Health, script.Int(hp))
}

func (c combatant) MarkDead() {
	c.e.SetAttr(AttrMode, script.String(ModeDead))
}

func (c combatant) Attr(name string) (float64, bool) {
	v, ok := c.e.Attrs.Lookup(name)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// deathHandler turns a death into region state and script events.
type deathHandler struct {
	ctx *RegionCtx
}

func (h deathHandler) OnDeath(victim combat.Combatant, attacker uint32) {
	c := h.ctx
	if e := c.Entity(victim.CombatID()); e != nil {
		e.SetAttr(AttrVisible, script.Bool(false))
		e.SetAction(ActionOff{})
	}
	delete(c.proximity, victim.CombatID())

	c.QueueEvent(EntitySubject(victim.CombatID()), "death", script.Int(int(attacker)))
	if attacker != 0 && attacker != victim.CombatID() {
		c.QueueEvent(EntitySubject(attacker), "kill", script.Int(int(victim.CombatID())))
	}
}

// applyDamage lowers victim's health right away.
func applyDamage(c *RegionCtx, attacker uint32, victim *Entity, amount int) combat.Outcome {
	return combat.Strike(attacker, combatant{e: victim, cfg: c.Config}, amount, deathHandler{ctx: c})
}

func applyHeal(c *RegionCtx, target *Entity, amount int) combat.Outcome {
	return combat.Heal(combatant{e: target, cfg: c.Config}, amount)
}

// dealDamage applies damage to autodamage targets and otherwise asks the
// target's script through a take_damage event carrying attacker and amount.
func dealDamage(c *RegionCtx, attacker uint32, target *Entity, amount int) {
	if a := c.Entity(attacker); a != nil {
		a.attackUntil = c.Ticks + 1
	}
	if target.Attrs.Bool(AttrAutoDamage) {
		applyDamage(c, attacker, target, amount)
		return
	}
	c.QueueEvent(EntitySubject(target.ID), "take_damage", script.Vec2(float64(attacker), float64(amount)))
}
