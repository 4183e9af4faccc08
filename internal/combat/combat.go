package combat

// Combatant is anything that can take damage.
type Combatant interface {
	CombatID() uint32
	Health() int
	// MaxHealth reports the upper clamp, if the combatant has one.
	MaxHealth() (int, bool)
	SetHealth(int)
	IsDead() bool
	MarkDead()
}

// EventHandler handles combat events that require region-level logic.
type EventHandler interface {
	OnDeath(victim Combatant, attacker uint32)
}

// Outcome is the result of a single Strike or Heal.
type Outcome struct {
	Health int
	Killed bool
}

// Strike applies amount to victim on behalf of attacker. The victim dies on
// the strike that takes its health to zero and never again, so OnDeath
// fires exactly once per death. Amounts below one do nothing.
func Strike(attacker uint32, victim Combatant, amount int, handler EventHandler) Outcome {
	if victim.IsDead() || amount <= 0 {
		return Outcome{Health: victim.Health()}
	}

	hp := ClampHealth(victim.Health()-amount, victim)
	victim.SetHealth(hp)
	if hp > 0 {
		return Outcome{Health: hp}
	}

	victim.MarkDead()
	if handler != nil {
		handler.OnDeath(victim, attacker)
	}
	return Outcome{Health: 0, Killed: true}
}

// Heal restores amount health to target. The dead are not healed.
func Heal(target Combatant, amount int) Outcome {
	if target.IsDead() {
		return Outcome{Health: target.Health()}
	}
	hp := ClampHealth(target.Health()+amount, target)
	target.SetHealth(hp)
	return Outcome{Health: hp}
}

// ClampHealth limits hp to [0, max].
func ClampHealth(hp int, c Combatant) int {
	if hp < 0 {
		hp = 0
	}
	if limit, ok := c.MaxHealth(); ok && hp > limit {
		hp = limit
	}
	return hp
}
