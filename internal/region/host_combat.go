package region

import (
	"errors"

	"github.com/pixil98/go-regions/internal/script"
)

func hostDealDamage(b *Bridge, args []script.Value) script.Value {
	id := argID(args, 0)
	t := b.ctx.Entity(id)
	if t == nil || !t.Live() {
		return b.fail(script.Bool(false), "deal_damage: %v %d", ErrInvalidTarget, id)
	}
	amount := arg(args, 1).IntOr(0)
	if amount <= 0 {
		return b.fail(script.Bool(false), "deal_damage: amount must be positive")
	}

	var attacker uint32
	if b.subject.Kind == SubjectEntity {
		attacker = b.subject.ID
	} else if _, owner := b.item(); owner != nil {
		attacker = owner.ID
	}
	dealDamage(b.ctx, attacker, t, amount)
	return script.Bool(true)
}

// hostTookDamage applies damage the subject accepted from a take_damage
// event. It returns the remaining health.
func hostTookDamage(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Int(-1), "took_damage: %v", ErrNotAnEntity)
	}
	amount := arg(args, 1).IntOr(0)
	if amount <= 0 {
		return b.fail(script.Int(-1), "took_damage: amount must be positive")
	}
	out := applyDamage(b.ctx, argID(args, 0), e, amount)
	return script.Int(out.Health)
}

func hostCastSpell(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Int(-1), "cast_spell: %v", ErrNotAnEntity)
	}
	if e.IsDead() {
		return b.fail(script.Int(-1), "cast_spell: caster is dead")
	}
	id, err := castSpell(b.ctx, e, arg(args, 0).Str(), arg(args, 1))
	if err != nil {
		if errors.Is(err, ErrSpellCooldown) {
			return script.Int(-1)
		}
		return b.fail(script.Int(-1), "cast_spell: %v", err)
	}
	return script.Int(int(id))
}
