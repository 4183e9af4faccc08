package region

import (
	"math"

	"github.com/pixil98/go-regions/internal/script"
)

// coerceAttr normalises a value a script stores under key.
func coerceAttr(key string, v script.Value, cfg Config, attrs Attributes) script.Value {
	if v.Kind == script.KindBool {
		return v
	}

	switch key {
	case cfg.Health:
		f, ok := v.Float()
		if !ok {
			return v
		}
		hp := math.Max(math.Trunc(f), 0)
		if cfg.MaxHealth != "" {
			if limit, ok := attrs[cfg.MaxHealth].Float(); ok && hp > limit {
				hp = limit
			}
		}
		return script.Number(hp)
	case AttrTarget, AttrAttackTarget:
		if v.Kind == script.KindString && v.S == "" {
			return v
		}
		if f, ok := v.Float(); ok {
			return script.Number(math.Trunc(f))
		}
	}
	return v
}

// setSubjectAttr stores a script supplied attribute on s and applies the
// side effects tied to well known keys.
func (c *RegionCtx) setSubjectAttr(s Subject, key string, raw script.Value) bool {
	if s.Kind == SubjectEntity {
		e := c.Entity(s.ID)
		if e == nil {
			return false
		}
		v := coerceAttr(key, raw, c.Config, e.Attrs)
		e.SetAttr(key, v)
		if key == AttrMode && v.Str() == ModeDead {
			e.SetAttr(AttrVisible, script.Bool(false))
			e.SetAction(ActionOff{})
		}
		return true
	}

	it, owner := c.FindItem(s.ID)
	if it == nil {
		return false
	}
	v := coerceAttr(key, raw, c.Config, it.Attrs)
	it.SetAttr(key, v)
	if owner != nil {
		owner.markDirty(DirtyInventory | DirtyEquipped)
	}
	if key == AttrBlocking {
		if sector := it.Attrs.Str(AttrSector); sector != "" {
			c.World.SetOpen(sector, !v.Truthy())
		}
	}
	return true
}

func hostGetAttr(b *Bridge, args []script.Value) script.Value {
	attrs := b.ctx.SubjectAttrs(b.subject)
	return attrs[arg(args, 0).Str()]
}

func hostSetAttr(b *Bridge, args []script.Value) script.Value {
	key := arg(args, 0).Str()
	if key == "" {
		return b.fail(script.None(), "set_attr: missing key")
	}
	b.ctx.setSubjectAttr(b.subject, key, arg(args, 1))
	return script.None()
}

func hostToggleAttr(b *Bridge, args []script.Value) script.Value {
	key := arg(args, 0).Str()
	if key == "" {
		return b.fail(script.None(), "toggle_attr: missing key")
	}
	next := script.Bool(!b.ctx.SubjectAttrs(b.subject)[key].Truthy())
	b.ctx.setSubjectAttr(b.subject, key, next)
	return next
}

func hostGetAttrOf(b *Bridge, args []script.Value) script.Value {
	id := argID(args, 0)
	key := arg(args, 1).Str()
	if e := b.ctx.Entity(id); e != nil {
		return e.Attrs[key]
	}
	if it, _ := b.ctx.FindItem(id); it != nil {
		return it.Attrs[key]
	}
	return b.fail(script.None(), "get_attr_of: no entity or item %d", id)
}

func hostSetTarget(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "set_target: %v", ErrNotAnEntity)
	}
	id := argID(args, 0)
	t := b.ctx.Entity(id)
	if t == nil || t.IsDead() {
		return b.fail(script.Bool(false), "set_target: %v %d", ErrInvalidTarget, id)
	}
	e.SetAttr(AttrTarget, script.Int(int(id)))
	return script.Bool(true)
}

func hostClearTarget(b *Bridge, _ []script.Value) script.Value {
	if e := b.entity(); e != nil {
		e.SetAttr(AttrTarget, script.String(""))
	}
	return script.None()
}

func hostTarget(b *Bridge, _ []script.Value) script.Value {
	attrs := b.ctx.SubjectAttrs(b.subject)
	return script.Int(attrs[AttrTarget].IntOr(0))
}

func hostHasTarget(b *Bridge, _ []script.Value) script.Value {
	attrs := b.ctx.SubjectAttrs(b.subject)
	return script.Bool(attrs[AttrTarget].IntOr(0) > 0)
}
