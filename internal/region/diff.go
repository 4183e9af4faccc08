package region

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/vmihailenco/msgpack/v5"
)

// EntityUpdate is the wire form of an entity's changes. Mask says which
// fields are present.
type EntityUpdate struct {
	ID          uint32                  `msgpack:"id"`
	Class       string                  `msgpack:"class,omitempty"`
	Mask        Dirty                   `msgpack:"mask"`
	Pos         mgl64.Vec3              `msgpack:"pos"`
	Orientation mgl64.Vec2              `msgpack:"orientation"`
	Attrs       map[string]script.Value `msgpack:"attrs,omitempty"`
	Removed     []string                `msgpack:"removed,omitempty"`
	Inventory   []*ItemUpdate           `msgpack:"inventory,omitempty"`
	Equipped    map[string]*ItemUpdate  `msgpack:"equipped,omitempty"`
	Wallet      int                     `msgpack:"wallet,omitempty"`
	Anim        AnimTag                 `msgpack:"anim,omitempty"`
	Camera      Camera                  `msgpack:"camera,omitempty"`
	Action      string                  `msgpack:"action,omitempty"`
}

// ItemUpdate is the wire form of an item's changes. Only DirtyPos and
// DirtyAttrs apply to items.
type ItemUpdate struct {
	ID      uint32                  `msgpack:"id"`
	Class   string                  `msgpack:"class,omitempty"`
	Mask    Dirty                   `msgpack:"mask"`
	Pos     mgl64.Vec3              `msgpack:"pos"`
	Attrs   map[string]script.Value `msgpack:"attrs,omitempty"`
	Removed []string                `msgpack:"removed,omitempty"`
}

// NewEntityUpdate captures the dirty fields of e.
func NewEntityUpdate(e *Entity) EntityUpdate {
	u := EntityUpdate{ID: e.ID, Class: e.Class, Mask: e.Dirty()}
	if u.Mask&DirtyPos != 0 {
		u.Pos = e.Pos
	}
	if u.Mask&DirtyOrientation != 0 {
		u.Orientation = e.Orientation
	}
	if u.Mask&DirtyAttrs != 0 {
		u.Attrs, u.Removed = dirtyAttrs(e.Attrs, e.DirtyAttrs())
	}
	if u.Mask&DirtyInventory != 0 {
		u.Inventory = make([]*ItemUpdate, len(e.Inventory))
		for i, it := range e.Inventory {
			if it != nil {
				full := FullItemUpdate(it)
				u.Inventory[i] = &full
			}
		}
	}
	if u.Mask&DirtyEquipped != 0 {
		u.Equipped = make(map[string]*ItemUpdate, len(e.Equipped))
		for slot, it := range e.Equipped {
			full := FullItemUpdate(it)
			u.Equipped[slot] = &full
		}
	}
	if u.Mask&DirtyWallet != 0 {
		u.Wallet = e.Wallet
	}
	if u.Mask&DirtyAnim != 0 {
		u.Anim = e.Anim
	}
	if u.Mask&DirtyCamera != 0 {
		u.Camera = e.Camera
	}
	if u.Mask&DirtyAction != 0 {
		u.Action = ActionName(e.Action)
	}
	return u
}

// FullEntityUpdate captures every field of e regardless of dirty state.
func FullEntityUpdate(e *Entity) EntityUpdate {
	saved := e.dirtyState
	e.dirtyState = dirtyState{}
	e.MarkAll()
	u := NewEntityUpdate(e)
	e.dirtyState = saved
	return u
}

func NewItemUpdate(it *Item) ItemUpdate {
	u := ItemUpdate{ID: it.ID, Class: it.Class, Mask: it.Dirty() & (DirtyPos | DirtyAttrs)}
	if u.Mask&DirtyPos != 0 {
		u.Pos = it.Pos
	}
	if u.Mask&DirtyAttrs != 0 {
		u.Attrs, u.Removed = dirtyAttrs(it.Attrs, it.DirtyAttrs())
	}
	return u
}

func FullItemUpdate(it *Item) ItemUpdate {
	attrs := make(map[string]script.Value, len(it.Attrs))
	for k, v := range it.Attrs {
		attrs[k] = v
	}
	return ItemUpdate{
		ID:    it.ID,
		Class: it.Class,
		Mask:  DirtyPos | DirtyAttrs,
		Pos:   it.Pos,
		Attrs: attrs,
	}
}

func dirtyAttrs(a Attributes, keys []string) (map[string]script.Value, []string) {
	set := make(map[string]script.Value, len(keys))
	var removed []string
	for _, k := range keys {
		if v, ok := a[k]; ok {
			set[k] = v
		} else {
			removed = append(removed, k)
		}
	}
	return set, removed
}

// Pack encodes an update for the wire.
func Pack(u any) ([]byte, error) {
	b, err := msgpack.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("packing update: %w", err)
	}
	return b, nil
}

func UnpackEntityUpdate(b []byte) (EntityUpdate, error) {
	var u EntityUpdate
	if err := msgpack.Unmarshal(b, &u); err != nil {
		return EntityUpdate{}, fmt.Errorf("unpacking entity update: %w", err)
	}
	return u, nil
}

func UnpackItemUpdate(b []byte) (ItemUpdate, error) {
	var u ItemUpdate
	if err := msgpack.Unmarshal(b, &u); err != nil {
		return ItemUpdate{}, fmt.Errorf("unpacking item update: %w", err)
	}
	return u, nil
}

// ApplyEntityUpdate writes the fields present in u onto e and returns the
// set of fields it touched. e's own dirty state is left alone.
func ApplyEntityUpdate(e *Entity, u EntityUpdate) Dirty {
	if u.Class != "" {
		e.Class = u.Class
	}
	if u.Mask&DirtyPos != 0 {
		e.Pos = u.Pos
	}
	if u.Mask&DirtyOrientation != 0 {
		e.Orientation = u.Orientation
	}
	if u.Mask&DirtyAttrs != 0 {
		applyAttrs(e.Attrs, u.Attrs, u.Removed)
	}
	if u.Mask&DirtyInventory != 0 {
		e.Inventory = make([]*Item, len(u.Inventory))
		for i, iu := range u.Inventory {
			if iu != nil {
				e.Inventory[i] = ItemFromUpdate(*iu)
			}
		}
	}
	if u.Mask&DirtyEquipped != 0 {
		e.Equipped = make(map[string]*Item, len(u.Equipped))
		for slot, iu := range u.Equipped {
			if iu != nil {
				e.Equipped[slot] = ItemFromUpdate(*iu)
			}
		}
	}
	if u.Mask&DirtyWallet != 0 {
		e.Wallet = u.Wallet
	}
	if u.Mask&DirtyAnim != 0 {
		e.Anim = u.Anim
	}
	if u.Mask&DirtyCamera != 0 {
		e.Camera = u.Camera
	}
	if u.Mask&DirtyAction != 0 && ActionName(e.Action) != u.Action {
		e.Action = actionFromName(u.Action)
	}
	return u.Mask & DirtyAll
}

func ApplyItemUpdate(it *Item, u ItemUpdate) Dirty {
	if u.Class != "" {
		it.Class = u.Class
	}
	if u.Mask&DirtyPos != 0 {
		it.Pos = u.Pos
	}
	if u.Mask&DirtyAttrs != 0 {
		applyAttrs(it.Attrs, u.Attrs, u.Removed)
	}
	return u.Mask & (DirtyPos | DirtyAttrs)
}

// EntityFromUpdate rebuilds an entity from a full update.
func EntityFromUpdate(u EntityUpdate) *Entity {
	e := NewEntity(u.ID, u.Class, len(u.Inventory))
	ApplyEntityUpdate(e, u)
	return e
}

func ItemFromUpdate(u ItemUpdate) *Item {
	it := NewItem(u.ID, u.Class)
	ApplyItemUpdate(it, u)
	return it
}

func applyAttrs(dst Attributes, set map[string]script.Value, removed []string) {
	for k, v := range set {
		dst[k] = v
	}
	for _, k := range removed {
		delete(dst, k)
	}
}

// mirroredAction stands in for an action known only by name, as on the
// receiving side of an update.
type mirroredAction struct {
	name string
}

func (a mirroredAction) actionName() string { return a.name }

func actionFromName(name string) Action {
	if name == "" || name == "off" {
		return ActionOff{}
	}
	if d, err := ParseDirection(name); err == nil {
		return ActionMove{Dir: d}
	}
	return mirroredAction{name: name}
}

// packDirty encodes and clears the dirty state of every entity and item.
// Anything that fails to encode stays dirty for the next frame.
func packDirty(c *RegionCtx, pack func(any) ([]byte, error)) (entities, items [][]byte, err error) {
	el := errors.NewErrorList()
	for _, e := range c.Entities {
		if e.Dirty() == 0 {
			continue
		}
		b, err := pack(NewEntityUpdate(e))
		if err != nil {
			el.Add(fmt.Errorf("entity %d: %w", e.ID, err))
			continue
		}
		entities = append(entities, b)
		e.clearDirty()
	}
	for _, it := range c.Items {
		if it.Dirty() == 0 {
			continue
		}
		b, err := pack(NewItemUpdate(it))
		if err != nil {
			el.Add(fmt.Errorf("item %d: %w", it.ID, err))
			continue
		}
		items = append(items, b)
		it.clearDirty()
	}
	return entities, items, el.Err()
}
