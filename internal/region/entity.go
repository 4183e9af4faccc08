package region

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/script"
)

// Dirty records which fields changed since the last update was packed.
type Dirty uint16

const (
	DirtyPos Dirty = 1 << iota
	DirtyOrientation
	DirtyAttrs
	DirtyInventory
	DirtyEquipped
	DirtyWallet
	DirtyAnim
	DirtyCamera
	DirtyAction

	DirtyAll = DirtyPos | DirtyOrientation | DirtyAttrs | DirtyInventory |
		DirtyEquipped | DirtyWallet | DirtyAnim | DirtyCamera | DirtyAction
)

type dirtyState struct {
	mask  Dirty
	attrs map[string]struct{}
}

func (d *dirtyState) markDirty(m Dirty) {
	d.mask |= m
}

func (d *dirtyState) markAttr(key string) {
	d.mask |= DirtyAttrs
	if d.attrs == nil {
		d.attrs = map[string]struct{}{}
	}
	d.attrs[key] = struct{}{}
}

func (d *dirtyState) Dirty() Dirty { return d.mask }

// DirtyAttrs lists changed attribute keys in sorted order.
func (d *dirtyState) DirtyAttrs() []string {
	keys := make([]string, 0, len(d.attrs))
	for k := range d.attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (d *dirtyState) markAttrs(a Attributes) {
	for k := range a {
		d.markAttr(k)
	}
}

func (d *dirtyState) clearDirty() {
	d.mask = 0
	d.attrs = nil
}

// Camera is how a player views the region, which changes how directional
// intents are read.
type Camera string

const (
	Camera2D          Camera = "2d"
	CameraIso         Camera = "iso"
	CameraFirstPerson Camera = "firstp"
)

type AnimTag string

const (
	AnimIdle   AnimTag = "idle"
	AnimWalk   AnimTag = "walk"
	AnimCast   AnimTag = "cast"
	AnimAttack AnimTag = "attack"
)

type Entity struct {
	dirtyState

	ID          uint32
	Class       string
	Pos         mgl64.Vec3
	Orientation mgl64.Vec2
	Attrs       Attributes
	// Inventory is a fixed slot array; nil slots are empty.
	Inventory []*Item
	Equipped  map[string]*Item
	Wallet    int
	Action    Action
	Camera    Camera
	Anim      AnimTag

	movedThisFrame bool
	attackUntil    int64
}

func NewEntity(id uint32, class string, slots int) *Entity {
	return &Entity{
		ID:          id,
		Class:       class,
		Orientation: mgl64.Vec2{0, -1},
		Attrs:       Attributes{},
		Inventory:   make([]*Item, slots),
		Equipped:    map[string]*Item{},
		Action:      ActionOff{},
		Camera:      Camera2D,
		Anim:        AnimIdle,
	}
}

// MarkAll flags every field so the next update carries the full entity.
func (e *Entity) MarkAll() {
	e.markDirty(DirtyAll)
	e.markAttrs(e.Attrs)
}

// SetAttr stores v and marks the key dirty when it changed.
func (e *Entity) SetAttr(key string, v script.Value) {
	if old, ok := e.Attrs[key]; ok && old == v {
		return
	}
	e.Attrs[key] = v
	e.markAttr(key)
}

func (e *Entity) DeleteAttr(key string) {
	if _, ok := e.Attrs[key]; !ok {
		return
	}
	delete(e.Attrs, key)
	e.markAttr(key)
}

func (e *Entity) SetPos(p mgl64.Vec3) {
	if p == e.Pos {
		return
	}
	e.Pos = p
	e.markDirty(DirtyPos)
}

func (e *Entity) SetOrientation(o mgl64.Vec2) {
	if o.Len() == 0 || o == e.Orientation {
		return
	}
	e.Orientation = o.Normalize()
	e.markDirty(DirtyOrientation)
}

// Face turns the entity toward p on the X/Z plane.
func (e *Entity) Face(p mgl64.Vec3) {
	d := mgl64.Vec2{p.X() - e.Pos.X(), p.Z() - e.Pos.Z()}
	if d.Len() < 1e-9 {
		return
	}
	e.SetOrientation(d)
}

// Turn rotates the orientation by deg degrees, clockwise seen from above.
func (e *Entity) Turn(deg float64) {
	rad := mgl64.DegToRad(deg)
	sin, cos := math.Sincos(rad)
	o := e.Orientation
	e.SetOrientation(mgl64.Vec2{o.X()*cos - o.Y()*sin, o.X()*sin + o.Y()*cos})
}

func (e *Entity) SetAction(a Action) {
	if a == nil {
		a = ActionOff{}
	}
	e.Action = a
	e.markDirty(DirtyAction)
}

func (e *Entity) SetWallet(amount int) {
	if amount == e.Wallet {
		return
	}
	e.Wallet = amount
	e.markDirty(DirtyWallet)
}

func (e *Entity) IsDead() bool    { return e.Attrs.Str(AttrMode) == ModeDead }
func (e *Entity) IsPlayer() bool  { return e.Attrs.Bool(AttrPlayer) }
func (e *Entity) Radius() float64 { return e.Attrs.Float(AttrRadius, DefaultRadius) }

// IsVisible defaults to true when the attribute is absent.
func (e *Entity) IsVisible() bool {
	v, ok := e.Attrs[AttrVisible]
	return !ok || v.Truthy()
}

// Live entities take part in collision and targeting.
func (e *Entity) Live() bool {
	return !e.IsDead() && e.IsVisible()
}

// FreeSlot returns the first empty inventory slot or -1.
func (e *Entity) FreeSlot() int {
	for i, it := range e.Inventory {
		if it == nil {
			return i
		}
	}
	return -1
}

// FindItem locates a carried item. slot is -1 when the item is equipped
// under equipSlot.
func (e *Entity) FindItem(id uint32) (item *Item, slot int, equipSlot string) {
	for i, it := range e.Inventory {
		if it != nil && it.ID == id {
			return it, i, ""
		}
	}
	for s, it := range e.Equipped {
		if it != nil && it.ID == id {
			return it, -1, s
		}
	}
	return nil, -1, ""
}

// RemoveItem takes a carried item out of the inventory or equipment.
func (e *Entity) RemoveItem(id uint32) *Item {
	it, slot, equip := e.FindItem(id)
	switch {
	case it == nil:
		return nil
	case slot >= 0:
		e.Inventory[slot] = nil
		e.markDirty(DirtyInventory)
	default:
		delete(e.Equipped, equip)
		e.markDirty(DirtyEquipped)
	}
	return it
}

// CarriedItems lists inventory items followed by equipped ones.
func (e *Entity) CarriedItems() []*Item {
	var out []*Item
	for _, it := range e.Inventory {
		if it != nil {
			out = append(out, it)
		}
	}
	slots := make([]string, 0, len(e.Equipped))
	for s := range e.Equipped {
		slots = append(slots, s)
	}
	slices.Sort(slots)
	for _, s := range slots {
		out = append(out, e.Equipped[s])
	}
	return out
}
