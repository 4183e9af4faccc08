package region

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/script"
)

type Item struct {
	dirtyState

	ID    uint32
	Class string
	Pos   mgl64.Vec3
	Attrs Attributes

	// Flight is set for spell items only.
	Flight *combat.Flight
}

func NewItem(id uint32, class string) *Item {
	return &Item{
		ID:    id,
		Class: class,
		Attrs: Attributes{},
	}
}

func (it *Item) MarkAll() {
	it.markDirty(DirtyPos)
	it.markAttrs(it.Attrs)
}

func (it *Item) SetAttr(key string, v script.Value) {
	if old, ok := it.Attrs[key]; ok && old == v {
		return
	}
	it.Attrs[key] = v
	it.markAttr(key)
}

func (it *Item) SetPos(p mgl64.Vec3) {
	if p == it.Pos {
		return
	}
	it.Pos = p
	it.markDirty(DirtyPos)
}

func (it *Item) DeleteAttr(key string) {
	if _, ok := it.Attrs[key]; !ok {
		return
	}
	delete(it.Attrs, key)
	it.markAttr(key)
}

func (it *Item) IsStatic() bool   { return it.Attrs.Bool(AttrStatic) }
func (it *Item) IsBlocking() bool { return it.Attrs.Bool(AttrBlocking) }
func (it *Item) IsSpell() bool    { return it.Attrs.Bool(combat.AttrIsSpell) }
func (it *Item) IsMonetary() bool { return it.Attrs.Bool(AttrMonetary) }
func (it *Item) Radius() float64  { return it.Attrs.Float(AttrRadius, DefaultRadius) }

func (it *Item) IsVisible() bool {
	v, ok := it.Attrs[AttrVisible]
	return !ok || v.Truthy()
}
