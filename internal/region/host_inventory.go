package region

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-regions/internal/script"
)

// matchesItemFilter reports whether it matches filter by class or name.
// An empty filter matches everything.
func matchesItemFilter(it *Item, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.EqualFold(it.Class, filter) || strings.EqualFold(it.Attrs.Str(AttrName), filter)
}

func filterItems(items []*Item, filter string) []*Item {
	var out []*Item
	for _, it := range items {
		if matchesItemFilter(it, filter) {
			out = append(out, it)
		}
	}
	return out
}

func joinIDs(items []*Item) string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = strconv.FormatUint(uint64(it.ID), 10)
	}
	return strings.Join(ids, ",")
}

// takeItem moves a region item into e's inventory. Monetary items go to
// the wallet and vanish. Static items stay where they are.
func takeItem(c *RegionCtx, e *Entity, id uint32) error {
	it := c.Item(id)
	if it == nil || it.IsSpell() {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	if it.IsStatic() {
		return fmt.Errorf("%w: %d", ErrNotTakeable, id)
	}
	if it.IsMonetary() {
		c.RemoveItem(id)
		e.SetWallet(e.Wallet + it.Attrs.Int(AttrWorth, 0))
		c.emit(RemoveItem{Region: c.ID, ID: id})
		return nil
	}
	slot := e.FreeSlot()
	if slot < 0 {
		return ErrInventoryFull
	}
	c.RemoveItem(id)
	e.Inventory[slot] = it
	e.markDirty(DirtyInventory)
	c.emit(RemoveItem{Region: c.ID, ID: id})
	return nil
}

// dropItem puts a carried item down at e's feet.
func dropItem(c *RegionCtx, e *Entity, id uint32) error {
	it := e.RemoveItem(id)
	if it == nil {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	it.Pos = e.Pos
	c.AddItem(it)
	return nil
}

// equipItem moves an inventory item into the equipment slot named by its
// slot attribute. Whatever was equipped there goes back to the inventory.
func equipItem(e *Entity, id uint32) error {
	it, slot, _ := e.FindItem(id)
	if it == nil || slot < 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	equip := it.Attrs.Str(AttrSlot)
	if equip == "" {
		return fmt.Errorf("%w: %d", ErrNotEquippable, id)
	}
	e.Inventory[slot] = e.Equipped[equip]
	e.Equipped[equip] = it
	e.markDirty(DirtyInventory | DirtyEquipped)
	return nil
}

// newItemFromTemplate instantiates a named item class.
func (c *RegionCtx) newItemFromTemplate(name string) (*Item, error) {
	tmpl, ok := c.ItemTemplates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	attrs, err := AttributesFromNative(tmpl.Attributes)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", name, err)
	}
	it := NewItem(c.NextID(), tmpl.Name)
	it.Attrs = attrs
	return it, nil
}

func hostTake(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "take: %v", ErrNotAnEntity)
	}
	if err := takeItem(b.ctx, e, argID(args, 0)); err != nil {
		return b.fail(script.Bool(false), "take: %v", err)
	}
	return script.Bool(true)
}

func hostDrop(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "drop: %v", ErrNotAnEntity)
	}
	if err := dropItem(b.ctx, e, argID(args, 0)); err != nil {
		return b.fail(script.Bool(false), "drop: %v", err)
	}
	return script.Bool(true)
}

func hostDropItems(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Int(-1), "drop_items: %v", ErrNotAnEntity)
	}
	n := 0
	for _, it := range filterItems(e.CarriedItems(), arg(args, 0).Str()) {
		if dropItem(b.ctx, e, it.ID) == nil {
			n++
		}
	}
	return script.Int(n)
}

func hostEquip(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "equip: %v", ErrNotAnEntity)
	}
	if err := equipItem(e, argID(args, 0)); err != nil {
		return b.fail(script.Bool(false), "equip: %v", err)
	}
	return script.Bool(true)
}

func hostAddItem(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Int(-1), "add_item: %v", ErrNotAnEntity)
	}
	slot := e.FreeSlot()
	if slot < 0 {
		return b.fail(script.Int(-1), "add_item: %v", ErrInventoryFull)
	}
	it, err := b.ctx.newItemFromTemplate(arg(args, 0).Str())
	if err != nil {
		return b.fail(script.Int(-1), "add_item: %v", err)
	}
	if it.IsStatic() || it.IsSpell() {
		return b.fail(script.Int(-1), "add_item: %v: %q", ErrNotTakeable, it.Class)
	}
	e.Inventory[slot] = it
	e.markDirty(DirtyInventory)
	b.ctx.QueueEvent(ItemSubject(it.ID), "startup", script.None())
	return script.Int(int(it.ID))
}

func hostInventoryItems(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.String(""), "inventory_items: %v", ErrNotAnEntity)
	}
	return script.String(joinIDs(filterItems(e.CarriedItems(), arg(args, 0).Str())))
}

func hostInventoryItemsOf(b *Bridge, args []script.Value) script.Value {
	id := argID(args, 0)
	e := b.ctx.Entity(id)
	if e == nil {
		return b.fail(script.String(""), "inventory_items_of: %v %d", ErrInvalidTarget, id)
	}
	return script.String(joinIDs(filterItems(e.CarriedItems(), arg(args, 1).Str())))
}

// hostOfferInventory lists the subject's matching items as a sale offer
// to another entity.
func hostOfferInventory(b *Bridge, args []script.Value) script.Value {
	e := b.entity()
	if e == nil {
		return b.fail(script.Bool(false), "offer_inventory: %v", ErrNotAnEntity)
	}
	to := argID(args, 0)
	if b.ctx.Entity(to) == nil {
		return b.fail(script.Bool(false), "offer_inventory: %v %d", ErrInvalidTarget, to)
	}

	set := ChoiceSet{From: e.ID, To: to}
	for _, it := range filterItems(e.CarriedItems(), arg(args, 1).Str()) {
		if it.IsStatic() {
			continue
		}
		label := it.Attrs.Str(AttrName)
		if label == "" {
			label = it.Class
		}
		set.Choices = append(set.Choices, Choice{
			Kind:   ChoiceItemToSell,
			Item:   it.ID,
			Seller: e.ID,
			Buyer:  to,
			Label:  label,
			Price:  it.Attrs.Int(AttrWorth, 0),
		})
	}
	set.Choices = append(set.Choices, Choice{Kind: ChoiceCancel, From: e.ID, To: to, Label: "Cancel"})

	b.ctx.emit(MultipleChoice{Region: b.ctx.ID, Set: set})
	return script.Bool(true)
}
