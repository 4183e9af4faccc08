package region

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-regions/internal/script"
)

// handle applies one inbound message under the region lock.
func (i *Instance) handle(m Message) {
	if _, ok := m.(Quit); ok {
		slog.Info("region quitting", "region", i.name)
		i.with(func(c *RegionCtx) {
			c.log(fmt.Sprintf("region %s stopped", c.Name))
		})
		i.stop()
		return
	}
	i.with(func(c *RegionCtx) {
		applyMessage(c, m)
	})
}

func applyMessage(c *RegionCtx, m Message) {
	switch msg := m.(type) {
	case Pause:
		c.Paused = true
	case Continue:
		c.Paused = false
	case Event:
		c.QueueEvent(EntitySubject(msg.Entity), msg.Name, msg.Value)
	case UserEvent:
		c.QueueUserEvent(EntitySubject(msg.Entity), msg.Name, msg.Value)
	case UserAction:
		applyUserAction(c, msg.Entity, msg.Action)
	case CreateEntity:
		createEntity(c, msg)
	case TransferEntity:
		// A request to move one of ours elsewhere; the manager routes it.
		if msg.Entity == nil {
			return
		}
		if e := c.RemoveEntity(msg.Entity.ID); e != nil {
			msg.Region = c.ID
			msg.Entity = e
			c.emit(msg)
		}
	case Time:
		c.SetTimeOfDay(int64(msg.Minutes))
	default:
		slog.Warn("unexpected inbound message", "region", c.Name, "kind", m.Kind())
	}
}

func createEntity(c *RegionCtx, msg CreateEntity) {
	e := msg.Entity
	if e == nil {
		return
	}
	if c.Entity(e.ID) != nil {
		slog.Warn("entity already present", "region", c.Name, "entity", e.ID)
		return
	}
	if msg.Sector != "" {
		if p, ok := c.SectorCenter(msg.Sector); ok {
			e.Pos = p
		} else {
			c.log(fmt.Sprintf("entity %d: unknown sector %q, keeping position", e.ID, msg.Sector))
		}
	}
	if e.Attrs == nil {
		e.Attrs = Attributes{}
	}
	if e.Equipped == nil {
		e.Equipped = map[string]*Item{}
	}
	for len(e.Inventory) < c.Config.InventorySlots {
		e.Inventory = append(e.Inventory, nil)
	}
	e.Action = ActionOff{}
	c.AddEntity(e)
	c.QueueEvent(EntitySubject(e.ID), "startup", script.None())
}

func applyUserAction(c *RegionCtx, id uint32, a PlayerAction) {
	e := c.Entity(id)
	if e == nil {
		slog.Debug("user action for unknown entity", "region", c.Name, "entity", id)
		return
	}

	switch a.Kind {
	case ActIntent:
		e.SetAttr(AttrIntent, script.String(a.Intent))
	case ActRaw:
		if a.Action == "" || a.Action == "off" {
			e.SetAction(ActionOff{})
			return
		}
		d, err := ParseDirection(a.Action)
		if err != nil {
			slog.Debug("ignoring player action", "region", c.Name, "entity", id, "error", err)
			return
		}
		if !e.Live() {
			return
		}
		e.SetAction(ActionMove{Dir: d})
	case ActEntityClicked:
		t := c.Entity(a.Target)
		if t == nil {
			return
		}
		clicked(c, e, EntitySubject(t.ID), a, "clicked_entity")
	case ActItemClicked:
		if it, _ := c.FindItem(a.Target); it == nil {
			return
		}
		clicked(c, e, ItemSubject(a.Target), a, "clicked_item")
	case ActSetCamera:
		if e.Camera != a.Camera {
			e.Camera = a.Camera
			e.markDirty(DirtyCamera)
		}
	case ActMoveItem:
		if err := moveCarriedItem(e, a.Target, a.DestSlot, a.DestEquip); err != nil {
			slog.Debug("moving item", "region", c.Name, "entity", id, "error", err)
		}
	case ActChoice:
		applyChoice(c, a.Choice)
	}
}

// clicked dispatches the same intent pair as walking into target. Without
// an intent the player's script just hears about the click.
func clicked(c *RegionCtx, e *Entity, target Subject, a PlayerAction, event string) {
	intent := a.Intent
	if intent == "" {
		intent = e.Attrs.Str(AttrIntent)
	}
	if intent == "" {
		c.QueueUserEvent(EntitySubject(e.ID), event, script.Number(float64(target.ID)))
		return
	}
	c.QueueEvent(target, "intent", script.Tagged(float64(e.ID), a.Distance, intent))
	c.QueueUserEvent(EntitySubject(e.ID), "intent", script.Tagged(float64(target.ID), a.Distance, intent))
}

// moveCarriedItem rearranges e's own items. destEquip wins over destSlot.
func moveCarriedItem(e *Entity, id uint32, destSlot int, destEquip string) error {
	it, slot, equip := e.FindItem(id)
	if it == nil {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}

	if destEquip != "" {
		if it.Attrs.Str(AttrSlot) != destEquip {
			return fmt.Errorf("%w: %d cannot go in %q", ErrNotEquippable, id, destEquip)
		}
		if slot < 0 {
			return nil
		}
		e.Inventory[slot] = e.Equipped[destEquip]
		e.Equipped[destEquip] = it
		e.markDirty(DirtyInventory | DirtyEquipped)
		return nil
	}

	if destSlot < 0 || destSlot >= len(e.Inventory) {
		return fmt.Errorf("slot %d out of range", destSlot)
	}
	if slot >= 0 {
		e.Inventory[slot], e.Inventory[destSlot] = e.Inventory[destSlot], it
		e.markDirty(DirtyInventory)
		return nil
	}

	// Unequip into destSlot, swapping an equippable occupant in.
	occupant := e.Inventory[destSlot]
	if occupant != nil && occupant.Attrs.Str(AttrSlot) != equip {
		return fmt.Errorf("slot %d is occupied", destSlot)
	}
	e.Inventory[destSlot] = it
	if occupant != nil {
		e.Equipped[equip] = occupant
	} else {
		delete(e.Equipped, equip)
	}
	e.markDirty(DirtyInventory | DirtyEquipped)
	return nil
}

// applyChoice settles a MultipleChoice answer.
func applyChoice(c *RegionCtx, ch Choice) {
	switch ch.Kind {
	case ChoiceCancel:
		c.QueueEvent(EntitySubject(ch.From), "choice_cancelled", script.Int(int(ch.To)))
	case ChoiceItemToSell:
		if err := sellItem(c, ch); err != nil {
			slog.Debug("sale failed", "region", c.Name, "item", ch.Item, "error", err)
			c.QueueUserEvent(EntitySubject(ch.Buyer), "purchase_failed", script.Int(int(ch.Item)))
		}
	}
}

func sellItem(c *RegionCtx, ch Choice) error {
	seller, buyer := c.Entity(ch.Seller), c.Entity(ch.Buyer)
	if seller == nil || buyer == nil {
		return ErrInvalidTarget
	}
	it, _, _ := seller.FindItem(ch.Item)
	if it == nil {
		return fmt.Errorf("%w: %d", ErrItemNotFound, ch.Item)
	}
	if it.IsStatic() {
		return fmt.Errorf("%w: %d", ErrNotTakeable, ch.Item)
	}
	price := it.Attrs.Int(AttrWorth, 0)
	if buyer.Wallet < price {
		return ErrInsufficientFunds
	}
	slot := buyer.FreeSlot()
	if slot < 0 {
		return ErrInventoryFull
	}

	seller.RemoveItem(it.ID)
	buyer.Inventory[slot] = it
	buyer.markDirty(DirtyInventory)
	buyer.SetWallet(buyer.Wallet - price)
	seller.SetWallet(seller.Wallet + price)

	c.QueueEvent(EntitySubject(seller.ID), "sold", script.Int(int(it.ID)))
	c.QueueUserEvent(EntitySubject(buyer.ID), "bought", script.Int(int(it.ID)))
	return nil
}
