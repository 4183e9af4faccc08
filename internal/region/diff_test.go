package region

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-testutil"
)

func TestEntityUpdate_FullRoundTrip(t *testing.T) {
	e := NewEntity(7, "guard", 3)
	e.Pos = mgl64.Vec3{1, 2, 3}
	e.Orientation = mgl64.Vec2{1, 0}
	e.Attrs["HP"] = script.Int(12)
	e.Attrs["name"] = script.String("Bob")
	e.Wallet = 40
	e.Camera = CameraFirstPerson
	e.Action = ActionMove{Dir: DirLeft}
	sword := NewItem(9, "sword")
	sword.Attrs[AttrSlot] = script.String("hand")
	e.Equipped["hand"] = sword
	e.Inventory[1] = NewItem(10, "apple")

	b, err := Pack(FullEntityUpdate(e))
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	testutil.AssertEqual(t, "source dirty untouched", e.Dirty(), Dirty(0))

	u, err := UnpackEntityUpdate(b)
	if err != nil {
		t.Fatalf("unpacking: %v", err)
	}
	got := EntityFromUpdate(u)

	testutil.AssertEqual(t, "id", got.ID, uint32(7))
	testutil.AssertEqual(t, "class", got.Class, "guard")
	testutil.AssertEqual(t, "pos", got.Pos, e.Pos)
	testutil.AssertEqual(t, "orientation", got.Orientation, e.Orientation)
	testutil.AssertEqual(t, "hp", got.Attrs["HP"], script.Int(12))
	testutil.AssertEqual(t, "name", got.Attrs["name"], script.String("Bob"))
	testutil.AssertEqual(t, "wallet", got.Wallet, 40)
	testutil.AssertEqual(t, "camera", got.Camera, CameraFirstPerson)
	testutil.AssertEqual(t, "action", ActionName(got.Action), "left")
	testutil.AssertEqual(t, "inventory slots", len(got.Inventory), 3)
	testutil.AssertEqual(t, "empty slot", got.Inventory[0] == nil, true)
	testutil.AssertEqual(t, "apple", got.Inventory[1].Class, "apple")
	testutil.AssertEqual(t, "sword", got.Equipped["hand"].ID, uint32(9))
	testutil.AssertEqual(t, "sword slot", got.Equipped["hand"].Attrs.Str(AttrSlot), "hand")
}

func TestEntityUpdate_Incremental(t *testing.T) {
	e := NewEntity(3, "guard", 0)
	e.Attrs["HP"] = script.Int(10)
	e.Attrs["mood"] = script.String("calm")
	e.clearDirty()

	e.SetAttr("HP", script.Int(10))
	testutil.AssertEqual(t, "unchanged value", e.Dirty(), Dirty(0))

	e.SetAttr("HP", script.Int(8))
	e.DeleteAttr("mood")
	e.SetPos(mgl64.Vec3{4, 0, 4})

	u := NewEntityUpdate(e)
	testutil.AssertEqual(t, "mask", u.Mask, DirtyPos|DirtyAttrs)
	testutil.AssertEqual(t, "attrs", len(u.Attrs), 1)
	testutil.AssertEqual(t, "removed", len(u.Removed), 1)
	testutil.AssertEqual(t, "removed key", u.Removed[0], "mood")

	mirror := NewEntity(3, "guard", 0)
	mirror.Attrs["HP"] = script.Int(10)
	mirror.Attrs["mood"] = script.String("calm")
	mirror.Wallet = 5

	b, err := Pack(u)
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	back, err := UnpackEntityUpdate(b)
	if err != nil {
		t.Fatalf("unpacking: %v", err)
	}
	touched := ApplyEntityUpdate(mirror, back)

	testutil.AssertEqual(t, "touched", touched, DirtyPos|DirtyAttrs)
	testutil.AssertEqual(t, "hp", mirror.Attrs["HP"], script.Int(8))
	_, hasMood := mirror.Attrs["mood"]
	testutil.AssertEqual(t, "mood removed", hasMood, false)
	testutil.AssertEqual(t, "pos", mirror.Pos, mgl64.Vec3{4, 0, 4})
	testutil.AssertEqual(t, "wallet kept", mirror.Wallet, 5)
}

func TestPackDirty(t *testing.T) {
	c := newTestCtx(t, nil)
	e := addTestEntity(c, mgl64.Vec3{}, nil)
	it := addTestItem(c, mgl64.Vec3{1, 0, 1}, Attributes{"lit": script.Bool(true)})

	ents, items, err := packDirty(c, Pack)
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	testutil.AssertEqual(t, "entities", len(ents), 1)
	testutil.AssertEqual(t, "items", len(items), 1)

	ents, items, _ = packDirty(c, Pack)
	testutil.AssertEqual(t, "entities clean", len(ents), 0)
	testutil.AssertEqual(t, "items clean", len(items), 0)

	it.SetAttr("lit", script.Bool(false))
	e.SetWallet(3)
	ents, items, _ = packDirty(c, Pack)

	eu, err := UnpackEntityUpdate(ents[0])
	if err != nil {
		t.Fatalf("unpacking entity: %v", err)
	}
	testutil.AssertEqual(t, "entity mask", eu.Mask, DirtyWallet)
	testutil.AssertEqual(t, "wallet", eu.Wallet, 3)

	iu, err := UnpackItemUpdate(items[0])
	if err != nil {
		t.Fatalf("unpacking item: %v", err)
	}
	testutil.AssertEqual(t, "item mask", iu.Mask, DirtyAttrs)
	testutil.AssertEqual(t, "lit", iu.Attrs["lit"], script.Bool(false))
}

func TestPackDirty_FailureKeepsPacking(t *testing.T) {
	c := newTestCtx(t, nil)
	bad := addTestEntity(c, mgl64.Vec3{}, nil)
	good := addTestEntity(c, mgl64.Vec3{1, 0, 0}, nil)
	addTestItem(c, mgl64.Vec3{2, 0, 2}, nil)

	pack := func(u any) ([]byte, error) {
		if eu, ok := u.(EntityUpdate); ok && eu.ID == bad.ID {
			return nil, errors.New("boom")
		}
		return Pack(u)
	}

	ents, items, err := packDirty(c, pack)
	testutil.AssertErrorContains(t, err, fmt.Sprintf("entity %d: boom", bad.ID))
	testutil.AssertEqual(t, "entities", len(ents), 1)
	testutil.AssertEqual(t, "items", len(items), 1)
	testutil.AssertEqual(t, "failed stays dirty", bad.Dirty() != 0, true)
	testutil.AssertEqual(t, "packed is clean", good.Dirty(), Dirty(0))

	ents, items, err = packDirty(c, Pack)
	if err != nil {
		t.Fatalf("packing: %v", err)
	}
	testutil.AssertEqual(t, "retried", len(ents), 1)
	testutil.AssertEqual(t, "items clean", len(items), 0)
	eu, err := UnpackEntityUpdate(ents[0])
	if err != nil {
		t.Fatalf("unpacking entity: %v", err)
	}
	testutil.AssertEqual(t, "retried id", eu.ID, bad.ID)
}
