package messaging

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/region"
	"github.com/pixil98/go-regions/internal/script"
	"github.com/pixil98/go-testutil"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec()
	if err != nil {
		t.Fatalf("creating codec: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	rid := uuid.New()

	tests := map[string]struct {
		msg region.Message
	}{
		"pause":      {msg: region.Pause{}},
		"quit":       {msg: region.Quit{}},
		"event":      {msg: region.Event{Entity: 4, Name: "poke", Value: script.Vec3(1, 2, 3)}},
		"user event": {msg: region.UserEvent{Entity: 4, Name: "chat", Value: script.String("hi")}},
		"time":       {msg: region.Time{Region: rid, Minutes: 720}},
		"log":        {msg: region.LogMessage{Region: rid, Text: "hello"}},
		"remove":     {msg: region.RemoveItem{Region: rid, ID: 9}},
		"text":       {msg: region.TextMessage{Region: rid, FromEntity: 2, To: 3, Text: "Hi.", Category: "say"}},
		"audio":      {msg: region.AudioCmd{Region: rid, Cmd: region.AudioCommand{Kind: region.AudioPlay, Name: "door", Gain: 0.5}}},
		"action": {msg: region.UserAction{Entity: 4, Action: region.PlayerAction{
			Kind:   region.ActChoice,
			Choice: region.Choice{Kind: region.ChoiceItemToSell, Item: 7, Seller: 2, Buyer: 4},
		}}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestCodec(t)

			b, err := c.Encode(tt.msg)
			if err != nil {
				t.Fatalf("encoding: %v", err)
			}
			testutil.AssertEqual(t, "raw frame", b[0], frameRaw)

			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("decoding: %v", err)
			}
			testutil.AssertEqual(t, "message", got, tt.msg)
		})
	}
}

func TestCodec_Updates(t *testing.T) {
	c := newTestCodec(t)
	rid := uuid.New()
	in := region.EntitiesUpdate{Region: rid, Diffs: [][]byte{{1, 2}, {3}}}

	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	out, ok := got.(region.EntitiesUpdate)
	testutil.AssertEqual(t, "type", ok, true)
	testutil.AssertEqual(t, "region", out.Region, rid)
	testutil.AssertEqual(t, "diffs", len(out.Diffs), 2)
	testutil.AssertEqual(t, "first diff", bytes.Equal(out.Diffs[0], []byte{1, 2}), true)
}

func TestCodec_CompressesLargeFrames(t *testing.T) {
	c := newTestCodec(t)
	text := string(bytes.Repeat([]byte("The guard waves. "), 200))
	in := region.LogMessage{Region: uuid.New(), Text: text}

	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	testutil.AssertEqual(t, "zstd frame", b[0], frameZstd)
	testutil.AssertEqual(t, "smaller", len(b) < len(text), true)

	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	testutil.AssertEqual(t, "message", got, region.Message(in))
}

func TestCodec_Entities(t *testing.T) {
	c := newTestCodec(t)
	rid := uuid.New()

	e := region.NewEntity(12, "guard", 2)
	e.Pos = mgl64.Vec3{1, 0, 2}
	e.Attrs["HP"] = script.Int(7)
	e.Wallet = 15

	b, err := c.Encode(region.TransferEntity{Region: rid, Entity: e, DestRegion: "castle", DestSector: "gate"})
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	tr, ok := got.(region.TransferEntity)
	testutil.AssertEqual(t, "type", ok, true)
	testutil.AssertEqual(t, "region", tr.Region, rid)
	testutil.AssertEqual(t, "dest", tr.DestRegion, "castle")
	testutil.AssertEqual(t, "sector", tr.DestSector, "gate")
	testutil.AssertEqual(t, "id", tr.Entity.ID, uint32(12))
	testutil.AssertEqual(t, "pos", tr.Entity.Pos, e.Pos)
	testutil.AssertEqual(t, "hp", tr.Entity.Attrs["HP"], script.Int(7))
	testutil.AssertEqual(t, "wallet", tr.Entity.Wallet, 15)

	b, err = c.Encode(region.CreateEntity{Region: rid, Entity: e, Sector: "hall"})
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	got, err = c.Decode(b)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	ce, ok := got.(region.CreateEntity)
	testutil.AssertEqual(t, "create type", ok, true)
	testutil.AssertEqual(t, "create sector", ce.Sector, "hall")
	testutil.AssertEqual(t, "create class", ce.Entity.Class, "guard")
}

func TestCodec_DecodeErrors(t *testing.T) {
	c := newTestCodec(t)

	tests := map[string]struct {
		frame  []byte
		expErr string
	}{
		"empty":       {frame: nil, expErr: "empty frame"},
		"bad flag":    {frame: []byte{7, 1}, expErr: "unknown frame flag"},
		"bad zstd":    {frame: []byte{frameZstd, 1, 2, 3}, expErr: "decompressing"},
		"not msgpack": {frame: []byte{frameRaw, 0xc1}, expErr: "decoding envelope"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(tt.frame)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}
