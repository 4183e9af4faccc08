package messaging

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pixil98/go-regions/internal/region"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultCompressThreshold is the encoded size above which frames are
// zstd compressed.
const DefaultCompressThreshold = 1024

const (
	frameRaw  byte = 0
	frameZstd byte = 1
)

type envelope struct {
	Kind string             `msgpack:"kind"`
	Body msgpack.RawMessage `msgpack:"body"`
}

// Entities travel as full updates; the live struct holds state that is
// meaningless off-process.
type createEntityWire struct {
	Region uuid.UUID           `msgpack:"region"`
	Entity region.EntityUpdate `msgpack:"entity"`
	Sector string              `msgpack:"sector,omitempty"`
}

type transferEntityWire struct {
	Region     uuid.UUID           `msgpack:"region"`
	Entity     region.EntityUpdate `msgpack:"entity"`
	DestRegion string              `msgpack:"dest_region"`
	DestSector string              `msgpack:"dest_sector,omitempty"`
}

// Codec turns region messages into frames: one flag byte followed by a
// msgpack envelope, compressed when large. It is safe for concurrent use.
type Codec struct {
	enc       *zstd.Encoder
	dec       *zstd.Decoder
	threshold int
}

func NewCodec() (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return &Codec{enc: enc, dec: dec, threshold: DefaultCompressThreshold}, nil
}

func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}

func (c *Codec) Encode(m region.Message) ([]byte, error) {
	body, err := msgpack.Marshal(toWire(m))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.Kind(), err)
	}
	b, err := msgpack.Marshal(envelope{Kind: m.Kind(), Body: body})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", m.Kind(), err)
	}

	if len(b) <= c.threshold {
		return append([]byte{frameRaw}, b...), nil
	}
	return c.enc.EncodeAll(b, []byte{frameZstd}), nil
}

func (c *Codec) Decode(frame []byte) (region.Message, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	b := frame[1:]
	switch frame[0] {
	case frameRaw:
	case frameZstd:
		var err error
		b, err = c.dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing frame: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown frame flag %d", frame[0])
	}

	var env envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	decode, ok := decoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown message kind %q", env.Kind)
	}
	m, err := decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", env.Kind, err)
	}
	return m, nil
}

func toWire(m region.Message) any {
	switch msg := m.(type) {
	case region.CreateEntity:
		w := createEntityWire{Region: msg.Region, Sector: msg.Sector}
		if msg.Entity != nil {
			w.Entity = region.FullEntityUpdate(msg.Entity)
		}
		return w
	case region.TransferEntity:
		w := transferEntityWire{Region: msg.Region, DestRegion: msg.DestRegion, DestSector: msg.DestSector}
		if msg.Entity != nil {
			w.Entity = region.FullEntityUpdate(msg.Entity)
		}
		return w
	}
	return m
}

func decodeAs[T region.Message](body []byte) (region.Message, error) {
	var m T
	if err := msgpack.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var decoders = map[string]func([]byte) (region.Message, error){
	region.Pause{}.Kind():          decodeAs[region.Pause],
	region.Continue{}.Kind():       decodeAs[region.Continue],
	region.Event{}.Kind():          decodeAs[region.Event],
	region.UserEvent{}.Kind():      decodeAs[region.UserEvent],
	region.UserAction{}.Kind():     decodeAs[region.UserAction],
	region.Time{}.Kind():           decodeAs[region.Time],
	region.Quit{}.Kind():           decodeAs[region.Quit],
	region.EntitiesUpdate{}.Kind(): decodeAs[region.EntitiesUpdate],
	region.ItemsUpdate{}.Kind():    decodeAs[region.ItemsUpdate],
	region.LogMessage{}.Kind():     decodeAs[region.LogMessage],
	region.RemoveItem{}.Kind():     decodeAs[region.RemoveItem],
	region.TextMessage{}.Kind():    decodeAs[region.TextMessage],
	region.MultipleChoice{}.Kind(): decodeAs[region.MultipleChoice],
	region.AudioCmd{}.Kind():       decodeAs[region.AudioCmd],
	region.DebugData{}.Kind():      decodeAs[region.DebugData],

	region.CreateEntity{}.Kind(): func(body []byte) (region.Message, error) {
		var w createEntityWire
		if err := msgpack.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return region.CreateEntity{Region: w.Region, Entity: region.EntityFromUpdate(w.Entity), Sector: w.Sector}, nil
	},
	region.TransferEntity{}.Kind(): func(body []byte) (region.Message, error) {
		var w transferEntityWire
		if err := msgpack.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return region.TransferEntity{
			Region:     w.Region,
			Entity:     region.EntityFromUpdate(w.Entity),
			DestRegion: w.DestRegion,
			DestSector: w.DestSector,
		}, nil
	},
}
