package region

import (
	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/script"
)

// Message is everything that crosses a region's channels.
type Message interface {
	Kind() string
}

// Inbound messages.

type Pause struct{}

type Continue struct{}

type Event struct {
	Entity uint32
	Name   string
	Value  script.Value
}

type UserEvent struct {
	Entity uint32
	Name   string
	Value  script.Value
}

type UserAction struct {
	Entity uint32
	Action PlayerAction
}

// CreateEntity adds an entity to Region. When Sector is set the entity is
// placed at that sector's centre.
type CreateEntity struct {
	Region uuid.UUID
	Entity *Entity
	Sector string
}

// TransferEntity leaves a region as an outbound message; the manager turns
// it into a CreateEntity for the destination.
type TransferEntity struct {
	Region     uuid.UUID
	Entity     *Entity
	DestRegion string
	DestSector string
}

// Time sets the in-game time of day, in minutes past midnight.
type Time struct {
	Region  uuid.UUID
	Minutes int
}

type Quit struct{}

// Outbound messages.

// EntitiesUpdate carries msgpack encoded EntityUpdate values.
type EntitiesUpdate struct {
	Region uuid.UUID
	Diffs  [][]byte
}

// ItemsUpdate carries msgpack encoded ItemUpdate values.
type ItemsUpdate struct {
	Region uuid.UUID
	Diffs  [][]byte
}

type LogMessage struct {
	Region uuid.UUID
	Text   string
}

type RemoveItem struct {
	Region uuid.UUID
	ID     uint32
}

type TextMessage struct {
	Region     uuid.UUID
	FromEntity uint32
	FromItem   uint32
	To         uint32
	Text       string
	Category   string
}

type MultipleChoice struct {
	Region uuid.UUID
	Set    ChoiceSet
}

type AudioCmd struct {
	Region uuid.UUID
	Cmd    AudioCommand
}

// DebugData maps script source locations to the values pushed there.
type DebugData struct {
	Region  uuid.UUID
	Subject Subject
	Values  map[string]string
}

func (Pause) Kind() string          { return "pause" }
func (Continue) Kind() string       { return "continue" }
func (Event) Kind() string          { return "event" }
func (UserEvent) Kind() string      { return "user_event" }
func (UserAction) Kind() string     { return "user_action" }
func (CreateEntity) Kind() string   { return "create_entity" }
func (TransferEntity) Kind() string { return "transfer_entity" }
func (Time) Kind() string           { return "time" }
func (Quit) Kind() string           { return "quit" }
func (EntitiesUpdate) Kind() string { return "entities_update" }
func (ItemsUpdate) Kind() string    { return "items_update" }
func (LogMessage) Kind() string     { return "log" }
func (RemoveItem) Kind() string     { return "remove_item" }
func (TextMessage) Kind() string    { return "message" }
func (MultipleChoice) Kind() string { return "multiple_choice" }
func (AudioCmd) Kind() string       { return "audio" }
func (DebugData) Kind() string      { return "debug" }

type PlayerActionKind string

const (
	ActIntent        PlayerActionKind = "intent"
	ActEntityClicked PlayerActionKind = "entity_clicked"
	ActItemClicked   PlayerActionKind = "item_clicked"
	ActSetCamera     PlayerActionKind = "set_camera"
	ActMoveItem      PlayerActionKind = "move_item"
	ActChoice        PlayerActionKind = "choice"
	ActRaw           PlayerActionKind = "action"
)

// PlayerAction is a tagged command from a player's client. Only the fields
// relevant to Kind are read.
type PlayerAction struct {
	Kind     PlayerActionKind `msgpack:"kind"`
	Intent   string           `msgpack:"intent,omitempty"`
	Target   uint32           `msgpack:"target,omitempty"`
	Distance float64          `msgpack:"distance,omitempty"`
	Camera   Camera           `msgpack:"camera,omitempty"`
	// DestSlot is an inventory slot; -1 with DestEquip set means equip.
	DestSlot  int    `msgpack:"dest_slot,omitempty"`
	DestEquip string `msgpack:"dest_equip,omitempty"`
	Choice    Choice `msgpack:"choice,omitempty"`
	// Action is a direction name or "off".
	Action string `msgpack:"action,omitempty"`
}

type ChoiceKind string

const (
	ChoiceItemToSell ChoiceKind = "item_to_sell"
	ChoiceCancel     ChoiceKind = "cancel"
)

// Choice is one option of a MultipleChoice. ItemToSell uses Item, Seller
// and Buyer; Cancel uses From and To.
type Choice struct {
	Kind   ChoiceKind `msgpack:"kind"`
	Item   uint32     `msgpack:"item,omitempty"`
	Seller uint32     `msgpack:"seller,omitempty"`
	Buyer  uint32     `msgpack:"buyer,omitempty"`
	From   uint32     `msgpack:"from,omitempty"`
	To     uint32     `msgpack:"to,omitempty"`
	Label  string     `msgpack:"label,omitempty"`
	Price  int        `msgpack:"price,omitempty"`
}

type ChoiceSet struct {
	From    uint32   `msgpack:"from"`
	To      uint32   `msgpack:"to"`
	Choices []Choice `msgpack:"choices"`
}

type AudioKind string

const (
	AudioPlay         AudioKind = "play"
	AudioClearBus     AudioKind = "clear_bus"
	AudioClearAll     AudioKind = "clear_all"
	AudioSetBusVolume AudioKind = "set_bus_volume"
)

type AudioCommand struct {
	Kind   AudioKind `msgpack:"kind"`
	Name   string    `msgpack:"name,omitempty"`
	Bus    string    `msgpack:"bus,omitempty"`
	Gain   float64   `msgpack:"gain,omitempty"`
	Loop   bool      `msgpack:"loop,omitempty"`
	Volume float64   `msgpack:"volume,omitempty"`
}
