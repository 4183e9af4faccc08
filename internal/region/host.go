package region

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-regions/internal/combat"
	"github.com/pixil98/go-regions/internal/display"
	"github.com/pixil98/go-regions/internal/script"
)

type hostFunc func(b *Bridge, args []script.Value) script.Value

// Bridge serves host calls for one script invocation. It holds the already
// locked region state and the subject the script runs as.
type Bridge struct {
	ctx     *RegionCtx
	subject Subject
	engine  *script.Engine
}

func NewBridge(ctx *RegionCtx, subject Subject, engine *script.Engine) *Bridge {
	return &Bridge{ctx: ctx, subject: subject, engine: engine}
}

var hostCalls = map[string]hostFunc{
	// attributes and targeting
	"get_attr":        hostGetAttr,
	"set_attr":        hostSetAttr,
	"toggle_attr":     hostToggleAttr,
	"get_attr_of":     hostGetAttrOf,
	"set_target":      hostSetTarget,
	"clear_target":    hostClearTarget,
	"target":          hostTarget,
	"has_target":      hostHasTarget,
	"id":              hostID,
	"random":          hostRandom,
	"debug":           hostDebug,
	"get_sector_name": hostGetSectorName,

	// movement
	"goto":                  hostGoto,
	"close_in":              hostCloseIn,
	"random_walk":           hostRandomWalk,
	"random_walk_in_sector": hostRandomWalkInSector,
	"patrol":                hostPatrol,
	"stop":                  hostStop,
	"teleport":              hostTeleport,

	// inventory
	"take":               hostTake,
	"drop":               hostDrop,
	"drop_items":         hostDropItems,
	"equip":              hostEquip,
	"add_item":           hostAddItem,
	"inventory_items":    hostInventoryItems,
	"inventory_items_of": hostInventoryItemsOf,
	"offer_inventory":    hostOfferInventory,

	// combat
	"deal_damage": hostDealDamage,
	"took_damage": hostTookDamage,
	"cast_spell":  hostCastSpell,

	// messaging, audio and scheduling
	"message":                hostMessage,
	"play_audio":             hostPlayAudio,
	"clear_audio":            hostClearAudio,
	"set_audio_bus_volume":   hostSetAudioBusVolume,
	"notify_in":              hostNotifyIn,
	"set_proximity_tracking": hostSetProximityTracking,
	"block_events":           hostBlockEvents,
}

// OnHostCall dispatches name. Unknown names report false and are ignored
// by the engine.
func (b *Bridge) OnHostCall(name string, args []script.Value) (script.Value, bool) {
	fn, ok := hostCalls[name]
	if !ok {
		return script.None(), false
	}
	return fn(b, args), true
}

func arg(args []script.Value, i int) script.Value {
	if i < len(args) {
		return args[i]
	}
	return script.None()
}

func argID(args []script.Value, i int) uint32 {
	f, ok := arg(args, i).Float()
	if !ok || f < 0 {
		return 0
	}
	return uint32(f)
}

// fail records a soft failure at the current script location and returns
// ret to the script.
func (b *Bridge) fail(ret script.Value, format string, a ...any) script.Value {
	b.ctx.pushDebug(b.subject, b.where(), fmt.Sprintf(format, a...))
	return ret
}

func (b *Bridge) where() string {
	if b.engine == nil {
		return ""
	}
	return b.engine.Where()
}

// entity is the subject when it is an entity.
func (b *Bridge) entity() *Entity {
	if b.subject.Kind != SubjectEntity {
		return nil
	}
	return b.ctx.Entity(b.subject.ID)
}

// item is the subject when it is an item, with its carrier if any.
func (b *Bridge) item() (*Item, *Entity) {
	if b.subject.Kind != SubjectItem {
		return nil, nil
	}
	return b.ctx.FindItem(b.subject.ID)
}

func hostID(b *Bridge, _ []script.Value) script.Value {
	return script.Int(int(b.subject.ID))
}

func hostRandom(b *Bridge, args []script.Value) script.Value {
	lo := arg(args, 0).IntOr(0)
	hi := arg(args, 1).IntOr(lo)
	if hi < lo {
		lo, hi = hi, lo
	}
	return script.Int(combat.RollBetween(b.ctx.Rand, lo, hi))
}

func hostDebug(b *Bridge, args []script.Value) script.Value {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Str()
	}
	b.ctx.pushDebug(b.subject, b.where(), strings.Join(parts, " "))
	return script.None()
}

func hostGetSectorName(b *Bridge, _ []script.Value) script.Value {
	if s := b.ctx.Map.SectorAt(b.subjectPos()); s != nil {
		return script.String(s.Name)
	}
	return script.String("")
}

func (b *Bridge) subjectPos() mgl64.Vec3 {
	if e := b.entity(); e != nil {
		return e.Pos
	}
	if it, owner := b.item(); it != nil {
		if owner != nil {
			return owner.Pos
		}
		return it.Pos
	}
	return mgl64.Vec3{}
}

func hostMessage(b *Bridge, args []script.Value) script.Value {
	to := argID(args, 0)
	text := arg(args, 1).Str()
	category := arg(args, 2).Str()

	attrs := b.ctx.SubjectAttrs(b.subject)
	expanded, err := display.Expand(text, attrs.Native())
	if err != nil {
		return b.fail(script.Bool(false), "message: %v", err)
	}

	msg := TextMessage{
		Region:   b.ctx.ID,
		To:       to,
		Text:     display.Wrap(display.Capitalize(expanded), b.ctx.Config.MessageWrap),
		Category: category,
	}
	if b.subject.Kind == SubjectItem {
		msg.FromItem = b.subject.ID
	} else {
		msg.FromEntity = b.subject.ID
	}
	b.ctx.emit(msg)
	return script.Bool(true)
}

func hostPlayAudio(b *Bridge, args []script.Value) script.Value {
	name := arg(args, 0).Str()
	if name == "" {
		return b.fail(script.Bool(false), "play_audio: missing name")
	}
	b.ctx.emit(AudioCmd{Region: b.ctx.ID, Cmd: AudioCommand{
		Kind: AudioPlay,
		Name: name,
		Bus:  arg(args, 1).Str(),
		Gain: arg(args, 2).FloatOr(1),
		Loop: arg(args, 3).Truthy(),
	}})
	return script.Bool(true)
}

func hostClearAudio(b *Bridge, args []script.Value) script.Value {
	cmd := AudioCommand{Kind: AudioClearAll}
	if bus := arg(args, 0).Str(); bus != "" {
		cmd = AudioCommand{Kind: AudioClearBus, Bus: bus}
	}
	b.ctx.emit(AudioCmd{Region: b.ctx.ID, Cmd: cmd})
	return script.None()
}

func hostSetAudioBusVolume(b *Bridge, args []script.Value) script.Value {
	b.ctx.emit(AudioCmd{Region: b.ctx.ID, Cmd: AudioCommand{
		Kind:   AudioSetBusVolume,
		Bus:    arg(args, 0).Str(),
		Volume: arg(args, 1).FloatOr(1),
	}})
	return script.None()
}

func hostNotifyIn(b *Bridge, args []script.Value) script.Value {
	minutes, ok := arg(args, 0).Float()
	event := arg(args, 1).Str()
	if !ok || event == "" {
		return b.fail(script.Bool(false), "notify_in: expected minutes and event name")
	}
	b.ctx.Notify(b.subject, minutes, event)
	return script.Bool(true)
}

func hostSetProximityTracking(b *Bridge, args []script.Value) script.Value {
	if b.subject.Kind != SubjectEntity {
		return b.fail(script.Bool(false), "set_proximity_tracking: %v", ErrNotAnEntity)
	}
	radius := 0.0
	if arg(args, 0).Truthy() {
		radius = arg(args, 1).FloatOr(5)
	}
	b.ctx.SetProximity(b.subject.ID, radius)
	return script.Bool(true)
}

func hostBlockEvents(b *Bridge, args []script.Value) script.Value {
	minutes, ok := arg(args, 0).Float()
	if !ok || len(args) < 2 {
		return b.fail(script.Bool(false), "block_events: expected minutes and event names")
	}
	names := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		names = append(names, a.Str())
	}
	b.ctx.BlockEvents(b.subject, minutes, names...)
	return script.Bool(true)
}
