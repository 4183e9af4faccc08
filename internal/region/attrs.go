package region

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/script"
)

// Well known attribute keys.
const (
	AttrMode         = "mode"
	AttrVisible      = "visible"
	AttrTarget       = "target"
	AttrAttackTarget = "attack_target"
	AttrIntent       = "intent"
	AttrPlayer       = "player"
	AttrRadius       = "radius"
	AttrSpeed        = "speed"
	AttrBlocking     = "blocking"
	AttrStatic       = "static"
	AttrMonetary     = "monetary"
	AttrWorth        = "worth"
	AttrSlot         = "slot"
	AttrAutoDamage   = "autodamage"
	AttrSector       = "sector"
	AttrName         = "name"

	ModeDead = "dead"

	DefaultRadius = 0.5
)

// Attributes is the open key/value bag every entity and item carries.
type Attributes map[string]script.Value

// AttributesFromNative converts a decoded asset table. Every bad key is
// reported, not just the first.
func AttributesFromNative(raw map[string]any) (Attributes, error) {
	attrs := make(Attributes, len(raw))
	el := errors.NewErrorList()
	for k, v := range raw {
		val, err := script.FromNative(v)
		if err != nil {
			el.Add(fmt.Errorf("attribute %q: %w", k, err))
			continue
		}
		attrs[k] = val
	}
	return attrs, el.Err()
}

func (a Attributes) Get(key string) (script.Value, bool) {
	v, ok := a[key]
	return v, ok
}

func (a Attributes) Float(key string, def float64) float64 {
	v, ok := a[key]
	if !ok {
		return def
	}
	return v.FloatOr(def)
}

func (a Attributes) Int(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}
	return v.IntOr(def)
}

func (a Attributes) Bool(key string) bool {
	return a[key].Truthy()
}

func (a Attributes) Str(key string) string {
	return a[key].Str()
}

// Lookup matches key exactly first and then case-insensitively, so target
// filters like "hp<=0" find an "HP" attribute.
func (a Attributes) Lookup(key string) (script.Value, bool) {
	if v, ok := a[key]; ok {
		return v, true
	}
	for k, v := range a {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return script.None(), false
}

func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Native returns a plain map for template expansion.
func (a Attributes) Native() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v.Native()
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
