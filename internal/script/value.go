package script

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags which part of a Value is meaningful.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindVec2
	KindVec3
	KindString
	// KindTagged carries both a number triple and a string, e.g. an
	// intent paired with the id of the entity that issued it.
	KindTagged
)

// Value is the only type that crosses between scripts and the host.
type Value struct {
	Kind Kind    `msgpack:"k"`
	X    float64 `msgpack:"x,omitempty"`
	Y    float64 `msgpack:"y,omitempty"`
	Z    float64 `msgpack:"z,omitempty"`
	S    string  `msgpack:"s,omitempty"`
}

func None() Value                         { return Value{} }
func Number(f float64) Value              { return Value{Kind: KindNumber, X: f} }
func Int(i int) Value                     { return Value{Kind: KindNumber, X: float64(i)} }
func String(s string) Value               { return Value{Kind: KindString, S: s} }
func Vec2(x, y float64) Value             { return Value{Kind: KindVec2, X: x, Y: y} }
func Vec3(x, y, z float64) Value          { return Value{Kind: KindVec3, X: x, Y: y, Z: z} }
func Tagged(x, y float64, s string) Value { return Value{Kind: KindTagged, X: x, Y: y, S: s} }

func Bool(b bool) Value {
	v := Value{Kind: KindBool}
	if b {
		v.X = 1
	}
	return v
}

func (v Value) IsNone() bool { return v.Kind == KindNone }

// Float returns the numeric value. Strings are parsed when possible.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber, KindBool, KindVec2, KindVec3, KindTagged:
		return v.X, true
	case KindString:
		f, err := strconv.ParseFloat(v.S, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FloatOr returns the numeric value or def.
func (v Value) FloatOr(def float64) float64 {
	f, ok := v.Float()
	if !ok {
		return def
	}
	return f
}

// IntOr truncates the numeric value toward zero or returns def.
func (v Value) IntOr(def int) int {
	f, ok := v.Float()
	if !ok {
		return def
	}
	return int(f)
}

// Truthy follows script semantics: none, false, 0 and "" are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool, KindNumber:
		return v.X != 0
	case KindString:
		return v.S != "" && v.S != "false"
	}
	return true
}

// Str returns the string form of the value.
func (v Value) Str() string {
	switch v.Kind {
	case KindNone:
		return ""
	case KindBool:
		return strconv.FormatBool(v.X != 0)
	case KindNumber:
		return strconv.FormatFloat(v.X, 'f', -1, 64)
	case KindVec2:
		return fmt.Sprintf("(%g, %g)", v.X, v.Y)
	case KindVec3:
		return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
	}
	return v.S
}

func (v Value) String() string { return v.Str() }

// Vec returns the value as a 3D point. Vec2 values map onto the X/Z plane.
func (v Value) Vec() (mgl64.Vec3, bool) {
	switch v.Kind {
	case KindVec2:
		return mgl64.Vec3{v.X, 0, v.Y}, true
	case KindVec3:
		return mgl64.Vec3{v.X, v.Y, v.Z}, true
	}
	return mgl64.Vec3{}, false
}

// Native converts the value into a plain Go value, used for templates and logs.
func (v Value) Native() any {
	switch v.Kind {
	case KindNone:
		return nil
	case KindBool:
		return v.X != 0
	case KindNumber:
		if v.X == float64(int64(v.X)) {
			return int64(v.X)
		}
		return v.X
	case KindString:
		return v.S
	}
	return v.Str()
}

// FromNative converts decoded JSON or YAML scalars into a Value.
func FromNative(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return None(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(t), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return String(t), nil
	case []any:
		nums := make([]float64, 0, len(t))
		for _, e := range t {
			f, ok := e.(float64)
			if !ok {
				return None(), fmt.Errorf("array element %v is not a number", e)
			}
			nums = append(nums, f)
		}
		switch len(nums) {
		case 2:
			return Vec2(nums[0], nums[1]), nil
		case 3:
			return Vec3(nums[0], nums[1], nums[2]), nil
		}
		return None(), fmt.Errorf("array of length %d is not a vector", len(nums))
	}
	return None(), fmt.Errorf("unsupported attribute type %T", raw)
}
