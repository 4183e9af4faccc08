package script

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestValue_Conversions(t *testing.T) {
	tests := map[string]struct {
		v        Value
		expFloat float64
		expOk    bool
		expTrue  bool
		expStr   string
	}{
		"none":           {v: None(), expFloat: 0, expOk: false, expTrue: false, expStr: ""},
		"number":         {v: Number(2.5), expFloat: 2.5, expOk: true, expTrue: true, expStr: "2.5"},
		"zero":           {v: Int(0), expFloat: 0, expOk: true, expTrue: false, expStr: "0"},
		"bool true":      {v: Bool(true), expFloat: 1, expOk: true, expTrue: true, expStr: "true"},
		"numeric string": {v: String("12"), expFloat: 12, expOk: true, expTrue: true, expStr: "12"},
		"word string":    {v: String("goblin"), expFloat: 0, expOk: false, expTrue: true, expStr: "goblin"},
		"empty string":   {v: String(""), expFloat: 0, expOk: false, expTrue: false, expStr: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f, ok := tt.v.Float()
			testutil.AssertEqual(t, "float", f, tt.expFloat)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			testutil.AssertEqual(t, "truthy", tt.v.Truthy(), tt.expTrue)
			testutil.AssertEqual(t, "str", tt.v.Str(), tt.expStr)
		})
	}
}

func TestFromNative(t *testing.T) {
	tests := map[string]struct {
		raw    any
		exp    Value
		expErr string
	}{
		"float":       {raw: 3.0, exp: Number(3)},
		"string":      {raw: "hello", exp: String("hello")},
		"bool":        {raw: true, exp: Bool(true)},
		"vec2":        {raw: []any{1.0, 2.0}, exp: Vec2(1, 2)},
		"vec3":        {raw: []any{1.0, 2.0, 3.0}, exp: Vec3(1, 2, 3)},
		"bad array":   {raw: []any{"a"}, expErr: "not a number"},
		"long array":  {raw: []any{1.0, 2.0, 3.0, 4.0}, expErr: "not a vector"},
		"nested maps": {raw: map[string]any{"a": 1}, expErr: "unsupported attribute type"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := FromNative(tt.raw)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "value", v, tt.exp)
		})
	}
}
