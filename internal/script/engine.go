package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const DefaultCallTimeout = 250 * time.Millisecond

// Host receives every call a script makes to a name it does not define
// itself. Returning false means the name is unknown and the call is a no-op.
type Host interface {
	OnHostCall(name string, args []Value) (Value, bool)
}

// Program is a compiled class script. It holds bytecode only and can be
// loaded into any Engine.
type Program struct {
	Class string
	proto *lua.FunctionProto
}

// Compile parses and compiles source into bytecode.
func Compile(class, source string) (*Program, error) {
	chunk, err := parse.Parse(strings.NewReader(source), class)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", class, err)
	}
	proto, err := lua.Compile(chunk, class)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", class, err)
	}
	return &Program{Class: class, proto: proto}, nil
}

type classEnv struct {
	env     *lua.LTable
	entries map[string]*lua.LFunction
}

// Engine is one VM. It is not safe for concurrent use; a region owns one
// and only calls it while holding its state lock.
type Engine struct {
	L       *lua.LState
	timeout time.Duration

	classes map[string]*classEnv
	hostFns map[string]*lua.LFunction

	host     Host
	location string
}

func NewEngine(opts ...EngineOpt) *Engine {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	e := &Engine{
		L:       L,
		timeout: DefaultCallTimeout,
		classes: map[string]*classEnv{},
		hostFns: map[string]*lua.LFunction{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Close() {
	e.L.Close()
}

// Load instantiates a program under its own environment and records every
// function it defines as an entry point.
func (e *Engine) Load(p *Program) error {
	env := e.L.NewTable()
	mt := e.L.NewTable()
	e.L.SetField(mt, "__index", e.L.NewFunction(e.resolveGlobal))
	e.L.SetMetatable(env, mt)

	fn := e.L.NewFunctionFromProto(p.proto)
	fn.Env = env

	err := e.protect(func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		return fmt.Errorf("loading %s: %w", p.Class, err)
	}

	ce := &classEnv{env: env, entries: map[string]*lua.LFunction{}}
	env.ForEach(func(k, v lua.LValue) {
		if f, ok := v.(*lua.LFunction); ok {
			ce.entries[k.String()] = f
		}
	})
	e.classes[p.Class] = ce
	return nil
}

// Has reports whether class is loaded and defines entry.
func (e *Engine) Has(class, entry string) bool {
	ce, ok := e.classes[class]
	if !ok {
		return false
	}
	_, ok = ce.entries[entry]
	return ok
}

// Invoke calls entry on class with host bound for the duration of the call.
// Missing classes or entries are not errors; the call simply does not run.
func (e *Engine) Invoke(host Host, class, entry string, args ...Value) (bool, error) {
	ce, ok := e.classes[class]
	if !ok {
		return false, nil
	}
	fn, ok := ce.entries[entry]
	if !ok {
		return false, nil
	}

	e.host = host
	defer func() {
		e.host = nil
		e.location = ""
	}()

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = e.toLua(a)
	}

	err := e.protect(func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, largs...)
	})
	if err != nil {
		return true, fmt.Errorf("%s.%s: %w", class, entry, err)
	}
	return true, nil
}

// Where returns the script source location of the host call in progress.
func (e *Engine) Where() string {
	return e.location
}

func (e *Engine) protect(call func() error) error {
	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.L.SetContext(ctx)
		defer e.L.RemoveContext()
	}
	return call()
}

// resolveGlobal is the __index handler of every class environment. Base
// library names win; anything else becomes a host call.
func (e *Engine) resolveGlobal(L *lua.LState) int {
	key := L.CheckString(2)
	if v := L.GetGlobal(key); v != lua.LNil {
		L.Push(v)
		return 1
	}
	L.Push(e.hostFunction(key))
	return 1
}

func (e *Engine) hostFunction(name string) *lua.LFunction {
	if fn, ok := e.hostFns[name]; ok {
		return fn
	}
	fn := e.L.NewFunction(func(L *lua.LState) int {
		if e.host == nil {
			return 0
		}
		args := make([]Value, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, fromLua(L.Get(i)))
		}
		e.location = strings.TrimSuffix(L.Where(1), ":")

		ret, ok := e.host.OnHostCall(name, args)
		if !ok {
			slog.Debug("ignoring unknown host call", "name", name, "at", e.location)
			return 0
		}
		if ret.IsNone() {
			return 0
		}
		L.Push(e.toLua(ret))
		return 1
	})
	e.hostFns[name] = fn
	return fn
}

func (e *Engine) toLua(v Value) lua.LValue {
	switch v.Kind {
	case KindNone:
		return lua.LNil
	case KindBool:
		return lua.LBool(v.X != 0)
	case KindNumber:
		return lua.LNumber(v.X)
	case KindString:
		return lua.LString(v.S)
	}
	t := e.L.NewTable()
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	t.RawSetString("z", lua.LNumber(v.Z))
	if v.Kind == KindTagged {
		t.RawSetString("s", lua.LString(v.S))
	}
	return t
}

func fromLua(lv lua.LValue) Value {
	switch t := lv.(type) {
	case lua.LBool:
		return Bool(bool(t))
	case lua.LNumber:
		return Number(float64(t))
	case lua.LString:
		return String(string(t))
	case *lua.LTable:
		return tableValue(t)
	}
	return None()
}

// tableValue accepts {x=, y=, z=} or {1, 2, 3}.
func tableValue(t *lua.LTable) Value {
	num := func(named string, idx int) (float64, bool) {
		if n, ok := t.RawGetString(named).(lua.LNumber); ok {
			return float64(n), true
		}
		if n, ok := t.RawGetInt(idx).(lua.LNumber); ok {
			return float64(n), true
		}
		return 0, false
	}
	x, okx := num("x", 1)
	y, oky := num("y", 2)
	z, okz := num("z", 3)
	if !okx || !oky {
		return None()
	}
	s, hasS := t.RawGetString("s").(lua.LString)
	switch {
	case hasS:
		return Tagged(x, y, string(s))
	case okz:
		return Vec3(x, y, z)
	}
	return Vec2(x, y)
}
