package lottie

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/kinescope-engine/kinescope"
)

// EvalFunc resolves a scalar property's keyframed (non-expression) value
// at a frame number, the "base" value an expression can read via
// thisProperty.value and perturb.
type EvalFunc func(frame float64) float64

// ExprEngine evaluates a property's Lottie expression string ("x" field)
// in a sandboxed Lua interpreter, standing in for Bodymovin's embedded
// JavaScript expression engine — no JS runtime exists anywhere in the
// reference corpus, but gopher-lua (already pulled in for the host's
// scripting layer) gives the same shape: a small, embeddable, sandboxable
// language the engine can restrict to pure computation (spec §7
// "ExpressionError ... Fall back to nearest keyframe value, log.").
type ExprEngine struct {
	logger *kinescope.Logger
}

// NewExprEngine builds an engine logging failures to logger
// (DefaultLogger(), which writes to stderr, if nil).
func NewExprEngine(logger *kinescope.Logger) *ExprEngine {
	if logger == nil {
		logger = kinescope.DefaultLogger()
	}
	return &ExprEngine{logger: logger}
}

// EvalScalar evaluates expr at frame/fps, with base supplying the
// property's own keyframed value for thisProperty.value/velocity/speed
// and as the fallback on any failure: a syntax error, a runtime panic, or
// a non-numeric result all count as ExpressionError and fall back to
// base(frame) rather than propagating (spec §7's exact policy — log, then
// keep rendering with the nearest keyframe value).
func (e *ExprEngine) EvalScalar(expr string, frame, fps float64, base EvalFunc) (result float64) {
	fallback := base(frame)
	if expr == "" {
		return fallback
	}
	defer func() {
		if r := recover(); r != nil {
			e.logFailure(expr, fmt.Errorf("%v", r))
			result = fallback
		}
	}()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// SkipOpenLibs plus only base+math means no io, os, package, load, or
	// dofile are ever registered — an expression can compute but cannot
	// touch the filesystem, spawn anything, or load further code.
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("require", lua.LNil)

	dt := 1.0 / fps
	velocity := (base(frame+0.5) - base(frame-0.5)) / dt

	thisProperty := L.NewTable()
	L.SetField(thisProperty, "value", lua.LNumber(fallback))
	L.SetField(thisProperty, "velocity", lua.LNumber(velocity))
	L.SetField(thisProperty, "speed", lua.LNumber(math.Abs(velocity)))
	L.SetGlobal("thisProperty", thisProperty)
	L.SetGlobal("value", lua.LNumber(fallback))
	L.SetGlobal("time", lua.LNumber(frame/fps))
	L.SetGlobal("frame", lua.LNumber(frame))

	L.SetGlobal("wiggle", L.NewFunction(luaWiggle(frame/fps, fallback)))
	L.SetGlobal("loopIn", L.NewFunction(luaLoop(base, frame, true)))
	L.SetGlobal("loopOut", L.NewFunction(luaLoop(base, frame, false)))
	L.SetGlobal("clamp", L.NewFunction(luaClamp))

	if err := L.DoString("return (" + expr + ")"); err != nil {
		panic(err)
	}
	ret := L.Get(-1)
	num, ok := ret.(lua.LNumber)
	if !ok {
		panic("expression did not evaluate to a number")
	}
	return float64(num)
}

func (e *ExprEngine) logFailure(expr string, err error) {
	e.logger.Warn().Str("expr", expr).Err(err).Msg("lottie expression failed, using keyframed value")
}

// luaWiggle implements Bodymovin's wiggle(freq, amp) helper: deterministic
// value noise seeded from the property's own base value so repeated calls
// at the same frame are stable, reusing WiggleParams from the shape
// modifiers (spec's "wiggle: hash-based value noise" simplification
// applies here identically — see modifiers.go).
func luaWiggle(t, seedValue float64) lua.LGFunction {
	return func(L *lua.LState) int {
		freq := L.CheckNumber(1)
		amp := L.CheckNumber(2)
		w := WiggleParams{
			Seed:      int64(seedValue * 1000),
			Frequency: float64(freq),
			Amplitude: float64(amp),
		}
		v := w.Eval(t, 0)
		L.Push(lua.LNumber(seedValue + v.X))
		return 1
	}
}

// luaLoop backs the loopIn/loopOut(type, numKeyframes) pair. Both return
// the property's base value at the current frame: no cycle, pingpong,
// continue or offset wrap is applied, the type and numKeyframes
// arguments are ignored, and isIn does not change the result.
func luaLoop(base EvalFunc, frame float64, isIn bool) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LNumber(base(frame)))
		return 1
	}
}

func luaClamp(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	lo := float64(L.CheckNumber(2))
	hi := float64(L.CheckNumber(3))
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	L.Push(lua.LNumber(v))
	return 1
}
