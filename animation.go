package kinescope

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Lerp is implemented by every type usable as a Keyframed[T] payload
// (spec §3 "Animatable"). Scalars, vectors, and colors all satisfy it;
// Bezier paths get their own morphing logic in lottie/property.go and are
// not parameterized through this interface.
type Lerp[T any] interface {
	LerpTo(to T, t float64) T
}

// Vector is implemented by every type usable as a Spring[T] payload: it
// needs real vector arithmetic (not just interpolation) to integrate
// velocity and acceleration component-wise.
type Vector[T any] interface {
	Add(T) T
	Sub(T) T
	Scale(float64) T
}

// Float64 adapts a bare float64 to Lerp/Vector so Keyframed[Float64] and
// Spring[Float64] can drive plain scalar properties (opacity, rotation,
// individual gradient stops).
type Float64 float64

func (f Float64) LerpTo(to Float64, t float64) Float64 {
	return Float64(float64(f) + (float64(to)-float64(f))*t)
}
func (f Float64) Add(o Float64) Float64    { return f + o }
func (f Float64) Sub(o Float64) Float64    { return f - o }
func (f Float64) Scale(s float64) Float64  { return Float64(float64(f) * s) }

func (v Vec2) LerpTo(to Vec2, t float64) Vec2 {
	return Vec2{v.X + (to.X-v.X)*t, v.Y + (to.Y-v.Y)*t}
}
func (v Vec2) Add(o Vec2) Vec2   { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2   { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec3) LerpTo(to Vec3, t float64) Vec3 {
	return Vec3{v.X + (to.X-v.X)*t, v.Y + (to.Y-v.Y)*t, v.Z + (to.Z-v.Z)*t}
}
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (c Color) LerpTo(to Color, t float64) Color { return c.Lerp(to, t) }
func (c Color) Add(o Color) Color                { return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A} }
func (c Color) Sub(o Color) Color                { return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A} }
func (c Color) Scale(s float64) Color            { return Color{c.R * s, c.G * s, c.B * s, c.A * s} }

// Easing selects how a Keyframe's segment interpolates (spec §3
// "Keyframed<T>"). Bezier easing is evaluated by cubicBezierEase, a
// hand-written solver shaped as a gween/ease TweenFunc; linear easing
// calls ease.Linear directly.
type Easing struct {
	Kind EasingKind
	CP1  Vec2 // bezier control point 1, normalized [0,1]x[any]
	CP2  Vec2 // bezier control point 2
}

// LinearEasing, HoldEasing are the two parameterless Easing values.
var (
	LinearEasing = Easing{Kind: EasingLinear}
	HoldEasing   = Easing{Kind: EasingHold}
)

// cubicBezierEase evaluates a two-control-point cubic bezier easing curve
// at normalized time t, shaped as a classic Penner ease.TweenFunc (t, b,
// c, d) -> value, so it can be dropped in anywhere gween expects one.
// Solves for the bezier parameter u satisfying bezierX(u) == t via
// bisection (monotonic for the control point ranges After-Effects-style
// easing produces), then evaluates bezierY(u).
func cubicBezierEase(cp1, cp2 Vec2) ease.TweenFunc {
	bezier1D := func(p1, p2, t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t
	}
	return func(t, b, c, d float32) float32 {
		if d == 0 {
			return b + c
		}
		target := float64(t / d)
		lo, hi := 0.0, 1.0
		u := target
		for i := 0; i < 24; i++ {
			u = (lo + hi) / 2
			x := bezier1D(cp1.X, cp2.X, u)
			if x < target {
				lo = u
			} else {
				hi = u
			}
		}
		y := bezier1D(cp1.Y, cp2.Y, u)
		return b + c*float32(y)
	}
}

// Apply evaluates the easing at normalized segment time t (already
// clamped to [0,1] by the caller).
func (e Easing) Apply(t float64) float64 {
	switch e.Kind {
	case EasingHold:
		return 0
	case EasingBezier:
		fn := cubicBezierEase(e.CP1, e.CP2)
		return float64(fn(float32(t), 0, 1, 1))
	default:
		return float64(ease.Linear(float32(t), 0, 1, 1))
	}
}

// Keyframe is one control point of a Keyframed[T] property (spec §3).
// ValueEnd is optional; per the end-value policy, it is only consulted
// when the NEXT keyframe has no ValueStart of its own, which for typed
// keyframes built by this engine's own constructors never happens —
// ValueEndSet exists for keyframes decoded from Lottie JSON, where an
// explicit "e" array is common and must take priority at the segment's
// own tail, handled by segmentEnd for the very last keyframe.
type Keyframe[T Lerp[T]] struct {
	Frame       float64
	ValueStart  T
	ValueEnd    T
	ValueEndSet bool
	Easing      Easing
	// InTangent/OutTangent are spatial Bezier handles for vector-valued
	// properties (Lottie's "ti"/"to"); zero value means "linear spatial
	// path between keyframe values".
	InTangent, OutTangent Vec2
	HasSpatialTangents    bool
}

// Keyframed is an ordered sequence of Keyframes driving a typed property
// over frame numbers (spec §3 "Keyframed<T>"). The zero value has no
// keyframes; Eval on it returns the zero T.
type Keyframed[T Lerp[T]] struct {
	Keyframes []Keyframe[T]
	// Loop, if set, wraps the driving frame into [LoopStart, LoopEnd)
	// using Euclidean modulo before evaluation (spec §4.4 "Looping").
	Loop      bool
	LoopStart float64
	LoopEnd   float64
}

// Eval resolves the property's value at frame f.
func (k *Keyframed[T]) Eval(f float64) T {
	var zero T
	if len(k.Keyframes) == 0 {
		return zero
	}
	if k.Loop && k.LoopEnd > k.LoopStart {
		f = euclideanMod(f-k.LoopStart, k.LoopEnd-k.LoopStart) + k.LoopStart
	}
	if f <= k.Keyframes[0].Frame {
		return k.Keyframes[0].ValueStart
	}
	last := k.Keyframes[len(k.Keyframes)-1]
	if f >= last.Frame {
		return k.segmentEnd(len(k.Keyframes) - 1)
	}
	for i := 0; i < len(k.Keyframes)-1; i++ {
		kfI := k.Keyframes[i]
		kfNext := k.Keyframes[i+1]
		if f >= kfI.Frame && f < kfNext.Frame {
			span := kfNext.Frame - kfI.Frame
			t := 0.0
			if span > 0 {
				t = (f - kfI.Frame) / span
			}
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			if kfI.Easing.Kind == EasingHold {
				return kfI.ValueStart
			}
			eased := kfI.Easing.Apply(t)
			end := k.segmentEndBetween(i)
			return kfI.ValueStart.LerpTo(end, eased)
		}
	}
	return last.ValueStart
}

// segmentEndBetween resolves the end value for the segment starting at
// index i, implementing the end-value policy exactly (spec §3, "critical
// invariant"): prefer the NEXT keyframe's ValueStart; the fallback to
// THIS keyframe's ValueEnd only applies when there is no next keyframe at
// all, which segmentEnd handles for the trailing keyframe.
func (k *Keyframed[T]) segmentEndBetween(i int) T {
	return k.Keyframes[i+1].ValueStart
}

// segmentEnd resolves the held value past the last keyframe.
func (k *Keyframed[T]) segmentEnd(i int) T {
	kf := k.Keyframes[i]
	if kf.ValueEndSet {
		return kf.ValueEnd
	}
	return kf.ValueStart
}

// euclideanMod returns a mod m with a result always in [0, m), unlike
// Go's %, which can return negative results for negative a — required by
// spec §4.4's "Euclidean modulo so negative raw wraps correctly".
func euclideanMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

// Spring is a fixed-step semi-implicit Euler spring integrator (spec §3
// "Spring<T>"): at t=0 its value is From, and as t→∞ it settles on To.
type Spring[T Vector[T]] struct {
	Stiffness       float64
	Damping         float64
	Mass            float64
	InitialVelocity T
	From, To        T

	value      T
	velocity   T
	simulatedT float64
	started    bool
}

// springStep is the fixed integration step (seconds); small enough that
// typical UI spring parameters (stiffness ~100-400, damping ~10-40) stay
// numerically stable under semi-implicit Euler.
const springStep = 1.0 / 240.0

// Eval advances the spring to time t (seconds since the spring started)
// and returns the value at t. t must be non-decreasing across calls for a
// given Spring; a smaller t than previously seen restarts integration
// from From.
func (s *Spring[T]) Eval(t float64) T {
	if !s.started || t < s.simulatedT {
		s.value = s.From
		s.velocity = s.InitialVelocity
		s.simulatedT = 0
		s.started = true
	}
	for s.simulatedT < t {
		dt := springStep
		if s.simulatedT+dt > t {
			dt = t - s.simulatedT
		}
		if dt <= 0 {
			break
		}
		s.integrate(dt)
		s.simulatedT += dt
	}
	return s.value
}

// integrate advances value/velocity by dt using semi-implicit
// ("symplectic") Euler: update velocity from the current displacement
// first, then update position using the NEW velocity. This is what makes
// the integrator stable for stiff springs at a fixed low-Hz step where
// plain (explicit) Euler would diverge.
func (s *Spring[T]) integrate(dt float64) {
	mass := s.Mass
	if mass <= 0 {
		mass = 1
	}
	displacement := s.value.Sub(s.To)
	springForce := displacement.Scale(-s.Stiffness)
	dampingForce := s.velocity.Scale(-s.Damping)
	accel := springForce.Add(dampingForce).Scale(1 / mass)
	s.velocity = s.velocity.Add(accel.Scale(dt))
	s.value = s.value.Add(s.velocity.Scale(dt))
}
