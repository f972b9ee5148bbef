// Package path models the trajectory a robot plans during its COMPUTING phase and
// follows during MOVING.
//
// Path is a closed set of variants: Linear, Circular and Combined. Every path has
// a fixed start and end, a length, and exact time-parameterized interpolation:
// a robot that starts a path at tStart and arrives at tEnd is at Interpolate(tStart,
// tEnd, t) at time t.
package path

import (
	"fmt"
	"math"

	"github.com/inference-sim/swarm-sim/sim/geom"
)

// SeamTolerance is the absolute tolerance allowed between consecutive sub-paths of
// a Combined path and between a circular arc's endpoints and its radius.
const SeamTolerance = 1e-9

// Path is a planned trajectory. Implementations are Linear, Circular and Combined.
type Path interface {
	Start() geom.Vector
	End() geom.Vector
	Length() float64
	// Interpolate returns the position at time t when the path is traversed from
	// tStart to tEnd. Requires tStart <= t <= tEnd, and tStart < tEnd unless the
	// path starts where it ends. Panics otherwise.
	Interpolate(tStart, tEnd, t float64) geom.Vector

	sealed()
}

// EndTime returns startTime + p.Length()/speed. Panics unless speed > 0.
func EndTime(p Path, startTime, speed float64) float64 {
	if !(speed > 0) || math.IsInf(speed, 1) {
		panic(fmt.Sprintf("EndTime: speed must be positive and finite, got %g", speed))
	}
	return startTime + p.Length()/speed
}

// IsNull reports whether p has length at most tol.
func IsNull(p Path, tol float64) bool {
	return p.Length() <= tol
}

// fraction validates the interpolation preconditions and returns (t-tStart)/(tEnd-tStart).
// For the degenerate case tStart == tEnd it returns 0, provided the path does not move.
func fraction(p Path, tStart, tEnd, t float64) float64 {
	if tStart > tEnd || t < tStart || t > tEnd || math.IsNaN(t) {
		panic(fmt.Sprintf("Interpolate: t=%g outside [%g, %g]", t, tStart, tEnd))
	}
	if tStart == tEnd {
		if !p.Start().ApproxEqualTol(p.End(), SeamTolerance) {
			panic(fmt.Sprintf("Interpolate: zero duration on a path from %v to %v", p.Start(), p.End()))
		}
		return 0
	}
	return (t - tStart) / (tEnd - tStart)
}

// Linear is a straight segment.
type Linear struct {
	from, to geom.Vector
}

// NewLinear returns the straight path from a to b.
func NewLinear(from, to geom.Vector) Linear {
	return Linear{from: from, to: to}
}

// Stay returns the null path at p.
func Stay(p geom.Vector) Linear {
	return Linear{from: p, to: p}
}

func (l Linear) Start() geom.Vector { return l.from }
func (l Linear) End() geom.Vector   { return l.to }
func (l Linear) Length() float64    { return l.from.Distance(l.to) }

func (l Linear) Interpolate(tStart, tEnd, t float64) geom.Vector {
	f := fraction(l, tStart, tEnd, t)
	switch {
	case f <= 0:
		return l.from
	case f >= 1:
		return l.to
	}
	return l.from.Add(l.to.Sub(l.from).Scale(f))
}

func (l Linear) String() string {
	return fmt.Sprintf("Linear{%v -> %v}", l.from, l.to)
}

func (Linear) sealed() {}

// Circular is an arc around a center, traversed through a non-negative angle
// either clockwise or anticlockwise.
type Circular struct {
	center    geom.Vector
	from      geom.Vector
	angle     float64
	clockwise bool
}

// NewCircular returns the arc starting at from and sweeping angle radians around
// center. Panics on a negative or non-finite angle.
func NewCircular(center, from geom.Vector, angle float64, clockwise bool) Circular {
	if angle < 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		panic(fmt.Sprintf("NewCircular: angle must be finite and non-negative, got %g", angle))
	}
	return Circular{center: center, from: from, angle: angle, clockwise: clockwise}
}

// NewCircularTo returns the arc from `from` to `to` around center travelling in the
// given direction (sweep in [0, 2π)). Returns an error when from and to are not
// equidistant from center.
func NewCircularTo(center, from, to geom.Vector, clockwise bool) (Circular, error) {
	r1, r2 := center.Distance(from), center.Distance(to)
	if math.Abs(r1-r2) > SeamTolerance*math.Max(1, math.Max(r1, r2)) {
		return Circular{}, fmt.Errorf("arc endpoints %v and %v are not equidistant from %v (%g vs %g)", from, to, center, r1, r2)
	}
	a := to.Sub(center).Angle() - from.Sub(center).Angle()
	if clockwise {
		a = -a
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return Circular{center: center, from: from, angle: a, clockwise: clockwise}, nil
}

func (c Circular) Center() geom.Vector { return c.center }
func (c Circular) Radius() float64     { return c.center.Distance(c.from) }
func (c Circular) Angle() float64      { return c.angle }
func (c Circular) Clockwise() bool     { return c.clockwise }
func (c Circular) Start() geom.Vector  { return c.from }
func (c Circular) End() geom.Vector    { return c.pointAt(1) }
func (c Circular) Length() float64     { return c.Radius() * c.angle }

// signedAngle is positive for anticlockwise traversal.
func (c Circular) signedAngle() float64 {
	if c.clockwise {
		return -c.angle
	}
	return c.angle
}

func (c Circular) pointAt(f float64) geom.Vector {
	if f <= 0 {
		return c.from
	}
	return c.from.RotateAround(c.signedAngle()*f, c.center)
}

func (c Circular) Interpolate(tStart, tEnd, t float64) geom.Vector {
	f := fraction(c, tStart, tEnd, t)
	return c.pointAt(math.Min(f, 1))
}

func (c Circular) String() string {
	dir := "anticlockwise"
	if c.clockwise {
		dir = "clockwise"
	}
	return fmt.Sprintf("Circular{center=%v, from=%v, angle=%g, %s}", c.center, c.from, c.angle, dir)
}

func (Circular) sealed() {}

// Combined is an ordered sequence of sub-paths traversed one after another at
// constant speed: each part gets a share of the time proportional to its length.
type Combined struct {
	parts  []Path
	length float64
}

// NewCombined chains parts. Returns an error when parts is empty or when a part
// does not start where the previous one ends.
func NewCombined(parts ...Path) (Combined, error) {
	if len(parts) == 0 {
		return Combined{}, fmt.Errorf("combined path needs at least one part")
	}
	total := 0.0
	for i, p := range parts {
		if i > 0 && !parts[i-1].End().ApproxEqualTol(p.Start(), SeamTolerance) {
			return Combined{}, fmt.Errorf("part %d starts at %v but part %d ends at %v", i, p.Start(), i-1, parts[i-1].End())
		}
		total += p.Length()
	}
	return Combined{parts: append([]Path(nil), parts...), length: total}, nil
}

// Parts returns a copy of the sub-paths.
func (c Combined) Parts() []Path     { return append([]Path(nil), c.parts...) }
func (c Combined) Start() geom.Vector { return c.parts[0].Start() }
func (c Combined) End() geom.Vector   { return c.parts[len(c.parts)-1].End() }
func (c Combined) Length() float64    { return c.length }

func (c Combined) Interpolate(tStart, tEnd, t float64) geom.Vector {
	f := fraction(c, tStart, tEnd, t)
	if c.length == 0 || f <= 0 {
		return c.Start()
	}
	if f >= 1 {
		return c.End()
	}
	target := f * c.length
	walked := 0.0
	for _, p := range c.parts {
		l := p.Length()
		if l == 0 {
			continue
		}
		if walked+l >= target {
			// re-parameterize the part over [0, l] of travelled distance
			return p.Interpolate(0, l, math.Max(0, math.Min(l, target-walked)))
		}
		walked += l
	}
	return c.End()
}

func (c Combined) String() string {
	return fmt.Sprintf("Combined%v", c.parts)
}

func (Combined) sealed() {}

// Map returns p with every point passed through f. f must be an affine map of the
// plane that preserves distances up to a uniform scale (a similarity), as frame
// conversions are. Arc direction flips when f reverses orientation.
func Map(p Path, f func(geom.Vector) geom.Vector) Path {
	switch v := p.(type) {
	case Linear:
		return Linear{from: f(v.from), to: f(v.to)}
	case Circular:
		clockwise := v.clockwise
		if reversesOrientation(f, v.center) {
			clockwise = !clockwise
		}
		return Circular{center: f(v.center), from: f(v.from), angle: v.angle, clockwise: clockwise}
	case Combined:
		parts := make([]Path, len(v.parts))
		total := 0.0
		for i, sub := range v.parts {
			parts[i] = Map(sub, f)
			total += parts[i].Length()
		}
		return Combined{parts: parts, length: total}
	default:
		panic(fmt.Sprintf("Map: unhandled path type %T", p))
	}
}

func reversesOrientation(f func(geom.Vector) geom.Vector, at geom.Vector) bool {
	o := f(at)
	ex := f(at.Add(geom.V(1, 0))).Sub(o)
	ey := f(at.Add(geom.V(0, 1))).Sub(o)
	return ex.Cross(ey) < 0
}
