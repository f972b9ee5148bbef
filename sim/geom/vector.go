// Package geom provides the 2-D geometric substrate of the simulator: immutable
// vectors, circles and the smallest-enclosing-circle solver.
//
// All values are immutable. Every operation returns a new value; nothing in this
// package mutates its arguments. Vector arithmetic delegates to gonum's r2 package.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the default relative tolerance used by approximate comparisons.
const Epsilon = 1e-14

// Vector is an immutable point or direction in the plane.
type Vector struct {
	X, Y float64
}

// Zero is the origin.
var Zero = Vector{}

// V is shorthand for Vector{X: x, Y: y}.
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func (v Vector) r2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func fromR2(p r2.Vec) Vector { return Vector{X: p.X, Y: p.Y} }

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return fromR2(r2.Add(v.r2(), o.r2())) }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return fromR2(r2.Sub(v.r2(), o.r2())) }

// Scale returns f * v.
func (v Vector) Scale(f float64) Vector { return fromR2(r2.Scale(f, v.r2())) }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return r2.Dot(v.r2(), o.r2()) }

// Cross returns the z component of the 3-D cross product of v and o.
// Positive when o is anticlockwise from v.
func (v Vector) Cross(o Vector) float64 { return r2.Cross(v.r2(), o.r2()) }

// Length returns the Euclidean norm of v.
func (v Vector) Length() float64 { return r2.Norm(v.r2()) }

// Distance returns the Euclidean distance between v and o.
func (v Vector) Distance(o Vector) float64 { return r2.Norm(r2.Sub(v.r2(), o.r2())) }

// Normalize returns the unit vector colinear to v, or the zero vector when v has
// zero length.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

// Angle returns the angle of v in radians, measured anticlockwise from the x axis.
func (v Vector) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Rotate rotates v by angle radians (anticlockwise) about the origin.
func (v Vector) Rotate(angle float64) Vector { return v.RotateAround(angle, Zero) }

// RotateAround rotates v by angle radians (anticlockwise) about center.
func (v Vector) RotateAround(angle float64, center Vector) Vector {
	return fromR2(r2.Rotate(v.r2(), angle, center.r2()))
}

// ApproxEqual reports whether v and o agree component-wise within Epsilon,
// relative to the magnitude of the components (absolute below 1).
func (v Vector) ApproxEqual(o Vector) bool {
	return v.ApproxEqualTol(o, Epsilon)
}

// ApproxEqualTol is ApproxEqual with an explicit tolerance.
func (v Vector) ApproxEqualTol(o Vector, eps float64) bool {
	return approxEqual(v.X, o.X, eps) && approxEqual(v.Y, o.Y, eps)
}

func approxEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= eps*scale
}

// IsFinite reports whether both components are finite numbers.
func (v Vector) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Centroid returns the arithmetic mean of points. Panics on an empty slice.
func Centroid(points []Vector) Vector {
	if len(points) == 0 {
		panic("Centroid: empty point set")
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Vector{X: sx / n, Y: sy / n}
}

// LineIntersection intersects the line through p1 with direction d1 and the line
// through p2 with direction d2. Returns false for parallel (or degenerate) lines.
func LineIntersection(p1, d1, p2, d2 Vector) (Vector, bool) {
	denom := d1.Cross(d2)
	if denom == 0 {
		return Zero, false
	}
	t := p2.Sub(p1).Cross(d2) / denom
	return p1.Add(d1.Scale(t)), true
}

// Dedup returns points with exact duplicates removed, preserving first-seen order.
func Dedup(points []Vector) []Vector {
	seen := make(map[Vector]struct{}, len(points))
	out := make([]Vector, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
