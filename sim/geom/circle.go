package geom

import (
	"fmt"
	"math"
)

// CircleEpsilon is the relative tolerance of Circle.Contains and Circle.OnBoundary.
const CircleEpsilon = 1e-12

// Circle is a center and a non-negative radius.
type Circle struct {
	Center Vector
	Radius float64
}

// emptyCircle contains no point at all. It is the base case of the SEC recursion
// with no boundary points and never escapes this package.
var emptyCircle = Circle{Radius: -1}

// Contains reports whether p lies within Radius*(1+CircleEpsilon) of the center.
func (c Circle) Contains(p Vector) bool {
	return c.Center.Distance(p) <= c.Radius*(1+CircleEpsilon)
}

// OnBoundary reports whether p lies in the symmetric band
// [Radius*(1-CircleEpsilon), Radius*(1+CircleEpsilon)] around the center.
func (c Circle) OnBoundary(p Vector) bool {
	if c.Radius < 0 {
		return false
	}
	return math.Abs(c.Center.Distance(p)-c.Radius) <= c.Radius*CircleEpsilon
}

// PointAt returns the boundary point at the given angle (radians, anticlockwise from +x).
func (c Circle) PointAt(angle float64) Vector {
	return c.Center.Add(V(math.Cos(angle), math.Sin(angle)).Scale(c.Radius))
}

func (c Circle) String() string {
	return fmt.Sprintf("Circle{center=%v, r=%g}", c.Center, c.Radius)
}

// CircleFromDiameter returns the circle having segment ab as its diameter.
func CircleFromDiameter(a, b Vector) Circle {
	center := a.Add(b).Scale(0.5)
	return Circle{Center: center, Radius: math.Max(center.Distance(a), center.Distance(b))}
}

// Circumcircle returns the circle through a, b and c.
// Returns false when the three points are collinear (including coincident points).
func Circumcircle(a, b, c Vector) (Circle, bool) {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return Circle{}, false
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	center := V(a.X+ux, a.Y+uy)
	if !center.IsFinite() {
		return Circle{}, false
	}
	r := math.Max(center.Distance(a), math.Max(center.Distance(b), center.Distance(c)))
	return Circle{Center: center, Radius: r}, true
}

// circleThrough returns the circle having every point of r (at most 3) on its
// boundary. A collinear triple falls back to the diameter circle of its farthest pair.
func circleThrough(r []Vector) Circle {
	switch len(r) {
	case 0:
		return emptyCircle
	case 1:
		return Circle{Center: r[0], Radius: 0}
	case 2:
		return CircleFromDiameter(r[0], r[1])
	case 3:
		if c, ok := Circumcircle(r[0], r[1], r[2]); ok {
			return c
		}
		return farthestPairCircle(r[0], r[1], r[2])
	default:
		panic(fmt.Sprintf("circleThrough: %d boundary points, want at most 3", len(r)))
	}
}

func farthestPairCircle(a, b, c Vector) Circle {
	best := CircleFromDiameter(a, b)
	if d := CircleFromDiameter(a, c); d.Radius > best.Radius {
		best = d
	}
	if d := CircleFromDiameter(b, c); d.Radius > best.Radius {
		best = d
	}
	return best
}
