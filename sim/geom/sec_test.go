package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircumcircle_CollinearIsRejected(t *testing.T) {
	_, ok := Circumcircle(V(0, 0), V(1, 1), V(2, 2))
	assert.False(t, ok)

	_, ok = Circumcircle(V(0, 0), V(0, 0), V(2, 2))
	assert.False(t, ok, "coincident points are collinear")

	c, ok := Circumcircle(V(1, 0), V(-1, 0), V(0, 1))
	require.True(t, ok)
	assert.True(t, c.Center.ApproxEqual(Zero), "center %v", c.Center)
	assert.InDelta(t, 1.0, c.Radius, 1e-14)
}

func TestCircle_ContainsAndBoundary(t *testing.T) {
	c := Circle{Center: V(0, 0), Radius: 2}

	assert.True(t, c.Contains(V(1, 1)))
	assert.False(t, c.OnBoundary(V(1, 1)))
	assert.True(t, c.Contains(V(2, 0)))
	assert.True(t, c.OnBoundary(V(2, 0)))
	assert.True(t, c.OnBoundary(V(0, -2*(1+CircleEpsilon/2))))
	assert.False(t, c.Contains(V(2.001, 0)))
	assert.False(t, emptyCircle.Contains(Zero))
}

func TestSmallestEnclosingCircle_TrivialCases(t *testing.T) {
	tests := []struct {
		name   string
		points []Vector
		want   Circle
	}{
		{"single point", []Vector{V(3, 4)}, Circle{Center: V(3, 4), Radius: 0}},
		{"duplicates collapse to one point", []Vector{V(3, 4), V(3, 4), V(3, 4)}, Circle{Center: V(3, 4), Radius: 0}},
		{"two points", []Vector{V(0, 0), V(4, 0)}, Circle{Center: V(2, 0), Radius: 2}},
		{"two distinct with duplicates", []Vector{V(0, 0), V(4, 0), V(0, 0), V(4, 0)}, Circle{Center: V(2, 0), Radius: 2}},
		{"acute triangle uses circumcircle", []Vector{V(1, 0), V(-1, 0), V(0, 1)}, Circle{Center: V(0, 0), Radius: 1}},
		{"obtuse triangle uses longest side", []Vector{V(-2, 0), V(2, 0), V(0, 0.5)}, Circle{Center: V(0, 0), Radius: 2}},
		{"collinear triple", []Vector{V(0, 0), V(1, 0), V(3, 0)}, Circle{Center: V(1.5, 0), Radius: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SmallestEnclosingCircle(tt.points)
			assert.True(t, got.Center.ApproxEqualTol(tt.want.Center, 1e-12), "center %v, want %v", got.Center, tt.want.Center)
			assert.InDelta(t, tt.want.Radius, got.Radius, 1e-12)
		})
	}
}

func TestSmallestEnclosingCircle_EmptyPanics(t *testing.T) {
	assert.Panics(t, func() { SmallestEnclosingCircle(nil) })
}

func TestSmallestEnclosingCircle_ContainsEveryPoint(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		points := make([]Vector, n)
		for i := range points {
			points[i] = V(rng.Float64()*100-50, rng.Float64()*100-50)
		}

		c := SmallestEnclosingCircle(points)

		for _, p := range points {
			if d := c.Center.Distance(p); d > c.Radius*(1+1e-9) {
				t.Fatalf("trial %d: point %v at distance %g outside %v", trial, p, d, c)
			}
		}
		assertMinimal(t, points, c)
	}
}

// assertMinimal checks that no brute-force 2- or 3-point candidate circle enclosing
// all points is materially smaller than c.
func assertMinimal(t *testing.T, points []Vector, c Circle) {
	t.Helper()
	encloses := func(cand Circle) bool {
		for _, p := range points {
			if cand.Center.Distance(p) > cand.Radius*(1+1e-9)+1e-12 {
				return false
			}
		}
		return true
	}
	best := math.Inf(1)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if cand := CircleFromDiameter(points[i], points[j]); encloses(cand) {
				best = math.Min(best, cand.Radius)
			}
			for k := j + 1; k < len(points); k++ {
				if cand, ok := Circumcircle(points[i], points[j], points[k]); ok && encloses(cand) {
					best = math.Min(best, cand.Radius)
				}
			}
		}
	}
	if len(points) == 1 {
		best = 0
	}
	if c.Radius > best*(1+1e-9)+1e-12 {
		t.Fatalf("radius %g, but a circle of radius %g encloses all %d points", c.Radius, best, len(points))
	}
}

func TestSmallestEnclosingCircle_Deterministic(t *testing.T) {
	points := []Vector{V(0, 0), V(5, 1), V(2, 7), V(-3, 2), V(1, -4), V(6, 6)}

	first := SmallestEnclosingCircle(points)
	second := SmallestEnclosingCircle(append([]Vector(nil), points...))

	assert.Equal(t, first, second)
}

func TestSmallestEnclosingCircle_DoesNotMutateInput(t *testing.T) {
	points := []Vector{V(0, 0), V(5, 1), V(2, 7), V(-3, 2)}
	orig := append([]Vector(nil), points...)

	SmallestEnclosingCircleRand(points, rand.New(rand.NewSource(1)))

	assert.Equal(t, orig, points)
}

func TestSmallestEnclosingCircle_Cocircular(t *testing.T) {
	// GIVEN 64 points on a circle of radius 10 around (1, -2)
	var points []Vector
	for i := 0; i < 64; i++ {
		points = append(points, V(1, -2).Add(V(10, 0).Rotate(float64(i)*2*math.Pi/64)))
	}

	// WHEN the SEC is computed
	c := SmallestEnclosingCircle(points)

	// THEN it is that circle
	assert.True(t, c.Center.ApproxEqualTol(V(1, -2), 1e-9), "center %v", c.Center)
	assert.InDelta(t, 10.0, c.Radius, 1e-9)
}

func TestSmallestEnclosingCircle_RandomCocircularSetsContainEveryPoint(t *testing.T) {
	// GIVEN many random sets of 3 to 30 points on the circle of radius 5 around (3, -2),
	// often with nearly adjacent points where the circumcenter is ill-conditioned
	rng := rand.New(rand.NewSource(7))
	center := V(3, -2)
	for trial := 0; trial < 5000; trial++ {
		n := 3 + rng.Intn(28)
		points := make([]Vector, n)
		for i := range points {
			points[i] = center.Add(V(5, 0).Rotate(rng.Float64() * 2 * math.Pi))
		}

		// WHEN the SEC is computed, with the seeded and the injected random source
		circles := []Circle{
			SmallestEnclosingCircle(points),
			SmallestEnclosingCircleRand(points, rand.New(rand.NewSource(int64(trial)))),
		}

		// THEN every input point is contained and the radius is not inflated
		for _, c := range circles {
			for _, p := range points {
				if !c.Contains(p) {
					t.Fatalf("trial %d: %v leaves out %v (distance %.17g)", trial, c, p, c.Center.Distance(p))
				}
			}
			require.LessOrEqual(t, c.Radius, 5*(1+1e-6), "trial %d", trial)
		}
	}
}
