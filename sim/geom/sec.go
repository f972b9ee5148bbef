package geom

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
)

// SmallestEnclosingCircle returns the minimal circle containing every point.
//
// Welzl's randomized incremental algorithm, expected O(n). The random source is
// seeded from the point set itself, so the same input always yields the same
// circle. Exact duplicates are removed first. Panics on an empty point set.
func SmallestEnclosingCircle(points []Vector) Circle {
	unique := Dedup(points)
	if len(unique) == 0 {
		panic("SmallestEnclosingCircle: empty point set")
	}
	return enclose(welzlShuffled(unique, rand.New(rand.NewSource(pointSetSeed(unique)))), unique)
}

// SmallestEnclosingCircleRand is SmallestEnclosingCircle with an injected random source.
func SmallestEnclosingCircleRand(points []Vector, rng *rand.Rand) Circle {
	unique := Dedup(points)
	if len(unique) == 0 {
		panic("SmallestEnclosingCircle: empty point set")
	}
	return enclose(welzlShuffled(unique, rng), unique)
}

// enclose widens c to the farthest of points. Circumcenters of nearly adjacent
// cocircular points drift by more than CircleEpsilon, which can leave points that
// were accepted by an earlier sub-circle outside the final one.
func enclose(c Circle, points []Vector) Circle {
	for _, p := range points {
		c.Radius = math.Max(c.Radius, c.Center.Distance(p))
	}
	return c
}

// welzlShuffled owns unique and shuffles it in place; taking the last point of a
// uniformly shuffled prefix is a uniform draw from that prefix.
func welzlShuffled(unique []Vector, rng *rand.Rand) Circle {
	rng.Shuffle(len(unique), func(i, j int) { unique[i], unique[j] = unique[j], unique[i] })
	return welzl(unique, len(unique), nil)
}

// welzl solves for the first n points of p with every point of r on the boundary.
func welzl(p []Vector, n int, r []Vector) Circle {
	if n == 0 || len(r) == 3 {
		return circleThrough(r)
	}
	q := p[n-1]
	c := welzl(p, n-1, r)
	if c.Contains(q) && !c.OnBoundary(q) {
		return c
	}
	// full slice expression: the recursion must never share r's backing array
	return welzl(p, n-1, append(r[:len(r):len(r)], q))
}

func pointSetSeed(points []Vector) int64 {
	h := fnv.New64a()
	var buf [16]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}
