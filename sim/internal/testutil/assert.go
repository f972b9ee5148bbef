// Package testutil provides shared test assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/inference-sim/swarm-sim/sim/geom"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertVectorNear fails unless got lies within absTol of want.
func AssertVectorNear(t *testing.T, name string, want, got geom.Vector, absTol float64) {
	t.Helper()
	if d := want.Distance(got); !(d <= absTol) {
		t.Errorf("%s: got %v, want %v (distance=%v, tolerance=%v)", name, got, want, d, absTol)
	}
}
