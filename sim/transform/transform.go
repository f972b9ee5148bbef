// Package transform converts between a robot's local frame, in which the robot
// itself sits at the origin, and the shared global frame.
package transform

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/inference-sim/swarm-sim/sim/geom"
)

// Transform maps points between a robot's local frame and the global frame.
// origin is the robot's global position. The two methods are exact inverses:
// GlobalToLocal(LocalToGlobal(p, o), o) == p up to rounding, and symmetrically.
type Transform interface {
	GlobalToLocal(p, origin geom.Vector) geom.Vector
	LocalToGlobal(p, origin geom.Vector) geom.Vector
}

// Identity is a local frame that differs from the global one only by translation.
type Identity struct{}

func (Identity) GlobalToLocal(p, origin geom.Vector) geom.Vector { return p.Sub(origin) }
func (Identity) LocalToGlobal(p, origin geom.Vector) geom.Vector { return p.Add(origin) }

// Affine is a local frame rotated by Rotation radians, with unit length Scale, and
// optionally mirrored (its y axis flipped) relative to the global frame.
//
// Local to global: mirror, then scale, then rotate, then translate by origin.
type Affine struct {
	Rotation float64
	Scale    float64
	Mirror   bool
}

// NewAffine validates and returns an Affine frame.
func NewAffine(rotation, scale float64, mirror bool) (Affine, error) {
	if !(scale > 0) || math.IsInf(scale, 1) {
		return Affine{}, fmt.Errorf("frame scale must be positive and finite, got %g", scale)
	}
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return Affine{}, fmt.Errorf("frame rotation must be finite, got %g", rotation)
	}
	return Affine{Rotation: rotation, Scale: scale, Mirror: mirror}, nil
}

func (a Affine) LocalToGlobal(p, origin geom.Vector) geom.Vector {
	if a.Mirror {
		p = geom.V(p.X, -p.Y)
	}
	return p.Scale(a.Scale).Rotate(a.Rotation).Add(origin)
}

func (a Affine) GlobalToLocal(p, origin geom.Vector) geom.Vector {
	q := p.Sub(origin).Rotate(-a.Rotation).Scale(1 / a.Scale)
	if a.Mirror {
		q = geom.V(q.X, -q.Y)
	}
	return q
}

// Random draws an Affine frame with a uniform rotation, a scale in [0.5, 2) and a
// fair coin for mirroring.
func Random(rng *rand.Rand) Affine {
	return Affine{
		Rotation: rng.Float64() * 2 * math.Pi,
		Scale:    0.5 + rng.Float64()*1.5,
		Mirror:   rng.Intn(2) == 1,
	}
}
