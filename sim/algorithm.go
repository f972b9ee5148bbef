package sim

import (
	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/path"
)

// Algorithm is a robot's decision strategy.
//
// Compute receives the visible robot positions in the robot's local frame; the
// robot itself is at the origin and is part of snapshot. It returns the path to
// follow, in the same local frame, starting at the origin. Compute must be a pure
// function of snapshot so that any run can be replayed.
//
// It is invoked exactly once per cycle, on the SLEEPING -> COMPUTING transition.
type Algorithm interface {
	Compute(snapshot []geom.Vector) path.Path
}

// AlgorithmFunc adapts a plain function to Algorithm.
type AlgorithmFunc func(snapshot []geom.Vector) path.Path

func (f AlgorithmFunc) Compute(snapshot []geom.Vector) path.Path { return f(snapshot) }
