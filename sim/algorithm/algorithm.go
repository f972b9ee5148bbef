// Package algorithm holds robot strategies. Every strategy works in the robot's
// local frame: the robot itself is at the origin and appears in the snapshot.
package algorithm

import (
	"fmt"
	"math"
	"sort"

	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/path"
)

// Strategy computes the path a robot follows from a snapshot of the robots it sees.
// It has the same method set as sim.Algorithm.
type Strategy interface {
	Compute(snapshot []geom.Vector) path.Path
}

// Strategy names accepted by New.
const (
	NameCenterOfGravity   = "center-of-gravity"
	NameSECCenter         = "sec-center"
	NameCircleWalk        = "circle-walk"
	NameLexicographicLead = "lexicographic-leader"
	NameStay              = "stay"
)

// DefaultCircleWalkStep is the arc length circle-walk travels per cycle.
const DefaultCircleWalkStep = 0.5

// ValidAlgorithms is the set of recognized strategy names.
var ValidAlgorithms = map[string]bool{
	NameCenterOfGravity:   true,
	NameSECCenter:         true,
	NameCircleWalk:        true,
	NameLexicographicLead: true,
	NameStay:              true,
}

// IsValid returns true if name is recognized by New.
func IsValid(name string) bool {
	return ValidAlgorithms[name]
}

// Names returns the recognized strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(ValidAlgorithms))
	for name := range ValidAlgorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a Strategy by name. Panics on unrecognized names.
func New(name string) Strategy {
	if !IsValid(name) {
		panic(fmt.Sprintf("unknown algorithm %q", name))
	}
	switch name {
	case NameCenterOfGravity:
		return CenterOfGravity{}
	case NameSECCenter:
		return SECCenter{}
	case NameCircleWalk:
		return CircleWalk{Step: DefaultCircleWalkStep}
	case NameLexicographicLead:
		return LexicographicLeader{}
	case NameStay:
		return Stay{}
	default:
		panic(fmt.Sprintf("unhandled algorithm %q", name))
	}
}

// CenterOfGravity moves straight to the centroid of the visible robots.
// Under FSYNC with full visibility the swarm gathers after one round.
type CenterOfGravity struct{}

func (CenterOfGravity) Compute(snapshot []geom.Vector) path.Path {
	return path.NewLinear(geom.Zero, geom.Centroid(withSelf(snapshot)))
}

// SECCenter moves straight to the center of the smallest enclosing circle.
type SECCenter struct{}

func (SECCenter) Compute(snapshot []geom.Vector) path.Path {
	return path.NewLinear(geom.Zero, geom.SmallestEnclosingCircle(withSelf(snapshot)).Center)
}

// LexicographicLeader moves to the visible robot that is smallest by x, ties
// broken by y. The leader itself stays put.
type LexicographicLeader struct{}

func (LexicographicLeader) Compute(snapshot []geom.Vector) path.Path {
	leader := geom.Zero
	for _, p := range snapshot {
		if p.X < leader.X || (p.X == leader.X && p.Y < leader.Y) {
			leader = p
		}
	}
	return path.NewLinear(geom.Zero, leader)
}

// CircleWalk walks radially onto the smallest enclosing circle and then Step along
// it counter-clockwise. A robot at the circle's center stays.
type CircleWalk struct {
	Step float64
}

func (c CircleWalk) Compute(snapshot []geom.Vector) path.Path {
	sec := geom.SmallestEnclosingCircle(withSelf(snapshot))
	out := geom.Zero.Sub(sec.Center)
	if sec.Radius == 0 || out.Length() <= geom.Epsilon*math.Max(1, sec.Radius) {
		return path.Stay(geom.Zero)
	}
	onCircle := sec.Center.Add(out.Normalize().Scale(sec.Radius))
	arc := path.NewCircular(sec.Center, onCircle, c.Step/sec.Radius, false)
	walk, err := path.NewCombined(path.NewLinear(geom.Zero, onCircle), arc)
	if err != nil {
		panic(fmt.Sprintf("CircleWalk: %v", err))
	}
	return walk
}

// Stay never moves.
type Stay struct{}

func (Stay) Compute([]geom.Vector) path.Path {
	return path.Stay(geom.Zero)
}

// withSelf returns snapshot, adding the origin if the caller left it out.
func withSelf(snapshot []geom.Vector) []geom.Vector {
	for _, p := range snapshot {
		if p == geom.Zero {
			return snapshot
		}
	}
	return append(append([]geom.Vector(nil), snapshot...), geom.Zero)
}
