// Defines the Robot value that models one oblivious point robot in the simulation.
// A Robot is a snapshot: every state transition produces a new value, so snapshots
// held by the timeline stay valid forever.

package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/path"
	"github.com/inference-sim/swarm-sim/sim/transform"
)

// IdleTolerance is the path length at or below which a computation counts as a
// decision not to move.
const IdleTolerance = 1e-9

// RobotState is the phase of a robot's Look-Compute-Move cycle.
type RobotState int

const (
	StateSleeping RobotState = iota
	StateComputing
	StateMoving
)

func (s RobotState) String() string {
	switch s {
	case StateSleeping:
		return "SLEEPING"
	case StateComputing:
		return "COMPUTING"
	case StateMoving:
		return "MOVING"
	default:
		return fmt.Sprintf("RobotState(%d)", int(s))
	}
}

// NextEvent returns the only event that may legally be applied to a robot in state s.
func (s RobotState) NextEvent() EventType {
	switch s {
	case StateSleeping:
		return EventStartCompute
	case StateComputing:
		return EventStartMoving
	case StateMoving:
		return EventEndMoving
	default:
		panic(fmt.Sprintf("NextEvent: unknown robot state %d", int(s)))
	}
}

// Robot is an immutable snapshot of one robot.
type Robot struct {
	ID        int
	State     RobotState
	Pos       geom.Vector // position at the snapshot time; while MOVING use PositionAt
	Speed     float64
	Transform transform.Transform
	Algorithm Algorithm
	Path      path.Path // global frame; set while COMPUTING and MOVING, nil while SLEEPING
	Since     float64   // time of the last state change

	// Bookkeeping for quiescence detection.
	ComputedAt float64 // time of the latest START_COMPUTE
	MovedUntil float64 // time the latest non-null move ended
	Idle       bool    // the latest computation produced a null path
}

// NewRobot returns a SLEEPING robot at pos. A nil transform means the identity frame.
func NewRobot(id int, pos geom.Vector, speed float64, tr transform.Transform, alg Algorithm) (Robot, error) {
	if !(speed > 0) || math.IsInf(speed, 1) {
		return Robot{}, fmt.Errorf("robot %d: speed must be positive and finite, got %g", id, speed)
	}
	if !pos.IsFinite() {
		return Robot{}, fmt.Errorf("robot %d: position %v is not finite", id, pos)
	}
	if alg == nil {
		return Robot{}, fmt.Errorf("robot %d: no algorithm", id)
	}
	if tr == nil {
		tr = transform.Identity{}
	}
	return Robot{
		ID:        id,
		State:     StateSleeping,
		Pos:       pos,
		Speed:     speed,
		Transform: tr,
		Algorithm: alg,
	}, nil
}

// ArrivalTime returns when a MOVING robot reaches the end of its path.
// Returns false for robots that are not moving.
func (r Robot) ArrivalTime() (float64, bool) {
	if r.State != StateMoving || r.Path == nil {
		return 0, false
	}
	return path.EndTime(r.Path, r.Since, r.Speed), true
}

// PositionAt returns where the robot is at time t >= Since, following its path
// while MOVING and resting at the path end once it has arrived.
func (r Robot) PositionAt(t float64) geom.Vector {
	end, moving := r.ArrivalTime()
	if !moving {
		return r.Pos
	}
	switch {
	case t <= r.Since:
		return r.Path.Start()
	case t >= end:
		return r.Path.End()
	}
	return r.Path.Interpolate(r.Since, end, t)
}

// ExtrapolatedTo returns a copy of r whose Pos is its position at time t.
// No state is advanced.
func (r Robot) ExtrapolatedTo(t float64) Robot {
	r.Pos = r.PositionAt(t)
	return r
}

func (r Robot) String() string {
	return fmt.Sprintf("Robot(ID: %d, State: %s, Pos: %v, Since: %g)", r.ID, r.State, r.Pos, r.Since)
}

// withComputedPath is the SLEEPING -> COMPUTING transition. planned is in the global frame.
func (r Robot) withComputedPath(t float64, planned path.Path) Robot {
	r.State = StateComputing
	r.Path = planned
	r.Since = t
	r.ComputedAt = t
	r.Idle = path.IsNull(planned, IdleTolerance)
	return r
}

// startMoving is the COMPUTING -> MOVING transition; the path computed earlier is adopted.
func (r Robot) startMoving(t float64) Robot {
	r.State = StateMoving
	r.Since = t
	return r
}

// endMoving is the MOVING -> SLEEPING transition. The robot stops where it is at t,
// which is before the end of its path when it was interrupted.
func (r Robot) endMoving(t float64) Robot {
	r.Pos = r.PositionAt(t)
	if !r.Idle {
		r.MovedUntil = t
	}
	r.State = StateSleeping
	r.Path = nil
	r.Since = t
	return r
}
