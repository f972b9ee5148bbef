package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/swarm-sim/sim/algorithm"
	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/path"
)

// testRobots builds SLEEPING unit-speed robots with IDs 0..n-1 in the identity frame.
func testRobots(t *testing.T, alg Algorithm, positions ...geom.Vector) []Robot {
	t.Helper()
	robots := make([]Robot, len(positions))
	for i, p := range positions {
		r, err := NewRobot(i, p, 1, nil, alg)
		require.NoError(t, err)
		robots[i] = r
	}
	return robots
}

// testSimulation wires robots to a simulation, failing the test on error.
func testSimulation(t *testing.T, robots []Robot, scheduler Scheduler, cfg Config) *Simulation {
	t.Helper()
	s, err := NewSimulation(robots, scheduler, cfg)
	require.NoError(t, err)
	return s
}

func fsync() Scheduler {
	return NewScheduler(SchedulerFSync, DefaultSchedulerConfig(), NewPartitionedRNG(NewSimulationKey(42)))
}

var centerOfGravity = algorithm.CenterOfGravity{}

// moveBy returns an algorithm that always walks the same local offset.
func moveBy(offset geom.Vector) Algorithm {
	return AlgorithmFunc(func([]geom.Vector) path.Path { return path.NewLinear(geom.Zero, offset) })
}

// movingRobot returns robot id MOVING along a straight path from `from` to `to`
// since t.
func movingRobot(t *testing.T, id int, from, to geom.Vector, since float64) Robot {
	t.Helper()
	r, err := NewRobot(id, from, 1, nil, centerOfGravity)
	require.NoError(t, err)
	return r.withComputedPath(since, path.NewLinear(from, to)).startMoving(since)
}

// computingRobot returns robot id COMPUTING since t with a null path.
func computingRobot(t *testing.T, id int, at geom.Vector, since float64) Robot {
	t.Helper()
	r, err := NewRobot(id, at, 1, nil, centerOfGravity)
	require.NoError(t, err)
	return r.withComputedPath(since, path.Stay(at))
}

// fixedScheduler returns the same batch on every call; for protocol-violation tests.
type fixedScheduler struct {
	batch []Event
}

func (f fixedScheduler) NextEvents([]Robot, float64, bool) ([]Event, bool) {
	return f.batch, true
}

var posInf = math.Inf(1)

// nullPath returns the null path at r's position.
func nullPath(r Robot) path.Path {
	return path.Stay(r.Pos)
}
