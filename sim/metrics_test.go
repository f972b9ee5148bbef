package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/internal/testutil"
)

func TestComputeMetrics_FSyncGathering(t *testing.T) {
	// GIVEN two robots 2 apart and one 4 away from their centroid, gathered under FSYNC
	robots := testRobots(t, centerOfGravity, geom.V(-1, 0), geom.V(1, 0), geom.V(0, 3))
	s := testSimulation(t, robots, fsync(), DefaultConfig())
	s.AdvanceTo(posInf)

	// WHEN metrics are computed
	m := ComputeMetrics(s.Timeline())

	// THEN two rounds ran, every event type fired once per robot and round
	assert.Equal(t, 2, m.Rounds)
	for _, et := range []EventType{EventStartCompute, EventStartMoving, EventEndMoving} {
		assert.Equal(t, 6, m.EventsByType[et], "%s", et)
	}
	// AND distances are the straight lines to the centroid (0, 1)
	testutil.AssertFloat64Equal(t, "robot 0", geom.V(-1, 0).Distance(geom.V(0, 1)), m.Distances[0], 1e-9)
	testutil.AssertFloat64Equal(t, "robot 2", 2, m.Distances[2], 1e-9)
	assert.True(t, m.Gathered)
	assert.LessOrEqual(t, m.FinalSpread, GatherTolerance)
	assert.Equal(t, s.Timeline().Last().Timestamp(), m.EndTime)
}

func TestComputeMetrics_InterruptedMoveCountsPartialDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interruptible = true
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(10, 0)), fsync(), cfg)
	s.AdvanceTo(3)

	m := ComputeMetrics(s.Timeline())

	testutil.AssertFloat64Equal(t, "robot 0", 1, m.Distances[0], 1e-12)
	assert.False(t, m.Gathered)
	testutil.AssertFloat64Equal(t, "spread", 4, m.FinalSpread, 1e-12)
}

func TestComputeMetrics_InitialOnly(t *testing.T) {
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(0, 2)), fsync(), DefaultConfig())

	m := ComputeMetrics(s.Timeline())

	assert.Equal(t, 0, m.Rounds)
	assert.Equal(t, []float64{0, 0}, m.DistanceValues())
	testutil.AssertFloat64Equal(t, "spread", 1, m.FinalSpread, 1e-12)
}

func TestCalculatePercentile(t *testing.T) {
	data := []float64{5, 1, 3, 2, 4}
	assert.Equal(t, 3.0, CalculatePercentile(data, 50))
	assert.Equal(t, 5.0, CalculatePercentile(data, 100))
	assert.Equal(t, 0.0, CalculatePercentile(nil, 50))
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, data, "input must not be sorted in place")
}

func TestMetrics_SaveDistances(t *testing.T) {
	m := &Metrics{Distances: map[int]float64{1: 2.5, 0: 1}}
	file := filepath.Join(t.TempDir(), "distances.csv")

	require.NoError(t, m.SaveDistances(file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "0, 1.000000000\n1, 2.500000000\n", string(data))
}
