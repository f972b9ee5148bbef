package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/internal/testutil"
	"github.com/inference-sim/swarm-sim/sim/path"
	"github.com/inference-sim/swarm-sim/sim/trace"
	"github.com/inference-sim/swarm-sim/sim/transform"
)

func TestNewSimulation_Validation(t *testing.T) {
	robots := testRobots(t, centerOfGravity, geom.Zero, geom.V(1, 0))

	_, err := NewSimulation(nil, fsync(), DefaultConfig())
	assert.Error(t, err, "no robots")

	_, err = NewSimulation(robots, nil, DefaultConfig())
	assert.Error(t, err, "no scheduler")

	dup := []Robot{robots[0], robots[0]}
	_, err = NewSimulation(dup, fsync(), DefaultConfig())
	assert.Error(t, err, "duplicate ids")

	bad := DefaultConfig()
	bad.Visibility = -2
	_, err = NewSimulation(robots, fsync(), bad)
	assert.Error(t, err, "invalid visibility")

	busy := []Robot{computingRobot(t, 0, geom.Zero, 0)}
	_, err = NewSimulation(busy, fsync(), DefaultConfig())
	assert.Error(t, err, "robots must start SLEEPING")
}

func TestSimulation_FSyncCenterOfGravity_GathersAtCentroid(t *testing.T) {
	// GIVEN five robots at arbitrary positions, FSYNC, unlimited visibility, multiplicity on
	start := []geom.Vector{geom.V(0, 0), geom.V(10, 1), geom.V(-3, 7), geom.V(4.5, -8), geom.V(2, 2)}
	centroid := geom.Centroid(start)
	s := testSimulation(t, testRobots(t, centerOfGravity, start...), fsync(), DefaultConfig())

	// WHEN simulated to t = +Inf
	final := s.SnapshotAt(posInf)

	// THEN the run terminated with every robot on the initial centroid
	assert.Equal(t, posInf, s.ComputedUntil())
	require.Len(t, final, len(start))
	for _, r := range final {
		testutil.AssertVectorNear(t, "robot position", centroid, r.Pos, 1e-9)
		assert.Equal(t, StateSleeping, r.State)
	}
	assert.Empty(t, s.Upcoming())
}

func TestSimulation_RandomFrames_StillGather(t *testing.T) {
	// GIVEN robots with rotated, scaled and mirrored frames
	start := []geom.Vector{geom.V(1, 1), geom.V(-4, 3), geom.V(6, -2), geom.V(0, 9)}
	rng := NewPartitionedRNG(NewSimulationKey(17)).ForSubsystem(SubsystemFrames)
	robots := make([]Robot, len(start))
	for i, p := range start {
		r, err := NewRobot(i, p, 1, transform.Random(rng), centerOfGravity)
		require.NoError(t, err)
		robots[i] = r
	}
	s := testSimulation(t, robots, fsync(), DefaultConfig())

	// WHEN simulated to the end
	final := s.SnapshotAt(posInf)

	// THEN the centroid does not depend on the frames
	for _, r := range final {
		testutil.AssertVectorNear(t, "robot position", geom.Centroid(start), r.Pos, 1e-9)
	}
}

func TestSimulation_FileSchedule_EndToEnd(t *testing.T) {
	// GIVEN two robots replaying "1, 2, 3" and "1, 2, 4"
	sched, err := NewFileScheduler([][]float64{{1, 2, 3}, {1, 2, 4}}, 2)
	require.NoError(t, err)
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(2, 0)), sched, DefaultConfig())

	// WHEN advanced to just under 1
	assert.Empty(t, s.AdvanceTo(0.999))

	// THEN nothing happened yet
	assert.Equal(t, 0.0, s.ComputedUntil())
	for _, r := range s.SnapshotAt(0.999) {
		assert.Equal(t, StateSleeping, r.State)
	}

	// WHEN advanced to 1
	got := s.AdvanceTo(1)

	// THEN both robots start computing at t=1
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Timestamp())
	assert.Equal(t, []Event{
		{Type: EventStartCompute, Timestamp: 1, RobotID: 0},
		{Type: EventStartCompute, Timestamp: 1, RobotID: 1},
	}, got[0].Events())

	// AND the rest of the schedule plays out
	s.AdvanceTo(posInf)
	assert.Equal(t, posInf, s.ComputedUntil())
	assert.Equal(t, 5, s.Timeline().Len())
	final := s.Timeline().Last().Robots()
	for _, r := range final {
		testutil.AssertVectorNear(t, "gathered", geom.V(1, 0), r.Pos, 1e-12)
	}
	assert.Equal(t, 4.0, s.LastKnownTerminationLowerBound())
}

func TestSimulation_TimelineMonotonicity(t *testing.T) {
	// GIVEN an SSYNC run queried at non-decreasing times
	robots := testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(3, 0), geom.V(0, 4), geom.V(5, 5))
	sched := NewScheduler(SchedulerSSync, DefaultSchedulerConfig(), NewPartitionedRNG(NewSimulationKey(4)))
	s := testSimulation(t, robots, sched, DefaultConfig())

	s.AdvanceTo(5)
	before := s.Timeline().Entries()

	// WHEN advanced further and queried in the past
	s.AdvanceTo(5)
	s.SnapshotAt(2)
	s.AdvanceTo(20)
	after := s.Timeline().Entries()

	// THEN old entries are unchanged and timestamps strictly increase
	require.GreaterOrEqual(t, len(after), len(before))
	for i, ce := range before {
		assert.Equal(t, ce.Timestamp(), after[i].Timestamp())
		assert.Equal(t, ce.Events(), after[i].Events())
		assert.Equal(t, ce.Robots(), after[i].Robots())
	}
	for i := 1; i < len(after); i++ {
		assert.Greater(t, after[i].Timestamp(), after[i-1].Timestamp())
	}
}

func TestSimulation_AdvanceTo_ReturnsOnlyNewEntries(t *testing.T) {
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(2, 0)), fsync(), DefaultConfig())

	first := s.AdvanceTo(2)
	again := s.AdvanceTo(2)

	assert.Len(t, first, 2)
	assert.Empty(t, again)
	assert.Equal(t, 2.0, s.ComputedUntil())
	assert.Equal(t, 3.0, s.LastKnownTerminationLowerBound(), "next pending END_MOVING")
}

func TestSimulation_AdvanceOneStep(t *testing.T) {
	s := testSimulation(t, testRobots(t, moveBy(geom.Zero), geom.V(0, 0)), fsync(), DefaultConfig())

	ce, ok := s.AdvanceOneStep()
	require.True(t, ok)
	assert.Equal(t, 1.0, ce.Timestamp())

	s.AdvanceTo(posInf)
	_, ok = s.AdvanceOneStep()
	assert.False(t, ok, "no-op once exhausted")
}

func TestSimulation_SnapshotAt_InterpolatesMovingRobots(t *testing.T) {
	// GIVEN two robots two apart; under FSYNC they move from t=2 and arrive at t=3
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(2, 0)), fsync(), DefaultConfig())

	// WHEN queried mid-move
	mid := s.SnapshotAt(2.5)

	// THEN positions are interpolated and the robots are MOVING
	assert.Equal(t, StateMoving, mid[0].State)
	testutil.AssertVectorNear(t, "robot 0", geom.V(0.5, 0), mid[0].Pos, 1e-12)
	testutil.AssertVectorNear(t, "robot 1", geom.V(1.5, 0), mid[1].Pos, 1e-12)

	// AND negative times return the initial configuration
	initial := s.SnapshotAt(-1)
	assert.Equal(t, geom.V(2, 0), initial[1].Pos)
}

func TestSimulation_Interruptible_StopsAfterOnePhase(t *testing.T) {
	// GIVEN robots ten apart, interruption allowed, phase 1
	cfg := DefaultConfig()
	cfg.Interruptible = true
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(10, 0)), fsync(), cfg)

	// WHEN the first move ends
	s.AdvanceTo(3)

	// THEN each robot covered one unit, not the five to the centroid
	last := s.Timeline().Last()
	assert.Equal(t, 3.0, last.Timestamp())
	robots := last.Robots()
	assert.Equal(t, StateSleeping, robots[0].State)
	testutil.AssertVectorNear(t, "robot 0", geom.V(1, 0), robots[0].Pos, 1e-12)
	testutil.AssertVectorNear(t, "robot 1", geom.V(9, 0), robots[1].Pos, 1e-12)
}

func TestSimulation_LimitedVisibility(t *testing.T) {
	// GIVEN visibility 2 and one far-away robot, with tracing on
	cfg := DefaultConfig()
	cfg.Visibility = 2
	cfg.Trace = trace.TraceLevelDecisions
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.V(0, 0), geom.V(1, 0), geom.V(10, 0)), fsync(), cfg)

	// WHEN the first round completes
	s.AdvanceTo(3)

	// THEN the near pair meets halfway and the loner stays
	robots := s.Timeline().Last().Robots()
	testutil.AssertVectorNear(t, "robot 0", geom.V(0.5, 0), robots[0].Pos, 1e-12)
	testutil.AssertVectorNear(t, "robot 1", geom.V(0.5, 0), robots[1].Pos, 1e-12)
	assert.Equal(t, geom.V(10, 0), robots[2].Pos)

	// AND the trace saw 2, 2 and 1 visible robots
	comps := s.Trace().Computations
	require.Len(t, comps, 3)
	assert.Equal(t, 2, comps[0].Visible)
	assert.Equal(t, 2, comps[1].Visible)
	assert.Equal(t, 1, comps[2].Visible)
	assert.True(t, comps[2].Null)
}

func TestSimulation_MultiplicityDetection(t *testing.T) {
	start := []geom.Vector{geom.V(0, 0), geom.V(0, 0), geom.V(3, 0)}
	tests := []struct {
		name         string
		multiplicity bool
		target       geom.Vector
	}{
		{"distinguishes coincident robots", true, geom.V(1, 0)},
		{"collapses coincident robots", false, geom.V(1.5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MultiplicityDetection = tt.multiplicity
			s := testSimulation(t, testRobots(t, centerOfGravity, start...), fsync(), cfg)

			s.AdvanceTo(1)

			r, ok := s.Timeline().Last().Robot(2)
			require.True(t, ok)
			require.Equal(t, StateComputing, r.State)
			testutil.AssertVectorNear(t, "target", tt.target, r.Path.End(), 1e-12)
		})
	}
}

func TestSimulation_TraceDisabledByDefault(t *testing.T) {
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.Zero, geom.V(1, 1)), fsync(), DefaultConfig())
	s.AdvanceTo(posInf)
	assert.Nil(t, s.Trace())
}

func TestSimulation_TraceRecordsBatches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = trace.TraceLevelDecisions
	s := testSimulation(t, testRobots(t, centerOfGravity, geom.Zero, geom.V(2, 0)), fsync(), cfg)

	s.AdvanceTo(posInf)

	summary := trace.Summarize(s.Trace())
	assert.Equal(t, s.Timeline().Len()-1, summary.TotalBatches)
	assert.Equal(t, 4, summary.Computations, "two rounds of two robots")
	assert.Equal(t, 2, summary.NullComputations)
	assert.Equal(t, 2, summary.ActiveRobots)
	assert.InDelta(t, 1, summary.MeanPathLength, 1e-12)
}

func TestSimulation_SchedulerProtocolViolations_Panic(t *testing.T) {
	robots := testRobots(t, centerOfGravity, geom.Zero, geom.V(1, 0))
	tests := []struct {
		name  string
		batch []Event
	}{
		{"empty batch", []Event{}},
		{"not after now", []Event{{Type: EventStartCompute, Timestamp: 0, RobotID: 0}}},
		{"mixed timestamps", []Event{
			{Type: EventStartCompute, Timestamp: 1, RobotID: 0},
			{Type: EventStartCompute, Timestamp: 2, RobotID: 1},
		}},
		{"duplicate robot", []Event{
			{Type: EventStartCompute, Timestamp: 1, RobotID: 0},
			{Type: EventStartCompute, Timestamp: 1, RobotID: 0},
		}},
		{"unknown robot", []Event{{Type: EventStartCompute, Timestamp: 1, RobotID: 9}}},
		{"wrong transition", []Event{{Type: EventStartMoving, Timestamp: 1, RobotID: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() {
				_, _ = NewSimulation(robots, fixedScheduler{batch: tt.batch}, DefaultConfig())
			})
		})
	}
}

func TestSimulation_AlgorithmPathMustStartAtOrigin(t *testing.T) {
	stray := AlgorithmFunc(func([]geom.Vector) path.Path { return path.NewLinear(geom.V(1, 0), geom.V(2, 0)) })
	s := testSimulation(t, testRobots(t, stray, geom.Zero), fsync(), DefaultConfig())

	assert.Panics(t, func() { s.AdvanceOneStep() })
}

func TestSimulation_LocalPathMappedToGlobalFrame(t *testing.T) {
	// GIVEN a robot at (5,5) whose frame is rotated by 90 degrees, walking one unit along local x
	tr, err := transform.NewAffine(math.Pi/2, 1, false)
	require.NoError(t, err)
	r, err := NewRobot(0, geom.V(5, 5), 1, tr, moveBy(geom.V(1, 0)))
	require.NoError(t, err)
	s := testSimulation(t, []Robot{r}, fsync(), DefaultConfig())

	// WHEN it computes
	s.AdvanceTo(1)

	// THEN the stored path points along global y
	got, _ := s.Timeline().Last().Robot(0)
	testutil.AssertVectorNear(t, "path start", geom.V(5, 5), got.Path.Start(), 1e-12)
	testutil.AssertVectorNear(t, "path end", geom.V(5, 6), got.Path.End(), 1e-12)
}
