// sim/simulator.go
package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/path"
	"github.com/inference-sim/swarm-sim/sim/trace"
)

// originTolerance bounds how far from the origin a computed local path may start.
const originTolerance = 1e-9

// Simulation owns the timeline of one run and grows it lazily: history is only
// computed when a caller asks for a time that is not yet covered. Materialized
// entries are never recomputed or changed.
//
// Not safe for concurrent use.
type Simulation struct {
	config    Config
	scheduler Scheduler
	timeline  *Timeline
	// upcoming is the next batch, not applied yet; nil once the scheduler is exhausted.
	upcoming []Event
	trace    *trace.SimulationTrace
}

// NewSimulation creates a simulation starting at time 0 from robots, which must
// all be SLEEPING and carry distinct IDs.
func NewSimulation(robots []Robot, scheduler Scheduler, config Config) (*Simulation, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if scheduler == nil {
		return nil, fmt.Errorf("no scheduler")
	}
	if len(robots) == 0 {
		return nil, fmt.Errorf("no robots")
	}
	seen := make(map[int]bool, len(robots))
	for _, r := range robots {
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate robot id %d", r.ID)
		}
		seen[r.ID] = true
		if r.State != StateSleeping {
			return nil, fmt.Errorf("robot %d starts %s, must start SLEEPING", r.ID, r.State)
		}
		if r.Algorithm == nil || r.Transform == nil {
			return nil, fmt.Errorf("robot %d: not built with NewRobot", r.ID)
		}
	}

	s := &Simulation{
		config:    config,
		scheduler: scheduler,
		timeline:  newTimeline(robots),
	}
	if config.Trace.Enabled() {
		s.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: config.Trace})
	}
	s.scheduleNext()
	logrus.Infof("simulation created: %d robots, scheduler %T", len(robots), scheduler)
	return s, nil
}

// Config returns the engine configuration.
func (s *Simulation) Config() Config { return s.config }

// Timeline returns the materialized history. Callers must not hold on to it across
// advances expecting it to stay short; it only grows.
func (s *Simulation) Timeline() *Timeline { return s.timeline }

// Trace returns the decision trace, or nil when tracing is disabled.
func (s *Simulation) Trace() *trace.SimulationTrace { return s.trace }

// Upcoming returns a copy of the next batch, or nil when no events remain.
func (s *Simulation) Upcoming() []Event {
	if s.upcoming == nil {
		return nil
	}
	return append([]Event(nil), s.upcoming...)
}

// ComputedUntil returns the timestamp of the latest materialized entry, or +Inf
// once the scheduler reported that nothing else will happen.
func (s *Simulation) ComputedUntil() float64 {
	if s.upcoming == nil {
		return math.Inf(1)
	}
	return s.timeline.Last().Timestamp()
}

// AdvanceOneStep applies the upcoming batch and returns the resulting entry.
// Returns false, without doing anything, when no events remain.
func (s *Simulation) AdvanceOneStep() (CalculatedEvent, bool) {
	if s.upcoming == nil {
		return CalculatedEvent{}, false
	}
	batch := s.upcoming
	t := batch[0].Timestamp

	current := s.timeline.Last().RobotsAt(t)
	byID := make(map[int]int, len(current))
	positions := make([]geom.Vector, len(current))
	for i, r := range current {
		byID[r.ID] = i
		positions[i] = r.Pos
	}

	next := append([]Robot(nil), current...)
	for _, e := range batch {
		i, ok := byID[e.RobotID]
		if !ok {
			panic(fmt.Sprintf("AdvanceOneStep: event %v targets unknown robot", e))
		}
		r := current[i]
		if r.State != e.Type.From() {
			panic(fmt.Sprintf("AdvanceOneStep: event %v applied to robot %d in state %s, expected %s",
				e, r.ID, r.State, e.Type.From()))
		}
		switch e.Type {
		case EventStartCompute:
			next[i] = s.compute(r, positions, t)
		case EventStartMoving:
			next[i] = r.startMoving(t)
		case EventEndMoving:
			next[i] = r.endMoving(t)
		}
	}

	ce := newCalculatedEvent(t, batch, next)
	s.timeline.append(ce)
	s.recordBatch(batch, t)
	logrus.Debugf("[t=%.6f] applied %d events (%s)", t, len(batch), batchSummary(batch))

	s.scheduleNext()
	return ce, true
}

// AdvanceTo materializes every pending batch with timestamp <= t and returns the
// new entries in order (possibly none). With t = +Inf it only returns once the
// scheduler is exhausted.
func (s *Simulation) AdvanceTo(t float64) []CalculatedEvent {
	var out []CalculatedEvent
	for s.upcoming != nil && s.upcoming[0].Timestamp <= t {
		ce, _ := s.AdvanceOneStep()
		out = append(out, ce)
	}
	return out
}

// LastKnownTerminationLowerBound returns the next pending timestamp while events
// remain; afterwards, the time by which every robot has come to rest.
func (s *Simulation) LastKnownTerminationLowerBound() float64 {
	if s.upcoming != nil {
		return s.upcoming[0].Timestamp
	}
	last := s.timeline.Last()
	bound := last.Timestamp()
	for _, r := range last.robots {
		if end, ok := r.ArrivalTime(); ok {
			bound = math.Max(bound, end)
		}
	}
	return bound
}

// SnapshotAt advances the timeline to cover t and returns every robot as it is at
// t, MOVING robots placed along their path. Times before 0 yield the initial
// configuration.
func (s *Simulation) SnapshotAt(t float64) []Robot {
	if t < 0 {
		return s.timeline.First().Robots()
	}
	s.AdvanceTo(t)
	return s.timeline.At(t).RobotsAt(t)
}

// compute is the SLEEPING -> COMPUTING transition: r looks at the robots it can see,
// runs its algorithm in its own frame, and keeps the resulting path in global
// coordinates.
func (s *Simulation) compute(r Robot, positions []geom.Vector, t float64) Robot {
	visible := s.visibleFrom(r.Pos, positions)
	local := make([]geom.Vector, len(visible))
	for i, p := range visible {
		local[i] = r.Transform.GlobalToLocal(p, r.Pos)
	}

	planned := r.Algorithm.Compute(local)
	if planned == nil {
		panic(fmt.Sprintf("robot %d: algorithm returned no path at t=%g", r.ID, t))
	}
	if !planned.Start().ApproxEqualTol(geom.Zero, originTolerance) {
		panic(fmt.Sprintf("robot %d: algorithm path starts at %v, not at the origin (t=%g)", r.ID, planned.Start(), t))
	}
	global := path.Map(planned, func(p geom.Vector) geom.Vector { return r.Transform.LocalToGlobal(p, r.Pos) })

	next := r.withComputedPath(t, global)
	if s.trace != nil {
		end := global.End()
		s.trace.RecordComputation(trace.ComputeRecord{
			RobotID:    r.ID,
			Clock:      t,
			Visible:    len(visible),
			TargetX:    end.X,
			TargetY:    end.Y,
			PathLength: global.Length(),
			Null:       next.Idle,
		})
	}
	return next
}

// visibleFrom filters positions to those within the visibility radius of from,
// collapsing coincident robots when multiplicity detection is off.
func (s *Simulation) visibleFrom(from geom.Vector, positions []geom.Vector) []geom.Vector {
	visible := positions
	if !s.config.UnlimitedVisibility() {
		visible = make([]geom.Vector, 0, len(positions))
		for _, p := range positions {
			if p.Distance(from) <= s.config.Visibility {
				visible = append(visible, p)
			}
		}
	}
	if !s.config.MultiplicityDetection {
		visible = geom.Dedup(visible)
	}
	return visible
}

// scheduleNext asks the scheduler for the batch following the latest entry and
// checks it before accepting it. A malformed batch is a scheduler bug.
func (s *Simulation) scheduleNext() {
	last := s.timeline.Last()
	now := last.Timestamp()
	events, ok := s.scheduler.NextEvents(last.Robots(), now, s.config.Interruptible)
	if !ok {
		s.upcoming = nil
		logrus.Infof("[t=%.6f] no further events", now)
		return
	}
	if len(events) == 0 {
		panic(fmt.Sprintf("scheduler returned an empty batch at t=%g", now))
	}
	t := events[0].Timestamp
	if !(t > now) {
		panic(fmt.Sprintf("scheduler returned batch at %g, not after current time %g", t, now))
	}
	seen := make(map[int]bool, len(events))
	for _, e := range events {
		if e.Timestamp != t {
			panic(fmt.Sprintf("scheduler batch mixes timestamps %g and %g", t, e.Timestamp))
		}
		if seen[e.RobotID] {
			panic(fmt.Sprintf("scheduler batch at %g has two events for robot %d", t, e.RobotID))
		}
		seen[e.RobotID] = true
		r, known := last.Robot(e.RobotID)
		if !known {
			panic(fmt.Sprintf("scheduler proposed %v for unknown robot", e))
		}
		if want := r.State.NextEvent(); e.Type != want {
			panic(fmt.Sprintf("scheduler proposed %v for robot %d in state %s, expected %s", e, r.ID, r.State, want))
		}
	}
	s.upcoming = events
}

// recordBatch adds one trace record per event type present in the batch.
func (s *Simulation) recordBatch(batch []Event, t float64) {
	if s.trace == nil {
		return
	}
	ids := make(map[EventType][]int)
	var order []EventType
	for _, e := range batch {
		if _, ok := ids[e.Type]; !ok {
			order = append(order, e.Type)
		}
		ids[e.Type] = append(ids[e.Type], e.RobotID)
	}
	for _, et := range order {
		s.trace.RecordBatch(trace.BatchRecord{Clock: t, Type: et.String(), RobotIDs: ids[et]})
	}
}

func batchSummary(batch []Event) string {
	counts := make(map[EventType]int)
	for _, e := range batch {
		counts[e.Type]++
	}
	var parts []string
	for _, et := range []EventType{EventStartCompute, EventStartMoving, EventEndMoving} {
		if n := counts[et]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", et, n))
		}
	}
	return strings.Join(parts, " ")
}
