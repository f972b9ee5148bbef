package sim

import (
	"fmt"
	"math"
	"sort"
)

// Scheduler decides when robots change state.
//
// NextEvents receives the robots as recorded in the latest timeline entry (at time
// now) and returns the next batch of simultaneous events, all sharing one timestamp
// strictly greater than now, at most one per robot, each being the robot's current
// valid next transition. The boolean is false when no further events will ever occur.
//
// allowEarlyStop reports whether MOVING robots may be stopped before the end of
// their path; when false, END_MOVING is never scheduled before natural arrival.
type Scheduler interface {
	NextEvents(robots []Robot, now float64, allowEarlyStop bool) ([]Event, bool)
}

// Scheduler names accepted by NewScheduler.
const (
	SchedulerFSync = "fsync"
	SchedulerSSync = "ssync"
	SchedulerASync = "async"
	// SchedulerFile is driven by a schedule file; see NewFileScheduler.
	SchedulerFile = "file"
)

// ValidSchedulers is the set of scheduler names NewScheduler can build.
var ValidSchedulers = map[string]bool{SchedulerFSync: true, SchedulerSSync: true, SchedulerASync: true}

// IsValidScheduler returns true if name is recognized by NewScheduler.
func IsValidScheduler(name string) bool {
	return ValidSchedulers[name]
}

// ValidSchedulerNames returns the names accepted by NewScheduler, plus "file", sorted.
func ValidSchedulerNames() []string {
	names := []string{SchedulerFile}
	for name := range ValidSchedulers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewScheduler creates a Scheduler by name.
// Valid names: "fsync", "ssync", "async". The file scheduler needs its timestamps
// and is built with NewFileScheduler instead.
// Panics on unrecognized names.
func NewScheduler(name string, cfg SchedulerConfig, rng *PartitionedRNG) Scheduler {
	if !IsValidScheduler(name) {
		panic(fmt.Sprintf("unknown scheduler %q", name))
	}
	switch name {
	case SchedulerFSync:
		return &FSyncScheduler{phase: cfg.PhaseDuration}
	case SchedulerSSync:
		return &SSyncScheduler{phase: cfg.PhaseDuration, rng: rng}
	case SchedulerASync:
		return newASyncScheduler(cfg, rng.ForSubsystem(SubsystemASync))
	default:
		panic(fmt.Sprintf("unhandled scheduler %q", name))
	}
}

// Quiescent reports whether robots can never move again: every robot is SLEEPING,
// its latest computation yielded a null path, and every such computation observed
// the configuration after the last real move ended. Oblivious robots looking at an
// unchanged configuration decide the same again, so no further event can matter.
func Quiescent(robots []Robot) bool {
	if len(robots) == 0 {
		return true
	}
	minComputed := math.Inf(1)
	maxMoved := math.Inf(-1)
	for _, r := range robots {
		if r.State != StateSleeping || !r.Idle {
			return false
		}
		minComputed = math.Min(minComputed, r.ComputedAt)
		maxMoved = math.Max(maxMoved, r.MovedUntil)
	}
	return minComputed >= maxMoved
}

// eventsFor returns one event of type et at time t for every robot.
func eventsFor(robots []Robot, et EventType, t float64) []Event {
	events := make([]Event, len(robots))
	for i, r := range robots {
		events[i] = Event{Type: et, Timestamp: t, RobotID: r.ID}
	}
	return events
}

// stopTime returns when the MOVING robots of a synchronous round stop.
// Without early stop that is the latest natural arrival; with early stop the round
// is cut at now+phase. A stop time not later than now (only null moves) becomes now+phase.
func stopTime(moving []Robot, now, phase float64, allowEarlyStop bool) float64 {
	latest := math.Inf(-1)
	for _, r := range moving {
		if end, ok := r.ArrivalTime(); ok {
			latest = math.Max(latest, end)
		}
	}
	if allowEarlyStop {
		latest = math.Min(latest, now+phase)
	}
	if !(latest > now) {
		return now + phase
	}
	return latest
}

// statesString lists robot states for invariant-violation messages.
func statesString(robots []Robot) string {
	s := ""
	for i, r := range robots {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d:%s", r.ID, r.State)
	}
	return s
}
