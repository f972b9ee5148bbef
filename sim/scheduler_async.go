package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ASyncScheduler lets every robot act independently.
//
// Each COMPUTING or MOVING robot carries a forced deadline by which its phase must
// end. When the nearest deadline is within Slack of now, or no robot may act
// earlier, the robots owning that deadline are served. Otherwise one eligible robot
// is drawn at random and its next transition is placed uniformly between now and
// the nearest deadline, so no deadline is ever overtaken.
type ASyncScheduler struct {
	cfg SchedulerConfig
	rng *rand.Rand

	// forcedStops remembers, per robot, the end-of-move deadline registered when the
	// robot was first seen MOVING without early stop. Keyed by robot ID; since
	// identifies the move it belongs to.
	forcedStops map[int]forcedStop
}

type forcedStop struct {
	since float64
	at    float64
}

func newASyncScheduler(cfg SchedulerConfig, rng *rand.Rand) *ASyncScheduler {
	return &ASyncScheduler{
		cfg:         cfg,
		rng:         rng,
		forcedStops: make(map[int]forcedStop),
	}
}

func (s *ASyncScheduler) NextEvents(robots []Robot, now float64, allowEarlyStop bool) ([]Event, bool) {
	if Quiescent(robots) {
		return nil, false
	}

	nearest := math.Inf(1)
	deadlines := make(map[int]float64, len(robots))
	var eligible []Robot
	for _, r := range robots {
		if d, ok := s.deadline(r, allowEarlyStop); ok {
			if !(d > now) {
				panic(fmt.Sprintf("ASYNC: robot %d (%s since %g) missed its deadline %g at t=%g", r.ID, r.State, r.Since, d, now))
			}
			deadlines[r.ID] = d
			nearest = math.Min(nearest, d)
		}
		if s.eligible(r, now, allowEarlyStop) {
			eligible = append(eligible, r)
		}
	}

	if len(eligible) == 0 && len(deadlines) == 0 {
		// Unreachable while robots are not quiescent; a SLEEPING robot is always eligible.
		panic(fmt.Sprintf("ASYNC: nothing to schedule at t=%g: %s", now, statesString(robots)))
	}
	if len(eligible) == 0 {
		logrus.Debugf("[t=%.6f] ASYNC has no eligible robot, serving deadline %g", now, nearest)
		return deadlineBatch(robots, deadlines, nearest), true
	}
	if len(deadlines) > 0 && nearest-now <= s.cfg.Slack {
		return deadlineBatch(robots, deadlines, nearest), true
	}

	horizon := nearest
	if len(deadlines) == 0 {
		horizon = now + s.cfg.MaxPhase
	}
	r := eligible[s.rng.Intn(len(eligible))]
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	t := now + u*(horizon-now)
	if !(t > now) {
		t = math.Nextafter(now, math.Inf(1))
	}
	if len(deadlines) > 0 && t >= nearest {
		return deadlineBatch(robots, deadlines, nearest), true
	}
	if r.State == StateMoving {
		delete(s.forcedStops, r.ID)
	}
	return []Event{{Type: r.State.NextEvent(), Timestamp: t, RobotID: r.ID}}, true
}

// deadline returns the forced end of r's current phase, if any.
func (s *ASyncScheduler) deadline(r Robot, allowEarlyStop bool) (float64, bool) {
	switch r.State {
	case StateComputing:
		return r.Since + s.cfg.MaxPhase, true
	case StateMoving:
		if allowEarlyStop {
			return r.Since + s.cfg.MaxPhase, true
		}
		if fs, ok := s.forcedStops[r.ID]; ok && fs.since == r.Since {
			return fs.at, true
		}
		at := r.Since + s.cfg.MinPhase
		if end, ok := r.ArrivalTime(); ok {
			at = math.Max(at, end)
		}
		s.forcedStops[r.ID] = forcedStop{since: r.Since, at: at}
		return at, true
	default:
		return 0, false
	}
}

// eligible reports whether r may be picked for an early transition: SLEEPING robots
// always, COMPUTING robots once MinPhase has elapsed, MOVING robots only when they
// can be interrupted and MinPhase has elapsed.
func (s *ASyncScheduler) eligible(r Robot, now float64, allowEarlyStop bool) bool {
	switch r.State {
	case StateSleeping:
		return true
	case StateComputing:
		return now-r.Since >= s.cfg.MinPhase
	case StateMoving:
		return allowEarlyStop && now-r.Since >= s.cfg.MinPhase
	default:
		return false
	}
}

// deadlineBatch returns the transitions of every robot whose deadline is at.
func deadlineBatch(robots []Robot, deadlines map[int]float64, at float64) []Event {
	var batch []Event
	for _, r := range robots {
		if d, ok := deadlines[r.ID]; ok && d == at {
			batch = append(batch, Event{Type: r.State.NextEvent(), Timestamp: at, RobotID: r.ID})
		}
	}
	return batch
}
