package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FSyncScheduler moves the whole swarm in lock-step rounds: every batch holds one
// event per robot, all of the same type. Robots in different states are a fatal
// protocol violation.
type FSyncScheduler struct {
	phase float64
}

func (s *FSyncScheduler) NextEvents(robots []Robot, now float64, allowEarlyStop bool) ([]Event, bool) {
	if Quiescent(robots) {
		return nil, false
	}
	state := robots[0].State
	for _, r := range robots[1:] {
		if r.State != state {
			panic(fmt.Sprintf("FSYNC: robots are not in a common state at t=%g: %s", now, statesString(robots)))
		}
	}
	switch state {
	case StateSleeping, StateComputing:
		return eventsFor(robots, state.NextEvent(), now+s.phase), true
	default:
		return eventsFor(robots, EventEndMoving, stopTime(robots, now, s.phase, allowEarlyStop)), true
	}
}

// SSyncScheduler runs synchronous rounds in which only an active subset of the
// robots takes part; the others keep sleeping. The active set of a round is drawn
// from an RNG derived from the round start time, so replays are identical.
type SSyncScheduler struct {
	phase float64
	rng   *PartitionedRNG

	// last answered query
	cachedNow   float64
	cachedKey   string
	cachedBatch []Event
}

func (s *SSyncScheduler) NextEvents(robots []Robot, now float64, allowEarlyStop bool) ([]Event, bool) {
	if Quiescent(robots) {
		return nil, false
	}
	key := stateKey(robots)
	if s.cachedBatch != nil && s.cachedNow == now && s.cachedKey == key {
		return append([]Event(nil), s.cachedBatch...), true
	}

	var computing, moving []Robot
	for _, r := range robots {
		switch r.State {
		case StateComputing:
			computing = append(computing, r)
		case StateMoving:
			moving = append(moving, r)
		}
	}
	if len(computing) > 0 && len(moving) > 0 {
		panic(fmt.Sprintf("SSYNC: COMPUTING and MOVING robots coexist at t=%g: %s", now, statesString(robots)))
	}

	var batch []Event
	switch {
	case len(computing) > 0:
		batch = eventsFor(computing, EventStartMoving, now+s.phase)
	case len(moving) > 0:
		batch = eventsFor(moving, EventEndMoving, stopTime(moving, now, s.phase, allowEarlyStop))
	default:
		active := s.activeSet(robots, now)
		logrus.Debugf("[t=%.6f] SSYNC active set %v", now, robotIDs(active))
		batch = eventsFor(active, EventStartCompute, now+s.phase)
	}

	s.cachedNow, s.cachedKey, s.cachedBatch = now, key, batch
	return append([]Event(nil), batch...), true
}

// activeSet includes every robot with probability 1/2; an empty draw falls back to
// a single robot. Robots are visited in ID order so the draw is independent of
// slice order.
func (s *SSyncScheduler) activeSet(robots []Robot, roundStart float64) []Robot {
	sorted := append([]Robot(nil), robots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	rng := s.rng.ForRound(SubsystemSSync, roundStart)
	var active []Robot
	for _, r := range sorted {
		if rng.Intn(2) == 1 {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		active = append(active, sorted[rng.Intn(len(sorted))])
	}
	return active
}

func stateKey(robots []Robot) string {
	var b strings.Builder
	for _, r := range robots {
		fmt.Fprintf(&b, "%d:%d:%x;", r.ID, int(r.State), r.Since)
	}
	return b.String()
}

func robotIDs(robots []Robot) []int {
	ids := make([]int, len(robots))
	for i, r := range robots {
		ids[i] = r.ID
	}
	return ids
}
