package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// FileScheduler replays a fixed schedule: robot i performs its k-th transition
// (START_COMPUTE, START_MOVING, END_MOVING, repeating) at times[i][k].
// It keeps no cursor of its own; the number of transitions a robot has made by now
// is the number of its timestamps not later than now.
type FileScheduler struct {
	times [][]float64
}

// NewFileScheduler validates times against robotCount: one list per robot,
// positive and strictly increasing timestamps.
func NewFileScheduler(times [][]float64, robotCount int) (*FileScheduler, error) {
	if len(times) != robotCount {
		return nil, fmt.Errorf("schedule has %d lines for %d robots", len(times), robotCount)
	}
	copied := make([][]float64, len(times))
	for i, line := range times {
		for k, t := range line {
			if !(t > 0) {
				return nil, fmt.Errorf("robot %d: timestamp %d is %g, must be positive", i, k, t)
			}
			if k > 0 && !(t > line[k-1]) {
				return nil, fmt.Errorf("robot %d: timestamp %d (%g) does not follow %g", i, k, t, line[k-1])
			}
		}
		copied[i] = append([]float64(nil), line...)
	}
	return &FileScheduler{times: copied}, nil
}

// NextEvents ignores allowEarlyStop: the schedule is authoritative.
// Robot IDs index the schedule lines.
func (s *FileScheduler) NextEvents(robots []Robot, now float64, _ bool) ([]Event, bool) {
	next := make(map[int]int, len(robots))
	earliest := 0.0
	found := false
	for _, r := range robots {
		if r.ID < 0 || r.ID >= len(s.times) {
			panic(fmt.Sprintf("FileScheduler: robot %d has no schedule line", r.ID))
		}
		line := s.times[r.ID]
		k := sort.Search(len(line), func(k int) bool { return line[k] > now })
		if k == len(line) {
			continue
		}
		next[r.ID] = k
		if !found || line[k] < earliest {
			earliest, found = line[k], true
		}
	}
	if !found {
		for _, r := range robots {
			if r.State == StateMoving {
				logrus.Warnf("schedule exhausted at t=%g while robot %d is still MOVING", now, r.ID)
			}
		}
		return nil, false
	}

	var batch []Event
	for _, r := range robots {
		k, ok := next[r.ID]
		if !ok || s.times[r.ID][k] != earliest {
			continue
		}
		batch = append(batch, Event{Type: EventType(k % 3), Timestamp: earliest, RobotID: r.ID})
	}
	return batch, true
}
