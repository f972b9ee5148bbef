package sim

import (
	"fmt"
	"sort"
	"strings"
)

// EventType is a robot state transition.
type EventType int

const (
	EventStartCompute EventType = iota // SLEEPING -> COMPUTING
	EventStartMoving                   // COMPUTING -> MOVING
	EventEndMoving                     // MOVING -> SLEEPING
)

// Next returns the cyclic successor: START_COMPUTE, START_MOVING, END_MOVING, START_COMPUTE, ...
func (e EventType) Next() EventType {
	return (e + 1) % 3
}

// From returns the state a robot must be in for e to apply.
func (e EventType) From() RobotState {
	switch e {
	case EventStartCompute:
		return StateSleeping
	case EventStartMoving:
		return StateComputing
	case EventEndMoving:
		return StateMoving
	default:
		panic(fmt.Sprintf("From: unknown event type %d", int(e)))
	}
}

// To returns the state a robot is in after e.
func (e EventType) To() RobotState {
	return e.Next().From()
}

func (e EventType) String() string {
	switch e {
	case EventStartCompute:
		return "START_COMPUTE"
	case EventStartMoving:
		return "START_MOVING"
	case EventEndMoving:
		return "END_MOVING"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// Event is an intended or realized state transition of exactly one robot.
type Event struct {
	Type      EventType
	Timestamp float64
	RobotID   int
}

func (e Event) String() string {
	return fmt.Sprintf("%s(robot %d @ %g)", e.Type, e.RobotID, e.Timestamp)
}

// CalculatedEvent is a batch of simultaneous events together with the authoritative
// snapshot of every robot immediately after they were applied. It is immutable:
// accessors return copies.
type CalculatedEvent struct {
	timestamp float64
	events    []Event
	robots    []Robot // sorted by ID
	index     map[int]int
}

func newCalculatedEvent(timestamp float64, events []Event, robots []Robot) CalculatedEvent {
	for _, e := range events {
		if e.Timestamp != timestamp {
			panic(fmt.Sprintf("CalculatedEvent at %g: event %v has a different timestamp", timestamp, e))
		}
	}
	sorted := append([]Robot(nil), robots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	index := make(map[int]int, len(sorted))
	for i, r := range sorted {
		if _, dup := index[r.ID]; dup {
			panic(fmt.Sprintf("CalculatedEvent at %g: duplicate robot id %d", timestamp, r.ID))
		}
		index[r.ID] = i
	}
	return CalculatedEvent{
		timestamp: timestamp,
		events:    append([]Event(nil), events...),
		robots:    sorted,
		index:     index,
	}
}

// Timestamp returns the shared timestamp of the batch.
func (c CalculatedEvent) Timestamp() float64 { return c.timestamp }

// Events returns a copy of the applied events. Empty only for the initial entry.
func (c CalculatedEvent) Events() []Event { return append([]Event(nil), c.events...) }

// Robots returns a copy of the snapshot, ordered by robot ID.
func (c CalculatedEvent) Robots() []Robot { return append([]Robot(nil), c.robots...) }

// Robot returns the snapshot of one robot.
func (c CalculatedEvent) Robot(id int) (Robot, bool) {
	i, ok := c.index[id]
	if !ok {
		return Robot{}, false
	}
	return c.robots[i], true
}

// RobotsAt returns the snapshot with every robot extrapolated to time t >= Timestamp().
func (c CalculatedEvent) RobotsAt(t float64) []Robot {
	out := make([]Robot, len(c.robots))
	for i, r := range c.robots {
		out[i] = r.ExtrapolatedTo(t)
	}
	return out
}

func (c CalculatedEvent) String() string {
	parts := make([]string, len(c.events))
	for i, e := range c.events {
		parts[i] = fmt.Sprintf("%s:%d", e.Type, e.RobotID)
	}
	return fmt.Sprintf("CalculatedEvent(t=%g, [%s])", c.timestamp, strings.Join(parts, " "))
}
