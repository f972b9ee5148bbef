package sim

import (
	"fmt"
	"sort"
)

// Timeline is the append-only history of a simulation: CalculatedEvents ordered by
// strictly increasing timestamp, starting with a synthetic entry at time 0 that holds
// the initial configuration and no events.
type Timeline struct {
	entries []CalculatedEvent
}

func newTimeline(initial []Robot) *Timeline {
	return &Timeline{entries: []CalculatedEvent{newCalculatedEvent(0, nil, initial)}}
}

// append adds ce. Timestamps must strictly increase; anything else means the
// scheduler or the engine broke the event-ordering protocol.
func (tl *Timeline) append(ce CalculatedEvent) {
	last := tl.entries[len(tl.entries)-1].timestamp
	if !(ce.timestamp > last) {
		panic(fmt.Sprintf("Timeline: entry at %g does not follow last entry at %g", ce.timestamp, last))
	}
	tl.entries = append(tl.entries, ce)
}

// Len returns the number of materialized entries, including the initial one.
func (tl *Timeline) Len() int { return len(tl.entries) }

// First returns the initial entry.
func (tl *Timeline) First() CalculatedEvent { return tl.entries[0] }

// Last returns the most recent entry.
func (tl *Timeline) Last() CalculatedEvent { return tl.entries[len(tl.entries)-1] }

// At returns the latest entry with timestamp <= t, or the initial entry if t < 0.
func (tl *Timeline) At(t float64) CalculatedEvent {
	i := sort.Search(len(tl.entries), func(i int) bool { return tl.entries[i].timestamp > t })
	if i == 0 {
		return tl.entries[0]
	}
	return tl.entries[i-1]
}

// Entries returns a copy of every entry.
func (tl *Timeline) Entries() []CalculatedEvent {
	return append([]CalculatedEvent(nil), tl.entries...)
}

// Between returns the entries with from < timestamp <= to.
func (tl *Timeline) Between(from, to float64) []CalculatedEvent {
	lo := sort.Search(len(tl.entries), func(i int) bool { return tl.entries[i].timestamp > from })
	hi := sort.Search(len(tl.entries), func(i int) bool { return tl.entries[i].timestamp > to })
	if lo >= hi {
		return nil
	}
	return append([]CalculatedEvent(nil), tl.entries[lo:hi]...)
}
