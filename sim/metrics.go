// Tracks run-wide and per-robot statistics such as rounds, event counts,
// travelled distance and the final spread of the swarm.

package sim

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/swarm-sim/sim/geom"
)

// GatherTolerance is the SEC radius below which the swarm counts as gathered.
const GatherTolerance = 1e-9

// Metrics aggregates statistics about a materialized timeline
// for final reporting.
type Metrics struct {
	EndTime      float64           // timestamp of the last materialized entry
	Rounds       int               // batches containing at least one START_COMPUTE
	EventsByType map[EventType]int // applied events per type
	Distances    map[int]float64   // robot ID -> distance travelled in finished moves
	FinalSpread  float64           // SEC radius of the final positions
	Gathered     bool              // FinalSpread <= GatherTolerance
}

// ComputeMetrics walks the timeline once. Moves still in progress at the last
// entry are not counted.
func ComputeMetrics(tl *Timeline) *Metrics {
	m := &Metrics{
		EventsByType: make(map[EventType]int),
		Distances:    make(map[int]float64),
	}
	entries := tl.Entries()
	for _, r := range entries[0].robots {
		m.Distances[r.ID] = 0
	}
	for k := 1; k < len(entries); k++ {
		prev, cur := entries[k-1], entries[k]
		round := false
		for _, e := range cur.events {
			m.EventsByType[e.Type]++
			switch e.Type {
			case EventStartCompute:
				round = true
			case EventEndMoving:
				r, _ := prev.Robot(e.RobotID)
				m.Distances[e.RobotID] += travelled(r, cur.timestamp)
			}
		}
		if round {
			m.Rounds++
		}
	}

	last := tl.Last()
	m.EndTime = last.timestamp
	positions := make([]geom.Vector, len(last.robots))
	for i, r := range last.robots {
		positions[i] = r.PositionAt(last.timestamp)
	}
	m.FinalSpread = geom.SmallestEnclosingCircle(positions).Radius
	m.Gathered = m.FinalSpread <= GatherTolerance
	return m
}

// travelled returns how far a MOVING robot got along its path by time t.
func travelled(r Robot, t float64) float64 {
	if r.Path == nil {
		return 0
	}
	return math.Min(r.Path.Length(), math.Max(0, t-r.Since)*r.Speed)
}

// DistanceValues returns the per-robot distances ordered by robot ID.
func (m *Metrics) DistanceValues() []float64 {
	ids := make([]int, 0, len(m.Distances))
	for id := range m.Distances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = m.Distances[id]
	}
	return out
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("End Time             : %.6f\n", m.EndTime)
	fmt.Printf("Rounds               : %d\n", m.Rounds)
	for _, et := range []EventType{EventStartCompute, EventStartMoving, EventEndMoving} {
		fmt.Printf("%-21s: %d\n", et, m.EventsByType[et])
	}
	if d := m.DistanceValues(); len(d) > 0 {
		fmt.Printf("Mean Distance        : %.6f\n", stat.Mean(d, nil))
		fmt.Printf("Median Distance      : %.6f\n", CalculatePercentile(d, 50))
		fmt.Printf("Max Distance         : %.6f\n", floats.Max(d))
		fmt.Printf("Total Distance       : %.6f\n", floats.Sum(d))
	}
	fmt.Printf("Final Spread         : %.9f\n", m.FinalSpread)
	fmt.Printf("Gathered             : %t\n", m.Gathered)
}
