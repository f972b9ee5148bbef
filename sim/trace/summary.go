package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalBatches     int
	EventsByType     map[string]int // event type name → number of events
	Computations     int
	NullComputations int
	MeanPathLength   float64 // over non-null computations
	MaxPathLength    float64
	ActiveRobots     int // robots that computed at least once
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EventsByType: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalBatches = len(st.Batches)
	for _, b := range st.Batches {
		summary.EventsByType[b.Type] += len(b.RobotIDs)
	}

	robots := make(map[int]bool)
	totalLength := 0.0
	moving := 0
	for _, c := range st.Computations {
		summary.Computations++
		robots[c.RobotID] = true
		if c.Null {
			summary.NullComputations++
			continue
		}
		moving++
		totalLength += c.PathLength
		if c.PathLength > summary.MaxPathLength {
			summary.MaxPathLength = c.PathLength
		}
	}
	if moving > 0 {
		summary.MeanPathLength = totalLength / float64(moving)
	}
	summary.ActiveRobots = len(robots)

	return summary
}
