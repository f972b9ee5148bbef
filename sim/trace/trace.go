package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every applied batch and every algorithm invocation.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelDecisions
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel `json:"level"`
}

// SimulationTrace collects decision records during a simulation.
type SimulationTrace struct {
	Config       TraceConfig     `json:"config"`
	Batches      []BatchRecord   `json:"batches"`
	Computations []ComputeRecord `json:"computations"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Batches:      make([]BatchRecord, 0),
		Computations: make([]ComputeRecord, 0),
	}
}

// RecordBatch appends a batch record.
func (st *SimulationTrace) RecordBatch(record BatchRecord) {
	st.Batches = append(st.Batches, record)
}

// RecordComputation appends an algorithm invocation record.
func (st *SimulationTrace) RecordComputation(record ComputeRecord) {
	st.Computations = append(st.Computations, record)
}
