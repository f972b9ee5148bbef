package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/swarm-sim/sim/trace"
)

// Config groups the engine-level switches of a simulation.
type Config struct {
	MultiplicityDetection bool             `yaml:"multiplicity"`  // coincident robots are distinguishable
	Visibility            float64          `yaml:"visibility"`    // view radius; -1 or +Inf = unlimited
	Interruptible         bool             `yaml:"interruptible"` // MOVING robots may stop before the end of their path
	Trace                 trace.TraceLevel `yaml:"trace"`         // decision trace verbosity (default none)
}

// DefaultConfig returns multiplicity detection on, unlimited visibility, no interruption.
func DefaultConfig() Config {
	return Config{
		MultiplicityDetection: true,
		Visibility:            math.Inf(1),
		Trace:                 trace.TraceLevelNone,
	}
}

// UnlimitedVisibility reports whether Visibility is one of the "see everything" sentinels.
func (c Config) UnlimitedVisibility() bool {
	return c.Visibility == -1 || math.IsInf(c.Visibility, 1)
}

// Validate checks the visibility sentinel and the trace level.
func (c Config) Validate() error {
	if math.IsNaN(c.Visibility) || (c.Visibility < 0 && c.Visibility != -1) {
		return fmt.Errorf("visibility must be non-negative, -1 or +Inf, got %g", c.Visibility)
	}
	if !trace.IsValidTraceLevel(string(c.Trace)) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	return nil
}

// SchedulerConfig groups timing parameters of the built-in schedulers.
type SchedulerConfig struct {
	Name          string  `yaml:"name"`           // "fsync" (default), "ssync", "async", "file"
	PhaseDuration float64 `yaml:"phase_duration"` // FSYNC/SSYNC length of COMPUTING and of a null move
	MinPhase      float64 `yaml:"min_phase"`      // ASYNC: minimum time spent in COMPUTING/MOVING
	MaxPhase      float64 `yaml:"max_phase"`      // ASYNC: forced deadline after entering COMPUTING/MOVING
	Slack         float64 `yaml:"slack"`          // ASYNC: serve the nearest deadline when it is this close
}

// DefaultSchedulerConfig returns the FSYNC scheduler with unit phases.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Name:          SchedulerFSync,
		PhaseDuration: 1,
		MinPhase:      0.1,
		MaxPhase:      2,
		Slack:         0.1,
	}
}

// Validate checks the scheduler name and that every duration is positive and consistent.
func (c SchedulerConfig) Validate() error {
	if !ValidSchedulers[c.Name] && c.Name != SchedulerFile {
		return fmt.Errorf("unknown scheduler %q", c.Name)
	}
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"phase_duration", c.PhaseDuration},
		{"min_phase", c.MinPhase},
		{"max_phase", c.MaxPhase},
		{"slack", c.Slack},
	} {
		if !(d.v > 0) || math.IsInf(d.v, 1) {
			return fmt.Errorf("%s must be positive and finite, got %g", d.name, d.v)
		}
	}
	if c.MinPhase > c.MaxPhase {
		return fmt.Errorf("min_phase %g exceeds max_phase %g", c.MinPhase, c.MaxPhase)
	}
	if c.Slack > c.MaxPhase {
		return fmt.Errorf("slack %g exceeds max_phase %g", c.Slack, c.MaxPhase)
	}
	return nil
}
