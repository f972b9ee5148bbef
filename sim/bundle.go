package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// RunBundle holds the complete configuration of one simulation run, loadable from
// a YAML file. Keys missing from the file keep their DefaultRunBundle values.
type RunBundle struct {
	Seed         int64           `yaml:"seed"`
	Speed        float64         `yaml:"speed"`         // speed of every robot
	Algorithm    string          `yaml:"algorithm"`     // strategy name, resolved by the caller
	RandomFrames bool            `yaml:"random_frames"` // give every robot a random rotated/scaled/mirrored frame
	Simulation   Config          `yaml:"simulation"`
	Scheduler    SchedulerConfig `yaml:"scheduler"`
}

// DefaultRunBundle returns seed 42, unit speed, center-of-gravity, FSYNC and DefaultConfig.
func DefaultRunBundle() RunBundle {
	return RunBundle{
		Seed:       42,
		Speed:      1,
		Algorithm:  "center-of-gravity",
		Simulation: DefaultConfig(),
		Scheduler:  DefaultSchedulerConfig(),
	}
}

// LoadRunBundle reads and parses a YAML run configuration file on top of
// DefaultRunBundle. Unknown keys are errors.
func LoadRunBundle(path string) (*RunBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	bundle := DefaultRunBundle()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &bundle, nil
}

// Validate checks every section of the bundle. Algorithm names are not checked here;
// the strategy catalogue lives outside the engine.
func (b *RunBundle) Validate() error {
	if !(b.Speed > 0) || math.IsInf(b.Speed, 1) {
		return fmt.Errorf("speed must be positive and finite, got %g", b.Speed)
	}
	if b.Algorithm == "" {
		return fmt.Errorf("algorithm must be set")
	}
	if err := b.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := b.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}
