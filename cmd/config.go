package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sim "github.com/inference-sim/swarm-sim/sim"
	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/scenario"
)

var (
	generateCount  int     // Number of robots to generate
	generateRadius float64 // Robots are placed uniformly in a disc of this radius
	generateSeed   int64   // Seed for placement
)

// configCmd prints the run configuration that `run` would use with the same flags.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective run configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		bundle, err := loadBundle(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writeBundle(os.Stdout, bundle); err != nil {
			logrus.Fatalf("YAML marshal failed: %v", err)
		}
	},
}

// generateCmd writes a random initial configuration in the robot file format.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random robot file on stdout",
	Run: func(cmd *cobra.Command, args []string) {
		if generateCount < 1 {
			logrus.Fatalf("--count must be positive, got %d", generateCount)
		}
		if !(generateRadius > 0) {
			logrus.Fatalf("--radius must be positive, got %g", generateRadius)
		}
		positions := randomPositions(generateCount, generateRadius, generateSeed)
		if err := scenario.WriteRobots(os.Stdout, positions); err != nil {
			logrus.Fatalf("writing robot file: %v", err)
		}
	},
}

// writeBundle marshals a RunBundle to YAML. The output loads back with --config.
func writeBundle(w io.Writer, bundle *sim.RunBundle) error {
	data, err := yaml.Marshal(bundle)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(data))
	return err
}

// randomPositions draws n points uniformly from the disc of the given radius
// around the origin, by rejection from the enclosing square.
func randomPositions(n int, radius float64, seed int64) []geom.Vector {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemScenario)
	positions := make([]geom.Vector, 0, n)
	for len(positions) < n {
		p := geom.V(2*rng.Float64()-1, 2*rng.Float64()-1)
		if p.Length() > 1 {
			continue
		}
		positions = append(positions, p.Scale(radius))
	}
	return positions
}

func init() {
	configCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run configuration to start from")

	generateCmd.Flags().IntVar(&generateCount, "count", 10, "Number of robots")
	generateCmd.Flags().Float64Var(&generateRadius, "radius", 10, "Radius of the disc robots are placed in")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 42, "Seed for robot placement")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
}
