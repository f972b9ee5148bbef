package cmd

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	sim "github.com/inference-sim/swarm-sim/sim"
	"github.com/inference-sim/swarm-sim/sim/algorithm"
	"github.com/inference-sim/swarm-sim/sim/geom"
	"github.com/inference-sim/swarm-sim/sim/scenario"
	"github.com/inference-sim/swarm-sim/sim/trace"
	"github.com/inference-sim/swarm-sim/sim/transform"
)

var (
	// CLI flags for inputs
	robotsPath   string // Robot file with the initial configuration
	schedulePath string // Schedule file, required by the file scheduler
	configPath   string // Optional YAML run bundle
	metricsOut   string // Optional per-robot distance output file
	traceOut     string // Optional JSON decision trace output file
	logFile      string // Optional rotating log file instead of stderr

	// CLI flags overriding the run bundle (applied only when set explicitly)
	seed          int64   // Seed for scheduler timing and random frames
	speed         float64 // Speed of every robot
	algorithmName string  // Strategy run by every robot
	schedulerName string  // Scheduler variant
	phaseDuration float64 // FSYNC/SSYNC phase length
	minPhase      float64 // ASYNC minimum phase length
	maxPhase      float64 // ASYNC forced deadline
	slack         float64 // ASYNC deadline slack
	multiplicity  bool    // Coincident robots are distinguishable
	visibility    float64 // View radius (-1 or inf = unlimited)
	interruptible bool    // MOVING robots may stop early
	randomFrames  bool    // Random rotated/scaled/mirrored frame per robot
	traceLevel    string  // Decision trace verbosity

	// CLI flags for the run itself
	horizon  float64 // Simulated time to run to (inf = until no events remain)
	logLevel string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "swarm-sim",
	Short: "Discrete-event simulator for oblivious mobile robot swarms",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a swarm simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if logFile != "" {
			logrus.SetOutput(&lumberjack.Logger{Filename: logFile, MaxSize: 100, MaxBackups: 3})
		}

		if robotsPath == "" {
			logrus.Fatalf("Robot file not provided. Exiting simulation.")
		}
		if math.IsNaN(horizon) || horizon < 0 {
			logrus.Fatalf("Horizon must be non-negative, got %g", horizon)
		}
		bundle, err := loadBundle(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if traceOut != "" && !bundle.Simulation.Trace.Enabled() {
			logrus.Warnf("--trace-out given, enabling %q tracing", trace.TraceLevelDecisions)
			bundle.Simulation.Trace = trace.TraceLevelDecisions
		}
		positions, err := scenario.LoadRobots(robotsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Starting simulation with %d robots, scheduler=%s, algorithm=%s, horizon=%g",
			len(positions), bundle.Scheduler.Name, bundle.Algorithm, horizon)
		startTime := time.Now()

		s, err := newSimulation(bundle, positions, schedulePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		final, at := runToHorizon(s, horizon)
		metrics := sim.ComputeMetrics(s.Timeline())

		printSnapshot(final, at)
		metrics.Print()
		if s.Trace() != nil {
			printTraceSummary(trace.Summarize(s.Trace()))
		}
		if traceOut != "" {
			if err := s.Trace().SaveJSON(traceOut); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		if metricsOut != "" {
			if err := metrics.SaveDistances(metricsOut); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// loadBundle reads --config (or the defaults), applies explicitly set flags and
// validates the result.
func loadBundle(cmd *cobra.Command) (*sim.RunBundle, error) {
	bundle := sim.DefaultRunBundle()
	if configPath != "" {
		loaded, err := sim.LoadRunBundle(configPath)
		if err != nil {
			return nil, err
		}
		bundle = *loaded
	}
	applyFlagOverrides(&bundle, cmd.Flags().Changed)
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}
	if !algorithm.IsValid(bundle.Algorithm) {
		return nil, fmt.Errorf("unknown algorithm %q; valid: %v", bundle.Algorithm, algorithm.Names())
	}
	return &bundle, nil
}

// applyFlagOverrides copies every flag for which changed reports true into bundle.
// Flags left at their defaults never override values from the YAML file.
func applyFlagOverrides(bundle *sim.RunBundle, changed func(name string) bool) {
	if changed("seed") {
		bundle.Seed = seed
	}
	if changed("speed") {
		bundle.Speed = speed
	}
	if changed("algorithm") {
		bundle.Algorithm = algorithmName
	}
	if changed("random-frames") {
		bundle.RandomFrames = randomFrames
	}
	if changed("scheduler") {
		bundle.Scheduler.Name = schedulerName
	}
	if changed("phase-duration") {
		bundle.Scheduler.PhaseDuration = phaseDuration
	}
	if changed("min-phase") {
		bundle.Scheduler.MinPhase = minPhase
	}
	if changed("max-phase") {
		bundle.Scheduler.MaxPhase = maxPhase
	}
	if changed("slack") {
		bundle.Scheduler.Slack = slack
	}
	if changed("multiplicity") {
		bundle.Simulation.MultiplicityDetection = multiplicity
	}
	if changed("visibility") {
		bundle.Simulation.Visibility = visibility
	}
	if changed("interruptible") {
		bundle.Simulation.Interruptible = interruptible
	}
	if changed("trace") {
		bundle.Simulation.Trace = trace.TraceLevel(traceLevel)
	}
}

// newSimulation builds robots and scheduler from a validated bundle.
func newSimulation(bundle *sim.RunBundle, positions []geom.Vector, schedule string) (*sim.Simulation, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(bundle.Seed))
	robots, err := buildRobots(bundle, positions, rng)
	if err != nil {
		return nil, err
	}
	scheduler, err := buildScheduler(bundle, len(positions), schedule, rng)
	if err != nil {
		return nil, err
	}
	return sim.NewSimulation(robots, scheduler, bundle.Simulation)
}

// buildRobots places robot i at positions[i], all running the bundle's algorithm.
func buildRobots(bundle *sim.RunBundle, positions []geom.Vector, rng *sim.PartitionedRNG) ([]sim.Robot, error) {
	strategy := algorithm.New(bundle.Algorithm)
	frames := rng.ForSubsystem(sim.SubsystemFrames)
	robots := make([]sim.Robot, len(positions))
	for i, p := range positions {
		var tr transform.Transform
		if bundle.RandomFrames {
			tr = transform.Random(frames)
		}
		r, err := sim.NewRobot(i, p, bundle.Speed, tr, strategy)
		if err != nil {
			return nil, err
		}
		robots[i] = r
	}
	return robots, nil
}

// buildScheduler returns the bundle's scheduler; the file scheduler reads schedule.
func buildScheduler(bundle *sim.RunBundle, robotCount int, schedule string, rng *sim.PartitionedRNG) (sim.Scheduler, error) {
	if bundle.Scheduler.Name != sim.SchedulerFile {
		return sim.NewScheduler(bundle.Scheduler.Name, bundle.Scheduler, rng), nil
	}
	if schedule == "" {
		return nil, fmt.Errorf("scheduler %q needs --schedule", sim.SchedulerFile)
	}
	times, err := scenario.LoadSchedule(schedule, robotCount)
	if err != nil {
		return nil, err
	}
	fs, err := sim.NewFileScheduler(times, robotCount)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// runToHorizon advances s up to horizon and returns the configuration there. An
// infinite horizon runs until the scheduler is exhausted and reports the time at
// which every robot has come to rest.
func runToHorizon(s *sim.Simulation, horizon float64) ([]sim.Robot, float64) {
	if math.IsInf(horizon, 1) {
		s.AdvanceTo(horizon)
		at := s.LastKnownTerminationLowerBound()
		return s.SnapshotAt(at), at
	}
	return s.SnapshotAt(horizon), horizon
}

func printSnapshot(robots []sim.Robot, at float64) {
	fmt.Printf("=== Configuration at t=%.6f ===\n", at)
	for _, r := range robots {
		fmt.Printf("robot %-4d %-10s (%.9f, %.9f)\n", r.ID, r.State, r.Pos.X, r.Pos.Y)
	}
}

func printTraceSummary(ts *trace.TraceSummary) {
	fmt.Println("=== Decision Trace ===")
	fmt.Printf("Batches              : %d\n", ts.TotalBatches)
	fmt.Printf("Computations         : %d (%d null)\n", ts.Computations, ts.NullComputations)
	fmt.Printf("Active Robots        : %d\n", ts.ActiveRobots)
	fmt.Printf("Mean Path Length     : %.6f\n", ts.MeanPathLength)
	fmt.Printf("Max Path Length      : %.6f\n", ts.MaxPathLength)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultRunBundle()

	runCmd.Flags().StringVar(&robotsPath, "robots", "", "Path to the robot file (count, then one \"x, y\" line per robot)")
	runCmd.Flags().StringVar(&schedulePath, "schedule", "", "Path to the schedule file (file scheduler only)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run configuration")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write per-robot travelled distance to this file")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the decision trace as JSON to this file (implies --trace decisions)")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file, rotated at 100 MB, instead of stderr")
	runCmd.Flags().Float64Var(&horizon, "horizon", 1000, "Simulated time to run to; inf runs until no events remain")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerBundleFlags(runCmd, defaults)
	registerBundleFlags(configCmd, defaults)

	rootCmd.AddCommand(runCmd)
}

// registerBundleFlags adds the run bundle override flags to cmd. run and config
// share the flag variables.
func registerBundleFlags(cmd *cobra.Command, defaults sim.RunBundle) {
	cmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for scheduler timing and random frames")
	cmd.Flags().Float64Var(&speed, "speed", defaults.Speed, "Speed of every robot")
	cmd.Flags().StringVar(&algorithmName, "algorithm", defaults.Algorithm, fmt.Sprintf("Robot strategy %v", algorithm.Names()))
	cmd.Flags().BoolVar(&randomFrames, "random-frames", defaults.RandomFrames, "Give every robot a random rotated/scaled/mirrored frame")
	cmd.Flags().StringVar(&schedulerName, "scheduler", defaults.Scheduler.Name, fmt.Sprintf("Scheduler %v", sim.ValidSchedulerNames()))
	cmd.Flags().Float64Var(&phaseDuration, "phase-duration", defaults.Scheduler.PhaseDuration, "FSYNC/SSYNC phase length")
	cmd.Flags().Float64Var(&minPhase, "min-phase", defaults.Scheduler.MinPhase, "ASYNC minimum time in COMPUTING/MOVING")
	cmd.Flags().Float64Var(&maxPhase, "max-phase", defaults.Scheduler.MaxPhase, "ASYNC forced deadline after entering COMPUTING/MOVING")
	cmd.Flags().Float64Var(&slack, "slack", defaults.Scheduler.Slack, "ASYNC: serve the nearest deadline when it is this close")
	cmd.Flags().BoolVar(&multiplicity, "multiplicity", defaults.Simulation.MultiplicityDetection, "Robots can tell coincident robots apart")
	cmd.Flags().Float64Var(&visibility, "visibility", defaults.Simulation.Visibility, "View radius; -1 or inf means unlimited")
	cmd.Flags().BoolVar(&interruptible, "interruptible", defaults.Simulation.Interruptible, "MOVING robots may be stopped before the end of their path")
	cmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
}
