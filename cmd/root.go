package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/queuesim/queuesim/sim"
	"github.com/queuesim/queuesim/sim/dist"
)

var (
	// CLI flags for the simulated system
	seed        int64   // master seed; generator streams derive from it
	horizon     float64 // fixed-horizon stopping time (simulated units)
	jobs        int64   // fixed-count stopping target (0 = use horizon)
	servers     int     // number of identical servers
	buffer      int     // waiting-room capacity (-1 = unbounded)
	discipline  string  // queue discipline name
	lanes       int     // round-robin sub-queue count
	arrivalRate float64 // exponential arrival rate λ
	serviceRate float64 // exponential service rate μ

	// CLI flags for the outer surface
	scenarioFile string // YAML scenario overriding the flags above
	outputFile   string // flat key-value statistics report destination
	logLevel     string // log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queuesim",
	Short: "Discrete-event simulator for queueing systems",
}

// runCmd executes one simulation from CLI flags or a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a queueing simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		sc := scenarioFromFlags()
		if scenarioFile != "" {
			sc, err = LoadScenario(scenarioFile)
			if err != nil {
				logrus.Fatalf("Unable to load scenario: %v", err)
			}
		}

		simulator, err := sc.Build()
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		if !simulator.IsStationary() {
			logrus.Warnf("System is not stationary (rho=%.4f >= 1); steady-state statistics are unreliable", simulator.Rho())
		}

		startTime := time.Now()
		if sc.Jobs > 0 {
			err = simulator.RunUntilJobs(sc.Jobs)
		} else {
			err = simulator.Run(sc.Horizon)
		}
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation finished in %v", time.Since(startTime))

		logrus.Infof("rho=%.4f, avg_wait=%.4f, avg_system=%.4f, utilization=%.4f, loss_probability=%.4f",
			simulator.Rho(), simulator.MeanWaitTime(), simulator.MeanSystemTime(),
			simulator.Utilization(), simulator.LossProbability())

		if outputFile != "" {
			if err := sim.SaveReport(outputFile, simulator.Report()); err != nil {
				logrus.Fatalf("Unable to save report: %v", err)
			}
		}
	},
}

// scenarioFromFlags assembles a Scenario from the individual CLI flags.
func scenarioFromFlags() Scenario {
	sc := DefaultScenario()
	sc.Seed = seed
	sc.Horizon = horizon
	sc.Jobs = jobs
	sc.Servers = servers
	sc.Buffer = buffer
	sc.Discipline = discipline
	sc.Lanes = lanes
	sc.Arrival = dist.Spec{Kind: dist.KindExponential, Rate: arrivalRate}
	sc.Service = dist.Spec{Kind: dist.KindExponential, Rate: serviceRate}
	return sc
}

func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master seed for all random streams")
	runCmd.Flags().Float64Var(&horizon, "horizon", 10000, "Simulated time to run for (fixed-horizon mode)")
	runCmd.Flags().Int64Var(&jobs, "jobs", 0, "Completed jobs to run for (fixed-count mode, overrides horizon)")
	runCmd.Flags().IntVar(&servers, "servers", 1, "Number of identical servers")
	runCmd.Flags().IntVar(&buffer, "buffer", sim.UnboundedBuffer, "Waiting-room capacity (-1 = unbounded)")
	runCmd.Flags().StringVar(&discipline, "discipline", string(sim.FIFO), "Queue discipline: fifo, lifo, random, priority, round-robin")
	runCmd.Flags().IntVar(&lanes, "lanes", 1, "Round-robin sub-queue count")
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 0.8, "Exponential arrival rate lambda")
	runCmd.Flags().Float64Var(&serviceRate, "service-rate", 1.0, "Exponential service rate mu")
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "", "YAML scenario file (overrides the flags above)")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Write the flat key-value statistics report to this file")
	runCmd.Flags().StringVar(&logLevel, "loglevel", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
