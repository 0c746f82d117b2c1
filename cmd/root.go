// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/inference-sim/internal/config"
	"github.com/inference-sim/inference-sim/internal/loaders"
	"github.com/inference-sim/inference-sim/internal/matrix"
	"github.com/inference-sim/inference-sim/internal/metricsserver"
	"github.com/inference-sim/inference-sim/internal/onnxruntime"
	"github.com/inference-sim/inference-sim/internal/osrmclient"
	"github.com/inference-sim/inference-sim/sim"
	"github.com/inference-sim/inference-sim/sim/dispatch"
	"github.com/inference-sim/inference-sim/sim/driver"
	"github.com/inference-sim/inference-sim/sim/env"
	"github.com/inference-sim/inference-sim/sim/oracle"
)

// Exit codes, spec.md §6: 0 success; 1 invalid input; 2 configuration
// error; 3 runtime fatal (invariant violation).
const (
	exitSuccess      = 0
	exitInvalidInput = 1
	exitConfigError  = 2
	exitRuntimeFatal = 3
)

var (
	envFilePath    string
	jsonConfigPath string
	horizonSeconds int64
	metricsAddr    string
)

var rootCmd = &cobra.Command{
	Use:   "fire-ems-sim",
	Short: "Discrete-event simulator for fire/EMS fleet dispatch",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a dispatch simulation to completion",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runSimulation())
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a simulation and print a structured per-incident log",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runReplay())
	},
}

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Query OSRM for a duration matrix and write it in the spec binary format",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runPrecompute())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitRuntimeFatal)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFilePath, "env", ".env", "Path to a .env configuration file")
	rootCmd.PersistentFlags().StringVar(&jsonConfigPath, "config-json", "", "Path to an inline JSON configuration document (overrides --env)")
	runCmd.Flags().Int64Var(&horizonSeconds, "horizon", 0, "Simulation horizon in seconds (0 = run until the event queue drains)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics at this address after the run (e.g. :9090)")
	replayCmd.Flags().Int64Var(&horizonSeconds, "horizon", 0, "Simulation horizon in seconds (0 = run until the event queue drains)")

	rootCmd.AddCommand(runCmd, replayCmd, precomputeCmd)
}

func loadConfig() (*config.Config, int) {
	if jsonConfigPath != "" {
		data, err := os.ReadFile(jsonConfigPath)
		if err != nil {
			logrus.Errorf("reading json config: %v", err)
			return nil, exitConfigError
		}
		cfg, err := config.LoadJSON(data)
		if err != nil {
			logrus.Errorf("%v", err)
			return nil, exitConfigError
		}
		return cfg, exitSuccess
	}

	cfg, err := config.LoadEnv(envFilePath)
	if err != nil {
		logrus.Errorf("%v", err)
		return nil, exitConfigError
	}
	return cfg, exitSuccess
}

// buildSimulator wires config -> loaders -> oracle -> dispatch policy ->
// env.Model -> driver.Simulator, mirroring main.cpp's startup sequence.
func buildSimulator(cfg *config.Config) (*driver.Simulator, int) {
	logger := logrus.StandardLogger()
	if cfg.LogsPath != "" {
		f, err := os.Create(cfg.LogsPath)
		if err != nil {
			logger.Errorf("opening log file %s: %v", cfg.LogsPath, err)
			return nil, exitConfigError
		}
		logger.SetOutput(f)
	}

	bounds, err := loaders.LoadPolygonFromGeoJSON(cfg.BoundsGeoJSONPath)
	if err != nil {
		logger.Errorf("%v", err)
		return nil, exitInvalidInput
	}

	stations, stationReport, err := loaders.LoadStations(cfg.StationsCSVPath, bounds)
	if err != nil {
		logger.Errorf("%v", err)
		return nil, exitInvalidInput
	}
	logger.WithFields(logrus.Fields{"accepted": stationReport.Accepted, "skipped": len(stationReport.Skipped)}).Info("loaded stations")

	stationByID := make(map[uint32]*sim.Station, len(stations))
	for _, st := range stations {
		stationByID[st.StationID] = st
	}

	apparatus, apparatusReport, err := loaders.LoadApparatus(cfg.ApparatusCSVPath, stationByID)
	if err != nil {
		logger.Errorf("%v", err)
		return nil, exitInvalidInput
	}
	logger.WithFields(logrus.Fields{"accepted": apparatusReport.Accepted, "skipped": len(apparatusReport.Skipped)}).Info("loaded apparatus")

	incidents, incidentReport, err := loaders.LoadIncidents(cfg.IncidentsCSVPath, bounds)
	if err != nil {
		logger.Errorf("%v", err)
		return nil, exitInvalidInput
	}
	logger.WithFields(logrus.Fields{"accepted": incidentReport.Accepted, "skipped": len(incidentReport.Skipped)}).Info("loaded incidents")

	o, exitCode := buildOracle(cfg, logger)
	if o == nil {
		return nil, exitCode
	}

	policy, exitCode := buildDispatchPolicy(cfg, logger)
	if policy == nil {
		return nil, exitCode
	}

	state := sim.NewState(stations, apparatus, incidents)
	state.Logger = logger
	model := env.New(o, logger)
	simulator := driver.New(state, model, policy, sim.SimTime(horizonSeconds), logger)
	return simulator, exitSuccess
}

func buildOracle(cfg *config.Config, logger *logrus.Logger) (oracle.Oracle, int) {
	switch cfg.ResolutionModel {
	case "HARDCODED":
		o, err := oracle.New("hardcoded", cfg.RandomSeed)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		return o, exitSuccess
	case "DEPARTMENT":
		categoryTable, err := loaders.LoadCategoryTable(cfg.CategoryTablePath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		durationTable, err := loaders.LoadDurationTable(cfg.DurationTablePath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		o, err := oracle.New("department", cfg.RandomSeed,
			oracle.WithCategoryTable(categoryTable), oracle.WithDurationTable(durationTable))
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		return o, exitSuccess
	case "ML":
		categoryTable, err := loaders.LoadCategoryTable(cfg.CategoryTablePath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		featureConfig, err := loaders.LoadFeatureConfig(cfg.FeatureConfigPath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		model, err := onnxruntime.Load(cfg.ONNXModelPath, len(featureConfig.Features))
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		o, err := oracle.New("ml", cfg.RandomSeed,
			oracle.WithCategoryTable(categoryTable), oracle.WithModel(model), oracle.WithFeatureConfig(featureConfig))
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		return o, exitSuccess
	default:
		logger.Errorf("unknown RESOLUTION_MODEL %q", cfg.ResolutionModel)
		return nil, exitConfigError
	}
}

func buildDispatchPolicy(cfg *config.Config, logger *logrus.Logger) (dispatch.Policy, int) {
	switch cfg.Policy {
	case "NEAREST":
		durations, err := loaders.LoadDurationMatrix(cfg.DurationMatrixPath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		p, err := dispatch.NewDispatchPolicy("nearest", durations, nil)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		return p, exitSuccess
	case "FIREBEATS":
		beats, err := loaders.LoadBeatsMatrix(cfg.BeatsMatrixPath)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitInvalidInput
		}
		// The duration matrix is optional for beats dispatch: it
		// annotates TravelTimeSec and feeds the in-time feasibility check,
		// never ordering, so a missing/unreadable file degrades to zero
		// travel times rather than aborting the run.
		durations, err := loaders.LoadDurationMatrix(cfg.DurationMatrixPath)
		if err != nil {
			logger.Warnf("duration matrix unavailable for beats dispatch annotation: %v", err)
			durations = nil
		}
		p, err := dispatch.NewDispatchPolicy("beats", durations, beats)
		if err != nil {
			logger.Errorf("%v", err)
			return nil, exitConfigError
		}
		return p, exitSuccess
	default:
		logger.Errorf("unknown POLICY %q", cfg.Policy)
		return nil, exitConfigError
	}
}

func runSimulation() (exitCode int) {
	cfg, exitCode := loadConfig()
	if cfg == nil {
		return exitCode
	}
	s, exitCode := buildSimulator(cfg)
	if s == nil {
		return exitCode
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("simulation invariant violation: %v", r)
			exitCode = exitRuntimeFatal
		}
	}()

	metrics, err := s.Run()
	if err != nil {
		logrus.Errorf("run failed: %v", err)
		return exitRuntimeFatal
	}

	logrus.WithFields(logrus.Fields{
		"reported":        metrics.IncidentsReported,
		"resolved":        metrics.IncidentsResolved,
		"events":          metrics.EventsProcessed,
		"mean_response_s": metrics.MeanResponseSeconds,
		"mean_resolve_s":  metrics.MeanResolutionSeconds,
	}).Info("simulation complete")

	if metricsAddr != "" {
		server := metricsserver.New(metricsAddr)
		server.Publish(metrics)
		logrus.Infof("serving metrics on %s/metrics", metricsAddr)
		if err := server.ListenAndServe(); err != nil {
			logrus.Errorf("metrics server: %v", err)
		}
	}

	return exitSuccess
}

func runReplay() (exitCode int) {
	cfg, exitCode := loadConfig()
	if cfg == nil {
		return exitCode
	}
	s, exitCode := buildSimulator(cfg)
	if s == nil {
		return exitCode
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("simulation invariant violation: %v", r)
			exitCode = exitRuntimeFatal
		}
	}()

	if _, err := s.Run(); err != nil {
		logrus.Errorf("run failed: %v", err)
		return exitRuntimeFatal
	}
	s.Replay()
	return exitSuccess
}

func runPrecompute() int {
	cfg, exitCode := loadConfig()
	if cfg == nil {
		return exitCode
	}

	bounds, err := loaders.LoadPolygonFromGeoJSON(cfg.BoundsGeoJSONPath)
	if err != nil {
		logrus.Errorf("%v", err)
		return exitInvalidInput
	}
	stations, _, err := loaders.LoadStations(cfg.StationsCSVPath, bounds)
	if err != nil {
		logrus.Errorf("%v", err)
		return exitInvalidInput
	}
	incidents, _, err := loaders.LoadIncidents(cfg.IncidentsCSVPath, bounds)
	if err != nil {
		logrus.Errorf("%v", err)
		return exitInvalidInput
	}

	client := osrmclient.New(cfg.OSRMURL)
	if err := client.CheckHealth(context.Background()); err != nil {
		logrus.Errorf("osrm health check failed: %v", err)
		return exitConfigError
	}

	sources := make([]sim.Location, len(stations))
	for i, st := range stations {
		sources[i] = st.Location
	}
	destinations := make([]sim.Location, len(incidents))
	for i, inc := range incidents {
		destinations[i] = inc.Location
	}

	durations, err := client.Durations(context.Background(), sources, destinations)
	if err != nil {
		logrus.Errorf("osrm query failed: %v", err)
		return exitRuntimeFatal
	}

	f, err := os.Create(cfg.DurationMatrixPath)
	if err != nil {
		logrus.Errorf("creating duration matrix file: %v", err)
		return exitConfigError
	}
	defer f.Close()

	if err := writeDurationMatrix(f, durations); err != nil {
		logrus.Errorf("writing duration matrix: %v", err)
		return exitRuntimeFatal
	}

	fmt.Fprintf(os.Stderr, "wrote %d x %d duration matrix to %s\n", len(sources), len(destinations), cfg.DurationMatrixPath)
	return exitSuccess
}

// writeDurationMatrix converts OSRM's [source][destination] rows into the
// spec's Stations x Incidents binary matrix format.
func writeDurationMatrix(f *os.File, durations [][]float64) error {
	height := int32(len(durations))
	width := int32(0)
	if height > 0 {
		width = int32(len(durations[0]))
	}
	m, err := matrix.New[float64](width, height)
	if err != nil {
		return err
	}
	for row, cols := range durations {
		for col, v := range cols {
			m.Set(row, col, v)
		}
	}
	return matrix.Write(f, m)
}
