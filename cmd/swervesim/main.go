package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/logger"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFormat  string

	period     float64
	duration   float64
	integrator string
	arrival    string
	initial    float64
	target     float64
	seed       int64
	noise      float64
	canIface   string

	runs    int
	addr    string
	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "swervesim",
		Short:         "swerve steering heading controller bench",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swervesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset scenario")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scripted scenario in simulated time",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addLoopFlags(runCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a scenario concurrently over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  sweepBench,
	}
	addLoopFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&runs, "runs", 8, "number of trials")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the module from the keyboard",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a scenario in real time and stream telemetry over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveBench,
	}
	addLoopFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot heading, target and duty of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, liveCmd, serveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&period, "period", config.DefaultPeriod, "control period in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, fmt.Sprintf("plant integrator %v", integrators.Names()))
	cmd.Flags().StringVar(&arrival, "arrival", heading.ArrivalUnwrapped.String(), "arrival check (unwrapped, wrapped)")
	cmd.Flags().Float64Var(&initial, "initial", 0, "initial heading")
	cmd.Flags().Float64Var(&target, "target", 0, "seek to this heading from t=0")
	cmd.Flags().Int64Var(&seed, "seed", 0, "sensor noise seed")
	cmd.Flags().Float64Var(&noise, "noise", 0, "sensor noise standard deviation")
	cmd.Flags().StringVar(&canIface, "can", "", "also drive the steering controller on this CAN interface")
}

// loadConfig layers defaults, preset, config file and changed flags, in that
// order, then initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Loop.Period = period
	}
	if flags.Changed("time") {
		cfg.Loop.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Loop.Integrator = integrator
	}
	if flags.Changed("arrival") {
		cfg.Heading.ArrivalCheck = arrival
	}
	if flags.Changed("initial") {
		cfg.Plant.InitialHeading = initial
	}
	if flags.Changed("seed") {
		cfg.Plant.Seed = seed
	}
	if flags.Changed("noise") {
		cfg.Plant.SensorNoise = noise
	}
	if flags.Changed("can") {
		cfg.CAN.Interface = canIface
	}
	if flags.Changed("target") {
		v := target
		cfg.Script = append([]config.Segment{{T0: 0, T1: cfg.Loop.Period, Target: &v}}, cfg.Script...)
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return cfg, nil
}
