package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/canbus"
	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/logger"
	"github.com/san-kum/swervesim/internal/metrics"
	"github.com/san-kum/swervesim/internal/plant"
	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/storage"
	"github.com/san-kum/swervesim/internal/telemetry"
)

// bench is one steering module on the simulated rig, optionally mirrored to
// a real controller on the CAN bus.
type bench struct {
	rig   *plant.Rig
	ctrl  *heading.Controller
	robot *robot.Robot
	can   io.Closer
	log   *slog.Logger
}

func newBench(ctx context.Context, cfg *config.Config, in robot.Input, sink telemetry.Sink, log *slog.Logger) (*bench, error) {
	integ, err := integrators.ByName(cfg.Loop.Integrator)
	if err != nil {
		return nil, err
	}
	rig, err := plant.NewRig(cfg.PlantConfig(), integ)
	if err != nil {
		return nil, err
	}
	hcfg, err := cfg.HeadingConfig()
	if err != nil {
		return nil, err
	}

	mod := cfg.ModuleConfig()
	log = log.With("can_id", mod.SteeringCANID, "encoder", mod.EncoderChannel)

	b := &bench{rig: rig, log: log}
	var motor heading.MotorDriver = rig
	if cfg.CAN.Interface != "" {
		conn, err := canbus.Dial(ctx, cfg.CAN.Interface)
		if err != nil {
			return nil, err
		}
		b.can = conn
		motor = robot.MotorFanout{rig, canbus.NewMotor(conn, mod.SteeringCANID, cfg.CAN.WriteTimeout)}
		log.Info("mirroring duty to CAN", "iface", cfg.CAN.Interface)
	}

	b.ctrl = heading.New(hcfg, motor, rig, sink)
	b.robot = robot.New(b.ctrl, motor, in, log)
	return b, nil
}

func (b *bench) simulator() *sim.Simulator {
	s := sim.New(b.rig, b.robot)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	return s
}

// Close releases the CAN socket. A failed close is logged; the run's
// result is already settled by then.
func (b *bench) Close() {
	if b.can == nil {
		return
	}
	if err := b.can.Close(); err != nil {
		b.log.Error("close CAN socket failed", "err", err)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.L()
	ctx := cmd.Context()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	b, err := newBench(ctx, cfg, robot.NewScriptedInput(cfg.Segments()), telemetry.NewLogSink(log), log)
	if err != nil {
		return err
	}
	defer b.Close()

	log.Info("running", "preset", preset, "duration", cfg.Loop.Duration, "period", cfg.Loop.Period, "arrival", cfg.Heading.ArrivalCheck)
	start := time.Now()

	result, err := b.simulator().Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := saveRun(st, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  faults: %d\n", len(result.Samples), result.Faults)
	printMetrics(result.Metrics)
	return nil
}

func saveRun(st *storage.Store, cfg *config.Config, result *sim.Result) (string, error) {
	runID, err := st.Save(storage.RunMetadata{
		Preset:       preset,
		Seed:         cfg.Plant.Seed,
		Period:       cfg.Loop.Period,
		Duration:     cfg.Loop.Duration,
		Integrator:   cfg.Loop.Integrator,
		ArrivalCheck: cfg.Heading.ArrivalCheck,
	}, result)
	if err != nil {
		return "", err
	}
	if err := config.Save(st.Path(runID, "config.yaml"), cfg); err != nil {
		return "", err
	}
	return runID, nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(m) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sweepBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}
	if cfg.CAN.Interface != "" {
		return fmt.Errorf("sweep runs trials in parallel and cannot share a CAN interface")
	}
	log := logger.L()

	var (
		mu      sync.Mutex
		benches []*bench
	)
	defer func() {
		for _, b := range benches {
			b.Close()
		}
	}()

	ens := sim.NewEnsemble(runs, func(idx int) (*sim.Simulator, error) {
		trial := cfg.Clone()
		trial.Plant.Seed = cfg.Plant.Seed + int64(idx)
		b, err := newBench(cmd.Context(), trial, robot.NewScriptedInput(trial.Segments()), nil, log.With("trial", idx))
		if err != nil {
			return nil, err
		}
		mu.Lock()
		benches = append(benches, b)
		mu.Unlock()
		return b.simulator(), nil
	})

	start := time.Now()
	results, err := ens.Run(cmd.Context(), cfg.SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("%d trials in %v\n\n", runs, time.Since(start))

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)

	mean := make(map[string]float64, len(names))
	for i, r := range results {
		fmt.Fprintf(w, "%d", cfg.Plant.Seed+int64(i))
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[name])
			mean[name] += r.Metrics[name] / float64(len(results))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, "mean")
	for _, name := range names {
		fmt.Fprintf(w, "\t%.4f", mean[name])
	}
	fmt.Fprintln(w)
	return w.Flush()
}
