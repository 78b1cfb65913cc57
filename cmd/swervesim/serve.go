package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/logger"
	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/storage"
	"github.com/san-kum/swervesim/internal/telemetry"
)

// serveBench runs the scenario against the wall clock and streams every
// telemetry sample to connected dashboards. Dashboards are read-only.
func serveBench(cmd *cobra.Command, args []string) error {
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

	hub := telemetry.NewHub(log)
	sink := telemetry.Multi{hub, telemetry.NewLogSink(log)}

	b, err := newBench(ctx, cfg, robot.NewScriptedInput(cfg.Segments()), sink, log)
	if err != nil {
		return err
	}
	defer b.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(hub.Stats())
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("telemetry server stopped", "err", err)
		}
	}()
	log.Info("streaming telemetry", "url", fmt.Sprintf("ws://%s/ws", ln.Addr()))

	s := b.simulator()
	s.AddObserver(telemetry.SampleObserver{Sink: hub})

	result, runErr := s.RunRealtime(ctx, cfg.SimConfig())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if result == nil {
		return runErr
	}

	runID, err := saveRun(st, cfg, result)
	if err != nil {
		return err
	}
	stats := hub.Stats()
	log.Info("run finished", "run", runID, "steps", len(result.Samples), "faults", result.Faults,
		"sent", stats.Sent, "dropped", stats.Dropped)
	printMetrics(result.Metrics)
	return nil
}
