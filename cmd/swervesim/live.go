package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/heading"
	"github.com/san-kum/swervesim/internal/logger"
	"github.com/san-kum/swervesim/internal/robot"
	"github.com/san-kum/swervesim/internal/telemetry"
	"github.com/san-kum/swervesim/internal/tui"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// the alternate screen owns the terminal; keep logs out of it
	log := logger.New(logger.Config{Level: "error", Format: cfg.Logging.Format})

	in := robot.NewLatchedInput()
	rec := telemetry.NewRecorder()
	b, err := newBench(cmd.Context(), cfg, in, rec, log)
	if err != nil {
		return err
	}
	defer b.Close()

	final, err := tui.Run(tui.New(b.robot, b.rig, in, cfg.Loop.Period))
	if err != nil {
		return err
	}
	if err := final.Err(); err != nil {
		return err
	}

	last, _ := rec.Latest(heading.TelemetryLabel)
	fmt.Printf("ticks: %d  faults: %d  last heading: %.3f\n", rec.Count(), final.Faults(), last/1000)
	return nil
}
