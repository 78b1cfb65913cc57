package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tPERIOD\tARRIVAL\tARRIVALS\tFAULTS")

	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.3fs\t%s\t%.0f\t%d\n",
			shortID(run.ID),
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Period,
			run.ArrivalCheck,
			run.Metrics["arrivals"],
			run.Faults,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(meta.ID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	headings := make([]float64, len(samples))
	targets := make([]float64, len(samples))
	duties := make([]float64, len(samples))
	seeking := false
	for i, s := range samples {
		headings[i] = s.Heading
		duties[i] = s.Duty
		targets[i] = math.NaN()
		if s.HasTarget {
			targets[i] = s.Target
			seeking = true
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  faults: %d\n\n", len(samples), meta.Faults)

	series := [][]float64{headings}
	caption := "heading"
	colors := []asciigraph.AnsiColor{asciigraph.Cyan}
	if seeking {
		series = append(series, targets)
		caption = "heading (cyan), target (magenta)"
		colors = append(colors, asciigraph.Magenta)
	}

	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(duties,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("duty cycle"),
	))
	return nil
}

func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
