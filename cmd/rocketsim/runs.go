package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/plots"
	"github.com/san-kum/rocketsim/internal/report"
	"github.com/san-kum/rocketsim/internal/telemetry"
	"github.com/san-kum/rocketsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	runs, err := cat.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tINTEG\tDT\tAPOGEE\tMAX MACH\tFLIGHT TIME\tTERMINATED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4fs\t%.1fm\t%.3f\t%.2fs\t%s\n",
			run.ID.String()[:13],
			run.Name,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Dt,
			run.Apogee,
			run.MaxMach,
			run.FlightTime,
			run.Terminated,
		)
	}
	return w.Flush()
}

// reportRun flies the stored mission again with the stored settings and
// prints the reports. The flight is deterministic for a given seed, so the
// output matches the stored run.
func reportRun(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	run, _, err := cat.Load(args[0])
	if err != nil {
		return err
	}
	data, err := cat.Mission(args[0])
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("run %s has no mission file", run.ID)
	}
	m, err := config.Parse(data)
	if err != nil {
		return fmt.Errorf("stored mission: %w", err)
	}
	m.Flight.Integrator = run.Integrator
	m.Flight.Dt = run.Dt
	m.Flight.Seed = uint64(run.Seed)

	s, err := build(m, run.CreatedAt)
	if err != nil {
		return err
	}
	ctx, cancel := interruptible()
	defer cancel()
	res, err := s.Flight.Run(ctx)
	if err != nil {
		return err
	}
	if res.Terminated != run.Terminated {
		logger.Warn("replayed flight ended differently", "stored", run.Terminated, "replayed", res.Terminated)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s (%s, %s)\n", run.ID, run.Name, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if err := printComponents(out, s); err != nil {
		return err
	}
	return report.All(out, s.Flight, res)
}

func loadSamples(ref string) ([]telemetry.Sample, error) {
	cat, err := openCatalog()
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	return cat.LoadTelemetry(ref)
}

func plotRun(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	group := "trajectory"
	if len(args) == 2 {
		group = args[1]
	}
	names := []string{group}
	if group == "all" {
		names = plots.Groups()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\nsamples: %d\n\n", args[0], len(samples))
	for _, name := range names {
		if err := plots.Terminal(out, samples, name, width, height); err != nil {
			return fmt.Errorf("%w (available: %v)", err, plots.Groups())
		}
	}
	return nil
}

func writePlots(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Join(cfg.PlotDir, args[0])
	}
	paths, err := plots.WriteAll(dir, samples)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

// outputFile returns stdout or the --output file.
func outputFile(cmd *cobra.Command) (io.Writer, func() error, error) {
	if output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	w, closeFn, err := outputFile(cmd)
	if err != nil {
		return err
	}
	if err := telemetry.WriteCSV(w, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	w, closeFn, err := outputFile(cmd)
	if err != nil {
		return err
	}
	if err := cat.ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func deleteRun(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	id, err := cat.Resolve(args[0])
	if err != nil {
		return err
	}
	if err := cat.Delete(id.String()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", id)
	return nil
}

func liveRun(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	run, events, err := cat.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := cat.LoadTelemetry(args[0])
	if err != nil {
		return err
	}
	r, err := viz.NewReplay(run.Name, samples, events)
	if err != nil {
		return err
	}
	return viz.Play(r)
}
