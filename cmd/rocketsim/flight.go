package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/plots"
	"github.com/san-kum/rocketsim/internal/report"
)

func runFlight(cmd *cobra.Command, args []string) error {
	m, err := loadMission(args)
	if err != nil {
		return err
	}
	applyOverrides(cmd, m)
	s, err := build(m, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !quiet {
		if err := printComponents(out, s); err != nil {
			return err
		}
		if !noCharts {
			if err := marginChart(out, s, width, height); err != nil {
				return err
			}
		}
	}

	ctx, cancel := interruptible()
	defer cancel()
	start := time.Now()
	res, err := s.Flight.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("flight finished", "mission", m.Name, "terminated", res.Terminated,
		"steps", res.Steps, "elapsed", time.Since(start).Round(time.Millisecond))

	if !quiet {
		if err := report.All(out, s.Flight, res); err != nil {
			return err
		}
		if !noCharts {
			fmt.Fprintln(out)
			if err := plots.Terminal(out, res.Samples, "trajectory", width, height); err != nil {
				return err
			}
		}
	}

	if !noSave {
		mission, err := config.Marshal(m)
		if err != nil {
			return err
		}
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()
		id, err := cat.Save(m.Name, mission, s.Flight, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrun saved: %s\n", id)
	}

	if plotDir != "" {
		paths, err := plots.WriteAll(plotDir, res.Samples)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d plots written to %s\n", len(paths), plotDir)
	}
	return nil
}

func printComponents(w io.Writer, s *config.Setup) error {
	if err := report.Environment(w, s.Environment, profileTop); err != nil {
		return err
	}
	if err := report.Motor(w, s.Motor); err != nil {
		return err
	}
	return report.Rocket(w, s.Rocket)
}

func showInfo(cmd *cobra.Command, args []string) error {
	m, err := loadMission(args)
	if err != nil {
		return err
	}
	s, err := build(m, time.Now())
	if err != nil {
		return err
	}
	return printComponents(cmd.OutOrStdout(), s)
}

func showMargin(cmd *cobra.Command, args []string) error {
	m, err := loadMission(args)
	if err != nil {
		return err
	}
	s, err := build(m, time.Now())
	if err != nil {
		return err
	}

	return marginChart(cmd.OutOrStdout(), s, width, height)
}

// marginChart plots the static margin from lift-off to burn out.
func marginChart(w io.Writer, s *config.Setup, width, height int) error {
	times, margins := s.Rocket.StaticMarginCurve(width)
	graph := asciigraph.Plot(margins,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("static margin (c) over the burn, 0..%.2f s", times[len(times)-1])),
	)
	_, err := fmt.Fprintf(w, "\n%s\n\nlift-off: %.3f c  burn out: %.3f c\n", graph, margins[0], margins[len(margins)-1])
	return err
}

func runDispersion(cmd *cobra.Command, args []string) error {
	m, err := loadMission(args)
	if err != nil {
		return err
	}
	applyOverrides(cmd, m)
	s, err := build(m, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()
	res, err := flight.Dispersion(ctx, *s.Flight, flight.DispersionConfig{
		Runs:      runs,
		Workers:   workers,
		WindSigma: windSigma,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEED\tWIND E\tWIND N\tAPOGEE\tIMPACT X\tIMPACT Y\tFLIGHT TIME\tMAX MACH\tERROR")
		for _, r := range res.Runs {
			errText := ""
			switch {
			case r.Err != nil:
				errText = r.Err.Error()
			case !r.Landed:
				errText = "no impact before max time"
			}
			fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.1f\t%.1f\t%.1f\t%.2f\t%.3f\t%s\n",
				r.Seed, r.WindOffset[0], r.WindOffset[1], r.Apogee, r.ImpactX, r.ImpactY, r.ImpactTime, r.MaxMach, errText)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Flights:\t%d (%d failed, %d not landed)\n", len(res.Runs), res.Failed, res.Unlanded)
	fmt.Fprintf(w, "Apogee AGL:\t%.1f ± %.1f m\n", res.ApogeeMean, res.ApogeeStd)
	fmt.Fprintf(w, "Impact X (east):\t%.1f ± %.1f m\n", res.ImpactMean[0], res.ImpactStd[0])
	fmt.Fprintf(w, "Impact Y (north):\t%.1f ± %.1f m\n", res.ImpactMean[1], res.ImpactStd[1])
	fmt.Fprintf(w, "Landing ellipse (1σ):\t%.1f x %.1f m, major axis %.1f°\n", res.SemiMajor, res.SemiMinor, res.EllipseAzimuth)
	fmt.Fprintf(w, "Mean flight time:\t%.2f s\n", res.FlightTimeMean)
	fmt.Fprintf(w, "Mean max Mach:\t%.3f\n", res.MaxMachMean)
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if write != "" {
		for _, name := range config.ListPresets() {
			path, err := config.WritePreset(name, write)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOTOR\tRAIL\tINCLINATION\tHEADING")
	for _, name := range config.ListPresets() {
		m := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%.2f m\t%.1f°\t%.1f°\n",
			name, filepath.Base(m.Motor.ThrustSource), m.Flight.RailLength, m.Flight.Inclination, m.Flight.Heading)
	}
	return w.Flush()
}
