package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/settings"
	"github.com/san-kum/rocketsim/internal/storage"
)

// profileTop is the height of the atmospheric profile printed with the
// environment, metres above the launch site.
const profileTop = 15000

var (
	settingsFile string
	v            *viper.Viper
	cfg          *settings.Settings
	logger       *slog.Logger

	preset     string
	dt         float64
	integrator string
	seed       uint64
	maxTime    float64
	noSave     bool
	plotDir    string
	quiet      bool
	noCharts   bool

	width  int
	height int
	outDir string
	output string
	write  string

	runs      int
	workers   int
	windSigma float64
	verbose   bool
)

// main registers the commands, executes the root command and exits with
// status 1 if it fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "rocketsim",
		Short:         "solid rocket trajectory simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v = settings.New(settingsFile)
			for _, name := range []string{"data-dir", "log-level", "dt", "integrator"} {
				if cmd.Flags().Lookup(name) == nil {
					continue
				}
				if err := settings.BindFlags(v, cmd, name); err != nil {
					return err
				}
			}
			var err error
			if cfg, err = settings.Load(v); err != nil {
				return err
			}
			logger = cfg.Logger(os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "config", "", "settings file (default ./rocketsim.yaml)")
	rootCmd.PersistentFlags().String("data-dir", ".rocketsim", "run catalog directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [mission.yaml]",
		Short: "simulate a flight, print the reports and save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFlight,
	}
	missionFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&plotDir, "plots", "", "write PNG and SVG plots into this directory")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the printed reports")
	runCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip the static margin and trajectory charts")
	chartFlags(runCmd)

	infoCmd := &cobra.Command{
		Use:   "info [mission.yaml]",
		Short: "print environment, motor and rocket information",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}
	infoCmd.Flags().StringVar(&preset, "preset", "o5500x", "preset used when no mission file is given")

	marginCmd := &cobra.Command{
		Use:   "margin [mission.yaml]",
		Short: "chart the static margin over the motor burn",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showMargin,
	}
	marginCmd.Flags().StringVar(&preset, "preset", "o5500x", "preset used when no mission file is given")
	chartFlags(marginCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "print the flight reports of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id] [group]",
		Short: "chart a stored run in the terminal",
		Long:  "chart a stored run in the terminal; group defaults to trajectory, use 'all' for every group",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  plotRun,
	}
	chartFlags(plotCmd)

	plotsCmd := &cobra.Command{
		Use:   "plots [run_id]",
		Short: "write PNG and SVG plots of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  writePlots,
	}
	plotsCmd.Flags().StringVar(&outDir, "out", "", "output directory (default plot_dir/<run_id>)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata, events and telemetry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  liveRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in missions",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	presetsCmd.Flags().StringVar(&write, "write", "", "write every preset and its data files into this directory")

	dispersionCmd := &cobra.Command{
		Use:   "dispersion [mission.yaml]",
		Short: "fly a mission repeatedly with varied seeds and wind",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDispersion,
	}
	missionFlags(dispersionCmd)
	dispersionCmd.Flags().IntVar(&runs, "runs", 20, "number of flights")
	dispersionCmd.Flags().IntVar(&workers, "workers", 0, "parallel flights (0 = one per CPU)")
	dispersionCmd.Flags().Float64Var(&windSigma, "wind-sigma", 2, "surface wind offset standard deviation per axis (m/s)")
	dispersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every flight")

	rootCmd.AddCommand(runCmd, infoCmd, marginCmd, listCmd, reportCmd, plotCmd, plotsCmd,
		exportCSVCmd, exportJSONCmd, deleteCmd, liveCmd, presetsCmd, dispersionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func missionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "o5500x", "preset used when no mission file is given")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "integration step (s)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "sensor noise seed (0 keeps the mission's)")
	cmd.Flags().Float64Var(&maxTime, "max-time", 0, "simulation time limit (s, 0 keeps the mission's)")
}

func chartFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 70, "chart width")
	cmd.Flags().IntVar(&height, "height", 12, "chart height")
}

// loadMission reads the mission file in args or the selected preset.
func loadMission(args []string) (*config.Mission, error) {
	if len(args) == 1 {
		return config.Load(args[0])
	}
	m := config.GetPreset(preset)
	if m == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	return m, nil
}

// applyOverrides resolves the flight settings: flags win, then the mission
// file, then the settings file.
func applyOverrides(cmd *cobra.Command, m *config.Mission) {
	fc := &m.Flight
	if cmd.Flags().Changed("dt") || fc.Dt == 0 {
		fc.Dt = cfg.Dt
	}
	if cmd.Flags().Changed("integrator") || fc.Integrator == "" {
		fc.Integrator = cfg.Integrator
	}
	if seed != 0 {
		fc.Seed = seed
	}
	if maxTime > 0 {
		fc.MaxTime = maxTime
	}
}

func build(m *config.Mission, now time.Time) (*config.Setup, error) {
	s, err := m.Build(now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	s.Flight.Logger = logger
	return s, nil
}

func openCatalog() (*storage.Catalog, error) {
	return storage.Open(cfg.DataDir, logger)
}

// interruptible cancels on Ctrl-C so long flights stop cleanly.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
