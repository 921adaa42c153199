package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/settings"
)

func TestMarginChart(t *testing.T) {
	s, err := config.GetPreset("o5500x").Build(time.Now())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	var buf bytes.Buffer
	if err := marginChart(&buf, s, 40, 6); err != nil {
		t.Fatalf("marginChart() failed: %v", err)
	}
	for _, want := range []string{"static margin (c) over the burn", "lift-off:", "burn out:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in chart", want)
		}
	}
}

func TestRunPrintsCharts(t *testing.T) {
	cfg = &settings.Settings{Dt: 0.01, Integrator: "rk4"}
	logger = slog.New(slog.DiscardHandler)
	preset, seed, maxTime = "o5500x", 0, 30
	noSave, quiet, plotDir = true, false, ""
	width, height = 50, 6
	defer func() { maxTime, noSave, noCharts = 0, false, false }()

	run := func() string {
		var buf bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&buf)
		if err := runFlight(cmd, nil); err != nil {
			t.Fatalf("runFlight() failed: %v", err)
		}
		return buf.String()
	}

	noCharts = false
	out := run()
	for _, want := range []string{"static margin (c) over the burn", "Flight Trajectory", "Apogee State"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in run output", want)
		}
	}

	noCharts = true
	out = run()
	if strings.Contains(out, "static margin (c)") || strings.Contains(out, "Flight Trajectory") {
		t.Error("expected --no-charts to skip both charts")
	}
}
