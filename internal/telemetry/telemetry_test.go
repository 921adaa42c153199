package telemetry

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	in := []Sample{
		{Time: 0, Phase: PhaseRail, Z: 0, Mass: 27.7},
		{Time: 0.01, Phase: PhasePowered, Z: 0.02, Vz: 2.1, Mach: 0.006, UpperButtonNormal: 12.5},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if out[1] != in[1] {
		t.Errorf("expected %+v, got %+v", in[1], out[1])
	}
}

func TestReadCSV_PartialColumns(t *testing.T) {
	out, err := ReadCSV(strings.NewReader("time,z,legacy,phase\n1.5,300,7,coast\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Time != 1.5 || out[0].Z != 300 || out[0].Phase != PhaseCoast {
		t.Errorf("unexpected sample %+v", out[0])
	}

	_, err = ReadCSV(strings.NewReader("time,z\n1.5,high\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line number in error, got %v", err)
	}
}

func TestSeries(t *testing.T) {
	samples := []Sample{{Mach: 0.1}, {Mach: 0.5}, {Mach: 0.3}}
	mach, err := Series(samples, "mach")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mach[1] != 0.5 {
		t.Errorf("expected 0.5, got %f", mach[1])
	}
	if _, err := Series(samples, "warp"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	if Unit("dynamic_pressure") != "Pa" {
		t.Errorf("expected Pa, got %q", Unit("dynamic_pressure"))
	}

	v, err := samples[2].Get("mach")
	if err != nil || v != 0.3 {
		t.Errorf("expected 0.3, got %f (%v)", v, err)
	}
}
