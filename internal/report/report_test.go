package report

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/san-kum/rocketsim/internal/config"
	"github.com/san-kum/rocketsim/internal/flight"
)

var (
	fixtureOnce  sync.Once
	fixtureSetup *config.Setup
	fixtureRes   *flight.Result
	fixtureErr   error
)

func testFlight(t *testing.T) (*config.Setup, *flight.Result) {
	t.Helper()
	fixtureOnce.Do(func() {
		now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		fixtureSetup, fixtureErr = config.GetPreset("o5500x").Build(now)
		if fixtureErr != nil {
			return
		}
		fixtureSetup.Flight.Dt = 0.05
		fixtureRes, fixtureErr = fixtureSetup.Flight.Run(context.Background())
	})
	if fixtureErr != nil {
		t.Fatalf("building fixture flight: %v", fixtureErr)
	}
	return fixtureSetup, fixtureRes
}

func TestEnvironment(t *testing.T) {
	s, _ := testFlight(t)
	var buf bytes.Buffer
	if err := Environment(&buf, s.Environment, 10000); err != nil {
		t.Fatalf("Environment() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Launch Date: 2026-10-19 12:00:00 UTC",
		"Launch Site Latitude: 28.56211°",
		"Atmospheric Model Type: standard",
		"Surface Wind Speed: 0.00 m/s",
		"Atmospheric Profile",
		"10000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in environment report:\n%s", want, out)
		}
	}
}

func TestMotor(t *testing.T) {
	s, _ := testFlight(t)
	var buf bytes.Buffer
	if err := Motor(&buf, s.Motor); err != nil {
		t.Fatalf("Motor() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"O5500X-PS (AeroTech)",
		"Nozzle Radius: 0.0250 m",
		"Number of Grains: 1",
		"Total Burning Time: 3.997 s",
		"thrust (N) vs time",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in motor report:\n%s", want, out)
		}
	}
}

func TestRocket(t *testing.T) {
	s, _ := testFlight(t)
	var buf bytes.Buffer
	if err := Rocket(&buf, s.Rocket); err != nil {
		t.Fatalf("Rocket() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Rocket Mass: 4.000 kg",
		"Rail Buttons: upper 0.900 m, lower 0.200 m",
		"fins",
		"Initial Static Margin",
		"main: CdS 10.00 m² | trigger 300 m AGL",
		"drogue: CdS 1.00 m² | trigger apogee",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rocket report:\n%s", want, out)
		}
	}
}

func TestAllInOrder(t *testing.T) {
	s, res := testFlight(t)
	var buf bytes.Buffer
	if err := All(&buf, s.Flight, res); err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	out := buf.String()

	order := []string{
		"Initial Conditions",
		"Surface Wind Conditions",
		"Launch Rail",
		"Rail Departure State",
		"Burn out State",
		"Apogee State",
		"Parachute Events",
		"Events Registered",
		"Impact Conditions",
		"Maximum Values",
	}
	last := -1
	for _, h := range order {
		i := strings.Index(out, h)
		if i < 0 {
			t.Errorf("missing section %q", h)
			continue
		}
		if i < last {
			t.Errorf("section %q out of order", h)
		}
		last = i
	}

	for _, want := range []string{
		"Effective Rail Length: 3.30 m",
		"Drogue Ejection Triggered at:",
		"Main Parachute Inflated at:",
		"Average thrust during burn:",
		"X Impact:",
		"Maximum Mach Number:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in flight report", want)
		}
	}
}

func TestEventsParachuteNames(t *testing.T) {
	res := &flight.Result{Summary: flight.Summary{Parachutes: []flight.ParachuteEvent{
		{Name: "écope", Triggered: 12, Deployed: 13.5, WasDeployed: true},
		{Name: "main", Triggered: 40},
	}}}
	var buf bytes.Buffer
	if err := Events(&buf, nil, res); err != nil {
		t.Fatalf("Events() failed: %v", err)
	}
	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("expected valid UTF-8, got %q", out)
	}
	for _, want := range []string{"Écope Ejection Triggered at: 12.000 s", "Main not deployed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in events report", want)
		}
	}
	if capitalize("") != "" {
		t.Error("expected empty name unchanged")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteError(t *testing.T) {
	s, res := testFlight(t)
	if err := All(failingWriter{}, s.Flight, res); err == nil {
		t.Error("expected write error")
	}
	if err := Motor(failingWriter{}, s.Motor); err == nil {
		t.Error("expected write error")
	}
}

func TestOffsetLatLon(t *testing.T) {
	lat, lon := offsetLatLon(0, 0, 0, earthRadius*math.Pi/180)
	if math.Abs(lat-1) > 1e-12 || lon != 0 {
		t.Errorf("expected (1, 0), got (%f, %f)", lat, lon)
	}
	lat, lon = offsetLatLon(60, 10, earthRadius*math.Pi/180, 0)
	if lat != 60 || math.Abs(lon-12) > 1e-9 {
		t.Errorf("expected (60, 12), got (%f, %f)", lat, lon)
	}
}
