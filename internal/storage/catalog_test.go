package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

func setupTestDB(t *testing.T) (*Catalog, func()) {
	t.Helper()

	c, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	teardown := func() {
		c.Close()
	}
	return c, teardown
}

func testResult() (*flight.Flight, *flight.Result) {
	f := &flight.Flight{Integrator: "rk4", Dt: 0.01, Seed: 42}
	res := &flight.Result{
		Samples: []telemetry.Sample{
			{Time: 0, Phase: telemetry.PhaseRail},
			{Time: 1, Phase: telemetry.PhasePowered, Z: 50, Vz: 80, Mach: 0.24},
			{Time: 2, Phase: telemetry.PhaseCoast, Z: 120, Vz: 0},
		},
		Events: []flight.Event{
			{Name: flight.EventOutOfRail, Time: 0.3, Z: 4},
			{Name: flight.EventApogee, Time: 2, Z: 120, Altitude: 123},
		},
		Terminated: "max time",
		Steps:      2,
		Summary: flight.Summary{
			Apogee:     flight.Point{Reached: true, Time: 2, Z: 120},
			FlightTime: 2,
			Max: map[string]flight.Extreme{
				"speed": {Value: 80, Time: 1},
				"mach":  {Value: 0.24, Time: 1},
			},
		},
	}
	return f, res
}

func saveTestRun(t *testing.T, c *Catalog, name string) uuid.UUID {
	t.Helper()
	f, res := testResult()
	id, err := c.Save(name, []byte("name: "+name+"\n"), f, res)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	return id
}

func TestSaveLoad(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")

	run, events, err := c.Load(id.String())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if run.ID != id {
		t.Errorf("expected id %s, got %s", id, run.ID)
	}
	if run.Name != "test" || run.Integrator != "rk4" || run.Seed != 42 {
		t.Errorf("unexpected run %+v", run)
	}
	if run.Apogee != 120 || run.MaxMach != 0.24 || run.Terminated != "max time" {
		t.Errorf("unexpected summary columns %+v", run)
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Name != flight.EventApogee || events[1].Altitude != 123 {
		t.Errorf("unexpected event %+v", events[1])
	}
}

func TestLoadTelemetry(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")
	samples, err := c.LoadTelemetry(id.String())
	if err != nil {
		t.Fatalf("LoadTelemetry() failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[1].Vz != 80 || samples[1].Phase != telemetry.PhasePowered {
		t.Errorf("unexpected sample %+v", samples[1])
	}

	mission, err := c.Mission(id.String())
	if err != nil {
		t.Fatalf("Mission() failed: %v", err)
	}
	if string(mission) != "name: test\n" {
		t.Errorf("expected mission file, got %q", mission)
	}
}

func TestListNewestFirst(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	first := saveTestRun(t, c, "first")
	second := saveTestRun(t, c, "second")

	runs, err := c.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestResolvePrefix(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")
	got, err := c.Resolve(id.String()[:13])
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got != id {
		t.Errorf("expected %s, got %s", id, got)
	}

	if _, err := c.Resolve("ffffffff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for _, ref := range []string{"_", "%", "________"} {
		if _, err := c.Resolve(ref); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for %q, got %v", ref, err)
		}
	}

	other := saveTestRun(t, c, "other")
	n := 0
	for n < len(id.String()) && id.String()[n] == other.String()[n] {
		n++
	}
	if n > 0 {
		if _, err := c.Resolve(id.String()[:n]); !errors.Is(err, ErrAmbiguous) {
			t.Errorf("expected ErrAmbiguous for prefix %q, got %v", id.String()[:n], err)
		}
	}
}

func TestLoadClosedCatalog(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")
	c.Close()
	_, _, err := c.Load(id.String())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected a database error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")
	if err := c.Delete(id.String()); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, _, err := c.Load(id.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(c.Dir(), id.String())); !os.IsNotExist(err) {
		t.Errorf("expected run dir removed, got %v", err)
	}

	var count int
	if err := c.db.Get(&count, `SELECT COUNT(*) FROM events WHERE run_id = ?`, id); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if count != 0 {
		t.Errorf("expected events to cascade, got %d", count)
	}

	if err := c.Delete(id.String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	c, teardown := setupTestDB(t)
	defer teardown()

	id := saveTestRun(t, c, "test")
	var buf bytes.Buffer
	if err := c.ExportJSON(&buf, id.String()); err != nil {
		t.Fatalf("ExportJSON() failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if got.Run.ID != id {
		t.Errorf("expected run %s, got %s", id, got.Run.ID)
	}
	if len(got.Times) != 3 || got.Series["z"][2] != 120 {
		t.Errorf("unexpected series: times %v, z %v", got.Times, got.Series["z"])
	}
	if len(got.Units) != len(got.Columns) {
		t.Errorf("expected one unit per column, got %d and %d", len(got.Units), len(got.Columns))
	}
	if got.Phases[0] != telemetry.PhaseRail {
		t.Errorf("expected first phase %s, got %s", telemetry.PhaseRail, got.Phases[0])
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	f, res := testResult()
	id, err := c.Save("test", nil, f, res)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	c.Close()

	c, err = Open(dir, nil)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer c.Close()
	if _, _, err := c.Load(id.String()); err != nil {
		t.Errorf("expected run to survive reopen, got %v", err)
	}
	mission, err := c.Mission(id.String())
	if err != nil || mission != nil {
		t.Errorf("expected no mission file, got %q, %v", mission, err)
	}
}
