package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rocketsim/internal/flight"
	"github.com/san-kum/rocketsim/internal/telemetry"
)

// Run is one catalog row.
type Run struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
	Integrator string    `db:"integrator"`
	Dt         float64   `db:"dt"`
	Seed       int64     `db:"seed"`
	Terminated string    `db:"terminated"`
	Steps      int       `db:"steps"`
	Apogee     float64   `db:"apogee"`
	ApogeeTime float64   `db:"apogee_time"`
	MaxSpeed   float64   `db:"max_speed"`
	MaxMach    float64   `db:"max_mach"`
	ImpactX    float64   `db:"impact_x"`
	ImpactY    float64   `db:"impact_y"`
	FlightTime float64   `db:"flight_time"`
}

type dbEvent struct {
	RunID    uuid.UUID `db:"run_id"`
	Seq      int       `db:"seq"`
	Name     string    `db:"name"`
	Time     float64   `db:"time"`
	X        float64   `db:"x"`
	Y        float64   `db:"y"`
	Z        float64   `db:"z"`
	Altitude float64   `db:"altitude"`
	Speed    float64   `db:"speed"`
	Vz       float64   `db:"vz"`
}

func toFlightEvent(e dbEvent) flight.Event {
	return flight.Event{
		Name: e.Name, Time: e.Time,
		X: e.X, Y: e.Y, Z: e.Z,
		Altitude: e.Altitude, Speed: e.Speed, Vz: e.Vz,
	}
}

// Save stores a finished flight under a new run id. mission is the encoded
// mission file the flight was built from.
func (c *Catalog) Save(name string, mission []byte, f *flight.Flight, res *flight.Result) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating uuid: %w", err)
	}
	dir := c.runDir(id.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return uuid.Nil, fmt.Errorf("creating run dir: %w", err)
	}
	if err := c.writeFiles(dir, mission, res.Samples); err != nil {
		os.RemoveAll(dir)
		return uuid.Nil, err
	}

	sum := res.Summary
	run := Run{
		ID:         id,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
		Integrator: f.Integrator,
		Dt:         f.Dt,
		Seed:       int64(f.Seed),
		Terminated: res.Terminated,
		Steps:      res.Steps,
		Apogee:     sum.Apogee.Z,
		ApogeeTime: sum.Apogee.Time,
		MaxSpeed:   sum.Max["speed"].Value,
		MaxMach:    sum.Max["mach"].Value,
		ImpactX:    sum.Impact.X,
		ImpactY:    sum.Impact.Y,
		FlightTime: sum.FlightTime,
	}
	if err := c.insert(run, res.Events); err != nil {
		os.RemoveAll(dir)
		return uuid.Nil, err
	}
	c.log.Info("run saved", "id", id, "name", name, "samples", len(res.Samples))
	return id, nil
}

func (c *Catalog) writeFiles(dir string, mission []byte, samples []telemetry.Sample) error {
	var buf bytes.Buffer
	if err := telemetry.WriteCSV(&buf, samples); err != nil {
		return fmt.Errorf("encoding telemetry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, telemetryFile), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	if len(mission) > 0 {
		if err := os.WriteFile(filepath.Join(dir, missionFile), mission, 0644); err != nil {
			return fmt.Errorf("writing mission: %w", err)
		}
	}
	return nil
}

func (c *Catalog) insert(run Run, events []flight.Event) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO runs(id, name, created_at, integrator, dt, seed, terminated, steps,
			  apogee, apogee_time, max_speed, max_mach, impact_x, impact_y, flight_time)
			  VALUES(:id, :name, :created_at, :integrator, :dt, :seed, :terminated, :steps,
			  :apogee, :apogee_time, :max_speed, :max_mach, :impact_x, :impact_y, :flight_time)`
	if _, err := tx.NamedExec(query, run); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	query = `INSERT INTO events(run_id, seq, name, time, x, y, z, altitude, speed, vz)
			 VALUES(:run_id, :seq, :name, :time, :x, :y, :z, :altitude, :speed, :vz)`
	for i, ev := range events {
		row := dbEvent{
			RunID: run.ID, Seq: i, Name: ev.Name, Time: ev.Time,
			X: ev.X, Y: ev.Y, Z: ev.Z,
			Altitude: ev.Altitude, Speed: ev.Speed, Vz: ev.Vz,
		}
		if _, err := tx.NamedExec(query, row); err != nil {
			return fmt.Errorf("inserting event %q: %w", ev.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// List returns all runs, newest first.
func (c *Catalog) List() ([]Run, error) {
	var runs []Run
	if err := c.db.Select(&runs, `SELECT * FROM runs ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Resolve expands a full id or a unique prefix of one.
func (c *Catalog) Resolve(ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if ref == "" {
		return uuid.Nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var ids []string
	// plain prefix comparison; LIKE would treat _ and % in ref as wildcards
	if err := c.db.Select(&ids, `SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? LIMIT 2`, ref, ref); err != nil {
		return uuid.Nil, fmt.Errorf("resolving %q: %w", ref, err)
	}
	switch len(ids) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return uuid.Parse(ids[0])
	}
	return uuid.Nil, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
}

// Load returns the run and its events in time order.
func (c *Catalog) Load(ref string) (*Run, []flight.Event, error) {
	id, err := c.Resolve(ref)
	if err != nil {
		return nil, nil, err
	}
	var run Run
	if err := c.db.Get(&run, `SELECT * FROM runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	var rows []dbEvent
	if err := c.db.Select(&rows, `SELECT * FROM events WHERE run_id = ? ORDER BY seq`, id); err != nil {
		return nil, nil, fmt.Errorf("loading events of %s: %w", id, err)
	}
	events := make([]flight.Event, len(rows))
	for i, r := range rows {
		events[i] = toFlightEvent(r)
	}
	return &run, events, nil
}

func (c *Catalog) LoadTelemetry(ref string) ([]telemetry.Sample, error) {
	id, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(c.runDir(id.String()), telemetryFile))
	if err != nil {
		return nil, fmt.Errorf("opening telemetry of %s: %w", id, err)
	}
	defer file.Close()
	return telemetry.ReadCSV(file)
}

// Mission returns the stored mission file, or nil if the run has none.
func (c *Catalog) Mission(ref string) ([]byte, error) {
	id, err := c.Resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(c.runDir(id.String()), missionFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// TelemetryPath is the CSV file of a run.
func (c *Catalog) TelemetryPath(ref string) (string, error) {
	id, err := c.Resolve(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.runDir(id.String()), telemetryFile), nil
}

func (c *Catalog) Delete(ref string) error {
	id, err := c.Resolve(ref)
	if err != nil {
		return err
	}
	res, err := c.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.RemoveAll(c.runDir(id.String())); err != nil {
		return fmt.Errorf("removing run dir: %w", err)
	}
	c.log.Info("run deleted", "id", id)
	return nil
}
