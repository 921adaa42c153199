// Package storage keeps finished flights: a SQLite catalog of runs and their
// events, and a directory per run holding the telemetry CSV and the mission
// file that produced it.
package storage

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	catalogFile   = "catalog.db"
	telemetryFile = "telemetry.csv"
	missionFile   = "mission.yaml"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: run id prefix matches more than one run")
)

// Catalog is the run store rooted at a data directory.
type Catalog struct {
	db  *sqlx.DB
	dir string
	log *slog.Logger
}

// Open creates dir if needed, connects to its catalog database and applies
// pending migrations.
func Open(dir string, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := connect(filepath.Join(dir, catalogFile))
	if err != nil {
		return nil, err
	}
	log.Debug("catalog opened", "dir", dir)
	return &Catalog{db: db, dir: dir, log: log}, nil
}

func connect(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000&_fk=true", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	return db, nil
}

func (c *Catalog) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("closing catalog: %w", err)
	}
	return nil
}

// Dir is the data directory.
func (c *Catalog) Dir() string { return c.dir }

func (c *Catalog) runDir(id string) string { return filepath.Join(c.dir, id) }
