package store

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/Estelle64/pluie-app/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	markerLastExport        = "last_export"
	markerLastBackupAttempt = "last_backup_attempt"
)

// SQLiteBackend persists the snapshot in a local SQLite database, one
// table per measurement kind. Save still has full-snapshot semantics: the
// tables are rewritten in a single transaction.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (and migrates) the database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func runMigrations(dbPath string) error {
	// Separate connection so the migration driver does not interfere with
	// the main one.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Load() (*core.WeatherLog, error) {
	l := core.NewWeatherLog()
	empty := true

	rows, err := b.db.Query(`SELECT date, mm FROM rainfall`)
	if err != nil {
		return nil, fmt.Errorf("load rainfall: %w", err)
	}
	for rows.Next() {
		var date string
		var mm float64
		if err := rows.Scan(&date, &mm); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan rainfall: %w", err)
		}
		l.Rainfall[date] = mm
		empty = false
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query(`SELECT date, morning, afternoon FROM temperature`)
	if err != nil {
		return nil, fmt.Errorf("load temperature: %w", err)
	}
	for rows.Next() {
		var date string
		var morning, afternoon sql.NullFloat64
		if err := rows.Scan(&date, &morning, &afternoon); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan temperature: %w", err)
		}
		var t core.Temperature
		if morning.Valid {
			v := morning.Float64
			t.Morning = &v
		}
		if afternoon.Valid {
			v := afternoon.Float64
			t.Afternoon = &v
		}
		l.Temperature[date] = t
		empty = false
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query(`SELECT date, kwh FROM watts`)
	if err != nil {
		return nil, fmt.Errorf("load watts: %w", err)
	}
	for rows.Next() {
		var date string
		var kwh float64
		if err := rows.Scan(&date, &kwh); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan watts: %w", err)
		}
		l.Watts[date] = kwh
		empty = false
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = b.db.Query(`SELECT date, body FROM comments`)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	for rows.Next() {
		var date, body string
		if err := rows.Scan(&date, &body); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan comments: %w", err)
		}
		l.Comments[date] = body
		empty = false
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if empty {
		return nil, ErrNoSnapshot
	}
	return l, nil
}

func (b *SQLiteBackend) Save(l *core.WeatherLog) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"rainfall", "temperature", "watts", "comments"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for date, mm := range l.Rainfall {
		if _, err := tx.Exec(`INSERT INTO rainfall (date, mm) VALUES (?, ?)`, date, mm); err != nil {
			return fmt.Errorf("insert rainfall: %w", err)
		}
	}
	for date, t := range l.Temperature {
		morning := nullable(t.Morning)
		afternoon := nullable(t.Afternoon)
		if _, err := tx.Exec(`INSERT INTO temperature (date, morning, afternoon) VALUES (?, ?, ?)`, date, morning, afternoon); err != nil {
			return fmt.Errorf("insert temperature: %w", err)
		}
	}
	for date, kwh := range l.Watts {
		if _, err := tx.Exec(`INSERT INTO watts (date, kwh) VALUES (?, ?)`, date, kwh); err != nil {
			return fmt.Errorf("insert watts: %w", err)
		}
	}
	for date, body := range l.Comments {
		if _, err := tx.Exec(`INSERT INTO comments (date, body) VALUES (?, ?)`, date, body); err != nil {
			return fmt.Errorf("insert comments: %w", err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) LoadMarkers() (Markers, error) {
	var m Markers
	rows, err := b.db.Query(`SELECT name, stamp FROM markers`)
	if err != nil {
		return m, fmt.Errorf("load markers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, stamp string
		if err := rows.Scan(&name, &stamp); err != nil {
			return Markers{}, fmt.Errorf("scan markers: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return Markers{}, fmt.Errorf("parse marker %s: %w", name, err)
		}
		switch name {
		case markerLastExport:
			m.LastExport = at
		case markerLastBackupAttempt:
			m.LastBackupAttempt = at
		}
	}
	return m, rows.Err()
}

func (b *SQLiteBackend) SaveMarkers(m Markers) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin markers tx: %w", err)
	}
	defer tx.Rollback()

	for name, at := range map[string]time.Time{
		markerLastExport:        m.LastExport,
		markerLastBackupAttempt: m.LastBackupAttempt,
	} {
		if at.IsZero() {
			if _, err := tx.Exec(`DELETE FROM markers WHERE name = ?`, name); err != nil {
				return fmt.Errorf("clear marker %s: %w", name, err)
			}
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO markers (name, stamp) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET stamp = excluded.stamp`,
			name, at.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("store marker %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ Backend = (*SQLiteBackend)(nil)
