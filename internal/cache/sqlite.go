package cache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/trackposter/internal/monitoring"
	"github.com/banshee-data/trackposter/internal/track"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps cache records as rows of a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the cache database at path and
// brings its schema up to date.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serialises writers from the loader's worker pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure cache db: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed: that would close db.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Debugf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

func (s *SQLiteStore) Load(key string) (*track.Track, error) {
	var record string
	err := s.db.QueryRow(`SELECT record FROM tracks WHERE checksum = ?`, key).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return track.UnmarshalRecord([]byte(record))
}

func (s *SQLiteStore) Save(key string, t *track.Track) error {
	data, err := t.MarshalRecord()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO tracks (checksum, record, start_time, length) VALUES (?, ?, ?, ?)`,
		key, string(data), t.StartTime.UTC().Format(track.RecordTimeLayout), float64(t.Length),
	)
	return err
}

// Clear deletes every row; the schema stays.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM tracks`)
	return err
}

// Len is the number of stored records.
func (s *SQLiteStore) Len() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
