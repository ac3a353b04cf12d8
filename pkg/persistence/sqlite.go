package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

const (
	dbDirPermissions  = 0750
	dbFilePermissions = 0600
	dbPingTimeout     = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	serial   TEXT    NOT NULL,
	kind     TEXT    NOT NULL,
	version  INTEGER NOT NULL,
	saved_at INTEGER NOT NULL,
	data     TEXT    NOT NULL,
	PRIMARY KEY (serial, kind)
) STRICT;
`

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. Its directory is created if missing.
	Path string

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long to wait for a database lock.
	BusyTimeout time.Duration
}

// SQLiteStore keeps snapshots in a single SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database and applies the schema.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dbDirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	_ = os.Chmod(cfg.Path, dbFilePermissions)

	return &SQLiteStore{db: db, path: cfg.Path, now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) LoadDesired(ctx context.Context, serial string) (*snapshot.Snapshot, error) {
	return s.load(ctx, serial, KindDesired)
}

func (s *SQLiteStore) SaveDesired(ctx context.Context, serial string, snap *snapshot.Snapshot) error {
	return s.save(ctx, serial, KindDesired, snap)
}

func (s *SQLiteStore) LoadActual(ctx context.Context, serial string) (*snapshot.Snapshot, error) {
	return s.load(ctx, serial, KindActual)
}

func (s *SQLiteStore) SaveActual(ctx context.Context, serial string, snap *snapshot.Snapshot) error {
	return s.save(ctx, serial, KindActual, snap)
}

func (s *SQLiteStore) Devices(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT serial FROM snapshots ORDER BY serial`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var serials []string
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			return nil, err
		}
		serials = append(serials, serial)
	}
	return serials, rows.Err()
}

// Clear removes every stored snapshot of a device.
func (s *SQLiteStore) Clear(ctx context.Context, serial string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE serial = ?`, serial)
	return err
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, serial string, kind Kind, snap *snapshot.Snapshot) error {
	if err := ValidSerial(serial); err != nil {
		return err
	}
	if snap == nil {
		snap = snapshot.New()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s snapshot for %s: %w", kind, serial, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (serial, kind, version, saved_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (serial, kind) DO UPDATE SET
			version = excluded.version,
			saved_at = excluded.saved_at,
			data = excluded.data`,
		serial, kind.String(), FormatVersion, s.now().UnixMilli(), string(data))
	if err != nil {
		return fmt.Errorf("saving %s snapshot for %s: %w", kind, serial, err)
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, serial string, kind Kind) (*snapshot.Snapshot, error) {
	if err := ValidSerial(serial); err != nil {
		return nil, err
	}

	var version int
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, data FROM snapshots WHERE serial = ? AND kind = ?`,
		serial, kind.String()).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, serial)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot for %s: %w", kind, serial, err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}

	snap := snapshot.New()
	if err := json.Unmarshal([]byte(data), snap); err != nil {
		return nil, fmt.Errorf("decode %s snapshot for %s: %w", kind, serial, err)
	}
	return snap, nil
}
