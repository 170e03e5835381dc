package nvram

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is a durable SQLite-backed Bank. Bytes written to it survive a
// warm restart of the simulated machine (and of the simulator process),
// which is the property the protection flag depends on.
type Store struct {
	db *sql.DB
}

// Open creates or opens the bank database at the given path.
// Applies required pragmas and the schema automatically; safe to call on
// an existing database.
//
// The database is configured with:
//   - WAL mode for concurrent read access
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadByte returns the byte at offset. Offsets never written read as 0.
func (s *Store) ReadByte(offset uint8) (byte, error) {
	if int(offset) >= Size {
		return 0, ErrOffsetOutOfRange
	}

	var value int
	err := s.db.QueryRow(`SELECT value FROM cells WHERE offset = ?`, offset).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read offset %d: %w", offset, err)
	}
	return byte(value), nil
}

// WriteByte durably stores value at offset. Rewriting an offset with the
// same value is an observable no-op, which keeps the flag write
// idempotent.
func (s *Store) WriteByte(offset uint8, value byte) error {
	if int(offset) >= Size {
		return ErrOffsetOutOfRange
	}

	_, err := s.db.Exec(`
		INSERT INTO cells (offset, value) VALUES (?, ?)
		ON CONFLICT(offset) DO UPDATE SET value = excluded.value
	`, offset, value)
	if err != nil {
		return fmt.Errorf("write offset %d: %w", offset, err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
