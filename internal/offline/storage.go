package offline

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// BlobStore persists the serialized offline state between process restarts.
type BlobStore interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error) // nil, nil when the key does not exist
	Close() error
}

// SQLiteBlobStore keeps blobs in a single-table SQLite database on device.
// The pure-Go driver avoids a cgo toolchain on any client platform.
type SQLiteBlobStore struct {
	db *sql.DB
}

func OpenSQLiteBlobStore(path string) (*SQLiteBlobStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open offline storage: %w", err)
	}
	// One writer at a time; the store serializes access anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init offline storage: %w", err)
	}
	return &SQLiteBlobStore{db: db}, nil
}

func (s *SQLiteBlobStore) Save(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save blob %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteBlobStore) Load(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blob %q: %w", key, err)
	}
	return data, nil
}

func (s *SQLiteBlobStore) Close() error {
	return s.db.Close()
}
