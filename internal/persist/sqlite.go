// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/invowk/medkit/pkg/snapshot"
)

// medicinesBucket is the state row holding the inventory document.
const medicinesBucket = "medicines"

// SQLite keeps the snapshot as a JSON payload in a single-row-per-bucket
// state table.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *log.Logger) (*SQLite, error) {
	if path == "" {
		path = "medkit.db"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLite{db: db, path: path, logger: logger}, nil
}

// Load reads the inventory document. An empty table is an empty inventory.
func (s *SQLite) Load(ctx context.Context) (snapshot.Document, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, medicinesBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("no snapshot yet", "path", s.path)
		return snapshot.Document{}, nil
	}
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("select state: %w", err)
	}
	doc, err := snapshot.Unmarshal(payload, snapshot.FormatJSON)
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("decode %s: %w", medicinesBucket, err)
	}
	s.logger.Debug("snapshot loaded", "path", s.path, "records", doc.Len())
	return doc, nil
}

// Save upserts the inventory document in one transaction.
func (s *SQLite) Save(ctx context.Context, doc snapshot.Document) (retErr error) {
	data, err := snapshot.Marshal(doc, snapshot.FormatJSON)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		medicinesBucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", medicinesBucket, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("snapshot saved", "path", s.path, "records", doc.Len())
	return nil
}

// Location returns the database path.
func (s *SQLite) Location() string { return s.path }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
