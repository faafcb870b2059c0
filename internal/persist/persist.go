// SPDX-License-Identifier: MPL-2.0

// Package persist stores inventory snapshots. Every backend reads and writes
// the whole document at once; there is no incremental persistence.
package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/medkit/pkg/snapshot"
)

// Backend kinds accepted by Open.
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// Backend loads and saves a full inventory snapshot.
type Backend interface {
	// Load returns the stored document, or an empty one when nothing has
	// been saved yet.
	Load(ctx context.Context) (snapshot.Document, error)
	// Save replaces the stored document with doc.
	Save(ctx context.Context, doc snapshot.Document) error
	// Location describes where the snapshot lives, for messages.
	Location() string
	// Close releases any resources held by the backend.
	Close() error
}

// Open returns the backend named kind rooted at path. An empty kind means JSON.
func Open(ctx context.Context, kind, path string, logger *log.Logger) (Backend, error) {
	switch strings.ToLower(kind) {
	case "", KindJSON:
		return NewJSONFile(path, logger), nil
	case KindSQLite:
		return OpenSQLite(ctx, path, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected %s or %s)", kind, KindJSON, KindSQLite)
	}
}
