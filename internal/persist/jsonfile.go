// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/invowk/medkit/pkg/snapshot"
)

// JSONFile keeps the snapshot in a single JSON document on disk.
type JSONFile struct {
	path   string
	logger *log.Logger
}

// NewJSONFile returns a backend for the document at path.
func NewJSONFile(path string, logger *log.Logger) *JSONFile {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &JSONFile{path: path, logger: logger}
}

// Load reads the document. A missing file is an empty inventory.
func (f *JSONFile) Load(ctx context.Context) (snapshot.Document, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Document{}, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.logger.Debug("no snapshot yet", "path", f.path)
			return snapshot.Document{}, nil
		}
		return snapshot.Document{}, fmt.Errorf("read snapshot: %w", err)
	}
	doc, err := snapshot.Unmarshal(data, snapshot.FormatJSON)
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("%s: %w", f.path, err)
	}
	f.logger.Debug("snapshot loaded", "path", f.path, "records", doc.Len())
	return doc, nil
}

// Save writes doc to a temporary file next to the target and renames it into
// place, so readers never observe a partial document.
func (f *JSONFile) Save(ctx context.Context, doc snapshot.Document) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snapshot.Marshal(doc, snapshot.FormatJSON)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	f.logger.Debug("snapshot saved", "path", f.path, "records", doc.Len())
	return nil
}

// Location returns the file path.
func (f *JSONFile) Location() string { return f.path }

// Close is a no-op.
func (f *JSONFile) Close() error { return nil }
