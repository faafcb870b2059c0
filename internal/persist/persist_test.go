// SPDX-License-Identifier: MPL-2.0

package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/medkit/internal/testutil"
	"github.com/invowk/medkit/pkg/medicine"
	"github.com/invowk/medkit/pkg/snapshot"
)

func ptr[T any](v T) *T { return &v }

func sampleDocument() snapshot.Document {
	return snapshot.Document{Medicines: []snapshot.Record{
		{ID: ptr(1), Title: ptr("aspirin"), ExpirationDate: ptr("2025-07-15"), Capacity: ptr(20.0), CurrentQuantity: ptr(12.0), Variant: ptr(1)},
		{ID: ptr(3), Title: ptr("eye drops"), ExpirationDate: ptr("2025-08-01"), Capacity: ptr(10.0), CurrentQuantity: ptr(0.35), Variant: ptr(0)},
	}}
}

func openBackend(t *testing.T, kind string) Backend {
	t.Helper()
	name := "medicines.json"
	if kind == KindSQLite {
		name = "medkit.db"
	}
	b, err := Open(t.Context(), kind, filepath.Join(t.TempDir(), "nested", name), nil)
	if err != nil {
		t.Fatalf("Open(%q) unexpected error: %v", kind, err)
	}
	t.Cleanup(func() { testutil.MustClose(t, b) })
	return b
}

func assertSameDocument(t *testing.T, got, want snapshot.Document) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("document has %d records, want %d", got.Len(), want.Len())
	}
	for i := range want.Medicines {
		g, w := got.Medicines[i], want.Medicines[i]
		if *g.ID != *w.ID || *g.Title != *w.Title || *g.ExpirationDate != *w.ExpirationDate ||
			*g.Capacity != *w.Capacity || *g.CurrentQuantity != *w.CurrentQuantity || *g.Variant != *w.Variant {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestBackends_EmptyThenRoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{KindJSON, KindSQLite} {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			b := openBackend(t, kind)

			doc, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("Load() on fresh backend unexpected error: %v", err)
			}
			if doc.Len() != 0 {
				t.Fatalf("fresh backend has %d records, want 0", doc.Len())
			}

			want := sampleDocument()
			if err := b.Save(ctx, want); err != nil {
				t.Fatalf("Save() unexpected error: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			assertSameDocument(t, got, want)

			// A second save replaces the document wholesale.
			shorter := snapshot.Document{Medicines: want.Medicines[1:]}
			if err := b.Save(ctx, shorter); err != nil {
				t.Fatalf("second Save() unexpected error: %v", err)
			}
			got, err = b.Load(ctx)
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			assertSameDocument(t, got, shorter)
		})
	}
}

func TestJSONFile_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "medicines.json")
	b, err := Open(t.Context(), KindJSON, path, nil)
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}

	if err := b.Save(t.Context(), sampleDocument()); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "medicines.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only medicines.json", names)
	}
	if b.Location() != path {
		t.Errorf("Location() = %q, want %q", b.Location(), path)
	}
}

func TestJSONFile_CorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "medicines.json")
	if err := os.WriteFile(path, []byte(`{"medicines": [`), 0o600); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	b, _ := Open(t.Context(), KindJSON, path, nil)
	if _, err := b.Load(t.Context()); !errors.Is(err, medicine.ErrFormat) {
		t.Errorf("Load(corrupt) error = %v, want ErrFormat", err)
	}
}

func TestJSONFile_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	b, _ := Open(t.Context(), KindJSON, filepath.Join(t.TempDir(), "medicines.json"), nil)
	if err := b.Save(ctx, sampleDocument()); !errors.Is(err, context.Canceled) {
		t.Errorf("Save(canceled) error = %v, want context.Canceled", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	t.Parallel()

	if _, err := Open(t.Context(), "postgres", "x", nil); err == nil {
		t.Error("Open(postgres) should fail")
	}
}
