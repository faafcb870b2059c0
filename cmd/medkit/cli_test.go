// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/medkit/internal/testutil"
	"github.com/invowk/medkit/pkg/medicine"
	"github.com/invowk/medkit/pkg/snapshot"
)

// cli runs commands in-process against an isolated config directory and
// data file, with today pinned to testutil.ReferenceDate (2025-06-15).
type cli struct {
	t         *testing.T
	configDir string
	dataPath  string
	clock     *testutil.FakeClock
}

type result struct {
	stdout string
	stderr string
	err    error
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	return &cli{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataPath:  filepath.Join(dir, "data", "medicines.json"),
		clock:     testutil.NewFakeClock(time.Time{}),
	}
}

func (c *cli) run(args ...string) result {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Clock:     c.clock,
		ConfigDir: c.configDir,
		Stdout:    &stdout,
		Stderr:    &stderr,
	})
	root := newRootCommand(app)
	root.SetArgs(append(args, "--data", c.dataPath))
	err := root.ExecuteContext(c.t.Context())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun fails the test when the command fails.
func (c *cli) mustRun(args ...string) result {
	c.t.Helper()
	r := c.run(args...)
	if r.err != nil {
		c.t.Fatalf("medkit %s: %v\nstderr:\n%s", strings.Join(args, " "), r.err, r.stderr)
	}
	return r
}

func (c *cli) addPills(title, expires, capacity string) result {
	c.t.Helper()
	return c.mustRun("add", "--variant", "pills", "--title", title, "--expires", expires, "--capacity", capacity)
}

// stored reads the data file back through the snapshot codec.
func (c *cli) stored() snapshot.Document {
	c.t.Helper()
	doc, err := snapshot.Unmarshal(testutil.MustReadFile(c.t, c.dataPath), snapshot.FormatJSON)
	if err != nil {
		c.t.Fatalf("data file does not decode: %v", err)
	}
	return doc
}

func assertExitCode(t *testing.T, err error, want int) {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError with code %d", err, err, want)
	}
	if exitErr.Code != want {
		t.Errorf("exit code = %d, want %d (error: %v)", exitErr.Code, want, err)
	}
}

func TestAddListRemove(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	r := c.addPills("  Aspirin ", "2025-12-01", "20")
	if !strings.Contains(r.stdout, "Added #1 pills - aspirin: expires 2025-12-01; 20/20 tab.") {
		t.Errorf("add output = %q", r.stdout)
	}

	r = c.mustRun("list")
	for _, want := range []string{"aspirin", "2025-12-01", "20/20 tab.", "ID", "TITLE"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, r.stdout)
		}
	}

	doc := c.stored()
	if doc.Len() != 1 || *doc.Medicines[0].Title != "aspirin" || *doc.Medicines[0].Variant != int(medicine.VariantPills) {
		t.Fatalf("stored document = %+v", doc)
	}

	c.mustRun("remove", "1")
	if doc := c.stored(); doc.Len() != 0 || doc.LastID != 1 {
		t.Errorf("stored document after remove = %d package(s), lastId %d; want 0 and 1", doc.Len(), doc.LastID)
	}
	if r := c.mustRun("list"); !strings.Contains(r.stdout, "No packages found.") {
		t.Errorf("list of empty inventory = %q", r.stdout)
	}

	// Removed IDs are never reused.
	if r := c.addPills("ibuprofen", "2025-12-01", "10"); !strings.Contains(r.stdout, "#2") {
		t.Errorf("second add output = %q, want id #2", r.stdout)
	}
}

func TestRemove_HighestIDStaysRetired(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	c.addPills("aspirin", "2025-12-01", "20")
	c.addPills("ibuprofen", "2025-12-01", "20")
	c.mustRun("remove", "2")

	if r := c.addPills("paracetamol", "2025-12-01", "20"); !strings.Contains(r.stdout, "Added #3 ") {
		t.Errorf("add after removing #2 = %q, want id #3", r.stdout)
	}
	if doc := c.stored(); doc.LastID != 3 {
		t.Errorf("stored lastId = %d, want 3", doc.LastID)
	}
}

func TestAdd_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		sentinel error
	}{
		{"short title", []string{"--variant", "pills", "--title", "ab", "--expires", "2025-12-01", "--capacity", "5"}, medicine.ErrRange},
		{"bad title characters", []string{"--variant", "pills", "--title", "asp!rin", "--expires", "2025-12-01", "--capacity", "5"}, medicine.ErrFormat},
		{"bad date", []string{"--variant", "pills", "--title", "aspirin", "--expires", "01/12/2025", "--capacity", "5"}, medicine.ErrFormat},
		{"date too far", []string{"--variant", "pills", "--title", "aspirin", "--expires", "2030-01-01", "--capacity", "5"}, medicine.ErrRange},
		{"zero capacity", []string{"--variant", "pills", "--title", "aspirin", "--expires", "2025-12-01", "--capacity", "0"}, medicine.ErrRange},
		{"quantity above capacity", []string{"--variant", "drops", "--title", "eye drops", "--expires", "2025-12-01", "--capacity", "5", "--quantity", "6"}, medicine.ErrRange},
		{"unknown variant", []string{"--variant", "syrup", "--title", "aspirin", "--expires", "2025-12-01", "--capacity", "5"}, medicine.ErrUnknownVariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newCLI(t)

			r := c.run(append([]string{"add"}, tt.args...)...)
			assertExitCode(t, r.err, ExitInvalidInput)
			if !errors.Is(r.err, tt.sentinel) {
				t.Errorf("error = %v, want %v", r.err, tt.sentinel)
			}
			if r.stderr == "" {
				t.Error("expected guidance on stderr")
			}
		})
	}
}

func TestAdd_Duplicates(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	c.addPills("aspirin", "2025-12-01", "20")
	r := c.addPills("aspirin", "2025-12-01", "20")
	if !strings.Contains(r.stderr, "identical package is already stored (#1)") {
		t.Errorf("duplicate warning missing, stderr = %q", r.stderr)
	}

	r = c.run("add", "--variant", "pills", "--title", "aspirin", "--expires", "2025-12-01", "--capacity", "20", "--no-duplicates")
	assertExitCode(t, r.err, ExitInvalidInput)
	if !errors.Is(r.err, medicine.ErrConflict) {
		t.Errorf("error = %v, want conflict", r.err)
	}
	if got := c.stored().Len(); got != 2 {
		t.Errorf("stored packages = %d, want 2", got)
	}
}

func TestTake(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	c.mustRun("add", "--variant", "drops", "--title", "eye drops", "--expires", "2025-12-01", "--capacity", "10")
	c.addPills("expired pills", "2025-06-10", "20")

	r := c.mustRun("take", "1", "20")
	if !strings.Contains(r.stdout, "Took 20 drops from #1; 9 ml left") {
		t.Errorf("take output = %q", r.stdout)
	}
	if got := *c.stored().Medicines[0].CurrentQuantity; got != 9 {
		t.Errorf("stored quantity = %v, want 9", got)
	}

	r = c.mustRun("take", "2")
	if !strings.Contains(r.stderr, "expired on 2025-06-10") {
		t.Errorf("refusal output = %q", r.stderr)
	}
	if got := *c.stored().Medicines[1].CurrentQuantity; got != 20 {
		t.Errorf("expired package quantity = %v, want unchanged 20", got)
	}

	r = c.mustRun("take", "1", "1000")
	if !strings.Contains(r.stderr, "only 9 ml left") {
		t.Errorf("insufficient refusal = %q", r.stderr)
	}

	assertExitCode(t, c.run("take", "99").err, ExitNotFound)
	assertExitCode(t, c.run("take", "one").err, ExitInvalidInput)
	assertExitCode(t, c.run("take", "1", "0").err, ExitInvalidInput)
}

func TestEdit(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	c.addPills("aspirin", "2025-12-01", "20")

	r := c.mustRun("edit", "1", "--quantity", "5", "--title", "Aspirin Cardio")
	if !strings.Contains(r.stdout, "aspirin cardio: expires 2025-12-01; 5/20 tab.") {
		t.Errorf("edit output = %q", r.stdout)
	}

	r = c.mustRun("edit", "aspirin cardio", "--variant", "drops", "--capacity", "10")
	if !strings.Contains(r.stdout, "Updated #1 drops - aspirin cardio") {
		t.Errorf("variant change output = %q", r.stdout)
	}
	rec := c.stored().Medicines[0]
	if *rec.Variant != int(medicine.VariantDrops) || *rec.ID != 1 || *rec.Capacity != 10 || *rec.CurrentQuantity != 5 {
		t.Errorf("stored record = %+v", rec)
	}

	assertExitCode(t, c.run("edit", "1").err, ExitInvalidInput)
	assertExitCode(t, c.run("edit", "1", "--quantity", "50").err, ExitInvalidInput)
	if got := *c.stored().Medicines[0].CurrentQuantity; got != 5 {
		t.Errorf("failed edit changed quantity to %v", got)
	}

	r = c.run("edit", "42", "--quantity", "1")
	assertExitCode(t, r.err, ExitNotFound)
	if !strings.Contains(r.stderr, "No such package") {
		t.Errorf("missing not-found guidance:\n%s", r.stderr)
	}
}

func TestRemove_ByTitle(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	c.addPills("aspirin", "2025-12-01", "20")
	c.addPills("aspirin", "2026-01-01", "10")
	c.addPills("ibuprofen", "2026-01-01", "10")

	r := c.run("remove", "aspirin")
	assertExitCode(t, r.err, ExitInvalidInput)
	if got := c.stored().Len(); got != 3 {
		t.Fatalf("ambiguous remove changed the inventory: %d packages", got)
	}

	r = c.mustRun("remove", "ASPIRIN", "--all")
	if strings.Count(r.stdout, "Removed") != 2 {
		t.Errorf("remove --all output = %q", r.stdout)
	}
	doc := c.stored()
	if doc.Len() != 1 || *doc.Medicines[0].Title != "ibuprofen" {
		t.Errorf("remaining = %+v", doc)
	}

	assertExitCode(t, c.run("remove", "paracetamol").err, ExitNotFound)
}

func TestList_Filters(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	c.addPills("aspirin", "2025-06-15", "20")
	c.mustRun("add", "--variant", "drops", "--title", "eye drops", "--expires", "2025-12-01", "--capacity", "10")

	r := c.mustRun("list", "--expired")
	if !strings.Contains(r.stdout, "aspirin") || strings.Contains(r.stdout, "eye drops") {
		t.Errorf("list --expired = %q", r.stdout)
	}
	r = c.mustRun("list", "--variant", "drops")
	if strings.Contains(r.stdout, "aspirin") || !strings.Contains(r.stdout, "eye drops") {
		t.Errorf("list --variant drops = %q", r.stdout)
	}
	r = c.mustRun("list", "--title", " Eye Drops ")
	if !strings.Contains(r.stdout, "eye drops") {
		t.Errorf("list --title = %q", r.stdout)
	}
	assertExitCode(t, c.run("list", "--variant", "syrup").err, ExitInvalidInput)
}

func TestReport_Raw(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	c.addPills("aspirin", "2025-06-01", "20")
	c.mustRun("add", "--variant", "drops", "--title", "eye drops", "--expires", "2025-07-01", "--capacity", "10", "--quantity", "1")

	r := c.mustRun("report", "--raw")
	for _, want := range []string{
		"# Medicine report for 2025-06-15",
		"**2** package(s) tracked: 1 drops, 1 pills.",
		"- **#1 aspirin** (pills): expired 2025-06-01",
		"- **#2 eye drops** (drops): in 16 day(s), on 2025-07-01",
		"## Low stock (below 20%)",
	} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("report missing %q:\n%s", want, r.stdout)
		}
	}

	r = c.mustRun("report", "--raw", "--days", "7", "--ratio", "0.05")
	if !strings.Contains(r.stdout, "## Expiring within 7 days") || !strings.Contains(r.stdout, "_Nothing is running low._") {
		t.Errorf("report with overrides:\n%s", r.stdout)
	}

	assertExitCode(t, c.run("report", "--ratio", "3").err, ExitFailure)
}

func TestExportImport(t *testing.T) {
	t.Parallel()
	src := newCLI(t)
	src.addPills("aspirin", "2025-12-01", "20")
	src.mustRun("add", "--variant", "drops", "--title", "капли", "--expires", "2026-02-01", "--capacity", "10", "--quantity", "0.35")

	exportPath := filepath.Join(t.TempDir(), "backup.toml")
	src.mustRun("export", "-o", exportPath)
	if data := string(testutil.MustReadFile(t, exportPath)); !strings.Contains(data, "[[medicines]]") {
		t.Fatalf("export is not TOML:\n%s", data)
	}

	r := src.mustRun("export", "--format", "json")
	if !strings.Contains(r.stdout, `"expirationDate": "2025-12-01"`) {
		t.Errorf("json export = %q", r.stdout)
	}

	dst := newCLI(t)
	dst.addPills("ibuprofen", "2025-12-01", "10")
	r = dst.mustRun("import", exportPath)
	if !strings.Contains(r.stdout, "Imported 1 package(s), skipped 1") {
		t.Errorf("import keeping ids = %q", r.stdout)
	}

	r = dst.mustRun("import", exportPath, "--renumber")
	if !strings.Contains(r.stdout, "Imported 2 package(s), skipped 0") {
		t.Errorf("import --renumber = %q", r.stdout)
	}
	doc := dst.stored()
	if doc.Len() != 4 || *doc.Medicines[3].ID != 4 || *doc.Medicines[3].CurrentQuantity != 0.35 {
		t.Errorf("stored after imports = %d records, last %+v", doc.Len(), doc.Medicines[doc.Len()-1])
	}
}

func TestImport_RejectsMalformedFileWhole(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	testutil.MustWriteFile(t, path, []byte(`{"medicines":[
		{"id":1,"title":"aspirin","expirationDate":"2025-12-01","capacity":20,"currentQuantity":20,"variant":1},
		{"id":2,"title":"syrup","expirationDate":"2025-12-01","capacity":20,"currentQuantity":20,"variant":9}]}`))

	r := c.run("import", path)
	assertExitCode(t, r.err, ExitInvalidInput)
	if !strings.Contains(r.stderr, "Import failed") {
		t.Errorf("missing import guidance:\n%s", r.stderr)
	}
	if r := c.mustRun("list"); !strings.Contains(r.stdout, "No packages found.") {
		t.Errorf("partial import stored packages:\n%s", r.stdout)
	}
}

func TestCorruptDataFile(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	testutil.MustWriteFile(t, c.dataPath, []byte(`{"medicines":[{"id":1}]}`))

	r := c.run("list")
	assertExitCode(t, r.err, ExitFailure)
	if !errors.Is(r.err, medicine.ErrFormat) {
		t.Errorf("error = %v, want format error", r.err)
	}
	if !strings.Contains(r.stderr, "could not be read") {
		t.Errorf("missing corrupt-file guidance:\n%s", r.stderr)
	}
}

func TestSQLiteBackend(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	c.dataPath = filepath.Join(t.TempDir(), "medkit.db")

	c.mustRun("add", "--variant", "pills", "--title", "aspirin", "--expires", "2025-12-01", "--capacity", "20", "--backend", "sqlite")
	c.mustRun("take", "1", "3", "--backend", "sqlite")
	r := c.mustRun("list", "--backend", "sqlite")
	if !strings.Contains(r.stdout, "17/20 tab.") {
		t.Errorf("sqlite list = %q", r.stdout)
	}

	assertExitCode(t, c.run("list", "--backend", "postgres").err, ExitFailure)
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	r := c.mustRun("config", "show")
	for _, want := range []string{"(using defaults)", "backend: json", c.dataPath, "expiring_within_days: 30"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, r.stdout)
		}
	}

	r = c.mustRun("config", "init")
	if !strings.Contains(r.stdout, "Created default configuration") {
		t.Errorf("config init = %q", r.stdout)
	}
	if r = c.mustRun("config", "init"); !strings.Contains(r.stdout, "already exists") {
		t.Errorf("second config init = %q", r.stdout)
	}

	r = c.mustRun("config", "path")
	if !strings.Contains(r.stdout, filepath.Join(c.configDir, "config.cue")) || !strings.Contains(r.stdout, c.dataPath) {
		t.Errorf("config path = %q", r.stdout)
	}

	r = c.mustRun("config", "dump", "--backend", "sqlite")
	if !strings.Contains(r.stdout, `backend: "sqlite"`) {
		t.Errorf("config dump = %q", r.stdout)
	}
}

func TestIssuesCommand(t *testing.T) {
	t.Parallel()
	c := newCLI(t)

	r := c.mustRun("issues")
	for _, want := range []string{"GUIDE", "The inventory file could not be read!", "The inventory could not be saved!"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("issues output missing %q:\n%s", want, r.stdout)
		}
	}

	r = c.mustRun("issues", "1")
	if !strings.Contains(r.stdout, "The inventory file could not be read!") || !strings.Contains(r.stdout, "Things you can try") {
		t.Errorf("issues 1 output = %q", r.stdout)
	}

	assertExitCode(t, c.run("issues", "99").err, ExitNotFound)
	assertExitCode(t, c.run("issues", "one").err, ExitInvalidInput)
}

func TestConfigFileThresholds(t *testing.T) {
	t.Parallel()
	c := newCLI(t)
	testutil.MustWriteFile(t, filepath.Join(c.configDir, "config.cue"), []byte("report: expiring_within_days: 3\n"))

	r := c.mustRun("report", "--raw")
	if !strings.Contains(r.stdout, "## Expiring within 3 days") {
		t.Errorf("report ignores config file:\n%s", r.stdout)
	}

	testutil.MustWriteFile(t, filepath.Join(c.configDir, "config.cue"), []byte(`storage: backend: "mongo"`+"\n"))
	r = c.run("list")
	assertExitCode(t, r.err, ExitFailure)
	if !strings.Contains(r.stderr, "Failed to load configuration") {
		t.Errorf("missing config guidance:\n%s", r.stderr)
	}
}
