// SPDX-License-Identifier: MPL-2.0

package snapshot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/invowk/medkit/internal/testutil"
	"github.com/invowk/medkit/pkg/medicine"
)

func ptr[T any](v T) *T { return &v }

func newTestFactory() (medicine.Factory, *testutil.FakeClock) {
	clock := testutil.NewFakeClock(time.Time{})
	return medicine.NewFactory(clock), clock
}

func samplePackages(t *testing.T) ([]medicine.Package, medicine.Factory) {
	t.Helper()
	factory, clock := newTestFactory()
	specs := []struct {
		id       int
		variant  medicine.Variant
		title    string
		days     int
		capacity float64
		qty      float64
	}{
		{1, medicine.VariantPills, "aspirin", 30, 20, 12},
		{4, medicine.VariantDrops, "назальные капли", -5, 10, 0.35},
		{9, medicine.VariantPills, "vitamin d3", 400, 60, 0},
	}
	out := make([]medicine.Package, 0, len(specs))
	for _, s := range specs {
		p, err := factory.Create(s.variant, s.title, clock.DaysFromNow(s.days), s.capacity, ptr(s.qty))
		if err != nil {
			t.Fatalf("Create(%q) unexpected error: %v", s.title, err)
		}
		if err := p.AssignID(s.id); err != nil {
			t.Fatalf("AssignID(%d) unexpected error: %v", s.id, err)
		}
		out = append(out, p)
	}
	return out, factory
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			packages, factory := samplePackages(t)
			data, err := Marshal(Encode(packages, 0), format)
			if err != nil {
				t.Fatalf("Marshal() unexpected error: %v", err)
			}
			doc, err := Unmarshal(data, format)
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v\n%s", err, data)
			}
			restored, err := Decode(doc, factory)
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}

			if len(restored) != len(packages) {
				t.Fatalf("restored %d packages, want %d", len(restored), len(packages))
			}
			for i := range packages {
				if !restored[i].Equal(packages[i]) {
					t.Errorf("package %d: restored %v, want %v", i, restored[i], packages[i])
				}
			}
		})
	}
}

func TestRoundTrip_KeepsLastID(t *testing.T) {
	t.Parallel()

	packages, factory := samplePackages(t)
	for _, format := range Formats() {
		data, err := Marshal(Encode(packages, 9), format)
		if err != nil {
			t.Fatalf("Marshal(%s) unexpected error: %v", format, err)
		}
		doc, err := Unmarshal(data, format)
		if err != nil {
			t.Fatalf("Unmarshal(%s) unexpected error: %v\n%s", format, err, data)
		}
		if doc.LastID != 9 {
			t.Errorf("%s LastID = %d, want 9\n%s", format, doc.LastID, data)
		}
		if _, err := Decode(doc, factory); err != nil {
			t.Errorf("Decode(%s) unexpected error: %v", format, err)
		}
	}

	legacy, err := Unmarshal([]byte(`{"medicines": []}`), FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if legacy.LastID != 0 {
		t.Errorf("document without lastId has LastID %d, want 0", legacy.LastID)
	}
}

func TestDecode_RejectsNegativeLastID(t *testing.T) {
	t.Parallel()

	factory, _ := newTestFactory()
	doc, err := Unmarshal([]byte(`{"medicines": [], "lastId": -1}`), FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if _, err := Decode(doc, factory); !errors.Is(err, medicine.ErrFormat) {
		t.Errorf("Decode() error = %v, want %v", err, medicine.ErrFormat)
	}
}

func TestMarshal_JSONLayout(t *testing.T) {
	t.Parallel()

	packages, _ := samplePackages(t)
	data, err := Marshal(Encode(packages[:1], 0), FormatJSON)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	for _, want := range []string{
		`"medicines"`, `"id": 1`, `"title": "aspirin"`, `"expirationDate": "2025-07-15"`,
		`"capacity": 20`, `"currentQuantity": 12`, `"variant": 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON output missing %s:\n%s", want, data)
		}
	}

	empty, err := Marshal(Document{}, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal(empty) unexpected error: %v", err)
	}
	if !strings.Contains(string(empty), `"medicines": []`) {
		t.Errorf("empty document should encode an empty list, got %s", empty)
	}
}

func TestUnmarshal_BlankIsEmpty(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"", "  \n", "{}"} {
		doc, err := Unmarshal([]byte(data), FormatJSON)
		if err != nil {
			t.Errorf("Unmarshal(%q) unexpected error: %v", data, err)
		}
		if doc.Len() != 0 {
			t.Errorf("Unmarshal(%q) has %d records, want 0", data, doc.Len())
		}
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"broken json", `{"medicines": [`, FormatJSON},
		{"string id", `{"medicines": [{"id": "one"}]}`, FormatJSON},
		{"fractional id", `{"medicines": [{"id": 1.5}]}`, FormatJSON},
		{"broken toml", "[[medicines]\nid = 1", FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Unmarshal([]byte(tt.data), tt.format); !errors.Is(err, medicine.ErrFormat) {
				t.Errorf("Unmarshal() error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestDecode_IsAllOrNothing(t *testing.T) {
	t.Parallel()

	factory, _ := newTestFactory()
	good := `{"id": 1, "title": "aspirin", "expirationDate": "2025-07-01", "capacity": 20, "currentQuantity": 20, "variant": 1}`

	tests := []struct {
		name   string
		record string
		want   []error
	}{
		{"missing title", `{"id": 2, "expirationDate": "2025-07-01", "capacity": 20, "currentQuantity": 20, "variant": 1}`, []error{medicine.ErrFormat}},
		{"missing quantity", `{"id": 2, "title": "aspirin", "expirationDate": "2025-07-01", "capacity": 20, "variant": 0}`, []error{medicine.ErrFormat}},
		{"unknown discriminator", `{"id": 2, "title": "aspirin", "expirationDate": "2025-07-01", "capacity": 20, "currentQuantity": 20, "variant": 7}`, []error{medicine.ErrFormat, medicine.ErrUnknownVariant}},
		{"malformed date", `{"id": 2, "title": "aspirin", "expirationDate": "01.07.2025", "capacity": 20, "currentQuantity": 20, "variant": 1}`, []error{medicine.ErrFormat}},
		{"invalid id", `{"id": 0, "title": "aspirin", "expirationDate": "2025-07-01", "capacity": 20, "currentQuantity": 20, "variant": 1}`, []error{medicine.ErrRange}},
		{"negative capacity", `{"id": 2, "title": "aspirin", "expirationDate": "2025-07-01", "capacity": -1, "currentQuantity": 0, "variant": 1}`, []error{medicine.ErrRange}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Unmarshal([]byte(`{"medicines": [`+good+`, `+tt.record+`]}`), FormatJSON)
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			packages, err := Decode(doc, factory)
			if packages != nil {
				t.Errorf("Decode() returned %d packages alongside a failure", len(packages))
			}
			for _, want := range tt.want {
				if !errors.Is(err, want) {
					t.Errorf("Decode() error = %v, want %v", err, want)
				}
			}
			if err != nil && !strings.Contains(err.Error(), "record 1") {
				t.Errorf("Decode() error %q should name the failing record", err)
			}
		})
	}
}

func TestDecode_ZeroQuantityIsPresent(t *testing.T) {
	t.Parallel()

	factory, _ := newTestFactory()
	doc, err := Unmarshal([]byte(`{"medicines": [{"id": 3, "title": "eye drops", "expirationDate": "2025-08-01", "capacity": 5, "currentQuantity": 0, "variant": 0}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	packages, err := Decode(doc, factory)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	p := packages[0]
	if p.ID() != 3 || p.Variant() != medicine.VariantDrops || !p.IsEmpty() {
		t.Errorf("Decode() = %v, want empty drops with ID 3", p)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" toml ", FormatTOML, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}

	if FormatFromPath("backup.TOML") != FormatTOML || FormatFromPath("medicines.json") != FormatJSON {
		t.Error("FormatFromPath() did not infer the format from the extension")
	}
}
