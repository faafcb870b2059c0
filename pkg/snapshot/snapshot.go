// SPDX-License-Identifier: MPL-2.0

// Package snapshot converts an inventory to and from its persisted document:
// an ordered list of flat records, each carrying every package field, the
// package ID and an integer variant discriminator. Restoring is
// all-or-nothing: the first malformed record aborts the whole decode.
package snapshot

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/invowk/medkit/pkg/medicine"
)

type (
	// Document is the persisted state of an inventory. LastID is the highest
	// ID ever handed out, including IDs of packages removed since; documents
	// written without it restore the counter from the records alone.
	Document struct {
		Medicines []Record `json:"medicines" toml:"medicines"`
		LastID    int      `json:"lastId,omitempty" toml:"lastId,omitempty"`
	}

	// Record is one persisted package. Pointer fields distinguish a missing
	// field from a zero value.
	Record struct {
		ID              *int     `json:"id" toml:"id" validate:"required"`
		Title           *string  `json:"title" toml:"title" validate:"required"`
		ExpirationDate  *string  `json:"expirationDate" toml:"expirationDate" validate:"required"`
		Capacity        *float64 `json:"capacity" toml:"capacity" validate:"required"`
		CurrentQuantity *float64 `json:"currentQuantity" toml:"currentQuantity" validate:"required"`
		Variant         *int     `json:"variant" toml:"variant" validate:"required"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their persisted names rather than Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Len returns the number of records.
func (d Document) Len() int { return len(d.Medicines) }

// Encode returns the document for packages, preserving their order, with the
// inventory's ID counter.
func Encode(packages []medicine.Package, lastID int) Document {
	doc := Document{Medicines: make([]Record, 0, len(packages)), LastID: lastID}
	for _, p := range packages {
		doc.Medicines = append(doc.Medicines, RecordOf(p))
	}
	return doc
}

// RecordOf flattens one package.
func RecordOf(p medicine.Package) Record {
	id := p.ID()
	title := p.Title()
	exp := medicine.FormatDate(p.ExpirationDate())
	capacity := p.Capacity()
	qty := p.CurrentQuantity()
	variant := int(p.Variant())
	return Record{
		ID:              &id,
		Title:           &title,
		ExpirationDate:  &exp,
		Capacity:        &capacity,
		CurrentQuantity: &qty,
		Variant:         &variant,
	}
}

// Decode rebuilds every record of doc through factory and restores its
// stored ID. Any failing record aborts the decode and no packages are
// returned. A missing field or unknown discriminator fails with KindFormat;
// field validation failures keep their own kind.
func Decode(doc Document, factory medicine.Factory) ([]medicine.Package, error) {
	if doc.LastID < 0 {
		return nil, &medicine.Error{Op: "decode", Field: "lastId", Kind: medicine.KindFormat, Value: doc.LastID,
			Reason: "must not be negative"}
	}
	packages := make([]medicine.Package, 0, len(doc.Medicines))
	for i, rec := range doc.Medicines {
		p, err := rec.Package(factory)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		packages = append(packages, p)
	}
	return packages, nil
}

// Package rebuilds the package described by r.
func (r Record) Package(factory medicine.Factory) (medicine.Package, error) {
	if err := r.Validate(); err != nil {
		return medicine.Package{}, err
	}

	variant := medicine.Variant(*r.Variant)
	if err := variant.Validate(); err != nil {
		return medicine.Package{}, &medicine.Error{Op: "decode", Field: "variant", Kind: medicine.KindFormat,
			Value: *r.Variant, Reason: "unrecognized discriminator", Err: err}
	}
	exp, err := medicine.ParseDate(*r.ExpirationDate)
	if err != nil {
		return medicine.Package{}, err
	}

	p, err := factory.Create(variant, *r.Title, exp, *r.Capacity, r.CurrentQuantity)
	if err != nil {
		return medicine.Package{}, err
	}
	if err := p.AssignID(*r.ID); err != nil {
		return medicine.Package{}, err
	}
	return p, nil
}

// Validate checks that every field is present.
func (r Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var missing []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
	}
	field := strings.Join(missing, ",")
	return &medicine.Error{Op: "decode", Field: field, Kind: medicine.KindFormat,
		Reason: "required field missing", Err: err}
}
