// SPDX-License-Identifier: MPL-2.0

package medicine

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// quantityPrecision is the number of decimal places quantities are rounded to
// after consumption, so repeated drop arithmetic does not drift.
const quantityPrecision = 1e6

type (
	// Package is one tracked medicine package. All fields are validated on
	// construction and on Update. Package has value semantics: assigning or
	// passing it copies every field, so a copy never aliases another's state.
	Package struct {
		id              int
		title           string
		expirationDate  time.Time
		capacity        float64
		currentQuantity float64
		form            dosageForm
		clock           Clock
	}

	// Patch lists the fields to change in Update. Nil fields are left untouched.
	Patch struct {
		Title           *string
		ExpirationDate  *time.Time
		Capacity        *float64
		CurrentQuantity *float64
	}
)

func newPackage(form dosageForm, clock Clock, title string, expirationDate time.Time, capacity float64, currentQuantity *float64) (Package, error) {
	p := Package{form: form, clock: clock}
	var err error
	if p.title, err = ValidateTitle(title); err != nil {
		return Package{}, err
	}
	if p.expirationDate, err = ValidateExpirationDate(expirationDate, today(clock)); err != nil {
		return Package{}, err
	}
	if p.capacity, err = ValidateCapacity(capacity); err != nil {
		return Package{}, err
	}
	p.currentQuantity = p.capacity
	if currentQuantity != nil {
		if p.currentQuantity, err = ValidateQuantity(*currentQuantity); err != nil {
			return Package{}, err
		}
	}
	if err := p.checkQuantityWithinCapacity(); err != nil {
		return Package{}, err
	}
	return p, nil
}

// ID returns the package identity; 0 means unassigned.
func (p Package) ID() int { return p.id }

// Title returns the normalized title.
func (p Package) Title() string { return p.title }

// ExpirationDate returns the civil expiration date.
func (p Package) ExpirationDate() time.Time { return p.expirationDate }

// Capacity returns the size of an unopened package.
func (p Package) Capacity() float64 { return p.capacity }

// CurrentQuantity returns the remaining quantity.
func (p Package) CurrentQuantity() float64 { return p.currentQuantity }

// Variant returns the dosage form, or -1 for the zero Package.
func (p Package) Variant() Variant {
	if p.form == nil {
		return -1
	}
	return p.form.variant()
}

// IsEmpty reports whether nothing remains in the package.
func (p Package) IsEmpty() bool { return p.currentQuantity == 0 }

// IsExpired reports whether the expiration date is today or earlier.
func (p Package) IsExpired() bool { return !p.expirationDate.After(today(p.clock)) }

// CanConsume reports whether the package is neither empty nor expired.
func (p Package) CanConsume() bool { return !p.IsEmpty() && !p.IsExpired() }

// AssignID sets the identity once. A second call fails with KindState.
func (p *Package) AssignID(v any) error {
	if p.id != 0 {
		return &Error{Op: "assign id", Field: "id", Kind: KindState, Value: v,
			Reason: "id " + strconv.Itoa(p.id) + " is already assigned"}
	}
	id, err := ValidateID(v)
	if err != nil {
		return err
	}
	p.id = id
	return nil
}

// Update applies the non-nil fields of patch. Every provided field is
// re-validated; on any failure the package is left unchanged.
func (p *Package) Update(patch Patch) error {
	next := *p
	var err error
	if patch.Title != nil {
		if next.title, err = ValidateTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.ExpirationDate != nil {
		if next.expirationDate, err = ValidateExpirationDate(*patch.ExpirationDate, today(p.clock)); err != nil {
			return err
		}
	}
	if patch.Capacity != nil {
		if next.capacity, err = ValidateCapacity(*patch.Capacity); err != nil {
			return err
		}
	}
	if patch.CurrentQuantity != nil {
		if next.currentQuantity, err = ValidateQuantity(*patch.CurrentQuantity); err != nil {
			return err
		}
	}
	if err := next.checkQuantityWithinCapacity(); err != nil {
		return err
	}
	*p = next
	return nil
}

// ConsumeUnits takes n units from the package: tablets for pills, drops for
// drops. The request is refused, leaving the package unchanged, when the
// package cannot be consumed or holds less than the requested amount. The
// return value reports whether anything was taken.
func (p *Package) ConsumeUnits(n float64) bool {
	if p.form == nil || !p.CanConsume() || n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	amount := math.Round(p.form.quantityFor(n)*quantityPrecision) / quantityPrecision
	if amount <= 0 || amount > p.currentQuantity {
		return false
	}
	p.currentQuantity = math.Round((p.currentQuantity-amount)*quantityPrecision) / quantityPrecision
	return true
}

// Equal reports whether p and o hold the same identity, variant and field values.
func (p Package) Equal(o Package) bool {
	return p.id == o.id &&
		p.Variant() == o.Variant() &&
		p.title == o.title &&
		p.expirationDate.Equal(o.expirationDate) &&
		p.capacity == o.capacity &&
		p.currentQuantity == o.currentQuantity
}

// String renders the package for display, e.g.
// "pills - aspirin: expires 2026-11-17; 20/20 tab.".
func (p Package) String() string {
	return fmt.Sprintf("%s - %s: expires %s; %s/%s %s",
		p.Variant(), p.title, FormatDate(p.expirationDate),
		formatAmount(p.currentQuantity), formatAmount(p.capacity), p.Variant().Unit())
}

func (p Package) checkQuantityWithinCapacity() error {
	if p.currentQuantity > p.capacity {
		return &Error{Op: "validate", Field: "currentQuantity", Kind: KindRange, Value: p.currentQuantity,
			Reason: "must not exceed capacity " + formatAmount(p.capacity)}
	}
	return nil
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
