// SPDX-License-Identifier: MPL-2.0

package store

import (
	"time"

	"github.com/invowk/medkit/pkg/medicine"
)

// Filter selects packages by exact field equality. A nil field matches
// everything; the zero Filter matches the whole collection.
type Filter struct {
	ID              *int
	Variant         *medicine.Variant
	Title           *string
	ExpirationDate  *time.Time
	Capacity        *float64
	CurrentQuantity *float64
}

// IsZero reports whether no field is set.
func (f Filter) IsZero() bool {
	return f.ID == nil && f.Variant == nil && f.Title == nil &&
		f.ExpirationDate == nil && f.Capacity == nil && f.CurrentQuantity == nil
}

// Matches reports whether p satisfies every set field. Expiration dates
// compare by calendar day.
func (f Filter) Matches(p medicine.Package) bool {
	if f.ID != nil && p.ID() != *f.ID {
		return false
	}
	if f.Variant != nil && p.Variant() != *f.Variant {
		return false
	}
	if f.Title != nil && p.Title() != *f.Title {
		return false
	}
	if f.ExpirationDate != nil && !p.ExpirationDate().Equal(medicine.DateOf(*f.ExpirationDate)) {
		return false
	}
	if f.Capacity != nil && p.Capacity() != *f.Capacity {
		return false
	}
	if f.CurrentQuantity != nil && p.CurrentQuantity() != *f.CurrentQuantity {
		return false
	}
	return true
}

// SameAs returns a filter matching every package with p's variant and field
// values, regardless of ID.
func SameAs(p medicine.Package) Filter {
	variant := p.Variant()
	title := p.Title()
	exp := p.ExpirationDate()
	capacity := p.Capacity()
	qty := p.CurrentQuantity()
	return Filter{
		Variant:         &variant,
		Title:           &title,
		ExpirationDate:  &exp,
		Capacity:        &capacity,
		CurrentQuantity: &qty,
	}
}
