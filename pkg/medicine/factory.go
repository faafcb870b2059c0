// SPDX-License-Identifier: MPL-2.0

package medicine

import "time"

// Factory builds packages of a requested variant. It is the only place that
// maps a Variant to a concrete dosage form; the rest of the system stays
// variant-agnostic.
type Factory struct {
	// Clock supplies "today" to every package built; nil means RealClock.
	Clock Clock
}

// NewFactory returns a Factory bound to clock.
func NewFactory(clock Clock) Factory {
	return Factory{Clock: clock}
}

// Create validates the raw fields and returns an unassigned package (ID 0).
// A nil currentQuantity defaults to capacity (a full package).
func (f Factory) Create(variant Variant, title string, expirationDate time.Time, capacity float64, currentQuantity *float64) (Package, error) {
	form, ok := formOf(variant)
	if !ok {
		return Package{}, &Error{Op: "create", Field: "variant", Kind: KindUnknownVariant, Value: int(variant)}
	}
	return newPackage(form, f.Clock, title, expirationDate, capacity, currentQuantity)
}

// Today returns the factory's current civil date.
func (f Factory) Today() time.Time {
	return today(f.Clock)
}
