// SPDX-License-Identifier: MPL-2.0

package medicine

import (
	"strconv"
	"strings"
)

const (
	// VariantDrops is a liquid counted by volume; one unit is one drop.
	VariantDrops Variant = 0
	// VariantPills is a solid form counted per tablet.
	VariantPills Variant = 1

	// DropUnitVolume is the volume, in package units (ml), of a single drop.
	DropUnitVolume = 0.05
)

type (
	// Variant is the dosage-form discriminator. Its integer value is the one
	// persisted in snapshots.
	Variant int

	// dosageForm converts consumed units into quantity removed from a package.
	// The set of implementations is closed: pills and drops.
	dosageForm interface {
		variant() Variant
		quantityFor(units float64) float64
	}

	pills struct{}
	drops struct{}
)

func (pills) variant() Variant                  { return VariantPills }
func (pills) quantityFor(units float64) float64 { return units }

func (drops) variant() Variant                  { return VariantDrops }
func (drops) quantityFor(units float64) float64 { return units * DropUnitVolume }

// Variants returns every known variant in discriminator order.
func Variants() []Variant {
	return []Variant{VariantDrops, VariantPills}
}

// String returns the variant tag ("drops" or "pills").
func (v Variant) String() string {
	switch v {
	case VariantDrops:
		return "drops"
	case VariantPills:
		return "pills"
	default:
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
}

// Unit returns the abbreviation used when displaying quantities.
func (v Variant) Unit() string {
	switch v {
	case VariantDrops:
		return "ml"
	case VariantPills:
		return "tab."
	default:
		return ""
	}
}

// Validate returns a KindUnknownVariant error when v is outside the known set.
func (v Variant) Validate() error {
	if _, ok := formOf(v); !ok {
		return &Error{Op: "validate", Field: "variant", Kind: KindUnknownVariant, Value: int(v)}
	}
	return nil
}

// ParseVariant maps an external selector to a Variant. It accepts the tag
// name ("drops", "pills", case-insensitive) or the discriminator index.
func ParseVariant(tag string) (Variant, error) {
	s := strings.ToLower(strings.TrimSpace(tag))
	for _, v := range Variants() {
		if s == v.String() || s == strconv.Itoa(int(v)) {
			return v, nil
		}
	}
	return 0, &Error{Op: "parse", Field: "variant", Kind: KindUnknownVariant, Value: tag}
}

func formOf(v Variant) (dosageForm, bool) {
	switch v {
	case VariantDrops:
		return drops{}, true
	case VariantPills:
		return pills{}, true
	default:
		return nil, false
	}
}
