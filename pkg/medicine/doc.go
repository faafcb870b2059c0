// SPDX-License-Identifier: MPL-2.0

// Package medicine defines the medicine package entity, its dosage-form
// variants, and the field validators that guard every value it holds.
//
// A Package is created unassigned (ID 0) by a Factory from raw field values.
// Every field is validated and normalized on the way in; an invalid value is
// reported as an *Error carrying one of the Kind values below, so callers can
// branch with errors.Is against the Err* sentinels.
//
// This package is a leaf dependency: it imports only the standard library.
package medicine
