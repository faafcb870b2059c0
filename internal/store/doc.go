// SPDX-License-Identifier: MPL-2.0

// Package store provides the authoritative keyed collection of medicine
// packages. It owns identity assignment and the last-assigned ID counter,
// rejects duplicate identities, and answers filtered queries.
//
// Packages cross the store boundary by value only: Add and Update keep their
// own copy, and every read returns fresh copies sorted by ID. Callers can
// never reach the internal map.
package store
