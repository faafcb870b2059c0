// SPDX-License-Identifier: MPL-2.0

// Package inventory is the application facade over the package store. It turns
// raw user requests into validated packages through a medicine.Factory, routes
// every read through Query and every write through the store, and never
// swallows a failure: validation, conflict and lookup errors surface to the
// caller unchanged.
package inventory
