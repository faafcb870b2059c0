// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by medkit tests: a controllable
// clock, environment and home directory overrides, and file helpers that
// fail the test instead of returning errors.
package testutil
