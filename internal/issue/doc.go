// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for fixing it. An error may also point at a catalogued Issue,
// whose Markdown guidance the CLI renders through glamour.
package issue
