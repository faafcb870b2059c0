// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for medkit.
//
// Every command loads the inventory through a session (configuration,
// logger, persistence backend and inventory manager), runs against the
// in-memory manager, and writes the full snapshot back only when something
// changed.
package cmd
