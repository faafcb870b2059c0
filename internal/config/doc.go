// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/medkit/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/medkit/config.cue on macOS, %APPDATA%\medkit\config.cue
// on Windows), validated against the embedded config_schema.cue, and overridden by
// MEDKIT_* environment variables, optionally read from a dotenv file first. It selects
// the storage backend and data file, UI preferences and report thresholds.
package config
