// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// StorageJSON keeps the inventory in a JSON document.
	StorageJSON StorageBackend = "json"
	// StorageSQLite keeps the inventory in a SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultExpiringWithinDays is the default report look-ahead.
	DefaultExpiringWithinDays = 30
	// DefaultLowStockRatio is the default low stock threshold.
	DefaultLowStockRatio = 0.2
)

var (
	// ErrInvalidStorageBackend is returned when a StorageBackend value is not recognized.
	ErrInvalidStorageBackend = errors.New("invalid storage backend")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidReportConfig is the sentinel error wrapped by InvalidReportConfigError.
	ErrInvalidReportConfig = errors.New("invalid report config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// StorageBackend selects where the inventory is persisted.
	StorageBackend string

	// InvalidStorageBackendError is returned when a StorageBackend value is not recognized.
	// It wraps ErrInvalidStorageBackend for errors.Is() compatibility.
	InvalidStorageBackendError struct {
		Value StorageBackend
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidReportConfigError is returned when a ReportConfig has invalid fields.
	InvalidReportConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Storage configures persistence
		Storage StorageConfig `json:"storage" mapstructure:"storage"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Report configures the thresholds of "medkit report"
		Report ReportConfig `json:"report" mapstructure:"report"`
	}

	// StorageConfig configures where the inventory lives.
	StorageConfig struct {
		// Backend is "json" or "sqlite"
		Backend StorageBackend `json:"backend" mapstructure:"backend"`
		// Path overrides the data file location; empty means the data directory
		Path string `json:"path" mapstructure:"path"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// ReportConfig configures report thresholds.
	ReportConfig struct {
		// ExpiringWithinDays is how far ahead "expiring soon" looks
		ExpiringWithinDays int `json:"expiring_within_days" mapstructure:"expiring_within_days"`
		// LowStockRatio flags packages with less than this share left
		LowStockRatio float64 `json:"low_stock_ratio" mapstructure:"low_stock_ratio"`
	}
)

// String returns the string representation of the StorageBackend.
func (b StorageBackend) String() string { return string(b) }

// IsValid returns whether the StorageBackend is one of the defined backends,
// and a list of validation errors if it is not.
func (b StorageBackend) IsValid() (bool, []error) {
	switch b {
	case StorageJSON, StorageSQLite:
		return true, nil
	default:
		return false, []error{&InvalidStorageBackendError{Value: b}}
	}
}

// DefaultFileName returns the data file name used when no path is configured.
func (b StorageBackend) DefaultFileName() string {
	if b == StorageSQLite {
		return "medkit.db"
	}
	return "medicines.json"
}

// Error implements the error interface for InvalidStorageBackendError.
func (e *InvalidStorageBackendError) Error() string {
	return fmt.Sprintf("invalid storage backend %q (valid: json, sqlite)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStorageBackendError) Unwrap() error { return ErrInvalidStorageBackend }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether both thresholds are within range.
func (c ReportConfig) IsValid() (bool, []error) {
	var errs []error
	if c.ExpiringWithinDays < 0 {
		errs = append(errs, fmt.Errorf("expiring_within_days %d must not be negative", c.ExpiringWithinDays))
	}
	if c.LowStockRatio < 0 || c.LowStockRatio > 1 {
		errs = append(errs, fmt.Errorf("low_stock_ratio %v must be between 0 and 1", c.LowStockRatio))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidReportConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidReportConfigError.
func (e *InvalidReportConfigError) Error() string {
	return "invalid report config: " + joinErrors(e.FieldErrors)
}

// Unwrap returns ErrInvalidReportConfig for errors.Is() compatibility.
func (e *InvalidReportConfigError) Unwrap() error { return ErrInvalidReportConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Storage.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Report.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return "invalid config: " + joinErrors(e.FieldErrors)
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: StorageJSON,
			Path:    "", // resolved under DataDir()
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Report: ReportConfig{
			ExpiringWithinDays: DefaultExpiringWithinDays,
			LowStockRatio:      DefaultLowStockRatio,
		},
	}
}
