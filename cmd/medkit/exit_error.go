// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/invowk/medkit/internal/issue"
	"github.com/invowk/medkit/pkg/medicine"
)

// Process exit codes.
const (
	// ExitFailure covers I/O, configuration and other unexpected failures.
	ExitFailure = 1
	// ExitInvalidInput means the request was rejected by validation.
	ExitInvalidInput = 2
	// ExitNotFound means the request targeted a package that does not exist.
	ExitNotFound = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// A bad data file is not bad user input, whatever the record error says.
	var ae *issue.ActionableError
	if errors.As(err, &ae) && (ae.Issue == issue.DataFileCorruptId || ae.Issue == issue.DataFileUnwritableId) {
		return ExitFailure
	}
	switch medicine.KindOf(err) {
	case medicine.KindNotFound:
		return ExitNotFound
	case medicine.KindType, medicine.KindRange, medicine.KindFormat,
		medicine.KindState, medicine.KindConflict, medicine.KindUnknownVariant:
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}

// issueFor picks the catalogued guidance for err, or 0 when none applies.
// An issue attached to an ActionableError wins over the domain error kind.
func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	var me *medicine.Error
	if !errors.As(err, &me) {
		return 0
	}
	switch me.Kind {
	case medicine.KindNotFound:
		return issue.PackageNotFoundId
	case medicine.KindUnknownVariant:
		return issue.UnknownVariantId
	case medicine.KindConflict:
		// Ambiguous selections are conflicts too, but need no guidance.
		if me.Op == "add" {
			return issue.DuplicatePackageId
		}
		return 0
	case medicine.KindType, medicine.KindRange, medicine.KindFormat, medicine.KindState:
		return issue.InvalidInputId
	default:
		return 0
	}
}
