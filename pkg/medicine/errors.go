// SPDX-License-Identifier: MPL-2.0

package medicine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindType means a value has the wrong data shape.
	KindType Kind = iota + 1
	// KindRange means a value is outside the allowed bounds.
	KindRange
	// KindFormat means text or a date is malformed.
	KindFormat
	// KindState means an illegal state transition, e.g. re-assigning an ID.
	KindState
	// KindConflict means a duplicate ID on insert.
	KindConflict
	// KindNotFound means the operation targets a nonexistent ID.
	KindNotFound
	// KindUnknownVariant means an unrecognized dosage-form tag.
	KindUnknownVariant
)

var (
	// ErrType is the sentinel wrapped by every KindType error.
	ErrType = errors.New("wrong type")
	// ErrRange is the sentinel wrapped by every KindRange error.
	ErrRange = errors.New("out of range")
	// ErrFormat is the sentinel wrapped by every KindFormat error.
	ErrFormat = errors.New("malformed value")
	// ErrState is the sentinel wrapped by every KindState error.
	ErrState = errors.New("illegal state")
	// ErrConflict is the sentinel wrapped by every KindConflict error.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is the sentinel wrapped by every KindNotFound error.
	ErrNotFound = errors.New("not found")
	// ErrUnknownVariant is the sentinel wrapped by every KindUnknownVariant error.
	ErrUnknownVariant = errors.New("unknown variant")
)

type (
	// Kind classifies a failure so callers can react without parsing messages.
	Kind int

	// Error describes a failed validation or a refused store operation.
	// It unwraps to the sentinel matching its Kind and, when set, to Err.
	Error struct {
		// Op is the operation that failed (e.g. "validate", "add", "decode").
		Op string
		// Field names the offending field, empty for whole-entity failures.
		Field string
		// Kind classifies the failure.
		Kind Kind
		// Value is the rejected input, if any.
		Value any
		// Reason is a short human-readable explanation.
		Reason string
		// Err is an optional underlying cause.
		Err error
	}
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindRange:
		return "range"
	case KindFormat:
		return "format"
	case KindState:
		return "state"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindUnknownVariant:
		return "unknown variant"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinel returns the package-level error value for the kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindType:
		return ErrType
	case KindRange:
		return ErrRange
	case KindFormat:
		return ErrFormat
	case KindState:
		return ErrState
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindUnknownVariant:
		return ErrUnknownVariant
	default:
		return nil
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Field != "" {
		sb.WriteString(e.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got %v)", e.Value)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the kind sentinel and the underlying cause for errors.Is()
// and errors.As() compatibility.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of the first *Error in err's chain, or 0 when err
// carries none.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}

func fieldError(field string, kind Kind, value any, reason string) *Error {
	return &Error{Op: "validate", Field: field, Kind: kind, Value: value, Reason: reason}
}
