// SPDX-License-Identifier: MPL-2.0

package medicine

import (
	"time"
)

// DateLayout is the calendar layout used wherever a date crosses a text boundary.
const DateLayout = "2006-01-02"

type (
	// Clock supplies "today" for expiration checks.
	// Production code uses RealClock; tests pin the date with a fake.
	Clock interface {
		Now() time.Time
	}

	// RealClock implements Clock using the system time.
	RealClock struct{}
)

// Now returns the current system time.
func (RealClock) Now() time.Time { return time.Now() }

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string { return d.Format(DateLayout) }

// ParseDate parses a YYYY-MM-DD string into a civil date. Malformed input
// yields a KindFormat error.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &Error{Op: "parse", Field: "expirationDate", Kind: KindFormat, Value: s, Reason: "expected YYYY-MM-DD", Err: err}
	}
	return DateOf(t), nil
}

func today(c Clock) time.Time {
	if c == nil {
		c = RealClock{}
	}
	return DateOf(c.Now())
}
