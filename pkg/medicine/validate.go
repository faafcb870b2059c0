// SPDX-License-Identifier: MPL-2.0

package medicine

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// MinTitleLength is the minimum normalized title length in characters.
	MinTitleLength = 3
	// MaxTitleLength is the maximum normalized title length in characters.
	MaxTitleLength = 50
	// MaxExpirationYearDelta bounds how far an expiration date may lie from today.
	MaxExpirationYearDelta = 2

	daysPerYear = 365
)

// titlePattern matches normalized (lower-cased) titles: Latin or Cyrillic
// letters, ASCII digits and spaces.
var titlePattern = regexp.MustCompile(`^[a-zа-яё0-9 ]+$`)

// ValidateID checks that v is an integer-like value greater than zero.
func ValidateID(v any) (int, error) {
	n, ok := asInt(v)
	if !ok {
		return 0, fieldError("id", KindType, v, "expected an integer")
	}
	if n <= 0 {
		return 0, fieldError("id", KindRange, n, "must be positive")
	}
	return n, nil
}

// ValidateTitle trims and lower-cases v and checks length and alphabet.
// It returns the normalized title.
func ValidateTitle(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fieldError("title", KindType, v, "expected text")
	}
	title := NormalizeTitle(s)
	n := utf8.RuneCountInString(title)
	if n < MinTitleLength || n > MaxTitleLength {
		return "", fieldError("title", KindRange, title,
			fmt.Sprintf("length must be between %d and %d characters", MinTitleLength, MaxTitleLength))
	}
	if isAllDigits(title) {
		return "", fieldError("title", KindRange, title, "must not consist of digits only")
	}
	if !titlePattern.MatchString(title) {
		return "", fieldError("title", KindFormat, title, "may contain only letters, digits and spaces")
	}
	return title, nil
}

// NormalizeTitle trims surrounding whitespace and case-folds s.
func NormalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateExpirationDate checks that v is a date no further than
// MaxExpirationYearDelta years from today. The distance is the absolute day
// difference integer-divided by 365. The returned date is truncated to a
// civil date.
func ValidateExpirationDate(v any, today time.Time) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return time.Time{}, fieldError("expirationDate", KindType, v, "expected a date")
	}
	date := DateOf(t)
	days := DaysBetween(DateOf(today), date)
	if days < 0 {
		days = -days
	}
	if days/daysPerYear > MaxExpirationYearDelta {
		return time.Time{}, fieldError("expirationDate", KindRange, FormatDate(date),
			fmt.Sprintf("must be within %d years of today", MaxExpirationYearDelta))
	}
	return date, nil
}

// ValidateCapacity checks that v is a finite number greater than zero.
func ValidateCapacity(v any) (float64, error) {
	f, ok := asFloat(v)
	if !ok {
		return 0, fieldError("capacity", KindType, v, "expected a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, fieldError("capacity", KindRange, f, "must be positive")
	}
	return f, nil
}

// ValidateQuantity checks that v is a finite number not below zero.
func ValidateQuantity(v any) (float64, error) {
	f, ok := asFloat(v)
	if !ok {
		return 0, fieldError("currentQuantity", KindType, v, "expected a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fieldError("currentQuantity", KindRange, f, "must not be negative")
	}
	return f, nil
}

// DateOf returns the civil date of t as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b (negative when b
// is before a). Both arguments should be civil dates.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int cannot hold.
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		if i, ok := asInt(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}
