// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"
)

func TestNewFakeClock_DefaultsToReferenceDate(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	if !clock.Now().Equal(ReferenceDate) {
		t.Errorf("NewFakeClock(zero).Now() = %v, want %v", clock.Now(), ReferenceDate)
	}
}

func TestFakeClock_Advance(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	clock.Advance(36 * time.Hour)

	want := ReferenceDate.Add(36 * time.Hour)
	if !clock.Now().Equal(want) {
		t.Errorf("after Advance(36h) Now() = %v, want %v", clock.Now(), want)
	}
}

func TestFakeClock_AdvanceDays(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	clock.AdvanceDays(-20)

	want := ReferenceDate.AddDate(0, 0, -20)
	if !clock.Now().Equal(want) {
		t.Errorf("after AdvanceDays(-20) Now() = %v, want %v", clock.Now(), want)
	}
}

func TestFakeClock_Set(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	target := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)
	clock.Set(target)

	if !clock.Now().Equal(target) {
		t.Errorf("after Set() Now() = %v, want %v", clock.Now(), target)
	}
}

func TestFakeClock_DaysFromNow(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC))

	got := clock.DaysFromNow(1)
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DaysFromNow(1) = %v, want %v", got, want)
	}
}
