// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// ReferenceDate is the "today" a FakeClock starts at when none is given.
var ReferenceDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

// FakeClock implements medicine.Clock with manually controlled time for testing.
// Time only moves when Advance, AdvanceDays or Set is called.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFakeClock creates a FakeClock initialized to the given time.
// If initial is zero, it defaults to ReferenceDate for reproducibility.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = ReferenceDate
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// AdvanceDays moves the fake time by n calendar days (negative n moves back).
func (c *FakeClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.AddDate(0, 0, n)
}

// Set sets the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// DaysFromNow returns the civil date n days after the clock's current date.
func (c *FakeClock) DaysFromNow(n int) time.Time {
	y, m, d := c.Now().Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC)
}
