package testutil

import (
	"sync"
	"time"
)

// MockClock is a manually advanced clock for tests
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMockClock creates a clock frozen at the given time
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now.UTC()}
}

func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// SetTime moves the clock to an absolute time
func (c *MockClock) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// Advance moves the clock forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceDays moves the clock forward by whole days
func (c *MockClock) AdvanceDays(days int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, days)
}
