package update

import (
	"sync"
	"time"
)

// DefaultInterval is the minimum gap between implicit checks.
const DefaultInterval = time.Hour

// Schedule remembers when the last implicit check ran. It lives for one
// process and is not persisted.
type Schedule struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// NewSchedule creates a schedule. A nil now uses time.Now; a non-positive
// interval uses DefaultInterval.
func NewSchedule(interval time.Duration, now func() time.Time) *Schedule {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Schedule{interval: interval, now: now}
}

// Due reports whether no check ran yet or the interval has elapsed.
func (s *Schedule) Due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last.IsZero() || s.now().Sub(s.last) >= s.interval
}

// Mark records a check at the current time.
func (s *Schedule) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = s.now()
}

// LastChecked returns the time of the last check, zero if none.
func (s *Schedule) LastChecked() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// Interval returns the configured gap between checks.
func (s *Schedule) Interval() time.Duration {
	return s.interval
}
