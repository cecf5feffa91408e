package utils

import (
	"time"

	"github.com/klokku/focusweek/pkg/week_calendar"
)

// Clock is the single source of "now". All date arithmetic happens in the location of Now().
type Clock interface {
	Now() time.Time
	// Today returns the local midnight of the current day.
	Today() time.Time
	CurrentWeekKey() string
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

func (s SystemClock) Today() time.Time {
	return week_calendar.StartOfDay(s.Now())
}

func (s SystemClock) CurrentWeekKey() string {
	return week_calendar.WeekKey(s.Now())
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) Today() time.Time {
	return week_calendar.StartOfDay(m.FixedNow)
}

func (m *MockClock) CurrentWeekKey() string {
	return week_calendar.WeekKey(m.FixedNow)
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.FixedNow = m.FixedNow.Add(d)
}
