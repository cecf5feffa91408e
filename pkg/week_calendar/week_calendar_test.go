package week_calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var location, _ = time.LoadLocation("Europe/Warsaw")

func TestWeekNumberEqual(t *testing.T) {
	tests := []struct {
		name   string
		left   WeekNumber
		right  WeekNumber
		expect bool
	}{
		{"same year and week", WeekNumber{Year: 2025, Week: 3}, WeekNumber{Year: 2025, Week: 3}, true},
		{"different week", WeekNumber{Year: 2025, Week: 3}, WeekNumber{Year: 2025, Week: 4}, false},
		{"different year", WeekNumber{Year: 2024, Week: 52}, WeekNumber{Year: 2025, Week: 52}, false},
		{"zero values equal", WeekNumber{}, WeekNumber{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.left.Equal(tt.right); got != tt.expect {
				t.Fatalf("Equal(%+v, %+v) = %v, want %v", tt.left, tt.right, got, tt.expect)
			}
		})
	}
}

func TestWeekNumberBeforeAfter(t *testing.T) {
	tests := []struct {
		name   string
		left   WeekNumber
		right  WeekNumber
		before bool
		after  bool
	}{
		{"same week", WeekNumber{Year: 2025, Week: 3}, WeekNumber{Year: 2025, Week: 3}, false, false},
		{"earlier week same year", WeekNumber{Year: 2025, Week: 2}, WeekNumber{Year: 2025, Week: 3}, true, false},
		{"later week same year", WeekNumber{Year: 2025, Week: 4}, WeekNumber{Year: 2025, Week: 3}, false, true},
		{"earlier year", WeekNumber{Year: 2024, Week: 52}, WeekNumber{Year: 2025, Week: 1}, true, false},
		{"later year", WeekNumber{Year: 2026, Week: 1}, WeekNumber{Year: 2025, Week: 52}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.before, tt.left.Before(tt.right))
			assert.Equal(t, tt.after, tt.left.After(tt.right))
		})
	}
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid year wednesday", time.Date(2026, 10, 14, 9, 30, 0, 0, location), "2026-W42"},
		{"monday opening a week", time.Date(2026, 10, 12, 0, 0, 0, 0, location), "2026-W42"},
		{"late december belongs to next ISO year", time.Date(2025, 12, 29, 0, 0, 0, 0, location), "2026-W01"},
		{"early january belongs to previous ISO year", time.Date(2027, 1, 1, 12, 0, 0, 0, location), "2026-W53"},
		{"week 53 sunday", time.Date(2021, 1, 3, 23, 59, 0, 0, time.UTC), "2020-W53"},
		{"single digit week is zero padded", time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), "2026-W02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekKey(tt.date))
		})
	}
}

func TestWeekNumberFromString(t *testing.T) {
	t.Run("parses valid key", func(t *testing.T) {
		week, err := WeekNumberFromString("2026-W07")
		require.NoError(t, err)
		assert.Equal(t, WeekNumber{Year: 2026, Week: 7}, week)
		assert.Equal(t, "2026-W07", week.String())
	})

	for _, invalid := range []string{"", "2026", "2026-07", "2026-Wxx", "abcd-W01", "2026-W00", "2026-W54", "2026-W01-1"} {
		t.Run("rejects "+invalid, func(t *testing.T) {
			_, err := WeekNumberFromString(invalid)
			require.Error(t, err)
		})
	}
}

func TestWeekNumberStart(t *testing.T) {
	tests := []struct {
		week WeekNumber
		want time.Time
	}{
		{WeekNumber{Year: 2026, Week: 42}, time.Date(2026, 10, 12, 0, 0, 0, 0, location)},
		{WeekNumber{Year: 2026, Week: 1}, time.Date(2025, 12, 29, 0, 0, 0, 0, location)},
		{WeekNumber{Year: 2026, Week: 53}, time.Date(2026, 12, 28, 0, 0, 0, 0, location)},
		{WeekNumber{Year: 2020, Week: 53}, time.Date(2020, 12, 28, 0, 0, 0, 0, location)},
	}
	for _, tt := range tests {
		t.Run(tt.week.String(), func(t *testing.T) {
			got := tt.week.Start(location)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Equal(t, tt.week.String(), WeekKey(got))
		})
	}
}

func TestDayKey(t *testing.T) {
	date := time.Date(2026, 3, 5, 23, 59, 59, 0, location)
	assert.Equal(t, "2026-03-05", DayKey(date))

	parsed, err := ParseDayKey("2026-03-05", location)
	require.NoError(t, err)
	assert.True(t, StartOfDay(date).Equal(parsed))

	_, err = ParseDayKey("2026-13-01", location)
	require.Error(t, err)
}

func TestWeekRange(t *testing.T) {
	t.Run("range always spans six days", func(t *testing.T) {
		date := time.Date(2026, 1, 1, 0, 0, 0, 0, location)
		for i := 0; i < 800; i++ {
			start, end := WeekRange(AddDays(date, i))
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())
			assert.Equal(t, AddDays(start, 6), end)
			assert.Equal(t, 0, start.Hour())
		}
	})

	t.Run("range across DST change", func(t *testing.T) {
		// Europe/Warsaw moves to summer time on 2026-03-29.
		start, end := WeekRange(time.Date(2026, 3, 27, 15, 0, 0, 0, location))
		assert.Equal(t, "2026-03-23", DayKey(start))
		assert.Equal(t, "2026-03-29", DayKey(end))
		assert.Equal(t, 0, end.Hour())
	})
}

func TestDaysOfWeek(t *testing.T) {
	days := DaysOfWeek(time.Date(2026, 10, 14, 18, 0, 0, 0, location))
	expected := []string{"2026-10-12", "2026-10-13", "2026-10-14", "2026-10-15", "2026-10-16", "2026-10-17", "2026-10-18"}
	for i, day := range days {
		assert.Equal(t, expected[i], DayKey(day))
		assert.Equal(t, "2026-W42", WeekKey(day))
	}
}

func TestDeadlineAt(t *testing.T) {
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, location)
	deadline := DeadlineAt(date, 20, 30)
	assert.Equal(t, time.Date(2026, 10, 14, 20, 30, 0, 0, location), deadline)
	assert.True(t, SameMonth(date, deadline))
	assert.False(t, SameMonth(date, AddDays(date, 20)))
}
