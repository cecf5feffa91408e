package week_calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

type WeekNumber struct {
	Week int
	Year int
}

// WeekNumberFromDate returns the ISO week number of the week containing the provided date.
// Weeks always start on Monday.
func WeekNumberFromDate(date time.Time) WeekNumber {
	year, week := date.ISOWeek()
	return WeekNumber{Year: year, Week: week}
}

// WeekNumberFromString converts ISO week format ISO 8601 e.g. "2025-W03" to WeekNumber
func WeekNumberFromString(isoWeekString string) (WeekNumber, error) {
	parts := strings.Split(isoWeekString, "-")
	if len(parts) != 2 || len(parts[1]) < 2 || parts[1][0] != 'W' {
		return WeekNumber{}, fmt.Errorf("invalid ISO week format: %s", isoWeekString)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return WeekNumber{}, fmt.Errorf("invalid year: %w", err)
	}
	week, err := strconv.Atoi(parts[1][1:])
	if err != nil {
		return WeekNumber{}, fmt.Errorf("invalid week: %w", err)
	}
	if week < 1 || week > 53 {
		return WeekNumber{}, fmt.Errorf("invalid week: %d", week)
	}
	return WeekNumber{Year: year, Week: week}, nil
}

// Equal returns true when both the year and week match.
func (w WeekNumber) Equal(other WeekNumber) bool {
	return w.Year == other.Year && w.Week == other.Week
}

// Before reports whether w refers to a week that occurs before other.
func (w WeekNumber) Before(other WeekNumber) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

// After reports whether w refers to a week that occurs after other.
func (w WeekNumber) After(other WeekNumber) bool {
	if w.Year != other.Year {
		return w.Year > other.Year
	}
	return w.Week > other.Week
}

// String returns the ISO week format ISO 8601 e.g. "2025-W03"
func (w WeekNumber) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Week)
}

// Start returns the local midnight of the Monday opening the week.
func (w WeekNumber) Start(loc *time.Location) time.Time {
	// January 4th always belongs to week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, loc)
	return WeekStart(jan4).AddDate(0, 0, (w.Week-1)*7)
}

// WeekKey returns the ISO week identifier of t, e.g. "2026-W42".
func WeekKey(t time.Time) string {
	return WeekNumberFromDate(t).String()
}

// DayKey returns the calendar date of t in its own location, e.g. "2026-10-14".
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ParseDayKey parses a day key into the local midnight of that date.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by whole calendar days, keeping wall clock time across DST changes.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// WeekStart returns the local midnight of the Monday of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	delta := (int(day.Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -delta)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (start time.Time, end time.Time) {
	start = WeekStart(t)
	return start, AddDays(start, 6)
}

// DaysOfWeek returns the seven dates of the week containing t, Monday first.
func DaysOfWeek(t time.Time) [7]time.Time {
	var days [7]time.Time
	start := WeekStart(t)
	for i := range days {
		days[i] = AddDays(start, i)
	}
	return days
}

// DeadlineAt returns the instant at hour:minute on the calendar date of date.
func DeadlineAt(date time.Time, hour int, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, date.Location())
}

// SameMonth reports whether a and b fall into the same calendar month.
func SameMonth(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
