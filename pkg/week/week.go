package week

import (
	"fmt"
	"time"

	"github.com/klokku/focusweek/pkg/week_calendar"
)

type WeekStatus string

const (
	WeekPending WeekStatus = "pending"
	WeekPresent WeekStatus = "present"
	WeekPast    WeekStatus = "past"
)

func (s WeekStatus) Valid() bool {
	switch s {
	case WeekPending, WeekPresent, WeekPast:
		return true
	}
	return false
}

type Week struct {
	Key       string
	StartDate time.Time
	EndDate   time.Time
	Status    WeekStatus
	// Rollup counters, recomputed when the week is finalized to past.
	CompletedTasksCount int
	ExpiredTasksCount   int
	StartedDaysCount    int
}

// DayDefaults are applied to every Day created together with its Week.
type DayDefaults struct {
	DeadlineHour   int
	DeadlineMinute int
}

var DefaultDayDefaults = DayDefaults{DeadlineHour: 20, DeadlineMinute: 0}

// NewWeek builds the week containing date together with its seven Empty days.
func NewWeek(date time.Time, status WeekStatus, defaults DayDefaults) (Week, []Day) {
	start, end := week_calendar.WeekRange(date)
	w := Week{
		Key:       week_calendar.WeekKey(start),
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	dates := week_calendar.DaysOfWeek(start)
	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, Day{
			Key:            week_calendar.DayKey(d),
			WeekKey:        w.Key,
			Date:           d,
			Status:         DayEmpty,
			DeadlineHour:   defaults.DeadlineHour,
			DeadlineMinute: defaults.DeadlineMinute,
		})
	}
	return w, days
}

// NewWeekFromKey builds the week identified by an ISO week key.
func NewWeekFromKey(key string, loc *time.Location, status WeekStatus, defaults DayDefaults) (Week, []Day, error) {
	number, err := week_calendar.WeekNumberFromString(key)
	if err != nil {
		return Week{}, nil, fmt.Errorf("could not parse week key: %w", err)
	}
	w, days := NewWeek(number.Start(loc), status, defaults)
	return w, days, nil
}

// Rollup recomputes the week counters from its days.
func (w *Week) Rollup(days []Day) {
	completed, expired, started := 0, 0, 0
	for _, d := range days {
		completed += len(d.DoneTasks())
		expired += d.ExpiredCount
		if d.Status.Started() {
			started++
		}
	}
	w.CompletedTasksCount = completed
	w.ExpiredTasksCount = expired
	w.StartedDaysCount = started
}
