package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWeek(t *testing.T) {
	t.Run("should create seven empty days starting on Monday", func(t *testing.T) {
		// given
		wednesday := time.Date(2026, 10, 14, 15, 30, 0, 0, time.Local)

		// when
		w, days := NewWeek(wednesday, WeekPresent, DayDefaults{DeadlineHour: 21, DeadlineMinute: 15})

		// then
		assert.Equal(t, "2026-W42", w.Key)
		assert.Equal(t, WeekPresent, w.Status)
		assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local), w.StartDate)
		assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local), w.EndDate)
		require.Len(t, days, 7)
		assert.Equal(t, "2026-10-12", days[0].Key)
		assert.Equal(t, "2026-10-18", days[6].Key)
		for _, d := range days {
			assert.Equal(t, DayEmpty, d.Status)
			assert.Equal(t, "2026-W42", d.WeekKey)
			assert.Equal(t, 21, d.DeadlineHour)
			assert.Equal(t, 15, d.DeadlineMinute)
			assert.Empty(t, d.Tasks)
		}
	})

	t.Run("should build week from key", func(t *testing.T) {
		w, days, err := NewWeekFromKey("2026-W53", time.Local, WeekPending, DefaultDayDefaults)

		require.NoError(t, err)
		assert.Equal(t, "2026-W53", w.Key)
		assert.Equal(t, "2026-12-28", days[0].Key)
		assert.Equal(t, "2027-01-03", days[6].Key)
	})

	t.Run("should reject malformed key", func(t *testing.T) {
		_, _, err := NewWeekFromKey("2026-42", time.Local, WeekPending, DefaultDayDefaults)

		require.Error(t, err)
	})
}

func TestWeek_Rollup(t *testing.T) {
	// given
	w, days := NewWeek(time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local), WeekPresent, DefaultDayDefaults)
	days[0].Status = DayCompleted
	days[0].Tasks = []Task{
		{Id: "a", Zone: ZoneDone, CompletedOrder: 1},
		{Id: "b", Zone: ZoneDone, CompletedOrder: 2},
	}
	days[1].Status = DayExpired
	days[1].ExpiredCount = 3
	days[1].Tasks = []Task{{Id: "c", Zone: ZoneDone, CompletedOrder: 1}}
	days[2].Status = DayExpired
	days[2].ExpiredCount = 0
	days[3].Status = DayExecuting
	days[4].Status = DayDraft

	// when
	w.Rollup(days)

	// then
	assert.Equal(t, 3, w.CompletedTasksCount)
	assert.Equal(t, 3, w.ExpiredTasksCount)
	assert.Equal(t, 4, w.StartedDaysCount)
}
