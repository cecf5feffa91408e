package event_bus

import "time"

const (
	DayStatusChangedType        EventType = "day.status.changed"
	TaskCompletedType           EventType = "task.completed"
	WeekStatusChangedType       EventType = "week.status.changed"
	ReconciliationCompletedType EventType = "reconciliation.completed"
)

type DayStatusChanged struct {
	DayKey  string
	WeekKey string
	From    string
	To      string
	// ExpiredCount is set when To is "expired".
	ExpiredCount int
}

type TaskCompleted struct {
	TaskId         string
	DayKey         string
	Category       string
	CompletedOrder int
	EndedAt        time.Time
}

type WeekStatusChanged struct {
	WeekKey string
	// From is empty when the week was just created.
	From string
	To   string
}

type ReconciliationCompleted struct {
	ExpiredDays    int
	FinalizedWeeks int
	CreatedWeeks   int
	Failures       int
	Duration       time.Duration
}
