package week

import (
	"sort"
	"time"

	"github.com/klokku/focusweek/pkg/week_calendar"
)

type DayStatus string

const (
	DayEmpty     DayStatus = "empty"
	DayDraft     DayStatus = "draft"
	DayExecuting DayStatus = "executing"
	DayCompleted DayStatus = "completed"
	DayExpired   DayStatus = "expired"
)

// Started reports whether the day went past planning.
func (s DayStatus) Started() bool {
	return s == DayExecuting || s == DayCompleted || s == DayExpired
}

// Terminal reports whether no further transition is possible.
func (s DayStatus) Terminal() bool {
	return s == DayCompleted || s == DayExpired
}

type Day struct {
	Key     string
	WeekKey string
	// Date is the local midnight of the day.
	Date           time.Time
	Status         DayStatus
	DeadlineHour   int
	DeadlineMinute int
	StartedAt      *time.Time
	ClosedAt       *time.Time
	// ExpiredCount is the number of tasks lost when the day expired.
	ExpiredCount int
	Tasks        []Task
}

// Deadline returns the instant after which an executing day expires.
func (d Day) Deadline() time.Time {
	return week_calendar.DeadlineAt(d.Date, d.DeadlineHour, d.DeadlineMinute)
}

// DeadlinePassed reports whether the deadline is at or before now.
func (d Day) DeadlinePassed(now time.Time) bool {
	return !now.Before(d.Deadline())
}

// PlanningTasks returns tasks of the planning zone sorted by order.
func (d Day) PlanningTasks() []*Task {
	return d.zoneTasks(ZonePlanning, byOrder)
}

func (d Day) FrozenTasks() []*Task {
	return d.zoneTasks(ZoneFrozen, byOrder)
}

// DoneTasks returns finished tasks sorted by completion order.
func (d Day) DoneTasks() []*Task {
	return d.zoneTasks(ZoneDone, byCompletedOrder)
}

// FocusTask returns the task currently worked on, nil if there is none.
func (d Day) FocusTask() *Task {
	focus := d.zoneTasks(ZoneFocus, byOrder)
	if len(focus) == 0 {
		return nil
	}
	return focus[0]
}

// HasSingleFocus reports whether at most one task is in the focus zone.
func (d Day) HasSingleFocus() bool {
	return len(d.zoneTasks(ZoneFocus, byOrder)) <= 1
}

// ActiveTaskCount is the number of tasks an executing day loses when it expires.
func (d Day) ActiveTaskCount() int {
	count := len(d.FrozenTasks())
	if d.FocusTask() != nil {
		count++
	}
	return count
}

// Task returns a pointer to the task with the given id.
func (d *Day) Task(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].Id == id {
			return &d.Tasks[i]
		}
	}
	return nil
}

// Expire moves the day to Expired and drops every task that was not done.
// Callers must not expire a day that is already Expired.
func (d *Day) Expire(expiredCount int) {
	d.Status = DayExpired
	d.ExpiredCount = expiredCount
	kept := d.Tasks[:0]
	for _, t := range d.Tasks {
		if t.Zone == ZoneDone {
			kept = append(kept, t)
		}
	}
	d.Tasks = kept
}

// RenumberPlanning rewrites planning orders to a dense 1..N sequence.
func (d *Day) RenumberPlanning() {
	for i, t := range d.PlanningTasks() {
		t.Order = i + 1
	}
}

func (d Day) maxPlanningOrder() int {
	tasks := d.PlanningTasks()
	if len(tasks) == 0 {
		return 0
	}
	return tasks[len(tasks)-1].Order
}

// NextPlanningOrder is the order a newly added planning task receives.
func (d Day) NextPlanningOrder() int {
	return d.maxPlanningOrder() + 1
}

type taskLess func(a, b *Task) bool

func byOrder(a, b *Task) bool { return a.Order < b.Order }

func byCompletedOrder(a, b *Task) bool { return a.CompletedOrder < b.CompletedOrder }

// zoneTasks returns pointers into d.Tasks so callers may mutate them in place.
func (d Day) zoneTasks(zone TaskZone, less taskLess) []*Task {
	var tasks []*Task
	for i := range d.Tasks {
		if d.Tasks[i].Zone == zone {
			tasks = append(tasks, &d.Tasks[i])
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
	return tasks
}
