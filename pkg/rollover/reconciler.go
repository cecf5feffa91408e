package rollover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/internal/event_bus"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/notification"
	"github.com/klokku/focusweek/pkg/progress"
	"github.com/klokku/focusweek/pkg/week"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

// Report summarizes what a single reconciliation pass changed.
type Report struct {
	// Bootstrapped is true for the pass that recorded the first activation.
	Bootstrapped   bool
	ExpiredDays    []string
	FinalizedWeeks []string
	CreatedWeeks   []string
	PresentWeek    string
	// Failures counts store operations that failed and were skipped.
	Failures int
	// ReconciledDate is the date the next cross-day sweep resumes from.
	ReconciledDate time.Time
	Duration       time.Duration
}

type Reconciler struct {
	weeks      week.Repository
	progress   progress.Repository
	notifier   notification.Port
	clock      utils.Clock
	serializer *utils.Serializer
	eventBus   *event_bus.EventBus
	defaults   week.DayDefaults
}

func NewReconciler(
	weeks week.Repository,
	progressRepo progress.Repository,
	notifier notification.Port,
	clock utils.Clock,
	serializer *utils.Serializer,
	eventBus *event_bus.EventBus,
	planner config.Planner,
) *Reconciler {
	return &Reconciler{
		weeks:      weeks,
		progress:   progressRepo,
		notifier:   notifier,
		clock:      clock,
		serializer: serializer,
		eventBus:   eventBus,
		defaults:   week.DefaultsFromPlanner(planner),
	}
}

// RunReconciliationPass brings the stored weeks and days in line with the current time.
// Store failures are logged, counted and skipped; only a failure to read the process
// progress aborts the pass. Running it again without the clock moving changes nothing.
func (r *Reconciler) RunReconciliationPass(ctx context.Context) (Report, error) {
	var report Report
	err := r.serializer.Do(func() error {
		started := time.Now()
		now := r.clock.Now()
		today := r.clock.Today()

		p, err := r.progress.Get(ctx)
		if err != nil {
			log.Errorf("reconciliation aborted, could not read progress: %v", err)
			return fmt.Errorf("could not read progress: %w", err)
		}
		if !p.Bootstrapped() {
			p.FirstActivationDate = &today
			p.LastReconciledDate = &today
			report.Bootstrapped = true
			log.Infof("first activation on %s", week_calendar.DayKey(today))
		}

		from := today
		if p.LastReconciledDate != nil {
			from = week_calendar.StartOfDay(p.LastReconciledDate.In(today.Location()))
		}
		watermark := r.sweepDays(ctx, from, today, &report)
		r.sweepWeeks(ctx, &report)
		r.sweepDeadline(ctx, today, now, &report)

		p.LastReconciledDate = &watermark
		p.LastReconciledAt = &now
		if err := r.progress.Save(ctx, p); err != nil {
			log.Errorf("failed to record reconciliation progress: %v", err)
			report.Failures++
		}
		report.ReconciledDate = watermark
		report.Duration = time.Since(started)
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	r.eventBus.Emit(ctx, event_bus.ReconciliationCompletedType, event_bus.ReconciliationCompleted{
		ExpiredDays:    len(report.ExpiredDays),
		FinalizedWeeks: len(report.FinalizedWeeks),
		CreatedWeeks:   len(report.CreatedWeeks),
		Failures:       report.Failures,
		Duration:       report.Duration,
	})
	if len(report.ExpiredDays) > 0 || len(report.FinalizedWeeks) > 0 || len(report.CreatedWeeks) > 0 || report.Failures > 0 {
		log.Infof("reconciliation: %d days expired, %d weeks finalized, %d weeks created, %d failures, present week %s",
			len(report.ExpiredDays), len(report.FinalizedWeeks), len(report.CreatedWeeks), report.Failures, report.PresentWeek)
	} else {
		log.Debugf("reconciliation: nothing to do, present week %s", report.PresentWeek)
	}
	return report, nil
}

// sweepDays expires every Draft or Executing day dated in [from, today). It returns the date
// the next sweep has to start from: the earliest day that failed, or today.
func (r *Reconciler) sweepDays(ctx context.Context, from time.Time, today time.Time, report *Report) time.Time {
	watermark := today
	failed := func(date time.Time) {
		report.Failures++
		if date.Before(watermark) {
			watermark = date
		}
	}

	for date := from; date.Before(today); date = week_calendar.AddDays(date, 1) {
		key := week_calendar.DayKey(date)
		day, err := r.weeks.GetDay(ctx, key)
		if errors.Is(err, week.ErrDayNotFound) {
			continue
		}
		if err != nil {
			log.Errorf("cross-day sweep could not load %s: %v", key, err)
			failed(date)
			continue
		}
		if !r.expire(ctx, day, report) {
			failed(date)
		}
	}
	return watermark
}

// expire applies the expiry effect to a Draft or Executing day and persists it. It reports
// false only when saving failed.
func (r *Reconciler) expire(ctx context.Context, day week.Day, report *Report) bool {
	from := day.Status
	switch from {
	case week.DayExecuting:
		day.Expire(day.ActiveTaskCount())
	case week.DayDraft:
		day.Expire(0)
	default:
		return true
	}
	if err := r.weeks.SaveDay(ctx, day); err != nil {
		log.Errorf("failed to expire day %s: %v", day.Key, err)
		return false
	}

	log.Debugf("day %s: %s -> %s, %d tasks lost", day.Key, from, day.Status, day.ExpiredCount)
	report.ExpiredDays = append(report.ExpiredDays, day.Key)
	r.eventBus.Emit(ctx, event_bus.DayStatusChangedType, event_bus.DayStatusChanged{
		DayKey:       day.Key,
		WeekKey:      day.WeekKey,
		From:         string(from),
		To:           string(day.Status),
		ExpiredCount: day.ExpiredCount,
	})
	r.notifier.CancelDeadlineAlert(ctx, day)
	return true
}

// sweepWeeks leaves exactly one present week, the current one, unless a store failure prevents it.
func (r *Reconciler) sweepWeeks(ctx context.Context, report *Report) {
	currentKey := r.clock.CurrentWeekKey()
	presents, err := r.weeks.FindWeeksByStatus(ctx, week.WeekPresent)
	if err != nil {
		log.Errorf("cross-week sweep could not list present weeks: %v", err)
		report.Failures++
		return
	}

	if len(presents) == 0 {
		r.ensurePresent(ctx, currentKey, report)
		return
	}

	keep := week.PickPresent(presents, currentKey)
	for _, w := range presents {
		if w.Key != keep.Key {
			r.finalize(ctx, w, report)
		}
	}
	if keep.Key == currentKey {
		report.PresentWeek = keep.Key
		return
	}
	if !r.finalize(ctx, keep, report) {
		// keep stays present until a later pass manages to finalize it
		report.PresentWeek = keep.Key
		return
	}
	r.ensurePresent(ctx, currentKey, report)
}

func (r *Reconciler) ensurePresent(ctx context.Context, key string, report *Report) {
	w, from, err := week.EnsureWeek(ctx, r.weeks, key, week.WeekPresent, r.clock.Now().Location(), r.defaults)
	if err != nil {
		log.Errorf("failed to make week %s present: %v", key, err)
		report.Failures++
		return
	}
	report.PresentWeek = w.Key
	if from == week.WeekPresent {
		return
	}
	if from == "" {
		report.CreatedWeeks = append(report.CreatedWeeks, w.Key)
	}
	r.eventBus.Emit(ctx, event_bus.WeekStatusChangedType, event_bus.WeekStatusChanged{
		WeekKey: w.Key,
		From:    string(from),
		To:      string(week.WeekPresent),
	})
}

// finalize recomputes the rollup counters of w and moves it to past.
func (r *Reconciler) finalize(ctx context.Context, w week.Week, report *Report) bool {
	days, err := r.weeks.GetDaysForWeek(ctx, w.Key)
	if err != nil {
		log.Errorf("failed to load days of week %s: %v", w.Key, err)
		report.Failures++
		return false
	}
	from := w.Status
	w.Rollup(days)
	w.Status = week.WeekPast
	if err := r.weeks.UpdateWeek(ctx, w); err != nil {
		log.Errorf("failed to finalize week %s: %v", w.Key, err)
		report.Failures++
		return false
	}

	log.Debugf("week %s finalized: %d completed, %d expired, %d days started",
		w.Key, w.CompletedTasksCount, w.ExpiredTasksCount, w.StartedDaysCount)
	report.FinalizedWeeks = append(report.FinalizedWeeks, w.Key)
	r.eventBus.Emit(ctx, event_bus.WeekStatusChangedType, event_bus.WeekStatusChanged{
		WeekKey: w.Key,
		From:    string(from),
		To:      string(week.WeekPast),
	})
	return true
}

// sweepDeadline expires today's day once its deadline passed while it was executing.
func (r *Reconciler) sweepDeadline(ctx context.Context, today time.Time, now time.Time, report *Report) {
	key := week_calendar.DayKey(today)
	day, err := r.weeks.GetDay(ctx, key)
	if errors.Is(err, week.ErrDayNotFound) {
		return
	}
	if err != nil {
		log.Errorf("deadline sweep could not load %s: %v", key, err)
		report.Failures++
		return
	}
	if day.Status != week.DayExecuting || !day.DeadlinePassed(now) {
		return
	}
	if !r.expire(ctx, day, report) {
		report.Failures++
	}
}
