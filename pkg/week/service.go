package week

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

var ErrWeekNotPending = errors.New("week is not pending")
var ErrInvalidWeekStatus = errors.New("invalid week status")
var ErrWeekFinalized = errors.New("week is already finalized")

type Service interface {
	// ListWeeks returns weeks of the status ordered by start date. A non-zero month keeps only
	// weeks starting in that calendar month.
	ListWeeks(ctx context.Context, status WeekStatus, month time.Time) ([]Week, error)
	// GetPresentWeek returns the present week, creating or promoting the current week when none is present.
	GetPresentWeek(ctx context.Context) (Week, error)
	CreatePendingWeek(ctx context.Context, key string) (Week, error)
	CreatePendingWeekForDate(ctx context.Context, date time.Time) (Week, error)
	DeletePendingWeek(ctx context.Context, key string) error
	GetWeekDays(ctx context.Context, key string) ([]Day, error)
	GetDay(ctx context.Context, key string) (Day, error)
}

type ServiceImpl struct {
	repo       Repository
	clock      utils.Clock
	serializer *utils.Serializer
	defaults   DayDefaults
}

func NewService(repo Repository, clock utils.Clock, serializer *utils.Serializer, planner config.Planner) *ServiceImpl {
	return &ServiceImpl{
		repo:       repo,
		clock:      clock,
		serializer: serializer,
		defaults:   DefaultsFromPlanner(planner),
	}
}

// DefaultsFromPlanner extracts the day defaults from planner settings.
func DefaultsFromPlanner(planner config.Planner) DayDefaults {
	return DayDefaults{
		DeadlineHour:   planner.DefaultDeadlineHour,
		DeadlineMinute: planner.DefaultDeadlineMinute,
	}
}

func (s *ServiceImpl) ListWeeks(ctx context.Context, status WeekStatus, month time.Time) ([]Week, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekStatus, status)
	}
	weeks, err := s.repo.FindWeeksByStatus(ctx, status)
	if err != nil {
		log.Errorf("failed to list %s weeks: %v", status, err)
		return nil, err
	}
	if month.IsZero() {
		return weeks, nil
	}
	filtered := make([]Week, 0, len(weeks))
	for _, w := range weeks {
		if week_calendar.SameMonth(w.StartDate, month) {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}

func (s *ServiceImpl) GetPresentWeek(ctx context.Context) (Week, error) {
	var present Week
	err := s.serializer.Do(func() error {
		currentKey := s.clock.CurrentWeekKey()
		weeks, err := s.repo.FindWeeksByStatus(ctx, WeekPresent)
		if err != nil {
			return err
		}
		if len(weeks) > 0 {
			present = PickPresent(weeks, currentKey)
			return nil
		}
		present, _, err = EnsureWeek(ctx, s.repo, currentKey, WeekPresent, s.clock.Now().Location(), s.defaults)
		return err
	})
	if err != nil {
		return Week{}, err
	}
	return present, nil
}

// PickPresent prefers the week of currentKey and falls back to the most recent one.
func PickPresent(weeks []Week, currentKey string) Week {
	for _, w := range weeks {
		if w.Key == currentKey {
			return w
		}
	}
	sorted := make([]Week, len(weeks))
	copy(sorted, weeks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.After(sorted[j].StartDate) })
	return sorted[0]
}

// EnsureWeek returns the week stored under key with the given status, moving it to that
// status or creating it with seven empty days when needed. from is the previous status,
// empty when the week was created. A past week is never moved back.
func EnsureWeek(
	ctx context.Context,
	repo Repository,
	key string,
	status WeekStatus,
	loc *time.Location,
	defaults DayDefaults,
) (w Week, from WeekStatus, err error) {
	existing, err := repo.GetWeek(ctx, key)
	if err == nil {
		if existing.Status == status {
			return existing, status, nil
		}
		if existing.Status == WeekPast {
			return Week{}, "", fmt.Errorf("cannot make week %s %s: %w", key, status, ErrWeekFinalized)
		}
		log.Debugf("moving week %s from %s to %s", key, existing.Status, status)
		from = existing.Status
		existing.Status = status
		if err := repo.UpdateWeek(ctx, existing); err != nil {
			return Week{}, "", err
		}
		return existing, from, nil
	}
	if !errors.Is(err, ErrWeekNotFound) {
		return Week{}, "", err
	}

	w, days, err := NewWeekFromKey(key, loc, status, defaults)
	if err != nil {
		return Week{}, "", err
	}
	if err := repo.CreateWeek(ctx, w, days); err != nil {
		return Week{}, "", err
	}
	log.Infof("created %s week %s", status, key)
	return w, "", nil
}

func (s *ServiceImpl) CreatePendingWeek(ctx context.Context, key string) (Week, error) {
	w, days, err := NewWeekFromKey(key, s.clock.Now().Location(), WeekPending, s.defaults)
	if err != nil {
		return Week{}, err
	}
	return s.createPending(ctx, w, days)
}

func (s *ServiceImpl) CreatePendingWeekForDate(ctx context.Context, date time.Time) (Week, error) {
	w, days := NewWeek(date.In(s.clock.Now().Location()), WeekPending, s.defaults)
	return s.createPending(ctx, w, days)
}

func (s *ServiceImpl) createPending(ctx context.Context, w Week, days []Day) (Week, error) {
	err := s.serializer.Do(func() error {
		return s.repo.CreateWeek(ctx, w, days)
	})
	if err != nil {
		if !errors.Is(err, ErrWeekAlreadyExists) {
			log.Errorf("failed to create pending week %s: %v", w.Key, err)
		}
		return Week{}, err
	}
	log.Debugf("created pending week %s", w.Key)
	return w, nil
}

func (s *ServiceImpl) DeletePendingWeek(ctx context.Context, key string) error {
	return s.serializer.Do(func() error {
		return s.repo.WithTransaction(ctx, func(repo Repository) error {
			w, err := repo.GetWeek(ctx, key)
			if err != nil {
				return err
			}
			if w.Status != WeekPending {
				return ErrWeekNotPending
			}
			return repo.DeleteWeek(ctx, key)
		})
	})
}

func (s *ServiceImpl) GetWeekDays(ctx context.Context, key string) ([]Day, error) {
	if _, err := s.repo.GetWeek(ctx, key); err != nil {
		return nil, err
	}
	return s.repo.GetDaysForWeek(ctx, key)
}

func (s *ServiceImpl) GetDay(ctx context.Context, key string) (Day, error) {
	if _, err := week_calendar.ParseDayKey(key, s.clock.Now().Location()); err != nil {
		return Day{}, err
	}
	return s.repo.GetDay(ctx, key)
}
