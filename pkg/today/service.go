package today

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/internal/event_bus"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/notification"
	"github.com/klokku/focusweek/pkg/progress"
	"github.com/klokku/focusweek/pkg/week"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

var ErrDayNotFound = week.ErrDayNotFound
var ErrCannotStartEmptyDay = errors.New("cannot start a day without tasks")
var ErrCannotEditStartedDay = errors.New("day cannot be edited in its current state")
var ErrDeadlinePassed = errors.New("deadline has already passed")
var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidTaskIndex = errors.New("invalid task index")
var ErrFocusInvariant = errors.New("more than one task in focus")
var ErrInvalidDeadline = errors.New("invalid deadline")

// TaskInput carries the user editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	// Category falls back to the configured default when empty.
	Category    week.Category
	Steps       []string
	Attachments []week.Attachment
}

// Service operates on the Day of the current calendar date.
type Service interface {
	GetToday(ctx context.Context) (week.Day, error)
	AddTask(ctx context.Context, input TaskInput) (week.Task, error)
	UpdateTask(ctx context.Context, id string, input TaskInput) (week.Task, error)
	DeleteTask(ctx context.Context, id string) error
	// ReorderTasks moves planning tasks at the given positions before position toIndex.
	ReorderTasks(ctx context.Context, fromIndices []int, toIndex int) (week.Day, error)
	StartDay(ctx context.Context) (week.Day, error)
	CompleteFocusTask(ctx context.Context) (week.Day, error)
	ChangeDeadline(ctx context.Context, hour int, minute int) (week.Day, error)
}

type ServiceImpl struct {
	repo       week.Repository
	store      Store
	notifier   notification.Port
	clock      utils.Clock
	serializer *utils.Serializer
	eventBus   *event_bus.EventBus
	planner    config.Planner
}

func NewService(
	repo week.Repository,
	store Store,
	notifier notification.Port,
	clock utils.Clock,
	serializer *utils.Serializer,
	eventBus *event_bus.EventBus,
	planner config.Planner,
) *ServiceImpl {
	return &ServiceImpl{
		repo:       repo,
		store:      store,
		notifier:   notifier,
		clock:      clock,
		serializer: serializer,
		eventBus:   eventBus,
		planner:    planner,
	}
}

func (s *ServiceImpl) todayKey() string {
	return week_calendar.DayKey(s.clock.Today())
}

func (s *ServiceImpl) GetToday(ctx context.Context) (week.Day, error) {
	return s.repo.GetDay(ctx, s.todayKey())
}

func (s *ServiceImpl) AddTask(ctx context.Context, input TaskInput) (week.Task, error) {
	category, err := s.category(input.Category)
	if err != nil {
		return week.Task{}, err
	}

	var added week.Task
	err = s.serializer.Do(func() error {
		day, err := s.repo.GetDay(ctx, s.todayKey())
		if err != nil {
			return err
		}
		if day.Status != week.DayEmpty && day.Status != week.DayDraft {
			return ErrCannotEditStartedDay
		}

		added = week.Task{
			Id:          uuid.NewString(),
			DayKey:      day.Key,
			Title:       strings.TrimSpace(input.Title),
			Description: input.Description,
			Category:    category,
			Order:       day.NextPlanningOrder(),
			Zone:        week.ZonePlanning,
			Steps:       input.Steps,
			Attachments: s.attachments(input.Attachments),
		}
		from := day.Status
		day.Status = week.DayDraft
		day.Tasks = append(day.Tasks, added)

		if err := s.save(ctx, day); err != nil {
			return err
		}
		if from != day.Status {
			s.emitDayStatus(ctx, day, from)
		}
		log.Debugf("task %s added to %s at %d", added.Id, day.Key, added.Order)
		return nil
	})
	if err != nil {
		return week.Task{}, err
	}
	return added, nil
}

func (s *ServiceImpl) UpdateTask(ctx context.Context, id string, input TaskInput) (week.Task, error) {
	category, err := s.category(input.Category)
	if err != nil {
		return week.Task{}, err
	}

	var updated week.Task
	err = s.serializer.Do(func() error {
		day, err := s.draftToday(ctx)
		if err != nil {
			return err
		}
		task := day.Task(id)
		if task == nil {
			return ErrTaskNotFound
		}
		task.Title = strings.TrimSpace(input.Title)
		task.Description = input.Description
		task.Category = category
		task.Steps = input.Steps
		task.Attachments = s.attachments(input.Attachments)
		updated = *task
		return s.save(ctx, day)
	})
	if err != nil {
		return week.Task{}, err
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteTask(ctx context.Context, id string) error {
	return s.serializer.Do(func() error {
		day, err := s.draftToday(ctx)
		if err != nil {
			return err
		}
		if day.Task(id) == nil {
			return ErrTaskNotFound
		}
		kept := make([]week.Task, 0, len(day.Tasks)-1)
		for _, t := range day.Tasks {
			if t.Id != id {
				kept = append(kept, t)
			}
		}
		day.Tasks = kept
		day.RenumberPlanning()
		log.Debugf("task %s deleted from %s", id, day.Key)
		return s.save(ctx, day)
	})
}

func (s *ServiceImpl) ReorderTasks(ctx context.Context, fromIndices []int, toIndex int) (week.Day, error) {
	var result week.Day
	err := s.serializer.Do(func() error {
		day, err := s.draftToday(ctx)
		if err != nil {
			return err
		}
		moved, err := moveItems(day.PlanningTasks(), fromIndices, toIndex)
		if err != nil {
			return err
		}
		for i, t := range moved {
			t.Order = i + 1
		}
		if err := s.save(ctx, day); err != nil {
			return err
		}
		result = day
		return nil
	})
	return result, err
}

func (s *ServiceImpl) StartDay(ctx context.Context) (week.Day, error) {
	var result week.Day
	err := s.serializer.Do(func() error {
		day, err := s.repo.GetDay(ctx, s.todayKey())
		if err != nil {
			return err
		}
		if day.Status != week.DayDraft {
			return ErrCannotEditStartedDay
		}
		planning := day.PlanningTasks()
		if len(planning) == 0 {
			return ErrCannotStartEmptyDay
		}

		now := s.clock.Now()
		firstStart := day.StartedAt == nil
		day.Status = week.DayExecuting
		day.StartedAt = &now

		focus := planning[0]
		focus.Zone = week.ZoneFocus
		focus.StartedAt = &now
		for _, t := range planning[1:] {
			t.Zone = week.ZoneFrozen
		}

		expired := day.DeadlinePassed(now)
		if expired {
			day.Expire(day.ActiveTaskCount())
		}
		if !day.HasSingleFocus() {
			log.Errorf("refusing to save %s: %v", day.Key, ErrFocusInvariant)
			return ErrFocusInvariant
		}
		err = s.store.WithTransaction(ctx, func(weeks week.Repository, progressRepo progress.Repository) error {
			if err := weeks.SaveDay(ctx, day); err != nil {
				return err
			}
			if firstStart {
				return progressRepo.IncrementDaysStarted(ctx)
			}
			return nil
		})
		if err != nil {
			log.Errorf("failed to start day %s: %v", day.Key, err)
			return err
		}

		s.emitDayStatus(ctx, week.Day{Key: day.Key, WeekKey: day.WeekKey, Status: week.DayExecuting}, week.DayDraft)
		if expired {
			s.emitDayStatus(ctx, day, week.DayExecuting)
			s.notifier.CancelDeadlineAlert(ctx, day)
			log.Infof("day %s started after its deadline and expired immediately", day.Key)
		} else {
			s.notifier.ScheduleDeadlineAlert(ctx, day)
			log.Debugf("day %s started with %d tasks", day.Key, len(planning))
		}
		result = day
		return nil
	})
	return result, err
}

func (s *ServiceImpl) CompleteFocusTask(ctx context.Context) (week.Day, error) {
	var result week.Day
	err := s.serializer.Do(func() error {
		day, err := s.repo.GetDay(ctx, s.todayKey())
		if err != nil {
			return err
		}
		if day.Status != week.DayExecuting {
			return ErrCannotEditStartedDay
		}
		focus := day.FocusTask()
		if focus == nil {
			result = day
			return nil
		}

		now := s.clock.Now()
		focus.Zone = week.ZoneDone
		focus.EndedAt = &now
		focus.CompletedOrder = len(day.DoneTasks())
		completed := *focus

		if frozen := day.FrozenTasks(); len(frozen) > 0 {
			frozen[0].Zone = week.ZoneFocus
			frozen[0].StartedAt = &now
		} else {
			day.Status = week.DayCompleted
			day.ClosedAt = &now
		}
		if err := s.save(ctx, day); err != nil {
			return err
		}

		s.eventBus.Emit(ctx, event_bus.TaskCompletedType, event_bus.TaskCompleted{
			TaskId:         completed.Id,
			DayKey:         day.Key,
			Category:       string(completed.Category),
			CompletedOrder: completed.CompletedOrder,
			EndedAt:        now,
		})
		if day.Status == week.DayCompleted {
			s.emitDayStatus(ctx, day, week.DayExecuting)
			s.notifier.CancelDeadlineAlert(ctx, day)
			log.Infof("day %s completed", day.Key)
		}
		result = day
		return nil
	})
	return result, err
}

func (s *ServiceImpl) ChangeDeadline(ctx context.Context, hour int, minute int) (week.Day, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return week.Day{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidDeadline, hour, minute)
	}

	var result week.Day
	err := s.serializer.Do(func() error {
		day, err := s.repo.GetDay(ctx, s.todayKey())
		if err != nil {
			return err
		}
		if day.Status != week.DayDraft && day.Status != week.DayExecuting {
			return ErrCannotEditStartedDay
		}
		now := s.clock.Now()
		if day.DeadlinePassed(now) {
			return ErrDeadlinePassed
		}

		day.DeadlineHour = hour
		day.DeadlineMinute = minute
		expired := day.Status == week.DayExecuting && day.DeadlinePassed(now)
		if expired {
			day.Expire(day.ActiveTaskCount())
		}
		if err := s.save(ctx, day); err != nil {
			return err
		}

		if expired {
			s.emitDayStatus(ctx, day, week.DayExecuting)
			s.notifier.CancelDeadlineAlert(ctx, day)
			log.Infof("day %s expired after its deadline moved to %02d:%02d", day.Key, hour, minute)
		} else {
			s.notifier.ScheduleDeadlineAlert(ctx, day)
			log.Debugf("deadline of %s moved to %02d:%02d", day.Key, hour, minute)
		}
		result = day
		return nil
	})
	return result, err
}

// draftToday loads today's Day and refuses any state other than Draft.
func (s *ServiceImpl) draftToday(ctx context.Context) (week.Day, error) {
	day, err := s.repo.GetDay(ctx, s.todayKey())
	if err != nil {
		return week.Day{}, err
	}
	if day.Status != week.DayDraft {
		return week.Day{}, ErrCannotEditStartedDay
	}
	return day, nil
}

func (s *ServiceImpl) save(ctx context.Context, day week.Day) error {
	if !day.HasSingleFocus() {
		log.Errorf("refusing to save %s: %v", day.Key, ErrFocusInvariant)
		return ErrFocusInvariant
	}
	if err := s.repo.SaveDay(ctx, day); err != nil {
		log.Errorf("failed to save day %s: %v", day.Key, err)
		return err
	}
	return nil
}

func (s *ServiceImpl) category(c week.Category) (week.Category, error) {
	if c == "" {
		c = week.Category(s.planner.DefaultCategory)
	}
	return week.ParseCategory(string(c))
}

func (s *ServiceImpl) attachments(items []week.Attachment) []week.Attachment {
	for i := range items {
		if items[i].Id == "" {
			items[i].Id = uuid.NewString()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = s.clock.Now()
		}
	}
	return items
}

func (s *ServiceImpl) emitDayStatus(ctx context.Context, day week.Day, from week.DayStatus) {
	log.Debugf("day %s: %s -> %s", day.Key, from, day.Status)
	s.eventBus.Emit(ctx, event_bus.DayStatusChangedType, event_bus.DayStatusChanged{
		DayKey:       day.Key,
		WeekKey:      day.WeekKey,
		From:         string(from),
		To:           string(day.Status),
		ExpiredCount: day.ExpiredCount,
	})
}
