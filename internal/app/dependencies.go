package app

import (
	"context"
	"fmt"

	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/internal/database"
	"github.com/klokku/focusweek/internal/event_bus"
	"github.com/klokku/focusweek/internal/metrics"
	"github.com/klokku/focusweek/internal/utils"
	"github.com/klokku/focusweek/pkg/notification"
	"github.com/klokku/focusweek/pkg/progress"
	"github.com/klokku/focusweek/pkg/rollover"
	"github.com/klokku/focusweek/pkg/today"
	"github.com/klokku/focusweek/pkg/week"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock      utils.Clock
	Serializer *utils.Serializer
	EventBus   *event_bus.EventBus
	Metrics    *metrics.Metrics
	Notifier   notification.Port

	WeekRepo    week.Repository
	WeekService *week.ServiceImpl
	WeekHandler *week.Handler

	ProgressRepo    progress.Repository
	ProgressHandler *progress.Handler

	TodayService *today.ServiceImpl
	TodayHandler *today.Handler

	Reconciler       *rollover.Reconciler
	ReconcileHandler *rollover.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(ctx context.Context, db *database.DB, cfg config.Application, clock utils.Clock) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.Serializer = utils.NewSerializer()
	deps.EventBus = event_bus.NewEventBus()
	deps.Metrics = metrics.New(prometheus.NewRegistry())
	deps.Metrics.Subscribe(deps.EventBus)

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.Notifier = notifier

	deps.WeekRepo = week.NewRepo(db)
	deps.WeekService = week.NewService(deps.WeekRepo, deps.Clock, deps.Serializer, cfg.Planner)
	deps.WeekHandler = week.NewHandler(deps.WeekService)

	deps.ProgressRepo = progress.NewRepo(db)
	deps.ProgressHandler = progress.NewHandler(deps.ProgressRepo)

	deps.TodayService = today.NewService(deps.WeekRepo, today.NewStore(db), deps.Notifier, deps.Clock, deps.Serializer, deps.EventBus, cfg.Planner)
	deps.TodayHandler = today.NewHandler(deps.TodayService)

	deps.Reconciler = rollover.NewReconciler(deps.WeekRepo, deps.ProgressRepo, deps.Notifier, deps.Clock, deps.Serializer, deps.EventBus, cfg.Planner)
	deps.ReconcileHandler = rollover.NewHandler(deps.Reconciler)

	return deps, nil
}

func newNotifier(ctx context.Context, cfg config.Application) (notification.Port, error) {
	if !cfg.Google.Enabled {
		log.Info("Google Calendar disabled, deadline alerts are only logged")
		return notification.LogNotifier{LeadMinutes: cfg.Planner.ReminderLeadMinutes}, nil
	}
	notifier, err := notification.NewGoogleCalendarNotifier(ctx, cfg.Google, cfg.Planner)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Calendar notifier: %w", err)
	}
	log.Infof("deadline alerts go to Google Calendar %s", cfg.Google.CalendarId)
	return notifier, nil
}

// Close waits for pending notifier calls.
func (d *Dependencies) Close() {
	if n, ok := d.Notifier.(interface{ Wait() }); ok {
		n.Wait()
	}
}
