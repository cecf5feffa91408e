package notification

import (
	"context"

	"github.com/klokku/focusweek/pkg/week"
	log "github.com/sirupsen/logrus"
)

// Port schedules and cancels the alert fired shortly before a Day's deadline.
// Calls are fire-and-forget: failures are logged by the implementation and never reported back.
type Port interface {
	ScheduleDeadlineAlert(ctx context.Context, day week.Day)
	CancelDeadlineAlert(ctx context.Context, day week.Day)
}

// LogNotifier only logs alerts. It is used when no calendar integration is configured.
type LogNotifier struct {
	LeadMinutes int
}

func (n LogNotifier) ScheduleDeadlineAlert(_ context.Context, day week.Day) {
	log.Infof("deadline alert for %s scheduled at %s (%d minutes before deadline)",
		day.Key, day.Deadline().Format("15:04"), n.LeadMinutes)
}

func (n LogNotifier) CancelDeadlineAlert(_ context.Context, day week.Day) {
	log.Infof("deadline alert for %s cancelled", day.Key)
}
