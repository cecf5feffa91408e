package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klokku/focusweek/internal/config"
	"github.com/klokku/focusweek/pkg/week"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const requestTimeout = 15 * time.Second

// GoogleCalendarNotifier keeps one calendar event per Day, placed at the deadline with a popup
// reminder leadMinutes before it.
// Requests are sent one at a time in the order they were issued.
type GoogleCalendarNotifier struct {
	service     *gcal.Service
	calendarId  string
	leadMinutes int

	mu      sync.Mutex
	queue   []func(ctx context.Context) error
	running bool
	wg      sync.WaitGroup
}

// NewGoogleCalendarNotifier authenticates with the configured refresh token.
func NewGoogleCalendarNotifier(ctx context.Context, cfg config.Google, planner config.Planner) (*GoogleCalendarNotifier, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarEventsScope},
	}
	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := gcal.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}
	return NewGoogleCalendarNotifierWithService(service, cfg.CalendarId, planner.ReminderLeadMinutes), nil
}

func NewGoogleCalendarNotifierWithService(service *gcal.Service, calendarId string, leadMinutes int) *GoogleCalendarNotifier {
	if calendarId == "" {
		calendarId = "primary"
	}
	return &GoogleCalendarNotifier{service: service, calendarId: calendarId, leadMinutes: leadMinutes}
}

func (n *GoogleCalendarNotifier) ScheduleDeadlineAlert(_ context.Context, day week.Day) {
	n.async(func(ctx context.Context) error {
		return n.upsert(ctx, day)
	})
}

func (n *GoogleCalendarNotifier) CancelDeadlineAlert(_ context.Context, day week.Day) {
	n.async(func(ctx context.Context) error {
		return n.delete(ctx, day)
	})
}

// Wait blocks until every alert request already issued has finished.
func (n *GoogleCalendarNotifier) Wait() {
	n.wg.Wait()
}

// async queues fn behind the requests issued before it. The worker drains the queue with its own
// context, a finished HTTP request must not cancel a pending alert.
func (n *GoogleCalendarNotifier) async(fn func(ctx context.Context) error) {
	n.wg.Add(1)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = append(n.queue, fn)
	if !n.running {
		n.running = true
		go n.drain()
	}
}

func (n *GoogleCalendarNotifier) drain() {
	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.running = false
			n.mu.Unlock()
			return
		}
		fn := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()

		n.send(fn)
	}
}

func (n *GoogleCalendarNotifier) send(fn func(ctx context.Context) error) {
	defer n.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Errorf("deadline alert request failed: %v", err)
	}
}

func (n *GoogleCalendarNotifier) upsert(ctx context.Context, day week.Day) error {
	id := EventId(day)
	event := n.toEvent(day)

	_, err := n.service.Events.Insert(n.calendarId, event).Context(ctx).Do()
	if err == nil {
		log.Debugf("deadline alert %s created", id)
		return nil
	}
	if !hasStatus(err, http.StatusConflict) {
		return fmt.Errorf("unable to insert event in Google Calendar: %w", err)
	}

	if _, err := n.service.Events.Update(n.calendarId, id, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to update event in Google Calendar: %w", err)
	}
	log.Debugf("deadline alert %s updated", id)
	return nil
}

func (n *GoogleCalendarNotifier) delete(ctx context.Context, day week.Day) error {
	id := EventId(day)
	err := n.service.Events.Delete(n.calendarId, id).Context(ctx).Do()
	if err != nil {
		if hasStatus(err, http.StatusNotFound) || hasStatus(err, http.StatusGone) {
			log.Debugf("deadline alert %s already gone", id)
			return nil
		}
		return fmt.Errorf("unable to delete event in Google Calendar: %w", err)
	}
	log.Debugf("deadline alert %s deleted", id)
	return nil
}

func (n *GoogleCalendarNotifier) toEvent(day week.Day) *gcal.Event {
	deadline := day.Deadline()
	return &gcal.Event{
		Id:          EventId(day),
		Status:      "confirmed",
		Summary:     fmt.Sprintf("Deadline of %s", day.Key),
		Description: fmt.Sprintf("Unfinished tasks of %s expire at %s.", day.Key, deadline.Format("15:04")),
		Start:       &gcal.EventDateTime{DateTime: deadline.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: deadline.Format(time.RFC3339)},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: int64(n.leadMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

// EventId derives a stable calendar event id from the day key.
// Google accepts only lowercase base32hex characters, "deadline" qualifies.
func EventId(day week.Day) string {
	return "deadline" + strings.ReplaceAll(day.Key, "-", "")
}

func hasStatus(err error, status int) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == status
	}
	return false
}
