package notification

import (
	"context"
	"sync"

	"github.com/klokku/focusweek/pkg/week"
)

type Call struct {
	Kind   string
	DayKey string
	// DeadlineHour and DeadlineMinute are captured at call time.
	DeadlineHour   int
	DeadlineMinute int
}

const (
	CallSchedule = "schedule"
	CallCancel   = "cancel"
)

// PortStub records every call for assertions.
type PortStub struct {
	mu    sync.Mutex
	calls []Call
}

func NewPortStub() *PortStub {
	return &PortStub{}
}

func (p *PortStub) ScheduleDeadlineAlert(_ context.Context, day week.Day) {
	p.record(CallSchedule, day)
}

func (p *PortStub) CancelDeadlineAlert(_ context.Context, day week.Day) {
	p.record(CallCancel, day)
}

func (p *PortStub) record(kind string, day week.Day) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Kind: kind, DayKey: day.Key, DeadlineHour: day.DeadlineHour, DeadlineMinute: day.DeadlineMinute})
}

func (p *PortStub) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]Call, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// Last returns the most recent call, ok is false when nothing was called.
func (p *PortStub) Last() (call Call, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return Call{}, false
	}
	return p.calls[len(p.calls)-1], true
}

func (p *PortStub) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
