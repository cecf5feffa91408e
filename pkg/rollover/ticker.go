package rollover

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Runner runs one reconciliation pass.
type Runner interface {
	RunReconciliationPass(ctx context.Context) (Report, error)
}

// Ticker runs a pass on activation and then every interval.
type Ticker struct {
	runner    Runner
	interval  time.Duration
	activated chan struct{}
	once      sync.Once
}

func NewTicker(runner Runner, interval time.Duration) *Ticker {
	return &Ticker{runner: runner, interval: interval, activated: make(chan struct{})}
}

// Activated is closed once the activation pass finished, successfully or not.
func (t *Ticker) Activated() <-chan struct{} {
	return t.activated
}

// Run blocks until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	log.Infof("reconciliation ticker started, every %s", t.interval)
	t.runOnce(ctx)
	t.once.Do(func() { close(t.activated) })

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("reconciliation ticker stopped")
			return nil
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *Ticker) runOnce(ctx context.Context) {
	if _, err := t.runner.RunReconciliationPass(ctx); err != nil {
		log.Errorf("reconciliation pass failed: %v", err)
	}
}
