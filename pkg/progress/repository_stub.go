package progress

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu       sync.Mutex
	progress Progress
	err      error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

// WithTransaction restores the stored progress when fn fails.
func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	original := r.progress
	r.mu.Unlock()

	err := fn(r)

	if err != nil {
		r.mu.Lock()
		r.progress = original
		r.mu.Unlock()
	}
	return err
}

func (r *RepositoryStub) Get(ctx context.Context) (Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Progress{}, r.err
	}
	return r.progress, nil
}

func (r *RepositoryStub) Save(ctx context.Context, p Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.progress = p
	return nil
}

func (r *RepositoryStub) IncrementDaysStarted(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.progress.DaysStartedCount++
	return nil
}

// SetErr makes every following call fail with err.
func (r *RepositoryStub) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = Progress{}
	r.err = nil
}
