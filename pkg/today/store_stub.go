package today

import (
	"context"

	"github.com/klokku/focusweek/pkg/progress"
	"github.com/klokku/focusweek/pkg/week"
)

// StoreStub combines in-memory repositories. When fn fails both are restored.
type StoreStub struct {
	weeks    *week.RepositoryStub
	progress *progress.RepositoryStub
}

func NewStoreStub(weeks *week.RepositoryStub, progressRepo *progress.RepositoryStub) *StoreStub {
	return &StoreStub{weeks: weeks, progress: progressRepo}
}

func (s *StoreStub) WithTransaction(ctx context.Context, fn func(weeks week.Repository, progress progress.Repository) error) error {
	return s.weeks.WithTransaction(ctx, func(weeks week.Repository) error {
		return s.progress.WithTransaction(ctx, func(p progress.Repository) error {
			return fn(weeks, p)
		})
	})
}
