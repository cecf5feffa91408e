package today

import (
	"context"
	"database/sql"

	"github.com/klokku/focusweek/internal/database"
	"github.com/klokku/focusweek/pkg/progress"
	"github.com/klokku/focusweek/pkg/week"
)

// Store runs fn with a week and a progress repository that commit or roll back together.
type Store interface {
	WithTransaction(ctx context.Context, fn func(weeks week.Repository, progress progress.Repository) error) error
}

type sqlStore struct {
	db *database.DB
}

func NewStore(db *database.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) WithTransaction(ctx context.Context, fn func(weeks week.Repository, progress progress.Repository) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(week.NewRepoWithTx(s.db, tx), progress.NewRepoWithTx(s.db, tx))
	})
}
