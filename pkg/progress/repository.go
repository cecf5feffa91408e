package progress

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/klokku/focusweek/internal/database"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

const (
	keyDaysStartedCount    = "days_started_count"
	keyFirstActivationDate = "first_activation_date"
	keyLastReconciledDate  = "last_reconciled_date"
	keyLastReconciledAt    = "last_reconciled_at"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// Get returns the stored progress, or a zero Progress when nothing was stored yet.
	Get(ctx context.Context) (Progress, error)
	Save(ctx context.Context, p Progress) error
	IncrementDaysStarted(ctx context.Context) error
}

type repositoryImpl struct {
	db  *database.DB
	tx  *sql.Tx
	loc *time.Location
}

func NewRepo(db *database.DB) Repository {
	return &repositoryImpl{db: db, loc: time.Local}
}

// NewRepoWithTx returns a repository whose operations all run inside tx.
func NewRepoWithTx(db *database.DB, tx *sql.Tx) Repository {
	return &repositoryImpl{db: db, tx: tx, loc: time.Local}
}

func (r *repositoryImpl) getQueryer() database.Queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(&repositoryImpl{db: r.db, tx: tx, loc: r.loc})
	})
}

func (r *repositoryImpl) Get(ctx context.Context) (Progress, error) {
	return r.get(ctx, r.getQueryer())
}

func (r *repositoryImpl) get(ctx context.Context, q database.Queryer) (Progress, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, value FROM process_progress`)
	if err != nil {
		return Progress{}, fmt.Errorf("could not read progress: %w", err)
	}
	defer rows.Close()

	var p Progress
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Progress{}, err
		}
		if err := r.apply(&p, key, value); err != nil {
			log.Errorf("invalid progress value %s=%q: %v", key, value, err)
			return Progress{}, err
		}
	}
	return p, rows.Err()
}

func (r *repositoryImpl) apply(p *Progress, key string, value string) error {
	switch key {
	case keyDaysStartedCount:
		count, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		p.DaysStartedCount = count
	case keyFirstActivationDate:
		date, err := week_calendar.ParseDayKey(value, r.loc)
		if err != nil {
			return err
		}
		p.FirstActivationDate = &date
	case keyLastReconciledDate:
		date, err := week_calendar.ParseDayKey(value, r.loc)
		if err != nil {
			return err
		}
		p.LastReconciledDate = &date
	case keyLastReconciledAt:
		at, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return err
		}
		at = at.In(r.loc)
		p.LastReconciledAt = &at
	default:
		log.Warnf("ignoring unknown progress key %q", key)
	}
	return nil
}

func (r *repositoryImpl) Save(ctx context.Context, p Progress) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*repositoryImpl)
		return txRepo.save(ctx, txRepo.getQueryer(), p)
	})
}

func (r *repositoryImpl) save(ctx context.Context, q database.Queryer, p Progress) error {
	values := map[string]string{
		keyDaysStartedCount: strconv.Itoa(p.DaysStartedCount),
	}
	if p.FirstActivationDate != nil {
		values[keyFirstActivationDate] = week_calendar.DayKey(*p.FirstActivationDate)
	}
	if p.LastReconciledDate != nil {
		values[keyLastReconciledDate] = week_calendar.DayKey(*p.LastReconciledDate)
	}
	if p.LastReconciledAt != nil {
		values[keyLastReconciledAt] = p.LastReconciledAt.Format(time.RFC3339Nano)
	}

	query := r.db.Dialect.Rebind(`INSERT INTO process_progress (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	for key, value := range values {
		if _, err := q.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("could not store progress %s: %w", key, err)
		}
	}
	return nil
}

func (r *repositoryImpl) IncrementDaysStarted(ctx context.Context) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*repositoryImpl)
		q := txRepo.getQueryer()
		p, err := txRepo.get(ctx, q)
		if err != nil {
			return err
		}
		p.DaysStartedCount++
		return txRepo.save(ctx, q, p)
	})
}
