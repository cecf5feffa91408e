package week

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/focusweek/internal/database"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

var ErrWeekNotFound = errors.New("week not found")
var ErrDayNotFound = errors.New("day not found")
var ErrWeekAlreadyExists = errors.New("week already exists")

// Repository is the entity store of the Week/Day/Task graph.
// Days are always returned with their tasks; SaveDay replaces the stored task set.
type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	GetWeek(ctx context.Context, key string) (Week, error)
	// FindWeeksByStatus returns weeks ordered by start date.
	FindWeeksByStatus(ctx context.Context, status WeekStatus) ([]Week, error)
	CreateWeek(ctx context.Context, week Week, days []Day) error
	UpdateWeek(ctx context.Context, week Week) error
	// DeleteWeek removes the week together with its days and tasks.
	DeleteWeek(ctx context.Context, key string) error
	GetDay(ctx context.Context, key string) (Day, error)
	// GetDaysForWeek returns the days of a week, Monday first.
	GetDaysForWeek(ctx context.Context, weekKey string) ([]Day, error)
	SaveDay(ctx context.Context, day Day) error
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

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *repositoryImpl) getQueryer() database.Queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) q(query string) string {
	return r.db.Dialect.Rebind(query)
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(&repositoryImpl{db: r.db, tx: tx, loc: r.loc})
	})
}

const weekColumns = `week_key, start_date, end_date, status, completed_tasks_count, expired_tasks_count, started_days_count`

func (r *repositoryImpl) GetWeek(ctx context.Context, key string) (Week, error) {
	query := `SELECT ` + weekColumns + ` FROM week WHERE week_key = ?`
	week, err := r.scanWeek(r.getQueryer().QueryRowContext(ctx, r.q(query), key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Week{}, ErrWeekNotFound
		}
		return Week{}, fmt.Errorf("could not get week %s: %w", key, err)
	}
	return week, nil
}

func (r *repositoryImpl) FindWeeksByStatus(ctx context.Context, status WeekStatus) ([]Week, error) {
	query := `SELECT ` + weekColumns + ` FROM week WHERE status = ? ORDER BY start_date`
	rows, err := r.getQueryer().QueryContext(ctx, r.q(query), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []Week
	for rows.Next() {
		week, err := r.scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}
	return weeks, rows.Err()
}

func (r *repositoryImpl) CreateWeek(ctx context.Context, week Week, days []Day) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*repositoryImpl)
		_, err := txRepo.GetWeek(ctx, week.Key)
		if err == nil {
			return ErrWeekAlreadyExists
		}
		if !errors.Is(err, ErrWeekNotFound) {
			return err
		}

		query := `INSERT INTO week (` + weekColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err = txRepo.getQueryer().ExecContext(ctx, txRepo.q(query),
			week.Key,
			week_calendar.DayKey(week.StartDate),
			week_calendar.DayKey(week.EndDate),
			string(week.Status),
			week.CompletedTasksCount,
			week.ExpiredTasksCount,
			week.StartedDaysCount,
		)
		if err != nil {
			return fmt.Errorf("could not insert week %s: %w", week.Key, err)
		}

		for _, day := range days {
			day.WeekKey = week.Key
			query := `INSERT INTO day (day_key, week_key, status, deadline_hour, deadline_minute, started_at, closed_at, expired_count)
					  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
			_, err := txRepo.getQueryer().ExecContext(ctx, txRepo.q(query),
				day.Key,
				day.WeekKey,
				string(day.Status),
				day.DeadlineHour,
				day.DeadlineMinute,
				toMillis(day.StartedAt),
				toMillis(day.ClosedAt),
				day.ExpiredCount,
			)
			if err != nil {
				return fmt.Errorf("could not insert day %s: %w", day.Key, err)
			}
			if err := txRepo.insertTasks(ctx, day); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) UpdateWeek(ctx context.Context, week Week) error {
	query := `UPDATE week
			  SET status = ?, completed_tasks_count = ?, expired_tasks_count = ?, started_days_count = ?
			  WHERE week_key = ?`
	result, err := r.getQueryer().ExecContext(ctx, r.q(query),
		string(week.Status),
		week.CompletedTasksCount,
		week.ExpiredTasksCount,
		week.StartedDaysCount,
		week.Key,
	)
	if err != nil {
		return fmt.Errorf("could not update week %s: %w", week.Key, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrWeekNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteWeek(ctx context.Context, key string) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*repositoryImpl)
		q := txRepo.getQueryer()
		if _, err := q.ExecContext(ctx, txRepo.q(`DELETE FROM task WHERE day_key IN (SELECT day_key FROM day WHERE week_key = ?)`), key); err != nil {
			return fmt.Errorf("could not delete tasks of week %s: %w", key, err)
		}
		if _, err := q.ExecContext(ctx, txRepo.q(`DELETE FROM day WHERE week_key = ?`), key); err != nil {
			return fmt.Errorf("could not delete days of week %s: %w", key, err)
		}
		result, err := q.ExecContext(ctx, txRepo.q(`DELETE FROM week WHERE week_key = ?`), key)
		if err != nil {
			return fmt.Errorf("could not delete week %s: %w", key, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return ErrWeekNotFound
		}
		return nil
	})
}

const dayColumns = `day_key, week_key, status, deadline_hour, deadline_minute, started_at, closed_at, expired_count`

func (r *repositoryImpl) GetDay(ctx context.Context, key string) (Day, error) {
	query := `SELECT ` + dayColumns + ` FROM day WHERE day_key = ?`
	day, err := r.scanDay(r.getQueryer().QueryRowContext(ctx, r.q(query), key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Day{}, ErrDayNotFound
		}
		return Day{}, fmt.Errorf("could not get day %s: %w", key, err)
	}

	tasks, err := r.queryTasks(ctx, `WHERE t.day_key = ?`, key)
	if err != nil {
		return Day{}, err
	}
	day.Tasks = tasks[key]
	return day, nil
}

func (r *repositoryImpl) GetDaysForWeek(ctx context.Context, weekKey string) ([]Day, error) {
	query := `SELECT ` + dayColumns + ` FROM day WHERE week_key = ? ORDER BY day_key`
	rows, err := r.getQueryer().QueryContext(ctx, r.q(query), weekKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []Day
	for rows.Next() {
		day, err := r.scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks, err := r.queryTasks(ctx, `JOIN day d ON d.day_key = t.day_key WHERE d.week_key = ?`, weekKey)
	if err != nil {
		return nil, err
	}
	for i := range days {
		days[i].Tasks = tasks[days[i].Key]
	}
	return days, nil
}

func (r *repositoryImpl) SaveDay(ctx context.Context, day Day) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*repositoryImpl)
		q := txRepo.getQueryer()
		query := `UPDATE day
				  SET status = ?, deadline_hour = ?, deadline_minute = ?, started_at = ?, closed_at = ?, expired_count = ?
				  WHERE day_key = ?`
		result, err := q.ExecContext(ctx, txRepo.q(query),
			string(day.Status),
			day.DeadlineHour,
			day.DeadlineMinute,
			toMillis(day.StartedAt),
			toMillis(day.ClosedAt),
			day.ExpiredCount,
			day.Key,
		)
		if err != nil {
			return fmt.Errorf("could not update day %s: %w", day.Key, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return ErrDayNotFound
		}

		if _, err := q.ExecContext(ctx, txRepo.q(`DELETE FROM task WHERE day_key = ?`), day.Key); err != nil {
			return fmt.Errorf("could not replace tasks of day %s: %w", day.Key, err)
		}
		return txRepo.insertTasks(ctx, day)
	})
}

func (r *repositoryImpl) insertTasks(ctx context.Context, day Day) error {
	query := `INSERT INTO task (id, day_key, title, description, category, task_order, zone, started_at, ended_at, completed_order, steps, attachments)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, task := range day.Tasks {
		steps, err := json.Marshal(nonNil(task.Steps))
		if err != nil {
			return fmt.Errorf("unable to marshal task steps: %w", err)
		}
		attachments, err := json.Marshal(nonNil(task.Attachments))
		if err != nil {
			return fmt.Errorf("unable to marshal task attachments: %w", err)
		}
		_, err = r.getQueryer().ExecContext(ctx, r.q(query),
			task.Id,
			day.Key,
			task.Title,
			task.Description,
			string(task.Category),
			task.Order,
			string(task.Zone),
			toMillis(task.StartedAt),
			toMillis(task.EndedAt),
			task.CompletedOrder,
			string(steps),
			string(attachments),
		)
		if err != nil {
			return fmt.Errorf("could not insert task %s: %w", task.Id, err)
		}
	}
	return nil
}

// queryTasks loads tasks matching the given clause, grouped by day key.
func (r *repositoryImpl) queryTasks(ctx context.Context, clause string, args ...any) (map[string][]Task, error) {
	query := `SELECT t.id, t.day_key, t.title, t.description, t.category, t.task_order, t.zone,
					 t.started_at, t.ended_at, t.completed_order, t.steps, t.attachments
			  FROM task t ` + clause + ` ORDER BY t.task_order, t.completed_order, t.id`
	rows, err := r.getQueryer().QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make(map[string][]Task)
	for rows.Next() {
		var task Task
		var category, zone, steps, attachments string
		var startedAt, endedAt sql.NullInt64
		if err := rows.Scan(
			&task.Id,
			&task.DayKey,
			&task.Title,
			&task.Description,
			&category,
			&task.Order,
			&zone,
			&startedAt,
			&endedAt,
			&task.CompletedOrder,
			&steps,
			&attachments,
		); err != nil {
			return nil, err
		}
		task.Category = Category(category)
		task.Zone = TaskZone(zone)
		task.StartedAt = r.fromMillis(startedAt)
		task.EndedAt = r.fromMillis(endedAt)
		if err := json.Unmarshal([]byte(steps), &task.Steps); err != nil {
			log.Errorf("unable to unmarshal steps of task %s: %v", task.Id, err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(attachments), &task.Attachments); err != nil {
			log.Errorf("unable to unmarshal attachments of task %s: %v", task.Id, err)
			return nil, err
		}
		if len(task.Steps) == 0 {
			task.Steps = nil
		}
		if len(task.Attachments) == 0 {
			task.Attachments = nil
		}
		tasks[task.DayKey] = append(tasks[task.DayKey], task)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *repositoryImpl) scanWeek(row scanner) (Week, error) {
	var week Week
	var status, startDate, endDate string
	if err := row.Scan(
		&week.Key,
		&startDate,
		&endDate,
		&status,
		&week.CompletedTasksCount,
		&week.ExpiredTasksCount,
		&week.StartedDaysCount,
	); err != nil {
		return Week{}, err
	}
	var err error
	week.Status = WeekStatus(status)
	if week.StartDate, err = week_calendar.ParseDayKey(startDate, r.loc); err != nil {
		return Week{}, err
	}
	if week.EndDate, err = week_calendar.ParseDayKey(endDate, r.loc); err != nil {
		return Week{}, err
	}
	return week, nil
}

func (r *repositoryImpl) scanDay(row scanner) (Day, error) {
	var day Day
	var status string
	var startedAt, closedAt sql.NullInt64
	if err := row.Scan(
		&day.Key,
		&day.WeekKey,
		&status,
		&day.DeadlineHour,
		&day.DeadlineMinute,
		&startedAt,
		&closedAt,
		&day.ExpiredCount,
	); err != nil {
		return Day{}, err
	}
	date, err := week_calendar.ParseDayKey(day.Key, r.loc)
	if err != nil {
		return Day{}, err
	}
	day.Date = date
	day.Status = DayStatus(status)
	day.StartedAt = r.fromMillis(startedAt)
	day.ClosedAt = r.fromMillis(closedAt)
	return day, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func (r *repositoryImpl) fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).In(r.loc)
	return &t
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
