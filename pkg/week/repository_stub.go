package week

import (
	"context"
	"sort"
	"sync"
)

// RepositoryStub is an in-memory Repository used by tests.
type RepositoryStub struct {
	mu    sync.RWMutex
	weeks map[string]Week
	days  map[string]Day

	getDayErrs     map[string]error
	saveDayErrs    map[string]error
	updateWeekErrs map[string]error
	findWeeksErr   error
}

func NewRepositoryStub() *RepositoryStub {
	r := &RepositoryStub{}
	r.Reset()
	return r
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalWeeks := make(map[string]Week, len(r.weeks))
	for k, v := range r.weeks {
		originalWeeks[k] = v
	}
	originalDays := make(map[string]Day, len(r.days))
	for k, v := range r.days {
		originalDays[k] = copyDay(v)
	}
	r.mu.Unlock()

	err := fn(r)

	if err != nil {
		r.mu.Lock()
		r.weeks = originalWeeks
		r.days = originalDays
		r.mu.Unlock()
	}
	return err
}

func (r *RepositoryStub) GetWeek(ctx context.Context, key string) (Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	week, exists := r.weeks[key]
	if !exists {
		return Week{}, ErrWeekNotFound
	}
	return week, nil
}

func (r *RepositoryStub) FindWeeksByStatus(ctx context.Context, status WeekStatus) ([]Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.findWeeksErr != nil {
		return nil, r.findWeeksErr
	}
	var result []Week
	for _, week := range r.weeks {
		if week.Status == status {
			result = append(result, week)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (r *RepositoryStub) CreateWeek(ctx context.Context, week Week, days []Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.weeks[week.Key]; exists {
		return ErrWeekAlreadyExists
	}
	r.weeks[week.Key] = week
	for _, day := range days {
		day.WeekKey = week.Key
		r.days[day.Key] = copyDay(day)
	}
	return nil
}

func (r *RepositoryStub) UpdateWeek(ctx context.Context, week Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.updateWeekErrs[week.Key]; err != nil {
		return err
	}
	if _, exists := r.weeks[week.Key]; !exists {
		return ErrWeekNotFound
	}
	r.weeks[week.Key] = week
	return nil
}

func (r *RepositoryStub) DeleteWeek(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.weeks[key]; !exists {
		return ErrWeekNotFound
	}
	delete(r.weeks, key)
	for dayKey, day := range r.days {
		if day.WeekKey == key {
			delete(r.days, dayKey)
		}
	}
	return nil
}

func (r *RepositoryStub) GetDay(ctx context.Context, key string) (Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.getDayErrs[key]; err != nil {
		return Day{}, err
	}
	day, exists := r.days[key]
	if !exists {
		return Day{}, ErrDayNotFound
	}
	return copyDay(day), nil
}

func (r *RepositoryStub) GetDaysForWeek(ctx context.Context, weekKey string) ([]Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Day
	for _, day := range r.days {
		if day.WeekKey == weekKey {
			result = append(result, copyDay(day))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (r *RepositoryStub) SaveDay(ctx context.Context, day Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveDayErrs[day.Key]; err != nil {
		return err
	}
	stored, exists := r.days[day.Key]
	if !exists {
		return ErrDayNotFound
	}
	day.WeekKey = stored.WeekKey
	r.days[day.Key] = copyDay(day)
	return nil
}

// Helper methods for test setup

// PutDay stores the day as is, without checking its week.
func (r *RepositoryStub) PutDay(day Day) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.days[day.Key] = copyDay(day)
}

// PutWeek stores the week as is, without creating any day.
func (r *RepositoryStub) PutWeek(week Week) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[week.Key] = week
}

func (r *RepositoryStub) SetGetDayErr(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getDayErrs[key] = err
}

func (r *RepositoryStub) SetSaveDayErr(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveDayErrs[key] = err
}

func (r *RepositoryStub) SetUpdateWeekErr(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateWeekErrs[key] = err
}

func (r *RepositoryStub) SetFindWeeksErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findWeeksErr = err
}

// AllWeeks returns every stored week ordered by key.
func (r *RepositoryStub) AllWeeks() []Week {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Week, 0, len(r.weeks))
	for _, week := range r.weeks {
		result = append(result, week)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Reset clears all data and injected errors.
func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.weeks = make(map[string]Week)
	r.days = make(map[string]Day)
	r.getDayErrs = make(map[string]error)
	r.saveDayErrs = make(map[string]error)
	r.updateWeekErrs = make(map[string]error)
	r.findWeeksErr = nil
}

func copyDay(day Day) Day {
	if day.Tasks != nil {
		tasks := make([]Task, len(day.Tasks))
		copy(tasks, day.Tasks)
		day.Tasks = tasks
	}
	return day
}
