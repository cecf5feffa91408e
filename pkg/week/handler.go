package week

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/klokku/focusweek/internal/rest"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

type WeekDTO struct {
	Key                 string `json:"key"`
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
	Status              string `json:"status"`
	CompletedTasksCount int    `json:"completedTasksCount"`
	ExpiredTasksCount   int    `json:"expiredTasksCount"`
	StartedDaysCount    int    `json:"startedDaysCount"`
}

type DayDTO struct {
	Key            string     `json:"key"`
	WeekKey        string     `json:"weekKey"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	DeadlineHour   int        `json:"deadlineHour"`
	DeadlineMinute int        `json:"deadlineMinute"`
	Deadline       time.Time  `json:"deadline"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`
	ExpiredCount   int        `json:"expiredCount"`
	Tasks          []TaskDTO  `json:"tasks"`
}

type TaskDTO struct {
	Id             string       `json:"id"`
	Number         string       `json:"number"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	Order          int          `json:"order"`
	Zone           string       `json:"zone"`
	StartedAt      *time.Time   `json:"startedAt,omitempty"`
	EndedAt        *time.Time   `json:"endedAt,omitempty"`
	CompletedOrder int          `json:"completedOrder,omitempty"`
	Steps          []string     `json:"steps"`
	Attachments    []Attachment `json:"attachments"`
}

type CreateWeekRequest struct {
	// Key is an ISO week key, e.g. "2026-W43". Either Key or Date must be set.
	Key  string `json:"key" validate:"required_without=Date,omitempty,len=8"`
	Date string `json:"date" validate:"required_without=Key,omitempty,datetime=2006-01-02"`
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// GetPresentWeek godoc
// @Summary Get the present week
// @Description Returns the present week with its days, creating it when it does not exist yet
// @Tags Week
// @Produce json
// @Success 200 {object} WeekDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/week/present [get]
func (h *Handler) GetPresentWeek(w http.ResponseWriter, r *http.Request) {
	present, err := h.service.GetPresentWeek(r.Context())
	if errors.Is(err, ErrWeekFinalized) {
		rest.WriteError(w, http.StatusConflict, "Current week is already finalized", err.Error())
		return
	}
	if err != nil {
		log.Errorf("failed to get present week: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to get present week", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, WeekToDTO(present))
}

// ListWeeks godoc
// @Summary List weeks by status
// @Tags Week
// @Produce json
// @Param status query string true "pending, present or past"
// @Param month query string false "Month of the week start date, YYYY-MM"
// @Success 200 {array} WeekDTO
// @Router /api/week [get]
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	status := WeekStatus(r.URL.Query().Get("status"))
	if !status.Valid() {
		rest.WriteError(w, http.StatusBadRequest, "Invalid status", "'status' must be one of pending, present, past")
		return
	}
	var month time.Time
	if monthString := r.URL.Query().Get("month"); monthString != "" {
		parsed, err := time.ParseInLocation("2006-01", monthString, time.Local)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month format", "'month' must be in YYYY-MM format")
			return
		}
		month = parsed
	}

	weeks, err := h.service.ListWeeks(r.Context(), status, month)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to list weeks", err.Error())
		return
	}
	dtos := make([]WeekDTO, 0, len(weeks))
	for _, week := range weeks {
		dtos = append(dtos, WeekToDTO(week))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateWeek godoc
// @Summary Create a pending week
// @Tags Week
// @Accept json
// @Produce json
// @Param week body CreateWeekRequest true "Week key or a date inside the week"
// @Success 201 {object} WeekDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/week [post]
func (h *Handler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	var req CreateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	var created Week
	var err error
	if req.Key != "" {
		if _, parseErr := week_calendar.WeekNumberFromString(req.Key); parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid week key", parseErr.Error())
			return
		}
		created, err = h.service.CreatePendingWeek(r.Context(), req.Key)
	} else {
		date, parseErr := week_calendar.ParseDayKey(req.Date, time.Local)
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date", parseErr.Error())
			return
		}
		created, err = h.service.CreatePendingWeekForDate(r.Context(), date)
	}
	if err != nil {
		if errors.Is(err, ErrWeekAlreadyExists) {
			rest.WriteError(w, http.StatusConflict, "Week already exists", err.Error())
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to create week", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusCreated, WeekToDTO(created))
}

// DeleteWeek godoc
// @Summary Delete a pending week
// @Tags Week
// @Param weekKey path string true "Week key"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/week/{weekKey} [delete]
func (h *Handler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["weekKey"]
	err := h.service.DeletePendingWeek(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, ErrWeekNotFound):
			rest.WriteError(w, http.StatusNotFound, "Week not found", key)
		case errors.Is(err, ErrWeekNotPending):
			rest.WriteError(w, http.StatusConflict, "Only pending weeks can be deleted", key)
		default:
			rest.WriteError(w, http.StatusInternalServerError, "Failed to delete week", err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWeekDays godoc
// @Summary Get the days of a week
// @Tags Week
// @Produce json
// @Param weekKey path string true "Week key"
// @Success 200 {array} DayDTO
// @Router /api/week/{weekKey}/day [get]
func (h *Handler) GetWeekDays(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["weekKey"]
	days, err := h.service.GetWeekDays(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrWeekNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Week not found", key)
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to get days", err.Error())
		return
	}
	dtos := make([]DayDTO, 0, len(days))
	for _, day := range days {
		dtos = append(dtos, DayToDTO(day))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// GetDay godoc
// @Summary Get a day with its tasks
// @Tags Day
// @Produce json
// @Param dayKey path string true "Day key, YYYY-MM-DD"
// @Success 200 {object} DayDTO
// @Router /api/day/{dayKey} [get]
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["dayKey"]
	if _, err := week_calendar.ParseDayKey(key, time.Local); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid day key", "'dayKey' must be in YYYY-MM-DD format")
		return
	}
	day, err := h.service.GetDay(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrDayNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Day not found", key)
			return
		}
		rest.WriteError(w, http.StatusInternalServerError, "Failed to get day", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, DayToDTO(day))
}

func WeekToDTO(w Week) WeekDTO {
	return WeekDTO{
		Key:                 w.Key,
		StartDate:           week_calendar.DayKey(w.StartDate),
		EndDate:             week_calendar.DayKey(w.EndDate),
		Status:              string(w.Status),
		CompletedTasksCount: w.CompletedTasksCount,
		ExpiredTasksCount:   w.ExpiredTasksCount,
		StartedDaysCount:    w.StartedDaysCount,
	}
}

// DayToDTO lists tasks zone by zone: focus, frozen, planning, then done.
func DayToDTO(d Day) DayDTO {
	tasks := make([]TaskDTO, 0, len(d.Tasks))
	if focus := d.FocusTask(); focus != nil {
		tasks = append(tasks, TaskToDTO(*focus))
	}
	for _, group := range [][]*Task{d.FrozenTasks(), d.PlanningTasks(), d.DoneTasks()} {
		for _, t := range group {
			tasks = append(tasks, TaskToDTO(*t))
		}
	}
	return DayDTO{
		Key:            d.Key,
		WeekKey:        d.WeekKey,
		Date:           week_calendar.DayKey(d.Date),
		Status:         string(d.Status),
		DeadlineHour:   d.DeadlineHour,
		DeadlineMinute: d.DeadlineMinute,
		Deadline:       d.Deadline(),
		StartedAt:      d.StartedAt,
		ClosedAt:       d.ClosedAt,
		ExpiredCount:   d.ExpiredCount,
		Tasks:          tasks,
	}
}

func TaskToDTO(t Task) TaskDTO {
	return TaskDTO{
		Id:             t.Id,
		Number:         t.Number(),
		Title:          t.Title,
		Description:    t.Description,
		Category:       string(t.Category),
		Order:          t.Order,
		Zone:           string(t.Zone),
		StartedAt:      t.StartedAt,
		EndedAt:        t.EndedAt,
		CompletedOrder: t.CompletedOrder,
		Steps:          nonNil(t.Steps),
		Attachments:    nonNil(t.Attachments),
	}
}
