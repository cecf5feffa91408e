package today

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/klokku/focusweek/internal/rest"
	"github.com/klokku/focusweek/pkg/week"
	log "github.com/sirupsen/logrus"
)

type TaskRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=4000"`
	Category    string            `json:"category" validate:"omitempty,oneof=regular ddl leisure"`
	Steps       []string          `json:"steps" validate:"max=50,dive,required"`
	Attachments []week.Attachment `json:"attachments" validate:"max=20"`
}

type ReorderRequest struct {
	FromIndices []int `json:"fromIndices" validate:"required,min=1"`
	ToIndex     *int  `json:"toIndex" validate:"required"`
}

type DeadlineRequest struct {
	Hour   *int `json:"hour" validate:"required,gte=0,lte=23"`
	Minute *int `json:"minute" validate:"required,gte=0,lte=59"`
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// GetToday godoc
// @Summary Get today's day
// @Tags Today
// @Produce json
// @Success 200 {object} week.DayDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/today [get]
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.GetToday(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.DayToDTO(day))
}

// AddTask godoc
// @Summary Add a task to today's plan
// @Tags Today
// @Accept json
// @Produce json
// @Param task body TaskRequest true "Task"
// @Success 201 {object} week.TaskDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/today/task [post]
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.service.AddTask(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, week.TaskToDTO(task))
}

// UpdateTask godoc
// @Summary Update a planned task
// @Tags Today
// @Accept json
// @Produce json
// @Param taskId path string true "Task id"
// @Param task body TaskRequest true "Task"
// @Success 200 {object} week.TaskDTO
// @Router /api/today/task/{taskId} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.service.UpdateTask(r.Context(), mux.Vars(r)["taskId"], req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.TaskToDTO(task))
}

// DeleteTask godoc
// @Summary Delete a planned task
// @Tags Today
// @Param taskId path string true "Task id"
// @Success 204
// @Router /api/today/task/{taskId} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), mux.Vars(r)["taskId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderTasks godoc
// @Summary Move planned tasks
// @Description Moves the planned tasks at fromIndices before the task at toIndex, positions are 0-based
// @Tags Today
// @Accept json
// @Produce json
// @Param order body ReorderRequest true "Move"
// @Success 200 {object} week.DayDTO
// @Failure 422 {object} rest.ErrorResponse
// @Router /api/today/task/order [put]
func (h *Handler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := h.service.ReorderTasks(r.Context(), req.FromIndices, *req.ToIndex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.DayToDTO(day))
}

// StartDay godoc
// @Summary Start executing today's plan
// @Tags Today
// @Produce json
// @Success 200 {object} week.DayDTO
// @Failure 422 {object} rest.ErrorResponse
// @Router /api/today/start [post]
func (h *Handler) StartDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.StartDay(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.DayToDTO(day))
}

// CompleteFocusTask godoc
// @Summary Finish the task in focus
// @Tags Today
// @Produce json
// @Success 200 {object} week.DayDTO
// @Router /api/today/focus/done [post]
func (h *Handler) CompleteFocusTask(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.CompleteFocusTask(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.DayToDTO(day))
}

// ChangeDeadline godoc
// @Summary Change today's deadline
// @Tags Today
// @Accept json
// @Produce json
// @Param deadline body DeadlineRequest true "Deadline"
// @Success 200 {object} week.DayDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/today/deadline [put]
func (h *Handler) ChangeDeadline(w http.ResponseWriter, r *http.Request) {
	var req DeadlineRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := h.service.ChangeDeadline(r.Context(), *req.Hour, *req.Minute)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, week.DayToDTO(day))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return false
	}
	return true
}

func (req TaskRequest) toInput() TaskInput {
	return TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    week.Category(req.Category),
		Steps:       req.Steps,
		Attachments: req.Attachments,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDayNotFound):
		rest.WriteError(w, http.StatusNotFound, "Today's day does not exist yet", err.Error())
	case errors.Is(err, ErrTaskNotFound):
		rest.WriteError(w, http.StatusNotFound, "Task not found", err.Error())
	case errors.Is(err, ErrCannotEditStartedDay), errors.Is(err, ErrDeadlinePassed):
		rest.WriteError(w, http.StatusConflict, "Operation not allowed now", err.Error())
	case errors.Is(err, ErrCannotStartEmptyDay),
		errors.Is(err, ErrInvalidTaskIndex),
		errors.Is(err, ErrInvalidDeadline),
		errors.Is(err, ErrFocusInvariant):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Operation rejected", err.Error())
	default:
		log.Errorf("today operation failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
