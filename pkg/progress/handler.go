package progress

import (
	"net/http"
	"time"

	"github.com/klokku/focusweek/internal/rest"
	"github.com/klokku/focusweek/pkg/week_calendar"
	log "github.com/sirupsen/logrus"
)

type ProgressDTO struct {
	DaysStartedCount    int        `json:"daysStartedCount"`
	FirstActivationDate string     `json:"firstActivationDate,omitempty"`
	LastReconciledDate  string     `json:"lastReconciledDate,omitempty"`
	LastReconciledAt    *time.Time `json:"lastReconciledAt,omitempty"`
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// GetProgress godoc
// @Summary Get process progress
// @Tags Progress
// @Produce json
// @Success 200 {object} ProgressDTO
// @Router /api/progress [get]
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.Get(r.Context())
	if err != nil {
		log.Errorf("failed to get progress: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to get progress", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(p))
}

func ToDTO(p Progress) ProgressDTO {
	dto := ProgressDTO{
		DaysStartedCount: p.DaysStartedCount,
		LastReconciledAt: p.LastReconciledAt,
	}
	if p.FirstActivationDate != nil {
		dto.FirstActivationDate = week_calendar.DayKey(*p.FirstActivationDate)
	}
	if p.LastReconciledDate != nil {
		dto.LastReconciledDate = week_calendar.DayKey(*p.LastReconciledDate)
	}
	return dto
}
