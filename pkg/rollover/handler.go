package rollover

import (
	"net/http"

	"github.com/klokku/focusweek/internal/rest"
	"github.com/klokku/focusweek/pkg/week_calendar"
)

type ReportDTO struct {
	Bootstrapped   bool     `json:"bootstrapped"`
	ExpiredDays    []string `json:"expiredDays"`
	FinalizedWeeks []string `json:"finalizedWeeks"`
	CreatedWeeks   []string `json:"createdWeeks"`
	PresentWeek    string   `json:"presentWeek"`
	Failures       int      `json:"failures"`
	ReconciledDate string   `json:"reconciledDate"`
	DurationMs     int64    `json:"durationMs"`
}

type Handler struct {
	runner Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{runner: runner}
}

// Reconcile godoc
// @Summary Run a reconciliation pass now
// @Tags Reconciliation
// @Produce json
// @Success 200 {object} ReportDTO
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/reconcile [post]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.RunReconciliationPass(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Reconciliation failed", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, ReportToDTO(report))
}

func ReportToDTO(report Report) ReportDTO {
	return ReportDTO{
		Bootstrapped:   report.Bootstrapped,
		ExpiredDays:    nonNil(report.ExpiredDays),
		FinalizedWeeks: nonNil(report.FinalizedWeeks),
		CreatedWeeks:   nonNil(report.CreatedWeeks),
		PresentWeek:    report.PresentWeek,
		Failures:       report.Failures,
		ReconciledDate: week_calendar.DayKey(report.ReconciledDate),
		DurationMs:     report.Duration.Milliseconds(),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
