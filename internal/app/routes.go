package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Today
	r.HandleFunc("/api/today", deps.TodayHandler.GetToday).Methods("GET")
	r.HandleFunc("/api/today/task", deps.TodayHandler.AddTask).Methods("POST")
	r.HandleFunc("/api/today/task/order", deps.TodayHandler.ReorderTasks).Methods("PUT")
	r.HandleFunc("/api/today/task/{taskId}", deps.TodayHandler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/today/task/{taskId}", deps.TodayHandler.DeleteTask).Methods("DELETE")
	r.HandleFunc("/api/today/start", deps.TodayHandler.StartDay).Methods("POST")
	r.HandleFunc("/api/today/focus/done", deps.TodayHandler.CompleteFocusTask).Methods("POST")
	r.HandleFunc("/api/today/deadline", deps.TodayHandler.ChangeDeadline).Methods("PUT")

	// Weeks
	r.HandleFunc("/api/week/present", deps.WeekHandler.GetPresentWeek).Methods("GET")
	r.HandleFunc("/api/week", deps.WeekHandler.ListWeeks).Methods("GET")
	r.HandleFunc("/api/week", deps.WeekHandler.CreateWeek).Methods("POST")
	r.HandleFunc("/api/week/{weekKey}", deps.WeekHandler.DeleteWeek).Methods("DELETE")
	r.HandleFunc("/api/week/{weekKey}/day", deps.WeekHandler.GetWeekDays).Methods("GET")
	r.HandleFunc("/api/day/{dayKey}", deps.WeekHandler.GetDay).Methods("GET")

	// Reconciliation
	r.HandleFunc("/api/reconcile", deps.ReconcileHandler.Reconcile).Methods("POST")
	r.HandleFunc("/api/progress", deps.ProgressHandler.GetProgress).Methods("GET")

	r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
}
