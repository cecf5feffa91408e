package today

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/focusweek/internal/rest"
	"github.com/klokku/focusweek/pkg/week"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, testEnv) {
	env := setupTestEnv(t)
	handler := NewHandler(env.service)

	r := mux.NewRouter()
	r.HandleFunc("/api/today", handler.GetToday).Methods("GET")
	r.HandleFunc("/api/today/task", handler.AddTask).Methods("POST")
	r.HandleFunc("/api/today/task/order", handler.ReorderTasks).Methods("PUT")
	r.HandleFunc("/api/today/task/{taskId}", handler.UpdateTask).Methods("PUT")
	r.HandleFunc("/api/today/task/{taskId}", handler.DeleteTask).Methods("DELETE")
	r.HandleFunc("/api/today/start", handler.StartDay).Methods("POST")
	r.HandleFunc("/api/today/focus/done", handler.CompleteFocusTask).Methods("POST")
	r.HandleFunc("/api/today/deadline", handler.ChangeDeadline).Methods("PUT")
	return r, env
}

func doRequest(r http.Handler, method string, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeDay(t *testing.T, w *httptest.ResponseRecorder) week.DayDTO {
	var dto week.DayDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	return dto
}

func intPtr(v int) *int { return &v }

func TestHandler_Today(t *testing.T) {
	t.Run("should plan, start and finish the day", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/today/task", TaskRequest{Title: "A", Category: "ddl", Steps: []string{"one"}})
		require.Equal(t, http.StatusCreated, w.Code)
		var task week.TaskDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, "T01", task.Number)
		assert.Equal(t, "ddl", task.Category)
		assert.Equal(t, []string{"one"}, task.Steps)
		assert.Equal(t, []week.Attachment{}, task.Attachments)

		w = doRequest(r, http.MethodPost, "/api/today/start", nil)
		require.Equal(t, http.StatusOK, w.Code)
		day := decodeDay(t, w)
		assert.Equal(t, "executing", day.Status)
		require.Len(t, day.Tasks, 1)
		assert.Equal(t, "focus", day.Tasks[0].Zone)

		w = doRequest(r, http.MethodPost, "/api/today/focus/done", nil)
		require.Equal(t, http.StatusOK, w.Code)
		day = decodeDay(t, w)
		assert.Equal(t, "completed", day.Status)
		assert.Equal(t, 1, day.Tasks[0].CompletedOrder)

		w = doRequest(r, http.MethodGet, "/api/today", nil)
		require.Equal(t, http.StatusOK, w.Code)
		day = decodeDay(t, w)
		assert.Equal(t, "2026-10-14", day.Key)
		assert.Equal(t, "2026-W42", day.WeekKey)
		assert.Equal(t, "completed", day.Status)
	})

	t.Run("should return 404 when today is missing", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.clock.SetNow(time.Date(2026, 10, 21, 10, 0, 0, 0, time.Local))

		w := doRequest(r, http.MethodGet, "/api/today", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_AddTask(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing title", TaskRequest{}},
		{"unknown category", TaskRequest{Title: "A", Category: "chores"}},
		{"empty step", TaskRequest{Title: "A", Steps: []string{""}}},
		{"malformed body", "not an object"},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			r, env := setupHandlerTest(t)

			w := doRequest(r, http.MethodPost, "/api/today/task", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp rest.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
			assert.Empty(t, env.storedToday(t).Tasks)
		})
	}

	t.Run("should return 409 once the day started", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")
		_, err := env.service.StartDay(ctx)
		require.NoError(t, err)

		w := doRequest(r, http.MethodPost, "/api/today/task", TaskRequest{Title: "B"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_EditTasks(t *testing.T) {
	t.Run("should update a task", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		tasks := env.addTasks(t, "A")

		w := doRequest(r, http.MethodPut, "/api/today/task/"+tasks[0].Id, TaskRequest{Title: "A2", Description: "more"})

		require.Equal(t, http.StatusOK, w.Code)
		var task week.TaskDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&task))
		assert.Equal(t, "A2", task.Title)
		assert.Equal(t, "more", task.Description)
	})

	t.Run("should return 404 for an unknown task", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodDelete, "/api/today/task/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should delete a task", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		tasks := env.addTasks(t, "A", "B")

		w := doRequest(r, http.MethodDelete, "/api/today/task/"+tasks[0].Id, nil)

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"B"}, planningTitles(env.storedToday(t)))
	})

	t.Run("should reorder tasks", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A", "B", "C")

		w := doRequest(r, http.MethodPut, "/api/today/task/order", ReorderRequest{FromIndices: []int{0}, ToIndex: intPtr(3)})

		require.Equal(t, http.StatusOK, w.Code)
		day := decodeDay(t, w)
		require.Len(t, day.Tasks, 3)
		assert.Equal(t, "B", day.Tasks[0].Title)
		assert.Equal(t, "A", day.Tasks[2].Title)
		assert.Equal(t, "T03", day.Tasks[2].Number)
	})

	t.Run("should return 422 for an out of range move", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodPut, "/api/today/task/order", ReorderRequest{FromIndices: []int{5}, ToIndex: intPtr(0)})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("should require a destination", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodPut, "/api/today/task/order", ReorderRequest{FromIndices: []int{0}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_StartDay(t *testing.T) {
	t.Run("should return 409 for an empty day", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/today/start", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should return 422 for a draft day without tasks", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		tasks := env.addTasks(t, "A")
		require.NoError(t, env.service.DeleteTask(ctx, tasks[0].Id))

		w := doRequest(r, http.MethodPost, "/api/today/start", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("should return 500 when the start cannot be stored", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")
		env.progress.SetErr(assert.AnError)

		w := doRequest(r, http.MethodPost, "/api/today/start", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, week.DayDraft, env.storedToday(t).Status)
	})

	t.Run("should return 409 when completing without executing", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodPost, "/api/today/focus/done", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_ChangeDeadline(t *testing.T) {
	t.Run("should change the deadline", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodPut, "/api/today/deadline", DeadlineRequest{Hour: intPtr(0), Minute: intPtr(30)})

		require.Equal(t, http.StatusOK, w.Code)
		day := decodeDay(t, w)
		assert.Equal(t, 0, day.DeadlineHour)
		assert.Equal(t, 30, day.DeadlineMinute)
		assert.True(t, time.Date(2026, 10, 14, 0, 30, 0, 0, time.Local).Equal(day.Deadline))
	})

	t.Run("should return 409 after the deadline", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")
		env.clock.SetNow(time.Date(2026, 10, 14, 20, 30, 0, 0, time.Local))

		w := doRequest(r, http.MethodPut, "/api/today/deadline", DeadlineRequest{Hour: intPtr(22), Minute: intPtr(0)})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should validate the time", func(t *testing.T) {
		r, env := setupHandlerTest(t)
		env.addTasks(t, "A")

		w := doRequest(r, http.MethodPut, "/api/today/deadline", DeadlineRequest{Hour: intPtr(25), Minute: intPtr(0)})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
