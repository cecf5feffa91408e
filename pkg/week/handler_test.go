package week

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/focusweek/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *ServiceImpl) {
	service, _, _ := setupService(t)
	handler := NewHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/week/present", handler.GetPresentWeek).Methods("GET")
	r.HandleFunc("/api/week", handler.ListWeeks).Methods("GET")
	r.HandleFunc("/api/week", handler.CreateWeek).Methods("POST")
	r.HandleFunc("/api/week/{weekKey}", handler.DeleteWeek).Methods("DELETE")
	r.HandleFunc("/api/week/{weekKey}/day", handler.GetWeekDays).Methods("GET")
	r.HandleFunc("/api/day/{dayKey}", handler.GetDay).Methods("GET")
	return r, service
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

func TestHandler_GetPresentWeek(t *testing.T) {
	r, _ := setupHandlerTest(t)

	w := doRequest(r, http.MethodGet, "/api/week/present", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var dto WeekDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, "2026-W42", dto.Key)
	assert.Equal(t, "2026-10-12", dto.StartDate)
	assert.Equal(t, "2026-10-18", dto.EndDate)
	assert.Equal(t, "present", dto.Status)
}

func TestHandler_GetPresentWeek_Finalized(t *testing.T) {
	service, repo, _ := setupService(t)
	w, days := NewWeek(time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local), WeekPast, DefaultDayDefaults)
	require.NoError(t, repo.CreateWeek(ctx, w, days))
	r := mux.NewRouter()
	r.HandleFunc("/api/week/present", NewHandler(service).GetPresentWeek).Methods("GET")

	resp := doRequest(r, http.MethodGet, "/api/week/present", nil)

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHandler_CreateWeek(t *testing.T) {
	t.Run("should create week by key", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{Key: "2026-W44"})

		require.Equal(t, http.StatusCreated, w.Code)
		var dto WeekDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "2026-W44", dto.Key)
		assert.Equal(t, "pending", dto.Status)
	})

	t.Run("should create week by date", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{Date: "2026-11-04"})

		require.Equal(t, http.StatusCreated, w.Code)
		var dto WeekDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "2026-W45", dto.Key)
	})

	t.Run("should return conflict for duplicate", func(t *testing.T) {
		r, _ := setupHandlerTest(t)
		require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{Key: "2026-W44"}).Code)

		w := doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{Key: "2026-W44"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should reject empty request", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject malformed key", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodPost, "/api/week", CreateWeekRequest{Key: "2026-X44"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		var errResponse rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
		assert.Equal(t, "Invalid week key", errResponse.Error)
	})
}

func TestHandler_ListWeeks(t *testing.T) {
	t.Run("should list pending weeks of month", func(t *testing.T) {
		r, service := setupHandlerTest(t)
		for _, key := range []string{"2026-W44", "2026-W45"} {
			_, err := service.CreatePendingWeek(ctx, key)
			require.NoError(t, err)
		}

		w := doRequest(r, http.MethodGet, "/api/week?status=pending&month=2026-11", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dtos []WeekDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "2026-W45", dtos[0].Key)
	})

	t.Run("should reject invalid status", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodGet, "/api/week?status=soon", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject invalid month", func(t *testing.T) {
		r, _ := setupHandlerTest(t)

		w := doRequest(r, http.MethodGet, "/api/week?status=past&month=11-2026", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_DeleteWeek(t *testing.T) {
	r, service := setupHandlerTest(t)
	_, err := service.CreatePendingWeek(ctx, "2026-W44")
	require.NoError(t, err)
	_, err = service.GetPresentWeek(ctx)
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, doRequest(r, http.MethodDelete, "/api/week/2026-W42", nil).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodDelete, "/api/week/2026-W44", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/api/week/2026-W44", nil).Code)
}

func TestHandler_Days(t *testing.T) {
	r, service := setupHandlerTest(t)
	_, err := service.GetPresentWeek(ctx)
	require.NoError(t, err)

	t.Run("should return seven days", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/week/2026-W42/day", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dtos []DayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		require.Len(t, dtos, 7)
		assert.Equal(t, "empty", dtos[0].Status)
		assert.Equal(t, 22, dtos[0].DeadlineHour)
		assert.NotNil(t, dtos[0].Tasks)
	})

	t.Run("should return day", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/day/2026-10-14", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var dto DayDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "2026-10-14", dto.Date)
		assert.Equal(t, "2026-W42", dto.WeekKey)
	})

	t.Run("should return not found and bad request", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/api/day/2026-12-01", nil).Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/api/day/yesterday", nil).Code)
		assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/api/week/2026-W01/day", nil).Code)
	})
}
