package schedule_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/schedule"
	"github.com/noah-isme/backend-salon/internal/staff"
)

type bookRepo struct{ book schedule.Book }

func (r *bookRepo) Shifts() schedule.Book { return r.book.Clone() }

func (r *bookRepo) CycleShift(_ context.Context, staffID string, day time.Time) (schedule.Shift, error) {
	return r.book.Cycle(staffID, day), nil
}

func (r *bookRepo) SetShift(_ context.Context, staffID string, day time.Time, t schedule.Type) (schedule.Shift, error) {
	return r.book.Set(staffID, day, t)
}

func newRouter(repo *bookRepo) http.Handler {
	h := &schedule.Handler{Repo: repo, Roster: staff.DefaultRoster(), Location: time.UTC}
	r := chi.NewRouter()
	r.Get("/shifts", h.List)
	r.Post("/shifts/cycle", h.Cycle)
	r.Put("/shifts", h.Set)
	return r
}

func TestCycleEndpoint(t *testing.T) {
	repo := &bookRepo{}
	router := newRouter(repo)
	for _, want := range []schedule.Type{schedule.Early, schedule.Late, schedule.Off} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shifts/cycle", strings.NewReader(`{"staffId":"s2","date":"2025-12-03"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Data struct {
				Type  schedule.Type `json:"type"`
				Label string        `json:"label"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, want, body.Data.Type)
		require.Equal(t, want.Label(), body.Data.Label)
	}
	require.Equal(t, 1, repo.book.Len())
}

func TestUnrosteredStaffRejected(t *testing.T) {
	router := newRouter(&bookRepo{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shifts/cycle", strings.NewReader(`{"staffId":"s4","date":"2025-12-03"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetAndListRange(t *testing.T) {
	repo := &bookRepo{}
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/shifts", strings.NewReader(`{"staffId":"s1","date":"2025-12-03","type":"late"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/shifts", strings.NewReader(`{"staffId":"s1","date":"2025-12-03","type":"night"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shifts?from=2025-12-01&to=2025-12-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []schedule.Shift `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, schedule.Late, body.Data[0].Type)
}
