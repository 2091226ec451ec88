package booking_test

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

	"github.com/noah-isme/backend-salon/internal/booking"
	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/staff"
)

type fakeRepo struct {
	bookings []booking.Booking
	members  []member.Member
}

func (f *fakeRepo) Bookings() []booking.Booking  { return f.bookings }
func (f *fakeRepo) Services() []catalog.Service  { return catalog.DefaultServices() }
func (f *fakeRepo) Members() []member.Member     { return f.members }
func (f *fakeRepo) AddBooking(_ context.Context, b booking.Booking) (booking.Booking, error) {
	f.bookings = append(f.bookings, b)
	return b, nil
}
func (f *fakeRepo) DeleteBooking(_ context.Context, id string) error {
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return booking.ErrNotFound
}

func newRouter(repo *fakeRepo) http.Handler {
	h := &booking.Handler{Repo: repo, Roster: staff.DefaultRoster(), Tiers: member.DefaultTiers(), Location: time.UTC}
	r := chi.NewRouter()
	r.Get("/bookings", h.List)
	r.Post("/bookings", h.Create)
	r.Delete("/bookings/{id}", h.Delete)
	return r
}

func TestCreateAndListByDay(t *testing.T) {
	repo := &fakeRepo{members: []member.Member{{ID: "m1", Name: "Ann", Phone: "13800000001", TierID: "tier_gold"}}}
	router := newRouter(repo)

	body := `{"phone":"13800000001","staffId":"s1","serviceId":"srv1","date":"2025-12-03","time":"14:30"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data booking.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, int64(350), created.Data.EstimatedPrice)
	require.Equal(t, "Ann", created.Data.CustomerName)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?date=2025-12-03", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Data []booking.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?date=2025-12-04", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Empty(t, listed.Data)
}

func TestCreateValidation(t *testing.T) {
	router := newRouter(&fakeRepo{})
	cases := map[string]struct {
		body   string
		status int
	}{
		"unknown staff":   {`{"customerName":"A","staffId":"s9","serviceId":"srv1","date":"2025-12-03"}`, http.StatusUnprocessableEntity},
		"missing service": {`{"customerName":"A","staffId":"s1","date":"2025-12-03"}`, http.StatusUnprocessableEntity},
		"unknown service": {`{"customerName":"A","staffId":"s1","serviceId":"x","date":"2025-12-03"}`, http.StatusNotFound},
		"bad date":        {`{"customerName":"A","staffId":"s1","serviceId":"srv1","date":"03/12/2025"}`, http.StatusUnprocessableEntity},
		"no name":         {`{"staffId":"s1","serviceId":"srv1","date":"2025-12-03"}`, http.StatusUnprocessableEntity},
		"manual no price": {`{"customerName":"A","staffId":"s1","manualService":{"name":"x"},"date":"2025-12-03"}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteBooking(t *testing.T) {
	repo := &fakeRepo{bookings: []booking.Booking{{ID: "b1"}}}
	router := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/bookings/b1", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, repo.bookings)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/bookings/b1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRangeRequiresBothBounds(t *testing.T) {
	router := newRouter(&fakeRepo{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?from=2025-12-01", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
