package booking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/staff"
)

const (
	dayLayout   = "2006-01-02"
	clockLayout = "15:04"
	defaultTime = "10:00"
)

// Repository stores bookings and exposes the data they are priced against.
type Repository interface {
	Bookings() []Booking
	Services() []catalog.Service
	Members() []member.Member
	AddBooking(ctx context.Context, b Booking) (Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// Handler exposes the appointment calendar.
type Handler struct {
	Repo   Repository
	Roster staff.Roster
	Tiers  member.Tiers
	// Location interprets calendar dates; nil means time.Local.
	Location *time.Location
}

type manualPayload struct {
	Name        string        `json:"name" validate:"required"`
	Price       pricing.Money `json:"price" validate:"gt=0"`
	DurationMin int           `json:"durationMin" validate:"gte=0"`
}

type createRequest struct {
	CustomerName string         `json:"customerName"`
	Phone        string         `json:"phone"`
	StaffID      string         `json:"staffId" validate:"required"`
	ServiceID    string         `json:"serviceId"`
	Manual       *manualPayload `json:"manualService"`
	Date         string         `json:"date" validate:"required"`
	Time         string         `json:"time"`
}

func (h *Handler) loc() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *Handler) parseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, value, h.loc())
	if err != nil {
		return time.Time{}, common.Invalid("dates must use YYYY-MM-DD", map[string]string{"date": value})
	}
	return day, nil
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "booking store not configured", nil)
		return false
	}
	return true
}

// List handles GET /api/v1/bookings?date=YYYY-MM-DD or ?from=&to=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	q := r.URL.Query()
	all := h.Repo.Bookings()
	if date := q.Get("date"); date != "" {
		day, err := h.parseDay(date)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		common.Data(w, http.StatusOK, ForDate(all, day))
		return
	}
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		common.Data(w, http.StatusOK, all)
		return
	}
	if from == "" || to == "" {
		common.WriteError(w, common.Invalid("from and to must be given together", nil))
		return
	}
	lo, err := h.parseDay(from)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	hi, err := h.parseDay(to)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if hi.Before(lo) {
		common.WriteError(w, common.Invalid("to must not be before from", nil))
		return
	}
	common.Data(w, http.StatusOK, InRange(all, lo, hi))
}

// Create handles POST /api/v1/bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if !h.Roster.Contains(req.StaffID) {
		common.WriteError(w, common.Invalid("unknown staff member", map[string]string{"staffId": req.StaffID}))
		return
	}
	clock := req.Time
	if clock == "" {
		clock = defaultTime
	}
	start, err := time.ParseInLocation(dayLayout+" "+clockLayout, req.Date+" "+clock, h.loc())
	if err != nil {
		common.WriteError(w, common.Invalid("date must be YYYY-MM-DD and time HH:MM", nil))
		return
	}

	in := Request{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		StaffID:      req.StaffID,
		ServiceID:    req.ServiceID,
		Date:         start,
	}
	if req.Manual != nil {
		in.Manual = &Manual{Name: req.Manual.Name, Price: req.Manual.Price, DurationMin: req.Manual.DurationMin}
	}
	b, err := New(in, Env{Services: h.Repo.Services(), Members: h.Repo.Members(), Tiers: h.Tiers})
	switch {
	case errors.Is(err, ErrUnknownService):
		common.WriteError(w, common.NotFound("service", err))
		return
	case errors.Is(err, ErrServiceRequired):
		common.WriteError(w, common.Invalid("serviceId or manualService is required", nil))
		return
	case err != nil:
		common.WriteError(w, err)
		return
	}
	if b.CustomerName == "" {
		common.WriteError(w, common.Invalid("customerName is required", nil))
		return
	}
	saved, err := h.Repo.AddBooking(r.Context(), b)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// Delete handles DELETE /api/v1/bookings/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	err := h.Repo.DeleteBooking(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		common.WriteError(w, common.NotFound("booking", err))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
