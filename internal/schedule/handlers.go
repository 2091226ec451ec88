package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/staff"
)

// Repository persists rota changes.
type Repository interface {
	Shifts() Book
	CycleShift(ctx context.Context, staffID string, day time.Time) (Shift, error)
	SetShift(ctx context.Context, staffID string, day time.Time, t Type) (Shift, error)
}

// Handler exposes the shift rota.
type Handler struct {
	Repo Repository
	// Roster is the full staff list; only rostered staff take shifts.
	Roster   staff.Roster
	Location *time.Location
}

type cycleRequest struct {
	StaffID string `json:"staffId" validate:"required"`
	Date    string `json:"date" validate:"required"`
}

type setRequest struct {
	StaffID string `json:"staffId" validate:"required"`
	Date    string `json:"date" validate:"required"`
	Type    Type   `json:"type" validate:"required,oneof=early late off"`
}

type shiftView struct {
	Shift
	Label string `json:"label"`
}

func view(s Shift) shiftView { return shiftView{Shift: s, Label: s.Type.Label()} }

func (h *Handler) loc() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *Handler) day(value string) (time.Time, error) {
	d, err := time.ParseInLocation(dayLayout, value, h.loc())
	if err != nil {
		return time.Time{}, common.Invalid("dates must use YYYY-MM-DD", map[string]string{"date": value})
	}
	return d, nil
}

func (h *Handler) checkStaff(id string) error {
	if !h.Roster.Scheduled().Contains(id) {
		return common.Invalid("staff member does not take shifts", map[string]string{"staffId": id})
	}
	return nil
}

// List handles GET /api/v1/shifts?from=YYYY-MM-DD&to=YYYY-MM-DD. Without a
// range the current month is returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shift store not configured", nil)
		return
	}
	now := time.Now().In(h.loc())
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc())
	from, err := h.day(common.QueryDefault(r, "from", first.Format(dayLayout)))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	to, err := h.day(common.QueryDefault(r, "to", first.AddDate(0, 1, -1).Format(dayLayout)))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	shifts := h.Repo.Shifts().Range(from, to)
	out := make([]shiftView, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, view(s))
	}
	common.Data(w, http.StatusOK, out)
}

// Cycle handles POST /api/v1/shifts/cycle.
func (h *Handler) Cycle(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shift store not configured", nil)
		return
	}
	var req cycleRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.checkStaff(req.StaffID); err != nil {
		common.WriteError(w, err)
		return
	}
	day, err := h.day(req.Date)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	s, err := h.Repo.CycleShift(r.Context(), req.StaffID, day)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view(s))
}

// Set handles PUT /api/v1/shifts.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shift store not configured", nil)
		return
	}
	var req setRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.checkStaff(req.StaffID); err != nil {
		common.WriteError(w, err)
		return
	}
	day, err := h.day(req.Date)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	s, err := h.Repo.SetShift(r.Context(), req.StaffID, day, req.Type)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view(s))
}
