package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/staff"
)

// Source provides the current catalog and member snapshots.
type Source interface {
	Services() []catalog.Service
	Products() []catalog.Product
	Members() []member.Member
}

// Handler exposes point-of-sale cart endpoints.
type Handler struct {
	Carts        *Registry
	Source       Source
	Roster       staff.Roster
	DefaultStaff string
	Logger       zerolog.Logger
}

type addServiceRequest struct {
	ServiceID string `json:"serviceId" validate:"required"`
	StaffID   string `json:"staffId"`
}

type addProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
	StaffID   string `json:"staffId"`
}

type addTopUpRequest struct {
	Amount  pricing.Money `json:"amount" validate:"gt=0"`
	StaffID string        `json:"staffId"`
}

type assignStaffRequest struct {
	StaffID string `json:"staffId" validate:"required"`
}

type setMemberRequest struct {
	MemberID string `json:"memberId" validate:"required"`
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Carts == nil || h.Source == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return false
	}
	return true
}

func (h *Handler) staffFor(requested string) (string, error) {
	if requested == "" {
		return h.DefaultStaff, nil
	}
	if !h.Roster.Contains(requested) {
		return "", common.Invalid("unknown staff member", map[string]string{"staffId": requested})
	}
	return requested, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.WriteError(w, common.NotFound("cart", err))
	case errors.Is(err, ErrLineIndex):
		common.WriteError(w, common.NotFound("cart line", err))
	case errors.Is(err, ErrStockExceeded):
		common.JSONError(w, http.StatusConflict, "STOCK_EXCEEDED", "not enough stock for another unit", nil)
	default:
		common.WriteError(w, err)
	}
}

// respond renders the cart identified by id.
func (h *Handler) respond(w http.ResponseWriter, status int, id string) {
	var body []byte
	err := h.Carts.With(id, func(c *Cart) error {
		var mErr error
		body, mErr = c.MarshalJSON()
		return mErr
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, status, json.RawMessage(body))
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, _ *http.Request) {
	if !h.ready(w) {
		return
	}
	h.respond(w, http.StatusCreated, h.Carts.Open())
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.respond(w, http.StatusOK, chi.URLParam(r, "id"))
}

// Discard handles DELETE /api/v1/carts/{id}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.Carts.Discard(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// AddService handles POST /api/v1/carts/{id}/services.
func (h *Handler) AddService(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req addServiceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	svc, ok := catalog.FindService(h.Source.Services(), req.ServiceID)
	if !ok {
		common.WriteError(w, common.NotFound("service", nil))
		return
	}
	staffID, err := h.staffFor(req.StaffID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error {
		c.AddService(svc, staffID)
		return nil
	}); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// AddProduct handles POST /api/v1/carts/{id}/products.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req addProductRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	prod, ok := catalog.FindProduct(h.Source.Products(), req.ProductID)
	if !ok {
		common.WriteError(w, common.NotFound("product", nil))
		return
	}
	staffID, err := h.staffFor(req.StaffID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	err = h.Carts.With(id, func(c *Cart) error {
		_, addErr := c.AddProduct(prod, staffID)
		return addErr
	})
	if errors.Is(err, ErrStockExceeded) {
		h.Logger.Info().Str("cart_id", id).Str("product_id", prod.ID).Int("stock", prod.Stock).Msg("stock exceeded")
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// AddTopUp handles POST /api/v1/carts/{id}/topups.
func (h *Handler) AddTopUp(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req addTopUpRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	staffID, err := h.staffFor(req.StaffID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error {
		c.AddTopUp(req.Amount, staffID)
		return nil
	}); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

func lineIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, common.NewAppError("BAD_REQUEST", "line index must be an integer", http.StatusBadRequest, err)
	}
	return idx, nil
}

// RemoveLine handles DELETE /api/v1/carts/{id}/lines/{index}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	idx, err := lineIndex(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error { return c.RemoveAt(idx) }); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// AssignStaff handles PATCH /api/v1/carts/{id}/lines/{index}.
func (h *Handler) AssignStaff(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	idx, err := lineIndex(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var req assignStaffRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	staffID, err := h.staffFor(req.StaffID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error { return c.AssignStaff(idx, staffID) }); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// SetMember handles PUT /api/v1/carts/{id}/member.
func (h *Handler) SetMember(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req setMemberRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	m, ok := member.FindByID(h.Source.Members(), req.MemberID)
	if !ok {
		common.WriteError(w, common.NotFound("member", nil))
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error {
		if src := c.SetMember(&m); src == member.SourceUnresolved {
			h.Logger.Warn().Str("member_id", m.ID).Str("tier_id", m.TierID).Msg("unresolved tier, charging full price")
		}
		return nil
	}); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}

// ClearMember handles DELETE /api/v1/carts/{id}/member.
func (h *Handler) ClearMember(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Carts.With(id, func(c *Cart) error {
		c.SetMember(nil)
		return nil
	}); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, id)
}
