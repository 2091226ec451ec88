package member

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Repository is the member store the handlers read and write.
type Repository interface {
	Members() []Member
	SaveMember(ctx context.Context, m Member) (Member, error)
	// UpdateMember applies edit to the current record atomically.
	UpdateMember(ctx context.Context, id string, edit func(Member) Member) (Member, error)
}

// Handler exposes member management endpoints.
type Handler struct {
	Repo  Repository
	Tiers Tiers
	Now   func() time.Time
}

type createRequest struct {
	Name           string        `json:"name" validate:"required"`
	Phone          string        `json:"phone" validate:"required,min=3"`
	Balance        pricing.Money `json:"balance" validate:"gte=0"`
	TierID         string        `json:"tierId" validate:"required"`
	Notes          string        `json:"notes"`
	NailArchive    string        `json:"nailArchive"`
	LashArchive    string        `json:"lashArchive"`
	CustomDiscount *pricing.Rate `json:"customDiscount"`
}

type memberView struct {
	Member
	Discount       pricing.Rate `json:"discount"`
	DiscountSource Source       `json:"discountSource"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) view(m Member) memberView {
	rate, src := LookupDiscount(&m, h.Tiers)
	return memberView{Member: m, Discount: rate, DiscountSource: src}
}

// ListTiers handles GET /api/v1/tiers.
func (h *Handler) ListTiers(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, h.Tiers)
}

// List handles GET /api/v1/members?q=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "member store not configured", nil)
		return
	}
	found := Search(h.Repo.Members(), r.URL.Query().Get("q"))
	out := make([]memberView, 0, len(found))
	for _, m := range found {
		out = append(out, h.view(m))
	}
	common.Data(w, http.StatusOK, out)
}

// Get handles GET /api/v1/members/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "member store not configured", nil)
		return
	}
	m, ok := FindByID(h.Repo.Members(), chi.URLParam(r, "id"))
	if !ok {
		common.WriteError(w, common.NotFound("member", nil))
		return
	}
	common.Data(w, http.StatusOK, h.view(m))
}

// Create handles POST /api/v1/members.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "member store not configured", nil)
		return
	}
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.CustomDiscount != nil && !req.CustomDiscount.Valid() {
		common.WriteError(w, common.Invalid("customDiscount must be between 0 and 1", nil))
		return
	}
	if _, ok := h.Tiers.Find(req.TierID); !ok {
		common.WriteError(w, common.Invalid("unknown tier", map[string]string{"tierId": req.TierID}))
		return
	}
	phone := strings.TrimSpace(req.Phone)
	if _, exists := FindByPhone(h.Repo.Members(), phone); exists {
		common.JSONError(w, http.StatusConflict, "MEMBER_EXISTS", "a member with this phone already exists", nil)
		return
	}
	m := Member{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		Phone:          phone,
		Balance:        req.Balance,
		TierID:         req.TierID,
		JoinDate:       h.now(),
		Notes:          req.Notes,
		NailArchive:    req.NailArchive,
		LashArchive:    req.LashArchive,
		CustomDiscount: req.CustomDiscount,
	}
	saved, err := h.Repo.SaveMember(r.Context(), m)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, h.view(saved))
}

// Update handles PATCH /api/v1/members/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "member store not configured", nil)
		return
	}
	var patch Patch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(w, err)
		return
	}
	if patch.CustomDiscount != nil && !patch.CustomDiscount.Valid() {
		common.WriteError(w, common.Invalid("customDiscount must be between 0 and 1", nil))
		return
	}
	saved, err := h.Repo.UpdateMember(r.Context(), chi.URLParam(r, "id"), patch.Apply)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, h.view(saved))
}
