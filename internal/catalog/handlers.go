package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Repository is the catalog store behind the handlers.
type Repository interface {
	Services() []Service
	Products() []Product
	SaveService(ctx context.Context, s Service) (Service, error)
	UpdateService(ctx context.Context, id string, edit func(Service) Service) (Service, error)
	DeleteService(ctx context.Context, id string) error
	SaveProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, edit func(Product) Product) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Handler exposes service menu and inventory endpoints.
type Handler struct {
	Repo Repository
}

type servicePayload struct {
	Name           *string        `json:"name" validate:"omitempty,min=1"`
	Price          *pricing.Money `json:"price" validate:"omitempty,gte=0"`
	DurationMin    *int           `json:"durationMin" validate:"omitempty,gt=0"`
	Type           *ServiceType   `json:"type" validate:"omitempty,oneof=nails lashes hand_care tea consultation"`
	CommissionRate *pricing.Rate  `json:"commissionRate"`
}

type productPayload struct {
	Name           *string        `json:"name"`
	CostPrice      *pricing.Money `json:"costPrice" validate:"omitempty,gte=0"`
	SellingPrice   *pricing.Money `json:"sellingPrice" validate:"omitempty,gte=0"`
	Stock          *int           `json:"stock" validate:"omitempty,gte=0"`
	Image          *string        `json:"image"`
	Category       *Category      `json:"category" validate:"omitempty,oneof=crystal hand_care_supplies other"`
	CommissionRate *pricing.Rate  `json:"commissionRate"`
}

func (p servicePayload) apply(s Service) Service {
	if p.Name != nil {
		s.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.DurationMin != nil {
		s.DurationMin = *p.DurationMin
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.CommissionRate != nil {
		s.CommissionRate = *p.CommissionRate
	}
	return s
}

func (p productPayload) apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.CostPrice != nil {
		prod.CostPrice = *p.CostPrice
	}
	if p.SellingPrice != nil {
		prod.SellingPrice = *p.SellingPrice
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.CommissionRate != nil {
		prod.CommissionRate = *p.CommissionRate
	}
	return prod
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Repo == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog store not configured", nil)
		return false
	}
	return true
}

// ListServices handles GET /api/v1/services.
func (h *Handler) ListServices(w http.ResponseWriter, _ *http.Request) {
	if !h.ready(w) {
		return
	}
	common.Data(w, http.StatusOK, h.Repo.Services())
}

// CreateService handles POST /api/v1/services. Name and price are required.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req servicePayload
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Price == nil || *req.Price <= 0 {
		common.WriteError(w, common.Invalid("name and price are required", nil))
		return
	}
	svc := req.apply(Service{
		ID:             uuid.NewString(),
		DurationMin:    DefaultDurationMin,
		Type:           TypeNails,
		CommissionRate: DefaultServiceCommission,
	})
	saved, err := h.Repo.SaveService(r.Context(), svc)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// UpdateService handles PATCH /api/v1/services/{id}.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req servicePayload
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	saved, err := h.Repo.UpdateService(r.Context(), chi.URLParam(r, "id"), req.apply)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, saved)
}

// DeleteService handles DELETE /api/v1/services/{id}.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.Repo.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	if !h.ready(w) {
		return
	}
	common.Data(w, http.StatusOK, h.Repo.Products())
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req productPayload
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	prod := req.apply(Product{
		ID:       uuid.NewString(),
		Image:    DefaultProductImage,
		Category: CategoryOther,
	})
	if prod.Name == "" {
		prod.Name = DefaultProductName
	}
	if prod.Image == "" {
		prod.Image = DefaultProductImage
	}
	// new products always start at the default retail commission
	prod.CommissionRate = DefaultProductCommission
	saved, err := h.Repo.SaveProduct(r.Context(), prod)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// UpdateProduct handles PATCH /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req productPayload
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	saved, err := h.Repo.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.apply)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, saved)
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.Repo.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
