package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

type fakeRepo struct {
	services []catalog.Service
	products []catalog.Product
}

func (f *fakeRepo) Services() []catalog.Service { return f.services }
func (f *fakeRepo) Products() []catalog.Product { return f.products }

func (f *fakeRepo) SaveService(_ context.Context, s catalog.Service) (catalog.Service, error) {
	for i := range f.services {
		if f.services[i].ID == s.ID {
			f.services[i] = s
			return s, nil
		}
	}
	f.services = append(f.services, s)
	return s, nil
}

func (f *fakeRepo) UpdateService(_ context.Context, id string, edit func(catalog.Service) catalog.Service) (catalog.Service, error) {
	for i := range f.services {
		if f.services[i].ID == id {
			f.services[i] = edit(f.services[i])
			return f.services[i], nil
		}
	}
	return catalog.Service{}, common.NotFound("service", nil)
}

func (f *fakeRepo) DeleteService(_ context.Context, id string) error {
	out := f.services[:0]
	for _, s := range f.services {
		if s.ID != id {
			out = append(out, s)
		}
	}
	f.services = out
	return nil
}

func (f *fakeRepo) SaveProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
			return p, nil
		}
	}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, id string, edit func(catalog.Product) catalog.Product) (catalog.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i] = edit(f.products[i])
			return f.products[i], nil
		}
	}
	return catalog.Product{}, common.NotFound("product", nil)
}

func (f *fakeRepo) DeleteProduct(_ context.Context, id string) error {
	out := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	f.products = out
	return nil
}

func router(h *catalog.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/services", h.ListServices)
	r.Post("/services", h.CreateService)
	r.Patch("/services/{id}", h.UpdateService)
	r.Delete("/services/{id}", h.DeleteService)
	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Patch("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServiceDefaults(t *testing.T) {
	repo := &fakeRepo{services: catalog.DefaultServices()}
	h := router(&catalog.Handler{Repo: repo})

	rec := do(t, h, http.MethodPost, "/services", `{"name":"Gel removal","price":120}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, repo.services, 13)
	created := repo.services[12]
	require.Equal(t, catalog.DefaultDurationMin, created.DurationMin)
	require.Equal(t, catalog.TypeNails, created.Type)
	require.Equal(t, catalog.DefaultServiceCommission, created.CommissionRate)

	rec = do(t, h, http.MethodPost, "/services", `{"name":"No price"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPatch, "/services/srv1", `{"price":420}`)
	require.Equal(t, http.StatusOK, rec.Code)
	svc, _ := catalog.FindService(repo.services, "srv1")
	require.Equal(t, pricing.Money(420), svc.Price)
	require.Equal(t, "极致单色美甲", svc.Name)

	rec = do(t, h, http.MethodDelete, "/services/srv1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := catalog.FindService(repo.services, "srv1")
	require.False(t, ok)
}

func TestProductDefaultsAndPatch(t *testing.T) {
	repo := &fakeRepo{}
	h := router(&catalog.Handler{Repo: repo})

	rec := do(t, h, http.MethodPost, "/products", `{"sellingPrice":100,"stock":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, catalog.DefaultProductName, resp.Data.Name)
	require.Equal(t, catalog.CategoryOther, resp.Data.Category)
	require.Equal(t, catalog.DefaultProductCommission, resp.Data.CommissionRate)

	rec = do(t, h, http.MethodPatch, "/products/"+resp.Data.ID, `{"stock":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, repo.products[0].Stock)
	require.Equal(t, pricing.Money(100), repo.products[0].SellingPrice)

	rec = do(t, h, http.MethodPatch, "/products/"+resp.Data.ID, `{"stock":-1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPatch, "/products/missing", `{"stock":1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
