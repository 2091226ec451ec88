package member_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/member"
)

type memRepo struct {
	members []member.Member
}

func (r *memRepo) Members() []member.Member { return r.members }

func (r *memRepo) SaveMember(_ context.Context, m member.Member) (member.Member, error) {
	for i := range r.members {
		if r.members[i].ID == m.ID {
			r.members[i] = m
			return m, nil
		}
	}
	r.members = append(r.members, m)
	return m, nil
}

func (r *memRepo) UpdateMember(_ context.Context, id string, edit func(member.Member) member.Member) (member.Member, error) {
	for i := range r.members {
		if r.members[i].ID == id {
			r.members[i] = edit(r.members[i])
			return r.members[i], nil
		}
	}
	return member.Member{}, common.NotFound("member", nil)
}

func newRouter(h *member.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/members", h.List)
	r.Post("/members", h.Create)
	r.Get("/members/{id}", h.Get)
	r.Patch("/members/{id}", h.Update)
	return r
}

func TestCreateAndPatchMember(t *testing.T) {
	repo := &memRepo{}
	router := newRouter(&member.Handler{Repo: repo, Tiers: member.DefaultTiers()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/members",
		strings.NewReader(`{"name":"Ann","phone":"13800000000","balance":1000,"tierId":"tier_gold"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID       string  `json:"id"`
			Discount float64 `json:"discount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.InDelta(t, 0.88, created.Data.Discount, 1e-9)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/members/"+created.Data.ID,
		strings.NewReader(`{"customDiscount":0}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, repo.members[0].CustomDiscount)
	require.EqualValues(t, 0, *repo.members[0].CustomDiscount)
	require.Equal(t, "Ann", repo.members[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members?q=1380", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"discountSource":"custom"`)
}

func TestCreateMemberValidation(t *testing.T) {
	router := newRouter(&member.Handler{Repo: &memRepo{}, Tiers: member.DefaultTiers()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/members", strings.NewReader(`{"phone":"1"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/members",
		strings.NewReader(`{"name":"Ann","phone":"13800000000","tierId":"tier_unknown"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetMemberNotFound(t *testing.T) {
	router := newRouter(&member.Handler{Repo: &memRepo{}, Tiers: member.DefaultTiers()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchMissingMember(t *testing.T) {
	router := newRouter(&member.Handler{Repo: &memRepo{}, Tiers: member.DefaultTiers()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/members/missing", strings.NewReader(`{"notes":"x"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
