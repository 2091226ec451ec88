package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/member"
)

// checkoutOnRead settles a cart the first time a snapshot is read, so a
// checkout lands between any read a handler makes and its write.
type checkoutOnRead struct {
	*Store
	t    *testing.T
	cart *cart.Cart
	done bool
}

func (c *checkoutOnRead) settle() {
	if c.done {
		return
	}
	c.done = true
	_, err := c.Store.SettleTransaction(context.Background(), c.cart, checkout.PayMemberCard)
	require.NoError(c.t, err)
}

func (c *checkoutOnRead) Members() []member.Member {
	members := c.Store.Members()
	c.settle()
	return members
}

func (c *checkoutOnRead) Products() []catalog.Product {
	products := c.Store.Products()
	c.settle()
	return products
}

func patch(t *testing.T, h http.Handler, path, body string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMemberPatchKeepsConcurrentDebit(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryPersister())
	m, err := s.SaveMember(ctx, member.Member{ID: "m1", Name: "Lily", Balance: 1000, TierID: "tier_gold"})
	require.NoError(t, err)

	c := cart.New("c1", s.Tiers())
	c.SetMember(&m)
	c.AddTopUp(250, "s1")

	repo := &checkoutOnRead{Store: s, t: t, cart: c}
	r := chi.NewRouter()
	r.Patch("/members/{id}", (&member.Handler{Repo: repo, Tiers: s.Tiers()}).Update)
	patch(t, r, "/members/m1", `{"notes":"prefers nude tones"}`)
	repo.settle()

	require.Len(t, s.Transactions(), 1)
	stored, ok := member.FindByID(s.Members(), "m1")
	require.True(t, ok)
	require.EqualValues(t, 750, stored.Balance)
	require.Equal(t, "prefers nude tones", stored.Notes)
}

func TestProductPatchKeepsConcurrentDeduction(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryPersister())
	m, err := s.SaveMember(ctx, member.Member{ID: "m1", Name: "Lily", Balance: 1000, TierID: "tier_gold"})
	require.NoError(t, err)
	prod, err := s.SaveProduct(ctx, catalog.Product{ID: "p1", Name: "Oil", SellingPrice: 100, Stock: 3})
	require.NoError(t, err)

	c := cart.New("c1", s.Tiers())
	c.SetMember(&m)
	_, err = c.AddProduct(prod, "s1")
	require.NoError(t, err)

	repo := &checkoutOnRead{Store: s, t: t, cart: c}
	r := chi.NewRouter()
	r.Patch("/products/{id}", (&catalog.Handler{Repo: repo}).UpdateProduct)
	patch(t, r, "/products/p1", `{"name":"Cuticle oil"}`)
	repo.settle()

	left, ok := catalog.FindProduct(s.Products(), "p1")
	require.True(t, ok)
	require.Equal(t, 2, left.Stock)
	require.Equal(t, "Cuticle oil", left.Name)
}

func TestUpdateRecordsUnderLock(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, NewMemoryPersister())

	_, err := s.UpdateMember(ctx, "nope", func(m member.Member) member.Member { return m })
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateProduct(ctx, "nope", func(p catalog.Product) catalog.Product { return p })
	require.ErrorIs(t, err, ErrNotFound)

	svc, err := s.UpdateService(ctx, "srv1", func(x catalog.Service) catalog.Service {
		x.ID = "renamed"
		x.Price = 420
		return x
	})
	require.NoError(t, err)
	require.Equal(t, "srv1", svc.ID)
	got, ok := catalog.FindService(s.Services(), "srv1")
	require.True(t, ok)
	require.EqualValues(t, 420, got.Price)
	require.Len(t, s.Services(), 12)
}
