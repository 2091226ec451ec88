package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/member"
)

type stubSettler struct {
	member *member.Member
	calls  int
}

func (s *stubSettler) SettleTransaction(_ context.Context, c *cart.Cart, method checkout.PaymentMethod) (checkout.Settlement, error) {
	s.calls++
	return checkout.Settle(c, s.member, method, time.Now(), checkout.Options{})
}

func newCheckoutRouter(settler *stubSettler, carts *cart.Registry) http.Handler {
	h := &checkout.Handler{Carts: carts, Settler: settler, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Post("/carts/{id}/checkout", h.Checkout)
	return r
}

func TestCheckoutInsufficientBalanceKeepsCart(t *testing.T) {
	m := &member.Member{ID: "m1", Name: "Ann", TierID: "tier_silver", Balance: 200}
	carts := cart.NewRegistry(member.DefaultTiers())
	id := carts.Open()
	require.NoError(t, carts.With(id, func(c *cart.Cart) error {
		c.SetMember(m)
		c.AddTopUp(250, "s1")
		return nil
	}))

	router := newCheckoutRouter(&stubSettler{member: m}, carts)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+id+"/checkout", strings.NewReader(`{"paymentMethod":"member_card"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "INSUFFICIENT_BALANCE")

	require.NoError(t, carts.With(id, func(c *cart.Cart) error {
		require.Equal(t, 1, c.Len())
		return nil
	}))
}

func TestCheckoutSuccessEmptiesCartKeepsMember(t *testing.T) {
	m := &member.Member{ID: "m1", Name: "Ann", TierID: "tier_silver", Balance: 1000}
	carts := cart.NewRegistry(member.DefaultTiers())
	id := carts.Open()
	require.NoError(t, carts.With(id, func(c *cart.Cart) error {
		c.SetMember(m)
		c.AddTopUp(250, "s1")
		return nil
	}))

	router := newCheckoutRouter(&stubSettler{member: m}, carts)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+id+"/checkout", strings.NewReader(`{"paymentMethod":"member_card"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Transaction   checkout.Transaction `json:"transaction"`
			MemberBalance int64                `json:"memberBalance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(750), body.Data.MemberBalance)
	require.Equal(t, int64(250), body.Data.Transaction.TotalAmount)

	require.NoError(t, carts.With(id, func(c *cart.Cart) error {
		require.Zero(t, c.Len())
		attached := c.Member()
		require.NotNil(t, attached)
		require.Equal(t, "m1", attached.ID)
		require.EqualValues(t, 750, attached.Balance)
		return nil
	}))
}

func TestCheckoutRejectsEmptyCartAndBadMethod(t *testing.T) {
	carts := cart.NewRegistry(member.DefaultTiers())
	id := carts.Open()
	settler := &stubSettler{}
	router := newCheckoutRouter(settler, carts)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+id+"/checkout", strings.NewReader(`{"paymentMethod":"wechat"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/"+id+"/checkout", strings.NewReader(`{"paymentMethod":"cash"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Zero(t, settler.calls)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/nope/checkout", strings.NewReader(`{"paymentMethod":"wechat"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
