package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Settler commits a checkout: it settles the cart, debits the member,
// deducts stock and records the transaction as one unit.
type Settler interface {
	SettleTransaction(ctx context.Context, c *cart.Cart, method PaymentMethod) (Settlement, error)
}

// History lists recorded transactions, most recent first.
type History interface {
	Transactions() []Transaction
}

// Handler exposes checkout and transaction history endpoints.
type Handler struct {
	Carts   *cart.Registry
	Settler Settler
	History History
	Logger  zerolog.Logger
}

type checkoutRequest struct {
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required"`
}

type checkoutResponse struct {
	Transaction   Transaction    `json:"transaction"`
	MemberBalance *pricing.Money `json:"memberBalance,omitempty"`
}

// Checkout handles POST /api/v1/carts/{id}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Carts == nil || h.Settler == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var req checkoutRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if !req.PaymentMethod.Valid() {
		common.WriteError(w, common.Invalid("unknown payment method", map[string]string{"paymentMethod": string(req.PaymentMethod)}))
		return
	}

	ctx, span := otel.Tracer("checkout").Start(r.Context(), "checkout.settle")
	defer span.End()
	span.SetAttributes(attribute.String("payment.method", string(req.PaymentMethod)))

	id := chi.URLParam(r, "id")
	var result Settlement
	err := h.Carts.With(id, func(c *cart.Cart) error {
		if c.Len() == 0 {
			return common.Invalid("cart is empty", nil)
		}
		s, err := h.Settler.SettleTransaction(ctx, c, req.PaymentMethod)
		if err != nil {
			return err
		}
		result = s
		c.Clear()
		if s.Member != nil {
			c.SetMember(s.Member)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		obs.ObserveCheckout(string(req.PaymentMethod), checkoutResult(err), 0)
		h.writeError(w, err)
		return
	}
	span.SetAttributes(
		attribute.String("transaction.id", result.Transaction.ID),
		attribute.Int64("transaction.total", result.Transaction.TotalAmount),
	)
	obs.ObserveCheckout(string(req.PaymentMethod), "ok", result.Transaction.TotalAmount)
	h.Logger.Info().
		Str("transaction_id", result.Transaction.ID).
		Str("payment_method", string(req.PaymentMethod)).
		Int64("total", result.Transaction.TotalAmount).
		Int("units_sold", len(result.SoldProductIDs)).
		Msg("checkout settled")

	resp := checkoutResponse{Transaction: result.Transaction}
	if result.Member != nil {
		balance := result.Member.Balance
		resp.MemberBalance = &balance
	}
	common.Data(w, http.StatusCreated, resp)
}

// ListTransactions handles GET /api/v1/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, _ *http.Request) {
	if h.History == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "transaction history not configured", nil)
		return
	}
	common.Data(w, http.StatusOK, h.History.Transactions())
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrMemberRequired):
		return "member_required"
	case errors.Is(err, cart.ErrNotFound):
		return "cart_not_found"
	default:
		return "error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_BALANCE", "余额不足，请充值或选择其他支付方式", nil)
	case errors.Is(err, ErrMemberRequired):
		common.WriteError(w, common.Invalid("member card payment requires a member", nil))
	case errors.Is(err, ErrUnknownMethod):
		common.WriteError(w, common.Invalid("unknown payment method", nil))
	case errors.Is(err, cart.ErrNotFound):
		common.WriteError(w, common.NotFound("cart", err))
	case common.IsAppError(err):
		common.WriteError(w, err)
	default:
		h.Logger.Error().Err(err).Msg("checkout failed")
		common.WriteError(w, err)
	}
}
