package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

var (
	// ErrInsufficientBalance halts a member-card checkout whose balance is below the cart total.
	ErrInsufficientBalance = errors.New("checkout: insufficient member balance")
	// ErrMemberRequired rejects a member-card checkout with no member attached.
	ErrMemberRequired = errors.New("checkout: member card payment requires a member")
	// ErrUnknownMethod rejects an unrecognised payment method.
	ErrUnknownMethod = errors.New("checkout: unknown payment method")
)

// DefaultWalkInLabel is the customer name recorded when no member is attached.
const DefaultWalkInLabel = "散客"

// Options tune how transactions are labelled and identified.
type Options struct {
	WalkInLabel string
	NewID       func() string
}

func (o Options) walkIn() string {
	if s := strings.TrimSpace(o.WalkInLabel); s != "" {
		return s
	}
	return DefaultWalkInLabel
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

// Settlement is the result of a successful checkout.
type Settlement struct {
	Transaction Transaction
	// Member is the paying member after any balance debit; nil for walk-ins.
	Member *member.Member
	// Debited is the amount taken from the member balance.
	Debited pricing.Money
	// SoldProductIDs lists one id per product unit, for inventory deduction.
	SoldProductIDs []string
}

// Settle turns c into a transaction paid with method. m is the authoritative
// member record, which may carry a newer balance than the cart's copy.
// Settle never touches inventory; callers deduct SoldProductIDs themselves.
func Settle(c *cart.Cart, m *member.Member, method PaymentMethod, now time.Time, opts Options) (Settlement, error) {
	if !method.Valid() {
		return Settlement{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	total := c.Total()

	var paying *member.Member
	if m != nil {
		cp := *m
		paying = &cp
	}

	var debited pricing.Money
	if method == PayMemberCard {
		if paying == nil {
			return Settlement{}, ErrMemberRequired
		}
		if paying.Balance < total {
			return Settlement{}, fmt.Errorf("%w: balance %d, total %d", ErrInsufficientBalance, paying.Balance, total)
		}
		paying.Balance -= total
		debited = total
	}

	lines := c.Lines()
	items := make([]Item, 0, len(lines))
	var sold []string
	for _, l := range lines {
		item := Item{Name: l.Name(), Price: l.Price(), StaffID: l.StaffID()}
		switch line := l.(type) {
		case *cart.ServiceLine:
			item.Type = ItemService
		case *cart.ProductLine:
			item.Type = ItemProduct
			item.ProductID = line.ProductID
			sold = append(sold, line.ProductID)
		case *cart.TopUpLine:
			item.Type = ItemCardTopUp
		default:
			panic(fmt.Sprintf("checkout: unhandled line type %T", l))
		}
		items = append(items, item)
	}

	tx := Transaction{
		ID:            opts.newID(),
		Date:          now,
		CustomerName:  opts.walkIn(),
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: method,
		Status:        StatusCompleted,
	}
	if paying != nil {
		tx.CustomerName = paying.Name
		tx.MemberID = paying.ID
	}
	return Settlement{Transaction: tx, Member: paying, Debited: debited, SoldProductIDs: sold}, nil
}
