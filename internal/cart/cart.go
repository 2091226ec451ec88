package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

var (
	// ErrStockExceeded reports that the cart already holds every visible unit of a product.
	// The cart is left unchanged.
	ErrStockExceeded = errors.New("cart: stock exceeded")
	// ErrLineIndex reports a line index outside the cart.
	ErrLineIndex = errors.New("cart: line index out of range")
)

// Kind tags a cart line.
type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
	KindTopUp   Kind = "topup"
)

// Line is one priced entry in a cart. The concrete type is one of
// *ServiceLine, *ProductLine or *TopUpLine.
type Line interface {
	Kind() Kind
	Name() string
	// OriginalPrice is the price before any member discount.
	OriginalPrice() pricing.Money
	// Price is the amount currently charged for the line.
	Price() pricing.Money
	StaffID() string
	fields() *lineFields
}

type lineFields struct {
	name     string
	original pricing.Money
	price    pricing.Money
	staffID  string
}

func (f *lineFields) Name() string                 { return f.name }
func (f *lineFields) OriginalPrice() pricing.Money { return f.original }
func (f *lineFields) Price() pricing.Money         { return f.price }
func (f *lineFields) StaffID() string              { return f.staffID }
func (f *lineFields) fields() *lineFields          { return f }

// ServiceLine is a treatment performed by a staff member. Its price follows the active member.
type ServiceLine struct {
	lineFields
	ServiceID string
}

// Kind implements Line.
func (*ServiceLine) Kind() Kind { return KindService }

// ProductLine is one retail unit. Member discounts never apply.
type ProductLine struct {
	lineFields
	ProductID string
}

// Kind implements Line.
func (*ProductLine) Kind() Kind { return KindProduct }

// TopUpLine sells stored value. It is never discounted.
type TopUpLine struct {
	lineFields
}

// Kind implements Line.
func (*TopUpLine) Kind() Kind { return KindTopUp }

// Cart is an ordered list of lines priced against the active member.
// A Cart is not safe for concurrent use; Registry serialises access.
type Cart struct {
	ID     string
	tiers  member.Tiers
	member *member.Member
	lines  []Line
}

// New returns an empty cart priced with tiers.
func New(id string, tiers member.Tiers) *Cart {
	return &Cart{ID: id, tiers: tiers}
}

// Member returns a copy of the active member, or nil for a walk-in.
func (c *Cart) Member() *member.Member {
	if c.member == nil {
		return nil
	}
	m := *c.member
	return &m
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) discount() pricing.Rate {
	return member.ResolveDiscount(c.member, c.tiers)
}

// AddService appends a service line priced with the active member's discount.
func (c *Cart) AddService(svc catalog.Service, staffID string) *ServiceLine {
	line := &ServiceLine{
		lineFields: lineFields{
			name:     svc.Name,
			original: svc.Price,
			price:    pricing.PriceLine(svc.Price, c.discount()),
			staffID:  staffID,
		},
		ServiceID: svc.ID,
	}
	c.lines = append(c.lines, line)
	return line
}

// AddProduct appends one unit of p at its selling price. It returns
// ErrStockExceeded without changing the cart when the cart already holds
// p.Stock units.
func (c *Cart) AddProduct(p catalog.Product, staffID string) (*ProductLine, error) {
	if c.Count(p.ID) >= p.Stock {
		return nil, fmt.Errorf("%w: %s has %d in stock", ErrStockExceeded, p.ID, p.Stock)
	}
	line := &ProductLine{
		lineFields: lineFields{
			name:     p.Name,
			original: p.SellingPrice,
			price:    p.SellingPrice,
			staffID:  staffID,
		},
		ProductID: p.ID,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// TopUpName is the display name of a stored-value line.
func TopUpName(amount pricing.Money) string {
	return fmt.Sprintf("VIP 会员充值 ¥%d", amount)
}

// AddTopUp appends a stored-value line charged at amount.
func (c *Cart) AddTopUp(amount pricing.Money, staffID string) *TopUpLine {
	line := &TopUpLine{lineFields: lineFields{
		name:     TopUpName(amount),
		original: amount,
		price:    amount,
		staffID:  staffID,
	}}
	c.lines = append(c.lines, line)
	return line
}

// RemoveAt deletes the line at index; later lines shift down by one.
func (c *Cart) RemoveAt(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineIndex
	}
	c.lines = append(c.lines[:index:index], c.lines[index+1:]...)
	return nil
}

// AssignStaff changes who is credited for the line at index.
func (c *Cart) AssignStaff(index int, staffID string) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineIndex
	}
	c.lines[index].fields().staffID = staffID
	return nil
}

// SetMember attaches m (nil detaches) and re-prices every service line from
// its original price. Product and top-up lines keep their prices. The
// returned source tells the caller where the new discount came from.
func (c *Cart) SetMember(m *member.Member) member.Source {
	if m != nil {
		cp := *m
		c.member = &cp
	} else {
		c.member = nil
	}
	rate, src := member.LookupDiscount(c.member, c.tiers)
	for _, l := range c.lines {
		switch line := l.(type) {
		case *ServiceLine:
			line.price = pricing.PriceLine(line.original, rate)
		case *ProductLine, *TopUpLine:
		default:
			panic(fmt.Sprintf("cart: unhandled line type %T", l))
		}
	}
	return src
}

// Total is the sum of the current line prices.
func (c *Cart) Total() pricing.Money {
	var total pricing.Money
	for _, l := range c.lines {
		total += l.Price()
	}
	return total
}

// Count returns how many lines reference productID.
func (c *Cart) Count(productID string) int {
	n := 0
	for _, l := range c.lines {
		if p, ok := l.(*ProductLine); ok && p.ProductID == productID {
			n++
		}
	}
	return n
}

// Clear removes all lines. The member stays attached so the next sale for the
// same customer starts priced; use SetMember(nil) to serve a walk-in.
func (c *Cart) Clear() {
	c.lines = nil
}

type lineJSON struct {
	Name          string        `json:"name"`
	Type          Kind          `json:"type"`
	OriginalPrice pricing.Money `json:"originalPrice"`
	Price         pricing.Money `json:"price"`
	StaffID       string        `json:"staffId,omitempty"`
	ServiceID     string        `json:"serviceId,omitempty"`
	ProductID     string        `json:"productId,omitempty"`
}

func encodeLine(l Line) lineJSON {
	out := lineJSON{
		Name:          l.Name(),
		Type:          l.Kind(),
		OriginalPrice: l.OriginalPrice(),
		Price:         l.Price(),
		StaffID:       l.StaffID(),
	}
	switch line := l.(type) {
	case *ServiceLine:
		out.ServiceID = line.ServiceID
	case *ProductLine:
		out.ProductID = line.ProductID
	case *TopUpLine:
	}
	return out
}

// MarshalJSON renders the cart for the point-of-sale screen.
func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := make([]lineJSON, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, encodeLine(l))
	}
	return json.Marshal(struct {
		ID       string         `json:"id"`
		Member   *member.Member `json:"member,omitempty"`
		Discount pricing.Rate   `json:"discount"`
		Lines    []lineJSON     `json:"lines"`
		Total    pricing.Money  `json:"total"`
	}{
		ID:       c.ID,
		Member:   c.member,
		Discount: c.discount(),
		Lines:    lines,
		Total:    c.Total(),
	})
}
