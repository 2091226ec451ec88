package member

import (
	"strings"
	"time"

	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Tier is a named discount bracket. MinSpend is informational; tiers are assigned by hand.
type Tier struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Discount pricing.Rate  `json:"discount"`
	Color    string        `json:"color"`
	MinSpend pricing.Money `json:"minSpend"`
}

// Tiers is the static tier table.
type Tiers []Tier

// Find returns the tier with the given id.
func (ts Tiers) Find(id string) (Tier, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// DefaultTiers returns the tier table the salon ships with.
func DefaultTiers() Tiers {
	return Tiers{
		{ID: "tier_silver", Name: "银卡会员 (95折)", Discount: 9500, Color: "bg-gray-100 text-gray-800 border-gray-300", MinSpend: 0},
		{ID: "tier_gold", Name: "金卡会员 (88折)", Discount: 8800, Color: "bg-yellow-50 text-yellow-800 border-yellow-200", MinSpend: 5000},
		{ID: "tier_platinum", Name: "白金会员 (8折)", Discount: 8000, Color: "bg-blue-50 text-blue-800 border-blue-200", MinSpend: 20000},
		{ID: "tier_black", Name: "黑金会员 (7折)", Discount: 7000, Color: "bg-gray-900 text-white border-gray-700", MinSpend: 50000},
	}
}

// Member is a loyalty account. CustomDiscount is nil when no override is set;
// a pointer to zero means the member is always charged nothing.
type Member struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Balance        pricing.Money `json:"balance"`
	TierID         string        `json:"tierId"`
	JoinDate       time.Time     `json:"joinDate"`
	Notes          string        `json:"notes"`
	NailArchive    string        `json:"nailArchive"`
	LashArchive    string        `json:"lashArchive"`
	CustomDiscount *pricing.Rate `json:"customDiscount,omitempty"`
}

// Source describes where a resolved discount came from.
type Source string

const (
	SourceNone       Source = "none"
	SourceCustom     Source = "custom"
	SourceTier       Source = "tier"
	SourceUnresolved Source = "unresolved"
)

// LookupDiscount resolves the effective discount and reports its source.
// An unknown tier fails open to full price.
func LookupDiscount(m *Member, tiers Tiers) (pricing.Rate, Source) {
	if m == nil {
		return pricing.Full, SourceNone
	}
	if m.CustomDiscount != nil {
		return *m.CustomDiscount, SourceCustom
	}
	if t, ok := tiers.Find(m.TierID); ok {
		return t.Discount, SourceTier
	}
	return pricing.Full, SourceUnresolved
}

// ResolveDiscount returns the multiplier applied to service prices for m.
func ResolveDiscount(m *Member, tiers Tiers) pricing.Rate {
	rate, _ := LookupDiscount(m, tiers)
	return rate
}

// Patch carries member edits. Nil fields are left untouched. ClearCustomDiscount
// removes the override so tier lookup applies again.
type Patch struct {
	Name                *string        `json:"name" validate:"omitempty,min=1"`
	Phone               *string        `json:"phone" validate:"omitempty,min=3"`
	Balance             *pricing.Money `json:"balance" validate:"omitempty,gte=0"`
	TierID              *string        `json:"tierId"`
	Notes               *string        `json:"notes"`
	NailArchive         *string        `json:"nailArchive"`
	LashArchive         *string        `json:"lashArchive"`
	CustomDiscount      *pricing.Rate  `json:"customDiscount"`
	ClearCustomDiscount bool           `json:"clearCustomDiscount"`
}

// Apply returns a copy of m with the patch fields overwritten.
func (p Patch) Apply(m Member) Member {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		m.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Balance != nil {
		m.Balance = *p.Balance
	}
	if p.TierID != nil {
		m.TierID = *p.TierID
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.NailArchive != nil {
		m.NailArchive = *p.NailArchive
	}
	if p.LashArchive != nil {
		m.LashArchive = *p.LashArchive
	}
	switch {
	case p.ClearCustomDiscount:
		m.CustomDiscount = nil
	case p.CustomDiscount != nil:
		rate := *p.CustomDiscount
		m.CustomDiscount = &rate
	}
	return m
}

// Search returns members whose name or phone contains q. An empty query matches everyone.
func Search(members []Member, q string) []Member {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(m.Phone, q) {
			out = append(out, m)
		}
	}
	return out
}

// FindByPhone returns the member whose phone matches exactly.
func FindByPhone(members []Member, phone string) (Member, bool) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return Member{}, false
	}
	for _, m := range members {
		if m.Phone == phone {
			return m, true
		}
	}
	return Member{}, false
}

// FindByID returns the member with the given id.
func FindByID(members []Member, id string) (Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}
