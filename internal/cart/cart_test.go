package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

var (
	manicure = catalog.Service{ID: "srv1", Name: "极致单色美甲", Price: 398, DurationMin: 75}
	crystal  = catalog.Product{ID: "p1", Name: "Rose quartz", SellingPrice: 100, Stock: 2}
)

func gold() *member.Member {
	return &member.Member{ID: "m1", Name: "Ann", TierID: "tier_gold", Balance: 1000}
}

func black() *member.Member {
	return &member.Member{ID: "m2", Name: "Bea", TierID: "tier_black"}
}

func TestAddServiceWithoutMemberKeepsPrice(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	line := c.AddService(manicure, "s1")
	require.Equal(t, pricing.Money(398), line.Price())
	require.Equal(t, pricing.Money(398), line.OriginalPrice())
	require.Equal(t, "s1", line.StaffID())
}

func TestAddServiceWithMemberFloors(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.SetMember(gold())
	line := c.AddService(manicure, "s1")
	require.Equal(t, pricing.Money(350), line.Price())
	require.Equal(t, pricing.Money(398), line.OriginalPrice())
}

func TestProductNeverDiscounted(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.SetMember(black())
	line, err := c.AddProduct(crystal, "s1")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(100), line.Price())

	c.SetMember(gold())
	require.Equal(t, pricing.Money(100), c.Lines()[0].Price())
}

func TestTopUpNeverDiscounted(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.SetMember(black())
	line := c.AddTopUp(2000, "s1")
	require.Equal(t, pricing.Money(2000), line.Price())
	require.Equal(t, "VIP 会员充值 ¥2000", line.Name())
	require.Equal(t, KindTopUp, line.Kind())
}

func TestSetMemberRepricesFromOriginal(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.AddService(manicure, "s1")
	_, err := c.AddProduct(crystal, "s1")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(498), c.Total())

	require.Equal(t, member.SourceTier, c.SetMember(gold()))
	require.Equal(t, pricing.Money(350+100), c.Total())

	// switching member twice must not chain discounts
	c.SetMember(black())
	c.SetMember(gold())
	require.Equal(t, pricing.Money(350), c.Lines()[0].Price())

	require.Equal(t, member.SourceNone, c.SetMember(nil))
	require.Equal(t, pricing.Money(498), c.Total())
	require.Nil(t, c.Member())
}

func TestSetMemberUnresolvedTierChargesFullPrice(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.AddService(manicure, "s1")
	src := c.SetMember(&member.Member{ID: "m3", TierID: "tier_retired"})
	require.Equal(t, member.SourceUnresolved, src)
	require.Equal(t, pricing.Money(398), c.Total())
}

func TestSetMemberCustomZero(t *testing.T) {
	zero := pricing.Rate(0)
	c := New("c1", member.DefaultTiers())
	c.AddService(manicure, "s1")
	c.SetMember(&member.Member{ID: "m4", TierID: "tier_platinum", CustomDiscount: &zero})
	require.Equal(t, pricing.Money(0), c.Total())
}

func TestAddProductSoftStockCheck(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	_, err := c.AddProduct(crystal, "s1")
	require.NoError(t, err)
	_, err = c.AddProduct(crystal, "s1")
	require.NoError(t, err)

	_, err = c.AddProduct(crystal, "s1")
	require.True(t, errors.Is(err, ErrStockExceeded))
	require.Equal(t, 2, c.Len())
	require.Equal(t, 2, c.Count("p1"))

	out := catalog.Product{ID: "p2", SellingPrice: 50, Stock: 0}
	_, err = c.AddProduct(out, "s1")
	require.ErrorIs(t, err, ErrStockExceeded)
}

func TestRemoveAtShiftsLines(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.AddService(manicure, "s1")
	c.AddTopUp(500, "s1")
	c.AddService(catalog.Service{ID: "srv10", Name: "Tea", Price: 68}, "s2")

	require.NoError(t, c.RemoveAt(1))
	lines := c.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, "Tea", lines[1].Name())
	require.Equal(t, pricing.Money(466), c.Total())

	require.ErrorIs(t, c.RemoveAt(5), ErrLineIndex)
	require.ErrorIs(t, c.RemoveAt(-1), ErrLineIndex)
}

func TestAssignStaff(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.AddService(manicure, "s1")
	require.NoError(t, c.AssignStaff(0, "s3"))
	require.Equal(t, "s3", c.Lines()[0].StaffID())
	require.ErrorIs(t, c.AssignStaff(1, "s3"), ErrLineIndex)
}

func TestClear(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.SetMember(gold())
	c.AddService(manicure, "s1")
	c.Clear()
	require.Zero(t, c.Len())
	require.Equal(t, pricing.Money(0), c.Total())
	require.NotNil(t, c.Member())
	require.Equal(t, "m1", c.Member().ID)

	c.AddService(manicure, "s1")
	require.Equal(t, pricing.Money(350), c.Total())
}

func TestMarshalJSON(t *testing.T) {
	c := New("c1", member.DefaultTiers())
	c.SetMember(gold())
	c.AddService(manicure, "s1")
	_, err := c.AddProduct(crystal, "s2")
	require.NoError(t, err)

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded struct {
		ID       string  `json:"id"`
		Discount float64 `json:"discount"`
		Total    int64   `json:"total"`
		Lines    []struct {
			Type      string `json:"type"`
			Price     int64  `json:"price"`
			ProductID string `json:"productId"`
			ServiceID string `json:"serviceId"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "c1", decoded.ID)
	require.InDelta(t, 0.88, decoded.Discount, 1e-9)
	require.Equal(t, int64(450), decoded.Total)
	require.Equal(t, "service", decoded.Lines[0].Type)
	require.Equal(t, "srv1", decoded.Lines[0].ServiceID)
	require.Equal(t, "p1", decoded.Lines[1].ProductID)
}
