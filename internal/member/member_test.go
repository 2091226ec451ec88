package member

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/pricing"
)

func rate(f float64) *pricing.Rate {
	r := pricing.RateFromFloat(f)
	return &r
}

func TestResolveDiscountNoMember(t *testing.T) {
	require.Equal(t, pricing.Full, ResolveDiscount(nil, DefaultTiers()))
}

func TestResolveDiscountCustomZeroBeatsTier(t *testing.T) {
	tiers := Tiers{{ID: "t80", Discount: pricing.RateFromFloat(0.8)}}
	m := &Member{TierID: "t80", CustomDiscount: rate(0)}

	got, src := LookupDiscount(m, tiers)
	require.Equal(t, pricing.Rate(0), got)
	require.Equal(t, SourceCustom, src)
}

func TestResolveDiscountTier(t *testing.T) {
	m := &Member{TierID: "tier_gold"}
	got, src := LookupDiscount(m, DefaultTiers())
	require.Equal(t, pricing.RateFromFloat(0.88), got)
	require.Equal(t, SourceTier, src)
}

func TestResolveDiscountUnknownTierFailsOpen(t *testing.T) {
	m := &Member{TierID: "tier_missing"}
	got, src := LookupDiscount(m, DefaultTiers())
	require.Equal(t, pricing.Full, got)
	require.Equal(t, SourceUnresolved, src)
}

func TestPatchApply(t *testing.T) {
	base := Member{ID: "m1", Name: "Ann", Phone: "13800000000", Balance: 100, TierID: "tier_silver", Notes: "likes tea"}
	name := " Anna "
	var balance pricing.Money = 500

	got := Patch{Name: &name, Balance: &balance, CustomDiscount: rate(0)}.Apply(base)
	require.Equal(t, "Anna", got.Name)
	require.Equal(t, pricing.Money(500), got.Balance)
	require.Equal(t, "likes tea", got.Notes)
	require.Equal(t, "13800000000", got.Phone)
	require.NotNil(t, got.CustomDiscount)
	require.Equal(t, pricing.Rate(0), *got.CustomDiscount)

	cleared := Patch{ClearCustomDiscount: true}.Apply(got)
	require.Nil(t, cleared.CustomDiscount)
	require.Equal(t, "Anna", cleared.Name)
}

func TestSearch(t *testing.T) {
	members := []Member{
		{ID: "1", Name: "Lily Wang", Phone: "13811112222"},
		{ID: "2", Name: "Mia", Phone: "13933334444"},
	}
	require.Len(t, Search(members, ""), 2)
	require.Equal(t, "1", Search(members, "lily")[0].ID)
	require.Equal(t, "2", Search(members, "3333")[0].ID)
	require.Empty(t, Search(members, "zzz"))

	m, ok := FindByPhone(members, "13933334444")
	require.True(t, ok)
	require.Equal(t, "2", m.ID)
	_, ok = FindByPhone(members, "1393333")
	require.False(t, ok)
}
