package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/member"
)

func TestRegistryEvictsIdleCarts(t *testing.T) {
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	reg := NewRegistry(member.DefaultTiers())
	reg.IdleTTL = time.Hour
	reg.Now = func() time.Time { return now }

	stale := reg.Open()
	now = now.Add(40 * time.Minute)
	busy := reg.Open()

	now = now.Add(30 * time.Minute)
	require.ErrorIs(t, reg.With(stale, func(*Cart) error { return nil }), ErrNotFound)
	require.NoError(t, reg.With(busy, func(*Cart) error { return nil }))

	// touching busy above pushed its expiry out
	now = now.Add(50 * time.Minute)
	require.Zero(t, reg.Sweep())
	require.Equal(t, 1, reg.Len())

	now = now.Add(10 * time.Minute)
	require.Equal(t, 1, reg.Sweep())
	require.Zero(t, reg.Len())
}

func TestRegistryOpenSweepsAndZeroTTLKeeps(t *testing.T) {
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	reg := NewRegistry(member.DefaultTiers())
	reg.Now = func() time.Time { return now }
	reg.Open()
	now = now.Add(72 * time.Hour)
	require.Zero(t, reg.Sweep())

	reg.IdleTTL = time.Hour
	reg.Open()
	require.Equal(t, 1, reg.Len())
}
