package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/booking"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/commission"
	"github.com/noah-isme/backend-salon/internal/staff"
)

// Source exposes a consistent read of the sales data.
type Source interface {
	Ledger() ([]checkout.Transaction, []booking.Booking, int64)
}

// Service builds dashboards, caching them in Redis per store revision.
// A cached dashboard is only ever served for the revision it was built from.
type Service struct {
	Source Source
	Roster staff.Roster
	R      *redis.Client
	TTL    time.Duration
	Prefix string
	Logger zerolog.Logger
}

func (s *Service) cacheKey(revision int64) string {
	return fmt.Sprintf("%san:dashboard:%d", s.Prefix, revision)
}

// Dashboard returns the dashboard for the current revision.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s == nil || s.Source == nil {
		return Dashboard{}, fmt.Errorf("analytics service not configured")
	}
	txs, bookings, revision := s.Source.Ledger()
	key := s.cacheKey(revision)
	if d, ok := s.fromCache(ctx, key); ok {
		return d, nil
	}
	d := Build(txs, bookings, s.Roster, commission.Calculator{Logger: s.Logger})
	d.Revision = revision
	s.store(ctx, key, d)
	return d, nil
}

// Commissions returns the per-staff report in roster order.
func (s *Service) Commissions(ctx context.Context) ([]StaffStats, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return d.Staff, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (Dashboard, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Dashboard{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Dashboard{}, false
	}
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable dashboard cache entry")
		return Dashboard{}, false
	}
	return d, true
}

func (s *Service) store(ctx context.Context, key string, d Dashboard) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, key, data, s.TTL).Err(); err != nil {
		s.Logger.Debug().Err(err).Msg("dashboard cache write failed")
	}
}
