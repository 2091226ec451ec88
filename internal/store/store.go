// Package store holds the salon's live state and persists it through a
// pluggable snapshot backend. Every command validates against the current
// state, writes the affected snapshots, and only then swaps the in-memory
// copy, so a failed write leaves both sides unchanged.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/booking"
	"github.com/noah-isme/backend-salon/internal/cart"
	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/common"
	"github.com/noah-isme/backend-salon/internal/inventory"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/schedule"
)

// Snapshot keys.
const (
	KeyBookings     = "bookings"
	KeyMembers      = "members"
	KeyShifts       = "shifts"
	KeyInventory    = "inventory"
	KeyServices     = "services"
	KeyTransactions = "transactions"
	KeyRevision     = "revision"
)

// ErrNotFound indicates the record addressed by a command does not exist.
var ErrNotFound = errors.New("store: record not found")

// Options configure a Store.
type Options struct {
	Tiers       member.Tiers
	WalkInLabel string
	Now         func() time.Time
	NewID       func() string
	Logger      zerolog.Logger
}

type state struct {
	bookings     []booking.Booking
	members      []member.Member
	shifts       schedule.Book
	products     []catalog.Product
	services     []catalog.Service
	transactions []checkout.Transaction
	revision     int64
}

// Store is the single owner of salon state. It is safe for concurrent use.
type Store struct {
	p    Persister
	opts Options

	mu sync.RWMutex
	st state
}

// Open loads every snapshot from p. Missing snapshots start empty, except the
// service menu which falls back to catalog.DefaultServices.
func Open(ctx context.Context, p Persister, opts Options) (*Store, error) {
	if p == nil {
		return nil, errors.New("store: persister is required")
	}
	if opts.Tiers == nil {
		opts.Tiers = member.DefaultTiers()
	}
	s := &Store{p: p, opts: opts}
	st := state{services: catalog.DefaultServices()}

	loads := []struct {
		key string
		dst any
	}{
		{KeyBookings, &st.bookings},
		{KeyMembers, &st.members},
		{KeyShifts, &st.shifts},
		{KeyInventory, &st.products},
		{KeyServices, &st.services},
		{KeyTransactions, &st.transactions},
		{KeyRevision, &st.revision},
	}
	for _, l := range loads {
		raw, ok, err := p.Load(ctx, l.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, l.dst); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", l.key, err)
		}
	}
	st.shifts.NewID = opts.NewID
	s.st = st
	opts.Logger.Debug().
		Int("bookings", len(st.bookings)).
		Int("members", len(st.members)).
		Int("transactions", len(st.transactions)).
		Int64("revision", st.revision).
		Msg("store loaded")
	return s, nil
}

func (s *Store) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

func (s *Store) newID() string {
	if s.opts.NewID != nil {
		return s.opts.NewID()
	}
	return uuid.NewString()
}

func (st *state) encode(key string) ([]byte, error) {
	switch key {
	case KeyBookings:
		return json.Marshal(nonNil(st.bookings))
	case KeyMembers:
		return json.Marshal(nonNil(st.members))
	case KeyShifts:
		return json.Marshal(st.shifts)
	case KeyInventory:
		return json.Marshal(nonNil(st.products))
	case KeyServices:
		return json.Marshal(nonNil(st.services))
	case KeyTransactions:
		return json.Marshal(nonNil(st.transactions))
	case KeyRevision:
		return []byte(strconv.FormatInt(st.revision, 10)), nil
	default:
		return nil, fmt.Errorf("store: unknown snapshot key %q", key)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// commit persists the given snapshots of next plus a bumped revision and then
// makes next current. The caller holds s.mu.
func (s *Store) commit(ctx context.Context, next state, keys ...string) error {
	next.revision = s.st.revision + 1
	entries, err := next.entries(keys)
	if err != nil {
		return err
	}
	if err := s.p.Save(ctx, entries...); err != nil {
		return fmt.Errorf("persist %v: %w", keys, err)
	}
	s.st = next
	return nil
}

func (st *state) entries(keys []string) ([]Entry, error) {
	out := make([]Entry, 0, len(keys)+1)
	for _, k := range append(keys, KeyRevision) {
		raw, err := st.encode(k)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: k, Value: raw})
	}
	return out, nil
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Tiers returns the tier table prices are computed against.
func (s *Store) Tiers() member.Tiers { return s.opts.Tiers }

// Revision increases on every successful write, including Reset.
func (s *Store) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.revision
}

// Bookings returns every booking in insertion order.
func (s *Store) Bookings() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.bookings)
}

// Members returns every member.
func (s *Store) Members() []member.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.members)
}

// Shifts returns a copy of the rota.
func (s *Store) Shifts() schedule.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.shifts.Clone()
}

// Products returns the inventory.
func (s *Store) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.products)
}

// Services returns the service menu.
func (s *Store) Services() []catalog.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.services)
}

// Transactions returns the sales history, most recent first.
func (s *Store) Transactions() []checkout.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.transactions)
}

// Ping checks the backing persister.
func (s *Store) Ping(ctx context.Context) error { return s.p.Ping(ctx) }

// AddBooking records b.
func (s *Store) AddBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.bookings = append(clone(s.st.bookings), b)
	if err := s.commit(ctx, next, KeyBookings); err != nil {
		return booking.Booking{}, err
	}
	obs.ObserveBookingCreated()
	return b, nil
}

// DeleteBooking removes the booking with id.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, b := range s.st.bookings {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.NotFound("booking", booking.ErrNotFound)
	}
	next := s.st
	next.bookings = append(clone(s.st.bookings[:idx]), s.st.bookings[idx+1:]...)
	return s.commit(ctx, next, KeyBookings)
}

// SaveMember inserts m or replaces the member with the same id.
func (s *Store) SaveMember(ctx context.Context, m member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.members = upsert(s.st.members, m, func(x member.Member) string { return x.ID })
	if err := s.commit(ctx, next, KeyMembers); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

// UpdateMember applies edit to the stored member with id while holding the
// write lock, so a concurrent checkout debit is never overwritten.
func (s *Store) UpdateMember(ctx context.Context, id string, edit func(member.Member) member.Member) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := edited(s.st.members, id, func(x member.Member) string { return x.ID }, edit)
	if !ok {
		return member.Member{}, common.NotFound("member", ErrNotFound)
	}
	updated.ID = id
	next := s.st
	next.members = upsert(s.st.members, updated, func(x member.Member) string { return x.ID })
	if err := s.commit(ctx, next, KeyMembers); err != nil {
		return member.Member{}, err
	}
	return updated, nil
}

// CycleShift advances staffID's shift on day through early, late and off.
func (s *Store) CycleShift(ctx context.Context, staffID string, day time.Time) (schedule.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.shifts = s.st.shifts.Clone()
	shift := next.shifts.Cycle(staffID, day)
	if err := s.commit(ctx, next, KeyShifts); err != nil {
		return schedule.Shift{}, err
	}
	obs.ObserveShiftUpdate(string(shift.Type))
	return shift, nil
}

// SetShift assigns kind t to staffID on day.
func (s *Store) SetShift(ctx context.Context, staffID string, day time.Time, t schedule.Type) (schedule.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.shifts = s.st.shifts.Clone()
	shift, err := next.shifts.Set(staffID, day, t)
	if err != nil {
		return schedule.Shift{}, common.Invalid(err.Error(), nil)
	}
	if err := s.commit(ctx, next, KeyShifts); err != nil {
		return schedule.Shift{}, err
	}
	obs.ObserveShiftUpdate(string(shift.Type))
	return shift, nil
}

// SaveService inserts or replaces a menu entry.
func (s *Store) SaveService(ctx context.Context, svc catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.services = upsert(s.st.services, svc, func(x catalog.Service) string { return x.ID })
	if err := s.commit(ctx, next, KeyServices); err != nil {
		return catalog.Service{}, err
	}
	return svc, nil
}

// UpdateService applies edit to the menu entry with id under the write lock.
func (s *Store) UpdateService(ctx context.Context, id string, edit func(catalog.Service) catalog.Service) (catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := edited(s.st.services, id, func(x catalog.Service) string { return x.ID }, edit)
	if !ok {
		return catalog.Service{}, common.NotFound("service", ErrNotFound)
	}
	updated.ID = id
	next := s.st
	next.services = upsert(s.st.services, updated, func(x catalog.Service) string { return x.ID })
	if err := s.commit(ctx, next, KeyServices); err != nil {
		return catalog.Service{}, err
	}
	return updated, nil
}

// DeleteService removes a menu entry. Existing bookings keep their copy.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := without(s.st.services, func(x catalog.Service) bool { return x.ID == id })
	if !ok {
		return common.NotFound("service", ErrNotFound)
	}
	next := s.st
	next.services = rest
	return s.commit(ctx, next, KeyServices)
}

// SaveProduct inserts or replaces an inventory item.
func (s *Store) SaveProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st
	next.products = upsert(s.st.products, p, func(x catalog.Product) string { return x.ID })
	if err := s.commit(ctx, next, KeyInventory); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// UpdateProduct applies edit to the inventory item with id under the write
// lock. Stock deducted by a checkout in the meantime is what edit receives.
func (s *Store) UpdateProduct(ctx context.Context, id string, edit func(catalog.Product) catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := edited(s.st.products, id, func(x catalog.Product) string { return x.ID }, edit)
	if !ok {
		return catalog.Product{}, common.NotFound("product", ErrNotFound)
	}
	updated.ID = id
	next := s.st
	next.products = upsert(s.st.products, updated, func(x catalog.Product) string { return x.ID })
	if err := s.commit(ctx, next, KeyInventory); err != nil {
		return catalog.Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes an inventory item.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := without(s.st.products, func(x catalog.Product) bool { return x.ID == id })
	if !ok {
		return common.NotFound("product", ErrNotFound)
	}
	next := s.st
	next.products = rest
	return s.commit(ctx, next, KeyInventory)
}

// SettleTransaction settles c against the stored member record, then
// records the transaction, the debited balance and the stock deduction in a
// single write. Nothing changes when any step fails.
func (s *Store) SettleTransaction(ctx context.Context, c *cart.Cart, method checkout.PaymentMethod) (checkout.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payer *member.Member
	if attached := c.Member(); attached != nil {
		fresh, ok := member.FindByID(s.st.members, attached.ID)
		if !ok {
			return checkout.Settlement{}, common.NotFound("member", ErrNotFound)
		}
		payer = &fresh
	}

	settled, err := checkout.Settle(c, payer, method, s.now(), checkout.Options{
		WalkInLabel: s.opts.WalkInLabel,
		NewID:       s.newID,
	})
	if err != nil {
		return checkout.Settlement{}, err
	}

	next := s.st
	keys := []string{KeyTransactions}
	next.transactions = append([]checkout.Transaction{settled.Transaction}, s.st.transactions...)
	if settled.Member != nil {
		next.members = upsert(s.st.members, *settled.Member, func(x member.Member) string { return x.ID })
		keys = append(keys, KeyMembers)
	}
	var removed int
	if len(settled.SoldProductIDs) > 0 {
		next.products = inventory.Deduct(s.st.products, settled.SoldProductIDs)
		removed = inventory.Removed(s.st.products, next.products)
		keys = append(keys, KeyInventory)
	}
	if err := s.commit(ctx, next, keys...); err != nil {
		return checkout.Settlement{}, err
	}
	obs.ObserveStockDeducted(removed)
	s.opts.Logger.Debug().
		Str("transaction_id", settled.Transaction.ID).
		Int64("debited", settled.Debited).
		Int("units_removed", removed).
		Msg("transaction recorded")
	return settled, nil
}

// Reset wipes every snapshot and restores the default service menu in one
// persister call. The revision keeps increasing so cached reports are
// invalidated.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := state{services: catalog.DefaultServices(), revision: s.st.revision + 1}
	next.shifts.NewID = s.opts.NewID
	entries, err := next.entries([]string{KeyBookings, KeyMembers, KeyShifts, KeyInventory, KeyServices, KeyTransactions})
	if err != nil {
		return err
	}
	if err := s.p.Replace(ctx, entries...); err != nil {
		return fmt.Errorf("reset snapshots: %w", err)
	}
	s.st = next
	s.opts.Logger.Warn().Int64("revision", s.st.revision).Msg("store reset")
	return nil
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	out := clone(items)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// edited returns edit applied to the element of items matching id.
func edited[T any](items []T, id string, idOf func(T) string, edit func(T) T) (T, bool) {
	for _, it := range items {
		if idOf(it) == id {
			return edit(it), true
		}
	}
	var zero T
	return zero, false
}

func without[T any](items []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(items))
	found := false
	for _, it := range items {
		if match(it) {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}

// Ledger returns the transaction log and bookings with the revision they were read at.
func (s *Store) Ledger() ([]checkout.Transaction, []booking.Booking, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.st.transactions), clone(s.st.bookings), s.st.revision
}
