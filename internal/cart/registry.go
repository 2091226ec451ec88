package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/member"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// Registry holds the open carts of the running process. Carts untouched for
// IdleTTL are evicted; zero keeps them until Discard.
type Registry struct {
	Tiers   member.Tiers
	IdleTTL time.Duration
	// NewID and Now override the id generator and clock in tests.
	NewID func() string
	Now   func() time.Time

	mu    sync.Mutex
	carts map[string]*entry
}

type entry struct {
	cart    *Cart
	touched time.Time
}

// NewRegistry constructs an empty registry.
func NewRegistry(tiers member.Tiers) *Registry {
	return &Registry{Tiers: tiers, carts: map[string]*entry{}}
}

func (r *Registry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.IdleTTL > 0 && now.Sub(e.touched) >= r.IdleTTL
}

// sweep drops idle carts. Callers hold mu.
func (r *Registry) sweep(now time.Time) int {
	if r.IdleTTL <= 0 {
		return 0
	}
	n := 0
	for id, e := range r.carts {
		if r.expired(e, now) {
			delete(r.carts, id)
			n++
		}
	}
	return n
}

// Sweep evicts every cart idle for IdleTTL and reports how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweep(r.now())
}

func (r *Registry) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

// Open creates an empty cart and returns its id.
func (r *Registry) Open() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.carts == nil {
		r.carts = map[string]*entry{}
	}
	now := r.now()
	r.sweep(now)
	c := New(r.newID(), r.Tiers)
	r.carts[c.ID] = &entry{cart: c, touched: now}
	return c.ID
}

// With runs fn on the cart while holding the registry lock and marks it used.
// fn must not retain c.
func (r *Registry) With(id string, fn func(c *Cart) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.carts[id]
	if !ok {
		return ErrNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.carts, id)
		return ErrNotFound
	}
	e.touched = now
	return fn(e.cart)
}

// Discard drops a cart.
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, id)
}

// Len returns the number of open carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
