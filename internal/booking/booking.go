// Package booking records appointments and answers calendar lookups.
package booking

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-salon/internal/catalog"
	"github.com/noah-isme/backend-salon/internal/member"
	"github.com/noah-isme/backend-salon/internal/pricing"
)

// Status of an appointment.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// MinMemberPhoneLen is the shortest phone number used for member detection.
const MinMemberPhoneLen = 11

var (
	// ErrUnknownService is returned when a catalog booking names a missing service.
	ErrUnknownService = errors.New("booking: unknown service")
	// ErrServiceRequired is returned when neither a catalog nor a manual service is given.
	ErrServiceRequired = errors.New("booking: service required")
	// ErrNotFound indicates the booking does not exist.
	ErrNotFound = errors.New("booking not found")
)

// Booking is one appointment. Several bookings may share a staff member and day.
type Booking struct {
	ID                string        `json:"id"`
	CustomerID        string        `json:"customerId"`
	CustomerName      string        `json:"customerName"`
	CustomerPhone     string        `json:"customerPhone"`
	MemberID          string        `json:"memberId,omitempty"`
	StaffID           string        `json:"staffId"`
	ServiceID         string        `json:"serviceId"`
	CustomServiceName string        `json:"customServiceName,omitempty"`
	Date              time.Time     `json:"date"`
	DurationMin       int           `json:"durationMin"`
	EstimatedPrice    pricing.Money `json:"estimatedPrice"`
	Status            Status        `json:"status"`
}

// Manual describes a service typed in by the operator instead of picked from the menu.
type Manual struct {
	Name        string
	Price       pricing.Money
	DurationMin int
}

// Request carries the fields of a new appointment.
type Request struct {
	CustomerName string
	Phone        string
	StaffID      string
	ServiceID    string
	Manual       *Manual
	Date         time.Time
}

// Env is the catalog and member data a booking is priced against.
type Env struct {
	Services []catalog.Service
	Members  []member.Member
	Tiers    member.Tiers
	NewID    func() string
}

func (e Env) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// DetectMember finds the member whose phone equals phone. Numbers shorter than
// MinMemberPhoneLen never match.
func DetectMember(members []member.Member, phone string) (member.Member, bool) {
	phone = strings.TrimSpace(phone)
	if len(phone) < MinMemberPhoneLen {
		return member.Member{}, false
	}
	return member.FindByPhone(members, phone)
}

// New builds a confirmed booking. The estimated price is the service price
// with the detected member's discount applied once and floored.
func New(req Request, env Env) (Booking, error) {
	var (
		price     pricing.Money
		duration  = catalog.DefaultDurationMin
		serviceID string
		custom    string
	)
	switch {
	case req.Manual != nil:
		price = req.Manual.Price
		if req.Manual.DurationMin > 0 {
			duration = req.Manual.DurationMin
		}
		serviceID = "manual-" + env.newID()
		custom = strings.TrimSpace(req.Manual.Name)
	case req.ServiceID != "":
		svc, ok := catalog.FindService(env.Services, req.ServiceID)
		if !ok {
			return Booking{}, ErrUnknownService
		}
		price = svc.Price
		duration = svc.DurationMin
		serviceID = svc.ID
	default:
		return Booking{}, ErrServiceRequired
	}

	b := Booking{
		ID:                env.newID(),
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.Phone),
		StaffID:           req.StaffID,
		ServiceID:         serviceID,
		CustomServiceName: custom,
		Date:              req.Date,
		DurationMin:       duration,
		Status:            StatusConfirmed,
	}
	if m, ok := DetectMember(env.Members, req.Phone); ok {
		b.CustomerID = m.ID
		b.MemberID = m.ID
		if b.CustomerName == "" {
			b.CustomerName = m.Name
		}
		b.EstimatedPrice = pricing.PriceLine(price, member.ResolveDiscount(&m, env.Tiers))
	} else {
		b.CustomerID = "c-" + env.newID()
		b.EstimatedPrice = pricing.PriceLine(price, pricing.Full)
	}
	return b, nil
}

// SameDay reports whether a and b fall on the same calendar day, each read in
// its own location. Time of day is ignored.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ForDate returns the bookings on day's calendar date, ordered by start time.
func ForDate(bookings []Booking, day time.Time) []Booking {
	out := make([]Booking, 0)
	for _, b := range bookings {
		if SameDay(b.Date, day) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

// InRange returns bookings whose calendar day lies within [from, to], inclusive.
func InRange(bookings []Booking, from, to time.Time) []Booking {
	lo := dayStart(from)
	hi := dayStart(to).AddDate(0, 0, 1)
	out := make([]Booking, 0)
	for _, b := range bookings {
		d := b.Date.In(lo.Location())
		if !d.Before(lo) && d.Before(hi) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

// Find returns the booking with the given id.
func Find(bookings []Booking, id string) (Booking, bool) {
	for _, b := range bookings {
		if b.ID == id {
			return b, true
		}
	}
	return Booking{}, false
}

// EstimatedRevenue sums the estimates of every booking that is not cancelled.
func EstimatedRevenue(bookings []Booking) pricing.Money {
	var total pricing.Money
	for _, b := range bookings {
		if b.Status != StatusCancelled {
			total += b.EstimatedPrice
		}
	}
	return total
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortByStart(bs []Booking) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].Date.Before(bs[j].Date) })
}
