// Package schedule keeps the staff shift rota. A staff member has at most one
// shift per calendar day.
package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Type is a shift kind.
type Type string

const (
	Early Type = "early"
	Late  Type = "late"
	Off   Type = "off"
)

var typeLabels = map[Type]string{
	Early: "早班 (10:00 - 20:00)",
	Late:  "晚班 (11:00 - 21:00)",
	Off:   "休息",
}

// Valid reports whether t is a known shift kind.
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the rota label for t.
func (t Type) Label() string { return typeLabels[t] }

// Next returns the kind that follows t in the rota cycle. The empty Type
// stands for "no shift" and cycles like Off.
func (t Type) Next() Type {
	switch t {
	case Early:
		return Late
	case Late:
		return Off
	default:
		return Early
	}
}

// Shift assigns a staff member to a day. Date is midnight of that day.
type Shift struct {
	ID      string    `json:"id"`
	StaffID string    `json:"staffId"`
	Date    time.Time `json:"date"`
	Type    Type      `json:"type"`
}

const dayLayout = "2006-01-02"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type slot struct {
	staffID string
	day     string
}

func slotOf(staffID string, day time.Time) slot {
	return slot{staffID: staffID, day: day.Format(dayLayout)}
}

// Book is the set of shifts keyed by (staff, day). The zero value is empty
// and ready to use. A Book is a value: mutating methods are applied to a
// clone by the store.
type Book struct {
	shifts map[slot]Shift
	// NewID overrides the id generator in tests.
	NewID func() string
}

// NewBook builds a book from a shift list. When the list holds duplicate
// slots, the later entry wins.
func NewBook(shifts []Shift) Book {
	b := Book{shifts: make(map[slot]Shift, len(shifts))}
	for _, s := range shifts {
		s.Date = Day(s.Date)
		b.shifts[slotOf(s.StaffID, s.Date)] = s
	}
	return b
}

// Clone returns an independent copy.
func (b Book) Clone() Book {
	out := Book{shifts: make(map[slot]Shift, len(b.shifts)), NewID: b.NewID}
	for k, v := range b.shifts {
		out.shifts[k] = v
	}
	return out
}

func (b *Book) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

// Len returns the number of shift records.
func (b Book) Len() int { return len(b.shifts) }

// Get returns the shift of staffID on day's calendar date.
func (b Book) Get(staffID string, day time.Time) (Shift, bool) {
	s, ok := b.shifts[slotOf(staffID, Day(day))]
	return s, ok
}

// Set replaces whatever shift staffID has on day with one of kind t. The
// existing record id is kept.
func (b *Book) Set(staffID string, day time.Time, t Type) (Shift, error) {
	if !t.Valid() {
		return Shift{}, fmt.Errorf("schedule: unknown shift type %q", t)
	}
	if b.shifts == nil {
		b.shifts = map[slot]Shift{}
	}
	day = Day(day)
	key := slotOf(staffID, day)
	s, ok := b.shifts[key]
	if !ok {
		s = Shift{ID: b.newID(), StaffID: staffID, Date: day}
	}
	s.Type = t
	b.shifts[key] = s
	return s, nil
}

// Cycle advances staffID's shift on day to the next kind in the rota.
func (b *Book) Cycle(staffID string, day time.Time) Shift {
	var current Type
	if s, ok := b.Get(staffID, day); ok {
		current = s.Type
	}
	s, _ := b.Set(staffID, day, current.Next())
	return s
}

// All returns every shift ordered by day then staff.
func (b Book) All() []Shift {
	out := make([]Shift, 0, len(b.shifts))
	for _, s := range b.shifts {
		out = append(out, s)
	}
	sortShifts(out)
	return out
}

// Range returns shifts whose day lies within [from, to], inclusive.
func (b Book) Range(from, to time.Time) []Shift {
	lo, hi := Day(from), Day(to)
	out := make([]Shift, 0)
	for _, s := range b.shifts {
		d := s.Date.In(lo.Location())
		if !d.Before(lo) && !d.After(hi) {
			out = append(out, s)
		}
	}
	sortShifts(out)
	return out
}

func sortShifts(s []Shift) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].Date.Equal(s[j].Date) {
			return s[i].Date.Before(s[j].Date)
		}
		return s[i].StaffID < s[j].StaffID
	})
}

// MarshalJSON encodes the book as an ordered shift list.
func (b Book) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.All())
}

// UnmarshalJSON decodes a shift list, collapsing duplicate slots.
func (b *Book) UnmarshalJSON(data []byte) error {
	var shifts []Shift
	if err := json.Unmarshal(data, &shifts); err != nil {
		return err
	}
	nb := NewBook(shifts)
	b.shifts = nb.shifts
	return nil
}
