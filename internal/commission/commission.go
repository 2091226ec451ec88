// Package commission computes staff payouts from the transaction log.
package commission

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/staff"
)

// Payout rates by line type. They apply regardless of the rate stored on
// the catalog item the line came from.
var (
	ServiceRate = pricing.RateFromFloat(0.10)
	ProductRate = pricing.RateFromFloat(0.05)
	TopUpRate   = pricing.RateFromFloat(0.08)
)

// RateFor returns the payout rate for a settled line type.
func RateFor(t checkout.ItemType) (pricing.Rate, error) {
	switch t {
	case checkout.ItemService:
		return ServiceRate, nil
	case checkout.ItemProduct:
		return ProductRate, nil
	case checkout.ItemCardTopUp:
		return TopUpRate, nil
	default:
		return 0, fmt.Errorf("commission: unknown item type %q", t)
	}
}

// Stats aggregates one staff member's attributed lines.
type Stats struct {
	StaffID         string        `json:"staffId"`
	ServiceCount    int           `json:"serviceCount"`
	ProductCount    int           `json:"productCount"`
	TopUpCount      int           `json:"topupCount"`
	TotalCommission float64       `json:"totalCommission"`
	TotalSales      pricing.Money `json:"totalSales"`
}

func (s *Stats) add(it checkout.Item, rate pricing.Rate) {
	switch it.Type {
	case checkout.ItemService:
		s.ServiceCount++
	case checkout.ItemProduct:
		s.ProductCount++
	case checkout.ItemCardTopUp:
		s.TopUpCount++
	}
	s.TotalCommission += pricing.Percent(it.Price, rate)
	s.TotalSales += it.Price
}

// Report maps staff id to stats. Every roster member has an entry.
type Report map[string]*Stats

// Total returns the commission owed across all staff.
func (r Report) Total() float64 {
	var total float64
	for _, s := range r {
		total += s.TotalCommission
	}
	return total
}

// Ordered returns the stats in roster order.
func (r Report) Ordered(roster staff.Roster) []Stats {
	out := make([]Stats, 0, len(roster))
	for _, s := range roster {
		if stats, ok := r[s.ID]; ok {
			out = append(out, *stats)
		}
	}
	return out
}

// Calculator computes commission reports. The zero value is ready to use and
// discards log output.
type Calculator struct {
	Logger zerolog.Logger
}

// Compute aggregates txs per roster member. Lines with no staff, or staff
// outside roster, are skipped.
func (c Calculator) Compute(txs []checkout.Transaction, roster staff.Roster) Report {
	report := make(Report, len(roster))
	for _, s := range roster {
		report[s.ID] = &Stats{StaffID: s.ID}
	}
	for _, tx := range txs {
		for _, it := range tx.Items {
			if it.StaffID == "" {
				continue
			}
			stats, ok := report[it.StaffID]
			if !ok {
				c.Logger.Debug().Str("staff_id", it.StaffID).Str("transaction_id", tx.ID).Msg("commission line for unknown staff skipped")
				continue
			}
			rate, err := RateFor(it.Type)
			if err != nil {
				c.Logger.Debug().Err(err).Str("transaction_id", tx.ID).Msg("commission line skipped")
				continue
			}
			stats.add(it, rate)
		}
	}
	return report
}

// Compute is Calculator{}.Compute.
func Compute(txs []checkout.Transaction, roster staff.Roster) Report {
	return Calculator{Logger: zerolog.Nop()}.Compute(txs, roster)
}

// ForTransaction returns the commission generated by every typed line of tx,
// attributed or not.
func ForTransaction(tx checkout.Transaction) float64 {
	var total float64
	for _, it := range tx.Items {
		rate, err := RateFor(it.Type)
		if err != nil {
			continue
		}
		total += pricing.Percent(it.Price, rate)
	}
	return total
}
