// Package analytics builds the revenue dashboard and staff commission report
// from the transaction log.
package analytics

import (
	"math"
	"strings"

	"github.com/noah-isme/backend-salon/internal/booking"
	"github.com/noah-isme/backend-salon/internal/checkout"
	"github.com/noah-isme/backend-salon/internal/commission"
	"github.com/noah-isme/backend-salon/internal/pricing"
	"github.com/noah-isme/backend-salon/internal/staff"
)

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 10

var typeLabels = []struct {
	Type  checkout.ItemType
	Label string
}{
	{checkout.ItemService, "服务"},
	{checkout.ItemProduct, "产品"},
	{checkout.ItemCardTopUp, "充值"},
}

// TypeRevenue is the takings of one line type.
type TypeRevenue struct {
	Type   checkout.ItemType `json:"type"`
	Label  string            `json:"label"`
	Amount pricing.Money     `json:"amount"`
}

// StaffStats is a roster member's commission line on the dashboard.
type StaffStats struct {
	commission.Stats
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// RecentTransaction pairs a transaction with the commission it generated.
type RecentTransaction struct {
	checkout.Transaction
	Commission float64 `json:"commission"`
}

// Dashboard is the revenue summary for the whole transaction log.
type Dashboard struct {
	Revision         int64               `json:"revision"`
	ActualRevenue    pricing.Money       `json:"actualRevenue"`
	EstimatedRevenue pricing.Money       `json:"estimatedRevenue"`
	TransactionCount int                 `json:"transactionCount"`
	TotalCommission  float64             `json:"totalCommission"`
	AverageTicket    pricing.Money       `json:"averageTicket"`
	RevenueByType    []TypeRevenue       `json:"revenueByType"`
	Staff            []StaffStats        `json:"staff"`
	Recent           []RecentTransaction `json:"recent"`
}

// Build computes the dashboard. txs are expected newest first, as the store keeps them.
func Build(txs []checkout.Transaction, bookings []booking.Booking, roster staff.Roster, calc commission.Calculator) Dashboard {
	d := Dashboard{
		EstimatedRevenue: booking.EstimatedRevenue(bookings),
		TransactionCount: len(txs),
	}

	totals := make([]pricing.Money, 0, len(txs))
	byType := map[checkout.ItemType]pricing.Money{}
	for _, tx := range txs {
		totals = append(totals, tx.TotalAmount)
		for _, it := range tx.Items {
			byType[it.Type] += it.Price
		}
	}
	d.ActualRevenue = pricing.Sum(totals...)
	if d.TransactionCount > 0 {
		d.AverageTicket = pricing.Money(math.Round(float64(d.ActualRevenue) / float64(d.TransactionCount)))
	}
	for _, tl := range typeLabels {
		d.RevenueByType = append(d.RevenueByType, TypeRevenue{Type: tl.Type, Label: tl.Label, Amount: byType[tl.Type]})
	}

	report := calc.Compute(txs, roster)
	d.TotalCommission = report.Total()
	d.Staff = StaffLines(report, roster)

	n := len(txs)
	if n > RecentLimit {
		n = RecentLimit
	}
	d.Recent = make([]RecentTransaction, 0, n)
	for _, tx := range txs[:n] {
		d.Recent = append(d.Recent, RecentTransaction{Transaction: tx, Commission: commission.ForTransaction(tx)})
	}
	return d
}

// StaffLines joins a commission report with roster display fields, in roster order.
func StaffLines(report commission.Report, roster staff.Roster) []StaffStats {
	ordered := report.Ordered(roster)
	out := make([]StaffStats, 0, len(ordered))
	for _, st := range ordered {
		s, _ := roster.Find(st.StaffID)
		out = append(out, StaffStats{Stats: st, Name: shortName(s.Name), Avatar: s.Avatar})
	}
	return out
}

// shortName drops the romanised suffix, "露露 (Lulu)" becomes "露露".
func shortName(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first
}
