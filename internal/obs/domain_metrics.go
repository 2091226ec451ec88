package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout attempts by payment method and outcome.
	CheckoutTotal *prometheus.CounterVec
	// CheckoutAmountTotal sums settled transaction totals by payment method.
	CheckoutAmountTotal *prometheus.CounterVec
	// StockUnitsDeducted counts product units removed from inventory by sales.
	StockUnitsDeducted prometheus.Counter
	// BookingsCreated counts appointments recorded.
	BookingsCreated prometheus.Counter
	// ShiftUpdates counts rota changes by shift type.
	ShiftUpdates *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by payment method and result.",
		}, []string{"method", "result"})
		CheckoutAmountTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_amount_total",
			Help:      "Sum of settled transaction totals in whole currency units.",
		}, []string{"method"})
		StockUnitsDeducted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_deducted_total",
			Help:      "Product units removed from stock by completed sales.",
		})
		BookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Number of appointments recorded.",
		})
		ShiftUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_updates_total",
			Help:      "Rota changes by resulting shift type.",
		}, []string{"type"})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutAmountTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutAmountTotal = v
			}
		})
		mustRegisterCollector(reg, StockUnitsDeducted, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				StockUnitsDeducted = v
			}
		})
		mustRegisterCollector(reg, BookingsCreated, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				BookingsCreated = v
			}
		})
		mustRegisterCollector(reg, ShiftUpdates, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ShiftUpdates = v
			}
		})
	})
}

// ObserveCheckout records a checkout outcome. It is a no-op until the domain
// metrics are registered.
func ObserveCheckout(method, result string, amount int64) {
	if CheckoutTotal != nil {
		CheckoutTotal.WithLabelValues(method, result).Inc()
	}
	if CheckoutAmountTotal != nil && amount > 0 {
		CheckoutAmountTotal.WithLabelValues(method).Add(float64(amount))
	}
}

// ObserveStockDeducted records units taken out of inventory.
func ObserveStockDeducted(units int) {
	if StockUnitsDeducted != nil && units > 0 {
		StockUnitsDeducted.Add(float64(units))
	}
}

// ObserveBookingCreated counts a new appointment.
func ObserveBookingCreated() {
	if BookingsCreated != nil {
		BookingsCreated.Inc()
	}
}

// ObserveShiftUpdate counts a rota change.
func ObserveShiftUpdate(shiftType string) {
	if ShiftUpdates != nil {
		ShiftUpdates.WithLabelValues(shiftType).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
