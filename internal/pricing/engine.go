package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money represents a monetary value in whole currency units (yuan).
type Money = int64

// bpsScale is the number of basis points in a multiplier of 1.
const bpsScale = 10000

// Rate is a price multiplier stored in basis points, so 0.88 is 8800.
// Keeping the multiplier integral makes floor(base * rate) exact.
type Rate int64

// Full is the multiplier that leaves a price unchanged.
const Full Rate = bpsScale

// RateFromFloat converts a decimal multiplier such as 0.88 into a Rate.
func RateFromFloat(f float64) Rate {
	return Rate(math.Round(f * bpsScale))
}

// BPS returns the raw basis point value.
func (r Rate) BPS() int64 { return int64(r) }

// Float returns the decimal multiplier, for display.
func (r Rate) Float() float64 { return float64(r) / bpsScale }

// IsFull reports whether the rate leaves prices untouched.
func (r Rate) IsFull() bool { return r == Full }

// Valid reports whether the rate is a usable multiplier.
func (r Rate) Valid() bool { return r >= 0 && r <= Full }

func (r Rate) String() string {
	return strconv.FormatFloat(r.Float(), 'f', -1, 64)
}

// MarshalJSON encodes the rate as its decimal multiplier.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalJSON accepts a decimal multiplier.
func (r *Rate) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("pricing: rate must be a number: %w", err)
	}
	*r = RateFromFloat(f)
	return nil
}

// PriceLine returns floor(base * rate). Amounts are never negative, so the
// integer division floors.
func PriceLine(base Money, rate Rate) Money {
	if base <= 0 {
		return 0
	}
	if rate < 0 {
		rate = 0
	}
	return (base * Money(rate)) / bpsScale
}

// Percent returns amount * rate as a fractional value. It is used for
// figures, such as commissions, that are reported without flooring.
func Percent(amount Money, rate Rate) float64 {
	return float64(amount) * float64(rate) / bpsScale
}

// Sum adds the provided amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}
