// Package inventory applies sales to product stock.
package inventory

import "github.com/noah-isme/backend-salon/internal/catalog"

// Deduct returns a copy of products with one unit removed per occurrence of a
// product id in sold. Stock floors at zero. Unknown ids are ignored.
func Deduct(products []catalog.Product, sold []string) []catalog.Product {
	out := make([]catalog.Product, len(products))
	copy(out, products)
	if len(sold) == 0 {
		return out
	}
	counts := Tally(sold)
	for i := range out {
		n, ok := counts[out[i].ID]
		if !ok {
			continue
		}
		out[i].Stock = max(0, out[i].Stock-n)
	}
	return out
}

// Tally counts units per product id.
func Tally(sold []string) map[string]int {
	counts := make(map[string]int, len(sold))
	for _, id := range sold {
		counts[id]++
	}
	return counts
}

// Removed returns how many units Deduct actually took out of stock, which is
// less than len(sold) when a sale exceeded the recorded stock.
func Removed(before, after []catalog.Product) int {
	stock := make(map[string]int, len(after))
	for _, p := range after {
		stock[p.ID] = p.Stock
	}
	n := 0
	for _, p := range before {
		if s, ok := stock[p.ID]; ok && s < p.Stock {
			n += p.Stock - s
		}
	}
	return n
}
