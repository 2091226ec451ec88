package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/catalog"
)

func TestDeductFloorsAtZero(t *testing.T) {
	products := []catalog.Product{{ID: "p1", Stock: 2}}
	got := Deduct(products, []string{"p1", "p1", "p1"})
	require.Equal(t, 0, got[0].Stock)
	require.Equal(t, 2, products[0].Stock, "input slice must not be modified")
	require.Equal(t, 2, Removed(products, got))
}

func TestDeductCountsOccurrences(t *testing.T) {
	products := []catalog.Product{
		{ID: "p1", Name: "Cream", Stock: 10},
		{ID: "p2", Name: "Oil", Stock: 4},
		{ID: "p3", Name: "Crystal", Stock: 1},
	}
	got := Deduct(products, []string{"p2", "p1", "p2", "ghost"})
	require.Equal(t, 9, got[0].Stock)
	require.Equal(t, 2, got[1].Stock)
	require.Equal(t, products[2], got[2])
	require.Equal(t, 3, Removed(products, got))
}

func TestDeductNothingSold(t *testing.T) {
	products := []catalog.Product{{ID: "p1", Stock: 3}}
	require.Equal(t, products, Deduct(products, nil))
}
