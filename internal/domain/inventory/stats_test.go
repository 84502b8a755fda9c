package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"opsboard/internal/core/types"
)

func intp(v int) *int { return &v }

func TestIsLowStock_Boundary(t *testing.T) {
	assert.True(t, IsLowStock(2, intp(2), DefaultMinStock))
	assert.True(t, IsLowStock(1, intp(2), DefaultMinStock))
	assert.False(t, IsLowStock(3, intp(2), DefaultMinStock))

	// Fallback threshold applies when min stock is unset.
	assert.True(t, IsLowStock(3, nil, DefaultMinStock))
	assert.False(t, IsLowStock(4, nil, DefaultMinStock))

	// In isolation zero quantity satisfies the predicate; the zero-quantity
	// guard belongs to the caller.
	assert.True(t, IsLowStock(0, intp(5), DefaultMinStock))
}

func TestComputeStats_Classification(t *testing.T) {
	items := []LineItem{
		{ID: 1, Quantity: 0},
		{ID: 2, Quantity: 1, MinStock: intp(2)},
		{ID: 3, Quantity: 3, MinStock: intp(2)},
		{ID: 4, Quantity: 3},
		{ID: 5, Quantity: 1},
	}

	stats := ComputeStats(items, DefaultMinStock)

	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 3, stats.LowStock)
	assert.Equal(t, 5, stats.TotalCount)
}

func TestComputeStats_ZeroQuantityNeverLowStock(t *testing.T) {
	items := []LineItem{
		{ID: 1, Quantity: 0, MinStock: intp(10)},
	}

	stats := ComputeStats(items, DefaultMinStock)

	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 0, stats.LowStock)
}

func TestComputeStats_Valuations(t *testing.T) {
	items := []LineItem{
		{ID: 1, Quantity: 2, Price: types.MustMoney("100.50"), PurchasePrice: types.MustMoney("60")},
		{ID: 2, Quantity: 3, Price: types.MustMoney("10")},
		{ID: 3, Quantity: 1}, // missing prices count as zero
	}

	stats := ComputeStats(items, DefaultMinStock)

	assert.True(t, stats.PurchaseValue.Equal(types.MustMoney("120")))
	assert.True(t, stats.SaleValue.Equal(types.MustMoney("231")))
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, DefaultMinStock)

	assert.Equal(t, 0, stats.OutOfStock)
	assert.Equal(t, 0, stats.LowStock)
	assert.Equal(t, 0, stats.TotalCount)
	assert.True(t, stats.PurchaseValue.IsZero())
	assert.True(t, stats.SaleValue.IsZero())
}

func TestStockTone_StrictBoundary(t *testing.T) {
	// Tone uses strict comparisons against the threshold, unlike
	// IsLowStock's <=. An item exactly at its threshold is still low-stock
	// but tones as "at".
	assert.Equal(t, ToneBelow, StockTone(1, intp(2), DefaultMinStock))
	assert.Equal(t, ToneAt, StockTone(2, intp(2), DefaultMinStock))
	assert.Equal(t, ToneAbove, StockTone(3, intp(2), DefaultMinStock))

	assert.True(t, IsLowStock(2, intp(2), DefaultMinStock))
	assert.NotEqual(t, ToneBelow, StockTone(2, intp(2), DefaultMinStock))
}

func TestClassifyMargin(t *testing.T) {
	assert.Equal(t, MarginLoss, ClassifyMargin(types.MustMoney("-0.01")))
	assert.Equal(t, MarginProfit, ClassifyMargin(types.Zero()))
	assert.Equal(t, MarginProfit, ClassifyMargin(types.MustMoney("12.40")))
}
