// Package inventory provides pure inventory statistics computation and the
// incremental reconciliation of cached aggregate counters.
//
// The statistics here are intentionally the single implementation: both the
// HTTP low-stock endpoint and the cache reconciler go through these
// functions, so thresholds can never drift between call sites.
package inventory

import (
	"opsboard/internal/core/types"
)

// DefaultMinStock is the fallback threshold applied when an item has no
// explicit minimum stock configured.
const DefaultMinStock = 3

// LineItem is an inventory line projected from a product for statistics
// purposes. It is never persisted on its own.
type LineItem struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Quantity      int         `json:"quantity"`
	MinStock      *int        `json:"minStock,omitempty"`
	Price         types.Money `json:"price"`
	PurchasePrice types.Money `json:"purchasePrice"`
}

// Threshold resolves the effective minimum-stock threshold for an item.
func Threshold(minStock *int, fallback int) int {
	if minStock != nil {
		return *minStock
	}
	return fallback
}

// IsLowStock reports whether quantity has fallen to or below the effective
// threshold. The zero-quantity guard is deliberately the caller's concern:
// IsLowStock(0, 5) is true in isolation, but a zero-quantity item is
// classified as out-of-stock, never low-stock, by every caller in this
// package.
func IsLowStock(quantity int, minStock *int, fallback int) bool {
	return quantity <= Threshold(minStock, fallback)
}

// Stats are derived inventory counters over a list of line items.
type Stats struct {
	OutOfStock    int         `json:"outOfStock"`
	LowStock      int         `json:"lowStock"`
	TotalCount    int         `json:"totalCount"`
	PurchaseValue types.Money `json:"purchaseValue"`
	SaleValue     types.Money `json:"saleValue"`
}

// ComputeStats derives counters and stock valuations over items.
// An item with zero quantity counts only toward OutOfStock.
func ComputeStats(items []LineItem, fallback int) Stats {
	stats := Stats{
		TotalCount:    len(items),
		PurchaseValue: types.Zero(),
		SaleValue:     types.Zero(),
	}

	for _, it := range items {
		qty := types.NewMoney(float64(it.Quantity))
		stats.PurchaseValue = stats.PurchaseValue.Add(it.PurchasePrice.Mul(qty))
		stats.SaleValue = stats.SaleValue.Add(it.Price.Mul(qty))

		switch {
		case it.Quantity == 0:
			stats.OutOfStock++
		case IsLowStock(it.Quantity, it.MinStock, fallback):
			stats.LowStock++
		}
	}

	return stats
}

// Tone is a three-state stock classification used for row highlighting.
type Tone string

const (
	ToneBelow Tone = "below" // strictly under the threshold
	ToneAt    Tone = "at"    // exactly at the threshold
	ToneAbove Tone = "above"
)

// StockTone classifies quantity against the threshold with strict
// comparisons. Note the boundary differs from IsLowStock's <=: an item
// exactly at its threshold is low-stock but tones as "at", not "below".
// Both predicates are kept distinct on purpose; they drive different
// observable behaviour.
func StockTone(quantity int, minStock *int, fallback int) Tone {
	threshold := Threshold(minStock, fallback)
	switch {
	case quantity < threshold:
		return ToneBelow
	case quantity == threshold:
		return ToneAt
	default:
		return ToneAbove
	}
}

// MarginTone classifies a margin figure for presentation.
type MarginTone string

const (
	MarginLoss   MarginTone = "loss"
	MarginProfit MarginTone = "profit"
)

// ClassifyMargin maps a margin value to its tone. Zero margin is profit.
func ClassifyMargin(margin types.Money) MarginTone {
	if margin.IsNegative() {
		return MarginLoss
	}
	return MarginProfit
}
