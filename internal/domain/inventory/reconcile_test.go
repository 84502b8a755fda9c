package inventory

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActiveCache(t *testing.T) *StatsCache {
	t.Helper()
	c := NewStatsCache()
	require.NoError(t, c.Initialize(DefaultMinStock))
	return c
}

func TestStatsCache_Lifecycle(t *testing.T) {
	c := NewStatsCache()
	assert.Equal(t, StateCreated, c.Lifecycle())

	require.Error(t, c.Prime("k", EntryFilter{}, nil))

	require.NoError(t, c.Initialize(DefaultMinStock))
	assert.Equal(t, StateInitialized, c.Lifecycle())

	assert.ErrorIs(t, c.Initialize(DefaultMinStock), ErrAlreadyInitialized)

	require.NoError(t, c.Prime("k", EntryFilter{}, nil))
	assert.Equal(t, StateActive, c.Lifecycle())
}

func TestApplyMinStockChange_FlipToNotLow(t *testing.T) {
	c := newActiveCache(t)

	items := []LineItem{
		{ID: 1, Quantity: 2, MinStock: intp(6)},
		{ID: 2, Quantity: 9, MinStock: intp(1)},
	}
	require.NoError(t, c.Prime("all", EntryFilter{}, items))

	before, _ := c.Get("all")
	require.Equal(t, 1, before.Stats.LowStock)

	// remains=2, minStock 6 -> 1: classification flips low -> not low.
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      2,
		PrevMinStock: intp(6),
		NewMinStock:  intp(1),
		Item:         items[0],
	})

	after, _ := c.Get("all")
	assert.Equal(t, 0, after.Stats.LowStock)

	recomputed, ok := c.RecomputeEntry("all")
	require.True(t, ok)
	assert.Equal(t, after.Stats.LowStock, recomputed.LowStock)
}

func TestApplyMinStockChange_ExactThresholdStaysLow(t *testing.T) {
	c := newActiveCache(t)

	items := []LineItem{{ID: 1, Quantity: 2, MinStock: intp(6)}}
	require.NoError(t, c.Prime("all", EntryFilter{}, items))

	// remains=2, minStock 6 -> 2: quantity equal to the threshold is
	// still low, so the counter must not move.
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      2,
		PrevMinStock: intp(6),
		NewMinStock:  intp(2),
		Item:         items[0],
	})

	after, _ := c.Get("all")
	assert.Equal(t, 1, after.Stats.LowStock)

	recomputed, ok := c.RecomputeEntry("all")
	require.True(t, ok)
	assert.Equal(t, after.Stats.LowStock, recomputed.LowStock)
}

func TestApplyMinStockChange_NoFlipKeepsCounters(t *testing.T) {
	c := newActiveCache(t)

	items := []LineItem{{ID: 1, Quantity: 2, MinStock: intp(6)}}
	require.NoError(t, c.Prime("all", EntryFilter{}, items))

	// Still low after the edit: delta must be zero.
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      2,
		PrevMinStock: intp(6),
		NewMinStock:  intp(4),
		Item:         items[0],
	})

	after, _ := c.Get("all")
	assert.Equal(t, 1, after.Stats.LowStock)
	assert.Equal(t, 1, after.TotalCount)
}

func TestApplyMinStockChange_ZeroQuantityNeverCounted(t *testing.T) {
	c := newActiveCache(t)

	items := []LineItem{{ID: 1, Quantity: 0, MinStock: intp(1)}}
	require.NoError(t, c.Prime("all", EntryFilter{}, items))

	before, _ := c.Get("all")
	require.Equal(t, 0, before.Stats.LowStock)
	require.Equal(t, 1, before.Stats.OutOfStock)

	// Raising the threshold on an out-of-stock item must not create a
	// phantom low-stock entry.
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      0,
		PrevMinStock: intp(1),
		NewMinStock:  intp(50),
		Item:         items[0],
	})

	after, _ := c.Get("all")
	assert.Equal(t, 0, after.Stats.LowStock)
	assert.Equal(t, 1, after.Stats.OutOfStock)
}

func TestApplyMinStockChange_LowOnlyViewMembership(t *testing.T) {
	c := newActiveCache(t)

	low := []LineItem{
		{ID: 1, Quantity: 2, MinStock: intp(6)},
		{ID: 2, Quantity: 1, MinStock: intp(3)},
	}
	require.NoError(t, c.Prime("low", EntryFilter{LowOnly: true}, low))

	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      2,
		PrevMinStock: intp(6),
		NewMinStock:  intp(1),
		Item:         low[0],
	})

	after, _ := c.Get("low")
	require.Len(t, after.Items, 1)
	assert.Equal(t, int64(2), after.Items[0].ID)
	assert.Equal(t, 1, after.TotalCount)
	assert.Equal(t, 1, after.Stats.LowStock)

	// The same product drops back below threshold: it rejoins the view.
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    1,
		Remains:      2,
		PrevMinStock: intp(1),
		NewMinStock:  intp(4),
		Item:         LineItem{ID: 1, Quantity: 2},
	})

	again, _ := c.Get("low")
	assert.Len(t, again.Items, 2)
	assert.Equal(t, 2, again.TotalCount)
	assert.Equal(t, 2, again.Stats.LowStock)
}

func TestApplyMinStockChange_CategoryFilterScoping(t *testing.T) {
	c := newActiveCache(t)

	catA := int64(10)
	itemsA := []LineItem{{ID: 1, Quantity: 2, MinStock: intp(6)}}
	itemsAll := []LineItem{
		{ID: 1, Quantity: 2, MinStock: intp(6)},
		{ID: 2, Quantity: 1, MinStock: intp(5)},
	}
	require.NoError(t, c.Prime("cat-a", EntryFilter{CategoryID: &catA}, itemsA))
	require.NoError(t, c.Prime("all", EntryFilter{}, itemsAll))

	otherCat := int64(20)
	c.ApplyMinStockChange(MinStockChange{
		ProductID:    2,
		CategoryID:   otherCat,
		Remains:      1,
		PrevMinStock: intp(5),
		NewMinStock:  intp(0),
		Item:         itemsAll[1],
	})

	// The category-scoped entry does not cover the product; only the
	// unfiltered entry moves.
	entryA, _ := c.Get("cat-a")
	assert.Equal(t, 1, entryA.Stats.LowStock)

	all, _ := c.Get("all")
	assert.Equal(t, 1, all.Stats.LowStock)
}

// TestReconciliationEquivalence_RandomizedSequence drives a random sequence
// of min-stock edits through the incremental reconciler and checks after
// every step that the cached counter equals a full recomputation over the
// post-edit list.
func TestReconciliationEquivalence_RandomizedSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		c := newActiveCache(t)

		master := make([]LineItem, 0, 30)
		for i := 0; i < 30; i++ {
			var minStock *int
			if rng.Intn(4) > 0 {
				minStock = intp(rng.Intn(8))
			}
			master = append(master, LineItem{
				ID:       int64(i + 1),
				Quantity: rng.Intn(10),
				MinStock: minStock,
			})
		}
		require.NoError(t, c.Prime("all", EntryFilter{}, master))

		for step := 0; step < 50; step++ {
			idx := rng.Intn(len(master))
			prev := master[idx].MinStock

			var next *int
			if rng.Intn(5) > 0 {
				next = intp(rng.Intn(8))
			}
			master[idx].MinStock = next

			c.ApplyMinStockChange(MinStockChange{
				ProductID:    master[idx].ID,
				Remains:      master[idx].Quantity,
				PrevMinStock: prev,
				NewMinStock:  next,
				Item:         master[idx],
			})

			entry, ok := c.Get("all")
			require.True(t, ok)
			fresh := ComputeStats(master, DefaultMinStock)
			require.Equal(t, fresh.LowStock, entry.Stats.LowStock,
				fmt.Sprintf("trial %d step %d: incremental counter diverged", trial, step))
			require.Equal(t, fresh.OutOfStock, entry.Stats.OutOfStock)
		}
	}
}
