package inventory

import (
	"errors"
	"sync"
)

// Cache lifecycle states. The cache is constructed by the composition root,
// initialized exactly once, and becomes active when the first entry is primed.
type State string

const (
	StateCreated     State = "created"
	StateInitialized State = "initialized"
	StateActive      State = "active"
)

// ErrAlreadyInitialized is returned by a repeated Initialize call.
var ErrAlreadyInitialized = errors.New("inventory: stats cache already initialized")

// ErrNotInitialized is returned when entries are primed before Initialize.
var ErrNotInitialized = errors.New("inventory: stats cache not initialized")

// EntryFilter describes which items a cached aggregate covers.
type EntryFilter struct {
	// LowOnly restricts the cached list to low-stock items
	// (the "show only low-stock" view).
	LowOnly bool

	// CategoryID restricts the entry to one category; nil covers all.
	CategoryID *int64
}

// Entry is one cached aggregate keyed by its query filter.
type Entry struct {
	Filter     EntryFilter
	Items      []LineItem
	Stats      Stats
	TotalCount int
}

// MinStockChange describes a single-product min-stock mutation to reconcile
// against cached aggregates without refetching.
type MinStockChange struct {
	ProductID    int64
	CategoryID   int64
	Remains      int
	PrevMinStock *int
	NewMinStock  *int

	// Item carries the post-update line so low-only lists can re-admit a
	// product that became low-stock.
	Item LineItem
}

// StatsCache reconciles cached inventory aggregates after single-item
// mutations. The reconciliation is synchronous and convergent: the
// incrementally adjusted counters equal what a full recomputation over the
// updated list would produce, so a later revalidation fetch applies
// idempotently.
type StatsCache struct {
	mu       sync.Mutex
	state    State
	fallback int
	entries  map[string]*Entry
}

// NewStatsCache creates a cache in the created state.
func NewStatsCache() *StatsCache {
	return &StatsCache{
		state:   StateCreated,
		entries: make(map[string]*Entry),
	}
}

// Initialize sets the fallback threshold and arms the cache. It is the
// explicit one-time guard: a second call fails instead of silently
// re-running one-shot setup.
func (c *StatsCache) Initialize(fallback int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCreated {
		return ErrAlreadyInitialized
	}
	if fallback < 0 {
		fallback = DefaultMinStock
	}
	c.fallback = fallback
	c.state = StateInitialized
	return nil
}

// Lifecycle returns the current cache state.
func (c *StatsCache) Lifecycle() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Prime stores a freshly fetched list under key and computes its stats.
func (c *StatsCache) Prime(key string, filter EntryFilter, items []LineItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateCreated {
		return ErrNotInitialized
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	c.entries[key] = &Entry{
		Filter:     filter,
		Items:      copied,
		Stats:      ComputeStats(copied, c.fallback),
		TotalCount: len(copied),
	}
	c.state = StateActive
	return nil
}

// Get returns a snapshot of the cached entry for key.
func (c *StatsCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	snapshot := *e
	snapshot.Items = make([]LineItem, len(e.Items))
	copy(snapshot.Items, e.Items)
	return snapshot, true
}

// Invalidate drops the cached entry for key.
func (c *StatsCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// ApplyMinStockChange reconciles every cached entry covering the product.
// deltaLow is derived from the low-stock predicate before and after the
// edit; counters move by at most one and low-only lists adjust membership.
func (c *StatsCache) ApplyMinStockChange(change MinStockChange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	change.Item.MinStock = change.NewMinStock
	change.Item.Quantity = change.Remains

	wasLow := change.Remains > 0 && IsLowStock(change.Remains, change.PrevMinStock, c.fallback)
	isLow := change.Remains > 0 && IsLowStock(change.Remains, change.NewMinStock, c.fallback)

	for _, entry := range c.entries {
		if !entry.Filter.covers(change) {
			continue
		}
		c.reconcileEntry(entry, change, wasLow, isLow)
	}
}

func (f EntryFilter) covers(change MinStockChange) bool {
	return f.CategoryID == nil || *f.CategoryID == change.CategoryID
}

func (c *StatsCache) reconcileEntry(entry *Entry, change MinStockChange, wasLow, isLow bool) {
	// Keep the stored item's min stock current wherever it is listed.
	for i := range entry.Items {
		if entry.Items[i].ID == change.Item.ID {
			entry.Items[i].MinStock = change.NewMinStock
		}
	}

	if wasLow == isLow {
		return
	}

	if isLow {
		entry.Stats.LowStock++
	} else {
		entry.Stats.LowStock--
	}

	if !entry.Filter.LowOnly {
		return
	}

	// A low-only view also changes membership: items that stopped being
	// low leave the list, items that became low join it.
	if isLow {
		entry.Items = append(entry.Items, change.Item)
		entry.TotalCount++
		entry.Stats.TotalCount++
	} else {
		for i := range entry.Items {
			if entry.Items[i].ID == change.Item.ID {
				entry.Items = append(entry.Items[:i], entry.Items[i+1:]...)
				break
			}
		}
		entry.TotalCount--
		entry.Stats.TotalCount--
	}
}

// RecomputeEntry rebuilds an entry's stats from its stored items. Used by
// revalidation; for a correctly reconciled entry this is a no-op.
func (c *StatsCache) RecomputeEntry(key string) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Stats{}, false
	}
	e.Stats = ComputeStats(e.Items, c.fallback)
	return e.Stats, true
}
