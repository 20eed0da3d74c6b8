package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/jask/stockterm/internal/api"
)

// Lister fetches the inventory collection. api.Client satisfies it.
type Lister interface {
	ListInventories(ctx context.Context) ([]api.Inventory, error)
}

// Catalog holds the last successfully fetched inventory list.
type Catalog struct {
	Lister Lister
	Logger *log.Logger

	mu    sync.RWMutex
	items []api.Inventory
}

func NewCatalog(lister Lister, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{Lister: lister, Logger: logger}
}

// Refresh replaces the held list on success. On failure the previous list
// is kept and the error is logged and returned.
func (c *Catalog) Refresh(ctx context.Context) ([]api.Inventory, error) {
	items, err := c.Lister.ListInventories(ctx)
	if err != nil {
		c.Logger.Printf("[catalog] refresh failed, keeping %d items: %v", len(c.Items()), err)
		return c.Items(), err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return c.Items(), nil
}

// Items returns a copy of the held list.
func (c *Catalog) Items() []api.Inventory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.Inventory, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the held items matching query. Case-insensitive substring
// matches come first in list order, followed by near misses ranked by edit
// distance. An empty query returns everything.
func (c *Catalog) Filter(query string) []api.Inventory {
	return FilterInventories(c.Items(), query)
}

func FilterInventories(items []api.Inventory, query string) []api.Inventory {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	type ranked struct {
		inv  api.Inventory
		dist int
	}
	var exact []api.Inventory
	var near []ranked
	limit := utf8.RuneCountInString(q) / 3
	if limit < 1 {
		limit = 1
	}
	for _, inv := range items {
		title := strings.ToLower(inv.Title)
		if strings.Contains(title, q) {
			exact = append(exact, inv)
			continue
		}
		if d := wordDistance(title, q); d <= limit {
			near = append(near, ranked{inv: inv, dist: d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, r := range near {
		exact = append(exact, r.inv)
	}
	return exact
}

// wordDistance is the smallest edit distance between q and any word of title.
func wordDistance(title, q string) int {
	best := levenshtein.ComputeDistance(title, q)
	for _, w := range strings.Fields(title) {
		if d := levenshtein.ComputeDistance(w, q); d < best {
			best = d
		}
	}
	return best
}
