// Package catalog caches the storefront product catalog in memory with a fixed
// TTL and a stale-serve policy: a failed refresh never discards known products.
package catalog

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zenberry/zenchat/internal/domain"
)

const (
	// TTL is how long one successful fetch is served before a refresh attempt.
	TTL = 5 * time.Minute
	// FetchLimit caps how many products are requested from the backend.
	FetchLimit = 50

	searchMaxResults       = 5
	searchDescriptionLimit = 150
)

// Cache holds the normalized catalog snapshot.
type Cache struct {
	fetcher ProductFetcher
	baseURL string
	now     func() time.Time

	mu       sync.RWMutex
	snapshot *domain.CatalogSnapshot
}

// NewCache creates a Cache over the given fetcher. Product URLs are derived
// from baseURL and the product handle.
func NewCache(fetcher ProductFetcher, baseURL string) *Cache {
	return &Cache{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GetAll returns the cached entries while the snapshot is younger than TTL,
// refreshing it otherwise. A failed refresh serves the stale snapshot; an
// empty list is returned only when no fetch has ever succeeded.
func (c *Cache) GetAll(ctx context.Context) []domain.CatalogEntry {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()

	if snap != nil && snap.Age(c.now()) < TTL {
		return snap.Entries
	}

	raw, err := c.fetcher.FetchProducts(ctx, FetchLimit)
	if err != nil {
		if snap != nil {
			log.Printf("catalog: fetch failed, serving stale snapshot (age %s): %v", snap.Age(c.now()).Round(time.Second), err)
			return snap.Entries
		}
		log.Printf("catalog: fetch failed with no snapshot to fall back on: %v", err)
		return nil
	}

	entries := c.normalize(raw)
	fresh := &domain.CatalogSnapshot{Entries: entries, FetchedAt: c.now()}

	// Concurrent refreshes are allowed; last writer wins.
	c.mu.Lock()
	c.snapshot = fresh
	c.mu.Unlock()

	return entries
}

// Clear discards the snapshot so the next GetAll forces a fetch.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// Size returns the number of cached entries without triggering a fetch.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return 0
	}
	return len(c.snapshot.Entries)
}

// Search filters the catalog by whitespace-separated keywords (any token
// matches against title, description and tags) and formats up to five matches
// as human-readable blocks.
func (c *Cache) Search(ctx context.Context, keywords string) string {
	entries := c.GetAll(ctx)
	if len(entries) == 0 {
		return "There are no products available right now."
	}

	tokens := strings.Fields(strings.ToLower(keywords))
	var matches []domain.CatalogEntry
	for _, entry := range entries {
		haystack := strings.ToLower(entry.Title + " " + entry.Description + " " + strings.Join(entry.Tags, " "))
		for _, token := range tokens {
			if strings.Contains(haystack, token) {
				matches = append(matches, entry)
				break
			}
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No products matched %q. %d products are available in the catalog.", keywords, len(entries))
	}

	var b strings.Builder
	shown := matches
	if len(shown) > searchMaxResults {
		shown = shown[:searchMaxResults]
	}
	for i, entry := range shown {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSearchBlock(&b, entry)
	}
	if remaining := len(matches) - len(shown); remaining > 0 {
		fmt.Fprintf(&b, "\n...and %d more matching products.\n", remaining)
	}

	return b.String()
}

func writeSearchBlock(b *strings.Builder, entry domain.CatalogEntry) {
	fmt.Fprintf(b, "%s — %s — %s\n", entry.Title, entry.PriceDisplay, availabilityMarker(entry.Available))
	fmt.Fprintf(b, "Link: %s\n", entry.URL)
	if entry.Description != "" {
		fmt.Fprintf(b, "%s\n", truncate(entry.Description, searchDescriptionLimit))
	}
	if len(entry.Tags) > 0 {
		fmt.Fprintf(b, "Tags: %s\n", strings.Join(entry.Tags, ", "))
	}
	if len(entry.Variants) > 1 {
		parts := make([]string, 0, len(entry.Variants))
		for _, v := range entry.Variants {
			parts = append(parts, fmt.Sprintf("%s (%s, %s)", v.Title, v.PriceDisplay, availabilityWord(v.Available)))
		}
		fmt.Fprintf(b, "Variants: %s\n", strings.Join(parts, ", "))
	}
}

func (c *Cache) normalize(raw []RawProduct) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(raw))
	for _, p := range raw {
		entry := domain.CatalogEntry{
			ID:           p.ID,
			Title:        p.Title,
			Description:  p.Description,
			PriceDisplay: formatPrice(p.Currency, p.Amount),
			Available:    p.Available,
			Tags:         p.Tags,
			ProductType:  p.ProductType,
			Handle:       p.Handle,
			URL:          c.baseURL + "/products/" + p.Handle,
		}
		for _, v := range p.Variants {
			entry.Variants = append(entry.Variants, domain.ProductVariant{
				ID:           v.ID,
				Title:        v.Title,
				PriceDisplay: formatPrice(v.Currency, v.Amount),
				Available:    v.Available,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// formatPrice renders a currency code and raw amount as a display price with
// two decimals, e.g. "$20.00" or "24.90 CAD".
func formatPrice(currency, amount string) string {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		if symbol, ok := currencySymbols[currency]; ok {
			return symbol + amount
		}
		return strings.TrimSpace(amount + " " + currency)
	}
	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, value)
	}
	return fmt.Sprintf("%.2f %s", value, currency)
}

func availabilityMarker(available bool) string {
	if available {
		return "✓ In stock"
	}
	return "✗ Out of stock"
}

func availabilityWord(available bool) string {
	if available {
		return "in stock"
	}
	return "out of stock"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
