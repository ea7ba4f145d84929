package domain

import "time"

// ProductVariant is a purchasable variation of a catalog product.
// Availability is per-variant: the parent product being available does not
// imply any given variant is.
type ProductVariant struct {
	ID           string
	Title        string
	PriceDisplay string
	Available    bool
}

// CatalogEntry is the normalized product record served to the prompt layer.
type CatalogEntry struct {
	ID           string
	Title        string
	Description  string
	PriceDisplay string
	Available    bool
	Tags         []string
	ProductType  string
	Handle       string
	URL          string
	Variants     []ProductVariant
}

// CatalogSnapshot is one successful catalog fetch plus its fetch time.
// A snapshot is reused until it ages past the cache TTL; on a failed refresh
// the stale snapshot is retained, never discarded.
type CatalogSnapshot struct {
	Entries   []CatalogEntry
	FetchedAt time.Time
}

// Age returns how old the snapshot is relative to now.
func (s *CatalogSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
