package scrape

import (
	"context"
	"database/sql"
	"log"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/store"
)

// ProcessListings writes a batch of scraped listings for one item.
// The whole batch lands in a single transaction with one pricing
// recompute at the end, so a bulk run is one mutation in the log.
func ProcessListings(ctx context.Context, db *sql.DB, itemID int64, listings []domain.Listing) (added, updated int, err error) {
	recs := make([]store.SourceRecord, 0, len(listings))
	for _, l := range listings {
		recs = append(recs, store.SourceFromListing(itemID, l))
	}

	added, updated, err = store.UpsertSources(ctx, db, itemID, recs)
	if err != nil {
		return 0, 0, err
	}
	log.Printf("[process] item=%d listings=%d added=%d updated=%d",
		itemID, len(listings), added, updated)
	return added, updated, nil
}
