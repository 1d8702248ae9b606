package scrape

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/scrape/types"
	"pricescout-engine/internal/store"

	"golang.org/x/sync/errgroup"
)

const searchTimeout = 2 * time.Minute

// RunResearch executes one comparable-listing search for an item and
// persists the results. The item moves to "researching" for the run
// and lands on "ready" when anything was found; items already listed
// or sold keep their status. onChange fires after each state the UI
// should repaint for.
func RunResearch(ctx context.Context, db *sql.DB, s types.Searcher, item domain.Item, onChange func()) (types.Outcome, error) {
	lifecycle := item.Status == domain.StatusDraft ||
		item.Status == domain.StatusResearching ||
		item.Status == domain.StatusReady

	if lifecycle && item.Status != domain.StatusResearching {
		if err := store.UpdateItemStatus(ctx, db, item.ID, domain.StatusResearching); err != nil {
			return types.Outcome{}, err
		}
		notify(onChange)
	}

	sctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	log.Printf("[%s] Running... item=%d query=%q", s.Name(), item.ID, item.Title)
	listings, err := s.Search(sctx, item.Title)
	if err != nil {
		log.Printf("[%s] error: item=%d err=%v", s.Name(), item.ID, err)
		if lifecycle {
			// roll the status back so a failed run doesn't strand the item
			_ = store.UpdateItemStatus(ctx, db, item.ID, item.Status)
			notify(onChange)
		}
		return types.Outcome{Status: types.OutcomeFetchFailed}, err
	}

	if len(listings) == 0 {
		log.Printf("[%s] item=%d no matches", s.Name(), item.ID)
		if lifecycle {
			_ = store.UpdateItemStatus(ctx, db, item.ID, item.Status)
			notify(onChange)
		}
		return types.Outcome{Status: types.OutcomeEmpty}, nil
	}

	added, updated, err := ProcessListings(ctx, db, item.ID, listings)
	if err != nil {
		if lifecycle {
			_ = store.UpdateItemStatus(ctx, db, item.ID, item.Status)
			notify(onChange)
		}
		return types.Outcome{Status: types.OutcomeFetchFailed}, err
	}

	if lifecycle {
		if err := store.UpdateItemStatus(ctx, db, item.ID, domain.StatusReady); err != nil {
			return types.Outcome{}, err
		}
	}
	notify(onChange)

	return types.Outcome{Status: types.OutcomeFound, Added: added, Updated: updated}, nil
}

// RunBulkResearch runs research for every given item with a bounded
// number of concurrent searches. Per-item failures are collected, not
// fatal; the shared searcher's pacer keeps the site contact polite
// even across goroutines.
func RunBulkResearch(ctx context.Context, db *sql.DB, s types.Searcher, items []domain.Item, limit int, onChange func()) map[int64]types.Outcome {
	if limit <= 0 {
		limit = 2
	}

	var mu sync.Mutex
	results := make(map[int64]types.Outcome, len(items))

	var g errgroup.Group
	g.SetLimit(limit)

	for _, item := range items {
		item := item
		g.Go(func() error {
			out, err := RunResearch(ctx, db, s, item, onChange)
			if err != nil {
				log.Printf("[research] item=%d err=%v", item.ID, err)
			}
			mu.Lock()
			results[item.ID] = out
			mu.Unlock()
			return nil // best-effort: don't cancel siblings
		})
	}
	_ = g.Wait()

	return results
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
