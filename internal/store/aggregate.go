package store

import (
	"context"
	"database/sql"
	"math"
	"time"
)

// PriceAggregate summarizes the non-null prices across an item's
// sources. The recompute step is defined purely in terms of this query.
type PriceAggregate struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func priceAggregate(ctx context.Context, q rowQueryer, itemID int64) (PriceAggregate, error) {
	var agg PriceAggregate
	err := q.QueryRowContext(ctx, `
SELECT COUNT(price), COALESCE(MIN(price), 0), COALESCE(MAX(price), 0), COALESCE(AVG(price), 0)
FROM sources
WHERE item_id = ? AND price IS NOT NULL;`, itemID).
		Scan(&agg.Count, &agg.Min, &agg.Max, &agg.Avg)
	return agg, err
}

// Round2 rounds to 2 decimal places, the rule for suggested_price.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// recomputePricing overwrites the item's three derived price fields
// from the current source set. Zero priced sources clears them to NULL.
// Runs inside the same transaction as the source mutation that
// triggered it.
func recomputePricing(ctx context.Context, tx *sql.Tx, itemID int64) error {
	agg, err := priceAggregate(ctx, tx, itemID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if agg.Count == 0 {
		_, err = tx.ExecContext(ctx, `
UPDATE items
SET price_min = NULL, price_max = NULL, suggested_price = NULL, updated_at = ?
WHERE id = ?;`, now, itemID)
		return err
	}

	_, err = tx.ExecContext(ctx, `
UPDATE items
SET price_min = ?, price_max = ?, suggested_price = ?, updated_at = ?
WHERE id = ?;`, agg.Min, agg.Max, Round2(agg.Avg), now, itemID)
	return err
}

// ItemPriceAggregate exposes the aggregate for reporting.
func ItemPriceAggregate(ctx context.Context, db *sql.DB, itemID int64) (PriceAggregate, error) {
	return priceAggregate(ctx, db, itemID)
}

// RecomputeItemPricing re-derives pricing outside a source mutation,
// e.g. after a manual DB repair.
func RecomputeItemPricing(ctx context.Context, db *sql.DB, itemID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := recomputePricing(ctx, tx, itemID); err != nil {
		return err
	}
	return tx.Commit()
}
