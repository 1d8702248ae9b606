package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/scrape/util"
)

// SourceRecord is the persisted, enriched form of a scraped listing,
// attached to one item. (item_id, url) is unique.
type SourceRecord struct {
	ID           int64     `json:"id"`
	ItemID       int64     `json:"item_id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Price        *float64  `json:"price"`
	Location     string    `json:"location,omitempty"`
	PostedDate   string    `json:"posted_date,omitempty"`
	Description  string    `json:"description,omitempty"`
	Condition    string    `json:"condition,omitempty"`
	Measurements string    `json:"measurements,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

func SourceFromListing(itemID int64, l domain.Listing) SourceRecord {
	return SourceRecord{
		ItemID:       itemID,
		URL:          util.CanonicalizeURL(l.URL),
		Title:        l.Title,
		Price:        l.Price,
		Location:     l.Location,
		PostedDate:   l.PostedDate,
		Description:  l.Description,
		Condition:    l.Condition,
		Measurements: l.Measurements,
		ImageURL:     l.ImageURL,
		ScrapedAt:    time.Now().UTC(),
	}
}

const upsertSourceSQL = `
INSERT INTO sources (item_id, url, title, price, location, posted_date, description, condition, measurements, image_url, scraped_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(item_id, url) DO UPDATE SET
  title = excluded.title,
  price = excluded.price,
  location = excluded.location,
  posted_date = excluded.posted_date,
  description = excluded.description,
  condition = excluded.condition,
  measurements = excluded.measurements,
  image_url = excluded.image_url,
  scraped_at = excluded.scraped_at;`

func upsertSourceTx(ctx context.Context, tx *sql.Tx, rec SourceRecord) (added bool, err error) {
	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM sources WHERE item_id = ? AND url = ? LIMIT 1;`,
		rec.ItemID, rec.URL,
	).Scan(&one)
	exists := err == nil
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}

	_, err = tx.ExecContext(ctx, upsertSourceSQL,
		rec.ItemID, rec.URL, rec.Title, rec.Price, rec.Location, rec.PostedDate,
		rec.Description, rec.Condition, rec.Measurements, rec.ImageURL,
		rec.ScrapedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert source: %w", err)
	}
	return !exists, nil
}

// UpsertSource writes a single source record and recomputes the item's
// derived pricing in the same transaction.
func UpsertSource(ctx context.Context, db *sql.DB, rec SourceRecord) (added bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	added, err = upsertSourceTx(ctx, tx, rec)
	if err != nil {
		return false, err
	}
	if err := recomputePricing(ctx, tx, rec.ItemID); err != nil {
		return false, err
	}
	return added, tx.Commit()
}

// UpsertSources writes a whole scrape's worth of records for one item
// as a single mutation: all upserts, then one recompute, one commit.
func UpsertSources(ctx context.Context, db *sql.DB, itemID int64, recs []SourceRecord) (added, updated int, err error) {
	if len(recs) == 0 {
		return 0, 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range recs {
		rec.ItemID = itemID
		isNew, uerr := upsertSourceTx(ctx, tx, rec)
		if uerr != nil {
			return 0, 0, uerr
		}
		if isNew {
			added++
		} else {
			updated++
		}
	}

	if err := recomputePricing(ctx, tx, itemID); err != nil {
		return 0, 0, err
	}
	return added, updated, tx.Commit()
}

// DeleteSource removes one source and recomputes pricing. Deleting a
// source that does not exist reports ErrNotFound.
func DeleteSource(ctx context.Context, db *sql.DB, itemID, sourceID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM sources WHERE id = ? AND item_id = ?;`, sourceID, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := recomputePricing(ctx, tx, itemID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteAllSources removes every source for an item and clears or
// recomputes pricing accordingly.
func DeleteAllSources(ctx context.Context, db *sql.DB, itemID int64) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE item_id = ?;`, itemID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if err := recomputePricing(ctx, tx, itemID); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func ListSources(ctx context.Context, db *sql.DB, itemID int64) ([]SourceRecord, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, item_id, url, title, price, location, posted_date, description, condition, measurements, image_url, scraped_at
FROM sources
WHERE item_id = ?
ORDER BY scraped_at DESC, id DESC;`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceRecord
	for rows.Next() {
		var rec SourceRecord
		var price sql.NullFloat64
		var scrapedAt string
		if err := rows.Scan(
			&rec.ID, &rec.ItemID, &rec.URL, &rec.Title, &price,
			&rec.Location, &rec.PostedDate, &rec.Description,
			&rec.Condition, &rec.Measurements, &rec.ImageURL, &scrapedAt,
		); err != nil {
			return nil, err
		}
		if price.Valid {
			v := price.Float64
			rec.Price = &v
		}
		rec.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
