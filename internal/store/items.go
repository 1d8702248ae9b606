package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pricescout-engine/internal/domain"
)

const itemColumns = `id, tracker_issue_key, title, description, category, condition, measurements,
image_paths, price_min, price_max, suggested_price, status, created_at, updated_at, listed_at, sold_at`

func CreateItem(ctx context.Context, db *sql.DB, it domain.Item) (int64, error) {
	if it.Title == "" {
		return 0, fmt.Errorf("create item: missing title")
	}
	if it.Status == "" {
		it.Status = domain.StatusDraft
	}
	if !it.Status.Valid() {
		return 0, fmt.Errorf("create item: invalid status %q", it.Status)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	pathsB, _ := json.Marshal(it.ImagePaths)
	if it.ImagePaths == nil {
		pathsB = []byte("[]")
	}

	res, err := db.ExecContext(ctx, `
INSERT INTO items (tracker_issue_key, title, description, category, condition, measurements, image_paths, status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?);`,
		it.TrackerIssueKey, it.Title, it.Description, it.Category,
		it.Condition, it.Measurements, string(pathsB), string(it.Status), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return res.LastInsertId()
}

func GetItem(ctx context.Context, db *sql.DB, id int64) (domain.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?;`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return domain.Item{}, ErrNotFound
	}
	return it, err
}

// ListItems returns items newest first, optionally filtered by status
// ("" or "all" disables the filter).
func ListItems(ctx context.Context, db *sql.DB, status string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC, id DESC;`
	args := []any{}
	if status != "" && status != "all" {
		query = `SELECT ` + itemColumns + ` FROM items WHERE status = ? ORDER BY created_at DESC, id DESC;`
		args = append(args, status)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func StatusCounts(ctx context.Context, db *sql.DB) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM items GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// UpdateItemStatus moves an item through its lifecycle. Entering
// "listed" or "sold" stamps the matching timestamp.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, status domain.ItemStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `UPDATE items SET status = ?, updated_at = ? WHERE id = ?;`
	args := []any{string(status), now, id}
	switch status {
	case domain.StatusListed:
		query = `UPDATE items SET status = ?, updated_at = ?, listed_at = ? WHERE id = ?;`
		args = []any{string(status), now, now, id}
	case domain.StatusSold:
		query = `UPDATE items SET status = ?, updated_at = ?, sold_at = ? WHERE id = ?;`
		args = []any{string(status), now, now, id}
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes an item; its sources go with it via the FK
// cascade, so no recompute is needed.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendImagePaths adds stored upload paths to an item.
func AppendImagePaths(ctx context.Context, db *sql.DB, id int64, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	it, err := GetItem(ctx, db, id)
	if err != nil {
		return err
	}
	merged := append(it.ImagePaths, paths...)
	b, _ := json.Marshal(merged)
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx,
		`UPDATE items SET image_paths = ?, updated_at = ? WHERE id = ?;`,
		string(b), now, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.Item, error) {
	var it domain.Item
	var pathsJSON, status, createdAt, updatedAt string
	var priceMin, priceMax, suggested sql.NullFloat64
	var listedAt, soldAt sql.NullString

	if err := row.Scan(
		&it.ID, &it.TrackerIssueKey, &it.Title, &it.Description, &it.Category,
		&it.Condition, &it.Measurements, &pathsJSON,
		&priceMin, &priceMax, &suggested, &status,
		&createdAt, &updatedAt, &listedAt, &soldAt,
	); err != nil {
		return domain.Item{}, err
	}

	_ = json.Unmarshal([]byte(pathsJSON), &it.ImagePaths)
	if it.ImagePaths == nil {
		it.ImagePaths = []string{}
	}
	if priceMin.Valid {
		v := priceMin.Float64
		it.PriceMin = &v
	}
	if priceMax.Valid {
		v := priceMax.Float64
		it.PriceMax = &v
	}
	if suggested.Valid {
		v := suggested.Float64
		it.SuggestedPrice = &v
	}
	it.Status = domain.ItemStatus(status)
	it.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if listedAt.Valid && listedAt.String != "" {
		t, _ := time.Parse(time.RFC3339, listedAt.String)
		it.ListedAt = &t
	}
	if soldAt.Valid && soldAt.String != "" {
		t, _ := time.Parse(time.RFC3339, soldAt.String)
		it.SoldAt = &t
	}
	return it, nil
}
