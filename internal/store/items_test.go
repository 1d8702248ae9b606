package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricescout-engine/internal/domain"
)

func TestCreateAndGetItem(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	id, err := CreateItem(ctx, db.Pool, domain.Item{
		Title:        "Mid-century dresser",
		Category:     "furniture",
		Condition:    "Good",
		Measurements: `60" x 18" x 30"`,
	})
	require.NoError(t, err)

	item, err := GetItem(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, "Mid-century dresser", item.Title)
	assert.Equal(t, domain.StatusDraft, item.Status)
	assert.Empty(t, item.ImagePaths)
	assert.Nil(t, item.SuggestedPrice)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestCreateItemRequiresTitle(t *testing.T) {
	db := testDB(t)
	_, err := CreateItem(context.Background(), db.Pool, domain.Item{})
	assert.Error(t, err)
}

func TestGetItemNotFound(t *testing.T) {
	db := testDB(t)
	_, err := GetItem(context.Background(), db.Pool, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListItemsStatusFilter(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)

	a := newTestItem(t, db, "a")
	newTestItem(t, db, "b")
	require.NoError(t, UpdateItemStatus(ctx, db.Pool, a, domain.StatusListed))

	all, err := ListItems(ctx, db.Pool, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	listed, err := ListItems(ctx, db.Pool, "listed")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, a, listed[0].ID)

	counts, err := StatusCounts(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["draft"])
	assert.Equal(t, 1, counts["listed"])
}

func TestUpdateItemStatusStampsLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	id := newTestItem(t, db, "chair")

	require.NoError(t, UpdateItemStatus(ctx, db.Pool, id, domain.StatusListed))
	item, err := GetItem(ctx, db.Pool, id)
	require.NoError(t, err)
	require.NotNil(t, item.ListedAt)
	assert.Nil(t, item.SoldAt)

	require.NoError(t, UpdateItemStatus(ctx, db.Pool, id, domain.StatusSold))
	item, err = GetItem(ctx, db.Pool, id)
	require.NoError(t, err)
	require.NotNil(t, item.SoldAt)
}

func TestUpdateItemStatusRejectsUnknown(t *testing.T) {
	db := testDB(t)
	id := newTestItem(t, db, "x")
	err := UpdateItemStatus(context.Background(), db.Pool, id, domain.ItemStatus("archived"))
	assert.Error(t, err)
}

func TestDeleteItemCascadesSources(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	id := newTestItem(t, db, "bike")

	_, err := UpsertSource(ctx, db.Pool, rec(id, "https://x.org/d/1.html", fp(10)))
	require.NoError(t, err)

	require.NoError(t, DeleteItem(ctx, db.Pool, id))

	var n int
	require.NoError(t, db.Pool.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources WHERE item_id = ?;`, id).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, DeleteItem(ctx, db.Pool, id), ErrNotFound)
}

func TestAppendImagePaths(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	id := newTestItem(t, db, "sofa")

	require.NoError(t, AppendImagePaths(ctx, db.Pool, id, []string{"uploads/1.jpg"}))
	require.NoError(t, AppendImagePaths(ctx, db.Pool, id, []string{"uploads/2.jpg", "uploads/3.jpg"}))
	require.NoError(t, AppendImagePaths(ctx, db.Pool, id, nil))

	item, err := GetItem(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/1.jpg", "uploads/2.jpg", "uploads/3.jpg"}, item.ImagePaths)
}
