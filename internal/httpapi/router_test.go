package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/scrape/types"
	"pricescout-engine/internal/store"
	"pricescout-engine/internal/tracker"
)

type stubSearcher struct{ listings []domain.Listing }

func (s stubSearcher) Name() string { return "stub" }
func (s stubSearcher) Search(ctx context.Context, q string) ([]domain.Listing, error) {
	return s.listings, nil
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	var cfgVal atomic.Value
	var cfg config.Config
	cfg.App.Port = 38471
	cfg.Scrape.MaxResults = 10
	cfgVal.Store(cfg)

	var status atomic.Value
	status.Store(types.ResearchStatus{})

	price := 42.0
	return Deps{
		DB:             db.Pool,
		Hub:            events.NewHub(),
		CfgVal:         &cfgVal,
		ResearchStatus: &status,
		UserCfgPath:    "config.yml",
		LoadCfg:        func() (config.Config, error) { return cfg, nil },
		Tracker:        tracker.New("", "", func() (string, error) { return "", nil }),
		UploadDir:      t.TempDir(),
		NewSearcher: func(cfg config.Config) types.Searcher {
			return stubSearcher{listings: []domain.Listing{
				{Title: "comp", URL: "https://x.org/d/1.html", Price: &price},
			}}
		},
		RunResearch: func(ctx context.Context, db *sql.DB, s types.Searcher, item domain.Item, onChange func()) (types.Outcome, error) {
			listings, _ := s.Search(ctx, item.Title)
			recs := make([]store.SourceRecord, 0, len(listings))
			for _, l := range listings {
				recs = append(recs, store.SourceFromListing(item.ID, l))
			}
			added, updated, err := store.UpsertSources(ctx, db, item.ID, recs)
			if err != nil {
				return types.Outcome{}, err
			}
			return types.Outcome{Status: types.OutcomeFound, Added: added, Updated: updated}, nil
		},
		RunBulk: func(ctx context.Context, db *sql.DB, s types.Searcher, items []domain.Item, limit int, onChange func()) map[int64]types.Outcome {
			return map[int64]types.Outcome{}
		},
	}
}

func createItem(t *testing.T, mux *http.ServeMux, title string) domain.Item {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"title": title})
	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func TestItemsCreateAndList(t *testing.T) {
	mux := NewMux(testDeps(t))

	item := createItem(t, mux, "oak dresser")
	assert.Equal(t, "oak dresser", item.Title)
	assert.Equal(t, domain.StatusDraft, item.Status)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items  []domain.Item  `json:"items"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Counts["draft"])
}

func TestItemsCreateRequiresTitle(t *testing.T) {
	mux := NewMux(testDeps(t))

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemStatusTransition(t *testing.T) {
	mux := NewMux(testDeps(t))
	item := createItem(t, mux, "bike")

	body := []byte(`{"status":"listed"}`)
	req := httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+itoa(item.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusListed, got.Status)
	assert.NotNil(t, got.ListedAt)
}

func TestItemStatusRejectsUnknown(t *testing.T) {
	mux := NewMux(testDeps(t))
	item := createItem(t, mux, "bike")

	req := httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/status", bytes.NewReader([]byte(`{"status":"archived"}`)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemNotFound(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResearchRunAndSources(t *testing.T) {
	mux := NewMux(testDeps(t))
	item := createItem(t, mux, "dresser")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/research", nil))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// the run is async; wait for the status to settle
	require.Eventually(t, func() bool {
		r := httptest.NewRecorder()
		mux.ServeHTTP(r, httptest.NewRequest(http.MethodGet, "/research/status", nil))
		var st types.ResearchStatus
		_ = json.Unmarshal(r.Body.Bytes(), &st)
		return !st.Running && st.LastRunAt != ""
	}, 2*time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/items/"+itoa(item.ID)+"/sources", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sources   []store.SourceRecord `json:"sources"`
		Aggregate store.PriceAggregate `json:"aggregate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, 1, resp.Aggregate.Count)
	assert.InDelta(t, 42, resp.Aggregate.Min, 0.001)
}

func TestResearchConflictWhileRunning(t *testing.T) {
	d := testDeps(t)
	d.ResearchStatus.Store(types.ResearchStatus{Running: true})
	mux := NewMux(d)
	item := createItem(t, mux, "dresser")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/items/"+itoa(item.ID)+"/research", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTrackerUnconfigured(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tracker/issues?jql=x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/items", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
