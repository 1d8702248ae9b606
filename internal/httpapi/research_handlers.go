package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/scrape/types"
	"pricescout-engine/internal/store"
)

type ResearchHandler struct {
	DB             *sql.DB
	CfgVal         *atomic.Value // config.Config
	ResearchStatus *atomic.Value // types.ResearchStatus
	Hub            *events.Hub

	// single-flight gate; the status value alone is not enough because
	// two requests can both load Running == false before either stores
	running *atomic.Bool

	NewSearcher func(cfg config.Config) types.Searcher
	RunResearch func(ctx context.Context, db *sql.DB, s types.Searcher, item domain.Item, onChange func()) (types.Outcome, error)
	RunBulk     func(ctx context.Context, db *sql.DB, s types.Searcher, items []domain.Item, limit int, onChange func()) map[int64]types.Outcome
}

func (h ResearchHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.ResearchStatus.Load().(types.ResearchStatus)
	writeJSON(w, st)
}

// runOne starts a search for one item in the background. A second
// request while a run is in flight gets a 409.
func (h ResearchHandler) runOne(itemID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := store.GetItem(r.Context(), h.DB, itemID)
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		if !h.begin() {
			WriteError(w, r, http.StatusConflict, "already_running", "a research run is already in flight")
			return
		}

		reqID := RequestIDFrom(r.Context())
		go func() {
			cfg := h.CfgVal.Load().(config.Config)
			s := h.NewSearcher(cfg)

			out, err := h.RunResearch(context.Background(), h.DB, s, item, func() {
				h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourcesUpdated, 1,
					map[string]any{"item_id": item.ID}))
			})
			h.finish(out, err)
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeResearchDone, 1,
				map[string]any{"item_id": item.ID, "outcome": out}))
		}()

		WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "id": itemID})
	}
}

// RunAll researches every draft and ready item.
func (h ResearchHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB, "")
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	var targets []domain.Item
	for _, it := range items {
		if it.Status == domain.StatusDraft || it.Status == domain.StatusReady {
			targets = append(targets, it)
		}
	}
	if len(targets) == 0 {
		writeJSON(w, map[string]any{"ok": true, "queued": 0})
		return
	}

	if !h.begin() {
		WriteError(w, r, http.StatusConflict, "already_running", "a research run is already in flight")
		return
	}

	reqID := RequestIDFrom(r.Context())
	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		s := h.NewSearcher(cfg)

		results := h.RunBulk(context.Background(), h.DB, s, targets, cfg.Scrape.BulkConcurrency, func() {
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourcesUpdated, 1, nil))
		})

		added := 0
		outcome := types.OutcomeEmpty
		for _, out := range results {
			added += out.Added
			if out.Status == types.OutcomeFound {
				outcome = types.OutcomeFound
			}
		}
		h.finish(types.Outcome{Status: outcome, Added: added}, nil)
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeResearchDone, 1,
			map[string]any{"items": len(targets), "added": added}))
	}()

	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "queued": len(targets)})
}

func (h ResearchHandler) begin() bool {
	if !h.running.CompareAndSwap(false, true) {
		return false
	}
	st := h.ResearchStatus.Load().(types.ResearchStatus)
	h.ResearchStatus.Store(types.ResearchStatus{
		LastRunAt:   time.Now().Format(time.RFC3339),
		LastOkAt:    st.LastOkAt,
		Running:     true,
		LastOutcome: st.LastOutcome,
	})
	return true
}

func (h ResearchHandler) finish(out types.Outcome, err error) {
	now := time.Now().Format(time.RFC3339)
	next := h.ResearchStatus.Load().(types.ResearchStatus)
	next.Running = false
	next.LastRunAt = now
	next.LastAdded = out.Added
	next.LastOutcome = string(out.Status)
	if err != nil {
		next.LastError = err.Error()
	} else {
		next.LastError = ""
		next.LastOkAt = now
	}
	h.ResearchStatus.Store(next)
	h.running.Store(false)
}
