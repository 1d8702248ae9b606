package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"pricescout-engine/internal/events"
	"pricescout-engine/internal/store"
)

type SourcesHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h SourcesHandler) list(itemID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.GetItem(r.Context(), h.DB, itemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
				return
			}
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		recs, err := store.ListSources(r.Context(), h.DB, itemID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		agg, err := store.ItemPriceAggregate(r.Context(), h.DB, itemID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		if recs == nil {
			recs = []store.SourceRecord{}
		}
		writeJSON(w, map[string]any{"sources": recs, "aggregate": agg})
	}
}

// deleteOne removes a single source; the item's pricing is recomputed
// from what is left in the same transaction.
func (h SourcesHandler) deleteOne(itemID, sourceID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteSource(r.Context(), h.DB, itemID, sourceID)
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "source not found")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourceDeleted, 1,
			map[string]any{"item_id": itemID, "source_id": sourceID}))
		writeJSON(w, map[string]any{"ok": true, "id": sourceID})
	}
}

func (h SourcesHandler) deleteAll(itemID int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.DeleteAllSources(r.Context(), h.DB, itemID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSourcesUpdated, 1,
			map[string]any{"item_id": itemID, "deleted": n}))
		writeJSON(w, map[string]any{"ok": true, "deleted": n})
	}
}
