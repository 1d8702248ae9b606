package httpapi

import (
	"database/sql"
	"errors"
	"net/http"

	"pricescout-engine/internal/report"
	"pricescout-engine/internal/store"
)

type ChartHandler struct {
	DB *sql.DB
}

func (h ChartHandler) render(itemID int64) http.HandlerFunc {
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

		sources, err := store.ListSources(r.Context(), h.DB, itemID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		agg, err := store.ItemPriceAggregate(r.Context(), h.DB, itemID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.RenderPriceChart(w, item.Title, sources, agg); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "chart_error", err.Error())
		}
	}
}
