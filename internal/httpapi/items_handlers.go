package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/events"
	"pricescout-engine/internal/store"
)

type ItemsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

type createItemReq struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Condition       string `json:"condition"`
	Measurements    string `json:"measurements"`
	TrackerIssueKey string `json:"tracker_issue_key"`
}

func (h ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != "all" && !domain.ItemStatus(status).Valid() {
		WriteError(w, r, http.StatusBadRequest, "bad_status", "unknown status filter")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, status)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	counts, err := store.StatusCounts(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	writeJSON(w, map[string]any{"items": items, "counts": counts})
}

func (h ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.Title == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_title", "title is required")
		return
	}

	id, err := store.CreateItem(r.Context(), h.DB, domain.Item{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Condition:       req.Condition,
		Measurements:    req.Measurements,
		TrackerIssueKey: req.TrackerIssueKey,
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeItemCreated, 1, map[string]any{"id": id}))
	WriteJSON(w, http.StatusCreated, item)
}

func (h ItemsHandler) get(id int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := store.GetItem(r.Context(), h.DB, id)
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		writeJSON(w, item)
	}
}

func (h ItemsHandler) delete(id int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteItem(r.Context(), h.DB, id)
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeItemDeleted, 1, map[string]any{"id": id}))
		writeJSON(w, map[string]any{"ok": true, "id": id})
	}
}

type setStatusReq struct {
	Status string `json:"status"`
}

func (h ItemsHandler) setStatus(id int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setStatusReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
		status := domain.ItemStatus(req.Status)
		if !status.Valid() {
			WriteError(w, r, http.StatusBadRequest, "bad_status", "unknown status")
			return
		}

		err := store.UpdateItemStatus(r.Context(), h.DB, id, status)
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "item not found")
			return
		}
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
			return
		}

		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeItemStatus, 1,
			map[string]any{"id": id, "status": string(status)}))
		writeJSON(w, map[string]any{"ok": true, "id": id, "status": string(status)})
	}
}
