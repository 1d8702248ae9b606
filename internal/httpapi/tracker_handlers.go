package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/tracker"
)

type TrackerHandler struct {
	Tracker *tracker.Client
	CfgVal  *atomic.Value // config.Config
}

func (h TrackerHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.Tracker.Configured() {
		WriteError(w, r, http.StatusServiceUnavailable, "tracker_unconfigured",
			"set tracker.site_url and tracker.email in config first")
		return
	}

	jql := strings.TrimSpace(r.URL.Query().Get("jql"))
	if jql == "" {
		cfg := h.CfgVal.Load().(config.Config)
		jql = cfg.Tracker.DefaultJQL
	}
	if jql == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_jql", "jql query parameter is required")
		return
	}

	issues, err := h.Tracker.SearchIssues(r.Context(), jql, 25)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "tracker_error", err.Error())
		return
	}
	if issues == nil {
		issues = []tracker.Issue{}
	}
	writeJSON(w, map[string]any{"issues": issues})
}

func (h TrackerHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	if !h.Tracker.Configured() {
		WriteError(w, r, http.StatusServiceUnavailable, "tracker_unconfigured",
			"set tracker.site_url and tracker.email in config first")
		return
	}

	key := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/tracker/issues/"))
	if key == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_key", "issue key is required")
		return
	}

	issue, err := h.Tracker.GetIssue(r.Context(), key)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "tracker_error", err.Error())
		return
	}
	writeJSON(w, issue)
}
