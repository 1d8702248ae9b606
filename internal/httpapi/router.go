package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"pricescout-engine/internal/scrape/types"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token)
// and the static upload file server.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	ih := ItemsHandler{DB: d.DB, Hub: d.Hub}
	srch := SourcesHandler{DB: d.DB, Hub: d.Hub}
	running := new(atomic.Bool)
	if st, ok := d.ResearchStatus.Load().(types.ResearchStatus); ok {
		running.Store(st.Running)
	}
	rh := ResearchHandler{
		DB:             d.DB,
		CfgVal:         d.CfgVal,
		ResearchStatus: d.ResearchStatus,
		Hub:            d.Hub,
		running:        running,
		NewSearcher:    d.NewSearcher,
		RunResearch:    d.RunResearch,
		RunBulk:        d.RunBulk,
	}
	uh := UploadsHandler{DB: d.DB, Hub: d.Hub, CfgVal: d.CfgVal, UploadDir: d.UploadDir}
	chh := ChartHandler{DB: d.DB}

	mux.HandleFunc("/items", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ih.List,
		http.MethodPost: ih.Create,
	}))
	mux.HandleFunc("/items/", itemsSubtree(ih, srch, rh, uh, chh))

	mux.HandleFunc("/research/run-all", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.RunAll,
	}))
	mux.HandleFunc("/research/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	// Tracker
	th := TrackerHandler{Tracker: d.Tracker, CfgVal: d.CfgVal}
	mux.HandleFunc("/tracker/issues", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Search,
	}))
	mux.HandleFunc("/tracker/issues/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.GetByPath, // expects /tracker/issues/{key}
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/tracker", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetTrackerToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", dbh.Checkpoint)

	return mux
}

// itemsSubtree dispatches /items/{id} and its child routes. ServeMux
// patterns can't express the two-level paths, so this peels them by hand.
func itemsSubtree(ih ItemsHandler, srch SourcesHandler, rh ResearchHandler, uh UploadsHandler, chh ChartHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/items/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")

		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid item id")
			return
		}

		switch {
		case len(parts) == 1:
			methodMux(map[string]http.HandlerFunc{
				http.MethodGet:    ih.get(id),
				http.MethodDelete: ih.delete(id),
			})(w, r)
		case len(parts) == 2 && parts[1] == "status":
			methodMux(map[string]http.HandlerFunc{
				http.MethodPatch: ih.setStatus(id),
				http.MethodPost:  ih.setStatus(id),
			})(w, r)
		case len(parts) == 2 && parts[1] == "sources":
			methodMux(map[string]http.HandlerFunc{
				http.MethodGet:    srch.list(id),
				http.MethodDelete: srch.deleteAll(id),
			})(w, r)
		case len(parts) == 3 && parts[1] == "sources":
			sid, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil || sid <= 0 {
				WriteError(w, r, http.StatusBadRequest, "bad_id", "invalid source id")
				return
			}
			methodMux(map[string]http.HandlerFunc{
				http.MethodDelete: srch.deleteOne(id, sid),
			})(w, r)
		case len(parts) == 2 && parts[1] == "research":
			methodMux(map[string]http.HandlerFunc{
				http.MethodPost: rh.runOne(id),
			})(w, r)
		case len(parts) == 2 && parts[1] == "images":
			methodMux(map[string]http.HandlerFunc{
				http.MethodPost: uh.upload(id),
			})(w, r)
		case len(parts) == 2 && parts[1] == "chart":
			methodMux(map[string]http.HandlerFunc{
				http.MethodGet: chh.render(id),
			})(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}
