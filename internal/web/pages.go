// Package web serves the minimal built-in HTML views. The JSON API is
// the real surface; these pages exist so the engine is usable from a
// bare browser.
package web

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pricescout-engine/internal/store"
)

type Handlers struct {
	DB *sql.DB
}

func (h Handlers) ItemsList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	fmt.Fprintln(w, "<html><body><h1>PriceScout</h1><p>(MVP list)</p><hr/>")
	for _, it := range items {
		price := "no price yet"
		if it.SuggestedPrice != nil {
			price = fmt.Sprintf("suggested=$%.2f ($%.2f–$%.2f)",
				*it.SuggestedPrice, deref(it.PriceMin), deref(it.PriceMax))
		}
		fmt.Fprintf(w,
			`<div style="margin:12px 0;">
			  <div><b>%s</b> — %s</div>
			  <div>%s · status=%s</div>
			  <div><a href="/view/items/%d">Details</a></div>
			</div><hr/>`,
			escape(it.Title), escape(it.Category),
			escape(price), escape(string(it.Status)),
			it.ID,
		)
	}
	fmt.Fprintln(w, "</body></html>")
}

func (h Handlers) ItemDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/view/items/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", 400)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	sources, err := store.ListSources(r.Context(), h.DB, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	fmt.Fprintf(w, "<html><body><h1>%s</h1><p>status=%s</p>",
		escape(item.Title), escape(string(item.Status)))
	if item.SuggestedPrice != nil {
		fmt.Fprintf(w, "<p><b>Suggested: $%.2f</b> (range $%.2f–$%.2f)</p>",
			*item.SuggestedPrice, deref(item.PriceMin), deref(item.PriceMax))
	}
	fmt.Fprintf(w, `<p><a href="/items/%d/chart">Price chart</a></p><hr/>`, item.ID)

	for _, s := range sources {
		price := "—"
		if s.Price != nil {
			price = fmt.Sprintf("$%.2f", *s.Price)
		}
		fmt.Fprintf(w,
			`<div style="margin:12px 0;">
			  <div><b>%s</b> · %s</div>
			  <div>%s · %s</div>
			  <div><a href="%s" target="_blank">Listing</a></div>
			</div><hr/>`,
			escape(s.Title), escape(price),
			escape(s.Location), escape(s.PostedDate),
			escapeAttr(s.URL),
		)
	}
	fmt.Fprintln(w, "</body></html>")
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func escape(s string) string {
	// small/cheap HTML escape for MVP
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
func escapeAttr(s string) string { return escape(s) }
