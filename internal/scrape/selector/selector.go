// Package selector implements cascading extraction strategies over a
// parsed page. The target site reshuffles its class names over time and
// across result-view modes, so every scraped field is defined as a
// ranked list of fallback locators instead of a single fixed path.
package selector

import (
	"github.com/PuerkitoBio/goquery"

	"pricescout-engine/internal/scrape/util"
)

// Strategy is one ranked way of extracting a field's string value from
// an element. Extract returning "" means "no match"; so does a panic.
type Strategy struct {
	Name    string
	Extract func(*goquery.Selection) string
}

// ElementStrategy locates a node (or node set) rather than a string,
// for fields where the caller needs the element itself, like the
// listing anchor (href + text) or the result rows.
type ElementStrategy struct {
	Name   string
	Locate func(*goquery.Selection) *goquery.Selection
}

// Resolve evaluates strategies in order and returns the first non-empty
// cleaned extraction. A failing strategy never aborts the field; it
// falls through to the next one.
func Resolve(sel *goquery.Selection, chain []Strategy) (string, bool) {
	for _, st := range chain {
		if v := tryExtract(st, sel); v != "" {
			return v, true
		}
	}
	return "", false
}

// ResolveElement returns the first strategy's match with at least one
// node, or nil when the whole chain misses.
func ResolveElement(sel *goquery.Selection, chain []ElementStrategy) *goquery.Selection {
	for _, st := range chain {
		if m := tryLocate(st, sel); m != nil && m.Length() > 0 {
			return m
		}
	}
	return nil
}

func tryExtract(st Strategy, sel *goquery.Selection) (v string) {
	defer func() {
		if recover() != nil {
			v = ""
		}
	}()
	return util.CleanText(st.Extract(sel))
}

func tryLocate(st ElementStrategy, sel *goquery.Selection) (m *goquery.Selection) {
	defer func() {
		if recover() != nil {
			m = nil
		}
	}()
	return st.Locate(sel)
}

// Text extracts the text of the first node matching query.
func Text(name, query string) Strategy {
	return Strategy{Name: name, Extract: func(s *goquery.Selection) string {
		return s.Find(query).First().Text()
	}}
}

// Attr extracts an attribute of the first node matching query.
func Attr(name, query, attr string) Strategy {
	return Strategy{Name: name, Extract: func(s *goquery.Selection) string {
		return s.Find(query).First().AttrOr(attr, "")
	}}
}

// First locates the first node matching query.
func First(name, query string) ElementStrategy {
	return ElementStrategy{Name: name, Locate: func(s *goquery.Selection) *goquery.Selection {
		return s.Find(query).First()
	}}
}

// All locates every node matching query.
func All(name, query string) ElementStrategy {
	return ElementStrategy{Name: name, Locate: func(s *goquery.Selection) *goquery.Selection {
		return s.Find(query)
	}}
}
