// Package craigslist scrapes a family of regional classifieds mirrors
// for listings comparable to an item we want to price.
package craigslist

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/scrape/selector"
	"pricescout-engine/internal/scrape/util"
)

// Regions maps a region name to its site mirror. Config can override or
// extend this set.
var Regions = map[string]string{
	"vermont":      "https://vermont.craigslist.org",
	"newhampshire": "https://nh.craigslist.org",
	"boston":       "https://boston.craigslist.org",
}

const (
	DefaultRegion     = "vermont"
	DefaultMaxResults = 10

	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	Region     string
	MaxResults int
	// BaseURLs overrides the compiled-in Regions table when non-nil.
	BaseURLs map[string]string
}

// Scraper fetches a search-results page, parses each result row, and
// enriches every retained candidate from its own detail page. All
// fetches within one Search are sequential; the shared pacer bounds the
// request rate per host even across concurrent Search calls.
type Scraper struct {
	base       *url.URL
	maxResults int
	hc         *http.Client
	pacer      *util.HostPacer
}

func New(cfg Config, hc *http.Client, pacer *util.HostPacer) *Scraper {
	urls := cfg.BaseURLs
	if urls == nil {
		urls = Regions
	}
	raw, ok := urls[cfg.Region]
	if !ok {
		raw = urls[DefaultRegion]
	}
	if raw == "" {
		raw = Regions[DefaultRegion]
	}
	base, _ := url.Parse(raw)

	max := cfg.MaxResults
	if max <= 0 {
		max = DefaultMaxResults
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	return &Scraper{base: base, maxResults: max, hc: hc, pacer: pacer}
}

func (s *Scraper) Name() string { return "craigslist" }

func (s *Scraper) BaseURL() string { return s.base.String() }

// Search runs the full sequence: one search-page fetch, then one detail
// fetch per retained candidate, strictly in order. It returns a nil
// error with no listings when the site had no matches; a non-nil error
// marks a failed primary fetch or parse so callers can tell the two
// apart.
func (s *Scraper) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	searchURL := fmt.Sprintf("%s/search/sss?query=%s&sort=rel", s.base, url.QueryEscape(query))
	log.Printf("[craigslist] search url=%s", searchURL)

	doc, err := s.getDoc(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search fetch: %w", err)
	}

	items := selector.ResolveElement(doc.Selection, resultChain)
	if items == nil {
		log.Printf("[craigslist] no result elements matched query=%q", query)
		return nil, nil
	}

	var out []domain.Listing
	dropped := 0
	items.EachWithBreak(func(i int, li *goquery.Selection) bool {
		if i >= s.maxResults {
			return false
		}
		lst, ok := s.parseListing(li)
		if !ok {
			dropped++
			return true
		}
		lst.Detail = s.fetchDetails(ctx, lst.URL)
		out = append(out, lst)
		return true
	})

	log.Printf("[craigslist] query=%q matched=%d parsed=%d dropped=%d",
		query, items.Length(), len(out), dropped)
	return out, nil
}

// parseListing turns one result row into a candidate. Rows with no
// resolvable link or title are dropped, not emitted with holes.
func (s *Scraper) parseListing(li *goquery.Selection) (domain.Listing, bool) {
	link := selector.ResolveElement(li, linkChain)
	if link == nil {
		return domain.Listing{}, false
	}
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return domain.Listing{}, false
	}
	abs := util.AbsoluteURL(s.base, href)
	if abs == "" {
		return domain.Listing{}, false
	}

	title := util.CleanText(link.Text())
	if title == "" {
		title, _ = selector.Resolve(li, titleChain)
	}
	if title == "" {
		return domain.Listing{}, false
	}

	lst := domain.Listing{Title: title, URL: abs}

	if txt, ok := selector.Resolve(li, priceChain); ok {
		if v, ok := util.ParsePrice(txt); ok {
			lst.Price = &v
		}
	}
	if loc, ok := selector.Resolve(li, locationChain); ok {
		lst.Location = loc
	}
	if d, ok := selector.Resolve(li, dateChain); ok {
		lst.PostedDate = d
	}
	return lst, true
}

func (s *Scraper) getDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if s.pacer != nil {
		if err := s.pacer.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	return goquery.NewDocumentFromReader(res.Body)
}
