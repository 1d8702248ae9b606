package craigslist

import (
	"regexp"
	"strings"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/scrape/selector"
	"pricescout-engine/internal/scrape/util"
)

// Fallback chains for every scraped field, ordered newest markup first.
// New site layouts get a new entry here, not new control flow.

// Result rows: new gallery view, then the legacy row markup, then any
// li whose class still smells like a result.
var resultChain = []selector.ElementStrategy{
	selector.All("gallery", "li.cl-static-search-result"),
	selector.All("legacy-row", "li.result-row"),
	selector.All("generic", "li[class*='result']"),
}

var linkChain = []selector.ElementStrategy{
	selector.First("posting-title", "a.posting-title"),
	selector.First("titlestring", "a.titlestring"),
	selector.First("detail-link", `a[href*="/d/"]`),
	selector.First("any-anchor", "a"),
}

// Title fallbacks for rows where the anchor carries no text.
var titleChain = []selector.Strategy{
	selector.Text("label", "span.label"),
	selector.Text("title-div", "div.title"),
	selector.Text("heading", "h3"),
}

var priceChain = []selector.Strategy{
	selector.Text("priceinfo", "span.priceinfo"),
	selector.Text("price", "span.price"),
	selector.Text("price-class", `[class*="price"]`),
}

var locationChain = []selector.Strategy{
	selector.Text("meta", "span.meta"),
	selector.Text("location-div", "div.location"),
	selector.Text("location-class", `[class*="location"]`),
}

var dateChain = []selector.Strategy{
	selector.Attr("time-datetime", "time", "datetime"),
	selector.Text("time-text", "time"),
	selector.Text("date-span", "span.date"),
	selector.Attr("datetime-attr", "[datetime]", "datetime"),
}

// First gallery image: dedicated first-slide container, any slide, the
// gallery, and finally anything served from the site's image CDN.
var imageChain = []selector.Strategy{
	selector.Attr("first-slide", "div.slide.first.visible img", "src"),
	selector.Attr("any-slide", "div.slide img", "src"),
	selector.Attr("gallery-img", ".gallery img", "src"),
	selector.Attr("cdn-img", `img[src*="images.craigslist.org"]`, "src"),
}

var conditionRe = regexp.MustCompile(`(?i)condition:\s*(\w+)`)

// attrRule scans the short attribute-group text blocks on a detail page
// for loosely labeled fields. Keywords gate the rule, capture pulls the
// value (nil keeps the whole block verbatim).
type attrRule struct {
	keywords []string
	capture  *regexp.Regexp
	apply    func(*domain.Detail, string)
}

var attrRules = []attrRule{
	{
		keywords: []string{"condition:"},
		capture:  conditionRe,
		apply: func(d *domain.Detail, v string) {
			d.Condition = util.TitleCase(v)
		},
	},
	{
		keywords: []string{"dimension", "size", "measurement", `"`, "inches", "feet", "cm", "mm"},
		apply: func(d *domain.Detail, v string) {
			d.Measurements = v
		},
	},
}

func applyAttrRules(d *domain.Detail, block string) {
	if block == "" {
		return
	}
	low := strings.ToLower(block)
	for _, r := range attrRules {
		for _, kw := range r.keywords {
			if !strings.Contains(low, kw) {
				continue
			}
			v := block
			if r.capture != nil {
				m := r.capture.FindStringSubmatch(block)
				if m == nil {
					break
				}
				v = m[1]
			}
			r.apply(d, v)
			break
		}
	}
}
