package craigslist

import (
	"context"
	"log"

	"github.com/PuerkitoBio/goquery"

	"pricescout-engine/internal/domain"
	"pricescout-engine/internal/scrape/selector"
	"pricescout-engine/internal/scrape/util"
)

// fetchDetails enriches a candidate from its own listing page. It never
// fails the caller: any network or parse error is logged and the
// candidate proceeds with an empty detail.
func (s *Scraper) fetchDetails(ctx context.Context, listingURL string) domain.Detail {
	var d domain.Detail

	doc, err := s.getDoc(ctx, listingURL)
	if err != nil {
		log.Printf("[craigslist] detail fetch failed url=%s err=%v", listingURL, err)
		return d
	}

	if body := doc.Find("section#postingbody").First(); body.Length() > 0 {
		// strip the "QR Code Link to This Post" boilerplate before
		// taking the text
		body.Find("div.print-qrcode-container").Remove()
		d.Description = util.CleanText(body.Text())
	}

	doc.Find("p.attrgroup span").Each(func(_ int, sp *goquery.Selection) {
		applyAttrRules(&d, util.CleanText(sp.Text()))
	})

	if src, ok := selector.Resolve(doc.Selection, imageChain); ok {
		d.ImageURL = src
	}

	return d
}
