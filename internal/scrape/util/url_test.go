package util

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteURL(t *testing.T) {
	base, _ := url.Parse("https://vermont.craigslist.org")

	assert.Equal(t,
		"https://vermont.craigslist.org/d/sofa/123.html",
		AbsoluteURL(base, "/d/sofa/123.html"))

	// absolute hrefs pass through
	assert.Equal(t,
		"https://boston.craigslist.org/d/chair/9.html",
		AbsoluteURL(base, "https://boston.craigslist.org/d/chair/9.html"))

	assert.Equal(t, "", AbsoluteURL(base, "  "))
}

func TestCanonicalizeURL(t *testing.T) {
	assert.Equal(t,
		"https://vermont.craigslist.org/d/sofa/123.html",
		CanonicalizeURL("HTTPS://Vermont.Craigslist.ORG/d/sofa/123.html#gallery"))

	// tracking params dropped, remaining query sorted
	assert.Equal(t,
		"https://x.org/p?a=1&b=2",
		CanonicalizeURL("https://x.org/p?utm_source=feed&b=2&a=1&gclid=abc"))

	// two spellings of the same listing collapse to one key
	a := CanonicalizeURL("https://x.org/l/5.html?utm_campaign=z")
	b := CanonicalizeURL("https://X.ORG/l/5.html#photo")
	assert.Equal(t, a, b)
}
