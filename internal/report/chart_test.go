package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricescout-engine/internal/store"
)

func fp(v float64) *float64 { return &v }

func TestRenderPriceChart(t *testing.T) {
	sources := []store.SourceRecord{
		{Title: "oak dresser six drawers", Price: fp(120)},
		{Title: "unpriced entry", Price: nil},
		{Title: "dresser with mirror", Price: fp(80)},
	}
	agg := store.PriceAggregate{Count: 2, Min: 80, Max: 120, Avg: 100}

	var buf bytes.Buffer
	require.NoError(t, RenderPriceChart(&buf, "oak dresser", sources, agg))

	out := buf.String()
	assert.Contains(t, out, "Comparable prices: oak dresser")
	assert.Contains(t, out, "2 priced listings")
	assert.Contains(t, out, "oak dresser six drawers")
	assert.Contains(t, out, "dresser with mirror")
	for _, mark := range []string{"Min", "Avg", "Max"} {
		assert.Contains(t, out, mark)
	}

	// sources without a price never reach the axis
	assert.NotContains(t, out, "unpriced entry")
}

func TestRenderPriceChartNoPricedSources(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPriceChart(&buf, "empty item",
		[]store.SourceRecord{{Title: "unpriced", Price: nil}},
		store.PriceAggregate{}))
	assert.Contains(t, buf.String(), "Comparable prices: empty item")
}

func TestRenderPriceChartTruncatesLabelsOnRunes(t *testing.T) {
	long := strings.Repeat("é", 40)
	var buf bytes.Buffer
	require.NoError(t, RenderPriceChart(&buf, "x",
		[]store.SourceRecord{{Title: long, Price: fp(10)}},
		store.PriceAggregate{Count: 1, Min: 10, Max: 10, Avg: 10}))

	out := buf.String()
	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("é", 24)+"…")
	assert.NotContains(t, out, strings.Repeat("é", 25))
}
