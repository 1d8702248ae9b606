package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain", "$250", 250, true},
		{"cents", "$1,250.00", 1250, true},
		{"thousands", "$12,000", 12000, true},
		{"no dollar sign", "250 obo", 250, true},
		{"embedded", "asking $45.50 firm", 45.50, true},
		{"no number", "Contact for price", 0, false},
		{"empty", "", 0, false},
		{"free text", "make me an offer", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "one two", CleanText("  one\n\t two  "))
	assert.Equal(t, "a b", CleanText("a b"))
	assert.Equal(t, "", CleanText("  \n "))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Like New", TitleCase("like new"))
	assert.Equal(t, "Good", TitleCase("GOOD"))
	assert.Equal(t, "", TitleCase("  "))
}
