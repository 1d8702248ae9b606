package craigslist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricescout-engine/internal/domain"
)

func TestApplyAttrRulesCondition(t *testing.T) {
	// only the word right after the keyword is captured
	var d domain.Detail
	applyAttrRules(&d, "condition: like new")
	assert.Equal(t, "Like", d.Condition)

	d = domain.Detail{}
	applyAttrRules(&d, "Condition: GOOD")
	assert.Equal(t, "Good", d.Condition)
}

func TestApplyAttrRulesMeasurements(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"inch marks", `34" x 18" x 52"`},
		{"dimensions word", "dimensions: 80x40x30"},
		{"size word", "size: queen"},
		{"metric", "120 cm wide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d domain.Detail
			applyAttrRules(&d, tt.block)
			// measurement blocks are kept verbatim
			assert.Equal(t, tt.block, d.Measurements)
		})
	}
}

func TestApplyAttrRulesIgnoresUnrelatedBlocks(t *testing.T) {
	var d domain.Detail
	applyAttrRules(&d, "delivery available")
	applyAttrRules(&d, "")
	assert.Empty(t, d.Condition)
	assert.Empty(t, d.Measurements)
}

func TestApplyAttrRulesConditionWithoutValue(t *testing.T) {
	// keyword present but the capture regex finds nothing usable
	var d domain.Detail
	applyAttrRules(&d, "condition: ?")
	assert.Empty(t, d.Condition)
}
