package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
)

func TestFormatCost(t *testing.T) {
	tests := []struct {
		usd      float64
		expected string
	}{
		{0.0001234, "0.00011"},
		{0, "0.00000"},
		{1, "0.92000"},
		{0.000015, "0.00001"},
		{0.0125, "0.01150"},
		// 0.00001564 rounds to nearest rather than truncating
		{0.0000170, "0.00002"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCost(tt.usd))
		})
	}
}

func TestFormatTokens(t *testing.T) {
	p := message.NewPrinter(language.English)

	assert.Equal(t, "0", FormatTokens(p, 0))
	assert.Equal(t, "999", FormatTokens(p, 999))
	assert.Equal(t, "1,234", FormatTokens(p, 1234))
	assert.Equal(t, "1,234,567", FormatTokens(p, 1234567))
}

func TestBuildViewNilReport(t *testing.T) {
	view := BuildView(nil, nil)

	assert.False(t, view.HasReport())
	assert.Empty(t, view.Rows)
	assert.Empty(t, view.Total)
}

func TestBuildViewRows(t *testing.T) {
	r := &tokens.CostReport{
		TotalTokens: 12345,
		Costs: map[models.ID]tokens.PerModelCost{
			"zz-custom":         {TotalTokens: 1, EstimatedCostUSD: 0.5},
			models.GPT4Dot1Mini: {TotalTokens: 12345, EstimatedCostUSD: 0.0001234},
			models.GPT4oMini:    {TotalTokens: 12345, EstimatedCostUSD: 0.001},
			models.GPT4o:        {TotalTokens: 12345, EstimatedCostUSD: 0.01},
			"aa-custom":         {TotalTokens: 2, EstimatedCostUSD: 0},
		},
	}

	view := BuildView(r, nil)
	require.True(t, view.HasReport())
	assert.Equal(t, "12,345", view.Total)

	expected := []Row{
		{Model: models.GPT4oMini, Label: "GPT-4o Mini", Tokens: "12,345", Cost: "0.00092"},
		{Model: models.GPT4o, Label: "GPT-4o", Tokens: "12,345", Cost: "0.00920"},
		{Model: models.GPT4Dot1Mini, Label: "GPT-4.1 Mini", Tokens: "12,345", Cost: "0.00011"},
		{Model: "aa-custom", Label: "", Tokens: "2", Cost: "0.00000"},
		{Model: "zz-custom", Label: "", Tokens: "1", Cost: "0.46000"},
	}
	assert.Equal(t, expected, view.Rows)
}

func TestControllerViewUsesLocale(t *testing.T) {
	c := New(StaticBridge{Output: &tokens.CostReport{TotalTokens: 1000}}, WithLocale(language.English))

	view := c.View()
	assert.Equal(t, "1,000", view.Total)
	assert.Empty(t, view.Rows)
}
