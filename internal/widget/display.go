package widget

import (
	"sort"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/common-creation/tokencounter/internal/models"
	"github.com/common-creation/tokencounter/internal/tokens"
)

// USDToEUR converts estimated USD costs into the displayed currency.
const USDToEUR = 0.92

// CurrencySymbol is appended to displayed costs.
const CurrencySymbol = "€"

// Row is one line of the per-model comparison table.
type Row struct {
	Model  models.ID
	Label  string
	Tokens string
	Cost   string
}

// View is the display derivation of a report. When Report is nil the
// summary and comparison table are omitted.
type View struct {
	Report *tokens.CostReport
	Total  string
	Rows   []Row
}

// HasReport reports whether there is anything to show besides the form.
func (v View) HasReport() bool {
	return v.Report != nil
}

// BuildView formats report for display. A nil printer uses English grouping.
func BuildView(report *tokens.CostReport, p *message.Printer) View {
	if report == nil {
		return View{}
	}
	if p == nil {
		p = message.NewPrinter(language.English)
	}

	view := View{
		Report: report,
		Total:  FormatTokens(p, report.TotalTokens),
		Rows:   make([]Row, 0, len(report.Costs)),
	}
	for id, cost := range report.Costs {
		view.Rows = append(view.Rows, Row{
			Model:  id,
			Label:  id.Label(),
			Tokens: FormatTokens(p, cost.TotalTokens),
			Cost:   FormatCost(cost.EstimatedCostUSD),
		})
	}
	sort.Slice(view.Rows, func(i, j int) bool {
		a, b := view.Rows[i].Model, view.Rows[j].Model
		if ia, ib := models.Index(a), models.Index(b); ia != ib {
			return ia < ib
		}
		return a < b
	})
	return view
}

// FormatCost converts usd with USDToEUR and renders it with five decimals,
// rounded to nearest on the converted float value.
func FormatCost(usd float64) string {
	return strconv.FormatFloat(usd*USDToEUR, 'f', 5, 64)
}

// FormatTokens renders n with the printer's digit grouping.
func FormatTokens(p *message.Printer, n int) string {
	return p.Sprintf("%d", n)
}
