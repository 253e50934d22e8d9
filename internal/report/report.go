// Package report aggregates expenses and renders the spend report chart.
package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/bobmcallan/dayplan/internal/models"
)

// CategoryTotal is one aggregated slice of the spend report.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Summarize aggregates expenses into per-category totals, largest first,
// and the overall total.
func Summarize(expenses []*models.Expense) ([]CategoryTotal, float64) {
	byCategory := make(map[string]float64)
	total := 0.0
	for _, e := range expenses {
		byCategory[e.Category] += e.Amount
		total += e.Amount
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, amount := range byCategory {
		totals = append(totals, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})

	return totals, total
}

// RenderCategoryPie renders the category breakdown as a PNG pie chart.
func RenderCategoryPie(totals []CategoryTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.2f)", t.Category, t.Amount),
			Value: t.Amount,
		})
	}

	graph := chart.PieChart{
		Title:  "Spending by Category",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
