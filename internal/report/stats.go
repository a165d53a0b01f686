// Package report computes aggregate statistics over ledger entries and
// renders them as a WhatsApp-style weekly summary with exactly one
// actionable recommendation.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

// TopItemsLimit caps how many item totals the stats carry.
const TopItemsLimit = 5

// Aggregate folds a sequence of entries into Stats. It is a pure function:
// no I/O, no clock, no shared state.
//
// ByCategory and TopItems preserve first-appearance order across the input
// for equal amounts, so the result is stable under re-aggregation.
func Aggregate(entries []core.Entry) core.Stats {
	stats := core.Stats{
		TotalSales:    decimal.Zero,
		TotalExpenses: decimal.Zero,
		Profit:        decimal.Zero,
	}

	catIndex := make(map[string]int)
	itemIndex := make(map[string]int)
	var items []core.ItemTotal

	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = "other"
		}
		if i, ok := catIndex[cat]; ok {
			stats.ByCategory[i].Amount = stats.ByCategory[i].Amount.Add(e.Total)
		} else {
			catIndex[cat] = len(stats.ByCategory)
			stats.ByCategory = append(stats.ByCategory, core.CategoryAmount{Name: cat, Amount: e.Total})
		}

		if e.Type == core.Sale {
			stats.TotalSales = stats.TotalSales.Add(e.Total)
			stats.NumSales++
		} else {
			stats.TotalExpenses = stats.TotalExpenses.Add(e.Total)
			stats.NumExpenses++
		}

		// Item totals accumulate across every entry, so the same product
		// sold on different days combines into one row.
		for _, li := range e.Items {
			if i, ok := itemIndex[li.Name]; ok {
				items[i].Total = items[i].Total.Add(li.Subtotal())
			} else {
				itemIndex[li.Name] = len(items)
				items = append(items, core.ItemTotal{Name: li.Name, Total: li.Subtotal()})
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total.GreaterThan(items[j].Total)
	})
	if len(items) > TopItemsLimit {
		items = items[:TopItemsLimit]
	}
	stats.TopItems = items

	stats.Profit = stats.TotalSales.Sub(stats.TotalExpenses)
	return stats
}
