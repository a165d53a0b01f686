package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

// expenseRatioThreshold splits "expenses far exceed sales" from "expenses
// close to sales" in the first advisor branch.
var expenseRatioThreshold = decimal.RequireFromString("1.5")

// Advisor produces exactly one recommendation from a Stats record. The
// decision tree is evaluated top to bottom and the first matching branch
// wins.
type Advisor struct {
	revenueCategories map[string]bool
}

// NewAdvisor builds an advisor. revenueCategories marks which by-category
// rows count as revenue rather than cost drivers.
func NewAdvisor(revenueCategories map[string]bool) *Advisor {
	return &Advisor{revenueCategories: revenueCategories}
}

// Recommend returns the single actionable recommendation for the period.
func (a *Advisor) Recommend(stats core.Stats) string {
	// Branch 1: spending outpaces revenue.
	if stats.TotalExpenses.GreaterThan(stats.TotalSales) && stats.TotalSales.IsPositive() {
		ratio := stats.TotalExpenses.Div(stats.TotalSales)
		if ratio.GreaterThan(expenseRatioThreshold) {
			return "Suas despesas são muito maiores que suas vendas. " +
				"Revise os gastos com fornecedores e procure alternativas mais baratas."
		}
		return "Despesas próximas do valor de vendas. " +
			"Considere aumentar os preços em 10-15% ou reduzir custos de insumos."
	}

	// Branch 2: profitable, so point at the biggest cost driver.
	if stats.Profit.IsPositive() {
		if top, ok := a.topCostDriver(stats); ok {
			return fmt.Sprintf("Seu maior gasto é '%s' (%s). "+
				"Negocie com fornecedores ou busque alternativas para reduzir esse custo.",
				top.Name, core.FormatBRL(top.Amount))
		}
	}

	// Branch 3: nothing to cut, nudge pricing on the best seller.
	if len(stats.TopItems) > 0 {
		top := stats.TopItems[0]
		return fmt.Sprintf("'%s' é seu item mais movimentado (%s). "+
			"Considere aumentar o preço em R$1-2 — pequenos ajustes somam no fim do mês.",
			top.Name, core.FormatBRL(top.Total))
	}

	// Branch 4: not enough data yet.
	return "Continue registrando todas as transações para insights mais precisos!"
}

// topCostDriver picks the non-revenue category with the largest amount,
// ties broken by position in the by-category sequence.
func (a *Advisor) topCostDriver(stats core.Stats) (core.CategoryAmount, bool) {
	var best core.CategoryAmount
	found := false
	for _, ca := range stats.ByCategory {
		if a.revenueCategories[ca.Name] {
			continue
		}
		if !found || ca.Amount.GreaterThan(best.Amount) {
			best = ca
			found = true
		}
	}
	return best, found
}
