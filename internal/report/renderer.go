package report

import (
	"fmt"
	"sort"
	"strings"

	"livrocaixa/internal/core"
)

// Renderer formats stats into the WhatsApp-style summary message.
type Renderer struct {
	advisor *Advisor
}

func NewRenderer(advisor *Advisor) *Renderer {
	return &Renderer{advisor: advisor}
}

// EmptyMessage is the fixed reply for a period with no transactions.
func EmptyMessage(label string) string {
	return fmt.Sprintf("📊 *Resumo %s*\n\n"+
		"Nenhuma transação registrada neste período.\n"+
		"Envie fotos de recibos ou mensagens para começar!", label)
}

// Summary renders the full report for a period. An empty entry list skips
// stats entirely and returns the fixed no-transactions message.
func (r *Renderer) Summary(entries []core.Entry, label string) string {
	if len(entries) == 0 {
		return EmptyMessage(label)
	}
	stats := Aggregate(entries)
	return r.Render(stats, r.advisor.Recommend(stats), label)
}

// Render formats a Stats record plus one recommendation line.
func (r *Renderer) Render(stats core.Stats, action, label string) string {
	var status string
	switch {
	case stats.Profit.IsPositive():
		status = "✅ Lucro"
	case stats.Profit.IsNegative():
		status = "⚠️ Prejuízo"
	default:
		status = "➖ Empate"
	}

	lines := []string{
		fmt.Sprintf("📊 *Resumo %s*\n", label),
		fmt.Sprintf("💰 Vendas: %s (%d transação(ões))", core.FormatBRL(stats.TotalSales), stats.NumSales),
		fmt.Sprintf("💸 Despesas: %s (%d transação(ões))", core.FormatBRL(stats.TotalExpenses), stats.NumExpenses),
		fmt.Sprintf("%s: %s\n", status, core.FormatBRL(stats.Profit)),
	}

	if len(stats.ByCategory) > 0 {
		lines = append(lines, "📂 *Por categoria:*")
		byAmount := append([]core.CategoryAmount(nil), stats.ByCategory...)
		// Stable sort keeps first-appearance order between equal amounts.
		sort.SliceStable(byAmount, func(i, j int) bool {
			return byAmount[i].Amount.GreaterThan(byAmount[j].Amount)
		})
		for _, ca := range byAmount {
			lines = append(lines, fmt.Sprintf("  • %s: %s", ca.Name, core.FormatBRL(ca.Amount)))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "💡 *Ação:* "+action)
	return strings.Join(lines, "\n")
}
