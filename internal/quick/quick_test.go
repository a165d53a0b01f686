package quick

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 22, 9, 30, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseQuickEntries(t *testing.T) {
	cases := []struct {
		in       string
		txType   core.TxType
		total    string
		desc     string
	}{
		{"sale 85 custom cake order", core.Sale, "85", "custom cake order"},
		{"venda 150", core.Sale, "150", "Venda"},
		{"vendas 90,50", core.Sale, "90.5", "Vendas"},
		{"receita R$200", core.Sale, "200", "Receita"},
		{"despesa 50 fornecedor", core.Expense, "50", "fornecedor"},
		{"gasto 80 transporte", core.Expense, "80", "transporte"},
		{"compra 32,90", core.Expense, "32.9", "Compra"},
		{"expense 12.50", core.Expense, "1250", "Expense"}, // dot is thousands separator here
		{"  VENDA 45  ", core.Sale, "45", "Venda"},
	}
	p := New(WithClock(fixedClock))
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			tx, ok := p.Parse(tc.in)
			if !ok {
				t.Fatalf("Parse(%q) did not match", tc.in)
			}
			if tx.Type != tc.txType {
				t.Fatalf("type = %s, want %s", tx.Type, tc.txType)
			}
			if !tx.Total.Equal(dec(tc.total)) {
				t.Fatalf("total = %s, want %s", tx.Total, tc.total)
			}
			if tx.Description != tc.desc {
				t.Fatalf("description = %q, want %q", tx.Description, tc.desc)
			}
			if tx.Date != "2026-01-22" {
				t.Fatalf("date = %s, want today", tx.Date)
			}
			if len(tx.Items) != 0 {
				t.Fatalf("quick entries carry no items: %+v", tx.Items)
			}
		})
	}
}

func TestParseRejectsNonEntries(t *testing.T) {
	inputs := []string{
		"",
		"resumo",
		"ajuda",
		"bom dia",
		"venda",          // no amount
		"venda abc",      // amount not numeric
		"pagamento 150",  // unknown verb
		"150 venda",      // verb must lead
	}
	p := New()
	for _, in := range inputs {
		if tx, ok := p.Parse(in); ok {
			t.Fatalf("Parse(%q) matched unexpectedly: %+v", in, tx)
		}
	}
}
