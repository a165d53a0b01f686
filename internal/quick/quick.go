// Package quick parses short chat commands like "venda 150" or
// "despesa 80 fornecedor" into transactions, bypassing OCR and the field
// extractor entirely.
package quick

import (
	"regexp"
	"strings"
	"time"

	"livrocaixa/internal/core"
)

var entryRe = regexp.MustCompile(`(?i)^(venda|vendas|sale|receita|despesa|gasto|expense|compra)\s+R?\$?\s*([\d.,]+)\s*(.*)$`)

// saleVerbs lists the leading verbs that record revenue; every other
// recognized verb records an expense.
var saleVerbs = map[string]bool{
	"venda": true, "vendas": true, "sale": true, "receita": true,
}

// Parser turns quick-entry text into transactions.
type Parser struct {
	now func() time.Time
}

// Option customizes a Parser.
type Option func(*Parser)

// WithClock overrides the time source for the transaction date.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse matches "<verb> <amount> [description]". The second return value is
// false when the text is not a quick entry, in which case the caller falls
// through to its clarification reply.
func (p *Parser) Parse(text string) (core.Transaction, bool) {
	m := entryRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return core.Transaction{}, false
	}

	verb := strings.ToLower(m[1])
	amount, err := core.ParseBRL(m[2])
	if err != nil {
		return core.Transaction{}, false
	}

	txType := core.Expense
	if saleVerbs[verb] {
		txType = core.Sale
	}

	description := strings.TrimSpace(m[3])
	if description == "" {
		description = strings.ToUpper(verb[:1]) + verb[1:]
	}

	return core.Transaction{
		Date:        p.now().Format(core.ISODate),
		Total:       amount,
		Type:        txType,
		Description: description,
		RawText:     text,
	}, true
}
