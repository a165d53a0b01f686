// Package extract turns raw OCR receipt text into structured transactions.
//
// Date and type detection see the receipt body plus the user caption; item
// lines and total resolution only look at the body, since captions are too
// free-form for the item patterns.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"livrocaixa/internal/core"
)

var (
	dateRe      = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	totalLineRe = regexp.MustCompile(`(?i)TOTAL\s*:?\s*R?\$?\s*([\d.,]+)`)
	valorLineRe = regexp.MustCompile(`(?im)^Valor\s*:\s*R?\$?\s*([\d.,]+)`)
)

// DefaultSaleKeywords mark a receipt as revenue. Scan order matters only in
// that any hit wins; there is no negation handling.
func DefaultSaleKeywords() []string {
	return []string{
		"venda", "vendas", "recibo de venda", "sold", "sale",
		"pagamento recebido", "pix recebido",
	}
}

// Extractor converts receipt text into a core.Transaction. Keyword tables
// and matcher order are fixed at construction.
type Extractor struct {
	saleKeywords []string
	matchers     []ItemMatcher
	now          func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithClock overrides the time source used when no valid date is found.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithSaleKeywords replaces the sale-detection keyword list.
func WithSaleKeywords(kw []string) Option {
	return func(e *Extractor) { e.saleKeywords = kw }
}

// WithMatchers replaces the item pattern families.
func WithMatchers(ms []ItemMatcher) Option {
	return func(e *Extractor) { e.matchers = ms }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		saleKeywords: DefaultSaleKeywords(),
		matchers:     DefaultMatchers(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: malformed tokens are dropped, an invalid date falls
// back to the clock, and empty input still yields a zero-total expense.
func (e *Extractor) Extract(rawText, caption string) core.Transaction {
	combined := strings.TrimSpace(rawText + "\n" + caption)

	date := e.extractDate(combined)
	txType := e.detectType(combined)
	total, hasTotal := extractTotal(rawText)
	items := e.extractItems(rawText)

	if !hasTotal {
		if len(items) > 0 {
			total = core.Transaction{Items: items}.ItemsTotal()
		} else {
			total = decimal.Zero
		}
	} else if len(items) > 0 {
		// When the explicit TOTAL and the item sum disagree, the explicit
		// total wins; surface the mismatch for whoever is auditing.
		if sum := (core.Transaction{Items: items}).ItemsTotal(); !sum.Equal(total) {
			slog.Debug("receipt total disagrees with item sum",
				"total", total.String(), "item_sum", sum.String())
		}
	}

	return core.Transaction{
		Date:        date,
		Total:       total,
		Items:       items,
		Type:        txType,
		Description: describe(txType, items, rawText),
		RawText:     rawText,
	}
}

func (e *Extractor) extractDate(text string) string {
	if m := dateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if date, err := core.CalendarDate(day, month, year); err == nil {
			return date
		}
		slog.Debug("discarding impossible receipt date", "match", m[0])
	}
	return e.now().Format(core.ISODate)
}

func (e *Extractor) detectType(text string) core.TxType {
	lower := strings.ToLower(text)
	for _, kw := range e.saleKeywords {
		if strings.Contains(lower, kw) {
			return core.Sale
		}
	}
	return core.Expense
}

func (e *Extractor) extractItems(body string) []core.LineItem {
	seen := make(map[string]bool)
	var items []core.LineItem
	for _, m := range e.matchers {
		items = append(items, m.Match(body, seen)...)
	}
	return items
}

// extractTotal prefers an explicit TOTAL line, then a line starting with
// "Valor:". The second return value reports whether anything parsed.
func extractTotal(body string) (decimal.Decimal, bool) {
	if m := totalLineRe.FindStringSubmatch(body); m != nil {
		if d, err := core.ParseBRL(m[1]); err == nil {
			return d, true
		}
	}
	if m := valorLineRe.FindStringSubmatch(body); m != nil {
		if d, err := core.ParseBRL(m[1]); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func describe(txType core.TxType, items []core.LineItem, body string) string {
	if txType == core.Sale {
		if len(items) == 0 {
			return "Venda"
		}
		return fmt.Sprintf("Venda de %d item(s)", len(items))
	}
	for _, line := range strings.Split(body, "\n") {
		if vendor := strings.TrimSpace(line); vendor != "" {
			return "Compra em " + vendor
		}
	}
	return "Despesa"
}
