package extract

import (
	"regexp"
	"strconv"
	"strings"

	"livrocaixa/internal/core"
)

// ItemMatcher is one pattern family for pulling line items out of a receipt
// body. Matchers run in a fixed order and share dedup state: a name claimed
// by an earlier matcher is never re-captured by a later one.
type ItemMatcher interface {
	Name() string
	// Match appends the items it finds, skipping any name already in seen
	// and recording the names it claims.
	Match(body string, seen map[string]bool) []core.LineItem
}

var (
	labeledLineRe = regexp.MustCompile(`(?i)Produto:\s*(.+?)\s+Qtd:\s*(\d+)\s+Valor:\s*R?\$?\s*([\d.,]+)`)
	qtyLineRe     = regexp.MustCompile(`(?m)^(.+?)\s+(\d+)\s*[xX]\s+R?\$?\s*([\d.,]+)\s*$`)
	bareLineRe    = regexp.MustCompile(`(?m)^(.+?)\s{2,}R?\$?\s*([\d.,]+)\s*$`)
	qtySuffixRe   = regexp.MustCompile(`\d+\s*[xX]\s*$`)
)

// Lines carrying totals, payment details or dates are not products; the
// bare name/price matcher must leave them alone.
var bareSkipWords = []string{"total", "subtotal", "troco", "forma", "pgto", "pagamento", "data", "nf "}

// DefaultMatchers returns the three pattern families in their precedence
// order: labeled lines, quantity-multiplier lines, bare name/price lines.
func DefaultMatchers() []ItemMatcher {
	return []ItemMatcher{labeledMatcher{}, qtyMatcher{}, bareMatcher{}}
}

// labeledMatcher handles "Produto: <name>  Qtd: <n>  Valor: R$<price>".
type labeledMatcher struct{}

func (labeledMatcher) Name() string { return "labeled" }

func (labeledMatcher) Match(body string, seen map[string]bool) []core.LineItem {
	var items []core.LineItem
	for _, m := range labeledLineRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		qty, _ := strconv.Atoi(m[2])
		price, err := core.ParseBRL(m[3])
		if err != nil || seen[name] {
			continue
		}
		items = append(items, core.LineItem{Name: name, Qty: qty, UnitPrice: price})
		seen[name] = true
	}
	return items
}

// qtyMatcher handles "<name>  <n>x  R$<price>".
type qtyMatcher struct{}

func (qtyMatcher) Name() string { return "quantity" }

func (qtyMatcher) Match(body string, seen map[string]bool) []core.LineItem {
	var items []core.LineItem
	for _, m := range qtyLineRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		qty, _ := strconv.Atoi(m[2])
		price, err := core.ParseBRL(m[3])
		if err != nil || seen[name] {
			continue
		}
		items = append(items, core.LineItem{Name: name, Qty: qty, UnitPrice: price})
		seen[name] = true
	}
	return items
}

// bareMatcher handles "<name>    R$<price>" with quantity defaulted to 1.
type bareMatcher struct{}

func (bareMatcher) Name() string { return "bare" }

func (bareMatcher) Match(body string, seen map[string]bool) []core.LineItem {
	var items []core.LineItem
	for _, m := range bareLineRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		price, err := core.ParseBRL(m[2])
		if err != nil {
			continue
		}
		// Quantity-multiplier lines also fit this shape; leave them to the
		// higher-priority matcher.
		if qtySuffixRe.MatchString(name) {
			continue
		}
		if seen[name] || hasSkipWord(name) {
			continue
		}
		items = append(items, core.LineItem{Name: name, Qty: 1, UnitPrice: price})
		seen[name] = true
	}
	return items
}

func hasSkipWord(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range bareSkipWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
