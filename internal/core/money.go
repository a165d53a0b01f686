// Package core holds the domain types shared by the whole pipeline plus
// the Brazilian-format money and calendar helpers they depend on.
//
// Monetary amounts follow the local convention: "." as thousands separator
// and "," as decimal separator, with an optional "R$" prefix
// (e.g. "R$1.234,56" means 1234.56).
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBRL converts a Brazilian-format money token to a decimal.
//
//	ParseBRL("R$1.234,56") -> 1234.56
//	ParseBRL("109,80")     -> 109.80
//	ParseBRL("150")        -> 150
//
// Negative amounts and unparsable tokens return ErrMalformedAmount; callers
// in the extraction path drop the offending token and keep going.
func ParseBRL(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrMalformedAmount)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrMalformedAmount)
	}
	// Thousands dots out, decimal comma in.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrMalformedAmount)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrMalformedAmount)
	}
	return d, nil
}

// FormatBRL renders a decimal in Brazilian currency notation with the R$
// prefix. The sign, when present, sits between the prefix and the digits.
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2) // e.g. "1234.56"
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$" + strings.Join(groups, ".") + "," + fracPart
	if neg {
		out = "R$-" + out[2:]
	}
	return out
}
