// Package categorize assigns each transaction a category from a closed
// vocabulary using an ordered keyword rule table, with an optional external
// classifier as a second opinion and "other" as the final fallback.
package categorize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"livrocaixa/internal/core"
)

// Classifier is the optional external classification service. A nil
// Classifier, an error, a timeout or an out-of-vocabulary answer all
// degrade silently to the fallback category.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Categorizer is a pure function of the transaction, the rule table and the
// optional classifier. It performs no persistence.
type Categorizer struct {
	rules      []Rule
	classifier Classifier
	timeout    time.Duration
}

// Option customizes a Categorizer.
type Option func(*Categorizer)

// WithRules replaces the default keyword table.
func WithRules(rules []Rule) Option {
	return func(c *Categorizer) { c.rules = rules }
}

// WithClassifier attaches the external classification service.
func WithClassifier(cl Classifier) Option {
	return func(c *Categorizer) { c.classifier = cl }
}

// WithTimeout bounds each external classification call.
func WithTimeout(d time.Duration) Option {
	return func(c *Categorizer) { c.timeout = d }
}

func New(opts ...Option) *Categorizer {
	c := &Categorizer{
		rules:   DefaultRules(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categorize resolves the category for a transaction. Sales are always
// "sales" with no text inspection.
func (c *Categorizer) Categorize(ctx context.Context, tx core.Transaction) string {
	if tx.Type == core.Sale {
		return "sales"
	}

	names := make([]string, 0, len(tx.Items))
	for _, li := range tx.Items {
		names = append(names, li.Name)
	}
	searchable := strings.ToLower(strings.Join([]string{
		tx.Description, tx.RawText, strings.Join(names, " "),
	}, " "))

	for _, r := range c.rules {
		if strings.Contains(searchable, r.Keyword) {
			return r.Category
		}
	}

	if c.classifier != nil {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		category, err := c.classifier.Classify(cctx, searchable)
		if err != nil {
			slog.DebugContext(ctx, "external classification failed, falling back",
				"error", err)
			return Fallback
		}
		category = strings.ToLower(strings.TrimSpace(category))
		if InVocabulary(category) {
			return category
		}
		slog.DebugContext(ctx, "discarding out-of-vocabulary classification",
			"category", category)
	}

	return Fallback
}
