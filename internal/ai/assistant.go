// Package ai talks to an OpenAI-compatible chat endpoint for category
// suggestions and summary phrasing. Every call is optional: callers fall
// back to rules and templates when the assistant is disabled or fails.
package ai

import (
	"context"
	"errors"
)

// ErrAssistantDisabled reports that no AI endpoint is configured.
var ErrAssistantDisabled = errors.New("ai assistant disabled")

// Assistant suggests a category for free text and rephrases summaries.
type Assistant interface {
	// Classify returns a category name for the given transaction text.
	Classify(ctx context.Context, text string) (string, error)
	// Summarize rewrites a financial report in a friendlier tone.
	Summarize(ctx context.Context, report string) (string, error)
	// Enabled reports whether calls can succeed at all.
	Enabled() bool
}

// Disabled is the assistant used when no endpoint is configured.
type Disabled struct{}

func NewDisabled() Disabled { return Disabled{} }

func (Disabled) Classify(context.Context, string) (string, error) {
	return "", ErrAssistantDisabled
}

func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", ErrAssistantDisabled
}

func (Disabled) Enabled() bool { return false }
