package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OpenAI calls any OpenAI-compatible chat completions endpoint. Requests
// are bounded by the configured timeout on top of whatever deadline the
// caller's context already carries.
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	categories []string
	httpClient *http.Client
}

func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, categories []string) *OpenAI {
	return &OpenAI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		categories: categories,
		httpClient: &http.Client{},
	}
}

func (o *OpenAI) Enabled() bool { return o.baseURL != "" }

func (o *OpenAI) Classify(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Classify this small-business transaction into exactly one of these categories: %s.\n"+
			"Answer with the category name only, nothing else.\n\nTransaction: %s",
		strings.Join(o.categories, ", "), text)

	answer, err := o.complete(ctx, "You classify bookkeeping transactions for a small Brazilian business.", prompt)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(answer)), nil
}

func (o *OpenAI) Summarize(ctx context.Context, report string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite this weekly financial report for a small-business owner on WhatsApp.\n"+
			"Keep every number and the emoji structure, keep it in Portuguese, stay brief.\n\n%s",
		report)

	return o.complete(ctx, "You are a friendly bookkeeping assistant for Brazilian micro-entrepreneurs.", prompt)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) complete(ctx context.Context, system, user string) (string, error) {
	if !o.Enabled() {
		return "", ErrAssistantDisabled
	}

	payload := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat endpoint returned no choices")
	}

	answer := stripFences(parsed.Choices[0].Message.Content)
	slog.DebugContext(ctx, "AI completion received", "model", o.model, "chars", len(answer))
	return answer, nil
}

// stripFences removes markdown code fences some models wrap answers in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
		// drop a language tag on the opening fence
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
