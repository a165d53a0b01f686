package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livrocaixa/internal/ai"
	"livrocaixa/internal/ledger"
	"livrocaixa/internal/ocr"
	"livrocaixa/internal/services"
	"livrocaixa/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	var invalidate func()
	bookkeeper := services.NewBookkeeper(
		ledger.New(storage.NewMemory()),
		ocr.NewSimulated(),
		ai.NewDisabled(),
		services.WithMutationHook(func() {
			if invalidate != nil {
				invalidate()
			}
		}),
	)

	srv := NewServer(":0", bookkeeper, time.Minute)
	invalidate = srv.InvalidateSummaries

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func postMessage(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func getSummary(t *testing.T, srv *Server, query string) (summaryResponse, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary"+query, nil))

	var resp summaryResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return resp, rec
}

func TestPostMessageQuickEntry(t *testing.T) {
	srv := newTestServer(t)

	rec := postMessage(t, srv, `{"text": "venda 150 bolo de pote"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "💰 *Venda registrada!*")
	assert.Contains(t, resp.Reply, "R$150,00")
}

func TestPostMessageReceiptImage(t *testing.T) {
	srv := newTestServer(t)

	rec := postMessage(t, srv, `{"image": "receipt_expense_01.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "💸 *Despesa registrada!*")
	assert.Contains(t, resp.Reply, "R$109,80")
}

func TestPostMessageValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed JSON", `{"text": `, http.StatusBadRequest},
		{"empty payload", `{}`, http.StatusBadRequest},
		{"blank text", `{"text": "   "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postMessage(t, srv, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestPostMessagePipelineErrorStillReplies(t *testing.T) {
	bookkeeper := services.NewBookkeeper(
		ledger.New(storage.NewMemory()),
		&ocr.Simulated{RequireFile: true},
		ai.NewDisabled(),
	)
	srv := NewServer(":0", bookkeeper, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	rec := postMessage(t, srv, `{"image": "/missing/receipt.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "Não consegui ler a imagem")
}

func TestSummaryCaching(t *testing.T) {
	srv := newTestServer(t)

	resp, rec := getSummary(t, srv, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Cached)
	assert.Contains(t, resp.Summary, "Nenhuma transação registrada")

	resp, _ = getSummary(t, srv, "")
	assert.True(t, resp.Cached, "second read should come from cache")

	// A mutation purges the cache and the summary reflects the new entry.
	postMessage(t, srv, `{"text": "venda 85 encomenda"}`)

	resp, _ = getSummary(t, srv, "")
	assert.False(t, resp.Cached, "mutation should purge cached summaries")
	assert.Contains(t, resp.Summary, "R$85,00")
}

func TestSummaryDateValidation(t *testing.T) {
	srv := newTestServer(t)

	_, rec := getSummary(t, srv, "?date=not-a-date")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, rec = getSummary(t, srv, "?date=2026-01-20")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	_, rec := getSummary(t, srv, "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t)

	limited := false
	for i := 0; i < 70; i++ {
		req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"text": "ajuda"}`))
		req.Header.Set("X-Forwarded-For", "10.0.0.9")
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			break
		}
	}
	assert.True(t, limited, "rate limiter never kicked in")
}

func TestRequestLoggingCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{"text": "venda 10"}`))
	req.Header.Set("X-Request-ID", "req_test123")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "HTTP request started")
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "request_id=req_test123")
	assert.Contains(t, out, "status_code=200")
	assert.Contains(t, out, "Entry recorded")
}

func TestGeneratedRequestIDWhenHeaderAbsent(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv := newTestServer(t)

	_, rec := getSummary(t, srv, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "request_id=req_")
}

func TestPostMessageBodyTooLarge(t *testing.T) {
	srv := newTestServer(t)

	body := `{"text": "` + strings.Repeat("a", maxMessageBody) + `"}`
	rec := postMessage(t, srv, body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "too large")
}
