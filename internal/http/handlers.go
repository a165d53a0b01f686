package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"livrocaixa/internal/core"
	"livrocaixa/internal/log"
	"livrocaixa/internal/services"
)

// maxMessageBody caps the /messages request body. Chat payloads are a few
// hundred bytes; anything near the cap is abuse, not traffic.
const maxMessageBody = 64 << 10

// messageRequest is an incoming chat message. Either Text or Image must be
// set; Caption only makes sense alongside Image.
type messageRequest struct {
	Text    string `json:"text,omitempty"`
	Image   string `json:"image,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type messageResponse struct {
	Reply string `json:"reply"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Cached  bool   `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// handleMessages runs a chat message through the bookkeeper and returns
// the reply. Pipeline failures still produce a chat reply with 200, since
// the transport in front of us always answers the user; only malformed
// requests get an error status.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBody)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Image) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "either text or image is required"})
		return
	}

	var (
		reply string
		err   error
	)
	if req.Image != "" {
		reply, err = s.bookkeeper.RecordReceipt(r.Context(), req.Image, req.Caption)
	} else {
		reply, err = s.bookkeeper.ProcessMessage(r.Context(), req.Text)
	}
	if err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Message processing failed", err, log.ComponentHTTP, log.OpRecord, log.NewFields())
		writeJSON(w, http.StatusOK, messageResponse{Reply: services.ErrorReply(err)})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Reply: reply})
}

// handleSummary returns the weekly summary for the week holding ?date=
// (today when absent). Summaries are cached until the ledger mutates or
// the TTL expires.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	refDate := strings.TrimSpace(r.URL.Query().Get("date"))
	if refDate != "" {
		if _, err := core.ParseISODate(refDate); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, use YYYY-MM-DD"})
			return
		}
	}

	cacheKey := refDate
	if cacheKey == "" {
		cacheKey = time.Now().Format(core.ISODate)
	}

	if summary, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, summaryResponse{Summary: summary, Cached: true})
		return
	}

	summary, err := s.bookkeeper.WeeklySummary(r.Context(), refDate)
	if err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Summary generation failed", err, log.ComponentHTTP, log.OpSummary, log.NewFields())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate summary"})
		return
	}

	s.summaryCache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}
