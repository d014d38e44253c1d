package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shamba-labs/mazao/internal/assistant"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Message is required",
		})
		return
	}

	result, err := s.deps.Assistant.Chat(r.Context(), userIDFrom(r.Context()), req.Message)
	if err != nil {
		s.assistantError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"response":  result.Text,
		"messageId": result.MessageID.String(),
	})
}

func (s *Server) conversation(w http.ResponseWriter, r *http.Request) {
	history, err := s.deps.Assistant.History(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.assistantError(w, err)
		return
	}

	var lastUpdated *time.Time
	if !history.LastUpdated.IsZero() {
		lastUpdated = &history.LastUpdated
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"messages":    history.Messages,
		"lastUpdated": lastUpdated,
	})
}

// assistantError converts an assistant failure into the HTTP envelope:
// timeouts read as 504, provider outages as 503, bad input as 400 and
// missing identity as 401.
func (s *Server) assistantError(w http.ResponseWriter, err error) {
	var aerr *assistant.Error
	if !errors.As(err, &aerr) {
		aerr = &assistant.Error{Kind: assistant.KindUnknown, Message: "An error occurred while processing your message.", Err: err}
	}

	var status int
	switch aerr.Kind {
	case assistant.KindAuthRequired:
		status = http.StatusUnauthorized
	case assistant.KindInvalidInput:
		status = http.StatusBadRequest
	case assistant.KindTimeout:
		status = http.StatusGatewayTimeout
	case assistant.KindProvider:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.deps.Logger.Error("assistant request failed", "kind", aerr.Kind, "error", err)
	}

	body := map[string]any{
		"success": false,
		"error":   aerr.Message,
	}
	if s.deps.Dev && aerr.Err != nil {
		body["details"] = aerr.Err.Error()
	}
	writeJSON(w, status, body)
}
