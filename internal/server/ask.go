package server

import (
	"AssistantProxy/internal/ai"
	"AssistantProxy/internal/service/ask"
	"encoding/json"
	"errors"
	"net/http"
)

const (
	msgMessageRequired = "Message body parameter is required"
	msgFetchFailed     = "Failed to fetch messages"
	msgPollTimeout     = "Run polling timed out"
)

// maxBodyBytes ограничение на тело запроса /ask.
const maxBodyBytes = 1 << 20

type askRequest struct {
	Message any `json:"message"`
}

type askResponse struct {
	Messages []ask.ResponseItem `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	// Невалидный JSON трактуется как отсутствие сообщения.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Warnw("Failed to decode ask request", "error", err, "requestID", requestID(r.Context()))
	}
	message, _ := req.Message.(string)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMessageRequired})
		return
	}

	items, err := s.asker.Ask(r.Context(), message)
	if err != nil {
		status, text := errorStatus(err)
		s.logger.Errorw("Error running the assistant", "error", err, "status", status, "requestID", requestID(r.Context()))
		writeJSON(w, status, errorResponse{Error: text})
		return
	}
	if items == nil {
		items = []ask.ResponseItem{}
	}
	writeJSON(w, http.StatusOK, askResponse{Messages: items})
}

// errorStatus сопоставляет ошибку сценария с HTTP-кодом и текстом для клиента.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ask.ErrMessageRequired):
		return http.StatusBadRequest, msgMessageRequired
	case errors.Is(err, ask.ErrRunNotCompleted):
		return http.StatusInternalServerError, msgFetchFailed
	case errors.Is(err, ask.ErrRunTimeout):
		return http.StatusGatewayTimeout, msgPollTimeout
	default:
		return http.StatusInternalServerError, ai.ErrorMessage(err)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
