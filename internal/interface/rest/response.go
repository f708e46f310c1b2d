package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jinford/image-rag/internal/core/ingest"
	"github.com/jinford/image-rag/internal/core/llm"
	"github.com/jinford/image-rag/internal/core/search"
)

// errorResponse はエラー応答のボディ
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFromError はドメインのエラー種別をHTTPステータスに対応付ける
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidFile),
		errors.Is(err, search.ErrInvalidQuery),
		errors.Is(err, llm.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrUnauthorized),
		errors.Is(err, llm.ErrModelNotAvailable):
		return http.StatusBadGateway
	case errors.Is(err, ingest.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
