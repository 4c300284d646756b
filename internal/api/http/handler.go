package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

// StatusProvider exposes the live state of a run.
type StatusProvider interface {
	Status() domain.StatusResponse
}

// StatusHandler serves run progress.
type StatusHandler struct {
	provider StatusProvider
	logger   *slog.Logger
}

// NewStatusHandler creates a new StatusHandler with the provided source and logger.
func NewStatusHandler(provider StatusProvider, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		provider: provider,
		logger:   logger,
	}
}

// GetProgress handles GET /progress.
func (h *StatusHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "run not started")
		return
	}
	writeJSON(w, http.StatusOK, h.provider.Status())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
