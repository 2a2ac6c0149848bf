package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Suggester produces message prompts for visitors.
type Suggester interface {
	Suggest(ctx context.Context) ([]string, error)
}

// SuggestHandler serves message suggestions.
type SuggestHandler struct {
	Suggester Suggester
	Log       *zap.Logger
}

// Suggest handles POST /api/suggest-messages.
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	questions, err := h.Suggester.Suggest(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "questions": questions})
}

// Pinger checks that the store is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler reports service liveness.
type HealthHandler struct {
	Ping Pinger
	Log  *zap.Logger
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			h.Log.Warn("health check failed", zap.Error(err))
			writeFail(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeOK(w, "ok", nil)
}
