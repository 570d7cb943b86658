package handlers

import (
	"context"
	"net/http"
	"time"

	"farmfinance/backend/logger"
)

// HealthCheck reports whether the server can reach its database. It answers
// 200 even when the database is down.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "connected"
	if err := h.store.Ping(ctx); err != nil {
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Msg("Health check could not reach the database")
		status = "disconnected"
	}

	respondJSON(w, http.StatusOK, ok(envelope{
		"status":    "ok",
		"database":  status,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}))
}
