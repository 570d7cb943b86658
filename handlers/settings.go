package handlers

import "net/http"

// PublicSettings exposes the settings flagged public as a flat key/value map.
func (h *Handler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Public(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"settings": settings}))
}
