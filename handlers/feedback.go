package handlers

import (
	"net/http"

	"farmfinance/backend/models"

	"github.com/gorilla/mux"
)

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.FeedbackInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	fb, err := h.feedback.Submit(r.Context(), id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ok(envelope{"data": fb}))
}

// MyFeedback lists the caller's own submissions, newest first.
func (h *Handler) MyFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	list, err := h.feedback.Mine(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(list), "data": list}))
}

func (h *Handler) AllFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedback.All(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(list), "data": list}))
}

func (h *Handler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feedback.Stats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"stats": stats}))
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := h.feedback.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": fb}))
}

// UpdateFeedback sets the triage status and optional admin response.
func (h *Handler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.FeedbackStatusUpdate
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	fb, err := h.feedback.Triage(r.Context(), id, mux.Vars(r)["id"], in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": fb}))
}

func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	if err := h.feedback.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "Feedback deleted successfully"}))
}
