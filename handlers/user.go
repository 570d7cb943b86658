package handlers

import (
	"net/http"

	"farmfinance/backend/models"
	"farmfinance/backend/services"

	"github.com/gorilla/mux"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profile(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": user}))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.updateProfile(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": user}))
}

// MonthlyFinancial returns the month-by-month detail of one user, newest
// month first. Only that user and admins may read it.
func (h *Handler) MonthlyFinancial(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	owner := mux.Vars(r)["userId"]
	if !services.CanViewOwner(id, owner) {
		h.respondError(w, r, models.NewError(models.ErrForbidden, "Not authorized to access this data"))
		return
	}

	months, err := h.reporter.MonthlyFinancial(r.Context(), owner)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(months), "data": months}))
}
