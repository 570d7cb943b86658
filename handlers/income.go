package handlers

import (
	"net/http"

	"farmfinance/backend/models"

	"github.com/gorilla/mux"
)

func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	filter, err := incomeFilter(r.URL.Query(), h.reporter.Location())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.ledger.ListIncomes(r.Context(), id, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{
		"count":      len(page.Items),
		"total":      page.Total,
		"pagination": models.NewPagination(page.Query, page.Total),
		"data":       page.Items,
	}))
}

func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.IncomeInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	i, err := h.ledger.CreateIncome(r.Context(), id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ok(envelope{"data": i}))
}

func (h *Handler) GetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	i, err := h.ledger.GetIncome(r.Context(), id, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": i}))
}

func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.IncomeInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	i, err := h.ledger.UpdateIncome(r.Context(), id, mux.Vars(r)["id"], in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": i}))
}

func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.ledger.DeleteIncome(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": envelope{}}))
}
