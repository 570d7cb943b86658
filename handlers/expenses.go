package handlers

import (
	"net/http"

	"farmfinance/backend/models"

	"github.com/gorilla/mux"
)

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	filter, err := expenseFilter(r.URL.Query(), h.reporter.Location())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := h.ledger.ListExpenses(r.Context(), id, filter)
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

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.ledger.CreateExpense(r.Context(), id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ok(envelope{"data": e}))
}

// ExpenseStats returns category totals plus today, this month and recurring figures.
func (h *Handler) ExpenseStats(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	stats, err := h.reporter.ExpenseStats(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": stats}))
}

func (h *Handler) ExpensesByDateRange(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	start, end, err := dateRangeParams(r.URL.Query(), h.reporter.Location())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	expenses, err := h.ledger.ExpensesBetween(r.Context(), id, start, end)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(expenses), "data": expenses}))
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.ledger.GetExpense(r.Context(), id, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": e}))
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in models.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.ledger.UpdateExpense(r.Context(), id, mux.Vars(r)["id"], in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": e}))
}

// UpdateExpenseStatus changes only the status of an expense.
func (h *Handler) UpdateExpenseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.ledger.SetExpenseStatus(r.Context(), id, mux.Vars(r)["id"], body.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": e}))
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.ledger.DeleteExpense(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "Expense deleted successfully"}))
}
