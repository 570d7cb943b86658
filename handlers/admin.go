package handlers

import (
	"encoding/json"
	"net/http"

	"farmfinance/backend/models"
	"farmfinance/backend/reports"

	"github.com/gorilla/mux"
)

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.SystemStats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"stats": stats}))
}

// AdminMonthly returns income and expense totals for every user, by month.
func (h *Handler) AdminMonthly(w http.ResponseWriter, r *http.Request) {
	year := reports.ResolveYear(r.URL.Query().Get("year"), h.reporter.Now())
	months, err := h.reporter.AdminMonthly(r.Context(), year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"monthlyData": months}))
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(users), "users": users}))
}

func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.users.Detail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"user": detail.User, "finances": detail.Finances}))
}

func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var patch models.AdminUserUpdate
	if err := decodeJSON(r, &patch); err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.users.AdminUpdate(r.Context(), id, mux.Vars(r)["id"], patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"user": user}))
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if _, err := h.users.Delete(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "User deleted successfully"}))
}

func (h *Handler) AdminListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.ledger.AllExpenses(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(expenses), "expenses": expenses}))
}

func (h *Handler) AdminListIncome(w http.ResponseWriter, r *http.Request) {
	incomes, err := h.ledger.AllIncomes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"count": len(incomes), "income": incomes}))
}

func (h *Handler) AdminDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.ledger.AdminDeleteExpense(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "Expense deleted successfully"}))
}

func (h *Handler) AdminDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.ledger.AdminDeleteIncome(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "Income deleted successfully"}))
}

// AdminSettings returns every setting grouped by category.
func (h *Handler) AdminSettings(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.settings.Grouped(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"settings": grouped}))
}

func (h *Handler) AdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var body struct {
		Settings json.RawMessage `json:"settings"`
	}
	if err := decodeJSON(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	var updates []models.SettingUpdate
	if len(body.Settings) == 0 || body.Settings[0] != '[' || json.Unmarshal(body.Settings, &updates) != nil {
		h.respondError(w, r, models.NewError(models.ErrBadRequest, "Invalid settings format. Expected an array of settings."))
		return
	}

	updated, err := h.settings.Update(r.Context(), id.UserID, updates)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"message": "Settings updated successfully", "updated": updated}))
}
