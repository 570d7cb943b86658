package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"farmfinance/backend/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	summary, err := h.reporter.Summary(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": summary}))
}

// DashboardMonthly returns the twelve months of the requested year, January first.
func (h *Handler) DashboardMonthly(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	year := reports.ResolveYear(r.URL.Query().Get("year"), h.reporter.Now())
	months, err := h.reporter.Monthly(r.Context(), id.UserID, year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": months}))
}

func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	summary, err := h.reporter.FinancialSummary(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": summary}))
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	stats, err := h.reporter.DashboardStats(r.Context(), id.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ok(envelope{"data": stats}))
}

// ExportDashboard streams the caller's year as an .xlsx workbook. The workbook
// is built in memory first so a failure can still be reported as JSON.
func (h *Handler) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	year := reports.ResolveYear(r.URL.Query().Get("year"), h.reporter.Now())
	var buf bytes.Buffer
	if err := h.reporter.ExportYear(r.Context(), id.UserID, year, &buf); err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.ExportFilename(year)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
