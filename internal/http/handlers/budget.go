package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/models"
)

// handleGetBudget returns the budget standing for the requested month
// (default: current month).
func (h *LedgerHandler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format(models.MonthLayout)
	}
	month, ok := normalizeMonth(month)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	status, err := h.ledger.BudgetStatus(r.Context(), userID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toBudgetStatusResponse(status))
}

// handleSetBudget upserts the month's spending limit.
func (h *LedgerHandler) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	month, ok := normalizeMonth(req.Month)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	limit, err := decimal.NewFromString(req.Limit)
	if err != nil || limit.IsNegative() {
		respond.Error(w, http.StatusBadRequest, "limit must be a non-negative number")
		return
	}

	status, err := h.ledger.SetBudget(r.Context(), userID, month, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "budget saved", toBudgetStatusResponse(status))
}

// normalizeMonth pads single-digit months so "2024-5" and "2024-05" key
// the same budget row.
func normalizeMonth(month string) (string, bool) {
	parts := strings.Split(month, "-")
	if len(parts) != 2 {
		return "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 || len(parts[0]) != 4 {
		return "", false
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d", parts[0], m), true
}

func toBudgetStatusResponse(status *models.BudgetStatus) budgetStatusResponse {
	return budgetStatusResponse{
		Month:      status.Month,
		Spent:      status.Spent.String(),
		Limit:      decimalString(status.Limit),
		OverBudget: status.OverBudget,
	}
}
