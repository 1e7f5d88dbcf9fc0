package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/metrics"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
)

// LedgerHandler owns the transaction, budget, and analysis endpoints.
type LedgerHandler struct {
	ledger *service.Ledger
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(ledger *service.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// handleOverview returns the full ledger with the current month's budget
// standing.
func (h *LedgerHandler) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.ledger.Overview(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toLedgerViewResponse(view))
}

// handleAdd records a new transaction, optionally split with the partner.
func (h *LedgerHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		respond.Error(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	txns, err := h.ledger.AddTransaction(r.Context(), userID, service.AddTransactionInput{
		Date:             req.Date,
		Description:      req.Description,
		Amount:           amount,
		Category:         req.Category,
		Shared:           req.Shared,
		SplitWithPartner: req.SplitWithPartner,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if req.SplitWithPartner {
		metrics.SplitsRecorded.Inc()
	}

	respond.JSON(w, http.StatusCreated, "recorded", toTransactionResponses(txns))
}

// handleQuery returns the entries of a period with the budget standing of
// the period's month.
func (h *LedgerHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Range == service.RangeCustom {
		if !validDate(req.Start) || !validDate(req.End) {
			respond.Error(w, http.StatusBadRequest, "custom range needs start and end as YYYY-MM-DD")
			return
		}
	}

	view, err := h.ledger.Query(r.Context(), userID, req.Range, req.Start, req.End)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toLedgerViewResponse(view))
}

// handleUpdateCategory reassigns one entry's category. A non-blank custom
// label wins over the preset selection.
func (h *LedgerHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	txnID := mux.Vars(r)["id"]

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	category := strings.TrimSpace(req.CustomCategory)
	if category == "" {
		category = req.Category
	}

	if err := h.ledger.UpdateCategory(r.Context(), userID, txnID, category); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "category updated", nil)
}

// handleDelete removes one entry.
func (h *LedgerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	txnID := mux.Vars(r)["id"]

	if err := h.ledger.Delete(r.Context(), userID, txnID); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "deleted", nil)
}

// handleDeleteAll removes every entry owned by the user.
func (h *LedgerHandler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.ledger.DeleteAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "all transactions deleted", nil)
}

func toLedgerViewResponse(view *service.LedgerView) ledgerViewResponse {
	return ledgerViewResponse{
		Transactions: toTransactionResponses(view.Transactions),
		Total:        view.Total.String(),
		Month:        view.Month,
		Limit:        decimalString(view.Limit),
		OverBudget:   view.OverBudget,
	}
}

func validDate(date string) bool {
	_, err := time.Parse(models.DateLayout, date)
	return err == nil
}
