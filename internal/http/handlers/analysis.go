package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
)

// handleAnalysis returns the user's per-category totals, optionally
// bounded by ?start and ?end.
func (h *LedgerHandler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	start, end, ok := rangeParams(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "start and end must both be YYYY-MM-DD or both absent")
		return
	}

	totals, err := h.ledger.Analysis(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toCategoryTotalResponses(totals))
}

// handlePartnerAnalysis returns per-category totals over both paired
// users' shared entries.
func (h *LedgerHandler) handlePartnerAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	totals, err := h.ledger.PartnerAnalysis(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toCategoryTotalResponses(totals))
}

// handleCategory returns the entries behind one analysis slice.
// ?from=partner scopes to the shared ledger of both paired users.
func (h *LedgerHandler) handleCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	category := mux.Vars(r)["name"]

	start, end, ok := rangeParams(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "start and end must both be YYYY-MM-DD or both absent")
		return
	}

	scope := service.ScopeSelf
	if r.URL.Query().Get("from") == service.ScopePartner {
		scope = service.ScopePartner
	}

	txns, err := h.ledger.CategoryTransactions(r.Context(), userID, category, scope, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", toTransactionResponses(txns))
}

// rangeParams reads the optional ?start/?end pair; both or neither must
// be present and well-formed.
func rangeParams(r *http.Request) (start, end string, ok bool) {
	start = r.URL.Query().Get("start")
	end = r.URL.Query().Get("end")
	if start == "" && end == "" {
		return "", "", true
	}
	if !validDate(start) || !validDate(end) {
		return "", "", false
	}
	return start, end, true
}
