package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/metrics"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
)

// handlePairingStatus returns the derived pairing view: the stored
// pointer (dangling reads as unset) and whether the link is mutual.
func (h *LedgerHandler) handlePairingStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, err := h.ledger.Pairing().Status(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pairingStatusResponse{
		UserID:    status.UserID,
		PartnerID: status.PartnerID,
		Mutual:    status.Mutual,
	})
}

// handleRequestPairing points the requester at the named partner. The
// link becomes mutual only once the partner requests the user back.
func (h *LedgerHandler) handleRequestPairing(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req pairingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.ledger.Pairing().RequestPairing(r.Context(), userID, req.PartnerID)
	if err != nil {
		metrics.PairingRequests.WithLabelValues("rejected").Inc()
		writeError(w, err)
		return
	}

	outcome := "pending"
	if result.Mutual {
		outcome = "mutual"
	}
	metrics.PairingRequests.WithLabelValues(outcome).Inc()

	respond.JSON(w, http.StatusOK, result.Message, pairingStatusResponse{
		UserID:    userID,
		PartnerID: result.PartnerID,
		Mutual:    result.Mutual,
		Message:   result.Message,
	})
}

// handleUnpair severs the link from both ends, mutual or not.
func (h *LedgerHandler) handleUnpair(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.ledger.Pairing().Unpair(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "unpaired", nil)
}

// handleSplit records a shared expense split 50/50 with the partner.
// Semantics are identical to adding a transaction with
// split_with_partner set.
func (h *LedgerHandler) handleSplit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req splitRequest
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
		SplitWithPartner: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.SplitsRecorded.Inc()

	respond.JSON(w, http.StatusCreated, "split recorded", toTransactionResponses(txns))
}
