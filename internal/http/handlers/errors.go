package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/pairing"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// writeError maps domain errors onto HTTP statuses with actionable
// messages. Raw persistence errors never reach the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pairing.ErrSelfPairing):
		respond.Error(w, http.StatusBadRequest, "invalid target: you cannot pair with yourself")
	case errors.Is(err, service.ErrInvalidRange):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pairing.ErrPartnerNotFound):
		respond.Error(w, http.StatusNotFound, "partner not found")
	case errors.Is(err, pairing.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, pairing.ErrNotPaired):
		respond.Error(w, http.StatusConflict, "no confirmed mutual pairing: both partners must add each other first")
	case errors.Is(err, pairing.ErrPartialUnpair):
		slog.Error("Unpair applied partially", "error", err)
		respond.Error(w, http.StatusInternalServerError, "unpair was only partially applied; retry to fully sever the link")
	default:
		slog.Error("Request failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
