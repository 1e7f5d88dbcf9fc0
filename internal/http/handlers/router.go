package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/achi131830/transaction-tracker-postgres/internal/auth"
	"github.com/achi131830/transaction-tracker-postgres/internal/http/respond"
	"github.com/achi131830/transaction-tracker-postgres/internal/metrics"
	"github.com/achi131830/transaction-tracker-postgres/internal/middleware"
	"github.com/achi131830/transaction-tracker-postgres/internal/service"
)

// NewRouter wires all routes and middleware.
func NewRouter(ledger *service.Ledger, authenticator auth.Authenticator, tokens *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.Logging)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	authHandler := NewAuthHandler(authenticator, tokens)
	r.HandleFunc("/api/auth/register", authHandler.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.handleLogin).Methods(http.MethodPost)

	// Everything below requires a valid bearer token.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireAuth(tokens))

	api.HandleFunc("/auth/me", authHandler.handleMe).Methods(http.MethodGet)

	ledgerHandler := NewLedgerHandler(ledger)
	api.HandleFunc("/transactions", ledgerHandler.handleOverview).Methods(http.MethodGet)
	api.HandleFunc("/transactions", ledgerHandler.handleAdd).Methods(http.MethodPost)
	api.HandleFunc("/transactions", ledgerHandler.handleDeleteAll).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/query", ledgerHandler.handleQuery).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}/category", ledgerHandler.handleUpdateCategory).Methods(http.MethodPatch)
	api.HandleFunc("/transactions/{id}", ledgerHandler.handleDelete).Methods(http.MethodDelete)

	api.HandleFunc("/budget", ledgerHandler.handleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budget", ledgerHandler.handleSetBudget).Methods(http.MethodPut)

	api.HandleFunc("/analysis", ledgerHandler.handleAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/analysis/partner", ledgerHandler.handlePartnerAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/categories/{name}", ledgerHandler.handleCategory).Methods(http.MethodGet)

	api.HandleFunc("/partner", ledgerHandler.handlePairingStatus).Methods(http.MethodGet)
	api.HandleFunc("/partner", ledgerHandler.handleRequestPairing).Methods(http.MethodPost)
	api.HandleFunc("/partner", ledgerHandler.handleUnpair).Methods(http.MethodDelete)
	api.HandleFunc("/partner/split", ledgerHandler.handleSplit).Methods(http.MethodPost)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "ok", nil)
}
