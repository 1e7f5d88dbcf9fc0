package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
)

// validate is the shared request validator.
var validate = validator.New()

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type addTransactionRequest struct {
	Date             string `json:"date" validate:"required"`
	Description      string `json:"description" validate:"required"`
	Amount           string `json:"amount" validate:"required"`
	Category         string `json:"category"`
	Shared           bool   `json:"shared"`
	SplitWithPartner bool   `json:"split_with_partner"`
}

type queryRequest struct {
	Range string `json:"range" validate:"required,oneof=week month year custom"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type updateCategoryRequest struct {
	Category       string `json:"category"`
	CustomCategory string `json:"custom_category"`
}

type setBudgetRequest struct {
	Month string `json:"month" validate:"required"`
	Limit string `json:"limit" validate:"required"`
}

type pairingRequest struct {
	PartnerID string `json:"partner_id" validate:"required"`
}

type splitRequest struct {
	Date        string `json:"date" validate:"required"`
	Description string `json:"description" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	IsShared    bool   `json:"is_shared"`
}

type ledgerViewResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        string                `json:"total"`
	Month        string                `json:"month"`
	Limit        *string               `json:"limit"`
	OverBudget   bool                  `json:"over_budget"`
}

type budgetStatusResponse struct {
	Month      string  `json:"month"`
	Spent      string  `json:"spent"`
	Limit      *string `json:"limit"`
	OverBudget bool    `json:"over_budget"`
}

type categoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type pairingStatusResponse struct {
	UserID    string `json:"user_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Mutual    bool   `json:"mutual"`
	Message   string `json:"message,omitempty"`
}

func toTransactionResponse(txn models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          txn.ID,
		UserID:      txn.UserID,
		Date:        txn.Date,
		Description: txn.Description,
		Amount:      txn.Amount.String(),
		Category:    txn.Category,
		IsShared:    txn.IsShared,
	}
}

func toTransactionResponses(txns []models.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txns))
	for i, txn := range txns {
		out[i] = toTransactionResponse(txn)
	}
	return out
}

func toCategoryTotalResponses(totals []models.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, len(totals))
	for i, ct := range totals {
		out[i] = categoryTotalResponse{Category: ct.Category, Total: ct.Total.String()}
	}
	return out
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
