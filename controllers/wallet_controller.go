package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"codeduel_server/middleware"
	"codeduel_server/models"
)

// walletOperations is the slice of services.WalletService the controller
// uses.
type walletOperations interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	Credit(ctx context.Context, userID string, amount int, description string) (int, error)
	Debit(ctx context.Context, userID string, amount int, description string) (int, error)
	GetTransactions(ctx context.Context, userID string, limit int32) ([]models.Transaction, error)
}

// WalletController exposes balance reads, balance updates and
// transaction-history reads.
type WalletController struct {
	Wallet walletOperations
}

// NewWalletController creates a new WalletController instance
func NewWalletController(wallet walletOperations) *WalletController {
	return &WalletController{Wallet: wallet}
}

// GetBalance returns the authenticated user's coin balance.
func (wc *WalletController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	balance, err := wc.Wallet.GetBalance(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"balance": balance,
	})
}

type updateBalanceRequest struct {
	Amount int    `json:"amount"`
	Type   string `json:"type"`
}

// UpdateBalance credits or debits the authenticated user's wallet, writing a
// ledger entry alongside the balance change.
func (wc *WalletController) UpdateBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req updateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var balance int
	var err error
	switch req.Type {
	case models.TransactionTypeCredit:
		balance, err = wc.Wallet.Credit(r.Context(), userID, req.Amount, "Deposit")
	case models.TransactionTypeDebit:
		balance, err = wc.Wallet.Debit(r.Context(), userID, req.Amount, "Withdrawal")
	default:
		http.Error(w, "type must be credit or debit", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"balance": balance,
	})
}

// GetTransactions returns the authenticated user's recent ledger entries.
func (wc *WalletController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := int32(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}

	transactions, err := wc.Wallet.GetTransactions(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"transactions": transactions,
	})
}
