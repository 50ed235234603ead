package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// TransactionHandler manages a user's transaction ledger.
type TransactionHandler struct {
	transactions  *model.TransactionStore
	users         *model.UserStore
	currency      services.CurrencyService
	budgetWatcher *services.BudgetWatcher
	reports       services.ReportService
}

func NewTransactionHandler(
	transactions *model.TransactionStore,
	users *model.UserStore,
	currency services.CurrencyService,
	budgetWatcher *services.BudgetWatcher,
	reports services.ReportService,
) *TransactionHandler {
	return &TransactionHandler{
		transactions:  transactions,
		users:         users,
		currency:      currency,
		budgetWatcher: budgetWatcher,
		reports:       reports,
	}
}

// HandleList returns all of the user's transactions, with each amount
// additionally converted to the user's preferred display currency.
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	txs, err := h.transactions.ListByUser(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}

	displayCurrency := "USD"
	if user, err := h.users.Get(r.Context(), userID); err == nil && user.Currency != "" {
		displayCurrency = user.Currency
	}
	for i := range txs {
		txs[i].ConvertedAmount = utils.RoundFloat(
			h.currency.Convert(txs[i].Amount, txs[i].Currency, displayCurrency), 2)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	utils.SendJSONResponse(w, map[string]any{
		"currency":     displayCurrency,
		"transactions": txs,
	}, http.StatusOK)
}

type transactionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id"`
	ReceiptURL  string  `json:"receipt_url"`
}

func (req *transactionRequest) validate() error {
	if err := validation.ValidateAmount(req.Amount); err != nil {
		return err
	}
	if err := validation.ValidateCurrencyCode(req.Currency); err != nil {
		return err
	}
	if err := validation.ValidateTransactionType(req.Type); err != nil {
		return err
	}
	if err := validation.ValidateStringNotEmpty(req.Date, "date"); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	if err := validation.ValidateStringMaxLength(req.ReceiptURL, validation.MaxDescriptionLength, "receipt_url"); err != nil {
		return err
	}
	return validation.ValidateStringMaxLength(req.Description, validation.MaxDescriptionLength, "description")
}

type transactionResponse struct {
	Transaction    *models.Transaction `json:"transaction"`
	BudgetExceeded bool                `json:"budget_exceeded"`
}

// HandleCreate stores one manually entered transaction and reports
// whether it blew the category's monthly budget.
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := &models.Transaction{
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Type:        models.TransactionType(req.Type),
		Date:        req.Date,
		Description: validation.CleanUserText(req.Description),
		CategoryID:  req.CategoryID,
		ReceiptURL:  strings.TrimSpace(req.ReceiptURL),
	}
	if err := h.transactions.Insert(r.Context(), tx); err != nil {
		logger.FromContext(r.Context()).Error("Failed to insert transaction", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the transaction", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	exceeded := false
	if tx.Type == models.TypeExpense {
		over, _, err := h.budgetWatcher.CheckOverrun(r.Context(), userID, tx.CategoryID, tx.Date)
		if err != nil {
			logger.FromContext(r.Context()).Warn("Budget check failed", "userID", userID, "error", err)
		}
		exceeded = over
	}

	utils.SendJSONResponse(w, transactionResponse{Transaction: tx, BudgetExceeded: exceeded}, http.StatusCreated)
}

// HandleUpdate overwrites a transaction's editable fields.
func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := &models.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Type:        models.TransactionType(req.Type),
		Date:        req.Date,
		Description: validation.CleanUserText(req.Description),
		CategoryID:  req.CategoryID,
		ReceiptURL:  strings.TrimSpace(req.ReceiptURL),
	}
	if err := h.transactions.Update(r.Context(), tx); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "transaction not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "failed to update the transaction", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, tx, http.StatusOK)
}

// HandleDelete removes a transaction owned by the user.
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.transactions.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "transaction not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete transaction", "userID", userID, "transactionID", id, "error", err)
		utils.SendJSONError(w, "failed to delete the transaction", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
