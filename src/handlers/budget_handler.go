package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// BudgetHandler manages per-category monthly spending limits. Setting a
// budget for a category that already has one replaces it.
type BudgetHandler struct {
	budgets    *model.BudgetStore
	categories *model.CategoryStore
	reports    services.ReportService
}

func NewBudgetHandler(budgets *model.BudgetStore, categories *model.CategoryStore, reports services.ReportService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, categories: categories, reports: reports}
}

func (h *BudgetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	budgets, err := h.budgets.ListByUser(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list budgets", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load budgets", http.StatusInternalServerError)
		return
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}
	utils.SendJSONResponse(w, budgets, http.StatusOK)
}

type upsertBudgetRequest struct {
	CategoryID  string  `json:"category_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (h *BudgetHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req upsertBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.CategoryID, "category_id"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateAmount(req.Amount); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	category, err := h.categories.Get(r.Context(), userID, req.CategoryID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "category not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to look up category", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the budget", http.StatusInternalServerError)
		return
	}
	if category.Type != models.TypeExpense {
		utils.SendJSONError(w, "budgets can only be set on expense categories", http.StatusBadRequest)
		return
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Amount:      utils.RoundFloat(req.Amount, 2),
		Period:      "monthly",
		Description: validation.CleanUserText(req.Description),
	}
	if err := h.budgets.Upsert(r.Context(), budget); err != nil {
		logger.FromContext(r.Context()).Error("Failed to upsert budget", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the budget", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, budget, http.StatusOK)
}

func (h *BudgetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.budgets.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "budget not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete budget", "userID", userID, "budgetID", id, "error", err)
		utils.SendJSONError(w, "failed to delete the budget", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
