package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/utils"
)

// CategoryHandler lists the shared default categories plus the user's own,
// and lets the user add custom ones.
type CategoryHandler struct {
	categories *model.CategoryStore
}

func NewCategoryHandler(categories *model.CategoryStore) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// HandleList serves the user's categories. "?type=expense" narrows the
// list to expense categories, which is what the budget form needs.
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var categories []models.Category
	var err error
	switch r.URL.Query().Get("type") {
	case "":
		categories, err = h.categories.ListForUser(r.Context(), userID)
	case string(models.TypeExpense):
		categories, err = h.categories.ListExpenseForUser(r.Context(), userID)
	default:
		utils.SendJSONError(w, "type filter must be empty or 'expense'", http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list categories", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	utils.SendJSONResponse(w, categories, http.StatusOK)
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	name := validation.CleanUserText(req.Name)
	if err := validation.ValidateStringNotEmpty(name, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(name, validation.MaxNameLength, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTransactionType(req.Type); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	category := &models.Category{
		Name:   name,
		Type:   models.TransactionType(req.Type),
		UserID: userID,
	}
	if err := h.categories.Insert(r.Context(), category); err != nil {
		logger.FromContext(r.Context()).Error("Failed to insert category", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the category", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, category, http.StatusCreated)
}
