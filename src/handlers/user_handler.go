package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// UserHandler manages the profile fields this service owns: display name,
// email, and the preferred display currency.
type UserHandler struct {
	users   *model.UserStore
	reports services.ReportService
}

func NewUserHandler(users *model.UserStore, reports services.ReportService) *UserHandler {
	return &UserHandler{users: users, reports: reports}
}

func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to load user", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load the profile", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, user, http.StatusOK)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	name := validation.CleanUserText(req.Name)
	email := strings.TrimSpace(req.Email)
	if err := validation.ValidateStringNotEmpty(name, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(name, validation.MaxNameLength, "name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(email, "email"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateProfile(r.Context(), userID, name, email); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update profile", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to update the profile", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, map[string]string{"status": "updated"}, http.StatusOK)
}

type updateCurrencyRequest struct {
	Currency string `json:"currency"`
}

// HandleUpdateCurrency changes the currency every listing and report is
// converted into for this user.
func (h *UserHandler) HandleUpdateCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req updateCurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateCurrencyCode(req.Currency); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateCurrency(r.Context(), userID, req.Currency); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update currency preference", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to update the currency", http.StatusInternalServerError)
		return
	}
	// Cached aggregates are denominated in the old currency.
	h.reports.InvalidateUserCache(userID)
	utils.SendJSONResponse(w, map[string]string{"status": "updated", "currency": strings.ToUpper(req.Currency)}, http.StatusOK)
}
