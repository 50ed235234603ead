package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// SavingsHandler manages savings pots and monthly saving plans. When the
// ledger runs at a deficit the shortfall is deducted from the primary pot
// in the returned view; stored amounts are never mutated by spending.
type SavingsHandler struct {
	savings      *model.SavingStore
	transactions services.TransactionReader
	currency     services.CurrencyService
	baseCurrency string
	reports      services.ReportService
}

func NewSavingsHandler(
	savings *model.SavingStore,
	transactions services.TransactionReader,
	currency services.CurrencyService,
	baseCurrency string,
	reports services.ReportService,
) *SavingsHandler {
	return &SavingsHandler{
		savings:      savings,
		transactions: transactions,
		currency:     currency,
		baseCurrency: baseCurrency,
		reports:      reports,
	}
}

type savingView struct {
	models.Saving
	EffectiveAmount float64 `json:"effective_amount"`
}

type savingsListResponse struct {
	Savings []savingView        `json:"savings"`
	Plans   []models.SavingPlan `json:"plans"`
	Total   float64             `json:"total"`
}

// HandleList returns all pots and plans. The primary pot's effective
// amount absorbs any ledger deficit, floored at zero.
func (h *SavingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context())

	savings, err := h.savings.ListByUser(r.Context(), userID)
	if err != nil {
		log.Error("Failed to list savings", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load savings", http.StatusInternalServerError)
		return
	}
	plans, err := h.savings.ListPlansByUser(r.Context(), userID)
	if err != nil {
		log.Error("Failed to list saving plans", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load savings", http.StatusInternalServerError)
		return
	}

	deficit := h.ledgerDeficit(r, userID)

	resp := savingsListResponse{Savings: []savingView{}, Plans: plans}
	if resp.Plans == nil {
		resp.Plans = []models.SavingPlan{}
	}
	for _, sv := range savings {
		view := savingView{Saving: sv, EffectiveAmount: sv.Amount}
		if sv.IsPrimary && deficit > 0 {
			view.EffectiveAmount = math.Max(0, sv.Amount-deficit)
		}
		view.EffectiveAmount = utils.RoundFloat(view.EffectiveAmount, 2)
		resp.Total += view.EffectiveAmount
		resp.Savings = append(resp.Savings, view)
	}
	resp.Total = utils.RoundFloat(resp.Total, 2)

	utils.SendJSONResponse(w, resp, http.StatusOK)
}

// ledgerDeficit returns how far expenses exceed income in the base
// currency, 0 when the ledger is balanced or in surplus. Errors degrade
// to no deduction.
func (h *SavingsHandler) ledgerDeficit(r *http.Request, userID string) float64 {
	txs, err := h.transactions.ListByUser(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Deficit calculation skipped", "userID", userID, "error", err)
		return 0
	}
	var balance float64
	for _, t := range txs {
		amt := h.currency.Convert(t.Amount, t.Currency, h.baseCurrency)
		if t.Type == models.TypeIncome {
			balance += amt
		} else {
			balance -= amt
		}
	}
	if balance >= 0 {
		return 0
	}
	return -balance
}

type savingRequest struct {
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsPrimary   bool    `json:"is_primary"`
}

func (req *savingRequest) validate() error {
	if err := validation.ValidateStringNotEmpty(req.Source, "source"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Source, validation.MaxNameLength, "source"); err != nil {
		return err
	}
	return validation.ValidateAmount(req.Amount)
}

func (h *SavingsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req savingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	saving := &models.Saving{
		UserID:      userID,
		Source:      validation.CleanUserText(req.Source),
		Amount:      utils.RoundFloat(req.Amount, 2),
		Description: validation.CleanUserText(req.Description),
		IsPrimary:   req.IsPrimary,
	}
	if err := h.savings.Insert(r.Context(), saving); err != nil {
		logger.FromContext(r.Context()).Error("Failed to insert saving", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the savings entry", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, saving, http.StatusCreated)
}

func (h *SavingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	var req savingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	saving := &models.Saving{
		ID:          id,
		UserID:      userID,
		Source:      validation.CleanUserText(req.Source),
		Amount:      utils.RoundFloat(req.Amount, 2),
		Description: validation.CleanUserText(req.Description),
		IsPrimary:   req.IsPrimary,
	}
	if err := h.savings.Update(r.Context(), saving); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "savings entry not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update saving", "userID", userID, "savingID", id, "error", err)
		utils.SendJSONError(w, "failed to update the savings entry", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, saving, http.StatusOK)
}

func (h *SavingsHandler) HandleSetPrimary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.savings.SetPrimary(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "savings entry not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to set primary saving", "userID", userID, "savingID", id, "error", err)
		utils.SendJSONError(w, "failed to update the savings entry", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, map[string]string{"status": "updated"}, http.StatusOK)
}

func (h *SavingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.savings.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "savings entry not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete saving", "userID", userID, "savingID", id, "error", err)
		utils.SendJSONError(w, "failed to delete the savings entry", http.StatusInternalServerError)
		return
	}
	h.reports.InvalidateUserCache(userID)

	utils.SendJSONResponse(w, map[string]string{"status": "deleted"}, http.StatusOK)
}

type savingPlanRequest struct {
	GoalName     string  `json:"goal_name"`
	TargetAmount float64 `json:"target_amount"`
	Month        string  `json:"month"`
}

func (h *SavingsHandler) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req savingPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.GoalName, "goal_name"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateAmount(req.TargetAmount); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan := &models.SavingPlan{
		UserID:       userID,
		GoalName:     validation.CleanUserText(req.GoalName),
		TargetAmount: utils.RoundFloat(req.TargetAmount, 2),
		Month:        validation.CleanUserText(req.Month),
	}
	if err := h.savings.InsertPlan(r.Context(), plan); err != nil {
		logger.FromContext(r.Context()).Error("Failed to insert saving plan", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to save the plan", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, plan, http.StatusCreated)
}

func (h *SavingsHandler) HandleTogglePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.savings.TogglePlan(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "plan not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to toggle saving plan", "userID", userID, "planID", id, "error", err)
		utils.SendJSONError(w, "failed to update the plan", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, map[string]string{"status": "updated"}, http.StatusOK)
}

func (h *SavingsHandler) HandleDeletePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.savings.DeletePlan(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "plan not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete saving plan", "userID", userID, "planID", id, "error", err)
		utils.SendJSONError(w, "failed to delete the plan", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
