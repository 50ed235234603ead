package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// AnomalyHandler surfaces flagged spending and records dismissals.
type AnomalyHandler struct {
	anomalies services.AnomalyService
}

func NewAnomalyHandler(anomalies services.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{anomalies: anomalies}
}

func (h *AnomalyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	flags, err := h.anomalies.DetectAnomalies(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Anomaly detection failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to analyze spending", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, flags, http.StatusOK)
}

// HandleDismiss marks one flagged transaction as reviewed so it stops
// appearing in the anomaly list.
func (h *AnomalyHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	transactionID := chi.URLParam(r, "id")

	if err := h.anomalies.DismissAnomaly(r.Context(), userID, transactionID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			utils.SendJSONError(w, "transaction not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to dismiss anomaly", "userID", userID, "transactionID", transactionID, "error", err)
		utils.SendJSONError(w, "failed to dismiss the anomaly", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, map[string]string{"status": "dismissed"}, http.StatusOK)
}
