package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// ReportHandler serves the dashboard summary and yearly reports.
type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	summary, err := h.reports.DashboardSummary(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to build dashboard summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to load the dashboard", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, summary, http.StatusOK)
}

// HandleYearlyReport serves GET /api/reports?year=YYYY, defaulting to the
// current year.
func (h *ReportHandler) HandleYearlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1970 || parsed > 9999 {
			utils.SendJSONError(w, "year must be a four-digit number", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	report, err := h.reports.YearlyReport(r.Context(), userID, year)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to build yearly report", "userID", userID, "year", year, "error", err)
		utils.SendJSONError(w, "failed to load the report", http.StatusInternalServerError)
		return
	}
	utils.SendJSONResponse(w, report, http.StatusOK)
}
