package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/pennywise/backend/src/config"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/parsers"
	"github.com/username/pennywise/backend/src/security/validation"
	"github.com/username/pennywise/backend/src/services"
	"github.com/username/pennywise/backend/src/utils"
)

// ImportHandler exposes the statement-import pipeline over HTTP.
type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// HandleUpload stages an uploaded statement and returns the unique and
// duplicate partitions for review. Nothing is persisted until the
// confirmation call.
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context())

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("failed to read upload or file too large (max %d MB)",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Upload request missing file field", "userID", userID, "error", err)
		utils.SendJSONError(w, "a statement file is required in the 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("file too large, max %d MB",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateStatementContent(file); err != nil {
		log.Warn("Statement content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info("Processing statement upload", "userID", userID, "filename", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.importService.RunImport(r.Context(), userID, file, clientContentType)
	if err != nil {
		switch {
		case errors.Is(err, parsers.ErrUnsupportedFormat):
			utils.SendJSONError(w, "this file format is not supported; please upload a CSV statement", http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, "could not parse the statement; please check the file and try again", http.StatusBadRequest)
		case errors.Is(err, services.ErrNoTransactionsFound):
			utils.SendJSONError(w, "no transactions were found in the statement", http.StatusUnprocessableEntity)
		default:
			log.Error("Statement import failed", "userID", userID, "error", err)
			utils.SendJSONError(w, "failed to process the statement", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSONResponse(w, result, http.StatusOK)
}

type confirmImportRequest struct {
	SessionID  string                   `json:"session_id"`
	Selections []models.ImportSelection `json:"selections"`
}

type confirmImportResponse struct {
	ImportedCount int `json:"imported_count"`
}

// HandleConfirm persists the selected rows of a previously staged import.
func (h *ImportHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req confirmImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		utils.SendJSONError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	imported, err := h.importService.ConfirmImport(r.Context(), userID, req.SessionID, req.Selections)
	if err != nil {
		if errors.Is(err, services.ErrImportSessionExpired) {
			utils.SendJSONError(w, "import session expired; please upload the statement again", http.StatusGone)
			return
		}
		logger.FromContext(r.Context()).Error("Import confirmation failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "failed to confirm the import", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, confirmImportResponse{ImportedCount: imported}, http.StatusOK)
}
