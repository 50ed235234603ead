package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/pennywise/backend/src/config"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/services"
)

type fakeImportService struct {
	result     *models.ImportResult
	runErr     error
	confirmErr error
	confirmed  int
}

func (f *fakeImportService) RunImport(_ context.Context, _ string, _ io.Reader, _ string) (*models.ImportResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.result, nil
}

func (f *fakeImportService) ConfirmImport(_ context.Context, _, _ string, _ []models.ImportSelection) (int, error) {
	if f.confirmErr != nil {
		return 0, f.confirmErr
	}
	return f.confirmed, nil
}

func init() {
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 1024 * 1024}
}

func multipartUpload(t *testing.T, filename, contentType, body string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, svc services.ImportService, fileContentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	buf, formContentType := multipartUpload(t, "statement.csv", fileContentType, body)
	req := httptest.NewRequest(http.MethodPost, "/api/import", buf)
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set(UserIDHeader, "user-1")

	rec := httptest.NewRecorder()
	RequireUser(http.HandlerFunc(NewImportHandler(svc).HandleUpload)).ServeHTTP(rec, req)
	return rec
}

const csvBody = "Date,Description,Amount\n2025-06-01,Coffee,-5.75\n"

func TestHandleUpload_Success(t *testing.T) {
	svc := &fakeImportService{result: &models.ImportResult{
		SessionID: "session-1",
		UniqueTransactions: []models.StagedTransaction{
			{Date: "2025-06-01", Description: "Coffee", Amount: 5.75, Type: models.TypeExpense},
		},
		Duplicates: []models.StagedTransaction{},
	}}

	rec := uploadRequest(t, svc, "text/csv", csvBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "session-1", result.SessionID)
	assert.Len(t, result.UniqueTransactions, 1)
}

func TestHandleUpload_RejectsDisallowedContentType(t *testing.T) {
	rec := uploadRequest(t, &fakeImportService{}, "application/pdf", "%PDF-1.4")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_NoTransactionsFound(t *testing.T) {
	svc := &fakeImportService{runErr: services.ErrNoTransactionsFound}
	rec := uploadRequest(t, svc, "text/csv", "Date,Amount\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleUpload_ParsingFailed(t *testing.T) {
	svc := &fakeImportService{runErr: services.ErrParsingFailed}
	rec := uploadRequest(t, svc, "text/csv", csvBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_MissingFileField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set(UserIDHeader, "user-1")

	rec := httptest.NewRecorder()
	RequireUser(http.HandlerFunc(NewImportHandler(&fakeImportService{}).HandleUpload)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func confirmRequest(t *testing.T, svc services.ImportService, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/import/confirm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(UserIDHeader, "user-1")

	rec := httptest.NewRecorder()
	RequireUser(http.HandlerFunc(NewImportHandler(svc).HandleConfirm)).ServeHTTP(rec, req)
	return rec
}

func TestHandleConfirm_Success(t *testing.T) {
	svc := &fakeImportService{confirmed: 3}
	rec := confirmRequest(t, svc, `{"session_id":"session-1","selections":[{"index":0,"active":true}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ImportedCount int `json:"imported_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ImportedCount)
}

func TestHandleConfirm_ExpiredSession(t *testing.T) {
	svc := &fakeImportService{confirmErr: services.ErrImportSessionExpired}
	rec := confirmRequest(t, svc, `{"session_id":"stale","selections":[]}`)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestHandleConfirm_MissingSessionID(t *testing.T) {
	rec := confirmRequest(t, &fakeImportService{}, `{"selections":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
