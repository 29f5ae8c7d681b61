package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/model"
	"backend/internal/nfe"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImportService struct {
	importResult *model.NfeImport
	importErr    error
}

func (s *stubImportService) ImportInvoice(_ context.Context, _, _ string) (*model.NfeImport, error) {
	return s.importResult, s.importErr
}

func (s *stubImportService) ParseInvoice(_ string) (*nfe.Document, error) {
	return nil, s.importErr
}

func (s *stubImportService) PrecheckInvoice(_ string) nfe.ValidationReport {
	return nfe.ValidationReport{}
}

func (s *stubImportService) SummarizeInvoice(_ string) (*nfe.Summary, error) {
	return nil, s.importErr
}

func (s *stubImportService) GetImport(_ context.Context, _, _ string) (*model.NfeImport, error) {
	return nil, nil
}

func (s *stubImportService) ListImports(_ context.Context, _ string, _, _ int) ([]model.NfeImport, int64, error) {
	return nil, 0, nil
}

func importRequest(t *testing.T, svc service.ImportService) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/nfe/imports", strings.NewReader(`{"xml":"<NFe/>"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("companyID", uuid.NewString())
	h := NewImportHandler(svc)
	h.ImportInvoice(c)
	return w, c
}

func TestImportInvoiceConflictCarriesPriorImport(t *testing.T) {
	prior := &model.NfeImport{
		ID:        uuid.New(),
		AccessKey: "35200714200166000187550010000000046550010846",
	}
	w, _ := importRequest(t, &stubImportService{importResult: prior, importErr: service.ErrDuplicateImport})

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "conflict body must include the prior import")
	assert.Equal(t, prior.ID.String(), data["id"])
	assert.Equal(t, prior.AccessKey, data["access_key"])
}

func TestImportInvoiceMissingFieldIsUnprocessable(t *testing.T) {
	w, _ := importRequest(t, &stubImportService{importErr: &nfe.MissingFieldError{Field: "accessKey"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
