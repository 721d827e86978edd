package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-admin-service/internal/middleware"
	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

// MockBulkUploader is a mock implementation of BulkUploader
type MockBulkUploader struct {
	mock.Mock
}

func (m *MockBulkUploader) UploadProducts(ctx context.Context, req *models.BulkProductUploadRequest, source models.UploadSource) (*models.BulkProductUploadResult, error) {
	args := m.Called(ctx, req, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkProductUploadResult), args.Error(1)
}

func (m *MockBulkUploader) UploadUsers(ctx context.Context, req *models.BulkUserUploadRequest, source models.UploadSource) (*models.BulkUserUploadResult, error) {
	args := m.Called(ctx, req, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkUserUploadResult), args.Error(1)
}

func (m *MockBulkUploader) ListJobs(ctx context.Context, jobType models.BulkUploadType, page models.Page) ([]models.BulkUploadJob, int64, error) {
	args := m.Called(ctx, jobType, page)
	return args.Get(0).([]models.BulkUploadJob), args.Get(1).(int64), args.Error(2)
}

func (m *MockBulkUploader) GetJob(ctx context.Context, id uuid.UUID) (*models.BulkUploadJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkUploadJob), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "admin-1")
		c.Next()
	})
	return r
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.Error {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func setupBulkRouter(svc *MockBulkUploader) *gin.Engine {
	r := setupTestRouter()
	h := NewBulkUploadHandler(svc, testLogger())
	r.POST("/bulk-upload/products", h.UploadProducts)
	r.POST("/bulk-upload/products/import", h.ImportProducts)
	r.GET("/bulk-upload/products/template", h.GetProductTemplate)
	r.POST("/bulk-upload/users", h.UploadUsers)
	r.POST("/bulk-upload/users/import", h.ImportUsers)
	r.GET("/bulk-upload/jobs", h.ListJobs)
	r.GET("/bulk-upload/jobs/:id", h.GetJob)
	return r
}

func TestUploadProducts_Success(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	categoryID, setID := uuid.New(), uuid.New()
	result := &models.BulkProductUploadResult{JobID: uuid.New(), ProductIDs: []uuid.UUID{uuid.New()}, Count: 1}
	svc.On("UploadProducts", mock.Anything,
		mock.MatchedBy(func(req *models.BulkProductUploadRequest) bool {
			return req.CategoryID == categoryID && len(req.Products) == 1 && req.Products[0].SKU == "TEE-1"
		}),
		models.UploadSource{Format: models.ImportFormatJSON, RequestedBy: "admin-1"},
	).Return(result, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/bulk-upload/products", map[string]interface{}{
		"category_id":      categoryID,
		"attribute_set_id": setID,
		"products": []map[string]interface{}{
			{"name": "Tee", "sku": "TEE-1", "price": "19.99"},
		},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                           `json:"success"`
		Data    models.BulkProductUploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, result.JobID, resp.Data.JobID)
	assert.Equal(t, 1, resp.Data.Count)
	svc.AssertExpectations(t)
}

func TestUploadProducts_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "batch mismatch",
			err:        &services.ValidationError{Code: services.CodeValidation, Field: "products[0].category_id", Message: "must match the batch category"},
			wantStatus: http.StatusBadRequest,
			wantCode:   services.CodeValidation,
		},
		{
			name:       "duplicate sku",
			err:        &services.ConflictError{Code: services.CodeDuplicateSKU, Message: "SKU already exists"},
			wantStatus: http.StatusConflict,
			wantCode:   services.CodeDuplicateSKU,
		},
		{
			name:       "missing category",
			err:        services.ErrCategoryNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "database failure",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBulkUploader)
			r := setupBulkRouter(svc)
			svc.On("UploadProducts", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(http.MethodPost, "/bulk-upload/products", map[string]interface{}{
				"category_id":      uuid.New(),
				"attribute_set_id": uuid.New(),
				"products":         []map[string]interface{}{{"name": "Tee", "sku": "TEE-1", "price": 1}},
			}))

			assert.Equal(t, tt.wantStatus, w.Code)
			e := decodeError(t, w)
			assert.Equal(t, tt.wantCode, e.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, e.Message, "connection reset")
			}
		})
	}
}

func TestUploadProducts_MalformedJSON(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/bulk-upload/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UploadProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadUsers_SuccessReturnsOK(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)
	result := &models.BulkUserUploadResult{JobID: uuid.New(), UserIDs: []uuid.UUID{uuid.New()}, Count: 1}
	svc.On("UploadUsers", mock.Anything,
		mock.MatchedBy(func(req *models.BulkUserUploadRequest) bool { return len(req.UserData) == 1 }),
		models.UploadSource{Format: models.ImportFormatJSON, RequestedBy: "admin-1"},
	).Return(result, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/bulk-upload/users", map[string]interface{}{
		"userData": []map[string]interface{}{{"firstName": "A", "email": "a@example.com"}},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                        `json:"success"`
		Data    models.BulkUserUploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, result.UserIDs, resp.Data.UserIDs)
	svc.AssertExpectations(t)
}

func TestImportUsers_CSV(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)
	svc.On("UploadUsers", mock.Anything,
		mock.MatchedBy(func(req *models.BulkUserUploadRequest) bool {
			return len(req.UserData) == 1 && req.UserData[0].Email == "lin@example.com"
		}),
		models.UploadSource{Format: models.ImportFormatCSV, FileName: "users.csv", RequestedBy: "admin-1"},
	).Return(&models.BulkUserUploadResult{JobID: uuid.New(), Count: 1}, nil)

	req := multipartRequest(t, "/bulk-upload/users/import", nil, "users.csv", "email,first_name,last_name\nlin@example.com,Lin,Wu\n")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUploadUsers_DuplicateEmail(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)
	svc.On("UploadUsers", mock.Anything,
		mock.MatchedBy(func(req *models.BulkUserUploadRequest) bool { return len(req.UserData) == 2 }),
		mock.Anything,
	).Return(nil, &services.ConflictError{Code: services.CodeDuplicateEmail, Message: "email already registered"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/bulk-upload/users", map[string]interface{}{
		"userData": []map[string]interface{}{
			{"firstName": "A", "email": "a@example.com"},
			{"firstName": "B", "email": "a@example.com"},
		},
	}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.CodeDuplicateEmail, decodeError(t, w).Code)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportProducts_CSV(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	categoryID, setID := uuid.New(), uuid.New()
	svc.On("UploadProducts", mock.Anything,
		mock.MatchedBy(func(req *models.BulkProductUploadRequest) bool {
			return req.CategoryID == categoryID && req.AttributeSetID == setID &&
				len(req.Products) == 2 &&
				req.Products[0].Attributes[0].Name == "Color" &&
				req.Products[1].ComplementarySKUs[0] == "TEE-1"
		}),
		models.UploadSource{Format: models.ImportFormatCSV, FileName: "products.csv", RequestedBy: "admin-1"},
	).Return(&models.BulkProductUploadResult{JobID: uuid.New(), Count: 2}, nil)

	csv := "name,sku,price,attributes,complementary_skus\n" +
		"Tee,TEE-1,19.99,Color:Black,\n" +
		"Cap,CAP-1,9.99,Color:Red,TEE-1\n"
	req := multipartRequest(t, "/bulk-upload/products/import", map[string]string{
		"category_id":      categoryID.String(),
		"attribute_set_id": setID.String(),
	}, "products.csv", csv)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestImportProducts_RowErrors(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	req := multipartRequest(t, "/bulk-upload/products/import", map[string]string{
		"category_id":      uuid.NewString(),
		"attribute_set_id": uuid.NewString(),
	}, "products.csv", "name,sku,price\nTee,,abc\n")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Error struct {
			Code    string                  `json:"code"`
			Details []models.ImportRowError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ROWS", resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, 2, resp.Error.Details[0].Row)
	svc.AssertNotCalled(t, "UploadProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportProducts_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
		wantCode string
	}{
		{"missing category", map[string]string{"attribute_set_id": uuid.NewString()}, "p.csv", "INVALID_ID"},
		{"missing file", map[string]string{"category_id": uuid.NewString(), "attribute_set_id": uuid.NewString()}, "", "MISSING_FILE"},
		{"wrong extension", map[string]string{"category_id": uuid.NewString(), "attribute_set_id": uuid.NewString()}, "p.txt", "UNSUPPORTED_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupBulkRouter(new(MockBulkUploader))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "/bulk-upload/products/import", tt.fields, tt.fileName, "name,sku,price\n"))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestGetProductTemplate(t *testing.T) {
	r := setupBulkRouter(new(MockBulkUploader))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/products/template?format=csv", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products_import_template.csv")
	assert.Contains(t, w.Body.String(), "name,sku,description,price")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/products/template?format=xlsx", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/products/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListJobs(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	jobs := []models.BulkUploadJob{{ID: uuid.New(), Type: models.BulkUploadTypeProducts, Status: models.BulkUploadStatusCompleted}}
	svc.On("ListJobs", mock.Anything, models.BulkUploadTypeProducts, models.Page{Page: 2, Limit: 5}).Return(jobs, int64(6), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/jobs?type=products&page=2&limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(6), resp.Pagination.Total)
	svc.AssertExpectations(t)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/jobs?type=orders", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob(t *testing.T) {
	svc := new(MockBulkUploader)
	r := setupBulkRouter(svc)

	missing := uuid.New()
	svc.On("GetJob", mock.Anything, missing).Return(nil, services.ErrUploadJobNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/jobs/"+missing.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bulk-upload/jobs/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decodeError(t, w).Code)
}
