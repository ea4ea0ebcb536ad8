package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/core/engine"
	portssvc "github.com/SscSPs/gst_return_app/internal/core/ports/services"
	"github.com/SscSPs/gst_return_app/internal/dto"
	"github.com/SscSPs/gst_return_app/internal/export"
	"github.com/SscSPs/gst_return_app/internal/handlers"
	"github.com/SscSPs/gst_return_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SessionService ---
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) ListSessions(ctx context.Context, userID string, params dto.ListSessionsParams) (*dto.ListSessionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListSessionsResponse), args.Error(1)
}

func (m *MockSessionService) CreateSession(ctx context.Context, userID string, req dto.CreateSessionRequest) (*domain.Session, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) DeleteSession(ctx context.Context, sessionID, userID string) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *MockSessionService) ListTransactions(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockSessionService) ImportTransactions(ctx context.Context, sessionID, userID string, req dto.ImportTransactionsRequest) (*dto.ImportResponse, error) {
	args := m.Called(ctx, sessionID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ImportResponse), args.Error(1)
}

func (m *MockSessionService) ImportFile(ctx context.Context, sessionID, userID, filename string, r io.Reader) (*dto.ImportResponse, error) {
	args := m.Called(ctx, sessionID, userID, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ImportResponse), args.Error(1)
}

func (m *MockSessionService) UpdateTransaction(ctx context.Context, sessionID, transactionID, userID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, sessionID, transactionID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockSessionService) DeleteTransaction(ctx context.Context, sessionID, transactionID, userID string) error {
	args := m.Called(ctx, sessionID, transactionID, userID)
	return args.Error(0)
}

func (m *MockSessionService) BulkCategorize(ctx context.Context, sessionID, userID string, req dto.BulkCategoryRequest) ([]domain.Transaction, error) {
	args := m.Called(ctx, sessionID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockSessionService) BulkSetRatio(ctx context.Context, sessionID, userID string, req dto.BulkRatioRequest) ([]domain.Transaction, error) {
	args := m.Called(ctx, sessionID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockSessionService) Reclassify(ctx context.Context, sessionID, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockSessionService) GenerateReport(ctx context.Context, sessionID, userID string) (*domain.Report, error) {
	args := m.Called(ctx, sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockSessionService) ExportJournal(ctx context.Context, sessionID, userID string, format export.Format) (*dto.JournalFile, error) {
	args := m.Called(ctx, sessionID, userID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JournalFile), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.SessionSvcFacade = (*MockSessionService)(nil)

// --- Mock CatalogService ---
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetCatalog(ctx context.Context, userID string) (*domain.CatalogDefinition, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogDefinition), args.Error(1)
}

func (m *MockCatalogService) SaveCatalog(ctx context.Context, userID string, req dto.SaveCatalogRequest) (*domain.CatalogDefinition, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogDefinition), args.Error(1)
}

func (m *MockCatalogService) ResetCatalog(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCatalogService) Engine(ctx context.Context, userID string, rate decimal.Decimal) (*engine.Engine, error) {
	args := m.Called(ctx, userID, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Engine), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.CatalogSvcFacade = (*MockCatalogService)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockSessionService *MockSessionService
	mockCatalogService *MockCatalogService
	jwtSecret          string
	userID             string
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// generateTestToken creates a JWT for testing.
func (suite *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "gst-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret, ""))

	suite.mockSessionService = new(MockSessionService)
	suite.mockCatalogService = new(MockCatalogService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterCatalogRoutes(v1, suite.mockCatalogService)
	handlers.RegisterSessionRoutes(v1, suite.mockSessionService, handlers.WithMaxUploadBytes(4096))
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.mockSessionService.AssertExpectations(suite.T())
	suite.mockCatalogService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) do(method, url string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) doJSON(method, url string, payload any) *httptest.ResponseRecorder {
	b, err := json.Marshal(payload)
	suite.Require().NoError(err)
	return suite.do(method, url, bytes.NewReader(b), "application/json")
}

func errorBody(w *httptest.ResponseRecorder) string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body["error"]
}

// --- Test Cases ---

func (suite *HandlerTestSuite) TestMissingToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestCreateSession_Success() {
	req := dto.CreateSessionRequest{ClientName: "Acme Ltd"}
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	session := &domain.Session{
		SessionID:   "s-1",
		UserID:      suite.userID,
		ClientName:  "Acme Ltd",
		GSTRate:     decimal.RequireFromString("0.15"),
		AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: suite.userID, LastUpdatedAt: now, LastUpdatedBy: suite.userID},
	}
	suite.mockSessionService.On("CreateSession", mock.Anything, suite.userID, req).Return(session, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/sessions", req)

	suite.Equal(http.StatusCreated, w.Code)
	var res dto.SessionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("s-1", res.SessionID)
	suite.True(res.GSTRate.Equal(decimal.RequireFromString("0.15")))
}

func (suite *HandlerTestSuite) TestCreateSession_BindingErrors() {
	w := suite.doJSON(http.MethodPost, "/api/v1/sessions", map[string]any{"clientName": ""})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.doJSON(http.MethodPost, "/api/v1/sessions", map[string]any{"clientName": "Acme", "gstRate": "1.5"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.doJSON(http.MethodPost, "/api/v1/sessions", map[string]any{"clientName": "Acme", "periodStart": "01/04/2025"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestGetSession_ErrorMapping() {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: session s-1 belongs to another user", apperrors.ErrForbidden), http.StatusForbidden},
		{apperrors.NewNotFoundError("session s-1"), http.StatusNotFound},
		{apperrors.NewValidationFailedError("bad"), http.StatusBadRequest},
		{apperrors.NewConflictError("dup"), http.StatusConflict},
		{apperrors.NewAppError(500, "journal does not balance", apperrors.ErrJournalImbalance), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		suite.mockSessionService.On("GetSession", mock.Anything, "s-1", suite.userID).Return(nil, tt.err).Once()
		w := suite.do(http.MethodGet, "/api/v1/sessions/s-1", nil, "")
		suite.Equal(tt.code, w.Code, tt.err.Error())
		suite.NotEmpty(errorBody(w))
	}
}

func (suite *HandlerTestSuite) TestListSessions() {
	token := "next-page"
	res := &dto.ListSessionsResponse{Sessions: []dto.SessionResponse{}, NextToken: &token}
	suite.mockSessionService.On("ListSessions", mock.Anything, suite.userID, dto.ListSessionsParams{Limit: 20}).Return(res, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/sessions", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"sessions":[],"nextToken":"next-page"}`, w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/sessions?limit=0", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteSession() {
	suite.mockSessionService.On("DeleteSession", mock.Anything, "s-1", suite.userID).Return(nil).Once()
	w := suite.do(http.MethodDelete, "/api/v1/sessions/s-1", nil, "")
	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestImportTransactions() {
	req := dto.ImportTransactionsRequest{Rows: []dto.ImportTransactionRow{
		{Date: "2025-05-01", Payee: "ACME LTD", Amount: decimal.RequireFromString("1150")},
	}}
	res := &dto.ImportResponse{Imported: 1, Skipped: []dto.ImportRowError{}}
	suite.mockSessionService.On("ImportTransactions", mock.Anything, "s-1", suite.userID, mock.MatchedBy(func(r dto.ImportTransactionsRequest) bool {
		return len(r.Rows) == 1 && r.Rows[0].Amount.Equal(decimal.RequireFromString("1150"))
	})).Return(res, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/sessions/s-1/transactions", req)
	suite.Equal(http.StatusCreated, w.Code)

	w = suite.doJSON(http.MethodPost, "/api/v1/sessions/s-1/transactions", dto.ImportTransactionsRequest{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func multipartBody(suite *HandlerTestSuite, field, filename, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	suite.Require().NoError(err)
	_, err = part.Write([]byte(content))
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())
	return &buf, mw.FormDataContentType()
}

func (suite *HandlerTestSuite) TestUploadTransactions() {
	suite.Run("success", func() {
		body, contentType := multipartBody(suite, "file", "statement.csv", "Date,Amount,Payee\n01/05/2025,1150,ACME\n")
		res := &dto.ImportResponse{Layout: "generic", Imported: 1, Skipped: []dto.ImportRowError{}}
		suite.mockSessionService.On("ImportFile", mock.Anything, "s-1", suite.userID, "statement.csv", mock.Anything).Return(res, nil).Once()

		w := suite.do(http.MethodPost, "/api/v1/sessions/s-1/transactions/upload", body, contentType)
		suite.Equal(http.StatusCreated, w.Code)
		suite.Contains(w.Body.String(), `"layout":"generic"`)
	})

	suite.Run("missing file field", func() {
		body, contentType := multipartBody(suite, "statement", "statement.csv", "x")
		w := suite.do(http.MethodPost, "/api/v1/sessions/s-1/transactions/upload", body, contentType)
		suite.Equal(http.StatusBadRequest, w.Code)
	})

	suite.Run("too large", func() {
		body, contentType := multipartBody(suite, "file", "statement.csv", strings.Repeat("x", 8192))
		w := suite.do(http.MethodPost, "/api/v1/sessions/s-1/transactions/upload", body, contentType)
		suite.Equal(http.StatusRequestEntityTooLarge, w.Code)
	})

	suite.Run("unsupported type", func() {
		body, contentType := multipartBody(suite, "file", "statement.pdf", "x")
		suite.mockSessionService.On("ImportFile", mock.Anything, "s-1", suite.userID, "statement.pdf", mock.Anything).
			Return(nil, fmt.Errorf("%w: unsupported file type", apperrors.ErrValidation)).Once()
		w := suite.do(http.MethodPost, "/api/v1/sessions/s-1/transactions/upload", body, contentType)
		suite.Equal(http.StatusBadRequest, w.Code)
	})
}

func (suite *HandlerTestSuite) TestUpdateTransaction() {
	category := "Office Supplies"
	t := domain.NewTransaction("t-1", "s-1", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "OfficeMax", "", decimal.RequireFromString("-115"))
	updated, err := t.Assign(category, decimal.NewFromInt(1), decimal.RequireFromString("0.15"))
	suite.Require().NoError(err)

	suite.mockSessionService.On("UpdateTransaction", mock.Anything, "s-1", "t-1", suite.userID, mock.MatchedBy(func(r dto.UpdateTransactionRequest) bool {
		return r.Category != nil && *r.Category == category && r.GSTRatio == nil
	})).Return(&updated, nil).Once()

	w := suite.doJSON(http.MethodPatch, "/api/v1/sessions/s-1/transactions/t-1", map[string]any{"category": category})
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"category":"Office Supplies"`)
}

func (suite *HandlerTestSuite) TestBulkSetRatio_RejectsRatioAboveOne() {
	w := suite.doJSON(http.MethodPost, "/api/v1/sessions/s-1/transactions/bulk-ratio", map[string]any{
		"transactionIDs": []string{"t-1"},
		"gstRatio":       "1.5",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestBulkCategorize() {
	req := dto.BulkCategoryRequest{TransactionIDs: []string{"t-1", "t-2"}, Category: "Entertainment"}
	suite.mockSessionService.On("BulkCategorize", mock.Anything, "s-1", suite.userID, req).Return([]domain.Transaction{}, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/sessions/s-1/transactions/bulk-category", req)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"transactions":[],"count":0}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestReclassify() {
	suite.mockSessionService.On("Reclassify", mock.Anything, "s-1", suite.userID).Return(nil, apperrors.NewNotFoundError("session s-1")).Once()
	w := suite.do(http.MethodPost, "/api/v1/sessions/s-1/transactions/reclassify", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestGetReport() {
	report := &domain.Report{
		Journal: []domain.JournalRow{
			{Account: "Sales", Credit: "1000.00"},
			{Account: "Bank", Debit: "1150.00"},
		},
		TotalDebit:  decimal.RequireFromString("1150"),
		TotalCredit: decimal.RequireFromString("1150"),
		GSTToPay:    decimal.RequireFromString("150"),
	}
	suite.mockSessionService.On("GenerateReport", mock.Anything, "s-1", suite.userID).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/sessions/s-1/report", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	var res dto.ReportResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal("150.00", res.GSTToPay)
	suite.Equal("1150.00", res.TotalDebit)
	suite.Len(res.Journal, 2)
	suite.Equal([]string{}, res.Excluded)
}

func (suite *HandlerTestSuite) TestDownloadJournal() {
	file := &dto.JournalFile{
		FileName:    "acme_ltd_journal_2025-07-01_09-30.xlsx",
		ContentType: export.FormatXLSX.ContentType(),
		Content:     []byte("PK"),
	}
	suite.mockSessionService.On("ExportJournal", mock.Anything, "s-1", suite.userID, export.FormatXLSX).Return(file, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/sessions/s-1/report/download?format=xlsx", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(`attachment; filename="acme_ltd_journal_2025-07-01_09-30.xlsx"`, w.Header().Get("Content-Disposition"))
	suite.Equal(export.FormatXLSX.ContentType(), w.Header().Get("Content-Type"))
	suite.Equal("PK", w.Body.String())

	w = suite.do(http.MethodGet, "/api/v1/sessions/s-1/report/download?format=pdf", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCatalogRoutes() {
	def := &domain.CatalogDefinition{
		Categories:      []domain.AccountCategory{{Name: domain.UncategorizedCategory, Type: domain.Expense, GSTRatio: decimal.Zero}},
		DefaultCategory: domain.UncategorizedCategory,
	}
	suite.mockCatalogService.On("GetCatalog", mock.Anything, suite.userID).Return(def, nil).Once()
	w := suite.do(http.MethodGet, "/api/v1/catalog", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"defaultCategory":"Uncategorized"`)

	suite.mockCatalogService.On("SaveCatalog", mock.Anything, suite.userID, mock.AnythingOfType("dto.SaveCatalogRequest")).
		Return(nil, fmt.Errorf("%w: rule #1 targets unknown category", apperrors.ErrValidation)).Once()
	w = suite.doJSON(http.MethodPut, "/api/v1/catalog", map[string]any{
		"categories": []map[string]any{{"name": "Uncategorized", "type": "expense", "gstRatio": "0"}},
		"rules":      []map[string]any{{"keywords": []string{"x"}, "category": "Groceries"}},
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(errorBody(w), "unknown category")

	w = suite.doJSON(http.MethodPut, "/api/v1/catalog", map[string]any{
		"categories": []map[string]any{{"name": "A", "type": "asset", "gstRatio": "0"}},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.mockCatalogService.On("ResetCatalog", mock.Anything, suite.userID).Return(nil).Once()
	w = suite.do(http.MethodDelete, "/api/v1/catalog", nil, "")
	suite.Equal(http.StatusNoContent, w.Code)
}
