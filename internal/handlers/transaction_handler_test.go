package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "quantifi/internal/errors"
	"quantifi/internal/models"
	"quantifi/internal/pagination"
	"quantifi/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(userID uint, txType models.TransactionType, amount decimal.Decimal, category, icon string, date time.Time) (*models.Transaction, error)
	getUserTransactionsFn func(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(userID, transactionID uint) (*models.Transaction, error)
	updateTransactionFn  func(userID, transactionID uint, fields services.TransactionUpdateFields) (*models.Transaction, error)
	deleteTransactionFn  func(userID, transactionID uint) error
	exportWorkbookFn     func(userID uint, txType models.TransactionType) (*excelize.File, error)
}

func (m *mockTransactionService) CreateTransaction(userID uint, txType models.TransactionType, amount decimal.Decimal, category, icon string, date time.Time) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, txType, amount, category, icon, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID uint, fields services.TransactionUpdateFields) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, fields)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) ExportWorkbook(userID uint, txType models.TransactionType) (*excelize.File, error) {
	if m.exportWorkbookFn != nil {
		return m.exportWorkbookFn(userID, txType)
	}
	return excelize.NewFile(), nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/transactions", handler.Create)
	auth.GET("/transactions", handler.List)
	auth.GET("/transactions/:id", handler.Get)
	auth.PUT("/transactions/:id", handler.Update)
	auth.DELETE("/transactions/:id", handler.Delete)
	auth.GET("/transactions/export/:type", handler.Export)
	return r
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID uint, txType models.TransactionType, amount decimal.Decimal, category, icon string, _ time.Time) (*models.Transaction, error) {
				return &models.Transaction{
					ID:       1,
					UserID:   userID,
					Type:     txType,
					Amount:   amount,
					Category: category,
					Icon:     icon,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":149.99,"category":"Shopping","icon":"cart","date":"2025-04-10"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 149.99 {
			t.Errorf("expected amount 149.99, got %v", tx["amount"])
		}
		if tx["category"] != "Shopping" {
			t.Errorf("expected category Shopping, got %v", tx["category"])
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"transfer","amount":100,"category":"Misc"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":100}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"type":"expense","amount":100,"category":"Misc","date":"next tuesday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("returns page of transactions", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(userID uint, page pagination.PageRequest, _ services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				resp := pagination.NewPageResponse([]models.Transaction{
					{ID: 1, UserID: userID, Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(100), Category: "Groceries"},
				}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?page=1&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 1 {
			t.Errorf("expected 1 total item, got %v", result["total_items"])
		}
	})

	t.Run("passes type filter to service", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?type=income&from_date=2025-01-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeIncome {
			t.Error("expected income type filter to reach the service")
		}
		if gotFilter.FromDate == nil {
			t.Error("expected from_date filter to reach the service")
		}
	})

	t.Run("returns 400 on invalid type filter", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?type=transfer", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Get(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ uint) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var gotFields services.TransactionUpdateFields
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_, _ uint, fields services.TransactionUpdateFields) (*models.Transaction, error) {
				gotFields = fields
				return &models.Transaction{ID: 1, Category: "Travel"}, nil
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/1", `{"category":"Travel"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFields.Category == nil || *gotFields.Category != "Travel" {
			t.Error("expected category field to be set")
		}
		if gotFields.Amount != nil || gotFields.Icon != nil || gotFields.Date != nil {
			t.Error("omitted fields should stay nil")
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/1", `{"date":"yesterday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/99", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Export(t *testing.T) {
	t.Run("streams workbook with attachment headers", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/export/income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="income_details.xlsx"` {
			t.Errorf("unexpected Content-Disposition: %q", cd)
		}
		if rec.Body.Len() == 0 {
			t.Error("expected workbook bytes in the response body")
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		txSvc := &mockTransactionService{
			exportWorkbookFn: func(_ uint, _ models.TransactionType) (*excelize.File, error) {
				return nil, apperrors.ErrInvalidTransactionType
			},
		}
		handler := NewTransactionHandler(txSvc)
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/export/transfer", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
