package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
	"spendwise/internal/timeframe"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn func(ctx context.Context, input services.CreateExpenseInput) (*models.Expense, error)
	listExpensesFn  func(ctx context.Context, tf timeframe.Timeframe, category string) ([]models.Expense, error)
	deleteExpenseFn func(ctx context.Context, id string) error
	exportCSVFn     func(ctx context.Context, tf timeframe.Timeframe, w io.Writer) (string, error)
}

func (m *mockExpenseService) CreateExpense(ctx context.Context, input services.CreateExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(ctx, input)
	}
	return &models.Expense{Amount: input.Amount, Category: input.Category}, nil
}

func (m *mockExpenseService) ListExpenses(ctx context.Context, tf timeframe.Timeframe, category string) ([]models.Expense, error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(ctx, tf, category)
	}
	return nil, nil
}

func (m *mockExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(ctx, id)
	}
	return nil
}

func (m *mockExpenseService) ExportCSV(ctx context.Context, tf timeframe.Timeframe, w io.Writer) (string, error) {
	if m.exportCSVFn != nil {
		return m.exportCSVFn(ctx, tf, w)
	}
	_, err := io.WriteString(w, "Date,Amount,Category,Description\n")
	return "expenses_20240320.csv", err
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	r.POST("/expenses", handler.CreateExpense)
	r.GET("/expenses", handler.GetExpenses)
	r.GET("/expenses/export", handler.ExportExpenses)
	r.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

const testExpenseID = "0190f0c4-5a4e-7cc1-9d3e-5b2f8d6a1c01"

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 with receipt", func(t *testing.T) {
		var gotName, gotContent string
		svc := &mockExpenseService{
			createExpenseFn: func(_ context.Context, input services.CreateExpenseInput) (*models.Expense, error) {
				if input.Receipt == nil {
					t.Fatal("expected receipt upload")
				}
				gotName = input.Receipt.Filename
				data, _ := io.ReadAll(input.Receipt.Content)
				gotContent = string(data)
				name := "lunch_20240320_120000_abcdef.png"
				return &models.Expense{
					Base:            models.Base{ID: testExpenseID},
					Amount:          input.Amount,
					Category:        input.Category,
					Description:     input.Description,
					Date:            time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC),
					ReceiptFilename: &name,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doMultipart(t, r, "/expenses",
			map[string]string{"amount": "12.50", "category": "Food", "description": "lunch"},
			&uploadFile{field: "receipt", name: "lunch.png", content: "png-bytes"})

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotName != "lunch.png" || gotContent != "png-bytes" {
			t.Errorf("unexpected upload %q / %q", gotName, gotContent)
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["amount"].(float64) != 12.5 {
			t.Errorf("expected amount 12.5, got %v", expense["amount"])
		}
		if expense["receipt"] != "lunch_20240320_120000_abcdef.png" {
			t.Errorf("unexpected receipt %v", expense["receipt"])
		}
	})

	t.Run("accepts urlencoded form without receipt", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(_ context.Context, input services.CreateExpenseInput) (*models.Expense, error) {
				if input.Receipt != nil {
					t.Error("expected no receipt")
				}
				return &models.Expense{Amount: input.Amount, Category: input.Category}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader("amount=3&category=Coffee"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doMultipart(t, r, "/expenses", map[string]string{"amount": "5"}, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doMultipart(t, r, "/expenses", map[string]string{"amount": "twelve", "category": "Food"}, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("returns 400 on amount beyond column range", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doMultipart(t, r, "/expenses", map[string]string{"amount": "10000000000", "category": "Food"}, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("propagates service validation", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(context.Context, services.CreateExpenseInput) (*models.Expense, error) {
				return nil, apperrors.ErrInvalidAmount
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doMultipart(t, r, "/expenses", map[string]string{"amount": "-1", "category": "Food"}, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("hides internal errors", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(context.Context, services.CreateExpenseInput) (*models.Expense, error) {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, errors.New("disk I/O error"))
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doMultipart(t, r, "/expenses", map[string]string{"amount": "1", "category": "Food"}, nil)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "disk") {
			t.Error("internal error leaked to client")
		}
	})
}

func TestExpenseHandler_GetExpenses(t *testing.T) {
	t.Run("passes filters and wraps list", func(t *testing.T) {
		var gotTF timeframe.Timeframe
		var gotCategory string
		svc := &mockExpenseService{
			listExpensesFn: func(_ context.Context, tf timeframe.Timeframe, category string) ([]models.Expense, error) {
				gotTF, gotCategory = tf, category
				return []models.Expense{{Base: models.Base{ID: testExpenseID}, Category: "Food"}}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodGet, "/expenses?timeframe=week&category=Food", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotTF != timeframe.Week || gotCategory != "Food" {
			t.Errorf("unexpected filters %q %q", gotTF, gotCategory)
		}
		expenses := parseJSON(t, rec)["expenses"].([]interface{})
		if len(expenses) != 1 {
			t.Errorf("expected 1 expense, got %d", len(expenses))
		}
	})

	t.Run("empty list is an array", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, http.MethodGet, "/expenses", "")

		if !strings.Contains(rec.Body.String(), `"expenses":[]`) {
			t.Errorf("expected empty array, got %s", rec.Body.String())
		}
	})

	t.Run("passes unknown timeframe through", func(t *testing.T) {
		var gotTF timeframe.Timeframe
		svc := &mockExpenseService{
			listExpensesFn: func(_ context.Context, tf timeframe.Timeframe, _ string) ([]models.Expense, error) {
				gotTF = tf
				return nil, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodGet, "/expenses?timeframe=decade", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotTF != "decade" {
			t.Errorf("expected decade, got %q", gotTF)
		}
	})

	t.Run("returns 400 on oversized category", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, http.MethodGet, "/expenses?category="+strings.Repeat("x", 101), "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotID string
		svc := &mockExpenseService{
			deleteExpenseFn: func(_ context.Context, id string) error {
				gotID = id
				return nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodDelete, "/expenses/"+testExpenseID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != testExpenseID {
			t.Errorf("expected id %s, got %s", testExpenseID, gotID)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, http.MethodDelete, "/expenses/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockExpenseService{
			deleteExpenseFn: func(context.Context, string) error { return apperrors.ErrExpenseNotFound },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodDelete, "/expenses/"+testExpenseID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EXPENSE_NOT_FOUND")
	})
}

func TestExpenseHandler_ExportExpenses(t *testing.T) {
	t.Run("returns csv attachment", func(t *testing.T) {
		var gotTF timeframe.Timeframe
		svc := &mockExpenseService{
			exportCSVFn: func(_ context.Context, tf timeframe.Timeframe, w io.Writer) (string, error) {
				gotTF = tf
				_, err := io.WriteString(w, "Date,Amount,Category,Description\n2024-03-19 12:00:00,12.00,Food,\n")
				return "expenses_20240320.csv", err
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodGet, "/expenses/export?timeframe=month", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotTF != timeframe.Month {
			t.Errorf("expected month, got %q", gotTF)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("unexpected content type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="expenses_20240320.csv"` {
			t.Errorf("unexpected content disposition %q", cd)
		}
		if !strings.HasPrefix(rec.Body.String(), "Date,Amount,Category,Description\n") {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("maps service errors", func(t *testing.T) {
		svc := &mockExpenseService{
			exportCSVFn: func(context.Context, timeframe.Timeframe, io.Writer) (string, error) {
				return "", apperrors.ErrInternalServer
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, http.MethodGet, "/expenses/export?timeframe=year", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}
