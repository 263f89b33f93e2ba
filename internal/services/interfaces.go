package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
	"spendwise/internal/timeframe"
)

// ReceiptUpload is a receipt file attached to a new expense.
type ReceiptUpload struct {
	Filename string
	Content  io.Reader
}

// CreateExpenseInput holds the fields accepted when recording an expense.
type CreateExpenseInput struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Receipt     *ReceiptUpload
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context, tf timeframe.Timeframe, category string) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	// ExportCSV writes the expenses in tf to w and returns the suggested
	// attachment filename.
	ExportCSV(ctx context.Context, tf timeframe.Timeframe, w io.Writer) (string, error)
}

// Receipt is an opened receipt file. The caller must close Content.
type Receipt struct {
	Name    string
	Content afero.File
	ModTime time.Time
}

// ReceiptServicer defines the contract for serving stored receipts.
type ReceiptServicer interface {
	OpenReceipt(ctx context.Context, name string) (*Receipt, error)
}

// StatsSummary is the aggregate view of spending for a timeframe.
type StatsSummary struct {
	Timeframe    timeframe.Timeframe          `json:"timeframe"`
	Total        decimal.Decimal              `json:"total"`
	ByCategory   map[string]decimal.Decimal   `json:"by_category"`
	MonthlyTrend []analytics.MonthlyAggregate `json:"monthly_trend"`
}

// StatsServicer defines the contract for spending statistics and forecasts.
type StatsServicer interface {
	GetStats(ctx context.Context, tf timeframe.Timeframe) (*StatsSummary, error)
	GetForecast(ctx context.Context) (*analytics.ForecastResult, error)
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	// SetBudget creates or replaces the current month's budget for category.
	SetBudget(ctx context.Context, category string, amount decimal.Decimal) (*models.Budget, error)
	// GetBudgetStatus compares every current-month budget with actual spending.
	GetBudgetStatus(ctx context.Context) ([]analytics.BudgetStatus, error)
}
