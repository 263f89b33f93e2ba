// Package repository is the data-access layer for expenses and budgets.
// Services depend on the interfaces declared here; GormStore backs them with
// a relational database and MemoryStore with plain maps for tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
)

// ErrNotFound is returned when a lookup by identifier matches no row.
var ErrNotFound = errors.New("record not found")

// ExpenseFilter narrows expense queries. Zero values mean "no constraint".
// From and To are inclusive.
type ExpenseFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// ExpenseRepository stores and queries expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	Delete(ctx context.Context, id string) error
	// List returns matching expenses, newest first.
	List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error)
	// Entries returns the date and amount of every expense in filter.
	Entries(ctx context.Context, filter ExpenseFilter) ([]analytics.Entry, error)
	// Total sums matching amounts; zero when nothing matches.
	Total(ctx context.Context, filter ExpenseFilter) (decimal.Decimal, error)
	// TotalsByCategory sums matching amounts per category. Categories
	// without matches are absent.
	TotalsByCategory(ctx context.Context, filter ExpenseFilter) (map[string]decimal.Decimal, error)
}

// BudgetRepository stores per-category monthly budgets.
type BudgetRepository interface {
	// Upsert inserts the budget or, when (category, month) already exists,
	// overwrites its amount. It returns the stored row.
	Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	ListByMonth(ctx context.Context, month string) ([]models.Budget, error)
}

// matches reports whether an expense satisfies f.
func (f ExpenseFilter) matches(e *models.Expense) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	return true
}

// amountScale is the number of decimal places stored for money columns.
const amountScale = 2
