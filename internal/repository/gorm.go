package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
)

// GormStore implements ExpenseRepository and BudgetRepository on top of gorm.
// Timestamps are normalised to UTC on the way in so that range comparisons
// behave the same on SQLite (text timestamps) and Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore over db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var (
	_ ExpenseRepository = (*GormStore)(nil)
	_ BudgetRepository  = (*GormStore)(nil)
)

func applyExpenseFilter(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

// Create inserts a new expense.
func (s *GormStore) Create(ctx context.Context, expense *models.Expense) error {
	expense.Date = expense.Date.UTC()
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID loads an expense by its identifier.
func (s *GormStore) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get expense %s: %w", id, err)
	}
	return &expense, nil
}

// Delete removes an expense row permanently.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if result.Error != nil {
		return fmt.Errorf("delete expense %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the expenses matching filter, newest first.
func (s *GormStore) List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error) {
	var expenses []models.Expense
	q := applyExpenseFilter(s.db.WithContext(ctx).Model(&models.Expense{}), filter)
	if err := q.Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Entries returns the (date, amount) projection of the matching expenses.
func (s *GormStore) Entries(ctx context.Context, filter ExpenseFilter) ([]analytics.Entry, error) {
	var entries []analytics.Entry
	q := applyExpenseFilter(s.db.WithContext(ctx).Model(&models.Expense{}), filter)
	if err := q.Select("date", "amount").Order("date ASC").Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("load expense entries: %w", err)
	}
	return entries, nil
}

// Total sums the matching amounts.
func (s *GormStore) Total(ctx context.Context, filter ExpenseFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	q := applyExpenseFilter(s.db.WithContext(ctx).Model(&models.Expense{}), filter)
	if err := q.Select("COALESCE(SUM(amount), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total.Round(amountScale), nil
}

// TotalsByCategory sums the matching amounts grouped by category.
func (s *GormStore) TotalsByCategory(ctx context.Context, filter ExpenseFilter) (map[string]decimal.Decimal, error) {
	q := applyExpenseFilter(s.db.WithContext(ctx).Model(&models.Expense{}), filter)
	rows, err := q.Select("category", "COALESCE(SUM(amount), 0)").Group("category").Rows()
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			total    decimal.Decimal
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[category] = total.Round(amountScale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

// Upsert inserts or overwrites the budget for (category, month).
func (s *GormStore) Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return nil, fmt.Errorf("upsert budget %s/%s: %w", budget.Category, budget.Month, err)
	}

	// On conflict the generated ID was discarded; reload the surviving row.
	var stored models.Budget
	if err := db.Where("category = ? AND month = ?", budget.Category, budget.Month).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload budget %s/%s: %w", budget.Category, budget.Month, err)
	}
	return &stored, nil
}

// ListByMonth returns every budget set for month ("YYYY-MM").
func (s *GormStore) ListByMonth(ctx context.Context, month string) ([]models.Budget, error) {
	var budgets []models.Budget
	if err := s.db.WithContext(ctx).Where("month = ?", month).Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("list budgets for %s: %w", month, err)
	}
	return budgets, nil
}
