package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
)

// MemoryStore is an in-process ExpenseRepository and BudgetRepository. It is
// safe for concurrent use and keeps copies so callers cannot mutate stored rows.
type MemoryStore struct {
	mu       sync.RWMutex
	expenses map[string]models.Expense
	budgets  map[budgetKey]models.Budget
	now      func() time.Time
}

type budgetKey struct {
	category string
	month    string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[string]models.Expense),
		budgets:  make(map[budgetKey]models.Budget),
		now:      time.Now,
	}
}

var (
	_ ExpenseRepository = (*MemoryStore)(nil)
	_ BudgetRepository  = (*MemoryStore)(nil)
)

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Create stores a copy of expense, assigning an ID and timestamps.
func (m *MemoryStore) Create(_ context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expense.ID == "" {
		expense.ID = newID()
	}
	expense.Date = expense.Date.UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	m.expenses[expense.ID] = *expense
	return nil
}

// GetByID returns a copy of the stored expense.
func (m *MemoryStore) GetByID(_ context.Context, id string) (*models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.expenses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// Delete removes the expense with id.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MemoryStore) filtered(filter ExpenseFilter) []models.Expense {
	out := make([]models.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		if filter.matches(&e) {
			out = append(out, e)
		}
	}
	return out
}

// List returns matching expenses ordered by date descending.
func (m *MemoryStore) List(_ context.Context, filter ExpenseFilter) ([]models.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.filtered(filter)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// Entries returns the (date, amount) projection of matching expenses.
func (m *MemoryStore) Entries(_ context.Context, filter ExpenseFilter) ([]analytics.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := project(m.filtered(filter))
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// Total sums matching amounts.
func (m *MemoryStore) Total(_ context.Context, filter ExpenseFilter) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return analytics.SumEntries(project(m.filtered(filter))).Round(amountScale), nil
}

func project(expenses []models.Expense) []analytics.Entry {
	entries := make([]analytics.Entry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, analytics.Entry{Date: e.Date, Amount: e.Amount})
	}
	return entries
}

// TotalsByCategory sums matching amounts per category.
func (m *MemoryStore) TotalsByCategory(_ context.Context, filter ExpenseFilter) (map[string]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	for _, e := range m.filtered(filter) {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	for k, v := range totals {
		totals[k] = v.Round(amountScale)
	}
	return totals, nil
}

// Upsert inserts the budget or replaces the amount of an existing one.
func (m *MemoryStore) Upsert(_ context.Context, budget *models.Budget) (*models.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	key := budgetKey{category: budget.Category, month: budget.Month}
	stored, ok := m.budgets[key]
	if ok {
		stored.Amount = budget.Amount
		stored.UpdatedAt = now
	} else {
		stored = *budget
		if stored.ID == "" {
			stored.ID = newID()
		}
		stored.CreatedAt = now
		stored.UpdatedAt = now
	}
	m.budgets[key] = stored
	return &stored, nil
}

// ListByMonth returns the budgets for month sorted by category.
func (m *MemoryStore) ListByMonth(_ context.Context, month string) ([]models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Budget, 0)
	for key, b := range m.budgets {
		if key.month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
