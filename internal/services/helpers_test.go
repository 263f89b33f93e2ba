package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"spendwise/internal/analytics"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/receipts"
	"spendwise/internal/repository"
	"spendwise/internal/testutil"
)

func init() {
	logger.Init("test")
}

// testNow is a Wednesday in the third week of March 2024.
var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return testNow })
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testEnv struct {
	db       *gorm.DB
	store    *repository.GormStore
	fs       afero.Fs
	receipts *receipts.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fs := afero.NewMemMapFs()
	return &testEnv{
		db:       db,
		store:    repository.NewGormStore(db),
		fs:       fs,
		receipts: receipts.NewStore(fs, "receipts"),
	}
}

func (e *testEnv) addExpense(t *testing.T, at time.Time, amount, category string) *models.Expense {
	t.Helper()
	expense := &models.Expense{Amount: dec(amount), Category: category, Date: at}
	if err := e.store.Create(context.Background(), expense); err != nil {
		t.Fatalf("failed to create expense: %v", err)
	}
	return expense
}

// mockExpenseRepo fails on demand. Unconfigured methods panic through the
// embedded nil interface.
type mockExpenseRepo struct {
	repository.ExpenseRepository
	mock.Mock
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *mockExpenseRepo) Total(ctx context.Context, filter repository.ExpenseFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockExpenseRepo) TotalsByCategory(ctx context.Context, filter repository.ExpenseFilter) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *mockExpenseRepo) Entries(ctx context.Context, filter repository.ExpenseFilter) ([]analytics.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Entry), args.Error(1)
}
