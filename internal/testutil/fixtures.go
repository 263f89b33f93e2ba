package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendwise/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestExpense inserts an expense dated at with the given amount and
// category. The date is stored in UTC.
func CreateTestExpense(t *testing.T, db *gorm.DB, at time.Time, amount string, category string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Date:        at.UTC(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestExpenseWithReceipt inserts an expense that references a stored
// receipt file.
func CreateTestExpenseWithReceipt(t *testing.T, db *gorm.DB, at time.Time, receipt string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		Amount:          decimal.RequireFromString("12.50"),
		Category:        "Other",
		Description:     fmt.Sprintf("Receipted Expense %d", nextID()),
		Date:            at.UTC(),
		ReceiptFilename: &receipt,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense with receipt: %v", err)
	}
	return expense
}

// CreateTestBudget inserts a budget for category in month ("YYYY-MM").
func CreateTestBudget(t *testing.T, db *gorm.DB, category, month, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Category: category,
		Month:    month,
		Amount:   decimal.RequireFromString(amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal inserts a savings goal with no progress.
func CreateTestGoal(t *testing.T, db *gorm.DB, target string) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		TargetAmount: decimal.RequireFromString(target),
		Description:  fmt.Sprintf("Test Goal %d", nextID()),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
