package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spendwise/internal/analytics"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/repository"
	"spendwise/internal/timeframe"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	budgets  repository.BudgetRepository
	expenses repository.ExpenseRepository
	clock    func() time.Time
	log      *zap.SugaredLogger
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(budgets repository.BudgetRepository, expenses repository.ExpenseRepository, opts ...Option) BudgetServicer {
	o := buildOptions(opts)
	return &budgetService{
		budgets:  budgets,
		expenses: expenses,
		clock:    o.clock,
		log:      logger.Named("budgets"),
	}
}

// SetBudget upserts the budget for category in the current month.
func (s *budgetService) SetBudget(ctx context.Context, category string, amount decimal.Decimal) (*models.Budget, error) {
	category = strings.TrimSpace(category)
	if !models.ValidCategory(category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category is required")
	}
	amount = amount.Round(amountPlaces)
	if !models.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	budget, err := s.budgets.Upsert(ctx, &models.Budget{
		Category: category,
		Amount:   amount,
		Month:    timeframe.MonthKey(s.clock()),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.log.Infow("budget set", "category", budget.Category, "month", budget.Month, "amount", budget.Amount.String())
	return budget, nil
}

// GetBudgetStatus joins this month's budgets with this month's spending.
// Spending in categories without a budget is not reported.
func (s *budgetService) GetBudgetStatus(ctx context.Context) ([]analytics.BudgetStatus, error) {
	now := s.clock()

	budgets, err := s.budgets.ListByMonth(ctx, timeframe.MonthKey(now))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []analytics.BudgetStatus{}, nil
	}

	from, to := timeframe.MonthStart(now), timeframe.MonthEnd(now)
	spending, err := s.expenses.TotalsByCategory(ctx, repository.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return analytics.BudgetVsActual(budgets, spending), nil
}
