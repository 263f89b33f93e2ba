package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
	"spendwise/internal/receipts"
	"spendwise/internal/repository"
	"spendwise/internal/timeframe"
)

const (
	amountPlaces     = 2
	exportDateLayout = "2006-01-02 15:04:05"
	exportFileLayout = "20060102"
	exportFilePrefix = "expenses_"
	exportFileSuffix = ".csv"
)

// exportHeader is the first row of every CSV export.
var exportHeader = []string{"Date", "Amount", "Category", "Description"}

// expenseService handles expense-related business logic.
type expenseService struct {
	expenses repository.ExpenseRepository
	receipts *receipts.Store
	clock    func() time.Time
	log      *zap.SugaredLogger
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(expenses repository.ExpenseRepository, store *receipts.Store, opts ...Option) ExpenseServicer {
	o := buildOptions(opts)
	return &expenseService{
		expenses: expenses,
		receipts: store,
		clock:    o.clock,
		log:      logger.Named("expenses"),
	}
}

// CreateExpense validates the input, stores the optional receipt and records
// the expense dated now.
func (s *expenseService) CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	category := strings.TrimSpace(input.Category)
	if !models.ValidCategory(category) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Category is required")
	}
	description := strings.TrimSpace(input.Description)
	if len(description) > models.MaxDescriptionLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Description is too long")
	}
	amount := input.Amount.Round(amountPlaces)
	if !models.ValidAmount(amount) {
		return nil, apperrors.ErrInvalidAmount
	}

	now := s.clock()
	expense := &models.Expense{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        now,
	}

	if input.Receipt != nil {
		name, err := s.receipts.Save(input.Receipt.Filename, now, input.Receipt.Content)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expense.ReceiptFilename = &name
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		if expense.HasReceipt() {
			s.discardReceipt(*expense.ReceiptFilename)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.log.Infow("expense created",
		"id", expense.ID,
		"category", expense.Category,
		"amount", expense.Amount.String(),
		"has_receipt", expense.HasReceipt(),
	)
	return expense, nil
}

// discardReceipt removes a receipt whose expense row was never written.
func (s *expenseService) discardReceipt(name string) {
	s.log.Warnw("expense insert failed after receipt was stored, removing file", "receipt", name)
	if err := s.receipts.Remove(name); err != nil {
		s.log.Warnw("failed to remove orphaned receipt", "receipt", name, "error", err)
	}
}

// ListExpenses returns the expenses within tf, newest first, optionally
// restricted to an exact category. Selectors other than week and month list
// everything.
func (s *expenseService) ListExpenses(ctx context.Context, tf timeframe.Timeframe, category string) ([]models.Expense, error) {
	tf = timeframe.ResolveListing(string(tf))
	filter := repository.ExpenseFilter{
		From:     tf.StartPtr(s.clock()),
		Category: strings.TrimSpace(category),
	}
	expenses, err := s.expenses.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// DeleteExpense removes the expense and then, best effort, its receipt file.
func (s *expenseService) DeleteExpense(ctx context.Context, id string) error {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.expenses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if expense.HasReceipt() {
		if err := s.receipts.Remove(*expense.ReceiptFilename); err != nil {
			s.log.Warnw("failed to remove receipt of deleted expense",
				"id", id,
				"receipt", *expense.ReceiptFilename,
				"error", err,
			)
		}
	}

	s.log.Infow("expense deleted", "id", id)
	return nil
}

// ExportCSV writes the expenses within tf as CSV, newest first.
func (s *expenseService) ExportCSV(ctx context.Context, tf timeframe.Timeframe, w io.Writer) (string, error) {
	tf = timeframe.ResolveListing(string(tf))
	now := s.clock()
	expenses, err := s.expenses.List(ctx, repository.ExpenseFilter{From: tf.StartPtr(now)})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, e := range expenses {
		record := []string{
			e.Date.In(now.Location()).Format(exportDateLayout),
			e.Amount.StringFixed(amountPlaces),
			e.Category,
			e.Description,
		}
		if err := cw.Write(record); err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("flush csv: %w", err))
	}

	return exportFilePrefix + now.Format(exportFileLayout) + exportFileSuffix, nil
}
