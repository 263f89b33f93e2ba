package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/models"
	"spendwise/internal/services"
	"spendwise/internal/timeframe"
)

// receiptField is the multipart field carrying the optional receipt file.
const receiptField = "receipt"

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the form fields for recording an expense.
// Amount is kept as text so malformed numbers surface as INVALID_AMOUNT.
type CreateExpenseRequest struct {
	Amount      string `form:"amount" binding:"required"`
	Category    string `form:"category" binding:"required,category"`
	Description string `form:"description" binding:"max=500"`
}

// ListExpensesQuery holds the optional filters for listing and exporting.
type ListExpensesQuery struct {
	Timeframe string `form:"timeframe"`
	Category  string `form:"category" binding:"max=100"`
}

// CreateExpense handles recording a new expense with an optional receipt.
// @Summary     Create an expense
// @Description Record an expense dated now, optionally attaching a receipt file
// @Tags        expenses
// @Accept      multipart/form-data
// @Produce     json
// @Param       amount      formData number true  "Amount, greater than zero"
// @Param       category    formData string true  "Category label"
// @Param       description formData string false "Free-text description"
// @Param       receipt     formData file   false "Receipt image or document"
// @Success     201 {object} ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     413 {object} ErrorResponse "Receipt too large"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.GreaterThan(models.MaxAmount) {
		respondWithError(c, apperrors.ErrInvalidAmount)
		return
	}

	input := services.CreateExpenseInput{
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
	}

	header, err := c.FormFile(receiptField)
	switch {
	case err == nil && header.Filename != "":
		file, err := header.Open()
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		defer closeUpload(file)
		input.Receipt = &services.ReceiptUpload{Filename: header.Filename, Content: file}
	case err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		respondWithError(c, bindingError(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

func closeUpload(f multipart.File) {
	_ = f.Close()
}

// GetExpenses handles listing expenses.
// @Summary     List expenses
// @Description List expenses newest first, optionally limited to a timeframe and category
// @Tags        expenses
// @Produce     json
// @Param       timeframe query string false "week or month; anything else lists all"
// @Param       category  query string false "Exact category match"
// @Success     200 {object} ExpenseListResponse "Expenses"
// @Failure     400 {object} ErrorResponse "Invalid category"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), timeframe.Timeframe(q.Timeframe), q.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// DeleteExpense handles deleting an expense and its receipt.
// @Summary     Delete an expense
// @Description Delete an expense; its receipt file is removed on a best-effort basis
// @Tags        expenses
// @Produce     json
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// ExportExpenses handles downloading expenses as CSV.
// @Summary     Export expenses
// @Description Download the expenses in a timeframe as a CSV attachment
// @Tags        expenses
// @Produce     text/csv
// @Param       timeframe query string false "week or month; anything else exports all"
// @Success     200 {file} file "CSV file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	var buf bytes.Buffer
	filename, err := h.expenseService.ExportCSV(c.Request.Context(), timeframe.Timeframe(q.Timeframe), &buf)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExpenseResponse wraps a single expense.
type ExpenseResponse struct {
	Expense models.Expense `json:"expense"`
}

// ExpenseListResponse wraps a list of expenses.
type ExpenseListResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
