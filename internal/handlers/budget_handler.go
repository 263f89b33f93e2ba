package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/models"
	"spendwise/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// SetBudgetRequest represents the request payload for setting a budget.
type SetBudgetRequest struct {
	Category string          `json:"category" binding:"required,category"`
	Amount   decimal.Decimal `json:"amount" binding:"required,gt=0,lte=9999999999.99" swaggertype:"number"`
}

// SetBudget handles creating or replacing the current month's budget.
// @Summary     Set a budget
// @Description Create or overwrite the budget for a category in the current month
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} BudgetResponse "Budget stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	budget, err := h.budgetService.SetBudget(c.Request.Context(), req.Category, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgets handles the budget-vs-actual report for the current month.
// @Summary     Budget status
// @Description Every budget of the current month with spent and remaining amounts
// @Tags        budgets
// @Produce     json
// @Success     200 {object} BudgetStatusResponse "Budget status"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	status, err := h.budgetService.GetBudgetStatus(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if status == nil {
		status = []analytics.BudgetStatus{}
	}

	c.JSON(http.StatusOK, gin.H{"budgets": status})
}

// BudgetResponse wraps a single budget.
type BudgetResponse struct {
	Budget models.Budget `json:"budget"`
}

// BudgetStatusResponse wraps the budget-vs-actual rows.
type BudgetStatusResponse struct {
	Budgets []analytics.BudgetStatus `json:"budgets"`
}
