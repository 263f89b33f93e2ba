// Package server assembles the HTTP router from the configured services.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spendwise/internal/config"
	_ "spendwise/internal/docs" // Import swagger docs
	"spendwise/internal/handlers"
	"spendwise/internal/logger"
	"spendwise/internal/middleware"
	"spendwise/internal/receipts"
	"spendwise/internal/repository"
	"spendwise/internal/services"
	"spendwise/internal/validator"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Expenses       services.ExpenseServicer
	Receipts       services.ReceiptServicer
	Stats          services.StatsServicer
	Budgets        services.BudgetServicer
	MaxUploadBytes int64
}

// New wires the gorm repositories, the receipt store rooted at
// cfg.UploadDir on fs and the services into a router.
func New(cfg *config.Config, db *gorm.DB, fs afero.Fs, opts ...services.Option) (*gin.Engine, error) {
	store := receipts.NewStore(fs, cfg.UploadDir)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to prepare receipt directory: %w", err)
	}
	logger.Get().Infow("receipt store ready", "dir", store.Dir())

	repo := repository.NewGormStore(db)
	return NewRouter(Deps{
		Expenses:       services.NewExpenseService(repo, store, opts...),
		Receipts:       services.NewReceiptService(store),
		Stats:          services.NewStatsService(repo, opts...),
		Budgets:        services.NewBudgetService(repo, repo, opts...),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}), nil
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	validator.Register()

	expenseHandler := handlers.NewExpenseHandler(d.Expenses)
	receiptHandler := handlers.NewReceiptHandler(d.Receipts)
	statsHandler := handlers.NewStatsHandler(d.Stats)
	budgetHandler := handlers.NewBudgetHandler(d.Budgets)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	expenses := v1.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("", middleware.BodyLimit(d.MaxUploadBytes), expenseHandler.CreateExpense)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	v1.GET("/receipts/:filename", receiptHandler.GetReceipt)

	v1.GET("/stats", statsHandler.GetStats)
	v1.GET("/forecast", statsHandler.GetForecast)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)

	return router
}
