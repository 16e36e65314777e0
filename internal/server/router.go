// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"gorm.io/gorm"

	_ "finanzas/internal/docs" // swagger docs
	"finanzas/internal/handlers"
	"finanzas/internal/metrics"
	"finanzas/internal/middleware"
	"finanzas/internal/services"
)

// Options configures the router.
type Options struct {
	Metrics *metrics.Metrics
	// AuthLimiter rate limits the public auth routes. Nil disables limiting.
	AuthLimiter *limiter.Limiter
	CORSOrigins []string
}

// Services bundles the business services used by the handlers.
type Services struct {
	Users        services.UserServicer
	Accounts     services.AccountServicer
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Dashboard    services.DashboardServicer
	Data         services.DataServicer
	Audit        services.AuditServicer
}

// NewServices builds every service on db.
func NewServices(db *gorm.DB, m *metrics.Metrics) *Services {
	accounts := services.NewAccountService(db)
	budgets := services.NewBudgetService(db, m)
	return &Services{
		Users:        services.NewUserService(db),
		Accounts:     accounts,
		Categories:   services.NewCategoryService(db),
		Transactions: services.NewTransactionService(db, accounts, budgets),
		Budgets:      budgets,
		Dashboard:    services.NewDashboardService(db, budgets, m),
		Data:         services.NewDataService(db, accounts, m),
		Audit:        services.NewAuditService(db),
	}
}

// NewRouter builds the gin engine serving the API under /api/v1.
func NewRouter(svc *Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Categories, svc.Audit)
	profileHandler := handlers.NewProfileHandler(svc.Users, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Accounts, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	dataHandler := handlers.NewDataHandler(svc.Data, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics(opts.Metrics))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.CORSOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", middleware.RateLimit(opts.AuthLimiter), authHandler.Register)
	auth.POST("/login", middleware.RateLimit(opts.AuthLimiter), authHandler.Login)
	auth.POST("/refresh", middleware.RateLimit(opts.AuthLimiter), authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile", profileHandler.UpdateProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.POST("/reset-defaults", categoryHandler.ResetDefaultCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/stats/summary", transactionHandler.GetSummary)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/stats/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)
	budgets.POST("/:id/update-spent", budgetHandler.UpdateBudgetSpent)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.GetStats)
	dashboard.GET("/monthly", dashboardHandler.GetMonthlyTotals)
	dashboard.GET("/categories", dashboardHandler.GetCategoryBreakdown)
	dashboard.GET("/recent", dashboardHandler.GetRecentTransactions)
	dashboard.GET("/charts/monthly.png", dashboardHandler.GetMonthlyChart)
	dashboard.GET("/charts/categories.png", dashboardHandler.GetCategoryChart)

	data := protected.Group("/data")
	data.GET("/transactions.csv", dataHandler.ExportTransactions)
	data.GET("/budgets.csv", dataHandler.ExportBudgets)
	data.POST("/transactions/import", dataHandler.ImportTransactions)

	return router
}
