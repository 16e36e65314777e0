package main

import (
	"fmt"
	"os"

	"finanzas/internal/config"
	"finanzas/internal/database"
	"finanzas/internal/logger"
	"finanzas/internal/metrics"
	"finanzas/internal/middleware"
	"finanzas/internal/server"
	"finanzas/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           Finanzas API
// @version         1.0
// @description     Finanzas is a personal finance API for tracking accounts, categorized transactions and budgets.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	authLimiter, err := middleware.NewIPLimiter(appConfig.AuthRateLimit)
	if err != nil {
		return fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	m := metrics.New()
	router := server.NewRouter(server.NewServices(dbManager.DB(), m), server.Options{
		Metrics:     m,
		AuthLimiter: authLimiter,
		CORSOrigins: appConfig.CORSAllowedOrigins,
	})

	log.Infof("Starting Finanzas server on port %s (db driver %s)", appConfig.Port, appConfig.DBDriver)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
