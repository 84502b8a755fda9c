// Package main is the entry point for the opsboard API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsboard/internal/domain/analytics"
	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/catalogs/category"
	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/domain/inventory"
	"opsboard/internal/domain/sales"
	"opsboard/internal/domain/tasks"
	v1 "opsboard/internal/infrastructure/http/v1"
	"opsboard/internal/infrastructure/storage/postgres"
	"opsboard/internal/infrastructure/storage/postgres/analytics_repo"
	"opsboard/internal/infrastructure/storage/postgres/auth_repo"
	"opsboard/internal/infrastructure/storage/postgres/catalog_repo"
	"opsboard/internal/infrastructure/storage/postgres/report_repo"
	"opsboard/internal/infrastructure/storage/postgres/sale_repo"
	"opsboard/internal/infrastructure/storage/postgres/task_repo"
	"opsboard/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting opsboard server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	saleRepo := sale_repo.NewSaleRepo(txManager)
	taskRepo := task_repo.NewTaskRepo(txManager)
	analyticsRepo := analytics_repo.NewAnalyticsRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	reportRepo, err := report_repo.NewSavedReportRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize report storage", "error", err)
	}

	// --- Services ---
	issuer := auth.NewTokenIssuer(
		mustEnv("JWT_SECRET"),
		getEnvDuration("JWT_TTL", 24*time.Hour),
	)
	authService := auth.NewService(userRepo, tokenRepo, issuer)

	categoryService := category.NewService(categoryRepo)
	productService := product.NewService(productRepo, txManager)
	saleService := sales.NewService(saleRepo, productRepo, txManager)
	taskService := tasks.NewService(taskRepo)
	analyticsService := analytics.NewService(analyticsRepo, reportRepo)

	statsCache := inventory.NewStatsCache()
	if err := statsCache.Initialize(getEnvInt("LOW_STOCK_FALLBACK", inventory.DefaultMinStock)); err != nil {
		log.Fatalw("failed to initialize stats cache", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool.Pool,
		Logger:           log,
		AuthService:      authService,
		CategoryService:  categoryService,
		ProductService:   productService,
		SaleService:      saleService,
		TaskService:      taskService,
		AnalyticsService: analyticsService,
		StatsCache:       statsCache,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// Periodic pool stats for operators.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			postgres.LogPoolStats(ctx, pool.Pool)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
