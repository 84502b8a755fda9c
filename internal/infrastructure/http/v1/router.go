// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"opsboard/internal/domain/analytics"
	"opsboard/internal/domain/auth"
	"opsboard/internal/domain/catalogs/category"
	"opsboard/internal/domain/catalogs/product"
	"opsboard/internal/domain/inventory"
	"opsboard/internal/domain/sales"
	"opsboard/internal/domain/tasks"
	"opsboard/internal/infrastructure/http/v1/handlers"
	"opsboard/internal/infrastructure/http/v1/middleware"
	"opsboard/pkg/logger"
)

// RouterConfig wires the services into the HTTP surface.
type RouterConfig struct {
	Pool   *pgxpool.Pool
	Logger *logger.Logger

	AuthService      *auth.Service
	CategoryService  *category.Service
	ProductService   *product.Service
	SaleService      *sales.Service
	TaskService      *tasks.Service
	AnalyticsService *analytics.Service
	StatsCache       *inventory.StatsCache
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery first, error rendering last-in wins.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	categoryHandler := handlers.NewCategoryHandler(cfg.CategoryService)
	productHandler := handlers.NewProductHandler(cfg.ProductService, cfg.StatsCache)
	saleHandler := handlers.NewSaleHandler(cfg.SaleService, cfg.ProductService, cfg.StatsCache)
	taskHandler := handlers.NewTaskHandler(cfg.TaskService)
	analyticsHandler := handlers.NewAnalyticsHandler(cfg.AnalyticsService)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.AuthService))

		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/register",
			middleware.RequireRole(auth.RoleAdmin), authHandler.Register)

		registerCatalogRoutes(protected, categoryHandler, productHandler)
		registerSaleRoutes(protected, saleHandler)
		registerTaskRoutes(protected, taskHandler)
		registerAnalyticsRoutes(protected, analyticsHandler, taskHandler, productHandler)
	}

	return router
}

func registerCatalogRoutes(g *gin.RouterGroup, categoryHandler *handlers.CategoryHandler, productHandler *handlers.ProductHandler) {
	categories := g.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.POST("", categoryHandler.Create)
		categories.GET("/:id", categoryHandler.Get)
		categories.PUT("/:id", categoryHandler.Update)
		categories.DELETE("/:id", categoryHandler.Delete)
	}

	products := g.Group("/products")
	{
		products.GET("", productHandler.List)
		products.POST("", productHandler.Create)
		products.GET("/stats", productHandler.Stats)
		products.GET("/:id", productHandler.Get)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
		products.POST("/:id/receive", productHandler.ReceiveStock)
		products.PATCH("/:id/min-stock", productHandler.UpdateMinStock)
	}
}

func registerSaleRoutes(g *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	salesGroup := g.Group("/sales")
	{
		salesGroup.GET("", saleHandler.List)
		salesGroup.POST("", saleHandler.Create)
		salesGroup.GET("/:id", saleHandler.Get)
		salesGroup.PUT("/:id", saleHandler.Update)
		salesGroup.DELETE("/:id", saleHandler.Delete)
	}
}

func registerTaskRoutes(g *gin.RouterGroup, taskHandler *handlers.TaskHandler) {
	tasksGroup := g.Group("/tasks")
	{
		tasksGroup.GET("", taskHandler.List)
		tasksGroup.POST("", taskHandler.Create)
		tasksGroup.GET("/:id", taskHandler.Get)
		tasksGroup.PUT("/:id", taskHandler.Update)
		tasksGroup.PATCH("/:id/status", taskHandler.SetStatus)
		tasksGroup.DELETE("/:id", taskHandler.Delete)
	}
}

func registerAnalyticsRoutes(g *gin.RouterGroup, analyticsHandler *handlers.AnalyticsHandler, taskHandler *handlers.TaskHandler, productHandler *handlers.ProductHandler) {
	analyticsGroup := g.Group("/analytics")
	{
		analyticsGroup.GET("/revenue", analyticsHandler.Revenue)
		analyticsGroup.GET("/kpis", analyticsHandler.KPIs)
		analyticsGroup.GET("/daily-revenue", analyticsHandler.DailyRevenue)
		analyticsGroup.GET("/daily-sales", analyticsHandler.DailySalesCount)
		analyticsGroup.GET("/top-products", analyticsHandler.TopProducts)
		analyticsGroup.GET("/category-sales", analyticsHandler.CategorySales)
		analyticsGroup.GET("/turnover", analyticsHandler.Turnover)
		analyticsGroup.GET("/task-summary", taskHandler.Summary)
		analyticsGroup.GET("/task-trend", taskHandler.Trend)
		analyticsGroup.GET("/low-stock", productHandler.LowStock)

		reports := analyticsGroup.Group("/reports")
		{
			reports.GET("", analyticsHandler.ListReports)
			reports.POST("", analyticsHandler.SaveReport)
			reports.GET("/:id", analyticsHandler.GetReport)
			reports.DELETE("/:id", analyticsHandler.DeleteReport)
		}
	}
}
