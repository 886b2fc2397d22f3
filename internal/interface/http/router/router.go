// Package router 组装Gin引擎与路由
package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/bookstore-core/docs"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-core/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-core/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Inventory *handler.InventoryHandler
	Rental    *handler.RentalHandler
	Order     *handler.OrderHandler
	Catalog   *handler.CatalogHandler
	Promotion *handler.PromotionHandler
	Stats     *handler.StatsHandler
}

// New 创建Gin引擎并注册路由
func New(cfg *config.Config, log *slog.Logger, h *Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestLogger(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
			response.ErrorWithCode(c, apperrors.ErrCodeInternal, "系统内部错误")
			c.Abort()
		}),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 生产环境不暴露Swagger
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Response{Code: apperrors.ErrCodeNotFound, Message: "接口不存在"})
	})

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		{
			books.GET("", h.Catalog.ListBooks)
			books.POST("", h.Catalog.CreateBook)
			books.GET("/:isbn", h.Catalog.GetBook)
			books.GET("/:isbn/copies", h.Inventory.ListCopies)
			books.POST("/:isbn/copies", h.Inventory.ProvisionCopies)
			books.GET("/:isbn/available", h.Inventory.AvailableCount)
		}

		v1.GET("/inventory/summary", h.Inventory.Summary)

		items := v1.Group("/items")
		{
			items.GET("", h.Catalog.ListItems)
			items.POST("", h.Catalog.CreateItem)
			items.GET("/:id", h.Catalog.GetItem)
			items.GET("/:id/reviews", h.Catalog.ListReviews)
			items.POST("/:id/reviews", h.Catalog.CreateReview)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", h.Catalog.CreateCustomer)
			customers.GET("/:id", h.Catalog.GetCustomer)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.CreateOrder)
			orders.GET("", h.Order.ListOrders)
			orders.GET("/:id", h.Order.GetOrder)
		}

		rentals := v1.Group("/rentals")
		{
			rentals.POST("", h.Rental.CreateRental)
			rentals.GET("", h.Rental.ListRentals)
			rentals.GET("/:id", h.Rental.GetRental)
			rentals.POST("/:id/return", h.Rental.ReturnRental)
		}

		promotions := v1.Group("/promotions")
		{
			promotions.GET("", h.Promotion.List)
			promotions.POST("", h.Promotion.Create)
			promotions.GET("/active", h.Promotion.ListActive)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/dashboard", h.Stats.Dashboard)
			stats.GET("/popular-books", h.Stats.PopularBooks)
			stats.GET("/revenue", h.Stats.RevenueByMonth)
		}
	}

	return r
}
