package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

// Pipeline returns the stages every request passes through, outermost
// first. ErrorMiddleware translates errors raised by anything after it,
// including the route-specific stages and handlers.
func Pipeline(logger *slog.Logger, now Clock, requests *prometheus.CounterVec) gin.HandlersChain {
	return gin.HandlersChain{
		TimestampMiddleware(now),
		AccessLogMiddleware(logger),
		RequestIDMiddleware(),
		MetricsMiddleware(requests),
		ErrorMiddleware(logger),
		RecoveryMiddleware(logger),
	}
}

// RegisterRoutes wires the product API. Write routes run auth, then their
// own stages, then the handler.
func RegisterRoutes(router *gin.Engine, handler *Handler, validator PayloadValidator, checker HealthChecker, apiKey string) {
	auth := AuthMiddleware(apiKey)

	router.GET("/", handler.Root)

	api := router.Group("/api/products")
	api.GET("", handler.ListProducts)
	// Registered before /:id so the literal segment is never taken for an id.
	api.GET("/stats/by-category", handler.CategoryStats)
	api.GET("/:id", handler.GetProduct)
	api.POST("", auth, ValidateCreate(validator), handler.CreateProduct)
	api.PUT("/:id", auth, RequireProduct(handler.service), ValidateUpdate(validator), handler.UpdateProduct)
	api.DELETE("/:id", auth, handler.DeleteProduct)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(handler.RouteNotFound)
}

type RouterConfig struct {
	Logger    *slog.Logger
	Clock     Clock
	Requests  *prometheus.CounterVec
	Handler   *Handler
	Validator PayloadValidator
	Health    HealthChecker
	APIKey    string
}

// NewRouter builds an engine with the full pipeline and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(Pipeline(cfg.Logger, cfg.Clock, cfg.Requests)...)
	RegisterRoutes(router, cfg.Handler, cfg.Validator, cfg.Health, cfg.APIKey)
	return router
}
