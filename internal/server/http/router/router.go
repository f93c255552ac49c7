package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/polkiloo/procuremart/internal/metrics"
	"github.com/polkiloo/procuremart/internal/server/http/handlers"
	"github.com/polkiloo/procuremart/internal/server/http/middleware"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Params struct {
	fx.In

	Facade   handlers.ProcurementFacade
	Logger   *slog.Logger
	Metrics  *metrics.HTTP
	Gatherer prometheus.Gatherer
	Health   HealthChecker `optional:"true"`
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.RequestMetrics(p.Metrics))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithDecompressFn(gzip.DefaultDecompressHandle)))

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	if p.Health != nil {
		engine.GET("/healthz", func(c *gin.Context) {
			if err := p.Health.HealthCheck(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.Status(http.StatusServiceUnavailable)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	quoteHandler := handlers.NewQuoteHandler(p.Facade)
	creditHandler := handlers.NewCreditHandler(p.Facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))

	authed.POST("/quotes/:id/accept", quoteHandler.Accept)

	orders := authed.Group("/orders/:id")
	orders.GET("", orderHandler.Get)
	orders.PATCH("", orderHandler.Update)
	orders.PATCH("/status", orderHandler.UpdateStatus)
	orders.POST("/verify", orderHandler.Verify)
	orders.POST("/payment/reference", paymentHandler.SubmitReference)
	orders.POST("/payment/confirm", paymentHandler.Confirm)
	orders.POST("/payment/reject", paymentHandler.Reject)
	orders.GET("/payment/audit", paymentHandler.Audit)

	clients := authed.Group("/clients/:id")
	clients.GET("/credit", creditHandler.Profile)
	clients.PUT("/credit", creditHandler.SetLimit)

	return engine
}
