// Package httpapi wires the ops HTTP surface of the bot (Gin) to the tally
// and schedule services: health, Prometheus metrics and a read-only JSON API.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. Logger
//  4. Recovery
//  5. Metrics
//  6. gzip (JSON API only)
package httpapi

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/wyr-bot/internal/config"
	"github.com/tbourn/wyr-bot/internal/http/handlers"
	"github.com/tbourn/wyr-bot/internal/http/middleware"
	"github.com/tbourn/wyr-bot/internal/services"
)

// APIBasePath prefixes the JSON endpoints.
const APIBasePath = "/api/v1"

// NewEngine returns a bare Gin engine in the configured mode.
func NewEngine(cfg config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	return gin.New()
}

// RegisterRoutes attaches middleware and endpoints to r.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(
		&services.TallyService{DB: db},
		&services.ScheduleService{DB: db, Default: cfg.Schedule.Default},
	)

	api := r.Group(APIBasePath, gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET("/votes", h.ListVotes)
		api.GET("/votes/:message_id", h.GetVote)
		api.GET("/schedule", h.GetSchedule)
	}
}

// NewServer builds the ops http.Server for handler using the configured
// address and timeouts.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}
