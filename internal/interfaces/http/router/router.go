// Package router assembles the gin engine and the HTTP server lifecycle.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/internal/infrastructure/monitoring"
	"github.com/openjwks/jwksd/internal/interfaces/http/handlers"
	"github.com/openjwks/jwksd/pkg/constants"
	"github.com/openjwks/jwksd/pkg/logger"
)

// Router wires handlers into a gin engine and manages the HTTP server.
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	logger        logger.Logger
	healthHandler *handlers.HealthHandler
	keysHandler   *handlers.KeysHandler
	jwksHandler   *handlers.JwksHandler
	metrics       *monitoring.Metrics
	server        *http.Server
}

// NewRouter creates a Router.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	keysHandler *handlers.KeysHandler,
	jwksHandler *handlers.JwksHandler,
	metrics *monitoring.Metrics,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:        gin.New(),
		config:        cfg,
		logger:        log.WithComponent("http"),
		healthHandler: healthHandler,
		keysHandler:   keysHandler,
		jwksHandler:   jwksHandler,
		metrics:       metrics,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(handlers.RecoveryMiddleware(r.logger))
	r.engine.Use(handlers.RequestIDMiddleware())
	r.engine.Use(handlers.LoggingMiddleware(r.logger))
	if r.metrics != nil {
		r.engine.Use(handlers.MetricsMiddleware(r.metrics))
	}
	if r.config.Tracing.Enabled {
		r.engine.Use(handlers.TracingMiddleware(r.config.Tracing.ServiceName))
	}

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.healthHandler.Liveness)
	r.engine.GET("/health/ready", r.healthHandler.Readiness)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if r.config.Server.Debug {
		pprof.Register(r.engine)
	}

	r.engine.GET(constants.JWKSWellKnownPath, r.jwksHandler.GetJwks)

	keys := r.engine.Group("/jwks")
	{
		keys.POST("", r.keysHandler.CreateKey)
		keys.GET("", r.keysHandler.ListKeys)
		keys.GET("/:id", r.keysHandler.GetKey)
		keys.DELETE("/:id", r.keysHandler.DeleteKey)
	}
}

// Engine exposes the underlying gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (r *Router) Start() error {
	r.server = &http.Server{
		Addr:         r.config.Server.Addr(),
		Handler:      r.engine,
		ReadTimeout:  time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(r.config.Server.WriteTimeout) * time.Second,
	}

	r.logger.Info(context.Background(), "http server starting",
		logger.String("addr", r.server.Addr))

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (r *Router) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "http server shutting down")
	return r.server.Shutdown(ctx)
}
