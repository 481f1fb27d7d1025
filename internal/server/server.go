// Package server is this core's HTTP surface: a Gin router assembled from a
// fixed middleware stack plus the two operational endpoints this core owns,
// /healthz and /metrics. The JSON-RPC bundler front-end that would expose
// eth_sendUserOperation and friends lives elsewhere.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aa-bundler/bundler-core/gasprice"
	"github.com/aa-bundler/bundler-core/internal/config"
	"github.com/aa-bundler/bundler-core/internal/telemetry"
	"github.com/aa-bundler/bundler-core/validator"
)

// Version is the service version (set at build time).
var Version = "dev"

// Server is the HTTP server wrapping the validator and gas price manager.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	telemetry  *telemetry.Sink
	validator  *validator.Validator
	gasManager *gasprice.Manager
}

// New creates a new demo server.
func New(v *validator.Validator, gm *gasprice.Manager, sink *telemetry.Sink, cfg *config.Config) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	s := &Server{
		router:     router,
		cfg:        cfg,
		telemetry:  sink,
		validator:  v,
		gasManager: gm,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggingMiddleware())
	s.router.Use(s.telemetry.Middleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/metrics", s.telemetry.Handler())
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	_, err := s.gasManager.GetGasPrice(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"version": Version,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": Version,
	})
}

// Start runs the HTTP server until an interrupt signal arrives, then drains
// in-flight requests with a 30s grace period.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting bundlercore-demo on port %d", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	s.waitForShutdown()
}

func (s *Server) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
