// Package server exposes the pricing engine over a JSON HTTP API for
// front ends that render the heatmaps.
//
// Routes:
//
//	GET  /health
//	POST /api/v1/pricing/price
//	POST /api/v1/pricing/grid
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-heatmap/internal/config"
	"github.com/contactkeval/option-heatmap/internal/logger"
)

const serviceName = "option-heatmap"

// Server wraps the gin engine and its http.Server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
}

// New builds the router from the server settings. workers bounds the grid
// worker pool per request (0 = GOMAXPROCS).
func New(cfg config.ServerConfig, workers int) *Server {
	e := gin.New()
	e.Use(gin.Recovery(), requestLogger())

	h := &PricingHandler{
		maxSteps: cfg.MaxSteps,
		maxCells: cfg.MaxCells,
		timeout:  time.Duration(cfg.Timeout),
		workers:  workers,
	}
	h.RegisterRoutes(&e.RouterGroup)

	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &Server{
		engine: e,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Slog().Handler(), slog.LevelError),
		},
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down REST server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s status=%d latency=%v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
