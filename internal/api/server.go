// internal/api/server.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/engine"
	"github.com/rabbit-labs/launchpad/internal/metrics"
)

// Server is the HTTP surface over the trading engine. It owns no state of its
// own; every handler is a thin translation layer around one engine call.
type Server struct {
	engine  *engine.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics
	srv     *http.Server
}

func NewServer(eng *engine.Engine, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		engine:  eng,
		logger:  logger.Named("api"),
		metrics: m,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/instruments", s.createInstrument)
		v1.GET("/instruments", s.listInstruments)
		v1.GET("/instruments/:id", s.getInstrument)
		v1.GET("/instruments/:id/stats", s.getStats)
		v1.POST("/instruments/:id/buy", s.buy)
		v1.POST("/instruments/:id/sell", s.sell)
		v1.POST("/instruments/:id/graduate", s.graduate)

		admin := v1.Group("/admin")
		{
			admin.POST("/pause", s.pause)
			admin.POST("/unpause", s.unpause)
			admin.POST("/emergency/activate", s.activateEmergency)
			admin.POST("/emergency/deactivate", s.deactivateEmergency)
			admin.POST("/treasury/initiate", s.initiateTreasuryChange)
			admin.POST("/treasury/complete", s.completeTreasuryChange)
		}
	}

	return router
}

// Start begins serving on addr and blocks until the listener fails.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
