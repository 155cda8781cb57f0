// Package gateway exposes the pipeline to the dashboard over a small
// read-only HTTP API: filtered record views, KPI sets, rollup series,
// per-source diagnostics, and snapshot downloads. The dashboard sends
// nothing back into the core except new filter specifications.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsight-io/chainsight/internal/pipeline"
	"github.com/chainsight-io/chainsight/pkg/config"
	"github.com/chainsight-io/chainsight/pkg/logger"
)

// Server hosts the dashboard API.
type Server struct {
	cfg      *config.PipelineConfig
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	http     *http.Server
}

// NewServer wires the API around a loaded pipeline.
func NewServer(cfg *config.PipelineConfig, p *pipeline.Pipeline) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		cfg:      cfg,
		pipeline: p,
		logger:   logger.Get().With(zap.String("component", "gateway")),
	}

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewDashboardHandler(p, cfg)
	h.RegisterRoutes(router.Group("/api/v1"))

	s.http = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	ds := s.pipeline.Dataset()
	if ds == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"run_id":    ds.RunID,
		"loaded_at": ds.LoadedAt,
	})
}
