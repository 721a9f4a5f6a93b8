// Package server exposes the reshape over HTTP: upload a sheet, pick the
// identifier and exclusions, download the workbook.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/config"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/convert"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/metrics"
)

var ginModeOnce sync.Once

type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	runner  *convert.Runner
	engine  *gin.Engine
}

// New wires routes and middleware. m may be nil when metrics are disabled.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ginModeOnce.Do(func() {
		if gin.Mode() == gin.DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}
	})

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		runner:  convert.NewRunner(cfg, logger, m),
		engine:  gin.New(),
	}
	s.engine.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	// Metrics sits outside Recovery so recovered panics are counted as 500s.
	s.engine.Use(RequestID(), Logging(logger))
	if m != nil {
		s.engine.Use(Metrics(m))
	}
	s.engine.Use(Recovery(logger), BodyLimit(cfg.Server.MaxUploadBytes))

	s.engine.GET("/healthz", s.handleHealth)
	api := s.engine.Group("/api/v1")
	api.POST("/columns", s.handleColumns)
	api.POST("/convert", s.handleConvert)
	api.POST("/reshape", s.handleReshape)
	if m != nil && cfg.Metrics.Enabled {
		s.engine.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	return s
}

// Handler returns the routed engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
