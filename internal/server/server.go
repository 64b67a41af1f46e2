// Package server wires configuration, the session store and the HTTP routes
// into a runnable server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/config"
	"github.com/cristianadrielbraun/qrultimate/internal/handlers"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

// ShutdownTimeout bounds the drain of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine for cfg.
func NewRouter(cfg *config.Config) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLogger())
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticDir)

	store := studio.NewStore(cfg.Studio(), cfg.SessionCapacity, cfg.SessionTTL, cfg.DownloadTTL)
	h := handlers.New(store, handlers.Options{
		UploadLimit: cfg.UploadLimit,
		ExportSizes: cfg.ExportSizes,
		PublicURL:   cfg.PublicURL,
	})
	h.Register(r)
	return r
}

// New returns the HTTP server for cfg.
func New(cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	srv := New(cfg)

	errc := make(chan error, 1)
	go func() {
		logger.L().Info("server starting", zap.String("addr", cfg.Addr), zap.Bool("production", cfg.Production))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.L().Info("server stopped")
	return nil
}
