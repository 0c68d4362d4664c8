package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"relay-panel/internal/config"
	"relay-panel/internal/handler"
	"relay-panel/internal/middleware"
	"relay-panel/internal/repository"
	"relay-panel/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Database is the pool the server runs on. *sqlx.DB satisfies it.
type Database interface {
	repository.DB
	PingContext(ctx context.Context) error
}

type Server struct {
	router   *gin.Engine
	db       Database
	cfg      *config.Config
	resolver service.ChatResolver
	logger   *zap.Logger
}

// NewServer builds the router. resolver may be nil.
func NewServer(cfg *config.Config, db Database, resolver service.ChatResolver, logger *zap.Logger) *Server {
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	targetRepo := repository.NewTargetChannelRepository(s.db, s.logger)
	sourceRepo := repository.NewSourceChannelRepository(s.db, s.logger)
	postRepo := repository.NewPostRepository(s.db, s.logger)
	statsRepo := repository.NewStatsRepository(s.db, s.logger)
	settingsRepo := repository.NewSettingsRepository(s.db, s.logger)

	targetHandler := handler.NewTargetChannelHandler(service.NewTargetChannelService(targetRepo, s.logger), s.logger)
	sourceHandler := handler.NewSourceChannelHandler(service.NewSourceChannelService(sourceRepo, targetRepo, s.resolver, s.logger), s.logger)
	postHandler := handler.NewPostHandler(postRepo, s.logger)
	statsHandler := handler.NewStatsHandler(service.NewStatsService(statsRepo, settingsRepo, s.logger), s.logger)
	settingsHandler := handler.NewSettingsHandler(service.NewSettingsService(settingsRepo, s.logger), s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("Database ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/channels", sourceHandler.List)
		api.POST("/channels", sourceHandler.Create)
		api.PUT("/channels", sourceHandler.Update)
		api.DELETE("/channels", sourceHandler.Delete)
		api.GET("/channels/stats", sourceHandler.Stats)

		api.GET("/target-channels", targetHandler.List)
		api.POST("/target-channels", targetHandler.Create)
		api.PUT("/target-channels", targetHandler.Update)
		api.DELETE("/target-channels", targetHandler.Delete)

		api.GET("/posts", postHandler.List)

		api.GET("/settings", settingsHandler.GetSettings)
		api.POST("/settings", settingsHandler.UpdateSetting)

		api.GET("/stats", statsHandler.GetStats)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server exited")
	return nil
}
