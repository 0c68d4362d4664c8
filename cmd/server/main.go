package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"relay-panel/internal/config"
	"relay-panel/internal/repository"
	"relay-panel/internal/server"
	"relay-panel/internal/service"
	"relay-panel/internal/telegram_bot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.MigrateOnStart {
		if err := repository.Migrate(cfg.Database.URL, 0, repository.ZapMigrateLogger{Logger: logger}); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, repository.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// A nil *ChatResolver must not end up inside the interface.
	var resolver service.ChatResolver
	chatResolver, err := telegram_bot.NewChatResolver(telegram_bot.Config{
		Token:             cfg.Telegram.BotToken,
		APIEndpoint:       cfg.Telegram.APIEndpoint,
		RequestsPerSecond: cfg.Telegram.RequestsPerSecond,
	}, logger)
	if err != nil {
		logger.Warn("Chat resolver unavailable, source titles will not be looked up", zap.Error(err))
	} else if chatResolver != nil {
		resolver = chatResolver
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, db, resolver, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
