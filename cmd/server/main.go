package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vhoang/cinema-booking/config"
	"github.com/vhoang/cinema-booking/internal/app"
	"github.com/vhoang/cinema-booking/internal/cache"
	"github.com/vhoang/cinema-booking/internal/handler"
	"github.com/vhoang/cinema-booking/internal/mq"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// TranslateError maps driver duplicate-key failures onto
	// gorm.ErrDuplicatedKey, which the locking path relies on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
	}

	a := app.New(cfg, db, redisCache, mqConn, logger)
	if err := a.Init(); err != nil {
		logger.Fatal("failed to init app", zap.Error(err))
	}

	r := gin.Default()
	handler.RegisterRoutes(r, a)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := a.Close(); err != nil {
		logger.Error("app close failed", zap.Error(err))
	}
}
