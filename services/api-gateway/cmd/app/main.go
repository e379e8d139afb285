package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"licenseplatform/services/api-gateway/internal/client"
	"licenseplatform/services/api-gateway/internal/config"
	"licenseplatform/services/api-gateway/internal/middleware"
	"licenseplatform/services/api-gateway/internal/security"
	handlers "licenseplatform/services/api-gateway/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api gateway stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	var rateLimit gin.HandlerFunc
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable, rate limiter will fail open", "addr", cfg.RedisAddr, "error", err)
		}
		defer rdb.Close()
		rateLimit = middleware.NewRateLimiter(rdb, log.With("component", "ratelimit")).
			Limit("activate", cfg.RateLimit, cfg.RateWindow)
	} else {
		log.Info("REDIS_ADDR not set, using in-process rate limiter")
		rateLimit = middleware.NewLocalRateLimiter(cfg.RateLimit, cfg.RateWindow).Limit()
	}

	if cfg.APIKeyHash == "" {
		log.Warn("API_KEY_HASH not set, activation endpoint is unauthenticated")
	}

	activationClient, err := client.NewActivationClient(cfg.ActivationSvcURL)
	if err != nil {
		return err
	}
	defer activationClient.Close()
	log.Info("activation service client ready", "addr", cfg.ActivationSvcURL)

	activationHandler := handlers.NewActivationHandler(activationClient.Client, cfg.RPCTimeout, log.With("component", "handler"))

	router, err := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.Origins(),
		TrustedProxies: cfg.Proxies(),
		APIKeyHash:     cfg.APIKeyHash,
	},
		activationHandler,
		rateLimit,
		security.NewAPIKeyHasher(),
		security.NewTokenManager(cfg.SupportJWTSecret),
		log.With("component", "http"),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("api gateway listening", "addr", cfg.Port)
		serveErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-quit:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
