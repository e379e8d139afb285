package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"licenseplatform/services/activation-service/config"
	"licenseplatform/services/activation-service/internal/application/audit"
	"licenseplatform/services/activation-service/internal/application/usecase"
	"licenseplatform/services/activation-service/internal/domain"
	"licenseplatform/services/activation-service/internal/infrastructure/metrics"
	"licenseplatform/services/activation-service/internal/infrastructure/repository"
	grpc_server "licenseplatform/services/activation-service/internal/transport/grpc"
	"licenseplatform/services/activation-service/pkg/activationrpc"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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
		log.Error("activation service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	var db *gorm.DB
	if cfg.UsesPostgres() {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return fmt.Errorf("connect to DB: %w", err)
		}
		if err := repository.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate DB: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.UsesRedis() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer rdb.Close()
	}

	bindings, err := newBindingStore(cfg.StoreDriver, db, rdb)
	if err != nil {
		return err
	}
	auditLog, err := newAuditLog(cfg.AuditDriver, db, rdb)
	if err != nil {
		return err
	}

	m := metrics.New()
	recorder := audit.NewRecorder(auditLog,
		audit.WithTimeout(cfg.AuditTimeout),
		audit.WithLogger(log.With("component", "audit")),
		audit.WithFailureCounter(m.AuditFailures()),
	)
	activationUseCase := usecase.NewActivationUseCase(bindings, recorder, usecase.Options{
		MaxDevices:   cfg.MaxDevices,
		StoreTimeout: cfg.StoreTimeout,
		Logger:       log.With("component", "resolver"),
		Observer:     m,
	})
	activationServer := grpc_server.NewActivationServer(activationUseCase)

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCPort, err)
	}

	grpcServer := grpc.NewServer()
	activationrpc.RegisterActivationServiceServer(grpcServer, activationServer)
	reflection.Register(grpcServer)

	log.Info("activation service listening",
		"addr", cfg.GRPCPort,
		"store", cfg.StoreDriver,
		"audit", cfg.AuditDriver,
		"max_devices", cfg.MaxDevices,
	)

	serveErr := make(chan error, 2)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	var metricsServer *http.Server
	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
		log.Info("metrics listening", "addr", cfg.MetricsPort)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	log.Info("shutting down")
	grpcServer.GracefulStop()
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(ctx)
	}
	return nil
}

func newBindingStore(driver string, db *gorm.DB, rdb *redis.Client) (domain.BindingStore, error) {
	switch driver {
	case config.DriverPostgres:
		return repository.NewBindingRepository(db), nil
	case config.DriverRedis:
		return repository.NewRedisBindingStore(rdb), nil
	case config.DriverMemory:
		return repository.NewMemoryBindingStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}

func newAuditLog(driver string, db *gorm.DB, rdb *redis.Client) (domain.AuditLog, error) {
	switch driver {
	case config.DriverPostgres:
		return repository.NewAuditRepository(db), nil
	case config.DriverRedis:
		return repository.NewRedisAuditLog(rdb), nil
	case config.DriverMemory:
		return repository.NewMemoryAuditLog(), nil
	default:
		return nil, fmt.Errorf("unknown AUDIT_DRIVER %q", driver)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
