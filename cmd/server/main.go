package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roombook/internal/api"
	"roombook/internal/config"
	"roombook/internal/metrics"
	"roombook/internal/middleware"
	"roombook/internal/model"
	"roombook/internal/repository"
	"roombook/internal/service"
	"roombook/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default: config.yaml in . or ./config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.InitLogger(cfg.Server.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("application startup failed", zap.Error(err))
		os.Exit(1)
	}
}

// repositories is the storage the services run on.
type repositories struct {
	users    repository.UserInterface
	rooms    repository.MeetingRoomInterface
	bookings repository.BookingInterface
	sessions repository.SessionInterface
	captchas repository.CaptchaInterface
	rdb      *redis.Client
	health   func(ctx context.Context) error
	close    func()
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	observer := metrics.NewPrometheusObserver()
	authSvc := service.NewAuthService(repos.users, repos.sessions, observer,
		cfg.Auth.SigningKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userSvc := service.NewUserService(repos.users, repos.captchas, observer, cfg.Auth.CaptchaTTL)
	roomSvc := service.NewMeetingRoomService(repos.rooms)
	bookingSvc := service.NewBookingService(repos.bookings, repos.rooms, observer)

	if cfg.Server.SeedRooms {
		if err := roomSvc.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed meeting rooms: %w", err)
		}
	}

	r := api.RegisterRoutes(
		api.NewUserHandler(authSvc, userSvc),
		api.NewBookingHandler(roomSvc, bookingSvc),
		api.RouterConfig{
			AllowOrigins:   cfg.Server.AllowOrigins,
			Auth:           authSvc,
			CaptchaLimiter: middleware.NewRateLimiter(repos.rdb, "ratelimit:captcha:", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
			Health:         repos.health,
		},
	)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("env", cfg.Server.Environment),
			zap.String("storage", cfg.Server.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Server.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on exit")
		store := repository.NewMemoryStore()
		return &repositories{
			users:    store.Users(),
			rooms:    store.MeetingRooms(),
			bookings: store.Bookings(),
			sessions: store.Sessions(),
			captchas: store.Captchas(),
			close:    func() {},
		}, nil
	}

	rdb, err := initRedis(ctx, cfg.Redis, cfg.MySQL.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	db, err := initDB(ctx, cfg.MySQL)
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return &repositories{
		users:    repository.NewUserRepository(db),
		rooms:    repository.NewMeetingRoomRepository(db),
		bookings: repository.NewBookingRepository(db),
		sessions: repository.NewSessionRepository(rdb),
		captchas: repository.NewCaptchaRepository(rdb),
		rdb:      rdb,
		health: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis unhealthy: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("mysql unhealthy: %w", err)
			}
			return nil
		},
		close: func() {
			rdb.Close()
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		},
	}, nil
}

// -- Infrastructure Initializers --

// retry runs op with exponential backoff until it succeeds, ctx ends or
// maxElapsed passes. Containers started alongside the server need a moment.
func retry(ctx context.Context, what string, maxElapsed time.Duration, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.MaxInterval = 5 * time.Second
	exp.MaxElapsedTime = maxElapsed

	return backoff.RetryNotify(op, backoff.WithContext(exp, ctx), func(err error, wait time.Duration) {
		logger.Warn("dependency not ready, retrying",
			zap.String("dependency", what),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}

func initRedis(ctx context.Context, cfg config.RedisConfig, maxElapsed time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := retry(ctx, "redis", maxElapsed, func() error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func initDB(ctx context.Context, cfg config.MySQLConfig) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry(ctx, "mysql", cfg.ConnectTimeout, func() error {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	// Auto-migrate for dev convenience
	err = db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.MeetingRoom{},
		&model.Booking{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
