package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"revista/backend/internal/config"
	"revista/backend/internal/httpserver"
	"revista/backend/internal/infrastructure/password"
	"revista/backend/internal/infrastructure/postgres"
	"revista/backend/internal/infrastructure/ratelimit"
	"revista/backend/internal/infrastructure/token"
	"revista/backend/internal/logging"
	authusecase "revista/backend/internal/usecase/auth"
	engagementusecase "revista/backend/internal/usecase/engagement"
	issueusecase "revista/backend/internal/usecase/issue"
	publisherusecase "revista/backend/internal/usecase/publisher"
	titleusecase "revista/backend/internal/usecase/title"
	userusecase "revista/backend/internal/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.IsProduction(), os.Stdout)
	log := logger.WithField("env", cfg.Env)

	if err := run(cfg, logger, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// run owns every resource opened at startup so deferred closes execute
// before main exits.
func run(cfg config.Config, logger *logrus.Logger, log *logrus.Entry) error {
	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL, postgres.Options{
		MaxConns:         cfg.DB.MaxConns,
		MinConns:         cfg.DB.MinConns,
		IdleTimeout:      cfg.DB.IdleTimeout,
		ConnectTimeout:   cfg.DB.ConnectTimeout,
		StatementTimeout: cfg.DB.StatementTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	tokenManager, err := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("configure tokens: %w", err)
	}
	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("configure password hashing: %w", err)
	}

	users := postgres.NewUserRepository(db.Pool)
	publishers := postgres.NewPublisherRepository(db.Pool)
	titles := postgres.NewTitleRepository(db.Pool)
	issues := postgres.NewIssueRepository(db.Pool)

	services := httpserver.Services{
		Auth:       authusecase.NewService(users, tokenManager, hasher),
		Users:      userusecase.NewService(users, hasher),
		Publishers: publisherusecase.NewService(publishers),
		Titles:     titleusecase.NewService(titles, publishers),
		Issues:     issueusecase.NewService(issues, titles),
		Engagement: engagementusecase.NewService(
			issues,
			postgres.NewRatingRepository(db.Pool),
			postgres.NewCommentRepository(db.Pool),
			postgres.NewFavoriteRepository(db.Pool),
		),
	}

	var redisClient *redis.Client
	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
		limitStore = ratelimit.NewRedisStore(redisClient, "revista:ratelimit")
		log.Info("rate limits shared through redis")
	}

	server := httpserver.NewServer(cfg, services, httpserver.Options{
		Logger:         logger,
		Health:         httpserver.NewHealthChecker(db.SQLDB(), redisClient),
		Metrics:        httpserver.NewMetrics(),
		RateLimitStore: limitStore,
	})
	log.WithField("addr", server.Addr()).Info("HTTP server listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("HTTP server closed")
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-shutdownCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("graceful shutdown completed")
	return nil
}
