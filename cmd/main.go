package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Austinpowers7/storehive-backend/internal/api"
	"github.com/Austinpowers7/storehive-backend/internal/auth"
	"github.com/Austinpowers7/storehive-backend/internal/authz"
	"github.com/Austinpowers7/storehive-backend/internal/config"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
	"github.com/Austinpowers7/storehive-backend/internal/repository/memdb"
	"github.com/Austinpowers7/storehive-backend/internal/repository/mysql"
	"github.com/Austinpowers7/storehive-backend/internal/service"
	"github.com/Austinpowers7/storehive-backend/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const shutdownTimeout = 10 * time.Second

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn().Msg("Using the in-memory store, data is lost on exit")
		return memdb.NewStore()
	}

	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := migrations.AutoMigrate(context.Background(), db, cfg.DB.MigrateRetries); err != nil {
		return nil, err
	}
	return mysql.NewStore(db), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open the data store")
	}

	var idempotency service.IdempotencyGuard = service.NoopIdempotency{}
	if rdb := config.NewRedisClient(cfg.RedisAddr); rdb != nil {
		idempotency = service.NewRedisIdempotency(rdb)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, idempotency keys are only checked against stored orders")
	}

	var closers []io.Closer
	var events service.EventPublisher = service.NoopPublisher{}
	if kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderTopic); kafkaWriter != nil {
		closers = append(closers, kafkaWriter)
		events = service.NewKafkaPublisher(kafkaWriter)
	}

	evaluator := authz.NewEvaluator(authz.NewRepositoryDirectory(store))
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	services := api.Services{
		Checkout: service.NewCheckoutService(store, evaluator, idempotency, events),
		Auth:     service.NewAuthService(store, evaluator, hasher, tokens),
		Users:    service.NewUserService(store, evaluator, hasher),
		Stores:   service.NewStoreService(store, evaluator),
		Products: service.NewProductService(store, evaluator),
	}

	if cfg.InitAdminEmail != "" {
		admin, created, err := services.Users.BootstrapAdmin(context.Background(), cfg.InitAdminEmail, cfg.InitAdminPass)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to bootstrap admin")
		}
		if created {
			logger.Info().Msgf("Created initial admin %s", admin.Email)
		}
	}

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout))

	api.RegisterRoutes(e, tokens.Secret(), services)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, e, cfg.HTTPAddr, closers...); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

// serve runs e until ctx is done, then drains in-flight requests and closes
// closers in order.
func serve(ctx context.Context, e *echo.Echo, addr string, closers ...io.Closer) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err = e.Shutdown(shutdownCtx)
		cancel()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	for _, c := range closers {
		if cerr := c.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Error closing resource")
		}
	}
	return err
}
