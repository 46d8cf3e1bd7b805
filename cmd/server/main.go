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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/goreporte/internal/adapter/document"
	httpAdapter "github.com/iho/goreporte/internal/adapter/http"
	"github.com/iho/goreporte/internal/adapter/http/handler"
	"github.com/iho/goreporte/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/goreporte/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goreporte/internal/adapter/repository/redis"
	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/infrastructure/auth"
	"github.com/iho/goreporte/internal/infrastructure/config"
	"github.com/iho/goreporte/internal/infrastructure/logger"
	"github.com/iho/goreporte/internal/infrastructure/metrics"
	"github.com/iho/goreporte/internal/infrastructure/postgres"
	"github.com/iho/goreporte/internal/infrastructure/redis"
	"github.com/iho/goreporte/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "goreporte",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run migrations before the pool takes connections
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	checks := []handler.Check{{Name: "postgres", Ping: pool.Ping}}

	// Connect to Redis; the report cache is optional
	var cache usecase.Cache
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClientWithOptions(ctx, redis.Options{
			URL:         cfg.RedisURL,
			DialTimeout: 5 * time.Second,
			OpTimeout:   time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient)
		checks = append(checks, handler.Check{Name: "redis", Ping: redis.Pinger(redisClient)})
	}

	m := metrics.New()

	// Initialize repositories
	retrier := postgresRepo.NewRetrier(log.Logger)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool, retrier)
	userRepo := postgresRepo.NewUserRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	reportUC := usecase.NewReportUseCase(
		invoiceRepo,
		cache,
		document.NewPDFRenderer(cfg.CurrencySymbol),
		m,
		usecase.ReportUseCaseConfig{
			QueryTimeout: cfg.QueryTimeout,
			CacheTTL:     cfg.ReportCacheTTL,
			Logger:       log.Logger,
		},
	)

	routerCfg := httpAdapter.RouterConfig{
		ReportHandler: handler.NewReportHandler(reportUC, cfg.CurrencySymbol),
		HealthHandler: handler.NewHealthHandler(checks...),
		Logger:        log.Logger,
		RateLimiter:   newRateLimiter(cfg),
		CORS:          newCORSConfig(cfg),
	}

	if cfg.JWTSecret != "" {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		authUC := usecase.NewAuthUseCase(userRepo, jwtManager, idGen, m)
		routerCfg.AuthHandler = handler.NewAuthHandler(authUC)
		if cfg.AuthEnabled {
			routerCfg.TokenVerifier = jwtManager
		}

		if err := bootstrapUser(ctx, authUC, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to create bootstrap user")
		}
	}

	if routerCfg.RateLimiter != nil {
		go cleanupLimiters(ctx, routerCfg.RateLimiter)
	}

	// Create server
	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Bool("auth_enabled", routerCfg.TokenVerifier != nil).
			Bool("cache_enabled", cache != nil).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error().Err(err).Msg("server failed")
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func listenAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}

func newRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, burst)
}

func newCORSConfig(cfg *config.Config) *middleware.CORSConfig {
	if len(cfg.CORSAllowOrigins) == 0 {
		return nil
	}
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = cfg.CORSAllowOrigins
	return &c
}

func bootstrapUser(ctx context.Context, authUC *usecase.AuthUseCase, cfg *config.Config) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}

	user, err := authUC.CreateUser(ctx, cfg.BootstrapUsername, cfg.BootstrapPassword)
	if errors.Is(err, domain.ErrUserExists) {
		log.Info().Str("username", cfg.BootstrapUsername).Msg("bootstrap user already present")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("bootstrap user created")
	return nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdleTimeout); n > 0 {
				log.Debug().Int("removed", n).Msg("idle rate limiters removed")
			}
		}
	}
}
