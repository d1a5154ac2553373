package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	apidocs "wallet-ledger/docs/api"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// repositories is the storage backend selected by storage.driver.
type repositories struct {
	wallets    ports.WalletRepository
	history    ports.HistoryRepository
	users      ports.UserRepository
	audit      ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("storage", cfg.Storage.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger")

	if cfg.Auth.Secret == "" {
		log.Fatal().Msg("auth.secret is required (WLS_AUTH_SECRET)")
	}

	ctx := context.Background()

	repos, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer repos.close()

	healthCheckers := []ports.HealthChecker{repos.health}

	// Session revocation and rate limiting live in Redis when it is enabled,
	// otherwise in process.
	var (
		revocation  ports.TokenRevocationStore
		rateLimiter ports.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		revocation = redisStorage.NewRevocationStore(rdb)
		rateLimiter = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled, using in-process revocation and rate limiting")
		revocation = memory.NewRevocationStore()
		rateLimiter = memory.NewRateLimiter()
	}
	if !cfg.RateLimit.Enabled {
		rateLimiter = nil
	}

	// Initialize core services
	hashSvc := service.NewArgon2HashService(service.DefaultArgon2Params)
	tokenSvc := service.NewJWTTokenService(cfg.Auth.Secret, cfg.Auth.TokenExpiry, cfg.Auth.Issuer)

	// Initialize business services
	ledgerSvc := service.NewLedgerService(repos.history, repos.wallets, logger.Component(log, "ledger"))
	walletSvc := service.NewWalletService(repos.wallets, ledgerSvc, repos.transactor, cfg.Wallet, logger.Component(log, "wallet"))
	authSvc := service.NewAuthService(repos.users, hashSvc, tokenSvc, revocation, logger.Component(log, "auth"))
	auditSvc := service.NewAuditService(repos.audit, logger.Component(log, "audit"))

	httpHandler.SetSwaggerSpec(apidocs.OpenAPI)

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		WalletSvc:      walletSvc,
		LedgerSvc:      ledgerSvc,
		TokenSvc:       tokenSvc,
		Revocation:     revocation,
		RateLimiter:    rateLimiter,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		return &repositories{
			wallets:    memory.NewWalletRepo(store),
			history:    memory.NewHistoryRepo(store),
			users:      memory.NewUserRepo(store),
			audit:      memory.NewAuditRepo(store),
			transactor: store,
			health:     store,
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("PostgreSQL connected")

	return &repositories{
		wallets:    pgStorage.NewWalletRepo(pool),
		history:    pgStorage.NewHistoryRepo(pool),
		users:      pgStorage.NewUserRepo(pool),
		audit:      pgStorage.NewAuditRepo(pool),
		transactor: pgStorage.NewTransactor(pool),
		health:     pgStorage.NewHealthCheck(pool),
		close:      pool.Close,
	}, nil
}
