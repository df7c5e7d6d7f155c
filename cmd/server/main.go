package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adapterhttp "authgate/internal/adapters/http"
	"authgate/internal/adapters/mail"
	"authgate/internal/adapters/postgres"
	adapterredis "authgate/internal/adapters/redis"
	"authgate/internal/config"
	"authgate/internal/core/auth"
	"authgate/internal/core/token"
	"authgate/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg)

	if missing := cfg.Missing(); len(missing) > 0 {
		panic("FATAL: missing required environment: " + strings.Join(missing, ", "))
	}

	dbPool, err := postgres.InitDB(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to init DB", "error", err)
		return
	}
	defer dbPool.Close()

	redisClient, err := adapterredis.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("failed to init redis", "error", err)
		return
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepository(dbPool)
	revocationSet := adapterredis.NewRevocationSet(redisClient)
	rateLimiter := adapterredis.NewRateLimiter(redisClient)
	resetStore := adapterredis.NewResetTokenStore(redisClient)

	issuer := token.NewIssuer(cfg.SecretKey, cfg.AccessTokenLifetime, cfg.RefreshTokenLifetime)

	authService := auth.NewService(auth.ServiceDeps{
		Users:   userRepo,
		Hasher:  auth.NewBcryptHasher(),
		Tokens:  issuer,
		Revoked: revocationSet,
		Resets:  resetStore,
		Mailer:  mail.NewLogMailer(log),
		Cache:   adapterredis.NewPinger(redisClient),
		Log:     log,

		RefreshLifetime: cfg.RefreshTokenLifetime,
	})

	authHandler := adapterhttp.NewAuthHandler(authService, log)

	router := adapterhttp.NewRouter(cfg, &adapterhttp.RouterDeps{
		Auth:    authHandler,
		Svc:     authService,
		Limiter: rateLimiter,
		Log:     log,
	})

	srv := adapterhttp.NewServer(router, cfg.Address)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http: starting server", "address", cfg.Address)
		errCh <- srv.ListenAndServe()
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http: server shutdown error", "error", err)
		}

	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("http: server error", "error", err)
		}
	}

	log.Info("server stopped")
}
