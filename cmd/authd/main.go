// Command authd serves the credential and session lifecycle over HTTP:
// login, refresh, logout, and access-token introspection. Accounts come
// from PostgreSQL, sessions live in Redis.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/clutchworks/authcore"
	"github.com/clutchworks/authcore/jwt"
	"github.com/clutchworks/authcore/password"
	"github.com/clutchworks/authcore/postgres"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(&logger); err != nil {
		logger.Fatal().Err(err).Msg("authd exited")
	}
}

func run(logger *zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	accounts, err := postgres.NewAccountStore(pool, cfg.AccountsTable)
	if err != nil {
		return err
	}

	passwords, err := password.NewBcrypt(0)
	if err != nil {
		return err
	}

	svc, err := authcore.New(authcore.Config{
		JWT: authcore.JWTConfig{
			Secret:        []byte(cfg.JWTSecret),
			SigningMethod: jwt.SigningMethod(cfg.JWTMethod),
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
			Issuer:        cfg.JWTIssuer,
			Leeway:        cfg.ClockLeeway,
		},
		Session: authcore.SessionConfig{
			RedisPrefix: cfg.SessionPrefix,
			TTL:         cfg.SessionTTL,
		},
	}, authcore.Deps{
		Redis:     rdb,
		Accounts:  accounts,
		Passwords: passwords,
		Logger:    logger,
		Meter:     otel.GetMeterProvider().Meter("authd"),
	})
	if err != nil {
		return err
	}

	api := newAPI(svc, logger, cfg.TrustForwards)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("authd listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
