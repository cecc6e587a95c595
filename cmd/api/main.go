package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/email-login-otp/internal/config"
	"github.com/email-login-otp/internal/domain"
	"github.com/email-login-otp/internal/infrastructure/dynamo"
	jwtinfra "github.com/email-login-otp/internal/infrastructure/jwt"
	"github.com/email-login-otp/internal/infrastructure/memory"
	redisinfra "github.com/email-login-otp/internal/infrastructure/redis"
	"github.com/email-login-otp/internal/infrastructure/smtp"
	"github.com/email-login-otp/internal/pkg/clock"
	transporthttp "github.com/email-login-otp/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	codes, cooldowns, closeStores, err := openStores(ctx, cfg, clk)
	if err != nil {
		slog.Error("open stores", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer closeStores()

	// JWT provider (optional, logins succeed without a token if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	deps := &transporthttp.Deps{
		Codes:       codes,
		Cooldowns:   cooldowns,
		Notifier:    smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
		Clock:       clk,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped")
}

// openStores builds the code store and cooldown tracker for the configured
// backend. Expired codes are retained for one extra TTL so late attempts
// still report expiry instead of absence.
func openStores(ctx context.Context, cfg *config.Config, clk clock.Clocker) (domain.CodeStore, domain.CooldownTracker, func(), error) {
	retention := cfg.CodeTTL

	switch cfg.StoreBackend {
	case config.StoreMemory:
		codes := memory.NewCodeStore()
		cooldowns := memory.NewCooldownTracker()
		sweeper := memory.NewSweeper(codes, cooldowns, clk, cfg.SweepInterval, retention, cfg.CodeCooldown)
		go sweeper.Run(ctx)
		return codes, cooldowns, func() {}, nil

	case config.StoreRedis:
		client, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Warn("close redis client", "err", err)
			}
		}
		return redisinfra.NewCodeStore(client, cfg.RedisKeyPrefix, cfg.CodeTTL, retention),
			redisinfra.NewCooldownTracker(client, cfg.RedisKeyPrefix),
			closeFn, nil

	case config.StoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewCodeRepo(client, cfg.DynamoTables.LoginCodes, retention),
			dynamo.NewCooldownRepo(client, cfg.DynamoTables.LoginCooldowns),
			func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
