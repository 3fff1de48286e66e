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

	"go.uber.org/zap"

	"chrona/internal/auth"
	"chrona/internal/config"
	"chrona/internal/crypto"
	"chrona/internal/server"
	"chrona/internal/services"
	"chrona/internal/store"
	"chrona/internal/store/memory"
	"chrona/internal/store/postgres"
	"chrona/internal/store/surreal"
)

func newLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.StoreSurreal:
		return surreal.Open(ctx, surreal.Config{
			URL:       cfg.SurrealURL,
			Namespace: cfg.SurrealNamespace,
			Database:  cfg.SurrealDatabase,
			Username:  cfg.SurrealUser,
			Password:  cfg.SurrealPass,
		})
	case config.StoreMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer st.Close()
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on restart")
	}

	sealer, err := crypto.NewSealerFromBase64(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("invalid ENCRYPTION_KEY", zap.Error(err))
	}
	if !sealer.Enabled() {
		logger.Info("content encryption disabled")
	}

	tokens := auth.NewJWTService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	svc := services.New(st, tokens,
		services.WithLogger(logger),
		services.WithLocation(cfg.Location),
		services.WithEncryption(services.NewEncryptionService(sealer)),
	)

	opts := server.Options{
		Services:     svc,
		Store:        st,
		Tokens:       tokens,
		Logger:       logger,
		FrontendURL:  cfg.FrontendURL,
		SecureCookie: cfg.IsProduction(),
		CORSOrigins:  cfg.CORSOrigins,
	}
	if cfg.GoogleEnabled() {
		opts.Google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		logger.Info("google sign-in enabled", zap.String("callback", cfg.GoogleCallbackURL))
	}
	handler := server.NewRouter(opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
