package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nutriplan/internal/auth"
	"nutriplan/internal/config"
	"nutriplan/internal/database"
	"nutriplan/internal/grocery"
	"nutriplan/internal/llm"
	"nutriplan/internal/logging"
	"nutriplan/internal/mealplan"
	"nutriplan/internal/metrics"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/recipe"
	"nutriplan/internal/server"
	"nutriplan/internal/user"
)

// metricsRetentionDays bounds the llm_metrics table; rows older than this
// are deleted at startup.
const metricsRetentionDays = 90

func main() {
	// Local development reads a .env file; missing is fine in production.
	_ = godotenv.Load()
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := textGen.(llm.Closer); ok {
		defer closer.Close()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	metricsStore := metrics.NewStore(db.SQL)
	if deleted, err := metricsStore.Cleanup(ctx, metricsRetentionDays); err != nil {
		slog.Warn("failed to clean up old llm metrics", "error", err)
	} else if deleted > 0 {
		slog.Info("cleaned up old llm metrics", "deleted", deleted)
	}

	srv := server.New(
		cfg,
		jwtManager,
		user.NewRepository(db.SQL),
		mealplan.NewRepository(db.SQL),
		grocery.NewRepository(db.SQL),
		recipe.NewRepository(db.SQL),
		nutrition.NewRepository(db.SQL),
		textGen,
		metricsStore,
	)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "provider", string(cfg.AIProvider))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	switch cfg.AIProvider {
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg), nil
	default:
		return llm.NewGeminiClient(ctx, cfg)
	}
}
