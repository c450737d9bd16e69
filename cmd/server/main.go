package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/reco-service/internal/cache"
	"github.com/actuallystonmai/reco-service/internal/config"
	"github.com/actuallystonmai/reco-service/internal/handler"
	"github.com/actuallystonmai/reco-service/internal/logging"
	"github.com/actuallystonmai/reco-service/internal/metrics"
	"github.com/actuallystonmai/reco-service/internal/model"
	"github.com/actuallystonmai/reco-service/internal/repository"
	"github.com/actuallystonmai/reco-service/internal/router"
	"github.com/actuallystonmai/reco-service/internal/service"
)

var rootCmd = &cobra.Command{
	Use:           "reco-service",
	Short:         "Serve recommendations and explanations from pretrained models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			_ = os.Setenv(config.PathEnvVar, path)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, logger.With().Str("service", cfg.ServiceName).Logger(), nil
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// ------------ Rating Store ---------------
	store, err := loadRatingStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load rating store: %w", err)
	}
	logger.Info().
		Str("source", cfg.RatingSource).
		Int("items", store.ItemCount()).
		Int("users", store.UserCount()).
		Msg("rating store loaded")

	// ------------ Models ---------------
	registry, err := model.Build(cfg, logger)
	if err != nil {
		if loadErr, ok := model.AsLoadError(err); ok {
			logger.Error().
				Err(loadErr.Err).
				Str("model", loadErr.Model).
				Str("path", loadErr.Path).
				Msg("model artifact unreadable")
		}
		return fmt.Errorf("build models: %w", err)
	}

	// ------------ Cache ---------------
	resultCache, closeCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer closeCache()
	logger.Info().Str("backend", cfg.Cache.Backend).Msg("cache ready")

	// ---------------- Server --------------------
	m := metrics.New()
	svc := service.NewService(registry, store, resultCache, m, cfg.KRecs)
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.Setup(handler.NewHandler(svc), m, logger, cfg.Server),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Strs("models", registry.Names()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadRatingStore reads the rating tables into memory. A database is only needed for
// the duration of the load.
func loadRatingStore(ctx context.Context, cfg *config.Config) (*repository.RatingStore, error) {
	if cfg.RatingSource != config.RatingSourcePostgres {
		return repository.LoadRatingStore(cfg.ExplanationDir())
	}

	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	return repository.LoadRatingStoreFromDB(ctx, repository.NewRepository(pool))
}

// ------------ PostgreSQL ---------------
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	log.Info().Msg("connected to PostgreSQL")
	return pool, nil
}
