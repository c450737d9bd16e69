package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/reco-service/internal/config"
	"github.com/actuallystonmai/reco-service/internal/repository"
	"github.com/actuallystonmai/reco-service/seeds"
)

const (
	dbWaitAttempts = 30
	migrationsDir  = "migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the rating tables schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create the rating tables and import them if empty",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pool, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrateUp(ctx, pool); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}

		// ------------ Setup Seed Data ---------------
		if skip, _ := cmd.Flags().GetBool("skip-seed"); skip {
			return nil
		}
		if err := checkSeed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("check seed: %w", err)
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop the rating tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pool, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrateDown(ctx, pool); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		return nil
	},
}

func init() {
	migrateUpCmd.Flags().Bool("skip-seed", false, "do not import rating CSVs into empty tables")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < dbWaitAttempts; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		log.Info().Msgf("waiting for database... (%d/%d)", i+1, dbWaitAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after %ds", dbWaitAttempts)
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	if err := execFile(ctx, pool, "create_tables.down.sql"); err != nil {
		return err
	}
	log.Info().Msg("migrations dropped successfully")
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	if err := execFile(ctx, pool, "create_tables.up.sql"); err != nil {
		return err
	}
	log.Info().Msg("migrations applied successfully")
	return nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config) error {
	repo := repository.NewRepository(pool)
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("check users count: %w", err)
	}
	if count > 0 {
		log.Info().Msgf("database already seeded (%d users), skipping", count)
		return nil
	}

	store, err := repository.LoadRatingStore(cfg.ExplanationDir())
	if err != nil {
		return err
	}
	if err := seeds.Setup(ctx, repo, store); err != nil {
		return err
	}
	return clearResultCache(ctx, cfg)
}
