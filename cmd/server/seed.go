package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/reco-service/internal/repository"
	"github.com/actuallystonmai/reco-service/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the rating tables with the rating CSVs or a synthetic catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		var store *repository.RatingStore
		if synthetic, _ := cmd.Flags().GetBool("synthetic"); synthetic {
			items, _ := cmd.Flags().GetInt("items")
			users, _ := cmd.Flags().GetInt("users")
			store, err = seeds.Synthetic(cfg.Models.Random.RandomState, items, users)
		} else {
			store, err = repository.LoadRatingStore(cfg.ExplanationDir())
		}
		if err != nil {
			return fmt.Errorf("prepare seed data: %w", err)
		}

		pool, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := seeds.Setup(ctx, repository.NewRepository(pool), store); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		return clearResultCache(ctx, cfg)
	},
}

func init() {
	seedCmd.Flags().Bool("synthetic", false, "generate a synthetic catalog instead of reading CSVs")
	seedCmd.Flags().Int("items", 50, "synthetic catalog size")
	seedCmd.Flags().Int("users", 20, "synthetic user count")
}
