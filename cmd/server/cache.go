package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/actuallystonmai/reco-service/internal/cache"
	"github.com/actuallystonmai/reco-service/internal/config"
	"github.com/actuallystonmai/reco-service/internal/model"
)

// clearResultCache drops cached results once the rating tables have been replaced, so
// explanations built from the old ratings are not served until their TTL.
func clearResultCache(ctx context.Context, cfg *config.Config) error {
	if cfg.Cache.Backend != config.CacheRedis {
		return nil
	}

	c, closeCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer closeCache()

	if err := cache.ClearModels(ctx, c, model.KnownModels...); err != nil {
		return err
	}
	log.Info().Strs("models", model.KnownModels).Msg("cached results cleared")
	return nil
}
