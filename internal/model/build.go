package model

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/reco-service/internal/config"
)

// Model names used in the request path.
const (
	RandomModel = "random"
	ALSModel    = "als"
)

// KnownModels lists every model the service can serve, enabled or not.
var KnownModels = []string{RandomModel, ALSModel}

// Build loads every model enabled in cfg. Any failure aborts startup.
func Build(cfg *config.Config, logger zerolog.Logger) (*Registry, error) {
	var recs []Recommender

	if rc := cfg.Models.Random; rc.Enabled {
		path := ""
		if rc.Items != "" {
			path = cfg.DatasetFile(rc.Items)
		}
		r, err := LoadRandom(RandomModel, path, rc.RandomState)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("model", RandomModel).
			Int("catalog_size", len(r.items)).
			Int64("random_state", rc.RandomState).
			Msg("model loaded")
		recs = append(recs, r)
	}

	if ac := cfg.Models.ALS; ac.Enabled {
		m, err := LoadALS(ALSModel,
			cfg.PredictorFile(ac.ModelFilename),
			cfg.DatasetFile(ac.Interactions),
			cfg.DatasetFile(ac.ColdDataset),
		)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("model", ALSModel).
			Int("warm_users", m.WarmUsers()).
			Int("items", len(m.itemIDs)).
			Int("cold_reco", len(m.coldReco)).
			Msg("model loaded")
		recs = append(recs, m)
	}

	if len(recs) == 0 {
		return nil, errors.New("no models enabled")
	}
	return NewRegistry(recs...)
}
