package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/actuallystonmai/reco-service/internal/cache"
	"github.com/actuallystonmai/reco-service/internal/domain"
	"github.com/actuallystonmai/reco-service/internal/metrics"
	"github.com/actuallystonmai/reco-service/internal/model"
	"github.com/actuallystonmai/reco-service/internal/repository"
)

const (
	// User ids above maxUserID are treated as unknown without a lookup.
	maxUserID        = 1_000_000_000
	batchConcurrency = 10

	kindReco    = "reco"
	kindExplain = "explain"
)

type Service struct {
	registry *model.Registry
	store    *repository.RatingStore
	cache    cache.Cache
	metrics  *metrics.Metrics
	kRecs    int
}

// NewService wires the service. c and m may be nil.
func NewService(registry *model.Registry, store *repository.RatingStore, c cache.Cache, m *metrics.Metrics, kRecs int) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		registry: registry,
		store:    store,
		cache:    c,
		metrics:  m,
		kRecs:    kRecs,
	}
}

func (s *Service) Models() []string {
	return s.registry.Names()
}

func (s *Service) GetRecommendations(ctx context.Context, modelName string, userID int64) (*domain.RecoResult, error) {
	rec, err := s.registry.Resolve(modelName)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(userID); err != nil {
		return nil, err
	}

	cacheable := model.IsDeterministic(rec)
	if cacheable {
		cached, found, err := s.cache.GetItems(ctx, modelName, userID, s.kRecs)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("cache get failed")
		}
		s.observeCache(modelName, kindReco, found)
		if found {
			return &domain.RecoResult{UserID: userID, Items: cached, CacheHit: true}, nil
		}
	}

	items, err := rec.Recommend(ctx, userID, s.kRecs)
	if err != nil {
		return nil, fmt.Errorf("recommend with %s: %w", modelName, err)
	}

	if cacheable {
		if err := s.cache.SetItems(ctx, modelName, userID, s.kRecs, items); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("cache set failed")
		}
	}

	return &domain.RecoResult{UserID: userID, Items: items}, nil
}

func (s *Service) Explain(ctx context.Context, modelName string, userID, itemID int64) (*domain.Explanation, error) {
	rec, err := s.registry.Resolve(modelName)
	if err != nil {
		return nil, err
	}
	if err := s.checkUser(userID); err != nil {
		return nil, err
	}
	item, err := s.store.Item(itemID)
	if err != nil {
		return nil, err
	}

	explainer, ok := model.AsExplainer(rec)
	if !ok {
		return nil, fmt.Errorf("explain with %s: %w", modelName, domain.ErrNotImplemented)
	}

	cacheable := model.IsDeterministic(rec)
	if cacheable {
		cached, found, err := s.cache.GetExplanation(ctx, modelName, userID, itemID)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Int64("item_id", itemID).Msg("cache get failed")
		}
		s.observeCache(modelName, kindExplain, found)
		if found {
			return &cached, nil
		}
	}

	var result domain.Explanation
	if !explainer.IsWarm(userID) {
		result = explainCold(item, s.store.ItemCount())
	} else {
		contribution, err := explainer.Explain(ctx, userID, itemID)
		if err != nil {
			return nil, fmt.Errorf("explain with %s: %w", modelName, err)
		}
		var contributor *domain.ItemRating
		if c, err := s.store.Item(contribution.TopContributor); err == nil {
			contributor = &c
		}
		result = explainWarm(item, contribution.Score, contribution.TopContributor, contributor)
	}

	if cacheable {
		if err := s.cache.SetExplanation(ctx, modelName, userID, itemID, result); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Int64("item_id", itemID).Msg("cache set failed")
		}
	}

	return &result, nil
}

// GetBatchRecommendations recommends for one page of known users, in ascending id order.
func (s *Service) GetBatchRecommendations(ctx context.Context, modelName string, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	if _, err := s.registry.Resolve(modelName); err != nil {
		return nil, err
	}

	allUsers := s.store.UserIDs()
	offset := (page - 1) * limit
	userIDs := slices.Clone(lo.Slice(allUsers, offset, offset+limit))

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency)

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, uid int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = s.processUserForBatch(ctx, modelName, uid)
		}(i, userID)
	}
	wg.Wait()

	summary := domain.BatchSummary{}
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			summary.SuccessCount++
		} else {
			summary.FailedCount++
		}
	}
	summary.ProcessingTimeMs = time.Since(start).Milliseconds()

	return &domain.BatchResponse{
		Model:      modelName,
		Page:       page,
		Limit:      limit,
		TotalUsers: len(allUsers),
		Results:    results,
		Summary:    summary,
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, modelName string, userID int64) domain.BatchUserResult {
	result, err := s.GetRecommendations(ctx, modelName, userID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("batch: recommendation failed")
		code, msg := CategorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID: userID,
		Items:  result.Items,
		Status: domain.StatusSuccess,
	}
}

func (s *Service) checkUser(userID int64) error {
	if userID < 0 || userID > maxUserID || !s.store.HasUser(userID) {
		return fmt.Errorf("user %d: %w", userID, domain.ErrUserNotFound)
	}
	return nil
}

func (s *Service) observeCache(modelName, kind string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.WithLabelValues(modelName, kind).Inc()
	} else {
		s.metrics.CacheMisses.WithLabelValues(modelName, kind).Inc()
	}
}

// CategorizeError maps a domain error to an error key and a client facing message.
func CategorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return "model_not_found", "Model name is unknown"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "User is unknown"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found", "Item is unknown"
	case errors.Is(err, domain.ErrNotImplemented):
		return "not_implemented", "Model does not support this operation"
	}
	return "internal_error", "An unexpected error occurred"
}
