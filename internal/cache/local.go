package cache

import (
	"context"
	"slices"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

// Local is an in-process TTL cache for single instance deployments.
type Local struct {
	items        *ttlcache.Cache[string, []int64]
	explanations *ttlcache.Cache[string, domain.Explanation]
}

func NewLocal(ttl time.Duration, capacity uint64) *Local {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Local{
		items: ttlcache.New(
			ttlcache.WithTTL[string, []int64](ttl),
			ttlcache.WithCapacity[string, []int64](capacity),
		),
		explanations: ttlcache.New(
			ttlcache.WithTTL[string, domain.Explanation](ttl),
			ttlcache.WithCapacity[string, domain.Explanation](capacity),
		),
	}
}

// Start runs expired entry cleanup until Stop is called.
func (c *Local) Start() {
	go c.items.Start()
	go c.explanations.Start()
}

func (c *Local) Stop() {
	c.items.Stop()
	c.explanations.Stop()
}

func (c *Local) GetItems(_ context.Context, model string, userID int64, k int) ([]int64, bool, error) {
	item := c.items.Get(recoKey(model, userID, k))
	if item == nil {
		return nil, false, nil
	}
	return slices.Clone(item.Value()), true, nil
}

func (c *Local) SetItems(_ context.Context, model string, userID int64, k int, items []int64) error {
	c.items.Set(recoKey(model, userID, k), slices.Clone(items), ttlcache.DefaultTTL)
	return nil
}

func (c *Local) GetExplanation(_ context.Context, model string, userID, itemID int64) (domain.Explanation, bool, error) {
	item := c.explanations.Get(explainKey(model, userID, itemID))
	if item == nil {
		return domain.Explanation{}, false, nil
	}
	return item.Value(), true, nil
}

func (c *Local) SetExplanation(_ context.Context, model string, userID, itemID int64, e domain.Explanation) error {
	c.explanations.Set(explainKey(model, userID, itemID), e, ttlcache.DefaultTTL)
	return nil
}

func (c *Local) Len() int {
	return c.items.Len() + c.explanations.Len()
}

func (c *Local) Ping(context.Context) error { return nil }
