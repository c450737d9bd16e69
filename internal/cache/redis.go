package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

const defaultTTL = 10 * time.Minute

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

// Get recommendations from cache
func (c *Redis) GetItems(ctx context.Context, model string, userID int64, k int) ([]int64, bool, error) {
	var items []int64
	found, err := c.get(ctx, recoKey(model, userID, k), &items)
	return items, found, err
}

// Store recommendations in cache
func (c *Redis) SetItems(ctx context.Context, model string, userID int64, k int, items []int64) error {
	return c.set(ctx, recoKey(model, userID, k), items)
}

func (c *Redis) GetExplanation(ctx context.Context, model string, userID, itemID int64) (domain.Explanation, bool, error) {
	var e domain.Explanation
	found, err := c.get(ctx, explainKey(model, userID, itemID), &e)
	return e, found, err
}

func (c *Redis) SetExplanation(ctx context.Context, model string, userID, itemID int64, e domain.Explanation) error {
	return c.set(ctx, explainKey(model, userID, itemID), e)
}

// Clear cached results of one model: used after the rating tables are replaced
func (c *Redis) ClearModel(ctx context.Context, model string) error {
	for _, pattern := range []string{
		fmt.Sprintf("reco:%s:*", model),
		fmt.Sprintf("explain:%s:*", model),
	} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Ping connectivity
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *Redis) set(ctx context.Context, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s in cache: %w", key, err)
	}
	return nil
}
