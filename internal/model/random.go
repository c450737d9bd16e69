package model

import (
	"context"
	"math/rand"
	"slices"
	"sync"

	"github.com/actuallystonmai/reco-service/internal/dataset"
)

const defaultCatalogSize = 1000

// Random samples items uniformly from a catalog. The generator is seeded once and shared
// between requests, so consecutive calls return different lists.
type Random struct {
	name  string
	items []int64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(name string, items []int64, seed int64) *Random {
	if len(items) == 0 {
		items = make([]int64, defaultCatalogSize)
		for i := range items {
			items[i] = int64(i)
		}
	}
	return &Random{
		name:  name,
		items: items,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// LoadRandom reads the catalog from the item_id column of path. An empty path gives the
// 0..999 range.
func LoadRandom(name, path string, seed int64) (*Random, error) {
	if path == "" {
		return NewRandom(name, nil, seed), nil
	}

	seen := make(map[int64]struct{})
	var items []int64
	err := dataset.ReadFile(path, func(row dataset.Row) error {
		id, err := row.Int64("item_id")
		if err != nil {
			return err
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			items = append(items, id)
		}
		return nil
	}, "item_id")
	if err != nil {
		return nil, &LoadError{Model: name, Path: path, Err: err}
	}
	return NewRandom(name, items, seed), nil
}

func (r *Random) Name() string { return r.name }

// Recommend returns min(k, catalog size) distinct ids. userID is ignored.
func (r *Random) Recommend(_ context.Context, _ int64, k int) ([]int64, error) {
	if k <= 0 {
		return []int64{}, nil
	}
	pool := slices.Clone(r.items)
	k = min(k, len(pool))

	r.mu.Lock()
	for i := 0; i < k; i++ {
		j := i + r.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	r.mu.Unlock()

	return pool[:k], nil
}
