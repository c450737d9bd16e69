package model

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRecommend(t *testing.T) {
	r := NewRandom(RandomModel, nil, 42)

	reco, err := r.Recommend(context.Background(), 123, 10)
	require.NoError(t, err)
	assert.Len(t, reco, 10)
	assert.Len(t, lo.Uniq(reco), 10, "items must be distinct")
	for _, id := range reco {
		assert.GreaterOrEqual(t, id, int64(0))
		assert.Less(t, id, int64(defaultCatalogSize))
	}
}

func TestRandomReproducibleAcrossInstances(t *testing.T) {
	ctx := context.Background()
	a := NewRandom(RandomModel, nil, 7)
	b := NewRandom(RandomModel, nil, 7)

	first, _ := a.Recommend(ctx, 1, 10)
	again, _ := b.Recommend(ctx, 1, 10)
	assert.Equal(t, first, again)

	// the generator advances between calls
	second, _ := a.Recommend(ctx, 1, 10)
	assert.NotEqual(t, first, second)
}

func TestRandomSmallCatalog(t *testing.T) {
	r := NewRandom(RandomModel, []int64{1, 2, 3}, 1)

	reco, err := r.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, reco)

	reco, err = r.Recommend(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, reco)
}

func TestRandomConcurrentUse(t *testing.T) {
	r := NewRandom(RandomModel, nil, 1)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reco, err := r.Recommend(context.Background(), 1, 10)
			assert.NoError(t, err)
			assert.Len(t, lo.Uniq(reco), 10)
		}()
	}
	wg.Wait()
}

func TestLoadRandomCatalog(t *testing.T) {
	_, datasets := writeALSFiles(t)

	r, err := LoadRandom(RandomModel, filepath.Join(datasets, "items.csv"), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7}, r.items)

	_, err = LoadRandom(RandomModel, filepath.Join(datasets, "nope.csv"), 1)
	loadErr, ok := AsLoadError(err)
	require.True(t, ok)
	assert.NotEmpty(t, loadErr.Path)
}
