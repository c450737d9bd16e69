package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

func TestALSWarmUsers(t *testing.T) {
	m := newTestALS(t)

	assert.True(t, m.IsWarm(1))
	assert.True(t, m.IsWarm(2))
	// in the artifact but without interactions
	assert.False(t, m.IsWarm(3))
	assert.False(t, m.IsWarm(77))
	assert.Equal(t, 2, m.WarmUsers())
	assert.True(t, m.Deterministic())
}

func TestALSRecommendWarm(t *testing.T) {
	m := newTestALS(t)
	ctx := context.Background()

	reco, err := m.Recommend(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 400}, reco)

	reco, err = m.Recommend(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 400, 200}, reco, "already seen item 100 must be filtered")

	reco, err = m.Recommend(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 100}, reco)
}

func TestALSRecommendCold(t *testing.T) {
	m := newTestALS(t)
	ctx := context.Background()

	reco, err := m.Recommend(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{400, 300}, reco)

	reco, err = m.Recommend(ctx, 123456, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{400, 300, 100}, reco)

	reco[0] = -1
	again, err := m.Recommend(ctx, 123456, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(400), again[0], "callers must not be able to mutate the fallback list")
}

func TestALSRecommendCanceled(t *testing.T) {
	m := newTestALS(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Recommend(ctx, 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestALSExplain(t *testing.T) {
	m := newTestALS(t)
	ctx := context.Background()

	// W = YtY + 0.1*I = [[1.92, 0.18], [0.18, 1.92]], W^-1 y_300 = [1.71, 0.03] / 3.654
	c, err := m.Explain(ctx, 1, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.TopContributor)
	assert.InDelta(t, 0.46798, c.Score, 1e-4)

	// an item from the user's own history is its own top contributor
	c, err = m.Explain(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.TopContributor)
	assert.InDelta(t, 0.52545, c.Score, 1e-4)

	// confidence 2 on item 400 adds y_400 y_400' to W
	c, err = m.Explain(ctx, 2, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(400), c.TopContributor)
	assert.InDelta(t, 0.076212-0.009623, c.Score, 1e-4)
}

func TestALSExplainErrors(t *testing.T) {
	m := newTestALS(t)
	ctx := context.Background()

	_, err := m.Explain(ctx, 3, 300)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = m.Explain(ctx, 1, 999)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestArtifactValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Artifact)
	}{
		{"no factors", func(a *Artifact) { a.Factors = 0 }},
		{"user rows mismatch", func(a *Artifact) { a.UserIDs = a.UserIDs[:1] }},
		{"item rows mismatch", func(a *Artifact) { a.ItemFactors = a.ItemFactors[:2] }},
		{"short row", func(a *Artifact) { a.ItemFactors[1] = []float64{1} }},
		{"negative reg", func(a *Artifact) { a.Regularization = -1 }},
		{"no items", func(a *Artifact) {
			a.ItemIDs = nil
			a.ItemFactors = nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			tt.modify(a)
			assert.Error(t, a.validate())
		})
	}
}

func TestLoadALS(t *testing.T) {
	predictors, datasets := writeALSFiles(t)

	m, err := LoadALS(ALSModel,
		filepath.Join(predictors, "als.json"),
		filepath.Join(datasets, "interactions.csv"),
		filepath.Join(datasets, "cold_reco.csv"),
	)
	require.NoError(t, err)
	assert.Equal(t, ALSModel, m.Name())
	assert.True(t, m.IsWarm(2))

	reco, err := m.Recommend(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 100}, reco)
}

func TestLoadALSBadArtifact(t *testing.T) {
	predictors, datasets := writeALSFiles(t)
	bad := filepath.Join(predictors, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"factors": 2, "item_ids": [1]}`), 0o600))

	_, err := LoadALS(ALSModel, bad,
		filepath.Join(datasets, "interactions.csv"),
		filepath.Join(datasets, "cold_reco.csv"),
	)
	require.Error(t, err)
	loadErr, ok := AsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, bad, loadErr.Path)

	_, err = LoadALS(ALSModel, filepath.Join(predictors, "als.json"),
		filepath.Join(datasets, "missing.csv"),
		filepath.Join(datasets, "cold_reco.csv"),
	)
	loadErr, ok = AsLoadError(err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(datasets, "missing.csv"), loadErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
