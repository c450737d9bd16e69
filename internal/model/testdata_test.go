package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

// Two latent factors: items 100/300 point along the first axis, 200/400 along the second.
func testArtifact() *Artifact {
	return &Artifact{
		Factors:        2,
		Regularization: 0.1,
		Alpha:          1,
		UserIDs:        []int64{1, 2, 3},
		ItemIDs:        []int64{100, 200, 300, 400},
		UserFactors: [][]float64{
			{1, 0},
			{0, 1},
			{0.5, 0.5},
		},
		ItemFactors: [][]float64{
			{1, 0},
			{0, 1},
			{0.9, 0.1},
			{0.1, 0.9},
		},
	}
}

func testInteractions() []Interaction {
	return []Interaction{
		{UserID: 1, ItemID: 100, Weight: 1},
		{UserID: 2, ItemID: 200, Weight: 1},
		{UserID: 2, ItemID: 400, Weight: 2},
		// unknown to the artifact, ignored
		{UserID: 77, ItemID: 100, Weight: 1},
		{UserID: 1, ItemID: 999, Weight: 1},
	}
}

func newTestALS(t *testing.T) *ALS {
	t.Helper()
	m, err := NewALS(ALSModel, testArtifact(), testInteractions(), []int64{400, 300, 400, 100})
	require.NoError(t, err)
	return m
}

// writeALSFiles lays out the artifact, interactions and cold list as the server expects them.
func writeALSFiles(t *testing.T) (predictors, datasets string) {
	t.Helper()
	predictors, datasets = t.TempDir(), t.TempDir()

	data, err := json.Marshal(testArtifact())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(predictors, "als.json"), data, 0o600))

	interactions := "user_id,item_id,weight,datetime\n" +
		"1,100,1,2021-08-01\n" +
		"2,200,1,2021-08-02\n" +
		"2,400,2,2021-08-03\n"
	require.NoError(t, os.WriteFile(filepath.Join(datasets, "interactions.csv"), []byte(interactions), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(datasets, "cold_reco.csv"), []byte("item_id\n400\n300\n100\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(datasets, "items.csv"), []byte("item_id\n5\n6\n7\n5\n"), 0o600))
	return predictors, datasets
}
