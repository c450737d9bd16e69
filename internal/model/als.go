package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/actuallystonmai/reco-service/internal/dataset"
	"github.com/actuallystonmai/reco-service/internal/domain"
)

// Artifact is the serialized output of offline ALS training. Row r of UserFactors belongs
// to UserIDs[r], row r of ItemFactors to ItemIDs[r].
type Artifact struct {
	Factors        int         `json:"factors"`
	Regularization float64     `json:"regularization"`
	Alpha          float64     `json:"alpha"`
	UserIDs        []int64     `json:"user_ids"`
	ItemIDs        []int64     `json:"item_ids"`
	UserFactors    [][]float64 `json:"user_factors"`
	ItemFactors    [][]float64 `json:"item_factors"`
}

func (a *Artifact) validate() error {
	if a.Factors <= 0 {
		return fmt.Errorf("factors must be positive, got %d", a.Factors)
	}
	if len(a.UserIDs) != len(a.UserFactors) {
		return fmt.Errorf("%d user ids but %d user factor rows", len(a.UserIDs), len(a.UserFactors))
	}
	if len(a.ItemIDs) != len(a.ItemFactors) {
		return fmt.Errorf("%d item ids but %d item factor rows", len(a.ItemIDs), len(a.ItemFactors))
	}
	if len(a.ItemIDs) == 0 {
		return errors.New("no item factors")
	}
	for i, row := range a.UserFactors {
		if len(row) != a.Factors {
			return fmt.Errorf("user row %d has %d factors, want %d", i, len(row), a.Factors)
		}
	}
	for i, row := range a.ItemFactors {
		if len(row) != a.Factors {
			return fmt.Errorf("item row %d has %d factors, want %d", i, len(row), a.Factors)
		}
	}
	if a.Regularization < 0 {
		return fmt.Errorf("regularization must not be negative, got %v", a.Regularization)
	}
	return nil
}

func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if a.Alpha == 0 {
		a.Alpha = 1
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Interaction is one row of the training interactions table.
type Interaction struct {
	UserID int64
	ItemID int64
	Weight float64
}

type historyEntry struct {
	item       int
	confidence float64
}

// ALS serves an implicit-feedback matrix factorization model. Warm users are scored from
// their factors, cold users get the offline fallback list.
type ALS struct {
	name string

	userIndex   map[int64]int
	itemIndex   map[int64]int
	itemIDs     []int64
	userFactors *mat.Dense
	itemFactors *mat.Dense
	// YtY + reg*I, shared by every explanation
	gram *mat.SymDense

	history  map[int][]historyEntry
	warm     mapset.Set[int64]
	coldReco []int64
}

func NewALS(name string, a *Artifact, interactions []Interaction, coldReco []int64) (*ALS, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	alpha := a.Alpha
	if alpha == 0 {
		alpha = 1
	}

	m := &ALS{
		name:        name,
		userIndex:   make(map[int64]int, len(a.UserIDs)),
		itemIndex:   make(map[int64]int, len(a.ItemIDs)),
		itemIDs:     a.ItemIDs,
		userFactors: denseFromRows(a.UserFactors, a.Factors),
		itemFactors: denseFromRows(a.ItemFactors, a.Factors),
		history:     make(map[int][]historyEntry),
		warm:        mapset.NewThreadUnsafeSet[int64](),
		coldReco:    lo.Uniq(coldReco),
	}
	for row, id := range a.UserIDs {
		m.userIndex[id] = row
	}
	for row, id := range a.ItemIDs {
		m.itemIndex[id] = row
	}

	m.gram = mat.NewSymDense(a.Factors, nil)
	m.gram.SymOuterK(1, m.itemFactors.T())
	for d := 0; d < a.Factors; d++ {
		m.gram.SetSym(d, d, m.gram.At(d, d)+a.Regularization)
	}

	// sum repeated (user, item) pairs
	type pair struct{ user, item int }
	weights := make(map[pair]float64)
	var order []pair
	for _, in := range interactions {
		u, okU := m.userIndex[in.UserID]
		i, okI := m.itemIndex[in.ItemID]
		if !okU || !okI {
			continue
		}
		p := pair{u, i}
		if _, ok := weights[p]; !ok {
			order = append(order, p)
		}
		weights[p] += in.Weight
	}
	for _, p := range order {
		m.history[p.user] = append(m.history[p.user], historyEntry{item: p.item, confidence: alpha * weights[p]})
	}
	for id, row := range m.userIndex {
		if len(m.history[row]) > 0 {
			m.warm.Add(id)
		}
	}

	return m, nil
}

// LoadALS reads the factor artifact, the interactions table and the cold fallback list.
func LoadALS(name, artifactPath, interactionsPath, coldPath string) (*ALS, error) {
	a, err := ReadArtifact(artifactPath)
	if err != nil {
		return nil, &LoadError{Model: name, Path: artifactPath, Err: err}
	}

	interactions, err := readInteractions(interactionsPath)
	if err != nil {
		return nil, &LoadError{Model: name, Path: interactionsPath, Err: err}
	}

	var cold []int64
	err = dataset.ReadFile(coldPath, func(row dataset.Row) error {
		id, err := row.Int64("item_id")
		if err != nil {
			return err
		}
		cold = append(cold, id)
		return nil
	}, "item_id")
	if err != nil {
		return nil, &LoadError{Model: name, Path: coldPath, Err: err}
	}

	m, err := NewALS(name, a, interactions, cold)
	if err != nil {
		return nil, &LoadError{Model: name, Path: artifactPath, Err: err}
	}
	return m, nil
}

func readInteractions(path string) ([]Interaction, error) {
	var out []Interaction
	err := dataset.ReadFile(path, func(row dataset.Row) error {
		u, err := row.Int64("user_id")
		if err != nil {
			return err
		}
		i, err := row.Int64("item_id")
		if err != nil {
			return err
		}
		w := 1.0
		if row.Has("weight") {
			if w, err = row.Float64("weight"); err != nil {
				return err
			}
		}
		out = append(out, Interaction{UserID: u, ItemID: i, Weight: w})
		return nil
	}, "user_id", "item_id")
	return out, err
}

func denseFromRows(rows [][]float64, cols int) *mat.Dense {
	data := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		data = append(data, r...)
	}
	if len(rows) == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(len(rows), cols, data)
}

func (m *ALS) Name() string { return m.name }

func (m *ALS) Deterministic() bool { return true }

func (m *ALS) IsWarm(userID int64) bool {
	return m.warm.Contains(userID)
}

func (m *ALS) WarmUsers() int {
	return m.warm.Cardinality()
}

// Recommend scores every item for a warm user and drops the ones already interacted with.
// Cold users receive the first k entries of the offline list.
func (m *ALS) Recommend(ctx context.Context, userID int64, k int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []int64{}, nil
	}
	if !m.IsWarm(userID) {
		return slices.Clone(lo.Slice(m.coldReco, 0, k)), nil
	}

	u := m.userIndex[userID]
	nItems, _ := m.itemFactors.Dims()

	scores := mat.NewVecDense(nItems, nil)
	scores.MulVec(m.itemFactors, m.userFactors.RowView(u))

	seen := make(map[int]struct{}, len(m.history[u]))
	for _, h := range m.history[u] {
		seen[h.item] = struct{}{}
	}

	order := make([]int, nItems)
	floats.ArgsortStable(scores.RawVector().Data, order)

	reco := make([]int64, 0, k)
	for i := nItems - 1; i >= 0 && len(reco) < k; i-- {
		if _, ok := seen[order[i]]; ok {
			continue
		}
		reco = append(reco, m.itemIDs[order[i]])
	}
	return reco, nil
}

// Explain decomposes the predicted score of itemID for a warm user into per-history-item
// contributions, following the implicit ALS closed form:
//
//	W = YtY + reg*I + sum_j (c_uj - 1) y_j y_j'
//	contribution_j = c_uj * y_i' W^-1 y_j
func (m *ALS) Explain(ctx context.Context, userID, itemID int64) (Contribution, error) {
	if err := ctx.Err(); err != nil {
		return Contribution{}, err
	}
	if !m.IsWarm(userID) {
		return Contribution{}, fmt.Errorf("user %d is cold for model %s: %w", userID, m.name, domain.ErrUserNotFound)
	}
	i, ok := m.itemIndex[itemID]
	if !ok {
		return Contribution{}, fmt.Errorf("item %d unknown to model %s: %w", itemID, m.name, domain.ErrItemNotFound)
	}
	hist := m.history[m.userIndex[userID]]

	w := mat.NewSymDense(m.gram.SymmetricDim(), nil)
	w.CopySym(m.gram)
	for _, h := range hist {
		w.SymRankOne(w, h.confidence-1, m.itemFactors.RowView(h.item))
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(w); !ok {
		return Contribution{}, fmt.Errorf("user %d: weighted gram matrix is not positive definite", userID)
	}
	var weighted mat.VecDense
	if err := chol.SolveVecTo(&weighted, m.itemFactors.RowView(i)); err != nil {
		return Contribution{}, fmt.Errorf("user %d: solve: %w", userID, err)
	}

	total := 0.0
	best, bestScore := -1, math.Inf(-1)
	for _, h := range hist {
		score := h.confidence * mat.Dot(&weighted, m.itemFactors.RowView(h.item))
		total += score
		if score > bestScore {
			best, bestScore = h.item, score
		}
	}

	return Contribution{Score: total, TopContributor: m.itemIDs[best]}, nil
}
