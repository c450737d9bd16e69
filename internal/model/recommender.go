package model

import (
	"context"
	"errors"
	"fmt"
)

// Recommender produces an ordered list of at most k item ids for a user.
type Recommender interface {
	Name() string
	Recommend(ctx context.Context, userID int64, k int) ([]int64, error)
}

// Explainer is implemented by recommenders that can justify a recommendation.
type Explainer interface {
	// IsWarm reports whether the model was trained on the user's interactions.
	IsWarm(userID int64) bool
	Explain(ctx context.Context, userID, itemID int64) (Contribution, error)
}

// Contribution is the predicted score of an item and the history item that drove it most.
type Contribution struct {
	Score          float64
	TopContributor int64
}

// Deterministic is implemented by recommenders whose output only depends on the input,
// which makes their results safe to cache.
type Deterministic interface {
	Deterministic() bool
}

func AsExplainer(r Recommender) (Explainer, bool) {
	e, ok := r.(Explainer)
	return e, ok
}

func IsDeterministic(r Recommender) bool {
	d, ok := r.(Deterministic)
	return ok && d.Deterministic()
}

// LoadError reports a model whose artifacts could not be read at startup.
type LoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s from %s: %v", e.Model, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AsLoadError returns the LoadError wrapped in err, if any.
func AsLoadError(err error) (*LoadError, bool) {
	var target *LoadError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
