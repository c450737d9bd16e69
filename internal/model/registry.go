package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

// Registry maps model names to recommenders. It is built once at startup and never
// mutated, so lookups need no locking.
type Registry struct {
	models map[string]Recommender
}

func NewRegistry(recs ...Recommender) (*Registry, error) {
	models := make(map[string]Recommender, len(recs))
	for _, r := range recs {
		name := r.Name()
		if name == "" {
			return nil, errors.New("recommender with empty name")
		}
		if _, dup := models[name]; dup {
			return nil, fmt.Errorf("recommender %q registered twice", name)
		}
		models[name] = r
	}
	return &Registry{models: models}, nil
}

func (r *Registry) Resolve(name string) (Recommender, error) {
	rec, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return rec, nil
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.models)
	sort.Strings(names)
	return names
}
