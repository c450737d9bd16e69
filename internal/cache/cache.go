package cache

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/reco-service/internal/domain"
)

// Cache stores results of deterministic models. A miss is reported as found == false with
// a nil error.
type Cache interface {
	GetItems(ctx context.Context, model string, userID int64, k int) ([]int64, bool, error)
	SetItems(ctx context.Context, model string, userID int64, k int, items []int64) error
	GetExplanation(ctx context.Context, model string, userID, itemID int64) (domain.Explanation, bool, error)
	SetExplanation(ctx context.Context, model string, userID, itemID int64, e domain.Explanation) error
	Ping(ctx context.Context) error
}

func recoKey(model string, userID int64, k int) string {
	return fmt.Sprintf("reco:%s:user:%d:k:%d", model, userID, k)
}

func explainKey(model string, userID, itemID int64) string {
	return fmt.Sprintf("explain:%s:user:%d:item:%d", model, userID, itemID)
}

type modelClearer interface {
	ClearModel(ctx context.Context, model string) error
}

// ClearModels drops cached results of the given models from backends that outlive the
// process. Other backends are left alone.
func ClearModels(ctx context.Context, c Cache, models ...string) error {
	mc, ok := c.(modelClearer)
	if !ok {
		return nil
	}
	for _, m := range models {
		if err := mc.ClearModel(ctx, m); err != nil {
			return fmt.Errorf("clear cached %s results: %w", m, err)
		}
	}
	return nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) GetItems(context.Context, string, int64, int) ([]int64, bool, error) {
	return nil, false, nil
}

func (Nop) SetItems(context.Context, string, int64, int, []int64) error { return nil }

func (Nop) GetExplanation(context.Context, string, int64, int64) (domain.Explanation, bool, error) {
	return domain.Explanation{}, false, nil
}

func (Nop) SetExplanation(context.Context, string, int64, int64, domain.Explanation) error {
	return nil
}

func (Nop) Ping(context.Context) error { return nil }
