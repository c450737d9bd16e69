package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/actuallystonmai/reco-service/internal/dataset"
	"github.com/actuallystonmai/reco-service/internal/domain"
)

const (
	ItemsRatingFile = "items_rating.csv"
	UsersFile       = "users.csv"
)

// RatingStore holds the item popularity table and the set of every known user.
// It is immutable once built and safe for concurrent reads.
type RatingStore struct {
	items map[int64]domain.ItemRating
	users mapset.Set[int64]
}

func NewRatingStore(items []domain.ItemRating, userIDs []int64) (*RatingStore, error) {
	byID := make(map[int64]domain.ItemRating, len(items))
	for _, it := range items {
		if _, dup := byID[it.ItemID]; dup {
			return nil, fmt.Errorf("duplicate rating record for item %d", it.ItemID)
		}
		if it.Rank < 1 {
			return nil, fmt.Errorf("item %d: rank must be positive, got %d", it.ItemID, it.Rank)
		}
		byID[it.ItemID] = it
	}

	return &RatingStore{
		items: byID,
		users: mapset.NewThreadUnsafeSet(userIDs...),
	}, nil
}

// LoadRatingStore reads items_rating.csv and users.csv from dir.
func LoadRatingStore(dir string) (*RatingStore, error) {
	var items []domain.ItemRating
	err := dataset.ReadFile(filepath.Join(dir, ItemsRatingFile), func(row dataset.Row) error {
		it, err := parseItemRating(row)
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}, "item_id", "views", "rank", "title")
	if err != nil {
		return nil, fmt.Errorf("load items rating: %w", err)
	}

	var users []int64
	err = dataset.ReadFile(filepath.Join(dir, UsersFile), func(row dataset.Row) error {
		id, err := row.Int64("user_id")
		if err != nil {
			return err
		}
		users = append(users, id)
		return nil
	}, "user_id")
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	return NewRatingStore(items, users)
}

type ratingSource interface {
	GetItemsRating(ctx context.Context) ([]domain.ItemRating, error)
	GetUserIDs(ctx context.Context) ([]int64, error)
}

// LoadRatingStoreFromDB reads the same tables from PostgreSQL.
func LoadRatingStoreFromDB(ctx context.Context, src ratingSource) (*RatingStore, error) {
	items, err := src.GetItemsRating(ctx)
	if err != nil {
		return nil, err
	}
	users, err := src.GetUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	return NewRatingStore(items, users)
}

func parseItemRating(row dataset.Row) (domain.ItemRating, error) {
	id, err := row.Int64("item_id")
	if err != nil {
		return domain.ItemRating{}, err
	}
	views, err := row.Int64("views")
	if err != nil {
		return domain.ItemRating{}, err
	}
	rank, err := row.Int64("rank")
	if err != nil {
		return domain.ItemRating{}, err
	}
	return domain.ItemRating{
		ItemID: id,
		Views:  views,
		Rank:   int(rank),
		Title:  row.String("title"),
	}, nil
}

func (s *RatingStore) HasUser(userID int64) bool {
	return s.users.Contains(userID)
}

func (s *RatingStore) Item(itemID int64) (domain.ItemRating, error) {
	it, ok := s.items[itemID]
	if !ok {
		return domain.ItemRating{}, fmt.Errorf("item %d: %w", itemID, domain.ErrItemNotFound)
	}
	return it, nil
}

func (s *RatingStore) ItemCount() int {
	return len(s.items)
}

func (s *RatingStore) UserCount() int {
	return s.users.Cardinality()
}

// Items returns all records ordered by rank.
func (s *RatingStore) Items() []domain.ItemRating {
	out := make([]domain.ItemRating, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// UserIDs returns all known users in ascending order.
func (s *RatingStore) UserIDs() []int64 {
	ids := s.users.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
