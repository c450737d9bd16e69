package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/reco-service/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Get all item rating records ordered by rank
func (r *Repository) GetItemsRating(ctx context.Context) ([]domain.ItemRating, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT item_id, views, rank, title
		FROM items_rating
		ORDER BY rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("query items rating: %w", err)
	}
	defer rows.Close()

	var items []domain.ItemRating
	for rows.Next() {
		var it domain.ItemRating
		if err := rows.Scan(&it.ItemID, &it.Views, &it.Rank, &it.Title); err != nil {
			return nil, fmt.Errorf("scan item rating: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over items rating: %w", err)
	}
	return items, nil
}

// Bulk insert item rating records
func (r *Repository) InsertItemsRating(ctx context.Context, items []domain.ItemRating) (int64, error) {
	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"items_rating"},
		[]string{"item_id", "views", "rank", "title"},
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{it.ItemID, it.Views, it.Rank, it.Title}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy items rating: %w", err)
	}
	return n, nil
}
