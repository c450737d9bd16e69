package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Get every known user id
func (r *Repository) GetUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect user ids: %w", err)
	}
	return ids, nil
}

// Count total users
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// Bulk insert user ids
func (r *Repository) InsertUsers(ctx context.Context, ids []int64) (int64, error) {
	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"users"},
		[]string{"user_id"},
		pgx.CopyFromSlice(len(ids), func(i int) ([]any, error) {
			return []any{ids[i]}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy users: %w", err)
	}
	return n, nil
}
