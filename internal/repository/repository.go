package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Remove every rating table row before a reimport
func (r *Repository) Truncate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE items_rating, users`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
