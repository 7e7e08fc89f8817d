package preference

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Get(ctx context.Context, key string) (*AuthorPreference, error) {
	var pref AuthorPreference
	err := r.pool.QueryRow(ctx,
		`SELECT key, author, role, updated_at FROM author_preference WHERE key = $1`,
		key,
	).Scan(&pref.Key, &pref.Author, &pref.Role, &pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

func (r *repoPG) Put(ctx context.Context, pref *AuthorPreference) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO author_preference (key, author, role, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE
		 SET author = EXCLUDED.author, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`,
		pref.Key, pref.Author, pref.Role, pref.UpdatedAt,
	)
	return err
}
