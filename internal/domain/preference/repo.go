package preference

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("preference not found")

type Repository interface {
	Get(ctx context.Context, key string) (*AuthorPreference, error)
	Put(ctx context.Context, pref *AuthorPreference) error
}
