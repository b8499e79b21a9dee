// Package session keeps one game engine per player session so a single
// process can host several heroes at once.
package session

import "context"

// Store holds values by session id.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
	NewID() string
}
