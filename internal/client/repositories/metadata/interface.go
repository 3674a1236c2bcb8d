// Package metadata is the local secure store: a small key/value table in the
// client's SQLite database holding the persisted admin session and the
// session signing secret.
package metadata

import (
	"context"
	"time"
)

// Well-known keys.
const (
	KeyAdminSession  = "adminSession"
	KeySessionSecret = "sessionSecret"
)

// Item is one stored value.
type Item struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns common.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (Item, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
