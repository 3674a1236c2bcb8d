package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/opsdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/opsdash/internal/common"
)

const secretSize = 32

// LoadOrCreateSecret returns configured when set. Otherwise it returns the
// signing secret kept in the local store, generating and persisting one on
// first use.
func LoadOrCreateSecret(ctx context.Context, store metadata.Repository, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	item, err := store.Get(ctx, metadata.KeySessionSecret)
	if err == nil && len(item.Value) >= secretSize {
		return item.Value, nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("read session secret: %w", err)
	}

	secret := common.GenerateRandByteArray(secretSize)
	if err := store.Set(ctx, metadata.KeySessionSecret, secret); err != nil {
		return nil, fmt.Errorf("store session secret: %w", err)
	}
	return secret, nil
}
