// Package adminusers reads and updates the hosted admin_users table through
// the remote store.
package adminusers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
)

type Repository interface {
	// GetByEmail returns common.ErrNotFound when no account has email.
	GetByEmail(ctx context.Context, email string) (models.AdminUser, error)
	// GetByIDAndEmail returns common.ErrNotFound unless an account matches
	// both id and email.
	GetByIDAndEmail(ctx context.Context, id, email string) (models.AdminUser, error)
	// TouchLastLogin sets last_login of the account to at.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
