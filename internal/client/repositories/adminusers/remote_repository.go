package adminusers

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

type RemoteRepository struct {
	store remote.Store
}

func NewRemoteRepository(store remote.Store) *RemoteRepository {
	return &RemoteRepository{store: store}
}

var columns = []string{"id", "email", "password", "created_at", "last_login"}

func (r *RemoteRepository) one(ctx context.Context, filters ...remote.Filter) (models.AdminUser, error) {
	q := remote.From(remote.AdminUsers).
		Select(columns...).
		Where(filters...).
		WithLimit(1)

	recs, err := r.store.Select(ctx, q)
	if err != nil {
		return models.AdminUser{}, err
	}
	if len(recs) == 0 {
		return models.AdminUser{}, common.ErrNotFound
	}
	return models.AdminUserFromRecord(recs[0])
}

func (r *RemoteRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	return r.one(ctx, remote.Eq("email", email))
}

func (r *RemoteRepository) GetByIDAndEmail(ctx context.Context, id, email string) (models.AdminUser, error) {
	return r.one(ctx, remote.Eq("id", id), remote.Eq("email", email))
}

func (r *RemoteRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	n, err := r.store.Update(ctx, remote.AdminUsers,
		map[string]any{"last_login": at.UTC()},
		remote.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("admin %s: %w", id, common.ErrNotFound)
	}
	return nil
}
