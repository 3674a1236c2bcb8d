package services

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds per-user subscription lookups.
const DefaultFetchConcurrency = 8

type UserService struct {
	store       remote.Store
	concurrency int
}

func NewUserService(store remote.Store, concurrency int) *UserService {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &UserService{store: store, concurrency: concurrency}
}

// ProviderUsers returns the users linked to provider that have a pricing
// plan, newest first, each with its displayed subscription resolved.
func (s *UserService) ProviderUsers(ctx context.Context, provider models.Provider) ([]models.ProviderUser, error) {
	links, err := s.store.Select(ctx, remote.From(provider.LinkResource()).
		Select("user_id", provider.EmailColumn()))
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.ProviderUser{}, nil
	}

	providerEmail := make(map[string]*string, len(links))
	ids := make([]string, 0, len(links))
	for _, rec := range links {
		id, err := rec.String("user_id")
		if err != nil {
			return nil, decodeErr(provider.LinkResource(), err)
		}
		email, err := rec.NullString(provider.EmailColumn())
		if err != nil {
			return nil, decodeErr(provider.LinkResource(), err)
		}
		if _, seen := providerEmail[id]; !seen {
			ids = append(ids, id)
			providerEmail[id] = email
		}
	}

	var (
		userRecs []remote.Record
		plans    = make(map[string]*string)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		userRecs, err = s.store.Select(gctx, remote.From(remote.Users).
			Select("id", "email", "name", "created_at").
			Where(remote.In("id", ids)).
			OrderBy("created_at", false))
		return err
	})
	g.Go(func() error {
		recs, err := s.store.Select(gctx, remote.From(remote.UserPricingPlans).
			Select("user_id", "plan_type").
			Where(remote.In("user_id", ids)))
		if err != nil {
			return err
		}
		for _, rec := range recs {
			uid, err := rec.String("user_id")
			if err != nil {
				return decodeErr(remote.UserPricingPlans, err)
			}
			plan, err := rec.NullString("plan_type")
			if err != nil {
				return decodeErr(remote.UserPricingPlans, err)
			}
			plans[uid] = plan
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]models.ProviderUser, 0, len(userRecs))
	for _, rec := range userRecs {
		u, err := models.UserFromRecord(rec)
		if err != nil {
			return nil, err
		}
		plan, ok := plans[u.ID]
		if !ok {
			continue
		}
		users = append(users, models.ProviderUser{
			User:          u,
			Provider:      provider,
			PlanType:      plan,
			ProviderEmail: providerEmail[u.ID],
		})
	}

	if err := s.resolveSubscriptions(ctx, provider, users); err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *UserService) resolveSubscriptions(ctx context.Context, provider models.Provider, users []models.ProviderUser) error {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range users {
		g.Go(func() error {
			sub, err := s.Subscription(ctx, provider, users[i].ID)
			if err != nil {
				return err
			}
			mu.Lock()
			users[i].Subscription = sub
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// Subscription returns the newest active subscription of the user, else the
// most recent one regardless of status, else nil.
func (s *UserService) Subscription(ctx context.Context, provider models.Provider, userID string) (*models.Subscription, error) {
	resource := provider.SubscriptionResource()
	base := remote.From(resource).
		Where(remote.Eq("user_id", userID)).
		OrderBy("created_at", false).
		WithLimit(1)

	recs, err := s.store.Select(ctx, base.Where(remote.Eq("active", true)))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		if recs, err = s.store.Select(ctx, base); err != nil {
			return nil, err
		}
	}
	if len(recs) == 0 {
		return nil, nil
	}
	sub, err := models.SubscriptionFromRecord(resource, recs[0])
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
