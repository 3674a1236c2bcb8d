// Package services turns dashboard screens into remote store reads and
// converts the returned records into typed models.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"github.com/dmitrijs2005/opsdash/internal/timex"
	"golang.org/x/sync/errgroup"
)

// ChartDays is the length of the overview chart.
const ChartDays = 30

// Overview is everything the overview screen shows.
type Overview struct {
	Today  models.Stats             `json:"today"`
	Month  models.Stats             `json:"month"`
	Year   models.Stats             `json:"year"`
	Daily  []models.DailyPoint      `json:"daily"`
	Active models.ActiveSubscribers `json:"active"`
}

type OverviewService struct {
	store remote.Store
	now   func() time.Time
}

func NewOverviewService(store remote.Store) *OverviewService {
	return &OverviewService{store: store, now: time.Now}
}

// Overview loads the three stats rows, the daily chart and the active
// subscriber counts concurrently. The first failure cancels the rest.
func (s *OverviewService) Overview(ctx context.Context) (Overview, error) {
	now := s.now()
	var ov Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.Today, err = s.Stats(ctx, timex.Today(now))
		return err
	})
	g.Go(func() (err error) {
		ov.Month, err = s.Stats(ctx, timex.ThisMonth(now))
		return err
	})
	g.Go(func() (err error) {
		ov.Year, err = s.Stats(ctx, timex.ThisYear(now))
		return err
	})
	g.Go(func() (err error) {
		ov.Daily, err = s.Daily(ctx, ChartDays)
		return err
	})
	g.Go(func() (err error) {
		ov.Active, err = s.ActiveSubscribers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

func inRange(r timex.DateRange) []remote.Filter {
	return []remote.Filter{
		remote.Gte("created_at", r.Start.UTC()),
		remote.Lte("created_at", r.End.UTC()),
	}
}

// Stats counts new users and processed emails and sums revenue over r.
func (s *OverviewService) Stats(ctx context.Context, r timex.DateRange) (models.Stats, error) {
	var st models.Stats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.NewUsers, err = s.store.Count(ctx, remote.From(remote.Users).Where(inRange(r)...))
		return err
	})
	g.Go(func() (err error) {
		st.Emails, err = s.store.Count(ctx, remote.From(remote.EmailPrioLogs).Where(inRange(r)...))
		return err
	})
	g.Go(func() error {
		recs, err := s.store.Select(ctx, remote.From(remote.StripeTransactions).
			Select("amount", "created_at").
			Where(inRange(r)...))
		if err != nil {
			return err
		}
		for _, rec := range recs {
			tx, err := models.StripeTransactionFromRecord(rec)
			if err != nil {
				return err
			}
			st.RevenueCents += tx.Amount
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Stats{}, err
	}
	return st, nil
}

// Daily returns one point per day for the last days days, oldest first, with
// missing days zero-filled. Revenue is converted from cents to dollars.
func (s *OverviewService) Daily(ctx context.Context, days int) ([]models.DailyPoint, error) {
	now := s.now()
	emails := make(map[string]int64)
	revenue := make(map[string]int64)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.store.Call(gctx, remote.ProcEmailCountsByDate, map[string]any{"days_ago": days})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			d, err := models.DailyEmailCountFromRecord(rec)
			if err != nil {
				return err
			}
			emails[timex.DayKey(d.Date)] = d.Count
		}
		return nil
	})
	g.Go(func() error {
		recs, err := s.store.Select(gctx, remote.From(remote.StripeTransactions).
			Select("amount", "created_at").
			Where(remote.Gte("created_at", now.AddDate(0, 0, -days).UTC())).
			OrderBy("created_at", true))
		if err != nil {
			return err
		}
		for _, rec := range recs {
			tx, err := models.StripeTransactionFromRecord(rec)
			if err != nil {
				return err
			}
			revenue[timex.DayKey(tx.CreatedAt.In(now.Location()))] += tx.Amount
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := make([]models.DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := timex.DayKey(now.AddDate(0, 0, -i))
		points = append(points, models.DailyPoint{
			Day:     day,
			Emails:  emails[day],
			Revenue: float64(revenue[day]) / 100,
		})
	}
	return points, nil
}

// ActiveSubscribers counts active, not disabled subscriptions per provider.
func (s *OverviewService) ActiveSubscribers(ctx context.Context) (models.ActiveSubscribers, error) {
	var a models.ActiveSubscribers

	count := func(ctx context.Context, p models.Provider) (int, error) {
		return s.store.Count(ctx, remote.From(p.SubscriptionResource()).
			Where(remote.Eq("active", true), remote.IsNull("disabled_at")))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.Google, err = count(ctx, models.ProviderGoogle)
		return err
	})
	g.Go(func() (err error) {
		a.Microsoft, err = count(ctx, models.ProviderMicrosoft)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ActiveSubscribers{}, err
	}
	return a, nil
}
