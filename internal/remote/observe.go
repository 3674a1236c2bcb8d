package remote

import (
	"context"
	"time"
)

// Observer is told about every store call once it finishes.
type Observer interface {
	ObserveQuery(ctx context.Context, op, resource string, d time.Duration, err error)
}

type observedStore struct {
	next Store
	obs  Observer
	now  func() time.Time
}

// Observe wraps s so that obs sees the duration and outcome of each call.
func Observe(s Store, obs Observer) Store {
	return &observedStore{next: s, obs: obs, now: time.Now}
}

func (o *observedStore) done(ctx context.Context, op, resource string, start time.Time, err error) {
	o.obs.ObserveQuery(ctx, op, resource, o.now().Sub(start), err)
}

func (o *observedStore) Select(ctx context.Context, q ListQuery) (rows []Record, err error) {
	start := o.now()
	defer func() { o.done(ctx, "select", q.Resource, start, err) }()
	return o.next.Select(ctx, q)
}

func (o *observedStore) Count(ctx context.Context, q ListQuery) (n int, err error) {
	start := o.now()
	defer func() { o.done(ctx, "count", q.Resource, start, err) }()
	return o.next.Count(ctx, q)
}

func (o *observedStore) Update(ctx context.Context, resource string, values map[string]any, filters ...Filter) (n int64, err error) {
	start := o.now()
	defer func() { o.done(ctx, "update", resource, start, err) }()
	return o.next.Update(ctx, resource, values, filters...)
}

func (o *observedStore) Call(ctx context.Context, procedure string, args map[string]any) (rows []Record, err error) {
	start := o.now()
	defer func() { o.done(ctx, "call", procedure, start, err) }()
	return o.next.Call(ctx, procedure, args)
}
