// Package query provides View, the asynchronous query state shared by every
// dashboard screen.
//
// A View runs one fetch at a time for a request value. Issuing a new request
// cancels the context of the previous fetch and bumps a sequence number; a
// completion is applied only if its sequence is still the latest, so the last
// requested state always wins, whatever order the fetches finish in.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/logging"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// State is a snapshot of a View. Data keeps the last successful result while
// a newer request is loading or has failed.
type State[Req, T any] struct {
	Status    Status
	Request   Req
	Data      T
	Err       error
	UpdatedAt time.Time
}

func (s State[Req, T]) Loading() bool { return s.Status == StatusLoading }

// Fetcher performs the remote read for req. It must honor ctx cancellation.
type Fetcher[Req, T any] func(ctx context.Context, req Req) (T, error)

type Option func(*options)

type options struct {
	name    string
	timeout time.Duration
	log     logging.Logger
}

// WithName labels log lines of the view.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTimeout bounds every fetch; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

type View[Req, T any] struct {
	fetch Fetcher[Req, T]
	opts  options
	now   func() time.Time

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	state     State[Req, T]
	hasReq    bool
	listeners map[int]func(State[Req, T])
	nextID    int
}

func NewView[Req, T any](fetch Fetcher[Req, T], opts ...Option) *View[Req, T] {
	o := options{name: "view", log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &View[Req, T]{
		fetch:     fetch,
		opts:      o,
		now:       time.Now,
		listeners: make(map[int]func(State[Req, T])),
	}
}

func (v *View[Req, T]) State() State[Req, T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Subscribe registers fn for every state change. The returned func
// unregisters it.
func (v *View[Req, T]) Subscribe(fn func(State[Req, T])) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

// publish must be called with v.mu held; it returns the listeners to notify
// after unlocking.
func (v *View[Req, T]) publish() []func(State[Req, T]) {
	ls := make([]func(State[Req, T]), 0, len(v.listeners))
	for _, l := range v.listeners {
		ls = append(ls, l)
	}
	return ls
}

func notify[Req, T any](ls []func(State[Req, T]), s State[Req, T]) {
	for _, l := range ls {
		l(s)
	}
}

// begin supersedes any in-flight fetch and enters StatusLoading for req. The
// previous data survives only when keep is set, so a failed fetch for a new
// request never shows rows of an older one.
func (v *View[Req, T]) begin(ctx context.Context, req Req, keep bool) (context.Context, uint64) {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq

	var (
		fctx   context.Context
		cancel context.CancelFunc
	)
	if v.opts.timeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, v.opts.timeout)
	} else {
		fctx, cancel = context.WithCancel(ctx)
	}
	v.cancel = cancel
	v.hasReq = true
	next := State[Req, T]{Status: StatusLoading, Request: req}
	if keep {
		next.Data, next.UpdatedAt = v.state.Data, v.state.UpdatedAt
	}
	v.state = next
	s, ls := v.state, v.publish()
	v.mu.Unlock()

	notify(ls, s)
	return fctx, seq
}

func (v *View[Req, T]) run(ctx context.Context, seq uint64, req Req) State[Req, T] {
	start := v.now()
	data, err := v.fetch(ctx, req)

	v.mu.Lock()
	if seq != v.seq {
		s := v.state
		v.mu.Unlock()
		v.opts.log.Debug(ctx, "discarding superseded result", "view", v.opts.name, "seq", seq)
		return s
	}
	v.cancel()
	v.cancel = nil

	if err != nil {
		v.state.Status = StatusError
		v.state.Err = err
	} else {
		v.state = State[Req, T]{Status: StatusSuccess, Request: req, Data: data, UpdatedAt: v.now()}
	}
	s, ls := v.state, v.publish()
	v.mu.Unlock()

	if err != nil {
		v.opts.log.Warn(ctx, "query failed", "view", v.opts.name, "error", err)
	} else {
		v.opts.log.Debug(ctx, "query finished", "view", v.opts.name, "took", v.now().Sub(start))
	}
	notify(ls, s)
	return s
}

// Load fetches req and blocks until it completes or is superseded. It returns
// the view state at that point, which belongs to a newer request if this one
// was superseded.
func (v *View[Req, T]) Load(ctx context.Context, req Req) State[Req, T] {
	return v.load(ctx, req, false)
}

func (v *View[Req, T]) load(ctx context.Context, req Req, keep bool) State[Req, T] {
	fctx, seq := v.begin(ctx, req, keep)
	return v.run(fctx, seq, req)
}

// Start is the asynchronous form of Load. The view is in StatusLoading for
// req when Start returns; the channel yields the state Load would have
// returned and is then closed.
func (v *View[Req, T]) Start(ctx context.Context, req Req) <-chan State[Req, T] {
	fctx, seq := v.begin(ctx, req, false)
	ch := make(chan State[Req, T], 1)
	go func() {
		defer close(ch)
		ch <- v.run(fctx, seq, req)
	}()
	return ch
}

// Refresh re-issues the last request, keeping its data visible while loading
// and after a failure. Without a previous request it returns the current
// (idle) state.
func (v *View[Req, T]) Refresh(ctx context.Context) State[Req, T] {
	v.mu.Lock()
	has, req := v.hasReq, v.state.Request
	v.mu.Unlock()
	if !has {
		return v.State()
	}
	return v.load(ctx, req, true)
}

// Close cancels the in-flight fetch, if any.
func (v *View[Req, T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.seq++
}
