package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each request until the test releases it.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	ctxs    map[string]context.Context
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
		ctxs:    make(map[string]context.Context),
	}
}

func (g *gatedFetcher) gate(term string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[term]
	if !ok {
		ch = make(chan struct{})
		g.gates[term] = ch
	}
	return ch
}

func (g *gatedFetcher) fetch(ctx context.Context, term string) ([]string, error) {
	g.mu.Lock()
	g.ctxs[term] = ctx
	g.mu.Unlock()
	g.started <- term
	<-g.gate(term)
	// Ignores cancellation on purpose: a late result must still be discarded.
	return []string{strings.ToUpper(term)}, nil
}

func (g *gatedFetcher) ctx(term string) context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctxs[term]
}

func TestLoad_Success(t *testing.T) {
	v := NewView(func(_ context.Context, n int) (int, error) { return n * 2, nil })

	s := v.Load(context.Background(), 21)

	assert.Equal(t, StatusSuccess, s.Status)
	assert.Equal(t, 42, s.Data)
	assert.Equal(t, 21, s.Request)
	assert.NoError(t, s.Err)
	assert.False(t, s.UpdatedAt.IsZero())
	assert.Equal(t, s, v.State())
}

func TestLoad_ErrorForNewRequestDropsPreviousData(t *testing.T) {
	boom := errors.New("boom")
	v := NewView(func(_ context.Context, n int) (int, error) {
		if n < 0 {
			return 0, boom
		}
		return n, nil
	})
	ctx := context.Background()

	v.Load(ctx, 7)
	s := v.Load(ctx, -1)

	assert.Equal(t, StatusError, s.Status)
	assert.ErrorIs(t, s.Err, boom)
	assert.Zero(t, s.Data, "data of request 7 must not be shown for request -1")
	assert.True(t, s.UpdatedAt.IsZero())
	assert.Equal(t, -1, s.Request)
}

func TestRefresh_ErrorKeepsPreviousData(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	v := NewView(func(_ context.Context, n int) (int, error) {
		if fail {
			return 0, boom
		}
		return n, nil
	})
	ctx := context.Background()

	v.Load(ctx, 7)
	fail = true
	s := v.Refresh(ctx)

	assert.Equal(t, StatusError, s.Status)
	assert.ErrorIs(t, s.Err, boom)
	assert.Equal(t, 7, s.Data)
	assert.Equal(t, 7, s.Request)
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestRefresh_LoadingKeepsPreviousData(t *testing.T) {
	f := newGatedFetcher()
	v := NewView(f.fetch)
	ctx := context.Background()

	ch := v.Start(ctx, "a")
	<-f.started
	close(f.gate("a"))
	<-ch

	f.mu.Lock()
	f.gates["a"] = make(chan struct{})
	f.mu.Unlock()
	done := make(chan State[string, []string], 1)
	go func() { done <- v.Refresh(ctx) }()
	<-f.started

	st := v.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.Equal(t, []string{"A"}, st.Data)

	close(f.gate("a"))
	assert.Equal(t, StatusSuccess, (<-done).Status)
}

func TestLastRequestWins_WhenOlderResolvesLast(t *testing.T) {
	f := newGatedFetcher()
	v := NewView(f.fetch)
	ctx := context.Background()

	chA := v.Start(ctx, "a")
	require.Equal(t, "a", <-f.started)
	chAB := v.Start(ctx, "ab")
	require.Equal(t, "ab", <-f.started)

	assert.ErrorIs(t, f.ctx("a").Err(), context.Canceled, "superseded request must be cancelled")

	close(f.gate("ab"))
	sAB := <-chAB
	assert.Equal(t, StatusSuccess, sAB.Status)
	assert.Equal(t, []string{"AB"}, sAB.Data)

	close(f.gate("a"))
	sA := <-chA
	assert.Equal(t, "ab", sA.Request, "a superseded load reports the newer state")

	final := v.State()
	assert.Equal(t, StatusSuccess, final.Status)
	assert.Equal(t, "ab", final.Request)
	assert.Equal(t, []string{"AB"}, final.Data)
}

func TestLastRequestWins_WhenOlderResolvesFirst(t *testing.T) {
	f := newGatedFetcher()
	v := NewView(f.fetch)
	ctx := context.Background()

	chA := v.Start(ctx, "a")
	<-f.started
	chAB := v.Start(ctx, "ab")
	<-f.started

	close(f.gate("a"))
	<-chA
	assert.Equal(t, StatusLoading, v.State().Status, "stale completion must not end loading")

	close(f.gate("ab"))
	<-chAB
	assert.Equal(t, []string{"AB"}, v.State().Data)
}

func TestStart_EntersLoadingSynchronously(t *testing.T) {
	f := newGatedFetcher()
	v := NewView(f.fetch)

	ch := v.Start(context.Background(), "x")
	s := v.State()
	assert.True(t, s.Loading())
	assert.Equal(t, "x", s.Request)

	<-f.started
	close(f.gate("x"))
	<-ch
}

func TestRefresh(t *testing.T) {
	calls := 0
	v := NewView(func(_ context.Context, term string) (int, error) {
		calls++
		return calls, nil
	})
	ctx := context.Background()

	s := v.Refresh(ctx)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 0, calls)

	v.Load(ctx, "q")
	s = v.Refresh(ctx)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "q", s.Request)
	assert.Equal(t, 2, s.Data)
}

func TestSubscribe(t *testing.T) {
	v := NewView(func(_ context.Context, n int) (int, error) { return n, nil })
	var seen []Status
	cancel := v.Subscribe(func(s State[int, int]) { seen = append(seen, s.Status) })

	v.Load(context.Background(), 1)
	cancel()
	v.Load(context.Background(), 2)

	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, seen)
}

func TestWithTimeout(t *testing.T) {
	v := NewView(func(ctx context.Context, _ int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, WithTimeout(10*time.Millisecond), WithName("slow"))

	s := v.Load(context.Background(), 1)
	assert.Equal(t, StatusError, s.Status)
	assert.ErrorIs(t, s.Err, context.DeadlineExceeded)
}

func TestClose_CancelsInFlight(t *testing.T) {
	f := newGatedFetcher()
	v := NewView(f.fetch)

	ch := v.Start(context.Background(), "x")
	<-f.started
	v.Close()
	assert.ErrorIs(t, f.ctx("x").Err(), context.Canceled)

	close(f.gate("x"))
	<-ch
	assert.Nil(t, v.State().Data)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "Status(7)", Status(7).String())
}
