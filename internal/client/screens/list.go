// Package screens binds each dashboard screen to its data: a query.View that
// fetches from the remote store and, for list screens, a listing.Pager that
// filters and paginates the fetched rows locally. Front-ends only render the
// snapshots these types return.
package screens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/listing"
	"github.com/dmitrijs2005/opsdash/internal/client/query"
)

// Snapshot is what a list screen renders: the query status, the rows of the
// current page and the navigation window.
type Snapshot[Req any, T any] struct {
	Status    query.Status
	Request   Req
	Err       error
	Items     []T
	Window    listing.PageWindow
	Buttons   []int
	Term      string
	UpdatedAt time.Time
}

// List is a screen over a fully fetched list with local search and
// pagination.
type List[Req any, T listing.Searchable] struct {
	view   *query.View[Req, []T]
	pager  *listing.Pager[T]
	cancel func()
}

func NewList[Req any, T listing.Searchable](fetch query.Fetcher[Req, []T], pageSize int, opts ...query.Option) *List[Req, T] {
	l := &List[Req, T]{
		view:  query.NewView(fetch, opts...),
		pager: listing.NewPager[T](pageSize),
	}
	l.cancel = l.view.Subscribe(func(s query.State[Req, []T]) {
		if s.Status == query.StatusSuccess {
			l.pager.SetSource(s.Data)
		}
	})
	return l
}

// Load fetches req and shows its first page. The search term is kept; rows of
// the previous request are dropped so a failure shows none.
func (l *List[Req, T]) Load(ctx context.Context, req Req) Snapshot[Req, T] {
	l.pager.SetSource(nil)
	l.pager.SetPage(1)
	l.view.Load(ctx, req)
	return l.Snapshot()
}

// Refresh re-fetches the current request and stays on the current page when
// it still exists.
func (l *List[Req, T]) Refresh(ctx context.Context) Snapshot[Req, T] {
	l.view.Refresh(ctx)
	return l.Snapshot()
}

// Search filters the fetched rows and returns to page 1.
func (l *List[Req, T]) Search(term string) Snapshot[Req, T] {
	l.pager.SetTerm(term)
	return l.Snapshot()
}

func (l *List[Req, T]) SetPage(page int) Snapshot[Req, T] {
	l.pager.SetPage(page)
	return l.Snapshot()
}

func (l *List[Req, T]) Next() Snapshot[Req, T] {
	l.pager.Next()
	return l.Snapshot()
}

func (l *List[Req, T]) Prev() Snapshot[Req, T] {
	l.pager.Prev()
	return l.Snapshot()
}

func (l *List[Req, T]) Snapshot() Snapshot[Req, T] {
	s := l.view.State()
	items, w := l.pager.Page()
	return Snapshot[Req, T]{
		Status:    s.Status,
		Request:   s.Request,
		Err:       s.Err,
		Items:     items,
		Window:    w,
		Buttons:   listing.Buttons(w.CurrentPage, w.TotalPages),
		Term:      l.pager.Term(),
		UpdatedAt: s.UpdatedAt,
	}
}

func (l *List[Req, T]) PageSize() int { return l.pager.PageSize() }

// Subscribe forwards query state changes of the screen.
func (l *List[Req, T]) Subscribe(fn func(query.State[Req, []T])) (cancel func()) {
	return l.view.Subscribe(fn)
}

func (l *List[Req, T]) Close() {
	l.cancel()
	l.view.Close()
}
