package listing

import "sync"

// Pager is the list state of one screen: the fetched source, the active
// search term and the current page. Changing the term returns to page 1.
type Pager[T Searchable] struct {
	mu       sync.RWMutex
	source   []T
	filtered []T
	term     string
	page     int
	pageSize int
}

func NewPager[T Searchable](pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &Pager[T]{page: 1, pageSize: pageSize}
}

// SetSource replaces the rows, keeping the term and clamping the page.
func (p *Pager[T]) SetSource(records []T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = records
	p.filtered = Filter(records, p.term)
	p.page = ClampPage(p.page, TotalPages(len(p.filtered), p.pageSize))
}

// SetTerm changes the search term and resets to the first page.
func (p *Pager[T]) SetTerm(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.term = term
	p.filtered = Filter(p.source, term)
	p.page = 1
}

func (p *Pager[T]) PageSize() int { return p.pageSize }

func (p *Pager[T]) Term() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.term
}

// SetPage moves to page, clamped to the available pages.
func (p *Pager[T]) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = ClampPage(page, TotalPages(len(p.filtered), p.pageSize))
}

func (p *Pager[T]) Next() { p.step(1) }
func (p *Pager[T]) Prev() { p.step(-1) }

func (p *Pager[T]) step(d int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = ClampPage(p.page+d, TotalPages(len(p.filtered), p.pageSize))
}

// Page returns the rows of the current page and its window.
func (p *Pager[T]) Page() ([]T, PageWindow) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	w := NewWindow(len(p.filtered), p.page, p.pageSize)
	return Paginate(p.filtered, w.CurrentPage, p.pageSize), w
}

// Buttons returns the page-button window for the current page.
func (p *Pager[T]) Buttons() []int {
	_, w := p.Page()
	return Buttons(w.CurrentPage, w.TotalPages)
}
