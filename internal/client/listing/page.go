package listing

// PageWindow describes the page shown out of a source of TotalCount rows.
type PageWindow struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// TotalPages is ceil(n/pageSize), and at least 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage bounds page to [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	return max(1, min(page, total))
}

// NewWindow builds the window for n rows, clamping page.
func NewWindow(n, page, pageSize int) PageWindow {
	total := TotalPages(n, pageSize)
	return PageWindow{CurrentPage: ClampPage(page, total), TotalPages: total, TotalCount: n}
}

// Paginate returns the records of the 1-based page, at most pageSize of them.
// Pages outside the source yield an empty slice.
func Paginate[T any](records []T, page, pageSize int) []T {
	if pageSize <= 0 || page < 1 {
		return records[:0:0]
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return records[:0:0]
	}
	end := min(start+pageSize, len(records))
	return records[start:end:end]
}

// MaxButtons is the width of the page-button window.
const MaxButtons = 5

// Buttons returns the page numbers to offer for navigation: every page when
// there are at most five, otherwise five consecutive pages kept around current
// and pinned to either end.
func Buttons(current, total int) []int {
	if total < 1 {
		return nil
	}
	current = ClampPage(current, total)

	var first int
	switch {
	case total <= MaxButtons:
		first = 1
	case current <= 3:
		first = 1
	case current >= total-2:
		first = total - MaxButtons + 1
	default:
		first = current - 2
	}
	last := min(first+MaxButtons-1, total)

	out := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		out = append(out, p)
	}
	return out
}
