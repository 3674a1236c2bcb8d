// Package listing holds the local post-processing applied to rows after they
// arrive from the remote store: case-insensitive filtering, fixed-size
// pagination and the page-button window.
package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// Searchable exposes the whitelist of fields a filter term is matched against.
type Searchable interface {
	SearchFields() []string
}

// Filter keeps the records whose search fields contain term, ignoring case.
// A blank term returns records unchanged.
func Filter[T Searchable](records []T, term string) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		return records
	}
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]T, 0, len(records))
	for _, r := range records {
		for _, f := range r.SearchFields() {
			if strings.Contains(fold.String(f), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
