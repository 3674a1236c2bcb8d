package remote

import "context"

// Store is the black-box query collaborator behind every screen.
type Store interface {
	// Select returns the rows matching q.
	Select(ctx context.Context, q ListQuery) ([]Record, error)
	// Count returns the number of rows matching q's filters. Ordering and
	// paging are ignored.
	Count(ctx context.Context, q ListQuery) (int, error)
	// Update sets values on the rows matching filters and returns the number
	// of affected rows. At least one filter is required.
	Update(ctx context.Context, resource string, values map[string]any, filters ...Filter) (int64, error)
	// Call runs a whitelisted server-side procedure.
	Call(ctx context.Context, procedure string, args map[string]any) ([]Record, error)
}
