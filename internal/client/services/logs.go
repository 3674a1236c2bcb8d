package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
	"github.com/dmitrijs2005/opsdash/internal/timex"
)

// ViewMode selects the date range of the logs screen.
type ViewMode string

const (
	ViewToday      ViewMode = "today"
	ViewYesterday  ViewMode = "yesterday"
	ViewLast10Days ViewMode = "last10days"
	ViewWeek       ViewMode = "week"
	ViewCustom     ViewMode = "custom"
)

// ViewModes lists every mode in display order.
var ViewModes = []ViewMode{ViewToday, ViewYesterday, ViewLast10Days, ViewWeek, ViewCustom}

func ParseViewMode(s string) (ViewMode, error) {
	for _, m := range ViewModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown view mode %q", common.ErrValidation, s)
}

// Range resolves mode against now. custom is only used for ViewCustom and
// must be valid.
func (m ViewMode) Range(now time.Time, custom timex.DateRange) (timex.DateRange, error) {
	switch m {
	case ViewToday:
		return timex.Today(now), nil
	case ViewYesterday:
		return timex.Yesterday(now), nil
	case ViewLast10Days:
		return timex.LastDays(now, 10), nil
	case ViewWeek:
		return timex.ThisWeek(now), nil
	case ViewCustom:
		if !custom.Valid() {
			return timex.DateRange{}, fmt.Errorf("%w: custom range needs start <= end", common.ErrValidation)
		}
		return timex.DateRange{Start: timex.StartOfDay(custom.Start), End: timex.EndOfDay(custom.End)}, nil
	}
	return timex.DateRange{}, fmt.Errorf("%w: unknown view mode %q", common.ErrValidation, m)
}

// RecentLimit is the number of rows of the recent-logs list.
const RecentLimit = 50

type LogService struct {
	store remote.Store
	now   func() time.Time
}

func NewLogService(store remote.Store) *LogService {
	return &LogService{store: store, now: time.Now}
}

// Now is the clock the service resolves relative ranges with.
func (s *LogService) Now() time.Time { return s.now() }

func (s *LogService) list(ctx context.Context, q remote.ListQuery) ([]models.EdgeFunctionLog, error) {
	recs, err := s.store.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	logs := make([]models.EdgeFunctionLog, 0, len(recs))
	for _, rec := range recs {
		l, err := models.EdgeFunctionLogFromRecord(rec)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func checkFunction(fn string) error {
	if !models.IsEdgeFunction(fn) {
		return fmt.Errorf("%w: unknown edge function %q", common.ErrValidation, fn)
	}
	return nil
}

// FunctionLogs returns the invocations of fn inside r, newest first.
func (s *LogService) FunctionLogs(ctx context.Context, fn string, r timex.DateRange) ([]models.EdgeFunctionLog, error) {
	if err := checkFunction(fn); err != nil {
		return nil, err
	}
	return s.list(ctx, remote.From(remote.EdgeFunctionLogs).
		Where(remote.Eq("function_name", fn)).
		Where(inRange(r)...).
		OrderBy("created_at", false))
}

// TodayErrors returns today's failed invocations of every function: an error
// was recorded and the status is not 200.
func (s *LogService) TodayErrors(ctx context.Context) ([]models.EdgeFunctionLog, error) {
	return s.list(ctx, remote.From(remote.EdgeFunctionLogs).
		Where(inRange(timex.Today(s.now()))...).
		Where(remote.NotNull("error"), remote.Neq("status", 200)).
		OrderBy("created_at", false))
}

// Recent returns the latest limit invocations of fn.
func (s *LogService) Recent(ctx context.Context, fn string, limit int) ([]models.EdgeFunctionLog, error) {
	if err := checkFunction(fn); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = RecentLimit
	}
	return s.list(ctx, remote.From(remote.EdgeFunctionLogs).
		Where(remote.Eq("function_name", fn)).
		OrderBy("created_at", false).
		WithLimit(limit))
}
