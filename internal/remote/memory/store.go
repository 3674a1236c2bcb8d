// Package memory is an in-memory remote.Store. It applies the same resource
// and column whitelist as the Postgres store and evaluates filters, ordering
// and paging in Go. Front-end and service tests run against it.
package memory

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// Procedure computes the rows of a server-side procedure call.
type Procedure func(args map[string]any) ([]remote.Record, error)

type Store struct {
	mu     sync.RWMutex
	tables map[string][]remote.Record
	procs  map[string]Procedure
	fail   map[string]error
	calls  []string
}

func New() *Store {
	return &Store{
		tables: make(map[string][]remote.Record),
		procs:  make(map[string]Procedure),
		fail:   make(map[string]error),
	}
}

// Insert appends rows to resource.
func (s *Store) Insert(resource string, recs ...remote.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[resource] = append(s.tables[resource], recs...)
}

// Rows returns a copy of the rows of resource.
func (s *Store) Rows(resource string) []remote.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]remote.Record, 0, len(s.tables[resource]))
	for _, r := range s.tables[resource] {
		out = append(out, maps.Clone(r))
	}
	return out
}

func (s *Store) SetProcedure(name string, fn Procedure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs[name] = fn
}

// FailOn makes every call touching resource (or procedure) fail with err.
// A nil err clears the failure.
func (s *Store) FailOn(resource string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, resource)
		return
	}
	s.fail[resource] = err
}

// Calls lists the operations served so far as "op resource".
func (s *Store) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calls)
}

func (s *Store) begin(op, resource string) error {
	s.calls = append(s.calls, op+" "+resource)
	if err, ok := s.fail[resource]; ok {
		return common.NewQueryError(op, resource, err)
	}
	return nil
}

func (s *Store) Select(ctx context.Context, q remote.ListQuery) ([]remote.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.NewQueryError("select", q.Resource, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("select", q.Resource); err != nil {
		return nil, err
	}
	if err := validate(q); err != nil {
		return nil, common.NewQueryError("select", q.Resource, err)
	}

	rows, err := s.match(q.Resource, q.Filters)
	if err != nil {
		return nil, common.NewQueryError("select", q.Resource, err)
	}
	if len(q.Ordering) > 0 {
		slices.SortStableFunc(rows, func(a, b remote.Record) int {
			for _, o := range q.Ordering {
				c := compare(a[o.Column], b[o.Column])
				if !o.Ascending {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	if off := q.Offset(); off > 0 {
		if off >= len(rows) {
			rows = rows[:0]
		} else {
			rows = rows[off:]
		}
	}
	if n := q.RowLimit(); n > 0 && n < len(rows) {
		rows = rows[:n]
	}

	out := make([]remote.Record, 0, len(rows))
	for _, r := range rows {
		if len(q.Columns) == 0 {
			out = append(out, maps.Clone(r))
			continue
		}
		p := make(remote.Record, len(q.Columns))
		for _, c := range q.Columns {
			p[c] = r[c]
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, q remote.ListQuery) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.NewQueryError("count", q.Resource, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("count", q.Resource); err != nil {
		return 0, err
	}
	if err := validate(remote.ListQuery{Resource: q.Resource, Filters: q.Filters}); err != nil {
		return 0, common.NewQueryError("count", q.Resource, err)
	}
	rows, err := s.match(q.Resource, q.Filters)
	if err != nil {
		return 0, common.NewQueryError("count", q.Resource, err)
	}
	return len(rows), nil
}

func (s *Store) Update(ctx context.Context, resource string, values map[string]any, filters ...remote.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.NewQueryError("update", resource, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("update", resource); err != nil {
		return 0, err
	}
	if len(values) == 0 || len(filters) == 0 {
		return 0, common.NewQueryError("update", resource, fmt.Errorf("%w: update needs values and filters", common.ErrValidation))
	}
	if err := validate(remote.ListQuery{Resource: resource, Filters: filters}); err != nil {
		return 0, common.NewQueryError("update", resource, err)
	}
	for c := range values {
		if err := remote.CheckColumn(resource, c); err != nil {
			return 0, common.NewQueryError("update", resource, err)
		}
	}

	var n int64
	for _, r := range s.tables[resource] {
		ok, err := matches(r, filters)
		if err != nil {
			return 0, common.NewQueryError("update", resource, err)
		}
		if !ok {
			continue
		}
		for c, v := range values {
			r[c] = v
		}
		n++
	}
	return n, nil
}

func (s *Store) Call(ctx context.Context, procedure string, args map[string]any) ([]remote.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.NewQueryError("call", procedure, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("call", procedure); err != nil {
		return nil, err
	}
	if _, ok := remote.Procedures[procedure]; !ok {
		return nil, common.NewQueryError("call", procedure, fmt.Errorf("%w: %q", common.ErrUnknownProcedure, procedure))
	}
	fn, ok := s.procs[procedure]
	if !ok {
		return []remote.Record{}, nil
	}
	recs, err := fn(args)
	if err != nil {
		return nil, common.NewQueryError("call", procedure, err)
	}
	return recs, nil
}

func validate(q remote.ListQuery) error {
	if err := remote.CheckResource(q.Resource); err != nil {
		return err
	}
	for _, c := range q.Columns {
		if err := remote.CheckColumn(q.Resource, c); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := remote.CheckColumn(q.Resource, f.Column); err != nil {
			return err
		}
	}
	for _, o := range q.Ordering {
		if err := remote.CheckColumn(q.Resource, o.Column); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) match(resource string, filters []remote.Filter) ([]remote.Record, error) {
	var out []remote.Record
	for _, r := range s.tables[resource] {
		ok, err := matches(r, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r remote.Record, filters []remote.Filter) (bool, error) {
	for _, f := range filters {
		v := r[f.Column]
		var ok bool
		switch f.Op {
		case remote.OpIsNull:
			ok = v == nil
		case remote.OpNotNull:
			ok = v != nil
		case remote.OpEq:
			ok = v != nil && compare(v, f.Value) == 0
		case remote.OpNeq:
			ok = v != nil && compare(v, f.Value) != 0
		case remote.OpGt:
			ok = v != nil && compare(v, f.Value) > 0
		case remote.OpGte:
			ok = v != nil && compare(v, f.Value) >= 0
		case remote.OpLt:
			ok = v != nil && compare(v, f.Value) < 0
		case remote.OpLte:
			ok = v != nil && compare(v, f.Value) <= 0
		case remote.OpIn:
			ok = v != nil && contains(f.Value, v)
		case remote.OpILike:
			pattern, isString := f.Value.(string)
			if !isString {
				return false, fmt.Errorf("%w: ilike needs a string pattern", common.ErrValidation)
			}
			s, isText := v.(string)
			ok = isText && likeRegexp(pattern).MatchString(s)
		default:
			return false, fmt.Errorf("%w: %q", common.ErrUnsupportedOp, f.Op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func contains(list, v any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if compare(rv.Index(i).Interface(), v) == 0 {
			return true
		}
	}
	return false
}

// likeRegexp translates an ILIKE pattern with backslash escapes.
func likeRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// compare orders nil first, then numbers, times, booleans and strings by
// value; mismatched kinds fall back to their formatted text.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if p, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return p, true
		}
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
