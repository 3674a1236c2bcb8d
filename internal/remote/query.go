package remote

import (
	"math"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIsNull  Op = "is_null"
	OpNotNull Op = "not_null"
	OpIn      Op = "in"
	OpILike   Op = "ilike"
)

// Filter is a single predicate on a column. Value is ignored for the null
// operators and must be a slice for OpIn.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, v any) Filter { return Filter{Column: column, Op: OpEq, Value: v} }
func Neq(column string, v any) Filter { return Filter{Column: column, Op: OpNeq, Value: v} }
func Gt(column string, v any) Filter { return Filter{Column: column, Op: OpGt, Value: v} }
func Gte(column string, v any) Filter { return Filter{Column: column, Op: OpGte, Value: v} }
func Lt(column string, v any) Filter { return Filter{Column: column, Op: OpLt, Value: v} }
func Lte(column string, v any) Filter { return Filter{Column: column, Op: OpLte, Value: v} }
func IsNull(column string) Filter { return Filter{Column: column, Op: OpIsNull} }
func NotNull(column string) Filter { return Filter{Column: column, Op: OpNotNull} }
func In(column string, v any) Filter { return Filter{Column: column, Op: OpIn, Value: v} }
func ILike(column, p string) Filter { return Filter{Column: column, Op: OpILike, Value: p} }

// ILikeContains matches rows whose column contains term, case-insensitively.
// LIKE metacharacters in term are escaped.
func ILikeContains(column, term string) Filter {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return ILike(column, "%"+r.Replace(term)+"%")
}

// Order sorts by one column.
type Order struct {
	Column    string
	Ascending bool
}

// ListQuery describes one remote read. The zero value of each paging field
// means "unbounded". Page is 1-based and only applies when PageSize > 0;
// otherwise Limit, when set, caps the result.
type ListQuery struct {
	Resource string
	Columns  []string
	Filters  []Filter
	Ordering []Order
	Limit    int
	PageSize int
	Page     int
}

// From starts a query on resource selecting every column.
func From(resource string) ListQuery {
	return ListQuery{Resource: resource}
}

// The builder methods return modified copies; the receiver is not changed.

func (q ListQuery) Select(columns ...string) ListQuery {
	q.Columns = append([]string(nil), columns...)
	return q
}

func (q ListQuery) Where(filters ...Filter) ListQuery {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

func (q ListQuery) OrderBy(column string, ascending bool) ListQuery {
	q.Ordering = append(append([]Order(nil), q.Ordering...), Order{Column: column, Ascending: ascending})
	return q
}

func (q ListQuery) WithLimit(n int) ListQuery {
	q.Limit = n
	return q
}

// WithPage selects the 1-based page of pageSize rows.
func (q ListQuery) WithPage(page, pageSize int) ListQuery {
	q.Page = page
	q.PageSize = pageSize
	return q
}

// Offset returns the row offset implied by Page and PageSize. It saturates
// at math.MaxInt instead of overflowing.
func (q ListQuery) Offset() int {
	if q.PageSize <= 0 || q.Page <= 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// RowLimit returns the effective LIMIT, or 0 for none.
func (q ListQuery) RowLimit() int {
	if q.PageSize > 0 {
		return q.PageSize
	}
	if q.Limit > 0 {
		return q.Limit
	}
	return 0
}
