package postgres

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type builder struct {
	sb   strings.Builder
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) where(resource string, filters []remote.Filter) error {
	for i, f := range filters {
		if err := remote.CheckColumn(resource, f.Column); err != nil {
			return err
		}
		if i == 0 {
			b.sb.WriteString(" WHERE ")
		} else {
			b.sb.WriteString(" AND ")
		}
		col := quoteIdent(f.Column)
		switch f.Op {
		case remote.OpEq:
			b.sb.WriteString(col + " = " + b.arg(f.Value))
		case remote.OpNeq:
			b.sb.WriteString(col + " <> " + b.arg(f.Value))
		case remote.OpGt:
			b.sb.WriteString(col + " > " + b.arg(f.Value))
		case remote.OpGte:
			b.sb.WriteString(col + " >= " + b.arg(f.Value))
		case remote.OpLt:
			b.sb.WriteString(col + " < " + b.arg(f.Value))
		case remote.OpLte:
			b.sb.WriteString(col + " <= " + b.arg(f.Value))
		case remote.OpIsNull:
			b.sb.WriteString(col + " IS NULL")
		case remote.OpNotNull:
			b.sb.WriteString(col + " IS NOT NULL")
		case remote.OpIn:
			b.sb.WriteString(col + " = ANY(" + b.arg(f.Value) + ")")
		case remote.OpILike:
			b.sb.WriteString(col + " ILIKE " + b.arg(f.Value))
		default:
			return fmt.Errorf("%w: %q", common.ErrUnsupportedOp, f.Op)
		}
	}
	return nil
}

// buildSelect renders q as a parameterized SELECT.
func buildSelect(q remote.ListQuery) (string, []any, error) {
	if err := remote.CheckResource(q.Resource); err != nil {
		return "", nil, err
	}
	b := &builder{}
	b.sb.WriteString("SELECT ")
	if len(q.Columns) == 0 {
		b.sb.WriteString("*")
	} else {
		for i, c := range q.Columns {
			if err := remote.CheckColumn(q.Resource, c); err != nil {
				return "", nil, err
			}
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.sb.WriteString(quoteIdent(c))
		}
	}
	b.sb.WriteString(" FROM " + quoteIdent(q.Resource))
	if err := b.where(q.Resource, q.Filters); err != nil {
		return "", nil, err
	}
	for i, o := range q.Ordering {
		if err := remote.CheckColumn(q.Resource, o.Column); err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.sb.WriteString(" ORDER BY ")
		} else {
			b.sb.WriteString(", ")
		}
		dir := "DESC"
		if o.Ascending {
			dir = "ASC"
		}
		b.sb.WriteString(quoteIdent(o.Column) + " " + dir)
	}
	if n := q.RowLimit(); n > 0 {
		b.sb.WriteString(" LIMIT " + strconv.Itoa(n))
	}
	if off := q.Offset(); off > 0 {
		b.sb.WriteString(" OFFSET " + strconv.Itoa(off))
	}
	return b.sb.String(), b.args, nil
}

// buildCount renders the COUNT(*) of q's filters.
func buildCount(q remote.ListQuery) (string, []any, error) {
	if err := remote.CheckResource(q.Resource); err != nil {
		return "", nil, err
	}
	b := &builder{}
	b.sb.WriteString("SELECT COUNT(*) FROM " + quoteIdent(q.Resource))
	if err := b.where(q.Resource, q.Filters); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// buildUpdate renders an UPDATE with columns in sorted order.
func buildUpdate(resource string, values map[string]any, filters []remote.Filter) (string, []any, error) {
	if err := remote.CheckResource(resource); err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: no values to update", common.ErrValidation)
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%w: update without filters", common.ErrValidation)
	}
	cols := make([]string, 0, len(values))
	for c := range values {
		if err := remote.CheckColumn(resource, c); err != nil {
			return "", nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	b := &builder{}
	b.sb.WriteString("UPDATE " + quoteIdent(resource) + " SET ")
	for i, c := range cols {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(quoteIdent(c) + " = " + b.arg(values[c]))
	}
	if err := b.where(resource, filters); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// buildCall renders SELECT * FROM procedure($1, ...) with args in the
// declared parameter order.
func buildCall(procedure string, args map[string]any) (string, []any, error) {
	params, ok := remote.Procedures[procedure]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", common.ErrUnknownProcedure, procedure)
	}
	for name := range args {
		if !slices.Contains(params, name) {
			return "", nil, fmt.Errorf("%w: unexpected argument %q for %s", common.ErrValidation, name, procedure)
		}
	}
	b := &builder{}
	b.sb.WriteString("SELECT * FROM " + quoteIdent(procedure) + "(")
	for i, p := range params {
		v, ok := args[p]
		if !ok {
			return "", nil, fmt.Errorf("%w: missing argument %q for %s", common.ErrValidation, p, procedure)
		}
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.arg(v))
	}
	b.sb.WriteString(")")
	return b.sb.String(), b.args, nil
}
