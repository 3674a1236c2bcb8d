package remote

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
)

// Record is one row returned by the remote store: column name to a primitive
// (string, int64, float64, bool, time.Time) or nil.
type Record map[string]any

// Null reports whether key is missing or holds nil.
func (r Record) Null(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

func malformed(key string, v any, want string) error {
	return fmt.Errorf("%w: field %q is %T, want %s", common.ErrMalformedRecord, key, v, want)
}

func missing(key string) error {
	return fmt.Errorf("%w: field %q is null", common.ErrMalformedRecord, key)
}

// String returns a required text field.
func (r Record) String(key string) (string, error) {
	if r.Null(key) {
		return "", missing(key)
	}
	switch v := r[key].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", malformed(key, v, "string")
	}
}

// NullString returns nil for a null field.
func (r Record) NullString(key string) (*string, error) {
	if r.Null(key) {
		return nil, nil
	}
	s, err := r.String(key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// StringOr returns the text field or def when it is null.
func (r Record) StringOr(key, def string) (string, error) {
	s, err := r.NullString(key)
	if err != nil || s == nil {
		return def, err
	}
	return *s, nil
}

func (r Record) Int64(key string) (int64, error) {
	if r.Null(key) {
		return 0, missing(key)
	}
	switch v := r[key].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, malformed(key, v, "integer")
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, malformed(key, v, "integer")
		}
		return n, nil
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, malformed(key, v, "integer")
		}
		return n, nil
	default:
		return 0, malformed(key, v, "integer")
	}
}

// Int64Or returns the integer field or def when it is null.
func (r Record) Int64Or(key string, def int64) (int64, error) {
	if r.Null(key) {
		return def, nil
	}
	return r.Int64(key)
}

func (r Record) Float64(key string) (float64, error) {
	if r.Null(key) {
		return 0, missing(key)
	}
	switch v := r[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, malformed(key, v, "number")
		}
		return f, nil
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, malformed(key, v, "number")
		}
		return f, nil
	default:
		return 0, malformed(key, v, "number")
	}
}

func (r Record) Bool(key string) (bool, error) {
	if r.Null(key) {
		return false, missing(key)
	}
	switch v := r[key].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, malformed(key, v, "bool")
		}
		return b, nil
	default:
		return false, malformed(key, v, "bool")
	}
}

// BoolOr returns the boolean field or def when it is null.
func (r Record) BoolOr(key string, def bool) (bool, error) {
	if r.Null(key) {
		return def, nil
	}
	return r.Bool(key)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (r Record) Time(key string) (time.Time, error) {
	if r.Null(key) {
		return time.Time{}, missing(key)
	}
	switch v := r[key].(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, malformed(key, v, "timestamp")
	default:
		return time.Time{}, malformed(key, v, "timestamp")
	}
}

// NullTime returns nil for a null field.
func (r Record) NullTime(key string) (*time.Time, error) {
	if r.Null(key) {
		return nil, nil
	}
	t, err := r.Time(key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
