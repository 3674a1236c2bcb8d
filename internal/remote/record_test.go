package remote

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_String(t *testing.T) {
	r := Record{"a": "x", "b": []byte("y"), "n": nil, "i": int64(3)}

	s, err := r.String("a")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	s, err = r.String("b")
	require.NoError(t, err)
	assert.Equal(t, "y", s)

	_, err = r.String("n")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	_, err = r.String("i")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	ns, err := r.NullString("n")
	require.NoError(t, err)
	assert.Nil(t, ns)

	def, err := r.StringOr("missing", "Never")
	require.NoError(t, err)
	assert.Equal(t, "Never", def)
}

func TestRecord_Numbers(t *testing.T) {
	r := Record{"i": int32(7), "f": float64(12), "frac": 1.5, "s": "42", "bad": "x", "amount": "19.99"}

	n, err := r.Int64("i")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = r.Int64("f")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = r.Int64("frac")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	n, err = r.Int64("s")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = r.Int64("bad")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	n, err = r.Int64Or("missing", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)

	f, err := r.Float64("amount")
	require.NoError(t, err)
	assert.InDelta(t, 19.99, f, 1e-9)
}

func TestRecord_Bool(t *testing.T) {
	r := Record{"t": true, "s": "false", "x": 1}

	b, err := r.Bool("t")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = r.Bool("s")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = r.Bool("x")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	b, err = r.BoolOr("missing", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestRecord_Time(t *testing.T) {
	want := time.Date(2025, 4, 5, 6, 7, 8, 0, time.UTC)
	r := Record{
		"native": want,
		"rfc":    "2025-04-05T06:07:08Z",
		"pg":     "2025-04-05 06:07:08+00",
		"day":    "2025-04-05",
		"bad":    "yesterday",
	}

	for _, key := range []string{"native", "rfc", "pg"} {
		got, err := r.Time(key)
		require.NoError(t, err, key)
		assert.True(t, want.Equal(got), key)
	}

	got, err := r.Time("day")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-05", got.Format("2006-01-02"))

	_, err = r.Time("bad")
	assert.ErrorIs(t, err, common.ErrMalformedRecord)

	nt, err := r.NullTime("missing")
	require.NoError(t, err)
	assert.Nil(t, nt)
}
