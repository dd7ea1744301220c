package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depth(t *testing.T, v string, dir Direction) Index {
	t.Helper()
	i, err := ParseDepthIndex(v, "m", dir)
	require.NoError(t, err)
	return i
}

func TestIndexCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Index
		want int
	}{
		{"depth increasing before", depth(t, "100", Increasing), depth(t, "100.5", Increasing), -1},
		{"depth increasing equal", depth(t, "100.0", Increasing), depth(t, "100", Increasing), 0},
		{"depth decreasing reversed", depth(t, "100", Decreasing), depth(t, "100.5", Decreasing), 1},
		{"open end after depth", OpenEnd(IndexKindDepth, Increasing), depth(t, "99999", Increasing), 1},
		{"depth before open end", depth(t, "1", Decreasing), OpenEnd(IndexKindDepth, Decreasing), -1},
		{"open ends equal", OpenEnd(IndexKindDateTime, Increasing), OpenEnd(IndexKindDateTime, Increasing), 0},
		{
			"time increasing",
			NewDateTimeIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Increasing),
			NewDateTimeIndex(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC), Increasing),
			-1,
		},
		{
			"time zones normalised",
			NewDateTimeIndex(time.Date(2024, 1, 1, 2, 0, 0, 0, time.FixedZone("x", 2*3600)), Increasing),
			NewDateTimeIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Increasing),
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Compare(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexCompareMixedKinds(t *testing.T) {
	d := depth(t, "10", Increasing)
	dt := NewDateTimeIndex(time.Now(), Increasing)

	_, err := d.Compare(dt)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = d.Compare(depth(t, "10", Decreasing))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Index{}.Compare(d)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = d.IsAfterOrAtEnd(OpenEnd(IndexKindDateTime, Increasing))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestIndexNext(t *testing.T) {
	inc := depth(t, "100", Increasing)
	next := inc.Next()
	c, err := next.Compare(inc)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
	assert.Equal(t, "100.000001", next.TransportString())
	assert.True(t, decimal.RequireFromString("100").Equal(inc.Depth()), "Next must not mutate the receiver")

	dec := depth(t, "100", Decreasing)
	assert.Equal(t, "99.999999", dec.Next().TransportString())
	c, err = dec.Next().Compare(dec)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Add(time.Nanosecond), NewDateTimeIndex(ts, Increasing).Next().Time())
	assert.Equal(t, ts.Add(-time.Nanosecond), NewDateTimeIndex(ts, Decreasing).Next().Time())

	open := OpenEnd(IndexKindDepth, Increasing)
	assert.True(t, open.Next().IsOpen())
}

func TestIndexNextIsStrictlyAfterForAllPairs(t *testing.T) {
	values := []string{"0", "0.5", "1", "1.000001", "2500.25", "-3"}
	for _, dir := range []Direction{Increasing, Decreasing} {
		for _, v := range values {
			i := depth(t, v, dir)
			c, err := i.Next().Compare(i)
			require.NoError(t, err)
			assert.Equal(t, 1, c, "%s %s", v, dir)
		}
	}
}

func TestIndexIsAfterOrAtEnd(t *testing.T) {
	end := depth(t, "200", Increasing)

	done, err := depth(t, "200", Increasing).IsAfterOrAtEnd(end)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = depth(t, "199.9", Increasing).IsAfterOrAtEnd(end)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = depth(t, "1e9", Increasing).IsAfterOrAtEnd(OpenEnd(IndexKindDepth, Increasing))
	require.NoError(t, err)
	assert.False(t, done)
}

func TestParseIndex(t *testing.T) {
	i, err := ParseIndex(IndexKindDateTime, "2024-03-01T10:00:00.5+01:00", "", Increasing)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:00:00.5Z", i.TransportString())

	_, err = ParseIndex(IndexKindDepth, "abc", "m", Increasing)
	assert.Error(t, err)

	_, err = ParseIndex(IndexKind(9), "1", "m", Increasing)
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, "", OpenEnd(IndexKindDepth, Increasing).TransportString())
	assert.Equal(t, "12.5 m", depth(t, "12.5", Increasing).String())
}
