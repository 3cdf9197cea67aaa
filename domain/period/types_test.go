package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":         ModeAll,
		"ALL":      ModeAll,
		"1m":       ModeOneMonth,
		"1 Month":  ModeOneMonth,
		"3M":       ModeThreeMonths,
		"6 months": ModeSixMonths,
		"1Y":       ModeOneYear,
		"custom":   ModeCustom,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("2W")
	assert.Error(t, err)
}

func TestModeMonths(t *testing.T) {
	m, ok := ModeOneYear.Months()
	assert.True(t, ok)
	assert.Equal(t, 12, m)

	_, ok = ModeAll.Months()
	assert.False(t, ok)
	_, ok = ModeCustom.Months()
	assert.False(t, ok)
}

func TestWindowContainsIsInclusive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: end}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(end))
	assert.False(t, w.Contains(end.Add(time.Second)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
}

func TestParseBound(t *testing.T) {
	b, err := ParseBound("", false)
	require.NoError(t, err)
	assert.Nil(t, b)

	start, err := ParseBound("2024-02-10", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), *start)

	end, err := ParseBound("2024-02-10", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 10, 23, 59, 59, 999999999, time.UTC), *end)

	ts, err := ParseBound("2024-02-10T12:30:00Z", true)
	require.NoError(t, err)
	assert.Equal(t, 12, ts.Hour())

	_, err = ParseBound("10 Feb", false)
	assert.Error(t, err)
}
