package testkit

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceGeneratorInvariants(t *testing.T) {
	cfg := DefaultPriceConfig()
	cfg.Days = 60
	candles := NewPriceDataGenerator(cfg).GenerateCandles()

	require.Len(t, candles, 60)
	for i, c := range candles {
		assert.LessOrEqual(t, c.Low, c.Open, "day %d", i)
		assert.LessOrEqual(t, c.Low, c.Close, "day %d", i)
		assert.GreaterOrEqual(t, c.High, c.Open, "day %d", i)
		assert.GreaterOrEqual(t, c.High, c.Close, "day %d", i)
		if i > 0 {
			assert.True(t, c.Date.After(candles[i-1].Date))
		}
	}
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	assert.Equal(t, PricesCSV(20), PricesCSV(20))
	assert.Equal(t, SalesCSV(20), SalesCSV(20))

	var a, b bytes.Buffer
	require.NoError(t, WriteSample(&a, KindSales, 20, 1))
	require.NoError(t, WriteSample(&b, KindSales, 20, 2))
	assert.NotEqual(t, a.String(), b.String())
}

func TestWriteSample(t *testing.T) {
	for kind, header := range map[string][]string{KindOHLC: PriceHeader, KindSales: ShoppingHeader} {
		t.Run(kind, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSample(&buf, kind, 15, 3))

			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 16)
			assert.Equal(t, header, records[0])
		})
	}

	assert.Error(t, WriteSample(&bytes.Buffer{}, "weather", 10, 1))
}

func TestShoppingDatesAscending(t *testing.T) {
	rows := NewShoppingDataGenerator(DefaultShoppingConfig()).GenerateRows()
	require.NotEmpty(t, rows)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i-1][0], rows[i][0])
	}
	assert.Equal(t, "2024-01-01", rows[0][0])
}

func TestShoppingMissingRate(t *testing.T) {
	cfg := DefaultShoppingConfig()
	cfg.MissingRate = 1
	for _, row := range NewShoppingDataGenerator(cfg).GenerateRows() {
		assert.Empty(t, row[4])
	}
}
