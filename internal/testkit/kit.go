// Package testkit generates deterministic sample datasets for tests, demos
// and the CLI sample command.
package testkit

import (
	"bytes"
	"fmt"
	"io"
)

// Sample kinds accepted by WriteSample.
const (
	KindOHLC  = "ohlc"
	KindSales = "sales"
)

// WriteSample writes rows records of the given kind as CSV to w. rows <= 0
// keeps the generator default.
func WriteSample(w io.Writer, kind string, rows int, seed int64) error {
	switch kind {
	case KindOHLC:
		cfg := DefaultPriceConfig()
		if rows > 0 {
			cfg.Days = rows
		}
		cfg.Seed = seed
		return NewPriceDataGenerator(cfg).WriteCSV(w)
	case KindSales:
		cfg := DefaultShoppingConfig()
		if rows > 0 {
			cfg.Rows = rows
		}
		cfg.Seed = seed
		return NewShoppingDataGenerator(cfg).WriteCSV(w)
	}
	return fmt.Errorf("unknown sample kind %q (want %s or %s)", kind, KindOHLC, KindSales)
}

// PricesCSV returns a daily OHLC file of the given length.
func PricesCSV(days int) []byte {
	var buf bytes.Buffer
	_ = WriteSample(&buf, KindOHLC, days, DefaultPriceConfig().Seed)
	return buf.Bytes()
}

// SalesCSV returns an order file of the given length.
func SalesCSV(rows int) []byte {
	var buf bytes.Buffer
	_ = WriteSample(&buf, KindSales, rows, DefaultShoppingConfig().Seed)
	return buf.Bytes()
}
