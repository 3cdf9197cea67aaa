package testkit

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

// PriceGeneratorConfig configures the daily OHLC generator
type PriceGeneratorConfig struct {
	Days       int       `json:"days"`
	StartDate  time.Time `json:"start_date"`
	StartPrice float64   `json:"start_price"`
	Volatility float64   `json:"volatility"` // daily relative standard deviation
	Seed       int64     `json:"seed"`
}

// DefaultPriceConfig returns a year of daily prices ending 2024-03-31.
func DefaultPriceConfig() PriceGeneratorConfig {
	return PriceGeneratorConfig{
		Days:       366,
		StartDate:  time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		StartPrice: 100,
		Volatility: 0.02,
		Seed:       7,
	}
}

// PriceHeader is the column layout of generated price files.
var PriceHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// PriceDataGenerator produces a random-walk OHLC series.
type PriceDataGenerator struct {
	config PriceGeneratorConfig
	rng    *rand.Rand
}

// NewPriceDataGenerator creates a new price generator
func NewPriceDataGenerator(config PriceGeneratorConfig) *PriceDataGenerator {
	return &PriceDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Candle is one generated trading day. Low <= Open, Close <= High always holds.
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int
}

// GenerateCandles returns Days consecutive daily candles.
func (g *PriceDataGenerator) GenerateCandles() []Candle {
	candles := make([]Candle, 0, g.config.Days)
	price := g.config.StartPrice
	for i := 0; i < g.config.Days; i++ {
		open := price
		close := math.Max(0.01, open*(1+g.rng.NormFloat64()*g.config.Volatility))
		high := math.Max(open, close) * (1 + math.Abs(g.rng.NormFloat64())*g.config.Volatility/2)
		low := math.Min(open, close) * (1 - math.Abs(g.rng.NormFloat64())*g.config.Volatility/2)
		candles = append(candles, Candle{
			Date:   g.config.StartDate.AddDate(0, 0, i),
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(close),
			Volume: 10000 + g.rng.Intn(90000),
		})
		price = close
	}
	return candles
}

// GenerateRows returns the candles as CSV records in PriceHeader order.
func (g *PriceDataGenerator) GenerateRows() [][]string {
	candles := g.GenerateCandles()
	rows := make([][]string, len(candles))
	for i, c := range candles {
		rows[i] = []string{
			c.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", c.Open),
			fmt.Sprintf("%.2f", c.High),
			fmt.Sprintf("%.2f", c.Low),
			fmt.Sprintf("%.2f", c.Close),
			fmt.Sprintf("%d", c.Volume),
		}
	}
	return rows
}

// WriteCSV writes the header and generated rows to w.
func (g *PriceDataGenerator) WriteCSV(w io.Writer) error {
	return writeCSV(w, PriceHeader, g.GenerateRows())
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
