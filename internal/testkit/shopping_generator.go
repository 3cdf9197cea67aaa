package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

// ShoppingGeneratorConfig configures the order data generator
type ShoppingGeneratorConfig struct {
	Rows       int       `json:"rows"`
	Categories []string  `json:"categories"`
	Regions    []string  `json:"regions"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Seed       int64     `json:"seed"`
	// MissingRate blanks this share of Amount cells.
	MissingRate float64 `json:"missing_rate"`
}

// DefaultShoppingConfig returns sensible defaults for order data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		Rows:       200,
		Categories: []string{"Electronics", "Grocery", "Clothing", "Home", "Toys"},
		Regions:    []string{"North", "South", "East", "West"},
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Seed:       42,
	}
}

// ShoppingHeader is the column layout of generated order files.
var ShoppingHeader = []string{"Date", "Category", "Region", "Units", "Amount"}

// ShoppingDataGenerator generates order rows with a categorical mix, a
// date column and two numeric measures.
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new order data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns Rows records in ShoppingHeader order, ascending by date.
func (g *ShoppingDataGenerator) GenerateRows() [][]string {
	span := int(g.config.EndDate.Sub(g.config.StartDate).Hours()/24) + 1
	if span < 1 {
		span = 1
	}

	rows := make([][]string, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		offset := i * span / max(g.config.Rows, 1)
		date := g.config.StartDate.AddDate(0, 0, offset)
		category := g.pick(g.config.Categories)
		region := g.pick(g.config.Regions)
		units := 1 + g.rng.Intn(9)
		price := 5 + math.Abs(g.rng.NormFloat64())*40

		amount := fmt.Sprintf("%.2f", float64(units)*price)
		if g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate {
			amount = ""
		}
		rows = append(rows, []string{
			date.Format("2006-01-02"),
			category,
			region,
			fmt.Sprintf("%d", units),
			amount,
		})
	}
	return rows
}

// WriteCSV writes the header and generated rows to w.
func (g *ShoppingDataGenerator) WriteCSV(w io.Writer) error {
	return writeCSV(w, ShoppingHeader, g.GenerateRows())
}

func (g *ShoppingDataGenerator) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[g.rng.Intn(len(options))]
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
