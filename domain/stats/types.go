package stats

// Summary holds the descriptive aggregates of one numeric column over the
// current row order. Pointer fields are nil when the aggregate is undefined.
type Summary struct {
	Column        string   `json:"column"`
	Rows          int      `json:"rows"`
	Count         int      `json:"count"`
	First         *float64 `json:"first"`
	Latest        *float64 `json:"latest"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	Mean          *float64 `json:"mean"`
	Median        *float64 `json:"median"`
	StdDev        *float64 `json:"std_dev"`
	Sum           *float64 `json:"sum"`
	Q1            *float64 `json:"q1"`
	Q3            *float64 `json:"q3"`
	PercentChange *float64 `json:"percent_change"`
	NoData        bool     `json:"no_data"`
}

// ValueCount represents a value and its frequency
type ValueCount struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// Frequency is the category frequency table of one column, sorted by
// descending count.
type Frequency struct {
	Column string       `json:"column"`
	Total  int          `json:"total"`
	Values []ValueCount `json:"values"`
}
