package excel

// ReaderConfig holds configuration for the CSV/XLSX reader
type ReaderConfig struct {
	Comma        rune   `json:"comma"`          // CSV field delimiter
	Sheet        string `json:"sheet"`          // XLSX sheet; empty selects the first sheet
	MaxRows      int    `json:"max_rows"`       // 0 reads every row
	SkipBlankRow bool   `json:"skip_blank_row"` // drop rows whose cells are all empty
}

// DefaultReaderConfig returns sensible defaults for tabular uploads
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Comma:        ',',
		SkipBlankRow: true,
	}
}
