package excel

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"csvdash/domain/core"
	"csvdash/domain/table"
)

// DataReader handles reading Excel and CSV files into raw tables. Cells are
// trimmed and empty cells become missing values. CSV cells stay text; XLSX
// cells keep the native type the workbook stores.
type DataReader struct {
	config ReaderConfig
	logger *zap.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *zap.Logger) *DataReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Comma == 0 {
		config.Comma = ','
	}
	return &DataReader{config: config, logger: logger.Named("reader")}
}

// ReadFile reads a CSV or XLSX file from disk.
func (r *DataReader) ReadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(filepath.Base(path), f)
}

// Read parses an upload. name is only used to pick the format.
func (r *DataReader) Read(name string, src io.Reader) (*table.Table, error) {
	br := bufio.NewReader(src)
	head, _ := br.Peek(4)
	fileType := DetectFileType(name, head)

	start := time.Now()
	var (
		rows [][]table.Value
		err  error
	)
	switch fileType {
	case FileTypeXLSX:
		rows, err = r.readExcelRows(br)
	default:
		rows, err = r.readCSVRows(br)
	}
	if err != nil {
		return nil, err
	}

	t, err := r.processRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("file read",
		zap.String("name", name),
		zap.String("type", string(fileType)),
		zap.Int("columns", t.NumColumns()),
		zap.Int("rows", t.NumRows()),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// readExcelRows reads the configured sheet, or the first one. Cells are read
// unformatted so numbers, booleans and date serials keep their native type.
func (r *DataReader) readExcelRows(src io.Reader) ([][]table.Value, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, core.ErrNoHeader
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	cells := newSheetCells(f, sheet)
	rows := make([][]table.Value, len(raw))
	for i, record := range raw {
		row := make([]table.Value, len(record))
		for j, cell := range record {
			row[j] = cells.value(i, j, cell)
		}
		rows[i] = row
	}
	return rows, nil
}

func (r *DataReader) readCSVRows(src io.Reader) ([][]table.Value, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]table.Value
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(rows) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		row := make([]table.Value, len(record))
		for j, cell := range record {
			row[j] = table.NewStringValue(strings.TrimSpace(cell))
		}
		rows = append(rows, row)
		if r.config.MaxRows > 0 && len(rows) > r.config.MaxRows {
			break
		}
	}
	return rows, nil
}

// processRows turns the first row into headers and the rest into data rows.
func (r *DataReader) processRows(rows [][]table.Value) (*table.Table, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, core.ErrNoHeader
	}

	rawHeaders := make([]string, len(rows[0]))
	for i, v := range rows[0] {
		rawHeaders[i] = v.String()
	}
	headers := NormalizeHeaders(rawHeaders)

	data := make([][]table.Value, 0, len(rows)-1)
	truncated := 0
	for _, row := range rows[1:] {
		if r.config.SkipBlankRow && isBlank(row) {
			continue
		}
		if len(row) > len(headers) {
			truncated++
			row = row[:len(headers)]
		}
		data = append(data, row)
		if r.config.MaxRows > 0 && len(data) == r.config.MaxRows {
			break
		}
	}
	if truncated > 0 {
		r.logger.Warn("rows wider than header were truncated", zap.Int("rows", truncated))
	}

	return table.New(headers, data)
}

// NormalizeHeaders trims header cells, names blank ones Column_N (1-based)
// and suffixes repeats with .1, .2 so every column name is unique.
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]struct{}, len(raw))
	next := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Column_" + strconv.Itoa(i+1)
		}
		if _, dup := used[name]; dup {
			base := name
			for k := next[base] + 1; ; k++ {
				candidate := base + "." + strconv.Itoa(k)
				if _, taken := used[candidate]; !taken {
					next[base] = k
					name = candidate
					break
				}
			}
		}
		used[name] = struct{}{}
		headers[i] = name
	}
	return headers
}

func isBlank(row []table.Value) bool {
	for _, v := range row {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}
