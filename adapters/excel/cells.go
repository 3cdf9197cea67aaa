package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"csvdash/domain/table"
)

// Built-in number formats that render a serial as a date or time.
var builtinDateFormats = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	45: {}, 46: {}, 47: {},
}

// sheetCells types raw cell text using the worksheet's cell types and styles.
type sheetCells struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newSheetCells(f *excelize.File, sheet string) *sheetCells {
	sc := &sheetCells{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		sc.date1904 = *props.Date1904
	}
	return sc
}

// value converts the unformatted text of the cell at (row, col), both 0-based.
func (sc *sheetCells) value(row, col int, raw string) table.Value {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(raw, 64)
	if raw == "" || err != nil {
		return table.NewStringValue(raw)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return table.NewStringValue(raw)
	}
	typ, err := sc.f.GetCellType(sc.sheet, cell)
	if err != nil {
		return table.NewStringValue(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return table.NewBooleanValue(n != 0)
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if sc.isDateCell(cell) {
			if t, err := excelize.ExcelDateToTime(n, sc.date1904); err == nil {
				return table.NewTimestampValue(t)
			}
		}
		return table.NewNumericValue(n)
	}
	// text that happens to look numeric stays text
	return table.NewStringValue(raw)
}

func (sc *sheetCells) isDateCell(cell string) bool {
	id, err := sc.f.GetCellStyle(sc.sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if isDate, ok := sc.dateStyles[id]; ok {
		return isDate
	}
	isDate := false
	if style, err := sc.f.GetStyle(id); err == nil {
		if _, ok := builtinDateFormats[style.NumFmt]; ok {
			isDate = true
		} else if style.CustomNumFmt != nil {
			isDate = IsDateFormat(*style.CustomNumFmt)
		}
	}
	sc.dateStyles[id] = isDate
	return isDate
}

// IsDateFormat reports whether a custom number format code renders dates.
// Quoted literals, escaped characters and bracketed sections such as colors
// and locales are ignored.
func IsDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\':
			escaped = true
		default:
			b.WriteRune(r)
		}
	}
	plain := strings.ToLower(b.String())
	if plain == "general" {
		return false
	}
	return strings.ContainsAny(plain, "ydh")
}
