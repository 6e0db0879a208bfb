package types

import (
	"strconv"
	"time"
)

// =============================================================================
// CELL
// =============================================================================

// CellKind is the native type of a spreadsheet cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is a single typed spreadsheet value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// TextCell returns a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// DateCell returns a date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way it appears in the report before any field
// rule is applied:
//   - numbers use the shortest exact form, so 1003.0 renders "1003"
//   - dates render as YYYYMMDD
//   - empty cells render ""
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("20060102")
	default:
		return ""
	}
}

// =============================================================================
// ROW / SHEET
// =============================================================================

// Row is one data row of a sheet, addressed by column name.
type Row struct {
	// Number is the 1-based spreadsheet row number, used in error messages.
	Number int

	cells map[string]Cell
}

// NewRow creates a row from a column -> cell map.
func NewRow(number int, cells map[string]Cell) Row {
	if cells == nil {
		cells = map[string]Cell{}
	}
	return Row{Number: number, cells: cells}
}

// Get returns the cell for column. ok is false when the column does not exist
// in the sheet, which is different from an existing but empty cell.
func (r Row) Get(column string) (cell Cell, ok bool) {
	cell, ok = r.cells[column]
	return cell, ok
}

// Sheet is the extracted content of one worksheet.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (s *Sheet) Len() int {
	return len(s.Rows)
}
