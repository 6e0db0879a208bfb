// =============================================================================
// XmlCreator40 - XLSX Workbook Reader
// =============================================================================
//
// This module opens the submission workbook and extracts each sheet into a
// row-oriented structure (types.Sheet) addressed by column name.
//
// SHEET LAYOUT (Expected):
//   Row 1 holds the column names, every following row holds data.
//
//   | mes_reportado | clave_sujeto_obligado | clave_actividad | ... |
//   |---------------|-----------------------|-----------------|-----|
//   | 3             | ABC123456789          | TCV             | ... |
//
// CELL TYPING:
//   Cells keep their native type so that coded fields can be normalized
//   later:
//   - string cells       -> types.CellText
//   - numeric cells      -> types.CellNumber (1003 may arrive as 1003.0)
//   - numeric cells with a date number format -> types.CellDate
//   - boolean cells      -> types.CellText ("TRUE"/"FALSE")
//
// ROW HANDLING:
//   - Fully blank rows are skipped.
//   - Cells beyond the header width are ignored.
//   - Short rows yield empty cells for the missing columns.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

// ErrSheetNotFound is returned by Sheet for a name not present in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is a read-only handle over an opened .xlsx file.
// It is owned by a single conversion and must be closed by it.
type Workbook struct {
	file     *excelize.File
	date1904 bool

	// dateStyles caches the date/not-date decision per style index.
	dateStyles map[int]bool
}

// Open opens the workbook at path.
//
// PARAMETERS:
//   - path: The .xlsx file to open.
//
// RETURNS:
//   - The opened Workbook.
//   - An error if the file cannot be opened as a workbook.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	wb := &Workbook{
		file:       f,
		dateStyles: make(map[int]bool),
	}

	// The 1904 date system only matters for date cells; a workbook without
	// readable properties uses the default 1900 system.
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}

	return wb, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with the exact name exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.SheetNames() {
		if s == name {
			return true
		}
	}
	return false
}

// =============================================================================
// SHEET EXTRACTION
// =============================================================================

// Sheet extracts the named sheet.
//
// PARAMETERS:
//   - name: The sheet name, matched exactly.
//
// RETURNS:
//   - The extracted sheet. A sheet with only a header row has zero Rows.
//   - ErrSheetNotFound (wrapped) if the sheet does not exist, or a read error.
func (w *Workbook) Sheet(name string) (*types.Sheet, error) {
	if !w.HasSheet(name) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %s: %w", name, err)
	}

	sheet := &types.Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}

	// Column index -> column name. Blank and repeated headers are dropped;
	// the first occurrence of a name wins.
	headerAt := make(map[int]string)
	seen := make(map[string]bool)
	for i, raw := range rows[0] {
		header := strings.TrimSpace(raw)
		if header == "" || seen[header] {
			continue
		}
		seen[header] = true
		headerAt[i] = header
		sheet.Columns = append(sheet.Columns, header)
	}

	for i := 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}

		rowNumber := i + 1
		cells := make(map[string]types.Cell, len(sheet.Columns))
		for _, column := range sheet.Columns {
			cells[column] = types.Cell{}
		}

		for col, raw := range rows[i] {
			column, ok := headerAt[col]
			if !ok {
				continue
			}
			cell, err := w.typedCell(name, col+1, rowNumber, raw)
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d column %s: %w", name, rowNumber, column, err)
			}
			cells[column] = cell
		}

		sheet.Rows = append(sheet.Rows, types.NewRow(rowNumber, cells))
	}

	return sheet, nil
}

// typedCell converts a raw cell value into a typed cell.
func (w *Workbook) typedCell(sheet string, col, row int, raw string) (types.Cell, error) {
	if raw == "" {
		return types.Cell{}, nil
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return types.Cell{}, err
	}

	cellType, err := w.file.GetCellType(sheet, ref)
	if err != nil {
		return types.Cell{}, err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return types.TextCell(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" {
			return types.TextCell("TRUE"), nil
		}
		return types.TextCell("FALSE"), nil
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.TextCell(raw), nil
	}

	isDate, err := w.isDateCell(sheet, ref)
	if err != nil {
		return types.Cell{}, err
	}
	if isDate {
		t, err := excelize.ExcelDateToTime(number, w.date1904)
		if err == nil {
			return types.DateCell(t.Truncate(24 * time.Hour)), nil
		}
	}

	return types.NumberCell(number), nil
}

// isDateCell reports whether the cell's number format renders a date.
func (w *Workbook) isDateCell(sheet, ref string) (bool, error) {
	styleID, err := w.file.GetCellStyle(sheet, ref)
	if err != nil {
		return false, err
	}
	if styleID == 0 {
		return false, nil
	}
	if cached, ok := w.dateStyles[styleID]; ok {
		return cached, nil
	}

	style, err := w.file.GetStyle(styleID)
	if err != nil {
		return false, err
	}

	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isDateNumFmt reports whether a built-in number format ID carries a date.
// Time-only formats (18-21 and 45-47) are not dates; their cells stay numeric.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 17:
		return true
	case id == 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date tokens.
// Quoted literals and bracketed sections (colors, locales) are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	return strings.ContainsAny(cleaned, "yd")
}
