// =============================================================================
// XmlCreator40 - Field Transformation Engine
// =============================================================================
//
// This module turns typed spreadsheet cells into the exact text written to
// the report. The rule for each column comes from the schema field table:
//
//   KIND     INPUT               OUTPUT
//   Text     "Av. Reforma"       "Av. Reforma"
//   Code     1003.0 / "1003.0"   "1003"
//   Code     "TCV"               "TCV"           (non-numeric text untouched)
//   Code+Pad 5000 (PadTo 5)      "05000"
//   Amount   150                 "150.00"
//   Amount   "abc" / empty       "0.00"          (defaulted, linted later)
//   Flag     "si"                "SI"
//
// Empty cells render "" for every kind except Amount.
//
// =============================================================================

package converter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/schema"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

// DefaultAmount is written when an amount cannot be parsed.
const DefaultAmount = "0.00"

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer reads and coerces the fields of one sheet.
type Transformer struct {
	sheet schema.SheetSchema
}

// NewTransformer creates a Transformer for the given sheet schema.
func NewTransformer(sheet schema.SheetSchema) *Transformer {
	return &Transformer{sheet: sheet}
}

// Transform returns the coerced value of column in row.
//
// PARAMETERS:
//   - row: The data row.
//   - column: A column declared in the sheet schema.
//
// RETURNS:
//   - The coerced value.
//   - defaulted, true when an amount fell back to DefaultAmount.
//   - A *reporterror.RowAccessError when a required column is absent from the
//     sheet, or a plain error for a column the schema does not declare.
func (t *Transformer) Transform(row types.Row, column string) (value string, defaulted bool, err error) {
	mapping, ok := t.sheet.Field(column)
	if !ok {
		return "", false, fmt.Errorf("column %q is not declared for sheet %s", column, t.sheet.Name)
	}

	cell, present := row.Get(column)
	if !present {
		if mapping.Optional {
			return "", false, nil
		}
		return "", false, &reporterror.RowAccessError{
			Sheet:  t.sheet.Name,
			Row:    row.Number,
			Field:  column,
			Reason: "missing column",
		}
	}

	value, defaulted = ApplyTransformation(cell, mapping)
	return value, defaulted, nil
}

// ApplyTransformation applies the rule of mapping to a single cell.
func ApplyTransformation(cell types.Cell, mapping schema.FieldMapping) (string, bool) {
	switch mapping.Kind {

	case schema.Code:
		value := NormalizeCode(cell)
		if mapping.PadTo > 0 && value != "" {
			value = PadLeft(value, mapping.PadTo, '0')
		}
		return value, false

	case schema.Amount:
		return FormatAmount(cell)

	case schema.Flag:
		return strings.ToUpper(cell.String()), false

	default:
		return cell.String(), false
	}
}

// =============================================================================
// RULES
// =============================================================================

// NormalizeCode renders a coded field. A numeric value with a fractional
// part keeps only its integer part; anything else is rendered unchanged.
// Exponent forms are expanded before truncating.
//
// EXAMPLES:
//   1003.0    -> "1003"
//   "1003.0"  -> "1003"
//   "12.75"   -> "12"
//   "1.5e3"   -> "1500"
//   "TCV"     -> "TCV"
//   "A.1"     -> "A.1"
//   "0x1.8p1" -> "0x1.8p1"
func NormalizeCode(cell types.Cell) string {
	value := cell.String()
	if cell.Kind != types.CellNumber && cell.Kind != types.CellText {
		return value
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.Trim(trimmed, "0123456789+-.eE") != "" {
		return value
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return value
	}

	if strings.ContainsAny(trimmed, "eE") {
		trimmed = strconv.FormatFloat(f, 'f', -1, 64)
	} else if !strings.Contains(trimmed, ".") {
		return value
	}

	dot := strings.IndexByte(trimmed, '.')
	if dot < 0 {
		return trimmed
	}
	if dot == 0 || trimmed[:dot] == "-" || trimmed[:dot] == "+" {
		return "0"
	}
	return trimmed[:dot]
}

// FormatAmount renders a currency amount with exactly two decimals.
//
// RETURNS:
//   - The formatted amount, or DefaultAmount when the cell is empty or not
//     a number.
//   - true when DefaultAmount was used.
func FormatAmount(cell types.Cell) (string, bool) {
	switch cell.Kind {
	case types.CellNumber:
		return decimal.NewFromFloat(cell.Number).StringFixed(2), false
	case types.CellText:
		d, err := decimal.NewFromString(strings.TrimSpace(cell.Text))
		if err != nil {
			return DefaultAmount, true
		}
		return d.StringFixed(2), false
	default:
		return DefaultAmount, true
	}
}

// PadLeft pads s on the left with padChar up to length characters.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}
