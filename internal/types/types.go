// =============================================================================
// XmlCreator40 - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser  (produces Sheet/Row/Cell)
//   - converter   (maps rows into report records)
//   - validation  (lints report records)
//   - report      (reads generated files back)
//
// Two families live here:
//   - workbook.go : the row-oriented view of an extracted sheet
//   - report.go   : the coerced records that become the XML report
//
// =============================================================================

package types

// Required sheet names. A workbook lacking any of them cannot be converted.
const (
	SheetHeader     = "encabezado"
	SheetEntity     = "persona_moral"
	SheetOperations = "operaciones"
)

// RequiredSheets returns the required sheet names in declaration order.
func RequiredSheets() []string {
	return []string{SheetHeader, SheetEntity, SheetOperations}
}
