// =============================================================================
// XmlCreator40 - Validation Engine
// =============================================================================
//
// This module validates a submission at two levels:
//
//   1. Structural (blocking): the input path names a readable file and the
//      workbook contains every required sheet. Failures here abort the
//      conversion before any row is read.
//
//   2. Field lint (non-blocking): the coerced report records are checked with
//      go-playground/validator struct tags (RFC and CURP lengths, e-mail
//      syntax, 5-digit postal code, 8-digit dates). Lint findings are
//      warnings: they are logged and counted, never block the output.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

// =============================================================================
// STRUCTURAL VALIDATION
// =============================================================================

// ValidateFile checks that path names an existing regular file.
//
// RETURNS:
//   - nil if the file can be opened.
//   - a *reporterror.InputError otherwise.
func ValidateFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return &reporterror.InputError{Path: path, Reason: "no input file given"}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &reporterror.InputError{Path: path, Reason: "does not exist", Err: err}
		}
		return &reporterror.InputError{Path: path, Reason: "cannot be accessed", Err: err}
	}
	if !info.Mode().IsRegular() {
		return &reporterror.InputError{Path: path, Reason: "is not a regular file"}
	}
	return nil
}

// RequireSheets checks that every required sheet is in present. Names are
// matched exactly.
//
// RETURNS:
//   - nil if all required sheets exist.
//   - a *reporterror.MissingSheetsError listing every missing sheet in
//     required-sheet order.
func RequireSheets(present []string) error {
	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}

	var missing []string
	for _, required := range types.RequiredSheets() {
		if !have[required] {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return &reporterror.MissingSheetsError{Sheets: missing}
	}
	return nil
}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels of a lint finding.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ValidationError represents a single lint finding.
type ValidationError struct {
	// Severity is SeverityWarning for every lint finding.
	Severity string

	// Sheet is the sheet the value came from.
	Sheet string

	// Field is the source column name.
	Field string

	// Value is the coerced value that failed the rule.
	Value string

	// Rule is the validator tag that failed (e.g. "len", "email").
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the spreadsheet row, zero for single-row sheets.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := e.Sheet
	if e.RowNumber > 0 {
		location = fmt.Sprintf("%s row %d", e.Sheet, e.RowNumber)
	}
	return fmt.Sprintf("[%s] %s, field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity), location, e.Field, e.Message, e.Value)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator lints report records.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator whose field names are the source column
// names (the col struct tag).
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if col := field.Tag.Get("col"); col != "" {
			return col
		}
		return field.Name
	})
	return &Validator{validate: v}
}

// Lint checks the header, the legal entity and every operation and returns
// all findings. It never fails the conversion.
func (v *Validator) Lint(header *types.Header, entity *types.LegalEntity, operations []types.Operation) []*ValidationError {
	var findings []*ValidationError

	findings = append(findings, v.lintStruct(types.SheetHeader, 0, header)...)
	findings = append(findings, v.lintStruct(types.SheetEntity, 0, entity)...)

	for i := range operations {
		op := &operations[i]
		findings = append(findings, v.lintStruct(types.SheetOperations, op.RowNumber, op)...)

		if op.AmountDefaulted {
			findings = append(findings, &ValidationError{
				Severity:  SeverityWarning,
				Sheet:     types.SheetOperations,
				Field:     "monto_operacion",
				Value:     op.Amount,
				Rule:      "decimal",
				Message:   "amount is not a number, reported as 0.00",
				RowNumber: op.RowNumber,
			})
		}
	}

	return findings
}

func (v *Validator) lintStruct(sheet string, row int, record interface{}) []*ValidationError {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*ValidationError{{
			Severity:  SeverityWarning,
			Sheet:     sheet,
			Rule:      "struct",
			Message:   err.Error(),
			RowNumber: row,
		}}
	}

	findings := make([]*ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		findings = append(findings, &ValidationError{
			Severity:  SeverityWarning,
			Sheet:     sheet,
			Field:     fe.Field(),
			Value:     fmt.Sprint(fe.Value()),
			Rule:      fe.Tag(),
			Message:   describe(fe),
			RowNumber: row,
		})
	}
	return findings
}

// describe turns a validator field error into a readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value is empty"
	case "numeric":
		return "value must contain digits only"
	case "len":
		return fmt.Sprintf("value must be exactly %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("value must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("value must be at most %s characters", fe.Param())
	case "email":
		return "value is not a valid e-mail address"
	default:
		return fmt.Sprintf("failed rule '%s'", fe.Tag())
	}
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats findings as one line each.
func FormatErrors(findings []*ValidationError) string {
	if len(findings) == 0 {
		return "No validation findings."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d validation finding(s):\n", len(findings))
	for _, f := range findings {
		b.WriteString("  ")
		b.WriteString(f.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// WriteErrorLog writes findings to filePath.
func WriteErrorLog(findings []*ValidationError, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatErrors(findings)), 0o644); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return nil
}
