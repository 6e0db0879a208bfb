// =============================================================================
// XmlCreator40 - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one submission
// workbook into one UIF "tcv" XML report.
//
// CONVERSION PIPELINE:
//   1. Validate that the input path is a readable file
//   2. Open the workbook and check the required sheets
//   3. Extract the encabezado, persona_moral and operaciones sheets
//   4. Map the header and legal entity (first data row of each)
//   5. Map every operation, in row order
//   6. Lint the mapped records (warnings only)
//   7. Assemble and render the XML document
//   8. Write the output file
//
// A conversion either returns the output path or an error; there is no
// partial output. Every step before 8 leaves the output directory untouched.
//
// CONCURRENCY:
//   A Converter holds no per-conversion state, so one instance may serve
//   concurrent conversions of different files.
//
// =============================================================================

package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
	"github.com/Abyblackmouth/XmlCreator40/internal/validation"
	"github.com/Abyblackmouth/XmlCreator40/internal/xlsxparser"
	"github.com/Abyblackmouth/XmlCreator40/internal/xmlwriter"
)

// DefaultProgressInterval is the number of operations between progress logs.
const DefaultProgressInterval = 50

// maxEntityNameLength bounds the entity part of the output file name.
const maxEntityNameLength = 30

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// InputFile is the workbook that was processed.
	InputFile string

	// OutputFile is the path of the generated XML file.
	// This is empty if the conversion failed.
	OutputFile string

	// Success indicates whether the conversion produced an output file.
	Success bool

	// Error contains the error if the conversion failed.
	Error error

	// Kind classifies Error; reporterror.KindNone on success.
	Kind reporterror.Kind

	// Warnings holds the lint findings of a successful conversion.
	Warnings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the conversion.
type ProcessingStats struct {
	// Operations is the number of datos_operacion elements written.
	Operations int

	// CustodyOperations is the number of operations carrying a custody window.
	CustodyOperations int

	// Warnings is the number of lint findings.
	Warnings int

	// ProcessingTime is the time taken by the conversion.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts submission workbooks into XML reports.
type Converter struct {
	logger           logging.Logger
	validator        *validation.Validator
	progressInterval int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgressInterval sets how many operations pass between progress logs.
func WithProgressInterval(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.progressInterval = n
		}
	}
}

// New creates a new Converter.
func New(opts ...Option) *Converter {
	c := &Converter{
		logger:           logging.NewLogrusAdapter("info", "text"),
		validator:        validation.NewValidator(),
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert converts inputPath into a report inside outputDir with a default
// Converter and returns the output path.
func Convert(inputPath, outputDir string) (string, error) {
	result := New().Convert(inputPath, outputDir)
	return result.OutputFile, result.Error
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert executes the conversion pipeline for one workbook.
//
// PARAMETERS:
//   - inputPath: The submission workbook.
//   - outputDir: Directory receiving the report; created if missing.
//
// RETURNS:
//   - A Result. On failure OutputFile is empty and no file was written.
func (c *Converter) Convert(inputPath, outputDir string) (result Result) {
	startTime := time.Now()
	result = Result{InputFile: inputPath}
	log := c.logger.WithField(logging.FieldInputFile, inputPath)

	defer func() {
		if r := recover(); r != nil {
			result.OutputFile = ""
			result.Success = false
			result.Warnings = nil
			result.Error = &reporterror.UnexpectedError{Op: "converting workbook", Err: fmt.Errorf("panic: %v", r)}
		}
		result.Kind = reporterror.KindOf(result.Error)
		result.Stats.ProcessingTime = time.Since(startTime)
		if result.Error != nil {
			log.WithError(result.Error).Error("Conversion failed",
				logging.F(logging.FieldKind, result.Kind.String()))
		}
	}()

	// =========================================================================
	// STEP 1: VALIDATE INPUT FILE
	// =========================================================================

	log.Info("Processing workbook")

	if err := validation.ValidateFile(inputPath); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 2: OPEN WORKBOOK AND CHECK SHEETS
	// =========================================================================

	wb, err := xlsxparser.Open(inputPath)
	if err != nil {
		result.Error = &reporterror.InputError{Path: inputPath, Reason: "cannot be opened as a workbook", Err: err}
		return result
	}
	defer wb.Close()

	if err := validation.RequireSheets(wb.SheetNames()); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 3: EXTRACT SHEETS
	// =========================================================================

	sheets := make(map[string]*types.Sheet, 3)
	for _, name := range types.RequiredSheets() {
		sheet, err := wb.Sheet(name)
		if err != nil {
			result.Error = &reporterror.UnexpectedError{Op: "reading sheet " + name, Err: err}
			return result
		}
		sheets[name] = sheet
		log.Debug("Extracted sheet",
			logging.F(logging.FieldSheet, name),
			logging.F(logging.FieldCount, sheet.Len()))
	}

	// =========================================================================
	// STEP 4: MAP HEADER AND LEGAL ENTITY
	// =========================================================================

	header, err := MapHeader(sheets[types.SheetHeader])
	if err != nil {
		result.Error = err
		return result
	}

	entity, err := MapLegalEntity(sheets[types.SheetEntity])
	if err != nil {
		result.Error = err
		return result
	}

	outputPath := filepath.Join(outputDir, OutputFileName(entity.Name, header.ReportedMonth))

	// =========================================================================
	// STEP 5: MAP OPERATIONS
	// =========================================================================

	rows := sheets[types.SheetOperations].Rows
	total := len(rows)
	operations := make([]types.Operation, 0, total)

	for i, row := range rows {
		op, err := MapOperation(row)
		if err != nil {
			result.Error = err
			return result
		}
		operations = append(operations, op)
		if op.HasCustody() {
			result.Stats.CustodyOperations++
		}

		if (i+1)%c.progressInterval == 0 {
			log.Info("Processed operations",
				logging.F(logging.FieldCount, i+1),
				logging.F(logging.FieldTotal, total))
		}
	}
	result.Stats.Operations = len(operations)

	log.Info("All operations processed",
		logging.F(logging.FieldCount, len(operations)),
		logging.F(logging.FieldTotal, total))

	// =========================================================================
	// STEP 6: LINT RECORDS
	// =========================================================================
	// Lint findings are reported but never block the output.

	findings := c.validator.Lint(header, entity, operations)
	for _, f := range findings {
		log.Warn("Validation warning",
			logging.F(logging.FieldSheet, f.Sheet),
			logging.F(logging.FieldRow, f.RowNumber),
			logging.F(logging.FieldField, f.Field),
			logging.F(logging.FieldValue, f.Value),
			logging.F("message", f.Message))
	}

	// =========================================================================
	// STEP 7: ASSEMBLE AND RENDER
	// =========================================================================

	doc := BuildDocument(header, entity, operations)
	data, err := xmlwriter.Marshal(doc)
	if err != nil {
		result.Error = &reporterror.UnexpectedError{Op: "rendering XML", Err: err}
		return result
	}

	// =========================================================================
	// STEP 8: WRITE OUTPUT FILE
	// =========================================================================

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		result.Error = &reporterror.UnexpectedError{Op: "creating output directory", Err: err}
		return result
	}
	if err := xmlwriter.WriteFile(outputPath, data); err != nil {
		result.Error = &reporterror.UnexpectedError{Op: "writing report", Err: err}
		return result
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.OutputFile = outputPath
	result.Success = true
	result.Warnings = findings
	result.Stats.Warnings = len(findings)

	log.Info("Report written",
		logging.F(logging.FieldOutputFile, outputPath),
		logging.F(logging.FieldCount, result.Stats.Operations),
		logging.F(logging.FieldDuration, time.Since(startTime).Milliseconds()))

	return result
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputFileName builds "informe1.0_{entity}_{month}.xml".
//
// EXAMPLE:
//   OutputFileName("ACME S.A. DE C.V.", "3") -> "informe1.0_ACME_SA_DE_CV_3.xml"
func OutputFileName(entityName, month string) string {
	return fmt.Sprintf("informe1.0_%s_%s.xml", SanitizeEntityName(entityName), stripUnsafe(month))
}

// SanitizeEntityName replaces whitespace with "_", drops periods and
// characters that are unsafe in file names, then keeps the first 30
// characters.
func SanitizeEntityName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r == '.':
		default:
			b.WriteRune(r)
		}
	}

	runes := []rune(stripUnsafe(b.String()))
	if len(runes) > maxEntityNameLength {
		runes = runes[:maxEntityNameLength]
	}
	return string(runes)
}

// stripUnsafe removes path separators, reserved characters and control
// characters.
func stripUnsafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, s)
}
