// Package reporterror defines the error taxonomy of a workbook conversion.
// Every failure returned by the converter can be classified with KindOf.
package reporterror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a conversion failure.
type Kind int

const (
	KindNone Kind = iota
	KindInputNotFound
	KindMissingSheets
	KindRowAccess
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInputNotFound:
		return "input_not_found"
	case KindMissingSheets:
		return "missing_sheets"
	case KindRowAccess:
		return "row_access"
	default:
		return "unexpected"
	}
}

// ErrInputNotFound is matched by every InputError.
var ErrInputNotFound = errors.New("input file does not exist or is not readable")

// InputError reports an input path that does not resolve to a readable workbook.
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("input file %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInputNotFound) succeed for any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInputNotFound
}

// MissingSheetsError lists every required sheet absent from the workbook.
type MissingSheetsError struct {
	Sheets []string
}

func (e *MissingSheetsError) Error() string {
	return "missing required sheets: " + strings.Join(e.Sheets, ", ")
}

// RowAccessError reports a required row or column that could not be read.
// Row is the 1-based spreadsheet row number, zero when the row itself is missing.
type RowAccessError struct {
	Sheet  string
	Row    int
	Field  string
	Reason string
}

func (e *RowAccessError) Error() string {
	switch {
	case e.Field != "" && e.Row > 0:
		return fmt.Sprintf("sheet %q row %d: %s %q", e.Sheet, e.Row, e.Reason, e.Field)
	case e.Field != "":
		return fmt.Sprintf("sheet %q: %s %q", e.Sheet, e.Reason, e.Field)
	default:
		return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
	}
}

// UnexpectedError wraps any failure outside the declared kinds, including
// recovered panics.
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected failure while %s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors outside the taxonomy are KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var missing *MissingSheetsError
	var rowErr *RowAccessError

	switch {
	case errors.Is(err, ErrInputNotFound):
		return KindInputNotFound
	case errors.As(err, &missing):
		return KindMissingSheets
	case errors.As(err, &rowErr):
		return KindRowAccess
	default:
		return KindUnexpected
	}
}
