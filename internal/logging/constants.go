package logging

// Standardized field names for structured logging.
const (
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldSheet      = "sheet"
	FieldRow        = "row"
	FieldField      = "field"
	FieldValue      = "value"
	FieldCount      = "count"
	FieldTotal      = "total"
	FieldKind       = "kind"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldAddress    = "address"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRequestID  = "request_id"
	FieldBytes      = "bytes"
)
