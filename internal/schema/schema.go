// =============================================================================
// XmlCreator40 - Workbook Field Schema
// =============================================================================
//
// This package declares, in one place, every column the converter reads from
// the input workbook and the coercion rule applied to it. The table is used by:
//   - converter   : to coerce each cell before it enters a report record
//   - xlsxparser  : to write the header row of the blank template workbook
//   - validation  : to know which sheets are required
//
// FIELD KINDS:
//   - Text   : free text, copied as-is
//   - Code   : identifier code; "1003.0" and 1003.0 both become "1003"
//   - Amount : currency value, two decimals, "0.00" when unparsable
//   - Flag   : free text upper-cased
//
// Optional fields yield "" when the column is missing from the sheet. Every
// other field missing from its sheet aborts the conversion.
//
// =============================================================================

package schema

import (
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

// Kind is the coercion applied to a field.
type Kind int

const (
	Text Kind = iota
	Code
	Amount
	Flag
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case Amount:
		return "amount"
	case Flag:
		return "flag"
	default:
		return "text"
	}
}

// FieldMapping describes one input column.
type FieldMapping struct {
	// Column is the header text in the first row of the sheet.
	Column string

	// Kind is the coercion rule.
	Kind Kind

	// PadTo left-pads the coerced value with zeros to this width. Zero
	// disables padding.
	PadTo int

	// Optional fields may be absent from the sheet.
	Optional bool
}

// SheetSchema is the ordered field list of one sheet.
type SheetSchema struct {
	Name   string
	Fields []FieldMapping
}

// Field returns the mapping for column.
func (s SheetSchema) Field(column string) (FieldMapping, bool) {
	for _, f := range s.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// Columns returns the column names in declaration order.
func (s SheetSchema) Columns() []string {
	columns := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		columns[i] = f.Column
	}
	return columns
}

// =============================================================================
// FIELD TABLE
// =============================================================================

// Header is the encabezado sheet.
var Header = SheetSchema{
	Name: types.SheetHeader,
	Fields: []FieldMapping{
		{Column: "mes_reportado", Kind: Code},
		{Column: "clave_sujeto_obligado", Kind: Code},
		{Column: "clave_actividad", Kind: Code},
		{Column: "referencia_aviso", Kind: Code},
		{Column: "prioridad", Kind: Code},
		{Column: "tipo_alerta", Kind: Code},
	},
}

// Entity is the persona_moral sheet.
var Entity = SheetSchema{
	Name: types.SheetEntity,
	Fields: []FieldMapping{
		{Column: "denominacion_razon", Kind: Text},
		{Column: "fecha_constitucion", Kind: Code},
		{Column: "rfc", Kind: Text},
		{Column: "pais_nacionalidad", Kind: Code},
		{Column: "giro_mercantil", Kind: Code},
		{Column: "nombre_representante", Kind: Text},
		{Column: "apellido_paterno_representante", Kind: Text},
		{Column: "apellido_materno_representante", Kind: Text},
		{Column: "fecha_nacimiento_representante", Kind: Code},
		{Column: "rfc_representante", Kind: Text},
		{Column: "curp_representante", Kind: Text},
		{Column: "colonia", Kind: Text},
		{Column: "calle", Kind: Text},
		{Column: "numero_exterior", Kind: Code},
		{Column: "codigo_postal", Kind: Code, PadTo: 5},
		{Column: "clave_pais", Kind: Code},
		{Column: "numero_telefono", Kind: Code},
		{Column: "correo_electronico", Kind: Text},
	},
}

// Operations is the operaciones sheet.
var Operations = SheetSchema{
	Name: types.SheetOperations,
	Fields: []FieldMapping{
		{Column: "fecha_operacion", Kind: Code},
		{Column: "tipo_operacion", Kind: Code},
		{Column: "instrumento_monetario", Kind: Code},
		{Column: "moneda", Kind: Code},
		{Column: "monto_operacion", Kind: Amount},
		{Column: "tipo_servicio", Kind: Code},
		{Column: "fecha_recepcion", Kind: Code},
		{Column: "codigo_postal_recepcion", Kind: Code},
		{Column: "fecha_inicio_custodia", Kind: Code, Optional: true},
		{Column: "fecha_fin_custodia", Kind: Code, Optional: true},
		{Column: "codigo_postal_sucursal", Kind: Code, Optional: true},
		{Column: "fecha_entrega", Kind: Code},
		{Column: "codigo_postal_entrega", Kind: Code},
		{Column: "destinatario_persona_aviso", Kind: Flag},
	},
}

// All returns the three sheet schemas in required-sheet order.
func All() []SheetSchema {
	return []SheetSchema{Header, Entity, Operations}
}
