package converter

import (
	"github.com/Abyblackmouth/XmlCreator40/internal/reporterror"
	"github.com/Abyblackmouth/XmlCreator40/internal/schema"
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
)

// =============================================================================
// ROW READER
// =============================================================================

// rowReader reads fields of one row through a Transformer and keeps the
// first error, so a mapping function can read every field and check once.
type rowReader struct {
	transformer *Transformer
	row         types.Row
	err         error
	defaulted   bool
}

func newRowReader(sheet schema.SheetSchema, row types.Row) *rowReader {
	return &rowReader{transformer: NewTransformer(sheet), row: row}
}

// get returns the coerced value of column, or "" once an error was seen.
func (r *rowReader) get(column string) string {
	if r.err != nil {
		return ""
	}
	value, defaulted, err := r.transformer.Transform(r.row, column)
	if err != nil {
		r.err = err
		return ""
	}
	r.defaulted = r.defaulted || defaulted
	return value
}

// firstRow returns row 0 of a single-row sheet.
func firstRow(sheet *types.Sheet) (types.Row, error) {
	if sheet.Len() == 0 {
		return types.Row{}, &reporterror.RowAccessError{
			Sheet:  sheet.Name,
			Reason: "has no data rows",
		}
	}
	return sheet.Rows[0], nil
}

// =============================================================================
// MAPPING FUNCTIONS
// =============================================================================

// MapHeader maps the first encabezado row.
func MapHeader(sheet *types.Sheet) (*types.Header, error) {
	row, err := firstRow(sheet)
	if err != nil {
		return nil, err
	}

	r := newRowReader(schema.Header, row)
	header := &types.Header{
		ReportedMonth:   r.get("mes_reportado"),
		ObligorKey:      r.get("clave_sujeto_obligado"),
		ActivityKey:     r.get("clave_actividad"),
		NoticeReference: r.get("referencia_aviso"),
		Priority:        r.get("prioridad"),
		AlertType:       r.get("tipo_alerta"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return header, nil
}

// MapLegalEntity maps the first persona_moral row.
func MapLegalEntity(sheet *types.Sheet) (*types.LegalEntity, error) {
	row, err := firstRow(sheet)
	if err != nil {
		return nil, err
	}

	r := newRowReader(schema.Entity, row)
	entity := &types.LegalEntity{
		Name:              r.get("denominacion_razon"),
		IncorporationDate: r.get("fecha_constitucion"),
		RFC:               r.get("rfc"),
		Nationality:       r.get("pais_nacionalidad"),
		BusinessLine:      r.get("giro_mercantil"),
		Representative: types.Representative{
			FirstName:       r.get("nombre_representante"),
			PaternalSurname: r.get("apellido_paterno_representante"),
			MaternalSurname: r.get("apellido_materno_representante"),
			BirthDate:       r.get("fecha_nacimiento_representante"),
			RFC:             r.get("rfc_representante"),
			CURP:            r.get("curp_representante"),
		},
		Address: types.Address{
			Colonia:        r.get("colonia"),
			Street:         r.get("calle"),
			ExteriorNumber: r.get("numero_exterior"),
			PostalCode:     r.get("codigo_postal"),
		},
		Contact: types.Contact{
			CountryCode: r.get("clave_pais"),
			Phone:       r.get("numero_telefono"),
			Email:       r.get("correo_electronico"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	return entity, nil
}

// MapOperation maps one operaciones row. The custody window is read only for
// OperationTypeCustody.
func MapOperation(row types.Row) (types.Operation, error) {
	r := newRowReader(schema.Operations, row)

	op := types.Operation{
		RowNumber:           row.Number,
		Date:                r.get("fecha_operacion"),
		Type:                r.get("tipo_operacion"),
		Instrument:          r.get("instrumento_monetario"),
		Currency:            r.get("moneda"),
		Amount:              r.get("monto_operacion"),
		ServiceType:         r.get("tipo_servicio"),
		ReceptionDate:       r.get("fecha_recepcion"),
		ReceptionPostalCode: r.get("codigo_postal_recepcion"),
	}
	op.AmountDefaulted = r.defaulted

	if op.Type == types.OperationTypeCustody {
		op.Custody = &types.Custody{
			StartDate:        r.get("fecha_inicio_custodia"),
			EndDate:          r.get("fecha_fin_custodia"),
			BranchPostalCode: r.get("codigo_postal_sucursal"),
		}
	}

	op.DeliveryDate = r.get("fecha_entrega")
	op.DeliveryPostalCode = r.get("codigo_postal_entrega")
	op.Recipient = r.get("destinatario_persona_aviso")

	if r.err != nil {
		return types.Operation{}, r.err
	}
	return op, nil
}
