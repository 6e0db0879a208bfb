package converter

import (
	"github.com/Abyblackmouth/XmlCreator40/internal/types"
	"github.com/Abyblackmouth/XmlCreator40/internal/xmlwriter"
)

// Report namespace and schema location written on the root element.
const (
	Namespace      = "http://www.uif.shcp.gob.mx/recepcion/tcv"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = Namespace + " tcv.xsd"
)

// =============================================================================
// DOCUMENT ASSEMBLY
// =============================================================================
//
// STRUCTURE:
//   archivo
//     informe
//       mes_reportado
//       sujeto_obligado/{clave_sujeto_obligado, clave_actividad}
//       aviso
//         referencia_aviso, prioridad, alerta/tipo_alerta
//         persona_aviso
//           tipo_persona/persona_moral/...
//           tipo_domicilio/nacional/...
//           telefono/...
//         detalle_operaciones
//           datos_operacion (one per operation, in row order)

// NewDocument creates the root element with its namespace declarations.
func NewDocument() *xmlwriter.Element {
	return xmlwriter.NewElement("archivo").
		SetAttr("xmlns", Namespace).
		SetAttr("xmlns:xsi", XSINamespace).
		SetAttr("xsi:schemaLocation", SchemaLocation)
}

// BuildDocument assembles the full report tree.
func BuildDocument(header *types.Header, entity *types.LegalEntity, operations []types.Operation) *xmlwriter.Element {
	root := NewDocument()
	detail := AddNotice(root, header, entity)
	for i := range operations {
		AddOperation(detail, &operations[i])
	}
	return root
}

// AddNotice writes the informe, sujeto_obligado and aviso sections and
// returns the empty detalle_operaciones element that receives operations.
func AddNotice(root *xmlwriter.Element, header *types.Header, entity *types.LegalEntity) *xmlwriter.Element {
	informe := root.Add("informe")
	informe.AddText("mes_reportado", header.ReportedMonth)

	informe.Add("sujeto_obligado").
		AddText("clave_sujeto_obligado", header.ObligorKey).
		AddText("clave_actividad", header.ActivityKey)

	aviso := informe.Add("aviso")
	aviso.AddText("referencia_aviso", header.NoticeReference).
		AddText("prioridad", header.Priority)
	aviso.Add("alerta").AddText("tipo_alerta", header.AlertType)

	addPersonaAviso(aviso.Add("persona_aviso"), entity)

	return aviso.Add("detalle_operaciones")
}

func addPersonaAviso(persona *xmlwriter.Element, entity *types.LegalEntity) {
	moral := persona.Add("tipo_persona").Add("persona_moral")
	moral.AddText("denominacion_razon", entity.Name).
		AddText("fecha_constitucion", entity.IncorporationDate).
		AddText("rfc", entity.RFC).
		AddText("pais_nacionalidad", entity.Nationality).
		AddText("giro_mercantil", entity.BusinessLine)

	rep := entity.Representative
	moral.Add("representante_apoderado").
		AddText("nombre", rep.FirstName).
		AddText("apellido_paterno", rep.PaternalSurname).
		AddText("apellido_materno", rep.MaternalSurname).
		AddText("fecha_nacimiento", rep.BirthDate).
		AddText("rfc", rep.RFC).
		AddText("curp", rep.CURP)

	addr := entity.Address
	persona.Add("tipo_domicilio").Add("nacional").
		AddText("colonia", addr.Colonia).
		AddText("calle", addr.Street).
		AddText("numero_exterior", addr.ExteriorNumber).
		AddText("codigo_postal", addr.PostalCode)

	contact := entity.Contact
	persona.Add("telefono").
		AddText("clave_pais", contact.CountryCode).
		AddText("numero_telefono", contact.Phone).
		AddText("correo_electronico", contact.Email)
}

// AddOperation appends one datos_operacion element to detail.
func AddOperation(detail *xmlwriter.Element, op *types.Operation) {
	datos := detail.Add("datos_operacion")
	datos.AddText("fecha_operacion", op.Date).
		AddText("tipo_operacion", op.Type)

	datos.Add("tipo_bien").Add("datos_efectivo_instrumentos").
		AddText("instrumento_monetario", op.Instrument).
		AddText("moneda", op.Currency).
		AddText("monto_operacion", op.Amount)

	datos.Add("recepcion").
		AddText("tipo_servicio", op.ServiceType).
		AddText("fecha_recepcion", op.ReceptionDate).
		AddText("codigo_postal", op.ReceptionPostalCode)

	if op.HasCustody() {
		custodia := datos.Add("custodia")
		custodia.AddText("fecha_inicio", op.Custody.StartDate).
			AddText("fecha_fin", op.Custody.EndDate)
		custodia.Add("tipo_custodia").Add("datos_sucursal").
			AddText("codigo_postal", op.Custody.BranchPostalCode)
	}

	entrega := datos.Add("entrega")
	entrega.AddText("fecha_entrega", op.DeliveryDate)
	entrega.Add("tipo_entrega").Add("nacional").
		AddText("codigo_postal", op.DeliveryPostalCode)

	datos.Add("destinatario").
		AddText("destinatario_persona_aviso", op.Recipient)
}
