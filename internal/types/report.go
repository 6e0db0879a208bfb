package types

// =============================================================================
// REPORT RECORDS
// =============================================================================
//
// All values are already coerced to their final text form. The validate tags
// drive the non-blocking lint in the validation package; they never stop a
// conversion. The col tags name the source column of each value.

// Header holds the encabezado sheet (first data row).
type Header struct {
	ReportedMonth   string `validate:"required" col:"mes_reportado"`
	ObligorKey      string `validate:"required" col:"clave_sujeto_obligado"`
	ActivityKey     string `validate:"required" col:"clave_actividad"`
	NoticeReference string `validate:"required" col:"referencia_aviso"`
	Priority        string `validate:"omitempty" col:"prioridad"`
	AlertType       string `validate:"omitempty" col:"tipo_alerta"`
}

// LegalEntity holds the persona_moral sheet (first data row).
type LegalEntity struct {
	Name              string `validate:"required" col:"denominacion_razon"`
	IncorporationDate string `validate:"omitempty,numeric,len=8" col:"fecha_constitucion"`
	RFC               string `validate:"omitempty,min=12,max=13" col:"rfc"`
	Nationality       string `validate:"omitempty" col:"pais_nacionalidad"`
	BusinessLine      string `validate:"omitempty" col:"giro_mercantil"`

	Representative Representative
	Address        Address
	Contact        Contact
}

// Representative is the legal representative of the entity.
type Representative struct {
	FirstName       string `validate:"required" col:"nombre_representante"`
	PaternalSurname string `validate:"required" col:"apellido_paterno_representante"`
	MaternalSurname string `validate:"omitempty" col:"apellido_materno_representante"`
	BirthDate       string `validate:"omitempty,numeric,len=8" col:"fecha_nacimiento_representante"`
	RFC             string `validate:"omitempty,min=12,max=13" col:"rfc_representante"`
	CURP            string `validate:"omitempty,len=18" col:"curp_representante"`
}

// Address is the national domicile of the entity.
type Address struct {
	Colonia        string `validate:"omitempty" col:"colonia"`
	Street         string `validate:"omitempty" col:"calle"`
	ExteriorNumber string `validate:"omitempty" col:"numero_exterior"`
	PostalCode     string `validate:"required,numeric,len=5" col:"codigo_postal"` // zero padded
}

// Contact is the phone/e-mail block of the entity.
type Contact struct {
	CountryCode string `validate:"omitempty" col:"clave_pais"`
	Phone       string `validate:"omitempty" col:"numero_telefono"`
	Email       string `validate:"omitempty,email" col:"correo_electronico"`
}

// OperationTypeCustody is the operation type that carries a custody window.
const OperationTypeCustody = "1003"

// Operation is one operaciones row.
type Operation struct {
	// RowNumber is the spreadsheet row the operation came from.
	RowNumber int `validate:"-"`

	Date       string `validate:"omitempty,numeric,len=8" col:"fecha_operacion"`
	Type       string `validate:"required" col:"tipo_operacion"`
	Instrument string `validate:"omitempty" col:"instrumento_monetario"`
	Currency   string `validate:"omitempty" col:"moneda"`
	Amount     string `validate:"required" col:"monto_operacion"` // two decimals

	// AmountDefaulted is set when monto_operacion could not be parsed and
	// was replaced by "0.00".
	AmountDefaulted bool `validate:"-"`

	ServiceType         string `validate:"omitempty" col:"tipo_servicio"`
	ReceptionDate       string `validate:"omitempty,numeric,len=8" col:"fecha_recepcion"`
	ReceptionPostalCode string `validate:"omitempty" col:"codigo_postal_recepcion"`

	// Custody is non-nil only for OperationTypeCustody.
	Custody *Custody `validate:"omitempty"`

	DeliveryDate       string `validate:"omitempty,numeric,len=8" col:"fecha_entrega"`
	DeliveryPostalCode string `validate:"omitempty" col:"codigo_postal_entrega"`
	Recipient          string `validate:"omitempty" col:"destinatario_persona_aviso"` // upper-cased
}

// HasCustody reports whether the custody subtree must be emitted.
func (o *Operation) HasCustody() bool {
	return o.Custody != nil
}

// Custody is the custody window of a 1003 operation. Missing columns yield "".
type Custody struct {
	StartDate        string `validate:"omitempty,numeric,len=8" col:"fecha_inicio_custodia"`
	EndDate          string `validate:"omitempty,numeric,len=8" col:"fecha_fin_custodia"`
	BranchPostalCode string `validate:"omitempty" col:"codigo_postal_sucursal"`
}
