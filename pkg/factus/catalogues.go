// Package factus contiene los catálogos (ids de la API Factus, alineados a las tablas
// del Anexo Técnico DIAN) y utilidades de normalización que usa el mapeo de facturas.
package factus

// =============================================================================
// Forma de pago (Tabla 14 DIAN)
// =============================================================================

const (
	PaymentFormContado = 1
	PaymentFormCredito = 2
)

// =============================================================================
// Medios de pago (Tabla 13 DIAN) - códigos de uso en restaurantes
// =============================================================================

const (
	PaymentMethodEfectivo       = 10
	PaymentMethodTransferencia  = 47
	PaymentMethodTarjetaCredito = 48
	PaymentMethodTarjetaDebito  = 49
)

// =============================================================================
// Documento de identificación del adquiriente (ids Factus)
// =============================================================================

const (
	IdentificationCedula = 3 // Cédula de ciudadanía
	IdentificationNIT    = 6
)

// Organización jurídica (legal_organization_id en Factus).
const (
	LegalOrganizationJuridica = 1
	LegalOrganizationNatural  = 2
)

// =============================================================================
// Tributos (ids Factus) y tarifas usadas por el dominio
// =============================================================================

const (
	TributeIVA          = 1
	TributeImpoconsumo  = 22
	RateIVAGeneral      = 19 // %
	RateImpoconsumo     = 8  // %
	UnitMeasureUnidad   = 70
	StandardCodeInterno = 1
)

// ConsumidorFinal nombre genérico cuando el cliente no se identifica por nombre.
const ConsumidorFinal = "Consumidor Final"

// Valores por defecto del adquiriente cuando el POS no los envía.
const (
	DefaultCustomerAddress = "Sin dirección registrada"
	DefaultMunicipalityID  = 149
)

// =============================================================================
// Conceptos de corrección para notas crédito (Tabla 13.2.4 DIAN)
// =============================================================================

const (
	CreditNoteDevolucionParcial   = "1"
	CreditNoteAnulacion           = "2"
	CreditNoteRebaja              = "3"
	CreditNoteAjustePrecio        = "4"
	CreditNoteDescuentoProntoPago = "5"
	CreditNoteDescuentoVolumen    = "6"
)

// ValidCreditNoteConcepts códigos de discrepancia aceptados.
var ValidCreditNoteConcepts = map[string]bool{
	CreditNoteDevolucionParcial:   true,
	CreditNoteAnulacion:           true,
	CreditNoteRebaja:              true,
	CreditNoteAjustePrecio:        true,
	CreditNoteDescuentoProntoPago: true,
	CreditNoteDescuentoVolumen:    true,
}

// CreditNotePrefix prefijo con el que se reconoce un rango de notas crédito.
const CreditNotePrefix = "NC"
