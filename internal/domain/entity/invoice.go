package entity

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus ciclo de vida local de un documento emitido en Factus.
//
//	CREATED ──validar──► VALIDATED ──nota crédito──► ANNULLED
//	   │                     ▲
//	   └──falla──► ERROR_VALIDATING ──reintento──┘
type InvoiceStatus string

const (
	InvoiceStatusCreated         InvoiceStatus = "CREATED"
	InvoiceStatusValidated       InvoiceStatus = "VALIDATED"
	InvoiceStatusErrorValidating InvoiceStatus = "ERROR_VALIDATING"
	InvoiceStatusAnnulled        InvoiceStatus = "ANNULLED"
)

// DocumentType tipo de documento electrónico.
type DocumentType string

const (
	DocumentInvoice    DocumentType = "INVOICE"
	DocumentCreditNote DocumentType = "CREDIT_NOTE"
)

// Invoice proyección local de un documento de Factus (registro legal, nunca se borra).
type Invoice struct {
	ID               string
	TenantID         string
	Number           string // con prefijo, ej. "SETP990000123"
	Prefix           string
	CUFE             string
	FactusID         int64
	OrderReference   string
	Total            decimal.Decimal
	Status           InvoiceStatus
	DocumentType     DocumentType
	RelatedInvoiceID *string // factura que anula (solo notas crédito)
	PDFURL           string
	XMLURL           string
	QRURL            string
	APIResponse      json.RawMessage // respuesta cruda del proveedor, guardada como JSON estructurado
	ErrorDetail      json.RawMessage // último error de validación
	CreatedAt        time.Time
	ValidatedAt      *time.Time
	UpdatedAt        time.Time
}

// ValidatableStatuses estados desde los que se puede (re)enviar la validación.
var ValidatableStatuses = []InvoiceStatus{InvoiceStatusCreated, InvoiceStatusErrorValidating}

// CanValidate se puede (re)enviar la validación.
func (i *Invoice) CanValidate() bool {
	return slices.Contains(ValidatableStatuses, i.Status)
}

// CanAnnul solo una factura validada puede anularse con nota crédito.
func (i *Invoice) CanAnnul() bool {
	return i.DocumentType == DocumentInvoice && i.Status == InvoiceStatusValidated
}
