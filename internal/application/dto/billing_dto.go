package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest adquiriente de la factura (ruta general).
type CustomerRequest struct {
	// 3=Cédula, 6=NIT, ... (catálogo Factus). 0 → se deduce del largo del documento.
	IdentificationDocumentID int    `json:"identification_document_id,omitempty" validate:"omitempty,min=1"`
	IdentificationNumber     string `json:"identification_number" validate:"required,max=20"`
	DV                       string `json:"dv,omitempty"`
	// 1=Persona Jurídica, 2=Persona Natural. 0 → se deduce del largo del documento.
	EntityTypeID   int    `json:"entity_type_id,omitempty" validate:"omitempty,oneof=1 2"`
	Company        string `json:"company,omitempty" validate:"max=450"`
	FirstName      string `json:"first_name,omitempty" validate:"max=150"`
	LastName       string `json:"last_name,omitempty" validate:"max=150"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty" validate:"max=20"`
	Address        string `json:"address,omitempty" validate:"max=500"`
	MunicipalityID int    `json:"municipality_id,omitempty"`
}

// TaxLine impuesto aplicado a un ítem.
type TaxLine struct {
	TaxID         int             `json:"tax_id" validate:"min=1"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Percent       decimal.Decimal `json:"percent"`
}

// WithholdingTaxLine retención aplicada a un ítem.
type WithholdingTaxLine struct {
	WithholdingTaxID int             `json:"withholding_tax_id" validate:"min=1"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Percent          decimal.Decimal `json:"percent"`
}

// InvoiceItemRequest línea de factura. Si Taxes viene vacío, el impuesto se deduce de TaxType / IsTaxed.
type InvoiceItemRequest struct {
	Code             string               `json:"code" validate:"required,max=50"`
	Description      string               `json:"description" validate:"required,max=500"`
	Quantity         decimal.Decimal      `json:"quantity"`
	Price            decimal.Decimal      `json:"price"`
	Discount         decimal.Decimal      `json:"discount"`
	UnitMeasureID    int                  `json:"unit_measure_id,omitempty"`
	TaxType          string               `json:"tax_type,omitempty"` // VAT|IVA, CONSUMPTION|ICO
	IsTaxed          *bool                `json:"is_taxed,omitempty"`
	Taxes            []TaxLine            `json:"taxes,omitempty" validate:"dive"`
	WithholdingTaxes []WithholdingTaxLine `json:"withholding_taxes,omitempty" validate:"dive"`
}

// CreateInvoiceRequest body para POST /api/billing/invoices.
type CreateInvoiceRequest struct {
	NumberingRangeID int64                `json:"numbering_range_id" validate:"required,gt=0"`
	ReferenceCode    string               `json:"reference_code" validate:"required,max=100"`
	Observation      string               `json:"observation,omitempty" validate:"max=250"`
	PaymentForm      int                  `json:"payment_form,omitempty" validate:"omitempty,oneof=1 2"`                                 // 1=Contado (defecto), 2=Crédito
	PaymentMethod    int                  `json:"payment_method,omitempty"`                                                              // 10=Efectivo (defecto)
	DueDate          string               `json:"due_date,omitempty" validate:"required_if=PaymentForm 2,omitempty,datetime=2006-01-02"` // YYYY-MM-DD, solo crédito
	SendEmail        *bool                `json:"send_email,omitempty"`
	Customer         CustomerRequest      `json:"customer"`
	Items            []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest ítem de una orden del restaurante.
type OrderItemRequest struct {
	ID       string              `json:"id"`
	Name     string              `json:"name" validate:"required,max=500"`
	Price    decimal.Decimal     `json:"price"`
	Quantity decimal.NullDecimal `json:"quantity"` // ausente se factura como 1
	IsTaxed  *bool               `json:"is_taxed,omitempty"`
	TaxType  string              `json:"tax_type,omitempty"` // IVA|VAT, ICO|CONSUMPTION
}

// OrderInvoiceRequest body para POST /api/billing/invoices/from-order.
// Si NumberingRangeID es 0 se usa el rango activo del restaurante.
type OrderInvoiceRequest struct {
	OrderID          string             `json:"order_id" validate:"required,max=100"`
	PaymentMethod    string             `json:"payment_method" validate:"required"` // efectivo, tarjeta, transferencia, nequi...
	NumberingRangeID int64              `json:"numbering_range_id,omitempty"`
	CustomerNIT      string             `json:"customer_nit" validate:"required,max=20"`
	CustomerName     string             `json:"customer_name"`
	CustomerEmail    string             `json:"customer_email" validate:"required,email"`
	CustomerPhone    string             `json:"customer_phone,omitempty"`
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Observation      string             `json:"observation,omitempty"`
}

// InvoiceResponse documento creado en Factus.
type InvoiceResponse struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	Prefix       string          `json:"prefix,omitempty"`
	CUFE         string          `json:"cufe"`
	Status       string          `json:"status"`
	DocumentType string          `json:"document_type"`
	Total        decimal.Decimal `json:"total"`
	PDFURL       string          `json:"pdf_url,omitempty"`
	XMLURL       string          `json:"xml_url,omitempty"`
	QRCode       string          `json:"qr_code,omitempty"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
	ValidatedAt  *time.Time      `json:"validated_at,omitempty"`
}

// ValidateInvoiceResponse respuesta de POST /invoices/:number/validate.
type ValidateInvoiceResponse struct {
	Status  string               `json:"status"`
	Message string               `json:"message"`
	Data    ValidatedInvoiceData `json:"data"`
}

// ValidatedInvoiceData datos fiscales tras la validación.
type ValidatedInvoiceData struct {
	CUFE   string `json:"cufe"`
	QRCode string `json:"qr_code,omitempty"`
	Status string `json:"status"`
	PDFURL string `json:"pdf_url,omitempty"`
	XMLURL string `json:"xml_url,omitempty"`
}

// CreditNoteRequest body para POST /api/billing/credit-notes.
type CreditNoteRequest struct {
	InvoiceNumber string `json:"invoice_number" validate:"required"`
	ReasonCode    string `json:"reason_code,omitempty" validate:"omitempty,oneof=1 2 3 4 5 6"` // concepto de corrección DIAN, "2" (anulación) por defecto
	Description   string `json:"description" validate:"required,min=5,max=500"`
}

// InvoicePDFResponse URL del PDF de un documento.
type InvoicePDFResponse struct {
	Number string `json:"number"`
	PDFURL string `json:"pdf_url"`
}

// ProviderHealthResponse conectividad con Factus para el restaurante.
type ProviderHealthResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
}

// MunicipalityQuery filtros del catálogo de municipios.
type MunicipalityQuery struct {
	Search  string `query:"search"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}
