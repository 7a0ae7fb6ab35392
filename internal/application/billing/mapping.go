package billing

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/pkg/factus"
)

var (
	hundred      = decimal.NewFromInt(100)
	phoneCleaner = regexp.MustCompile(`[^\d\s\-+]`)
)

// TaxRule tributo y tarifa que se aplican a una línea.
type TaxRule struct {
	TributeID int
	Rate      decimal.Decimal
}

var (
	ruleIVA         = TaxRule{TributeID: factus.TributeIVA, Rate: decimal.NewFromInt(factus.RateIVAGeneral)}
	ruleICO         = TaxRule{TributeID: factus.TributeImpoconsumo, Rate: decimal.NewFromInt(factus.RateImpoconsumo)}
	ruleIVAExcluded = TaxRule{TributeID: factus.TributeIVA, Rate: decimal.Zero}
)

// ResolveTax aplica las reglas de impuesto por línea:
//
//	VAT / IVA                 → IVA 19 %
//	CONSUMPTION / ICO         → impoconsumo 8 %
//	sin etiqueta, no gravado  → IVA 0 % (excluido)
//	sin etiqueta, gravado     → impoconsumo 8 % (lo normal en restaurantes)
//
// isTaxed nil cuenta como gravado. Una etiqueta desconocida se trata como ausente.
func ResolveTax(taxType string, isTaxed *bool) TaxRule {
	switch factus.Fold(taxType) {
	case "vat", "iva":
		return ruleIVA
	case "consumption", "ico", "impoconsumo", "inc":
		return ruleICO
	}
	if isTaxed != nil && !*isTaxed {
		return ruleIVAExcluded
	}
	return ruleICO
}

// TaxLineFor calcula la línea de impuesto para una base gravable.
func TaxLineFor(rule TaxRule, taxable decimal.Decimal) dto.TaxLine {
	return dto.TaxLine{
		TaxID:         rule.TributeID,
		TaxableAmount: taxable,
		TaxAmount:     taxable.Mul(rule.Rate).Div(hundred).Round(2),
		Percent:       rule.Rate,
	}
}

// Totals totales del documento, siempre calculados desde los ítems.
type Totals struct {
	Subtotal decimal.Decimal
	Taxes    decimal.Decimal
	Total    decimal.Decimal
}

func itemSubtotal(it dto.InvoiceItemRequest) decimal.Decimal {
	return it.Quantity.Mul(it.Price).Sub(it.Discount)
}

func itemTaxes(it dto.InvoiceItemRequest) decimal.Decimal {
	return lo.Reduce(it.Taxes, func(acc decimal.Decimal, t dto.TaxLine, _ int) decimal.Decimal {
		return acc.Add(t.TaxAmount)
	}, decimal.Zero)
}

// ComputeTotals suma subtotales e impuestos de los ítems.
func ComputeTotals(items []dto.InvoiceItemRequest) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(itemSubtotal(it))
		t.Taxes = t.Taxes.Add(itemTaxes(it))
	}
	t.Total = t.Subtotal.Add(t.Taxes)
	return t
}

// ─── Payload Factus ──────────────────────────────────────────────────────────

type billPayload struct {
	NumberingRangeID int64             `json:"numbering_range_id"`
	ReferenceCode    string            `json:"reference_code"`
	Observation      string            `json:"observation,omitempty"`
	PaymentForm      int               `json:"payment_form"`
	PaymentMethod    int               `json:"payment_method"`
	DueDate          string            `json:"due_date,omitempty"`
	SendEmail        bool              `json:"send_email"`
	Customer         customerPayload   `json:"customer"`
	Items            []itemPayload     `json:"items"`
	BillingReference *billingReference `json:"billing_reference,omitempty"`
}

type customerPayload struct {
	IdentificationDocumentID int    `json:"identification_document_id"`
	Identification           string `json:"identification"`
	DV                       string `json:"dv,omitempty"`
	LegalOrganizationID      int    `json:"legal_organization_id"`
	Company                  string `json:"company,omitempty"`
	Names                    string `json:"names,omitempty"`
	Email                    string `json:"email"`
	Phone                    string `json:"phone,omitempty"`
	Address                  string `json:"address"`
	MunicipalityID           int    `json:"municipality_id"`
}

type itemPayload struct {
	CodeReference    string               `json:"code_reference"`
	Name             string               `json:"name"`
	Quantity         json.Number          `json:"quantity"`
	Price            json.Number          `json:"price"`
	Discount         json.Number          `json:"discount"`
	DiscountRate     json.Number          `json:"discount_rate"`
	UnitMeasureID    int                  `json:"unit_measure_id"`
	StandardCodeID   int                  `json:"standard_code_id"`
	IsExcluded       int                  `json:"is_excluded"`
	TributeID        int                  `json:"tribute_id"`
	TaxRate          json.Number          `json:"tax_rate"`
	Taxes            []taxPayload         `json:"taxes"`
	WithholdingTaxes []withholdingPayload `json:"withholding_taxes"`
}

type taxPayload struct {
	TaxID         int         `json:"tax_id"`
	TaxAmount     json.Number `json:"tax_amount"`
	TaxableAmount json.Number `json:"taxable_amount"`
	Percent       json.Number `json:"percent"`
}

type withholdingPayload struct {
	WithholdingTaxID int         `json:"withholding_tax_id"`
	TaxAmount        json.Number `json:"tax_amount"`
	TaxableAmount    json.Number `json:"taxable_amount"`
	Percent          json.Number `json:"percent"`
}

// billingReference factura que corrige una nota crédito.
type billingReference struct {
	Number                         string `json:"number"`
	UUID                           string `json:"uuid"`
	IssueDate                      string `json:"issue_date"`
	DiscrepancyResponseCode        string `json:"discrepancy_response_code"`
	DiscrepancyResponseDescription string `json:"discrepancy_response_description"`
}

func num(d decimal.Decimal) json.Number { return json.Number(d.String()) }

// BuildInvoicePayload arma el cuerpo de POST /v1/bills/validate y devuelve los totales calculados.
// Los ítems sin impuestos explícitos pero con tax_type o is_taxed reciben la línea que dicta ResolveTax.
func BuildInvoicePayload(req dto.CreateInvoiceRequest) (billPayload, Totals) {
	items := lo.Map(req.Items, func(it dto.InvoiceItemRequest, _ int) dto.InvoiceItemRequest {
		if len(it.Taxes) == 0 && (it.TaxType != "" || it.IsTaxed != nil) {
			it.Taxes = []dto.TaxLine{TaxLineFor(ResolveTax(it.TaxType, it.IsTaxed), itemSubtotal(it))}
		}
		return it
	})

	p := billPayload{
		NumberingRangeID: req.NumberingRangeID,
		ReferenceCode:    factus.SanitizeText(req.ReferenceCode),
		Observation:      factus.SanitizeText(req.Observation),
		PaymentForm:      lo.Ternary(req.PaymentForm == 0, factus.PaymentFormContado, req.PaymentForm),
		PaymentMethod:    lo.Ternary(req.PaymentMethod == 0, factus.PaymentMethodEfectivo, req.PaymentMethod),
		DueDate:          req.DueDate,
		SendEmail:        req.SendEmail == nil || *req.SendEmail,
		Customer:         buildCustomer(req.Customer),
		Items:            lo.Map(items, func(it dto.InvoiceItemRequest, _ int) itemPayload { return buildItem(it) }),
	}
	return p, ComputeTotals(items)
}

func buildItem(it dto.InvoiceItemRequest) itemPayload {
	tributeID, taxRate := factus.TributeIVA, decimal.Zero
	if len(it.Taxes) > 0 {
		tributeID, taxRate = it.Taxes[0].TaxID, it.Taxes[0].Percent
	}
	discountRate := decimal.Zero
	if it.Price.IsPositive() {
		discountRate = it.Discount.Div(it.Price).Mul(hundred).Round(2)
	}
	return itemPayload{
		CodeReference:  factus.SanitizeText(it.Code),
		Name:           factus.SanitizeText(it.Description),
		Quantity:       num(it.Quantity),
		Price:          num(it.Price),
		Discount:       num(it.Discount),
		DiscountRate:   num(discountRate),
		UnitMeasureID:  lo.Ternary(it.UnitMeasureID == 0, factus.UnitMeasureUnidad, it.UnitMeasureID),
		StandardCodeID: factus.StandardCodeInterno,
		IsExcluded:     0,
		TributeID:      tributeID,
		TaxRate:        num(taxRate),
		Taxes: lo.Map(it.Taxes, func(t dto.TaxLine, _ int) taxPayload {
			return taxPayload{TaxID: t.TaxID, TaxAmount: num(t.TaxAmount), TaxableAmount: num(t.TaxableAmount), Percent: num(t.Percent)}
		}),
		WithholdingTaxes: lo.Map(it.WithholdingTaxes, func(w dto.WithholdingTaxLine, _ int) withholdingPayload {
			return withholdingPayload{
				WithholdingTaxID: w.WithholdingTaxID,
				TaxAmount:        num(w.TaxAmount),
				TaxableAmount:    num(w.TaxableAmount),
				Percent:          num(w.Percent),
			}
		}),
	}
}

// buildCustomer persona jurídica lleva razón social; persona natural, nombres.
// Documento y tipo de persona se deducen del largo de la identificación si no vienen.
func buildCustomer(c dto.CustomerRequest) customerPayload {
	ident := factus.Digits(c.IdentificationNumber)
	legal := factus.IsLegalEntity(ident)

	entityType := c.EntityTypeID
	if entityType == 0 {
		entityType = lo.Ternary(legal, factus.LegalOrganizationJuridica, factus.LegalOrganizationNatural)
	}
	docType := c.IdentificationDocumentID
	if docType == 0 {
		docType = lo.Ternary(legal, factus.IdentificationNIT, factus.IdentificationCedula)
	}

	out := customerPayload{
		IdentificationDocumentID: docType,
		Identification:           ident,
		DV:                       c.DV,
		LegalOrganizationID:      entityType,
		Email:                    strings.TrimSpace(c.Email),
		Phone:                    strings.TrimSpace(phoneCleaner.ReplaceAllString(c.Phone, "")),
		Address:                  lo.CoalesceOrEmpty(factus.SanitizeText(c.Address), factus.DefaultCustomerAddress),
		MunicipalityID:           lo.Ternary(c.MunicipalityID == 0, factus.DefaultMunicipalityID, c.MunicipalityID),
	}
	if docType == factus.IdentificationNIT && out.DV == "" {
		if dv, err := factus.NITVerificationDigit(ident); err == nil {
			out.DV = dv
		}
	}
	if entityType == factus.LegalOrganizationJuridica {
		out.Company = factus.SanitizeText(c.Company)
		return out
	}
	names := strings.TrimSpace(factus.SanitizeText(c.FirstName) + " " + factus.SanitizeText(c.LastName))
	out.Names = lo.CoalesceOrEmpty(names, factus.ConsumidorFinal)
	return out
}

// MapOrderToInvoice convierte una orden del restaurante en una factura general:
// contado, medio de pago normalizado, cliente clasificado por su identificación y
// un impuesto por ítem según ResolveTax. Los ítems no llevan descuento.
func MapOrderToInvoice(order dto.OrderInvoiceRequest, numberingRangeID int64) dto.CreateInvoiceRequest {
	ident := factus.Digits(order.CustomerNIT)
	customer := dto.CustomerRequest{
		IdentificationNumber: ident,
		Email:                order.CustomerEmail,
		Phone:                order.CustomerPhone,
	}
	if factus.IsLegalEntity(ident) {
		customer.IdentificationDocumentID = factus.IdentificationNIT
		customer.EntityTypeID = factus.LegalOrganizationJuridica
		customer.Company = lo.CoalesceOrEmpty(strings.TrimSpace(order.CustomerName), factus.ConsumidorFinal)
	} else {
		customer.IdentificationDocumentID = factus.IdentificationCedula
		customer.EntityTypeID = factus.LegalOrganizationNatural
		customer.FirstName, customer.LastName = factus.SplitName(order.CustomerName)
	}

	items := lo.Map(order.Items, func(oi dto.OrderItemRequest, _ int) dto.InvoiceItemRequest {
		qty := decimal.NewFromInt(1)
		if oi.Quantity.Valid {
			qty = oi.Quantity.Decimal
		}
		subtotal := qty.Mul(oi.Price)
		return dto.InvoiceItemRequest{
			Code:        lo.CoalesceOrEmpty(strings.TrimSpace(oi.ID), "PROD"),
			Description: oi.Name,
			Quantity:    qty,
			Price:       oi.Price,
			Discount:    decimal.Zero,
			Taxes:       []dto.TaxLine{TaxLineFor(ResolveTax(oi.TaxType, oi.IsTaxed), subtotal)},
		}
	})

	return dto.CreateInvoiceRequest{
		NumberingRangeID: numberingRangeID,
		ReferenceCode:    order.OrderID,
		Observation:      order.Observation,
		PaymentForm:      factus.PaymentFormContado,
		PaymentMethod:    factus.PaymentMethodCode(order.PaymentMethod),
		Customer:         customer,
		Items:            items,
	}
}
