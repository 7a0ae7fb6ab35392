package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
	"github.com/jhoicas/gastro-facturacion/pkg/factus"
)

const (
	ticketFooter          = "Facturación Electrónica DIAN"
	ticketDefaultAddress  = "Dirección registrada"
	ticketDefaultPayment  = "Contado"
	ticketDateLayout      = "2006-01-02 15:04:05"
	resolutionDateLayout  = "2006-01-02"
	colombiaOffsetSeconds = -5 * 60 * 60
)

// hora de Colombia, sin depender de tzdata en el contenedor
var colombia = time.FixedZone("COT", colombiaOffsetSeconds)

// TicketService arma la tirilla de una factura solo con datos locales (sin llamar a Factus).
type TicketService struct {
	tenants  repository.TenantRepository
	ranges   repository.NumberingRangeRepository
	invoices repository.InvoiceRepository
	renderer TicketRenderer
}

// NewTicketService construye el servicio. renderer puede ser nil si no se sirve el PDF.
func NewTicketService(
	tenants repository.TenantRepository,
	ranges repository.NumberingRangeRepository,
	invoices repository.InvoiceRepository,
	renderer TicketRenderer,
) *TicketService {
	return &TicketService{tenants: tenants, ranges: ranges, invoices: invoices, renderer: renderer}
}

// BuildTicket restaurante, encabezado, resolución, ítems y totales de la factura.
func (s *TicketService) BuildTicket(ctx context.Context, tenantID, number string) (*dto.TicketData, error) {
	inv, err := s.invoices.GetByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", number, err)
	}
	if inv == nil {
		return nil, domain.Errorf(domain.KindNotFound, "Factura %s no encontrada", number)
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound.WithDetail("tenant_id", tenantID)
	}
	resolution, err := s.resolutionFor(ctx, tenantID, inv)
	if err != nil {
		return nil, err
	}

	bill := descend(descend(inv.APIResponse, "data"), "bill")
	items, totals := ticketLines(billItems(inv.APIResponse))
	if payable, ok := payableAmount(bill); ok {
		totals.Total = payable
	}

	qr := inv.QRURL
	if qr == "" {
		var b struct {
			QR flexString `json:"qr"`
		}
		if bill != nil && json.Unmarshal(bill, &b) == nil {
			qr = string(b.QR)
		}
	}

	return &dto.TicketData{
		Restaurant: dto.TicketRestaurant{
			Name:    tenant.Name,
			NIT:     tenant.NIT,
			Address: lo.CoalesceOrEmpty(tenant.Address, ticketDefaultAddress),
		},
		Invoice: dto.TicketInvoice{
			Number:       inv.Number,
			Date:         inv.CreatedAt.In(colombia).Format(ticketDateLayout),
			CUFE:         inv.CUFE,
			QRCode:       qr,
			PaymentForm:  paymentFormName(bill),
			DocumentType: string(inv.DocumentType),
		},
		Resolution:    resolution,
		Items:         items,
		Totals:        totals,
		FooterMessage: ticketFooter,
	}, nil
}

// RenderTicketPDF tirilla en PDF (80 mm).
func (s *TicketService) RenderTicketPDF(ctx context.Context, tenantID, number string) ([]byte, error) {
	if s.renderer == nil {
		return nil, domain.NewError(domain.KindInternal, "generador de PDF no configurado")
	}
	ticket, err := s.BuildTicket(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderTicket(ticket)
	if err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", number, err)
	}
	return pdf, nil
}

// resolutionFor rango del prefijo de la factura: el activo si lo hay, si no el más reciente.
func (s *TicketService) resolutionFor(ctx context.Context, tenantID string, inv *entity.Invoice) (*dto.TicketResolution, error) {
	prefix := inv.Prefix
	if prefix == "" {
		prefix = invoicePrefix(inv.Number)
	}
	if prefix == "" {
		return nil, nil
	}
	list, err := s.ranges.ListByPrefix(ctx, tenantID, prefix)
	if err != nil {
		return nil, fmt.Errorf("list ranges by prefix: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	r := list[0]
	res := &dto.TicketResolution{Number: r.ResolutionNumber, Prefix: r.Prefix, From: r.From, To: r.To}
	if r.ResolutionDate != nil {
		res.Date = r.ResolutionDate.Format(resolutionDateLayout)
	}
	return res, nil
}

// invoicePrefix "SETP-123" → "SETP"; "SETP990000123" → "SETP".
func invoicePrefix(number string) string {
	if i := strings.IndexByte(number, '-'); i > 0 {
		return number[:i]
	}
	return strings.TrimRightFunc(number, func(r rune) bool { return r >= '0' && r <= '9' })
}

// ticketLines ítems simplificados y totales; IVA e impoconsumo se suman por separado.
func ticketLines(items []providerItem) ([]dto.TicketItem, dto.TicketTotals) {
	totals := dto.TicketTotals{Subtotal: decimal.Zero, TotalIVA: decimal.Zero, TotalICO: decimal.Zero}
	lines := make([]dto.TicketItem, 0, len(items))
	for _, it := range items {
		qty, price := it.Quantity.Value, it.Price.Value
		lineTotal := qty.Mul(price)
		totals.Subtotal = totals.Subtotal.Add(lineTotal)

		for _, tax := range lineTaxes(it) {
			switch taxBucket(tax) {
			case factus.TributeIVA:
				totals.TotalIVA = totals.TotalIVA.Add(tax.TaxAmount.Value)
			case factus.TributeImpoconsumo:
				totals.TotalICO = totals.TotalICO.Add(tax.TaxAmount.Value)
			}
		}

		name := string(it.Name)
		if p, ok := parseNamed(it.Product); ok && p.Name != "" {
			name = string(p.Name)
		}
		lines = append(lines, dto.TicketItem{
			Name:  lo.CoalesceOrEmpty(name, "Item"),
			Qty:   qty,
			Price: price,
			Total: lineTotal,
		})
	}
	totals.Total = totals.Subtotal.Add(totals.TotalIVA).Add(totals.TotalICO)
	return lines, totals
}

// lineTaxes taxes[] de la línea; si no viene, el tributo de la línea con su tax_amount.
func lineTaxes(it providerItem) []providerTax {
	var taxes []providerTax
	if it.Taxes != nil && json.Unmarshal(it.Taxes, &taxes) == nil && len(taxes) > 0 {
		return taxes
	}
	if !it.TaxAmount.Set {
		return nil
	}
	tax := providerTax{TaxID: it.TributeID, TaxAmount: it.TaxAmount}
	if n, ok := parseNamed(it.Tribute); ok {
		if !tax.TaxID.Set {
			tax.TaxID = n.ID
		}
		tax.Name = n.Name
	}
	return []providerTax{tax}
}

// taxBucket 1 = IVA, 22 = impoconsumo, 0 = otro.
func taxBucket(t providerTax) int {
	id := t.TaxID
	if !id.Set {
		id = t.ID
	}
	name := strings.ToUpper(string(t.Name))
	switch {
	case strings.Contains(name, "IVA") || id.Value == factus.TributeIVA:
		return factus.TributeIVA
	case strings.Contains(name, "CONS") || strings.Contains(name, "ICO") || id.Value == factus.TributeImpoconsumo:
		return factus.TributeImpoconsumo
	}
	return 0
}

func payableAmount(bill json.RawMessage) (decimal.Decimal, bool) {
	payment := field(bill, "payment")
	if payment == nil || !isObject(payment) {
		return decimal.Zero, false
	}
	var p struct {
		PayableAmount flexDecimal `json:"payable_amount"`
	}
	if json.Unmarshal(payment, &p) != nil || !p.PayableAmount.Set {
		return decimal.Zero, false
	}
	return p.PayableAmount.Value, true
}

func paymentFormName(bill json.RawMessage) string {
	if n, ok := parseNamed(field(bill, "payment_form")); ok && n.Name != "" {
		return string(n.Name)
	}
	return ticketDefaultPayment
}
