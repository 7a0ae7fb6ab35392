// Package pdf dibuja la tirilla de factura para impresoras térmicas de 80 mm.
//
// Layout (una sola columna):
//
//	┌──────────────────────────────┐
//	│   RESTAURANTE / NIT / DIR    │
//	│ ──────────────────────────── │
//	│ TIPO DE DOCUMENTO + NÚMERO   │
//	│ Fecha / Forma de pago        │
//	│ Resolución DIAN              │
//	│ ──────────────────────────── │
//	│ Cant │ Descripción │ Total   │
//	│ ──────────────────────────── │
//	│ Subtotal / IVA / INC / TOTAL │
//	│ ──────────────────────────── │
//	│ CUFE + QR + pie              │
//	└──────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gastro-facturacion/internal/application/billing"
	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

const (
	paperWidth  = 80.0 // mm
	paperMargin = 3.0
	// alto fijo de encabezado, totales y pie; cada ítem suma itemRowHeight
	baseHeight    = 190.0
	itemRowHeight = 5.0
	cufeChunk     = 40
)

var colorGray = &props.Color{Red: 90, Green: 90, Blue: 90}

var _ billing.TicketRenderer = (*TicketRenderer)(nil)

// TicketRenderer implementa billing.TicketRenderer con Maroto v2.
type TicketRenderer struct{}

// NewTicketRenderer construye el generador.
func NewTicketRenderer() *TicketRenderer { return &TicketRenderer{} }

// RenderTicket genera la tirilla y devuelve los bytes del PDF.
// El alto de la página crece con los ítems para que todo quepa en un solo rollo.
func (r *TicketRenderer) RenderTicket(t *dto.TicketData) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("pdf: tirilla vacía")
	}
	height := baseHeight + float64(len(t.Items))*itemRowHeight
	cfg := config.NewBuilder().
		WithDimensions(paperWidth, height).
		WithLeftMargin(paperMargin).WithRightMargin(paperMargin).
		WithTopMargin(paperMargin).WithBottomMargin(paperMargin).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle("Factura "+t.Invoice.Number, true).
		WithAuthor(t.Restaurant.Name, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(restaurantRows(t.Restaurant)...)
	m.AddRows(separator())
	m.AddRows(invoiceRows(t.Invoice, t.Resolution)...)
	m.AddRows(separator())
	m.AddRows(itemRows(t.Items)...)
	m.AddRows(separator())
	m.AddRows(totalRows(t.Totals)...)
	m.AddRows(separator())
	m.AddRows(footerRows(t)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar tirilla: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func restaurantRows(r dto.TicketRestaurant) []core.Row {
	return []core.Row{
		centered(6, r.Name, props.Text{Style: fontstyle.Bold, Size: 10}),
		centered(4, "NIT: "+r.NIT, props.Text{}),
		centered(4, r.Address, props.Text{Color: colorGray}),
	}
}

func invoiceRows(inv dto.TicketInvoice, res *dto.TicketResolution) []core.Row {
	rows := []core.Row{
		centered(5, documentTitle(inv.DocumentType), props.Text{Style: fontstyle.Bold, Size: 8}),
		centered(5, "No. "+inv.Number, props.Text{Style: fontstyle.Bold, Size: 9}),
		labeled("Fecha:", inv.Date),
		labeled("Forma de pago:", inv.PaymentForm),
	}
	if res != nil {
		resolution := "Resolución DIAN No. " + res.Number
		if res.Date != "" {
			resolution += " del " + res.Date
		}
		rows = append(rows,
			centered(4, resolution, props.Text{Size: 6, Color: colorGray}),
			centered(4, fmt.Sprintf("Prefijo %s del %d al %d", res.Prefix, res.From, res.To), props.Text{Size: 6, Color: colorGray}),
		)
	}
	return rows
}

func itemRows(items []dto.TicketItem) []core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 7}
	rows := []core.Row{
		row.New(5).Add(
			text.NewCol(2, "Cant", header),
			text.NewCol(6, "Descripción", header),
			text.NewCol(4, "Total", props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Right}),
		),
	}
	for _, it := range items {
		rows = append(rows, row.New(itemRowHeight).Add(
			text.NewCol(2, it.Qty.String(), props.Text{}),
			text.NewCol(6, it.Name, props.Text{}),
			text.NewCol(4, money(it.Total), props.Text{Align: align.Right}),
		))
	}
	return rows
}

func totalRows(t dto.TicketTotals) []core.Row {
	rows := []core.Row{labeled("Subtotal:", money(t.Subtotal))}
	if !t.TotalIVA.IsZero() {
		rows = append(rows, labeled("IVA:", money(t.TotalIVA)))
	}
	if !t.TotalICO.IsZero() {
		rows = append(rows, labeled("Impoconsumo:", money(t.TotalICO)))
	}
	grand := props.Text{Style: fontstyle.Bold, Size: 10}
	rows = append(rows, row.New(7).Add(
		text.NewCol(6, "TOTAL:", grand),
		text.NewCol(6, money(t.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	))
	return rows
}

// footerRows CUFE partido, QR y pie.
func footerRows(t *dto.TicketData) []core.Row {
	var rows []core.Row
	if t.Invoice.CUFE != "" {
		rows = append(rows, centered(4, "CUFE:", props.Text{Style: fontstyle.Bold, Size: 6}))
		for _, chunk := range splitEvery(t.Invoice.CUFE, cufeChunk) {
			rows = append(rows, centered(3, chunk, props.Text{Size: 5.5, Color: colorGray}))
		}
	}
	if t.Invoice.QRCode != "" {
		rows = append(rows, row.New(40).Add(
			col.New(12).Add(code.NewQr(t.Invoice.QRCode, props.Rect{Percent: 90, Center: true})),
		))
	}
	rows = append(rows, centered(6, t.FooterMessage, props.Text{Style: fontstyle.Bold, Size: 7, Top: 2}))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func documentTitle(documentType string) string {
	if documentType == string(entity.DocumentCreditNote) {
		return "NOTA CRÉDITO ELECTRÓNICA"
	}
	return "FACTURA ELECTRÓNICA DE VENTA"
}

func separator() core.Row {
	return line.NewRow(3, props.Line{Color: colorGray, Thickness: 0.2})
}

func centered(height float64, s string, p props.Text) core.Row {
	p.Align = align.Center
	return row.New(height).Add(text.NewCol(12, s, p))
}

func labeled(label, value string) core.Row {
	return row.New(4).Add(
		text.NewCol(5, label, props.Text{Style: fontstyle.Bold}),
		text.NewCol(7, value, props.Text{Align: align.Right}),
	)
}

// money "$35.500" sin decimales, separador de miles con punto.
func money(d decimal.Decimal) string {
	s := d.Round(0).Abs().StringFixed(0)
	sign := ""
	if d.Round(0).IsNegative() {
		sign = "-"
	}
	return sign + "$" + formatThousands(s)
}

// formatThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
