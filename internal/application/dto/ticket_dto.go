package dto

import "github.com/shopspring/decimal"

// TicketData proyección de una factura para impresión en tirilla térmica (80 mm).
// Se arma solo con datos locales.
type TicketData struct {
	Restaurant    TicketRestaurant  `json:"restaurant"`
	Invoice       TicketInvoice     `json:"invoice"`
	Resolution    *TicketResolution `json:"resolution"`
	Items         []TicketItem      `json:"items"`
	Totals        TicketTotals      `json:"totals"`
	FooterMessage string            `json:"footer_message"`
}

type TicketRestaurant struct {
	Name    string `json:"name"`
	NIT     string `json:"nit"`
	Address string `json:"address"`
}

type TicketInvoice struct {
	Number       string `json:"number"`
	Date         string `json:"date"`
	CUFE         string `json:"cufe"`
	QRCode       string `json:"qr_code"`
	PaymentForm  string `json:"payment_form"`
	DocumentType string `json:"document_type"`
}

type TicketResolution struct {
	Number string `json:"number"`
	Date   string `json:"date"`
	Prefix string `json:"prefix"`
	From   int64  `json:"from"`
	To     int64  `json:"to"`
}

type TicketItem struct {
	Name  string          `json:"name"`
	Qty   decimal.Decimal `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"`
}

type TicketTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TotalIVA decimal.Decimal `json:"total_iva"`
	TotalICO decimal.Decimal `json:"total_ico"`
	Total    decimal.Decimal `json:"total"`
}
