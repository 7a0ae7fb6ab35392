package billing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

// Factus no es consistente con los tipos: el mismo campo llega como número o como texto
// según el endpoint. Estos tipos aceptan ambas formas.

// flexString acepta texto, número o booleano.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || isNull(b):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	case b[0] == '{' || b[0] == '[':
		return errors.New("se esperaba un valor simple")
	default:
		*s = flexString(b)
	}
	return nil
}

// flexInt entero que puede venir como "8", 8 u 8.0. Set distingue ausente de cero.
type flexInt struct {
	Value int64
	Set   bool
}

func (i *flexInt) UnmarshalJSON(b []byte) error {
	d, ok, err := jsonNumber(b)
	if err != nil {
		return err
	}
	if !ok {
		*i = flexInt{}
		return nil
	}
	if !d.Equal(d.Truncate(0)) {
		return fmt.Errorf("%s no es un entero", d)
	}
	*i = flexInt{Value: d.IntPart(), Set: true}
	return nil
}

// flexDecimal monto que puede venir como "10000.00" o 10000.
type flexDecimal struct {
	Value decimal.Decimal
	Set   bool
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	v, ok, err := jsonNumber(b)
	if err != nil {
		return err
	}
	*d = flexDecimal{Value: v, Set: ok}
	return nil
}

// flexBool acepta true/false, 1/0 y sus versiones en texto.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	switch s {
	case "true", "1", "si", "sí", "yes":
		*f = true
	case "false", "0", "no", "", "null":
		*f = false
	default:
		return fmt.Errorf("%q no es booleano", s)
	}
	return nil
}

func jsonNumber(b []byte) (decimal.Decimal, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || isNull(b) {
		return decimal.Zero, false, nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return decimal.Zero, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, false, nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%q no es numérico", s)
	}
	return d, true, nil
}

func isNull(b []byte) bool { return string(b) == "null" }

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

// field devuelve el valor crudo de key si raw es un objeto y el campo no es null.
func field(raw json.RawMessage, key string) json.RawMessage {
	var m map[string]json.RawMessage
	if json.Unmarshal(raw, &m) != nil {
		return nil
	}
	v, ok := m[key]
	if !ok || isNull(bytes.TrimSpace(v)) {
		return nil
	}
	return v
}

// descend baja a raw[key] si es un objeto; si no, se queda en raw.
func descend(raw json.RawMessage, key string) json.RawMessage {
	if v := field(raw, key); v != nil && isObject(v) {
		return v
	}
	return raw
}

// ─── Facturas ────────────────────────────────────────────────────────────────

type providerBill struct {
	ID        flexInt     `json:"id"`
	Number    flexString  `json:"number"`
	CUFE      flexString  `json:"cufe"`
	Status    flexString  `json:"status"`
	PublicURL flexString  `json:"public_url"`
	PDFURL    flexString  `json:"pdf_url"`
	XMLURL    flexString  `json:"xml_url"`
	QR        flexString  `json:"qr"`
	Total     flexDecimal `json:"total"`
	CreatedAt flexString  `json:"created_at"`

	// numbering_range.prefix, al lado de bill
	Prefix string `json:"-"`
}

// documentURL PDF público del documento.
func (b *providerBill) documentURL() string {
	if b.PublicURL != "" {
		return string(b.PublicURL)
	}
	return string(b.PDFURL)
}

// parseBill lee la factura de data.bill, data o la raíz, según lo que traiga la respuesta.
func parseBill(raw json.RawMessage) (*providerBill, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.ErrServerError.WithDetail("response", "respuesta vacía de Factus")
	}
	data := descend(raw, "data")
	var b providerBill
	if err := json.Unmarshal(descend(data, "bill"), &b); err != nil {
		return nil, domain.ErrServerError.WithDetail("response", "respuesta de factura ilegible").WithCause(err)
	}
	if nr := field(data, "numbering_range"); nr != nil {
		var p struct {
			Prefix flexString `json:"prefix"`
		}
		if json.Unmarshal(nr, &p) == nil {
			b.Prefix = string(p.Prefix)
		}
	}
	return &b, nil
}

// providerItem línea de una factura tal como la devuelve Factus (show o creación).
type providerItem struct {
	CodeReference    flexString      `json:"code_reference"`
	Name             flexString      `json:"name"`
	Quantity         flexDecimal     `json:"quantity"`
	Price            flexDecimal     `json:"price"`
	Discount         flexDecimal     `json:"discount"`
	DiscountRate     flexDecimal     `json:"discount_rate"`
	TaxRate          flexDecimal     `json:"tax_rate"`
	TaxAmount        flexDecimal     `json:"tax_amount"`
	Total            flexDecimal     `json:"total"`
	UnitMeasureID    flexInt         `json:"unit_measure_id"`
	StandardCodeID   flexInt         `json:"standard_code_id"`
	IsExcluded       flexInt         `json:"is_excluded"`
	TributeID        flexInt         `json:"tribute_id"`
	Tribute          json.RawMessage `json:"tribute"`
	Product          json.RawMessage `json:"product"`
	Taxes            json.RawMessage `json:"taxes"`
	WithholdingTaxes json.RawMessage `json:"withholding_taxes"`
}

// providerTax impuesto de una línea: {tax_id|id, name, tax_amount}.
type providerTax struct {
	TaxID     flexInt     `json:"tax_id"`
	ID        flexInt     `json:"id"`
	Name      flexString  `json:"name"`
	TaxAmount flexDecimal `json:"tax_amount"`
}

// named {id, name} de Factus (tribute, product, payment_form...).
type named struct {
	ID   flexInt    `json:"id"`
	Code flexString `json:"code"`
	Name flexString `json:"name"`
}

func parseNamed(raw json.RawMessage) (named, bool) {
	var n named
	if raw == nil || !isObject(raw) || json.Unmarshal(raw, &n) != nil {
		return named{}, false
	}
	return n, true
}

// billItems ítems de data.items o, si no hay, de data.bill.items. Los ilegibles se omiten.
func billItems(raw json.RawMessage) []providerItem {
	data := descend(raw, "data")
	list := field(data, "items")
	if list == nil {
		list = field(descend(data, "bill"), "items")
	}
	var items []json.RawMessage
	if list == nil || json.Unmarshal(list, &items) != nil {
		return nil
	}
	out := make([]providerItem, 0, len(items))
	for _, it := range items {
		var p providerItem
		if !isObject(it) || json.Unmarshal(it, &p) != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ─── Rangos de numeración ────────────────────────────────────────────────────

type providerRange struct {
	ID               flexInt    `json:"id"`
	Document         flexString `json:"document"`
	Prefix           flexString `json:"prefix"`
	From             flexInt    `json:"from"`
	To               flexInt    `json:"to"`
	Current          flexInt    `json:"current"`
	ResolutionNumber flexString `json:"resolution_number"`
	ResolutionDate   flexString `json:"resolution_date"`
	TechnicalKey     flexString `json:"technical_key"`
	StartDate        flexString `json:"start_date"`
	EndDate          flexString `json:"end_date"`
	IsExpired        flexBool   `json:"is_expired"`
}

// maxListingDepth {data:{data:[...]}} es lo más anidado que devuelve Factus.
const maxListingDepth = 3

// rangeListing extrae la lista de rangos: [...], {data:[...]} o {data:{data:[...], page...}}.
func rangeListing(raw json.RawMessage) ([]json.RawMessage, error) {
	body := bytes.TrimSpace(raw)
	for depth := 0; depth < maxListingDepth; depth++ {
		switch {
		case len(body) == 0 || isNull(body):
			return nil, nil
		case body[0] == '[':
			var items []json.RawMessage
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, fmt.Errorf("listado de rangos ilegible: %w", err)
			}
			return items, nil
		case body[0] == '{':
			data := field(body, "data")
			if data == nil {
				return nil, errors.New("la respuesta de rangos no trae el campo data")
			}
			body = bytes.TrimSpace(data)
		default:
			return nil, errors.New("forma inesperada en la respuesta de rangos")
		}
	}
	return nil, errors.New("respuesta de rangos con anidamiento inesperado")
}

// parseRanges convierte cada ítem; los inválidos se reportan por separado sin cortar el resto.
func parseRanges(items []json.RawMessage) ([]*entity.NumberingRange, []dto.RangeItemError) {
	var (
		out  []*entity.NumberingRange
		errs []dto.RangeItemError
	)
	for i, item := range items {
		r, err := parseRange(item)
		if err != nil {
			errs = append(errs, dto.RangeItemError{Index: i, FactusID: peekID(item), Error: err.Error()})
			continue
		}
		out = append(out, r)
	}
	return out, errs
}

func parseRange(item json.RawMessage) (*entity.NumberingRange, error) {
	if !isObject(item) {
		return nil, errors.New("el ítem no es un objeto")
	}
	var p providerRange
	if err := json.Unmarshal(item, &p); err != nil {
		return nil, fmt.Errorf("ítem ilegible: %w", err)
	}
	switch {
	case !p.ID.Set:
		return nil, errors.New("falta id")
	case p.Prefix == "":
		return nil, errors.New("falta prefix")
	case !p.From.Set || !p.To.Set:
		return nil, errors.New("faltan los límites from/to")
	case p.From.Value > p.To.Value:
		return nil, fmt.Errorf("from (%d) mayor que to (%d)", p.From.Value, p.To.Value)
	case p.Current.Value < 0:
		return nil, fmt.Errorf("current negativo (%d)", p.Current.Value)
	}
	return &entity.NumberingRange{
		FactusID:         p.ID.Value,
		Document:         string(p.Document),
		ResolutionNumber: string(p.ResolutionNumber),
		Prefix:           string(p.Prefix),
		From:             p.From.Value,
		To:               p.To.Value,
		Current:          p.Current.Value,
		ResolutionDate:   parseProviderDate(string(p.ResolutionDate)),
		StartDate:        parseProviderDate(string(p.StartDate)),
		ExpirationDate:   parseProviderDate(string(p.EndDate)),
		TechnicalKey:     string(p.TechnicalKey),
		IsExpired:        bool(p.IsExpired),
	}, nil
}

func peekID(item json.RawMessage) *int64 {
	var p struct {
		ID flexInt `json:"id"`
	}
	if json.Unmarshal(item, &p) != nil || !p.ID.Set {
		return nil
	}
	return &p.ID.Value
}

var providerDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseProviderDate fecha de Factus en cualquiera de sus formatos; nil si no se reconoce.
func parseProviderDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range providerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
