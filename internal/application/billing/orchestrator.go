package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
	"github.com/jhoicas/gastro-facturacion/pkg/factus"
)

const (
	billsValidatePath = "/v1/bills/validate"
	billsShowPath     = "/v1/bills/show"

	// claimLease cubre la llamada a Factus con su reintento por 401
	claimLease = 2 * time.Minute
)

// InvoiceOrchestrator emite, valida y anula documentos electrónicos en Factus
// y mantiene su proyección local.
//
//	CreateInvoice      → CREATED
//	ValidateInvoice    → VALIDATED | ERROR_VALIDATING (reintentable)
//	CreateCreditNote   → original ANNULLED + nota crédito nueva
type InvoiceOrchestrator struct {
	ranges   repository.NumberingRangeRepository
	invoices repository.InvoiceRepository
	tx       BillingTxRunner
	gateways GatewayFactory
	log      zerolog.Logger
	now      func() time.Time
}

// NewInvoiceOrchestrator construye el orquestador.
func NewInvoiceOrchestrator(
	ranges repository.NumberingRangeRepository,
	invoices repository.InvoiceRepository,
	tx BillingTxRunner,
	gateways GatewayFactory,
	log zerolog.Logger,
) *InvoiceOrchestrator {
	return &InvoiceOrchestrator{
		ranges:   ranges,
		invoices: invoices,
		tx:       tx,
		gateways: gateways,
		log:      log,
		now:      time.Now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Emisión
// ═══════════════════════════════════════════════════════════════════════════

// CreateInvoice ruta general: el POS envía ítems e impuestos completos.
func (o *InvoiceOrchestrator) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := validateItemAmounts(req.Items); err != nil {
		return nil, err
	}
	rng, err := o.ownedRange(ctx, tenantID, req.NumberingRangeID)
	if err != nil {
		return nil, err
	}
	return o.submit(ctx, tenantID, rng, req)
}

// CreateInvoiceFromOrder ruta simplificada del restaurante. Sin numbering_range_id usa el rango activo.
func (o *InvoiceOrchestrator) CreateInvoiceFromOrder(ctx context.Context, tenantID string, order dto.OrderInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(order); err != nil {
		return nil, err
	}
	for i, it := range order.Items {
		if it.Quantity.Valid && !it.Quantity.Decimal.IsPositive() {
			return nil, invalidItem(i, "quantity", "la cantidad debe ser mayor que cero")
		}
		if it.Price.IsNegative() {
			return nil, invalidItem(i, "price", "el precio no puede ser negativo")
		}
	}

	var (
		rng *entity.NumberingRange
		err error
	)
	if order.NumberingRangeID > 0 {
		rng, err = o.ownedRange(ctx, tenantID, order.NumberingRangeID)
	} else {
		rng, err = o.activeRange(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}
	return o.submit(ctx, tenantID, rng, MapOrderToInvoice(order, rng.FactusID))
}

// ownedRange resuelve el rango por su id de Factus y exige que sea del tenant.
// Usar el rango de otro restaurante es FORBIDDEN y no deja rastro en facturas.
func (o *InvoiceOrchestrator) ownedRange(ctx context.Context, tenantID string, factusID int64) (*entity.NumberingRange, error) {
	matches, err := o.ranges.FindByFactusID(ctx, factusID)
	if err != nil {
		return nil, fmt.Errorf("find range %d: %w", factusID, err)
	}
	if len(matches) == 0 {
		return nil, domain.Errorf(domain.KindInvalidInput,
			"el rango de numeración %d no existe en el sistema local, sincronice los rangos", factusID).
			WithDetail("numbering_range_id", factusID)
	}
	if r, ok := lo.Find(matches, func(r *entity.NumberingRange) bool { return r.TenantID == tenantID }); ok {
		return r, nil
	}
	o.log.Warn().
		Str("tenant_id", tenantID).
		Int64("numbering_range_id", factusID).
		Msg("intento de facturar con un rango de otro restaurante")
	return nil, domain.NewError(domain.KindForbidden, "el rango de numeración no pertenece a este restaurante").
		WithDetail("numbering_range_id", factusID)
}

func (o *InvoiceOrchestrator) activeRange(ctx context.Context, tenantID string) (*entity.NumberingRange, error) {
	rng, err := o.ranges.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get active range: %w", err)
	}
	if rng == nil {
		return nil, domain.NewError(domain.KindInvalidState, "No hay rango de numeración activo. Sincronice y active uno.")
	}
	if !rng.IsValidAt(o.now()) {
		return nil, domain.NewError(domain.KindInvalidState, "El rango activo no es válido (vencido o agotado)").
			WithDetail("range_id", rng.ID)
	}
	return rng, nil
}

// submit reserva el consecutivo local, envía a Factus y guarda la factura en CREATED
// con la respuesta cruda para reconstruir la tirilla.
func (o *InvoiceOrchestrator) submit(ctx context.Context, tenantID string, rng *entity.NumberingRange, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	payload, totals := BuildInvoicePayload(req)
	payload.NumberingRangeID = rng.FactusID

	log := o.log.With().
		Str("tenant_id", tenantID).
		Str("reference_code", req.ReferenceCode).
		Str("prefix", rng.Prefix).
		Logger()

	// el consecutivo se reserva con la sesión ya abierta: un tenant inactivo o sin credenciales no lo consume
	var (
		raw      json.RawMessage
		reserved *dto.ReservedNumberResponse
	)
	err := withGateway(ctx, o.gateways, tenantID, func(gw Gateway) error {
		var err error
		if reserved, err = reserveNumber(ctx, o.ranges, tenantID, rng.ID); err != nil {
			return err
		}
		raw, err = gw.Post(ctx, billsValidatePath, payload)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("Factus rechazó la factura")
		return nil, err
	}
	log = log.With().Int64("reserved_number", reserved.Number).Logger()

	bill, err := parseBill(raw)
	if err != nil {
		log.Error().Err(err).Msg("respuesta de creación ilegible")
		return nil, err
	}

	inv := &entity.Invoice{
		TenantID:       tenantID,
		Number:         lo.CoalesceOrEmpty(string(bill.Number), fmt.Sprintf("%s%d", rng.Prefix, reserved.Number)),
		Prefix:         lo.CoalesceOrEmpty(bill.Prefix, rng.Prefix),
		CUFE:           string(bill.CUFE),
		FactusID:       bill.ID.Value,
		OrderReference: req.ReferenceCode,
		Total:          totals.Total,
		Status:         entity.InvoiceStatusCreated,
		DocumentType:   entity.DocumentInvoice,
		PDFURL:         bill.documentURL(),
		XMLURL:         string(bill.XMLURL),
		QRURL:          string(bill.QR),
		APIResponse:    raw,
	}
	if err := o.invoices.Create(ctx, inv); err != nil {
		// ya existe en Factus; queda en el log para conciliar
		log.Error().Err(err).Str("number", inv.Number).Str("cufe", inv.CUFE).Msg("factura emitida en Factus pero no guardada localmente")
		return nil, fmt.Errorf("guardar factura %s: %w", inv.Number, err)
	}

	log.Info().Str("number", inv.Number).Str("total", inv.Total.StringFixed(2)).Msg("factura creada en Factus")
	return toInvoiceResponse(inv), nil
}

func validateItemAmounts(items []dto.InvoiceItemRequest) error {
	for i, it := range items {
		switch {
		case !it.Quantity.IsPositive():
			return invalidItem(i, "quantity", "la cantidad debe ser mayor que cero")
		case it.Price.IsNegative():
			return invalidItem(i, "price", "el precio no puede ser negativo")
		case it.Discount.IsNegative() || it.Discount.GreaterThan(it.Quantity.Mul(it.Price)):
			return invalidItem(i, "discount", "el descuento debe estar entre cero y el valor de la línea")
		}
		for _, t := range it.Taxes {
			if t.TaxAmount.IsNegative() || t.TaxableAmount.IsNegative() || t.Percent.IsNegative() || t.Percent.GreaterThan(hundred) {
				return invalidItem(i, "taxes", "impuesto fuera de rango")
			}
		}
	}
	return nil
}

func invalidItem(i int, fieldName, msg string) error {
	return domain.NewError(domain.KindInvalidInput, msg).
		WithDetail("fields", map[string]string{fmt.Sprintf("items[%d].%s", i, fieldName): msg})
}

// ═══════════════════════════════════════════════════════════════════════════
// Validación DIAN
// ═══════════════════════════════════════════════════════════════════════════

// ValidateInvoice envía la factura a validación. Si Factus falla, la factura queda en
// ERROR_VALIDATING con el detalle del error y el error se devuelve igual.
func (o *InvoiceOrchestrator) ValidateInvoice(ctx context.Context, tenantID, number string) (*dto.ValidateInvoiceResponse, error) {
	inv, err := o.localInvoice(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	if !inv.CanValidate() {
		return nil, domain.Errorf(domain.KindInvalidState, "la factura %s está en estado %s y no se puede validar", number, inv.Status).
			WithDetail("status", inv.Status)
	}

	if err := o.claim(ctx, inv, entity.ValidatableStatuses...); err != nil {
		return nil, err
	}
	settled := false
	defer func() {
		if !settled {
			o.release(ctx, inv)
		}
	}()

	var raw json.RawMessage
	err = withGateway(ctx, o.gateways, tenantID, func(gw Gateway) error {
		var err error
		raw, err = gw.Post(ctx, billsValidatePath+"/"+url.PathEscape(number), nil)
		return err
	})
	var bill *providerBill
	if err == nil {
		bill, err = parseBill(raw)
	}
	if err != nil {
		settled = o.markValidationError(ctx, inv, err)
		return nil, err
	}

	now := o.now()
	inv.CUFE = lo.CoalesceOrEmpty(string(bill.CUFE), inv.CUFE)
	inv.QRURL = lo.CoalesceOrEmpty(string(bill.QR), inv.QRURL)
	inv.XMLURL = lo.CoalesceOrEmpty(string(bill.XMLURL), inv.XMLURL)
	inv.PDFURL = lo.CoalesceOrEmpty(bill.documentURL(), inv.PDFURL)
	inv.Status = entity.InvoiceStatusValidated
	inv.ValidatedAt = &now
	inv.ErrorDetail = nil
	if err := o.invoices.Transition(ctx, inv, entity.ValidatableStatuses...); err != nil {
		o.log.Error().Err(err).Str("tenant_id", tenantID).Str("number", number).Str("cufe", inv.CUFE).
			Msg("factura validada en Factus pero no actualizada localmente")
		return nil, fmt.Errorf("actualizar factura %s: %w", number, err)
	}
	settled = true

	o.log.Info().Str("tenant_id", tenantID).Str("number", number).Str("cufe", inv.CUFE).Msg("factura validada ante la DIAN")
	return &dto.ValidateInvoiceResponse{
		Status:  "success",
		Message: "Factura validada exitosamente",
		Data: dto.ValidatedInvoiceData{
			CUFE:   inv.CUFE,
			QRCode: inv.QRURL,
			Status: string(inv.Status),
			PDFURL: inv.PDFURL,
			XMLURL: inv.XMLURL,
		},
	}, nil
}

// claim toma la factura antes de llamar a Factus. Otra solicitud en curso sobre la misma
// factura, o un cambio de estado desde la lectura, es CONFLICT.
func (o *InvoiceOrchestrator) claim(ctx context.Context, inv *entity.Invoice, from ...entity.InvoiceStatus) error {
	ok, err := o.invoices.Claim(ctx, inv.TenantID, inv.ID, claimLease, from...)
	if err != nil {
		return fmt.Errorf("tomar factura %s: %w", inv.Number, err)
	}
	if !ok {
		return domain.Errorf(domain.KindConflict, "la factura %s se está procesando o cambió de estado, intente de nuevo", inv.Number)
	}
	return nil
}

func (o *InvoiceOrchestrator) release(ctx context.Context, inv *entity.Invoice) {
	if err := o.invoices.Release(context.WithoutCancel(ctx), inv.TenantID, inv.ID); err != nil {
		o.log.Warn().Err(err).Str("tenant_id", inv.TenantID).Str("number", inv.Number).Msg("no se pudo liberar la factura")
	}
}

// markValidationError persiste ERROR_VALIDATING aunque el contexto del request ya esté cancelado.
// Solo desde CREATED o ERROR_VALIDATING: una factura que otro proceso ya validó no se toca.
func (o *InvoiceOrchestrator) markValidationError(ctx context.Context, inv *entity.Invoice, cause error) bool {
	detail := map[string]any{
		"code":      domain.KindOf(cause),
		"message":   cause.Error(),
		"failed_at": o.now().UTC(),
	}
	if derr, ok := domain.AsError(cause); ok {
		detail["message"] = derr.Message
		if derr.Status != 0 {
			detail["status"] = derr.Status
		}
		if len(derr.Details) > 0 {
			detail["details"] = derr.Details
		}
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		raw, _ = json.Marshal(map[string]any{"code": domain.KindOf(cause), "message": cause.Error()})
	}

	inv.Status = entity.InvoiceStatusErrorValidating
	inv.ErrorDetail = raw
	if err := o.invoices.Transition(context.WithoutCancel(ctx), inv, entity.ValidatableStatuses...); err != nil {
		o.log.Error().Err(err).AnErr("cause", cause).Str("tenant_id", inv.TenantID).Str("number", inv.Number).Msg("no se pudo guardar ERROR_VALIDATING")
		return false
	}
	o.log.Warn().Err(cause).Str("tenant_id", inv.TenantID).Str("number", inv.Number).Msg("validación fallida, factura en ERROR_VALIDATING")
	return true
}

// ═══════════════════════════════════════════════════════════════════════════
// Nota crédito
// ═══════════════════════════════════════════════════════════════════════════

// creditNoteItem línea replicada de la factura original.
type creditNoteItem struct {
	CodeReference    string          `json:"code_reference"`
	Name             string          `json:"name"`
	Quantity         json.Number     `json:"quantity"`
	Price            json.Number     `json:"price"`
	DiscountRate     json.Number     `json:"discount_rate"`
	Discount         json.Number     `json:"discount"`
	TaxRate          json.Number     `json:"tax_rate"`
	UnitMeasureID    int64           `json:"unit_measure_id"`
	StandardCodeID   int64           `json:"standard_code_id"`
	IsExcluded       int64           `json:"is_excluded"`
	TributeID        int64           `json:"tribute_id"`
	Taxes            json.RawMessage `json:"taxes"`
	WithholdingTaxes json.RawMessage `json:"withholding_taxes"`
}

type creditNotePayload struct {
	NumberingRangeID int64            `json:"numbering_range_id"`
	ReferenceCode    string           `json:"reference_code"`
	Observation      string           `json:"observation"`
	BillingReference billingReference `json:"billing_reference"`
	Items            []creditNoteItem `json:"items"`
	Customer         json.RawMessage  `json:"customer"`
	PaymentForm      int64            `json:"payment_form"`
	PaymentMethod    int64            `json:"payment_method"`
}

// CreateCreditNote anula una factura VALIDATED: trae sus ítems de Factus, emite la nota crédito
// contra el rango NC y, en una transacción, marca la original ANNULLED y guarda la nota.
func (o *InvoiceOrchestrator) CreateCreditNote(ctx context.Context, tenantID string, req dto.CreditNoteRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	reason := lo.CoalesceOrEmpty(req.ReasonCode, factus.CreditNoteAnulacion)
	if !factus.ValidCreditNoteConcepts[reason] {
		return nil, domain.Errorf(domain.KindInvalidInput, "concepto de nota crédito inválido: %s", reason)
	}

	original, err := o.localInvoice(ctx, tenantID, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if !original.CanAnnul() {
		return nil, domain.Errorf(domain.KindInvalidState,
			"la factura está en estado %s, solo se pueden anular facturas VALIDATED", original.Status).
			WithDetail("status", original.Status)
	}
	ncRange, err := o.creditNoteRange(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := o.claim(ctx, original, entity.InvoiceStatusValidated); err != nil {
		return nil, err
	}
	// emitida la nota en Factus la toma se conserva hasta vencer, aunque falle el guardado local
	emitted := false
	defer func() {
		if !emitted {
			o.release(ctx, original)
		}
	}()

	var raw json.RawMessage
	err = withGateway(ctx, o.gateways, tenantID, func(gw Gateway) error {
		shown, err := gw.Get(ctx, billsShowPath+"/"+url.PathEscape(original.Number), nil)
		if err != nil {
			return err
		}
		payload, err := buildCreditNotePayload(shown, original, ncRange.FactusID, reason, factus.SanitizeText(req.Description))
		if err != nil {
			return err
		}
		if _, err := reserveNumber(ctx, o.ranges, tenantID, ncRange.ID); err != nil {
			return err
		}
		raw, err = gw.Post(ctx, billsValidatePath, payload)
		return err
	})
	if err != nil {
		o.log.Error().Err(err).Str("tenant_id", tenantID).Str("invoice", original.Number).Msg("no se pudo crear la nota crédito")
		return nil, err
	}
	emitted = true

	bill, err := parseBill(raw)
	if err != nil {
		return nil, err
	}
	status := entity.InvoiceStatusCreated
	if strings.EqualFold(string(bill.Status), "validated") {
		status = entity.InvoiceStatusValidated
	}
	note := &entity.Invoice{
		TenantID:         tenantID,
		Number:           string(bill.Number),
		Prefix:           lo.CoalesceOrEmpty(bill.Prefix, ncRange.Prefix),
		CUFE:             string(bill.CUFE),
		FactusID:         bill.ID.Value,
		OrderReference:   "NC-" + original.Number,
		Total:            original.Total,
		Status:           status,
		DocumentType:     entity.DocumentCreditNote,
		RelatedInvoiceID: &original.ID,
		PDFURL:           bill.documentURL(),
		XMLURL:           string(bill.XMLURL),
		QRURL:            string(bill.QR),
		APIResponse:      raw,
	}
	if status == entity.InvoiceStatusValidated {
		now := o.now()
		note.ValidatedAt = &now
	}

	err = o.tx.RunBilling(ctx, func(_ repository.NumberingRangeRepository, invoices repository.InvoiceRepository) error {
		original.Status = entity.InvoiceStatusAnnulled
		if err := invoices.Transition(ctx, original, entity.InvoiceStatusValidated); err != nil {
			return err
		}
		return invoices.Create(ctx, note)
	})
	if err != nil {
		o.log.Error().Err(err).
			Str("tenant_id", tenantID).
			Str("invoice", original.Number).
			Str("credit_note", note.Number).
			Msg("nota crédito emitida en Factus pero no guardada localmente")
		return nil, fmt.Errorf("guardar nota crédito %s: %w", note.Number, err)
	}

	o.log.Info().Str("tenant_id", tenantID).Str("invoice", original.Number).Str("credit_note", note.Number).Msg("factura anulada con nota crédito")
	return toInvoiceResponse(note), nil
}

// creditNoteRange exige que el rango activo del tenant sea el de Notas Crédito (prefijo NC).
func (o *InvoiceOrchestrator) creditNoteRange(ctx context.Context, tenantID string) (*entity.NumberingRange, error) {
	rng, err := o.ranges.GetActiveByPrefix(ctx, tenantID, factus.CreditNotePrefix)
	if err != nil {
		return nil, fmt.Errorf("get credit note range: %w", err)
	}
	if rng == nil {
		return nil, domain.NewError(domain.KindInvalidState,
			"No se encontró un rango de numeración activo para Notas Crédito (prefijo 'NC')")
	}
	if !rng.IsUsableAt(o.now()) {
		return nil, domain.Errorf(domain.KindInvalidState, "el rango de Notas Crédito %s no es válido (vencido o agotado)", rng.Prefix).
			WithDetail("range_id", rng.ID)
	}
	return rng, nil
}

func buildCreditNotePayload(shown json.RawMessage, original *entity.Invoice, rangeID int64, reason, description string) (*creditNotePayload, error) {
	data := descend(shown, "data")
	bill := descend(data, "bill")

	var head struct {
		Number          flexString      `json:"number"`
		CUFE            flexString      `json:"cufe"`
		CreatedAt       flexString      `json:"created_at"`
		PaymentFormID   flexInt         `json:"payment_form_id"`
		PaymentMethodID flexInt         `json:"payment_method_id"`
		PaymentForm     json.RawMessage `json:"payment_form"`
		PaymentMethod   json.RawMessage `json:"payment_method"`
	}
	if err := json.Unmarshal(bill, &head); err != nil {
		return nil, domain.NewError(domain.KindValidationFailed, "No se pudieron leer los datos de la factura original").WithCause(err)
	}

	customer := field(bill, "customer")
	if customer == nil {
		customer = field(data, "customer")
	}
	if customer == nil {
		return nil, domain.NewError(domain.KindValidationFailed, "la factura original no trae datos del cliente")
	}

	items := billItems(shown)
	if len(items) == 0 {
		return nil, domain.NewError(domain.KindValidationFailed, "la factura original no trae ítems")
	}

	issueDate := original.CreatedAt.Format("2006-01-02")
	if f := strings.Fields(strings.ReplaceAll(string(head.CreatedAt), "T", " ")); len(f) > 0 {
		issueDate = f[0]
	}

	return &creditNotePayload{
		NumberingRangeID: rangeID,
		ReferenceCode:    "NC-" + original.Number,
		Observation:      description,
		BillingReference: billingReference{
			Number:                         lo.CoalesceOrEmpty(string(head.Number), original.Number),
			UUID:                           lo.CoalesceOrEmpty(string(head.CUFE), original.CUFE),
			IssueDate:                      issueDate,
			DiscrepancyResponseCode:        reason,
			DiscrepancyResponseDescription: description,
		},
		Items:         lo.Map(items, func(it providerItem, _ int) creditNoteItem { return replicateItem(it) }),
		Customer:      customer,
		PaymentForm:   codeOr(head.PaymentFormID, head.PaymentForm, factus.PaymentFormContado),
		PaymentMethod: codeOr(head.PaymentMethodID, head.PaymentMethod, factus.PaymentMethodEfectivo),
	}, nil
}

// codeOr id explícito, o el code del objeto {code, name}, o el valor por defecto.
func codeOr(id flexInt, obj json.RawMessage, def int64) int64 {
	if id.Set {
		return id.Value
	}
	if n, ok := parseNamed(obj); ok {
		if d, err := decimal.NewFromString(string(n.Code)); err == nil {
			return d.IntPart()
		}
		if n.ID.Set {
			return n.ID.Value
		}
	}
	return def
}

func replicateItem(it providerItem) creditNoteItem {
	tribute := it.TributeID
	if !tribute.Set {
		if n, ok := parseNamed(it.Tribute); ok {
			tribute = n.ID
		}
	}
	return creditNoteItem{
		CodeReference:    string(it.CodeReference),
		Name:             string(it.Name),
		Quantity:         num(it.Quantity.Value),
		Price:            num(it.Price.Value),
		DiscountRate:     num(it.DiscountRate.Value),
		Discount:         num(it.Discount.Value),
		TaxRate:          num(it.TaxRate.Value),
		UnitMeasureID:    intOr(it.UnitMeasureID, factus.UnitMeasureUnidad),
		StandardCodeID:   intOr(it.StandardCodeID, factus.StandardCodeInterno),
		IsExcluded:       intOr(it.IsExcluded, 0),
		TributeID:        intOr(tribute, factus.TributeIVA),
		Taxes:            rawOrEmptyList(it.Taxes),
		WithholdingTaxes: rawOrEmptyList(it.WithholdingTaxes),
	}
}

func intOr(v flexInt, def int64) int64 {
	if v.Set {
		return v.Value
	}
	return def
}

func rawOrEmptyList(raw json.RawMessage) json.RawMessage {
	if raw == nil || isNull(raw) {
		return json.RawMessage("[]")
	}
	return raw
}

// ═══════════════════════════════════════════════════════════════════════════
// Consultas
// ═══════════════════════════════════════════════════════════════════════════

// GetInvoice documento completo desde Factus, previa verificación de que es del tenant.
func (o *InvoiceOrchestrator) GetInvoice(ctx context.Context, tenantID, number string) (json.RawMessage, error) {
	if _, err := o.localInvoice(ctx, tenantID, number); err != nil {
		return nil, err
	}
	raw, err := o.showInvoice(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	if data := field(raw, "data"); data != nil {
		return data, nil
	}
	return raw, nil
}

// GetInvoicePDF URL del PDF según Factus; si no la informa, la guardada localmente.
func (o *InvoiceOrchestrator) GetInvoicePDF(ctx context.Context, tenantID, number string) (*dto.InvoicePDFResponse, error) {
	inv, err := o.localInvoice(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	raw, err := o.showInvoice(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}

	data := descend(raw, "data")
	var top struct {
		PDFURL flexString `json:"pdf_url"`
	}
	_ = json.Unmarshal(data, &top)
	pdf := string(top.PDFURL)
	if pdf == "" {
		if bill, err := parseBill(raw); err == nil {
			pdf = bill.documentURL()
		}
	}
	pdf = lo.CoalesceOrEmpty(pdf, inv.PDFURL)
	if pdf == "" {
		return nil, domain.Errorf(domain.KindNotFound, "PDF no disponible para la factura %s", number)
	}
	return &dto.InvoicePDFResponse{Number: number, PDFURL: pdf}, nil
}

func (o *InvoiceOrchestrator) showInvoice(ctx context.Context, tenantID, number string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := withGateway(ctx, o.gateways, tenantID, func(gw Gateway) error {
		var err error
		raw, err = gw.Get(ctx, billsShowPath+"/"+url.PathEscape(number), nil)
		return err
	})
	return raw, err
}

// localInvoice factura del tenant o NOT_FOUND. Una factura de otro tenant no se distingue de una inexistente.
func (o *InvoiceOrchestrator) localInvoice(ctx context.Context, tenantID, number string) (*entity.Invoice, error) {
	inv, err := o.invoices.GetByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", number, err)
	}
	if inv == nil {
		return nil, domain.Errorf(domain.KindNotFound, "Factura %s no encontrada", number)
	}
	return inv, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:           inv.FactusID,
		Number:       inv.Number,
		Prefix:       inv.Prefix,
		CUFE:         inv.CUFE,
		Status:       string(inv.Status),
		DocumentType: string(inv.DocumentType),
		Total:        inv.Total,
		PDFURL:       inv.PDFURL,
		XMLURL:       inv.XMLURL,
		QRCode:       inv.QRURL,
		ValidatedAt:  inv.ValidatedAt,
	}
	if !inv.CreatedAt.IsZero() {
		created := inv.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
