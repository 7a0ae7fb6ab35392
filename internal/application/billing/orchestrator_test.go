package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gastro-facturacion/internal/application/billing"
	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

const createdBillResponse = `{
	"status": "Created",
	"message": "Documento con el número SETP990000000 creado",
	"data": {
		"bill": {
			"id": 101,
			"number": "SETP990000000",
			"cufe": "",
			"status": 0,
			"public_url": "https://factus.test/documents/101",
			"qr": "https://catalogo-vpfe.dian.gov.co/document/searchqr?documentkey=x",
			"total": "21600.00",
			"created_at": "15-03-2026 12:30:00"
		},
		"numbering_range": {"prefix": "SETP", "from": 990000000, "to": 995000000},
		"items": []
	}
}`

type orchestratorFixture struct {
	ranges   *memRanges
	invoices *memInvoices
	tx       *fakeTx
	provider *fakeProvider
	orch     *billing.InvoiceOrchestrator
}

func newOrchestratorFixture(rs []*entity.NumberingRange, invs ...*entity.Invoice) *orchestratorFixture {
	f := &orchestratorFixture{
		ranges:   newMemRanges(rs...),
		invoices: newMemInvoices(invs...),
		provider: newFakeProvider(),
	}
	f.tx = &fakeTx{ranges: f.ranges, invoices: f.invoices}
	f.orch = billing.NewInvoiceOrchestrator(f.ranges, f.invoices, f.tx, f.provider, zerolog.Nop())
	return f
}

func invoiceRange(tenantID string, active bool) *entity.NumberingRange {
	return &entity.NumberingRange{
		TenantID: tenantID, FactusID: 8, Prefix: "SETP", Document: "Factura de Venta",
		From: 990000000, To: 995000000, IsActive: active,
	}
}

func creditNoteRange(tenantID string, active bool) *entity.NumberingRange {
	return &entity.NumberingRange{
		TenantID: tenantID, FactusID: 9, Prefix: "NC", Document: "Nota Crédito", From: 1, To: 100, IsActive: active,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func qty(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func generalRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		NumberingRangeID: 8,
		ReferenceCode:    "ORD-1",
		Customer: dto.CustomerRequest{
			IdentificationNumber: "900.373.115",
			Company:              "Comercializadora Andina SAS",
			Email:                "compras@andina.co",
		},
		Items: []dto.InvoiceItemRequest{{
			Code:        "P1",
			Description: "Bandeja paisa",
			Quantity:    dec("2"),
			Price:       dec("10000"),
			Taxes: []dto.TaxLine{{
				TaxID: 1, TaxableAmount: dec("20000"), TaxAmount: dec("3800"), Percent: dec("19"),
			}},
		}},
	}
}

// ─── Emisión ─────────────────────────────────────────────────────────────────

func TestCreateInvoice_GuardaCreatedConRespuestaCruda(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
	f.provider.on("POST", "/v1/bills/validate", createdBillResponse)

	resp, err := f.orch.CreateInvoice(context.Background(), tenantA, generalRequest())
	require.NoError(t, err)
	assert.Equal(t, "SETP990000000", resp.Number)
	assert.Equal(t, "CREATED", resp.Status)
	assert.Equal(t, "INVOICE", resp.DocumentType)
	assert.True(t, dec("23800").Equal(resp.Total), "total calculado desde los ítems: %s", resp.Total)
	assert.Equal(t, int64(101), resp.ID)

	inv := f.invoices.get(tenantA, "SETP990000000")
	require.NotNil(t, inv)
	assert.Equal(t, entity.InvoiceStatusCreated, inv.Status)
	assert.Equal(t, "SETP", inv.Prefix)
	assert.Equal(t, "ORD-1", inv.OrderReference)
	assert.Equal(t, "https://factus.test/documents/101", inv.PDFURL)
	assert.JSONEq(t, createdBillResponse, string(inv.APIResponse))

	body := f.provider.lastBody("POST", "/v1/bills/validate")
	require.NotNil(t, body)
	assert.EqualValues(t, 8, body["numbering_range_id"])
	assert.EqualValues(t, 1, body["payment_form"])
	assert.EqualValues(t, 10, body["payment_method"])
	customer := body["customer"].(map[string]any)
	assert.Equal(t, "900373115", customer["identification"])
	assert.EqualValues(t, 6, customer["identification_document_id"])
	assert.EqualValues(t, 1, customer["legal_organization_id"])
	assert.Equal(t, "Comercializadora Andina SAS", customer["company"])
	assert.NotEmpty(t, customer["dv"])

	rng, err := f.ranges.GetByFactusID(context.Background(), tenantA, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(990000000), rng.Current, "se reservó el primer número del rango")
}

func TestCreateInvoice_RangoDeOtroRestauranteEsForbidden(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
	f.provider.on("POST", "/v1/bills/validate", createdBillResponse)

	_, err := f.orch.CreateInvoice(context.Background(), tenantB, generalRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, 0, f.invoices.count(), "no se escribe ninguna factura")
	assert.Equal(t, 0, f.provider.opened, "no se llama a Factus")

	rng, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 8)
	assert.Equal(t, int64(0), rng.Current, "no se reserva número en el rango ajeno")
}

func TestCreateInvoice_SesionFallidaNoConsumeConsecutivo(t *testing.T) {
	for name, openErr := range map[string]error{
		"tenant inactivo":          domain.ErrTenantInactive,
		"credenciales incompletas": domain.ErrCredentialsIncomplete,
		"credencial ilegible":      domain.ErrDecryption,
	} {
		t.Run(name, func(t *testing.T) {
			f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
			f.provider.openErr = openErr

			_, err := f.orch.CreateInvoice(context.Background(), tenantA, generalRequest())
			require.Error(t, err)
			assert.True(t, errors.Is(err, openErr))

			rng, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 8)
			assert.Equal(t, int64(0), rng.Current, "el consecutivo sigue libre")
			assert.Equal(t, 0, f.invoices.count())
		})
	}
}

func TestCreateInvoice_RangoInexistente(t *testing.T) {
	f := newOrchestratorFixture(nil)
	_, err := f.orch.CreateInvoice(context.Background(), tenantA, generalRequest())
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Equal(t, 0, f.provider.opened)
}

func TestCreateInvoice_EntradaInvalida(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})

	t.Run("sin ítems", func(t *testing.T) {
		req := generalRequest()
		req.Items = nil
		_, err := f.orch.CreateInvoice(context.Background(), tenantA, req)
		derr, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindInvalidInput, derr.Kind)
		assert.Contains(t, derr.Details["fields"], "items")
	})

	t.Run("correo inválido", func(t *testing.T) {
		req := generalRequest()
		req.Customer.Email = "no-es-correo"
		_, err := f.orch.CreateInvoice(context.Background(), tenantA, req)
		derr, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "email", derr.Details["fields"].(map[string]string)["customer.email"])
	})

	t.Run("cantidad cero", func(t *testing.T) {
		req := generalRequest()
		req.Items[0].Quantity = decimal.Zero
		_, err := f.orch.CreateInvoice(context.Background(), tenantA, req)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	t.Run("crédito sin fecha de vencimiento", func(t *testing.T) {
		req := generalRequest()
		req.PaymentForm = 2
		_, err := f.orch.CreateInvoice(context.Background(), tenantA, req)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	})

	assert.Equal(t, 0, f.provider.opened)
	assert.Equal(t, 0, f.invoices.count())
}

func TestCreateInvoice_FactusRechazaNoGuardaFactura(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
	f.provider.fail("POST", "/v1/bills/validate",
		domain.ErrValidationFailed.WithStatus(422).WithDetail("errors", map[string]any{"customer.email": "inválido"}))

	_, err := f.orch.CreateInvoice(context.Background(), tenantA, generalRequest())
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	assert.Equal(t, 0, f.invoices.count())
	assert.Equal(t, 1, f.provider.closed)
}

func TestCreateInvoiceFromOrder_ImpoconsumoPorDefecto(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
	f.provider.on("POST", "/v1/bills/validate", createdBillResponse)

	order := dto.OrderInvoiceRequest{
		OrderID:       "MESA-4-0012",
		PaymentMethod: "Nequi",
		CustomerNIT:   "1020304",
		CustomerName:  "Ana María Gómez",
		CustomerEmail: "ana@correo.co",
		Items: []dto.OrderItemRequest{
			{ID: "SKU-1", Name: "Ajiaco", Price: dec("10000"), Quantity: qty("2")},
		},
	}
	resp, err := f.orch.CreateInvoiceFromOrder(context.Background(), tenantA, order)
	require.NoError(t, err)
	assert.True(t, dec("21600").Equal(resp.Total), "total %s", resp.Total)

	body := f.provider.lastBody("POST", "/v1/bills/validate")
	assert.EqualValues(t, 8, body["numbering_range_id"], "usa el rango activo")
	assert.EqualValues(t, 47, body["payment_method"])
	assert.Equal(t, "MESA-4-0012", body["reference_code"])

	customer := body["customer"].(map[string]any)
	assert.EqualValues(t, 3, customer["identification_document_id"])
	assert.EqualValues(t, 2, customer["legal_organization_id"])
	assert.Equal(t, "Ana María Gómez", customer["names"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 22, item["tribute_id"])
	taxes := item["taxes"].([]any)
	require.Len(t, taxes, 1)
	tax := taxes[0].(map[string]any)
	assert.EqualValues(t, 22, tax["tax_id"])
	assert.EqualValues(t, 20000, tax["taxable_amount"])
	assert.EqualValues(t, 1600, tax["tax_amount"])
	assert.EqualValues(t, 8, tax["percent"])
}

func TestCreateInvoiceFromOrder_SinRangoActivo(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, false)})
	order := dto.OrderInvoiceRequest{
		OrderID: "O-1", PaymentMethod: "efectivo", CustomerNIT: "222222222222", CustomerEmail: "a@b.co",
		Items: []dto.OrderItemRequest{{Name: "Tinto", Price: dec("3000"), Quantity: qty("1")}},
	}
	_, err := f.orch.CreateInvoiceFromOrder(context.Background(), tenantA, order)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, 0, f.provider.opened)
}

func TestCreateInvoiceFromOrder_CantidadCeroExplicita(t *testing.T) {
	f := newOrchestratorFixture([]*entity.NumberingRange{invoiceRange(tenantA, true)})
	order := dto.OrderInvoiceRequest{
		OrderID: "O-2", PaymentMethod: "efectivo", CustomerNIT: "222222222222", CustomerEmail: "a@b.co",
		Items: []dto.OrderItemRequest{{Name: "Tinto", Price: dec("3000"), Quantity: qty("0")}},
	}
	_, err := f.orch.CreateInvoiceFromOrder(context.Background(), tenantA, order)
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err), "cantidad cero enviada no se corrige a uno")
	assert.Equal(t, 0, f.provider.opened, "no se abre sesión con Factus")
	rng, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 8)
	assert.Equal(t, int64(0), rng.Current, "no se consume consecutivo")
}

// ─── Validación ──────────────────────────────────────────────────────────────

func createdInvoice(tenantID string) *entity.Invoice {
	return &entity.Invoice{
		TenantID:     tenantID,
		Number:       "SETP990000000",
		Prefix:       "SETP",
		FactusID:     101,
		Total:        dec("21600"),
		Status:       entity.InvoiceStatusCreated,
		DocumentType: entity.DocumentInvoice,
		APIResponse:  json.RawMessage(createdBillResponse),
	}
}

func TestValidateInvoice_FallaYReintento(t *testing.T) {
	f := newOrchestratorFixture(nil, createdInvoice(tenantA))
	path := "/v1/bills/validate/SETP990000000"
	f.provider.fail("POST", path, domain.ErrServerError.WithStatus(500))

	_, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServerError), "se propaga el error original")

	inv := f.invoices.get(tenantA, "SETP990000000")
	assert.Equal(t, entity.InvoiceStatusErrorValidating, inv.Status)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(inv.ErrorDetail, &detail))
	assert.Equal(t, "SERVER_ERROR", detail["code"])
	assert.EqualValues(t, 500, detail["status"])
	assert.NotEmpty(t, detail["failed_at"])
	assert.NotEmpty(t, inv.APIResponse, "la respuesta de creación se conserva")

	delete(f.provider.errs, "POST "+path)
	f.provider.on("POST", path, `{"data":{"bill":{"number":"SETP990000000","cufe":"cufe-abc","qr":"https://qr.test","public_url":"https://factus.test/documents/101"}}}`)

	resp, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "cufe-abc", resp.Data.CUFE)
	assert.Equal(t, "VALIDATED", resp.Data.Status)

	inv = f.invoices.get(tenantA, "SETP990000000")
	assert.Equal(t, entity.InvoiceStatusValidated, inv.Status)
	assert.Nil(t, inv.ErrorDetail)
	assert.NotNil(t, inv.ValidatedAt)
	assert.Equal(t, "https://qr.test", inv.QRURL)
}

func TestValidateInvoice_ContextoCanceladoIgualPersisteError(t *testing.T) {
	f := newOrchestratorFixture(nil, createdInvoice(tenantA))
	f.provider.fail("POST", "/v1/bills/validate/SETP990000000", domain.ErrConnectionFailed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.provider.before = func(string, string) { cancel() }

	_, err := f.orch.ValidateInvoice(ctx, tenantA, "SETP990000000")
	require.Error(t, err)
	assert.Equal(t, entity.InvoiceStatusErrorValidating, f.invoices.get(tenantA, "SETP990000000").Status)
	assert.False(t, f.invoices.isClaimed(tenantA, "SETP990000000"))
}

// blockFirstPost detiene el primer POST a Factus hasta que se cierre proceed.
func blockFirstPost(p *fakeProvider) (entered, proceed chan struct{}, posts *atomic.Int32) {
	entered, proceed, posts = make(chan struct{}), make(chan struct{}), &atomic.Int32{}
	p.before = func(method, _ string) {
		if method == "POST" && posts.Add(1) == 1 {
			close(entered)
			<-proceed
		}
	}
	return entered, proceed, posts
}

func TestValidateInvoice_ConcurrenteUnSoloEnvio(t *testing.T) {
	f := newOrchestratorFixture(nil, createdInvoice(tenantA))
	f.provider.on("POST", "/v1/bills/validate/SETP990000000", `{"data":{"bill":{"cufe":"cufe-abc","qr":"https://qr.test"}}}`)
	entered, proceed, posts := blockFirstPost(f.provider)

	first := make(chan error, 1)
	go func() {
		_, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
		first <- err
	}()
	<-entered

	_, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err), "el doble clic no llega a Factus")

	close(proceed)
	require.NoError(t, <-first)

	inv := f.invoices.get(tenantA, "SETP990000000")
	assert.Equal(t, entity.InvoiceStatusValidated, inv.Status)
	assert.Equal(t, "cufe-abc", inv.CUFE)
	assert.NotNil(t, inv.ValidatedAt)
	assert.EqualValues(t, 1, posts.Load())
	assert.False(t, f.invoices.isClaimed(tenantA, "SETP990000000"))
}

func TestValidateInvoice_ErrorNoPisaFacturaYaValidada(t *testing.T) {
	f := newOrchestratorFixture(nil, createdInvoice(tenantA))
	f.provider.fail("POST", "/v1/bills/validate/SETP990000000", domain.ErrClientError.WithStatus(409))
	validatedAt := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	f.provider.before = func(string, string) {
		// otra instancia validó la factura mientras esta esperaba a Factus
		f.invoices.change(tenantA, "SETP990000000", func(inv *entity.Invoice) {
			inv.Status = entity.InvoiceStatusValidated
			inv.CUFE = "cufe-dian"
			inv.ValidatedAt = &validatedAt
		})
	}

	_, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
	assert.True(t, errors.Is(err, domain.ErrClientError), "el error de Factus se devuelve igual")

	inv := f.invoices.get(tenantA, "SETP990000000")
	assert.Equal(t, entity.InvoiceStatusValidated, inv.Status, "no se retrocede a ERROR_VALIDATING")
	assert.Equal(t, "cufe-dian", inv.CUFE, "el CUFE guardado se conserva")
	require.NotNil(t, inv.ValidatedAt)
	assert.Nil(t, inv.ErrorDetail)
	assert.False(t, f.invoices.isClaimed(tenantA, "SETP990000000"), "la toma se libera")
}

func TestValidateInvoice_EstadosNoValidables(t *testing.T) {
	validated := createdInvoice(tenantA)
	validated.Status = entity.InvoiceStatusValidated
	f := newOrchestratorFixture(nil, validated)

	_, err := f.orch.ValidateInvoice(context.Background(), tenantA, "SETP990000000")
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	_, err = f.orch.ValidateInvoice(context.Background(), tenantB, "SETP990000000")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err), "la factura de otro restaurante no existe para este")
	assert.Equal(t, 0, f.provider.opened)
}

// ─── Nota crédito ────────────────────────────────────────────────────────────

const shownBillResponse = `{
	"status": "OK",
	"data": {
		"bill": {
			"id": 101,
			"number": "SETP990000000",
			"cufe": "cufe-abc",
			"created_at": "2026-03-15 12:30:00",
			"payment_form": {"code": "1", "name": "Pago de contado"},
			"payment_method": {"code": "47", "name": "Transferencia"},
			"customer": {"identification": "1020304", "names": "Ana María Gómez", "email": "ana@correo.co"}
		},
		"items": [{
			"code_reference": "SKU-1",
			"name": "Ajiaco",
			"quantity": 2,
			"price": "10000.00",
			"discount_rate": "0.00",
			"discount": "0.00",
			"tax_rate": "8.00",
			"standard_code_id": 1,
			"is_excluded": 0,
			"tribute": {"id": 22, "name": "Impuesto Nacional al Consumo"},
			"taxes": [{"tax_id": 22, "tax_amount": "1600.00", "taxable_amount": "20000.00", "percent": "8.00"}]
		}]
	}
}`

func validatedInvoice(tenantID string) *entity.Invoice {
	inv := createdInvoice(tenantID)
	inv.Status = entity.InvoiceStatusValidated
	inv.CUFE = "cufe-abc"
	return inv
}

func TestCreateCreditNote_AnulaYGuardaNota(t *testing.T) {
	f := newOrchestratorFixture(
		[]*entity.NumberingRange{invoiceRange(tenantA, false), creditNoteRange(tenantA, true)},
		validatedInvoice(tenantA),
	)
	f.provider.
		on("GET", "/v1/bills/show/SETP990000000", shownBillResponse).
		on("POST", "/v1/bills/validate", `{"data":{"bill":{"id":202,"number":"NC1","cufe":"cude-nc","status":"validated"},"numbering_range":{"prefix":"NC"}}}`)

	resp, err := f.orch.CreateCreditNote(context.Background(), tenantA, dto.CreditNoteRequest{
		InvoiceNumber: "SETP990000000",
		Description:   "Cliente devolvió el pedido",
	})
	require.NoError(t, err)
	assert.Equal(t, "NC1", resp.Number)
	assert.Equal(t, "CREDIT_NOTE", resp.DocumentType)
	assert.Equal(t, "VALIDATED", resp.Status)
	assert.True(t, dec("21600").Equal(resp.Total))

	original := f.invoices.get(tenantA, "SETP990000000")
	assert.Equal(t, entity.InvoiceStatusAnnulled, original.Status)

	note := f.invoices.get(tenantA, "NC1")
	require.NotNil(t, note)
	assert.Equal(t, entity.DocumentCreditNote, note.DocumentType)
	require.NotNil(t, note.RelatedInvoiceID)
	assert.Equal(t, original.ID, *note.RelatedInvoiceID)
	assert.Equal(t, "NC", note.Prefix)
	assert.NotNil(t, note.ValidatedAt)

	body := f.provider.lastBody("POST", "/v1/bills/validate")
	assert.EqualValues(t, 9, body["numbering_range_id"], "se emite contra el rango NC")
	assert.Equal(t, "NC-SETP990000000", body["reference_code"])
	assert.EqualValues(t, 1, body["payment_form"])
	assert.EqualValues(t, 47, body["payment_method"])
	ref := body["billing_reference"].(map[string]any)
	assert.Equal(t, "SETP990000000", ref["number"])
	assert.Equal(t, "cufe-abc", ref["uuid"])
	assert.Equal(t, "2026-03-15", ref["issue_date"])
	assert.Equal(t, "2", ref["discrepancy_response_code"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "SKU-1", item["code_reference"])
	assert.EqualValues(t, 22, item["tribute_id"])
	assert.EqualValues(t, 70, item["unit_measure_id"])
	assert.Len(t, item["taxes"], 1)
	assert.Equal(t, []any{}, item["withholding_taxes"])

	nc, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 9)
	assert.Equal(t, int64(1), nc.Current)
	assert.Equal(t, 1, f.tx.runs)
}

func TestCreateCreditNote_FacturaNoValidada(t *testing.T) {
	f := newOrchestratorFixture(
		[]*entity.NumberingRange{creditNoteRange(tenantA, true)},
		createdInvoice(tenantA),
	)
	_, err := f.orch.CreateCreditNote(context.Background(), tenantA, dto.CreditNoteRequest{
		InvoiceNumber: "SETP990000000",
		Description:   "Error en el pedido",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, 0, f.provider.opened, "no se llama a Factus")
	assert.Equal(t, entity.InvoiceStatusCreated, f.invoices.get(tenantA, "SETP990000000").Status)
}

func TestCreateCreditNote_SinRangoNCActivo(t *testing.T) {
	expired := creditNoteRange(tenantA, true)
	expired.IsExpired = true

	tests := []struct {
		name   string
		ranges []*entity.NumberingRange
	}{
		{"NC vigente pero inactivo", []*entity.NumberingRange{invoiceRange(tenantA, true), creditNoteRange(tenantA, false)}},
		{"NC activo vencido", []*entity.NumberingRange{invoiceRange(tenantA, false), expired}},
		{"sin rango NC", []*entity.NumberingRange{invoiceRange(tenantA, true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestratorFixture(tt.ranges, validatedInvoice(tenantA))
			_, err := f.orch.CreateCreditNote(context.Background(), tenantA, dto.CreditNoteRequest{
				InvoiceNumber: "SETP990000000",
				Description:   "Error en el pedido",
			})
			assert.True(t, errors.Is(err, domain.ErrInvalidState))
			assert.Equal(t, 0, f.provider.opened, "no se llama a Factus")
			assert.Equal(t, entity.InvoiceStatusValidated, f.invoices.get(tenantA, "SETP990000000").Status)
		})
	}
}

func TestCreateCreditNote_FacturaSinItemsEnFactus(t *testing.T) {
	f := newOrchestratorFixture(
		[]*entity.NumberingRange{creditNoteRange(tenantA, true)},
		validatedInvoice(tenantA),
	)
	f.provider.on("GET", "/v1/bills/show/SETP990000000", `{"data":{"bill":{"number":"SETP990000000","customer":{"names":"x"}},"items":[]}}`)

	_, err := f.orch.CreateCreditNote(context.Background(), tenantA, dto.CreditNoteRequest{
		InvoiceNumber: "SETP990000000",
		Description:   "Error en el pedido",
	})
	assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	assert.Equal(t, entity.InvoiceStatusValidated, f.invoices.get(tenantA, "SETP990000000").Status)
	nc, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 9)
	assert.Equal(t, int64(0), nc.Current, "no se reserva número si la nota no se puede armar")
	assert.False(t, f.invoices.isClaimed(tenantA, "SETP990000000"), "la factura queda libre para reintentar")
}

func TestCreateCreditNote_ConcurrenteUnaSolaNota(t *testing.T) {
	f := newOrchestratorFixture(
		[]*entity.NumberingRange{invoiceRange(tenantA, false), creditNoteRange(tenantA, true)},
		validatedInvoice(tenantA),
	)
	f.provider.
		on("GET", "/v1/bills/show/SETP990000000", shownBillResponse).
		on("POST", "/v1/bills/validate", `{"data":{"bill":{"id":202,"number":"NC1","cufe":"cude-nc","status":"validated"},"numbering_range":{"prefix":"NC"}}}`)
	entered, proceed, posts := blockFirstPost(f.provider)
	req := dto.CreditNoteRequest{InvoiceNumber: "SETP990000000", Description: "Cliente devolvió el pedido"}

	first := make(chan error, 1)
	go func() {
		_, err := f.orch.CreateCreditNote(context.Background(), tenantA, req)
		first <- err
	}()
	<-entered

	_, err := f.orch.CreateCreditNote(context.Background(), tenantA, req)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err), "la segunda anulación no emite otra nota")

	close(proceed)
	require.NoError(t, <-first)

	assert.EqualValues(t, 1, posts.Load())
	assert.Equal(t, entity.InvoiceStatusAnnulled, f.invoices.get(tenantA, "SETP990000000").Status)
	nc, _ := f.ranges.GetByFactusID(context.Background(), tenantA, 9)
	assert.Equal(t, int64(1), nc.Current)
}

// ─── Consultas ───────────────────────────────────────────────────────────────

func TestGetInvoicePDF(t *testing.T) {
	f := newOrchestratorFixture(nil, validatedInvoice(tenantA))
	f.provider.on("GET", "/v1/bills/show/SETP990000000", `{"data":{"bill":{"public_url":"https://factus.test/pdf/101"}}}`)

	resp, err := f.orch.GetInvoicePDF(context.Background(), tenantA, "SETP990000000")
	require.NoError(t, err)
	assert.Equal(t, "https://factus.test/pdf/101", resp.PDFURL)

	_, err = f.orch.GetInvoicePDF(context.Background(), tenantB, "SETP990000000")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGetInvoice_DevuelveData(t *testing.T) {
	f := newOrchestratorFixture(nil, validatedInvoice(tenantA))
	f.provider.on("GET", "/v1/bills/show/SETP990000000", shownBillResponse)

	raw, err := f.orch.GetInvoice(context.Background(), tenantA, "SETP990000000")
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Contains(t, data, "bill")
	assert.Contains(t, data, "items")
}
