package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
)

// InvoiceService lo implementa *billing.InvoiceOrchestrator.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	CreateInvoiceFromOrder(ctx context.Context, tenantID string, order dto.OrderInvoiceRequest) (*dto.InvoiceResponse, error)
	ValidateInvoice(ctx context.Context, tenantID, number string) (*dto.ValidateInvoiceResponse, error)
	CreateCreditNote(ctx context.Context, tenantID string, req dto.CreditNoteRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, tenantID, number string) (json.RawMessage, error)
	GetInvoicePDF(ctx context.Context, tenantID, number string) (*dto.InvoicePDFResponse, error)
}

// RangeService lo implementa *billing.RangeSynchronizer.
type RangeService interface {
	Sync(ctx context.Context, tenantID string) (*dto.SyncRangesResponse, error)
	SetActive(ctx context.Context, tenantID, rangeID string) (*dto.ActivateRangeResponse, error)
	GetActiveResponse(ctx context.Context, tenantID string) (*dto.NumberingRangeResponse, error)
	List(ctx context.Context, tenantID string) ([]dto.NumberingRangeResponse, error)
}

// CatalogProvider lo implementa *billing.CatalogService.
type CatalogProvider interface {
	Municipalities(ctx context.Context, tenantID string, q dto.MunicipalityQuery) (json.RawMessage, error)
	Tributes(ctx context.Context, tenantID string) (json.RawMessage, error)
	PaymentMethods(ctx context.Context, tenantID string) (json.RawMessage, error)
	Health(ctx context.Context, tenantID string) *dto.ProviderHealthResponse
}

// TicketProvider lo implementa *billing.TicketService.
type TicketProvider interface {
	BuildTicket(ctx context.Context, tenantID, number string) (*dto.TicketData, error)
	RenderTicketPDF(ctx context.Context, tenantID, number string) ([]byte, error)
}

// BillingHandler rutas /api/billing. El restaurante siempre sale del token.
type BillingHandler struct {
	invoices InvoiceService
	ranges   RangeService
	catalog  CatalogProvider
	tickets  TicketProvider
	log      zerolog.Logger
}

// NewBillingHandler construye el handler.
func NewBillingHandler(invoices InvoiceService, ranges RangeService, catalog CatalogProvider, tickets TicketProvider, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{invoices: invoices, ranges: ranges, catalog: catalog, tickets: tickets, log: log}
}

// ─── Salud y catálogos ───────────────────────────────────────────────────────

// Health godoc
// @Summary      Conectividad con Factus para el restaurante
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ProviderHealthResponse
// @Router       /api/billing/health [get]
func (h *BillingHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Health(c.Context(), GetTenantID(c)))
}

// Municipalities godoc
// @Summary      Catálogo de municipios
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        search    query  string  false  "Texto a buscar"
// @Param        page      query  int     false  "Página"
// @Param        per_page  query  int     false  "Tamaño de página"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/billing/municipalities [get]
func (h *BillingHandler) Municipalities(c *fiber.Ctx) error {
	var q dto.MunicipalityQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return h.raw(c, func(ctx context.Context, tenantID string) (json.RawMessage, error) {
		return h.catalog.Municipalities(ctx, tenantID, q)
	})
}

// Tributes godoc
// @Summary      Catálogo de tributos
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/billing/tributes [get]
func (h *BillingHandler) Tributes(c *fiber.Ctx) error {
	return h.raw(c, h.catalog.Tributes)
}

// PaymentMethods godoc
// @Summary      Catálogo de medios de pago
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /api/billing/payment-methods [get]
func (h *BillingHandler) PaymentMethods(c *fiber.Ctx) error {
	return h.raw(c, h.catalog.PaymentMethods)
}

// ─── Rangos de numeración ────────────────────────────────────────────────────

// SyncRanges godoc
// @Summary      Sincronizar rangos de numeración desde Factus
// @Tags         ranges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SyncRangesResponse
// @Router       /api/billing/sync-ranges [post]
func (h *BillingHandler) SyncRanges(c *fiber.Ctx) error {
	out, err := h.ranges.Sync(c.Context(), GetTenantID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListRanges godoc
// @Summary      Listar rangos del restaurante
// @Tags         ranges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.NumberingRangeResponse
// @Router       /api/billing/ranges [get]
func (h *BillingHandler) ListRanges(c *fiber.Ctx) error {
	out, err := h.ranges.List(c.Context(), GetTenantID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ActiveRange godoc
// @Summary      Rango activo
// @Tags         ranges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.NumberingRangeResponse
// @Failure      400  {object}  dto.ErrorResponse  "el rango activo no es usable"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/ranges/active [get]
func (h *BillingHandler) ActiveRange(c *fiber.Ctx) error {
	out, err := h.ranges.GetActiveResponse(c.Context(), GetTenantID(c))
	if domain.KindOf(err) == domain.KindInvalidState {
		// rango vencido o agotado: el POS lo trata como solicitud inválida
		return writeErrorStatus(c, h.log, err, fiber.StatusBadRequest)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ActivateRange godoc
// @Summary      Activar un rango (desactiva los demás del restaurante)
// @Tags         ranges
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID local del rango"
// @Success      200  {object}  dto.ActivateRangeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/ranges/{id}/activate [post]
func (h *BillingHandler) ActivateRange(c *fiber.Ctx) error {
	out, err := h.ranges.SetActive(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ─── Facturas ────────────────────────────────────────────────────────────────

// CreateInvoice godoc
// @Summary      Crear factura (ruta general)
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/billing/invoices [post]
func (h *BillingHandler) CreateInvoice(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.invoices.CreateInvoice(c.Context(), GetTenantID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateInvoiceFromOrder godoc
// @Summary      Facturar una orden del restaurante
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.OrderInvoiceRequest  true  "Orden"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "sin rango activo usable"
// @Router       /api/billing/invoices/from-order [post]
func (h *BillingHandler) CreateInvoiceFromOrder(c *fiber.Ctx) error {
	var in dto.OrderInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.invoices.CreateInvoiceFromOrder(c.Context(), GetTenantID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ValidateInvoice godoc
// @Summary      Validar factura ante la DIAN vía Factus
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "Número de la factura"
// @Success      200  {object}  dto.ValidateInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/billing/invoices/{number}/validate [post]
func (h *BillingHandler) ValidateInvoice(c *fiber.Ctx) error {
	out, err := h.invoices.ValidateInvoice(c.Context(), GetTenantID(c), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateCreditNote godoc
// @Summary      Nota crédito sobre una factura validada
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreditNoteRequest  true  "Nota crédito"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/billing/credit-notes [post]
func (h *BillingHandler) CreateCreditNote(c *fiber.Ctx) error {
	var in dto.CreditNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.invoices.CreateCreditNote(c.Context(), GetTenantID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetInvoice godoc
// @Summary      Documento tal como lo tiene Factus
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "Número"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/invoices/{number} [get]
func (h *BillingHandler) GetInvoice(c *fiber.Ctx) error {
	number := c.Params("number")
	return h.raw(c, func(ctx context.Context, tenantID string) (json.RawMessage, error) {
		return h.invoices.GetInvoice(ctx, tenantID, number)
	})
}

// GetInvoicePDF godoc
// @Summary      URL del PDF de la factura
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "Número"
// @Success      200  {object}  dto.InvoicePDFResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/invoices/{number}/pdf [get]
func (h *BillingHandler) GetInvoicePDF(c *fiber.Ctx) error {
	out, err := h.invoices.GetInvoicePDF(c.Context(), GetTenantID(c), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// TicketData godoc
// @Summary      Datos de la tirilla (solo datos locales)
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        number  path  string  true  "Número"
// @Success      200  {object}  dto.TicketData
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/invoices/{number}/ticket-data [get]
func (h *BillingHandler) TicketData(c *fiber.Ctx) error {
	out, err := h.tickets.BuildTicket(c.Context(), GetTenantID(c), c.Params("number"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// TicketPDF godoc
// @Summary      Tirilla 80 mm en PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        number  path  string  true  "Número"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/billing/invoices/{number}/ticket.pdf [get]
func (h *BillingHandler) TicketPDF(c *fiber.Ctx) error {
	number := c.Params("number")
	pdf, err := h.tickets.RenderTicketPDF(c.Context(), GetTenantID(c), number)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="tirilla-`+number+`.pdf"`)
	return c.Send(pdf)
}

// raw escribe la respuesta JSON de Factus sin volver a serializarla.
func (h *BillingHandler) raw(c *fiber.Ctx, fetch func(ctx context.Context, tenantID string) (json.RawMessage, error)) error {
	body, err := fetch(c.Context(), GetTenantID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}
