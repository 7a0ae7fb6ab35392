package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Invoices  InvoiceService
	Ranges    RangeService
	Catalog   CatalogProvider
	Tickets   TicketProvider
	Tenants   TenantService
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todo bajo /api exige Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Tenants: alta solo plataforma; lectura y credenciales también el admin del propio restaurante
	tenantHandler := NewTenantHandler(deps.Tenants, deps.Log)
	tenants := api.Group("/tenants")
	tenants.Post("/", RequireRole(RolePlatform), tenantHandler.Register)
	tenants.Get("/:id", RequireOwnTenant("id"), tenantHandler.GetByID)
	tenants.Put("/:id/credentials", RequireOwnTenant("id"), tenantHandler.UpdateCredentials)
	tenants.Get("/:id/status", RequireOwnTenant("id"), tenantHandler.Status)

	// Facturación: el restaurante sale del claim tenant_id
	h := NewBillingHandler(deps.Invoices, deps.Ranges, deps.Catalog, deps.Tickets, deps.Log)
	billing := api.Group("/billing", RequireTenant(), RequireRole(RoleAdmin, RoleCajero))

	billing.Get("/health", h.Health)
	billing.Get("/municipalities", h.Municipalities)
	billing.Get("/tributes", h.Tributes)
	billing.Get("/payment-methods", h.PaymentMethods)

	// Rangos: sincronizar y activar es cosa del admin
	billing.Post("/sync-ranges", RequireRole(RoleAdmin), h.SyncRanges)
	billing.Get("/ranges", h.ListRanges)
	billing.Get("/ranges/active", h.ActiveRange)
	billing.Post("/ranges/:id/activate", RequireRole(RoleAdmin), h.ActivateRange)

	// Facturas y notas crédito
	billing.Post("/invoices", h.CreateInvoice)
	billing.Post("/invoices/from-order", h.CreateInvoiceFromOrder)
	billing.Get("/invoices/:number", h.GetInvoice)
	billing.Post("/invoices/:number/validate", h.ValidateInvoice)
	billing.Get("/invoices/:number/pdf", h.GetInvoicePDF)
	billing.Get("/invoices/:number/ticket-data", h.TicketData)
	billing.Get("/invoices/:number/ticket.pdf", h.TicketPDF)
	billing.Post("/credit-notes", RequireRole(RoleAdmin), h.CreateCreditNote)
}
