package billing

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye repos de rangos y facturas.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		ranges repository.NumberingRangeRepository,
		invoices repository.InvoiceRepository,
	) error) error
}

// Gateway llamadas autenticadas a Factus para un tenant. Close libera el transporte.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Close() error
}

// GatewayFactory abre una sesión Factus por tenant (credenciales descifradas, token propio).
type GatewayFactory interface {
	Open(ctx context.Context, tenantID string) (Gateway, error)
}

// GatewayFactoryFunc adapta una función a GatewayFactory.
type GatewayFactoryFunc func(ctx context.Context, tenantID string) (Gateway, error)

func (f GatewayFactoryFunc) Open(ctx context.Context, tenantID string) (Gateway, error) {
	return f(ctx, tenantID)
}

// TicketRenderer dibuja la tirilla de una factura.
type TicketRenderer interface {
	RenderTicket(ticket *dto.TicketData) ([]byte, error)
}

// withGateway abre la sesión del tenant, ejecuta fn y la cierra en cualquier salida.
func withGateway(ctx context.Context, factory GatewayFactory, tenantID string, fn func(gw Gateway) error) error {
	gw, err := factory.Open(ctx, tenantID)
	if err != nil {
		return err
	}
	defer gw.Close()
	return fn(gw)
}
