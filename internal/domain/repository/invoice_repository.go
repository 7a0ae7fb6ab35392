package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia para documentos electrónicos.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	// GetByNumber devuelve nil, nil si no existe para ese tenant.
	GetByNumber(ctx context.Context, tenantID, number string) (*entity.Invoice, error)
	// Claim toma la factura para una llamada a Factus si está en alguno de los estados from
	// y nadie la tiene tomada. La toma vence sola pasado lease. false si no se pudo tomar.
	Claim(ctx context.Context, tenantID, id string, lease time.Duration, from ...entity.InvoiceStatus) (bool, error)
	// Release suelta la toma sin cambiar el estado.
	Release(ctx context.Context, tenantID, id string) error
	// Transition persiste estado, CUFE, URLs, respuesta cruda y error de validación solo si la
	// factura sigue en alguno de los estados from (CONFLICT si no). Suelta la toma.
	// CUFE y URLs vacíos conservan lo guardado.
	Transition(ctx context.Context, inv *entity.Invoice, from ...entity.InvoiceStatus) error
}
