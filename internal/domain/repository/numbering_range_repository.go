package repository

import (
	"context"

	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

// NumberingRangeRepository puerto de persistencia para rangos de numeración.
// Toda lectura filtra por tenant, salvo FindByFactusID que se usa para detectar uso cruzado.
type NumberingRangeRepository interface {
	Create(ctx context.Context, r *entity.NumberingRange) error

	// UpdateFromProvider sobrescribe los campos que vienen de Factus.
	// No toca is_active: la activación es siempre una acción explícita.
	UpdateFromProvider(ctx context.Context, r *entity.NumberingRange) error

	GetByID(ctx context.Context, tenantID, id string) (*entity.NumberingRange, error)
	GetByFactusID(ctx context.Context, tenantID string, factusID int64) (*entity.NumberingRange, error)

	// FindByFactusID busca el rango en todos los tenants.
	FindByFactusID(ctx context.Context, factusID int64) ([]*entity.NumberingRange, error)

	// GetActive devuelve el rango is_active=true y is_expired=false, o nil, nil.
	// Es la consulta previa a cada factura: solo toca la base local.
	GetActive(ctx context.Context, tenantID string) (*entity.NumberingRange, error)

	// GetActiveByPrefix rango activo cuyo prefijo empieza por prefix (ej. "NC").
	GetActiveByPrefix(ctx context.Context, tenantID, prefix string) (*entity.NumberingRange, error)

	// ListByTenant ordenado por is_active desc, created_at desc.
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.NumberingRange, error)

	// ListByPrefix rangos del tenant con ese prefijo exacto, activo primero y luego el más reciente.
	ListByPrefix(ctx context.Context, tenantID, prefix string) ([]*entity.NumberingRange, error)

	// SetActive marca id como único rango activo del tenant. Devuelve false si el rango no existe.
	SetActive(ctx context.Context, tenantID, id string) (bool, error)

	// CompareAndSwapCurrent fija current_number en next solo si sigue valiendo expected
	// y next no supera el límite superior del rango.
	CompareAndSwapCurrent(ctx context.Context, tenantID, id string, expected, next int64) (bool, error)
}
