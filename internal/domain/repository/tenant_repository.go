package repository

import (
	"context"

	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para restaurantes (tenants).
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// UpdateCredentials persiste las credenciales Factus (ya cifradas) y billing_active.
	UpdateCredentials(ctx context.Context, t *entity.Tenant) error
}
