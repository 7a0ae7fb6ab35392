package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implementa TenantRepository sobre PostgreSQL.
// Las credenciales llegan y salen cifradas; este repo no las interpreta.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO tenants
			(id, name, nit, address, is_active, billing_active,
			 factus_client_id, factus_client_secret, factus_email, factus_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		t.ID, t.Name, t.NIT, nullIfEmpty(t.Address), t.IsActive, t.BillingActive,
		nullIfEmpty(t.FactusClientID), nullIfEmpty(t.FactusClientSecret),
		nullIfEmpty(t.FactusEmail), nullIfEmpty(t.FactusPassword),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.KindConflict, "ya existe un restaurante con NIT %s", t.NIT).WithCause(err)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	const q = `
		SELECT id, name, nit, COALESCE(address, ''), is_active, billing_active,
		       COALESCE(factus_client_id, ''), COALESCE(factus_client_secret, ''),
		       COALESCE(factus_email, ''), COALESCE(factus_password, ''),
		       created_at, updated_at
		FROM tenants WHERE id = $1`
	var t entity.Tenant
	err := r.q.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.NIT, &t.Address, &t.IsActive, &t.BillingActive,
		&t.FactusClientID, &t.FactusClientSecret, &t.FactusEmail, &t.FactusPassword,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant by id: %w", err)
	}
	return &t, nil
}

func (r *TenantRepo) UpdateCredentials(ctx context.Context, t *entity.Tenant) error {
	const q = `
		UPDATE tenants
		SET factus_client_id = $2, factus_client_secret = $3, factus_email = $4, factus_password = $5,
		    billing_active = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q,
		t.ID,
		nullIfEmpty(t.FactusClientID), nullIfEmpty(t.FactusClientSecret),
		nullIfEmpty(t.FactusEmail), nullIfEmpty(t.FactusPassword),
		t.BillingActive,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTenantNotFound.WithDetail("tenant_id", t.ID)
		}
		return fmt.Errorf("update tenant credentials: %w", err)
	}
	return nil
}
