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

var _ repository.NumberingRangeRepository = (*NumberingRangeRepo)(nil)

// NumberingRangeRepo implementa NumberingRangeRepository sobre PostgreSQL.
type NumberingRangeRepo struct {
	q Querier
}

// NewNumberingRangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNumberingRangeRepository(q Querier) *NumberingRangeRepo {
	return &NumberingRangeRepo{q: q}
}

const rangeColumns = `
	id, tenant_id, factus_id, COALESCE(document, ''), COALESCE(resolution_number, ''), prefix,
	range_from, range_to, current_number, resolution_date, start_date, expiration_date,
	COALESCE(technical_key, ''), is_active, is_expired, last_synced_at, created_at, updated_at`

func (r *NumberingRangeRepo) Create(ctx context.Context, nr *entity.NumberingRange) error {
	if nr.ID == "" {
		nr.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO numbering_ranges
			(id, tenant_id, factus_id, document, resolution_number, prefix, range_from, range_to, current_number,
			 resolution_date, start_date, expiration_date, technical_key, is_active, is_expired, last_synced_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		nr.ID, nr.TenantID, nr.FactusID, nullIfEmpty(nr.Document), nullIfEmpty(nr.ResolutionNumber), nr.Prefix,
		nr.From, nr.To, nr.Current,
		nr.ResolutionDate, nr.StartDate, nr.ExpirationDate, nullIfEmpty(nr.TechnicalKey),
		nr.IsActive, nr.IsExpired, nr.LastSyncedAt,
	).Scan(&nr.CreatedAt, &nr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.KindConflict, "el rango %d ya existe para este restaurante", nr.FactusID).WithCause(err)
		}
		return fmt.Errorf("insert numbering_range: %w", err)
	}
	return nil
}

// UpdateFromProvider no toca is_active.
func (r *NumberingRangeRepo) UpdateFromProvider(ctx context.Context, nr *entity.NumberingRange) error {
	const q = `
		UPDATE numbering_ranges
		SET document = $3, resolution_number = $4, prefix = $5, range_from = $6, range_to = $7,
		    current_number = $8, resolution_date = $9, start_date = $10, expiration_date = $11,
		    technical_key = $12, is_expired = $13, last_synced_at = $14, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q,
		nr.ID, nr.TenantID, nullIfEmpty(nr.Document), nullIfEmpty(nr.ResolutionNumber), nr.Prefix,
		nr.From, nr.To, nr.Current,
		nr.ResolutionDate, nr.StartDate, nr.ExpirationDate,
		nullIfEmpty(nr.TechnicalKey), nr.IsExpired, nr.LastSyncedAt,
	).Scan(&nr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Errorf(domain.KindNotFound, "rango %s no encontrado", nr.ID)
		}
		return fmt.Errorf("update numbering_range: %w", err)
	}
	return nil
}

func (r *NumberingRangeRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + ` FROM numbering_ranges WHERE id = $1 AND tenant_id = $2`
	return r.getOne(ctx, "get numbering_range by id", q, id, tenantID)
}

func (r *NumberingRangeRepo) GetByFactusID(ctx context.Context, tenantID string, factusID int64) (*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + ` FROM numbering_ranges WHERE tenant_id = $1 AND factus_id = $2`
	return r.getOne(ctx, "get numbering_range by factus_id", q, tenantID, factusID)
}

// FindByFactusID es la única consulta sin filtro de tenant: detecta uso cruzado de rangos.
func (r *NumberingRangeRepo) FindByFactusID(ctx context.Context, factusID int64) ([]*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + ` FROM numbering_ranges WHERE factus_id = $1`
	return r.list(ctx, "find numbering_range by factus_id", q, factusID)
}

// GetActive consulta crítica previa a cada factura; devuelve nil, nil si no hay rango activo.
func (r *NumberingRangeRepo) GetActive(ctx context.Context, tenantID string) (*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + `
		FROM numbering_ranges
		WHERE tenant_id = $1 AND is_active = true AND is_expired = false
		LIMIT 1`
	return r.getOne(ctx, "get active numbering_range", q, tenantID)
}

func (r *NumberingRangeRepo) GetActiveByPrefix(ctx context.Context, tenantID, prefix string) (*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + `
		FROM numbering_ranges
		WHERE tenant_id = $1 AND is_active = true AND prefix LIKE $2 || '%'
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.getOne(ctx, "get active numbering_range by prefix", q, tenantID, prefix)
}

func (r *NumberingRangeRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + `
		FROM numbering_ranges
		WHERE tenant_id = $1
		ORDER BY is_active DESC, created_at DESC`
	return r.list(ctx, "list numbering_ranges", q, tenantID)
}

func (r *NumberingRangeRepo) ListByPrefix(ctx context.Context, tenantID, prefix string) ([]*entity.NumberingRange, error) {
	q := `SELECT` + rangeColumns + `
		FROM numbering_ranges
		WHERE tenant_id = $1 AND prefix = $2
		ORDER BY is_active DESC, created_at DESC`
	return r.list(ctx, "list numbering_ranges by prefix", q, tenantID, prefix)
}

// SetActive desactiva primero los hermanos y luego activa el destino; el índice único parcial
// (tenant_id) WHERE is_active se verifica fila a fila, así que el orden importa.
// Debe correr dentro de una transacción (TxRunner).
func (r *NumberingRangeRepo) SetActive(ctx context.Context, tenantID, id string) (bool, error) {
	var found string
	err := r.q.QueryRow(ctx,
		`SELECT id FROM numbering_ranges WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lock numbering_range: %w", err)
	}

	if _, err := r.q.Exec(ctx, `
		UPDATE numbering_ranges SET is_active = false, updated_at = now()
		WHERE tenant_id = $1 AND id <> $2 AND is_active = true`, tenantID, id); err != nil {
		return false, fmt.Errorf("deactivate numbering_ranges: %w", err)
	}
	if _, err := r.q.Exec(ctx, `
		UPDATE numbering_ranges SET is_active = true, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		if isUniqueViolation(err) {
			return false, domain.Errorf(domain.KindConflict, "otro rango fue activado en paralelo").WithCause(err)
		}
		return false, fmt.Errorf("activate numbering_range: %w", err)
	}
	return true, nil
}

// CompareAndSwapCurrent avanza el consecutivo solo si nadie lo movió desde la lectura.
func (r *NumberingRangeRepo) CompareAndSwapCurrent(ctx context.Context, tenantID, id string, expected, next int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE numbering_ranges
		SET current_number = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND current_number = $3 AND $4 <= range_to`,
		id, tenantID, expected, next)
	if err != nil {
		return false, fmt.Errorf("swap numbering_range current: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (r *NumberingRangeRepo) getOne(ctx context.Context, op, q string, args ...any) (*entity.NumberingRange, error) {
	nr, err := scanRange(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nr, nil
}

func (r *NumberingRangeRepo) list(ctx context.Context, op, q string, args ...any) ([]*entity.NumberingRange, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.NumberingRange
	for rows.Next() {
		nr, err := scanRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan numbering_range: %w", err)
		}
		list = append(list, nr)
	}
	return list, rows.Err()
}

func scanRange(row pgxScanner) (*entity.NumberingRange, error) {
	var nr entity.NumberingRange
	err := row.Scan(
		&nr.ID, &nr.TenantID, &nr.FactusID, &nr.Document, &nr.ResolutionNumber, &nr.Prefix,
		&nr.From, &nr.To, &nr.Current,
		&nr.ResolutionDate, &nr.StartDate, &nr.ExpirationDate,
		&nr.TechnicalKey, &nr.IsActive, &nr.IsExpired, &nr.LastSyncedAt,
		&nr.CreatedAt, &nr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &nr, nil
}
