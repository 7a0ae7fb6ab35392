package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste el documento. api_response se guarda como jsonb para reconstruir el ticket.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO invoices
			(id, tenant_id, number, prefix, cufe, factus_id, order_reference, total, status, document_type,
			 related_invoice_id, pdf_url, xml_url, qr_url, api_response, error_detail, validated_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		inv.ID, inv.TenantID, inv.Number, nullIfEmpty(inv.Prefix), nullIfEmpty(inv.CUFE), inv.FactusID,
		nullIfEmpty(inv.OrderReference), inv.Total, string(inv.Status), string(inv.DocumentType),
		inv.RelatedInvoiceID, nullIfEmpty(inv.PDFURL), nullIfEmpty(inv.XMLURL), nullIfEmpty(inv.QRURL),
		jsonOrNull(inv.APIResponse), jsonOrNull(inv.ErrorDetail), inv.ValidatedAt,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.KindConflict, "la factura %s ya existe", inv.Number).WithCause(err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByNumber(ctx context.Context, tenantID, number string) (*entity.Invoice, error) {
	const q = `
		SELECT id, tenant_id, number, COALESCE(prefix, ''), COALESCE(cufe, ''), COALESCE(factus_id, 0),
		       COALESCE(order_reference, ''), total, status, document_type, related_invoice_id,
		       COALESCE(pdf_url, ''), COALESCE(xml_url, ''), COALESCE(qr_url, ''),
		       api_response, error_detail, created_at, validated_at, updated_at
		FROM invoices
		WHERE tenant_id = $1 AND number = $2`
	var (
		inv          entity.Invoice
		status, kind string
		apiResp, det []byte
	)
	err := r.q.QueryRow(ctx, q, tenantID, number).Scan(
		&inv.ID, &inv.TenantID, &inv.Number, &inv.Prefix, &inv.CUFE, &inv.FactusID,
		&inv.OrderReference, &inv.Total, &status, &kind, &inv.RelatedInvoiceID,
		&inv.PDFURL, &inv.XMLURL, &inv.QRURL,
		&apiResp, &det, &inv.CreatedAt, &inv.ValidatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	inv.Status = entity.InvoiceStatus(status)
	inv.DocumentType = entity.DocumentType(kind)
	inv.APIResponse = apiResp
	inv.ErrorDetail = det
	return &inv, nil
}

// Claim marca la factura como tomada hasta now()+lease. La condición de estado y de toma
// vencida va en el mismo UPDATE, así dos solicitudes no pueden tomarla a la vez.
func (r *InvoiceRepo) Claim(ctx context.Context, tenantID, id string, lease time.Duration, from ...entity.InvoiceStatus) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices
		SET claimed_until = now() + ($3::int * interval '1 second'), updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = ANY($4::text[])
		  AND (claimed_until IS NULL OR claimed_until < now())`,
		id, tenantID, int(lease.Seconds()), statusNames(from))
	if err != nil {
		return false, fmt.Errorf("claim invoice: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InvoiceRepo) Release(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx,
		`UPDATE invoices SET claimed_until = NULL WHERE id = $1 AND tenant_id = $2`, id, tenantID); err != nil {
		return fmt.Errorf("release invoice: %w", err)
	}
	return nil
}

// Transition persiste el resultado de validación o anulación si el estado no cambió desde la lectura.
func (r *InvoiceRepo) Transition(ctx context.Context, inv *entity.Invoice, from ...entity.InvoiceStatus) error {
	const q = `
		UPDATE invoices
		SET cufe = COALESCE($3, cufe), status = $4,
		    pdf_url = COALESCE($5, pdf_url), xml_url = COALESCE($6, xml_url), qr_url = COALESCE($7, qr_url),
		    api_response = COALESCE($8::jsonb, api_response), error_detail = $9::jsonb,
		    validated_at = COALESCE($10, validated_at), claimed_until = NULL, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = ANY($11::text[])
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q,
		inv.ID, inv.TenantID, nullIfEmpty(inv.CUFE), string(inv.Status),
		nullIfEmpty(inv.PDFURL), nullIfEmpty(inv.XMLURL), nullIfEmpty(inv.QRURL),
		jsonOrNull(inv.APIResponse), jsonOrNull(inv.ErrorDetail), inv.ValidatedAt, statusNames(from),
	).Scan(&inv.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update invoice: %w", err)
	}

	var current string
	err = r.q.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1 AND tenant_id = $2`, inv.ID, inv.TenantID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Errorf(domain.KindNotFound, "factura %s no encontrada", inv.Number)
	}
	if err != nil {
		return fmt.Errorf("get invoice status: %w", err)
	}
	return domain.Errorf(domain.KindConflict, "la factura %s cambió a %s mientras se procesaba", inv.Number, current).
		WithDetail("status", current)
}

func statusNames(list []entity.InvoiceStatus) []string {
	out := make([]string, len(list))
	for i, st := range list {
		out[i] = string(st)
	}
	return out
}
