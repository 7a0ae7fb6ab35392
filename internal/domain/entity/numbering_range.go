package entity

import (
	"strings"
	"time"
)

// NumberingRange rango de numeración autorizado por la DIAN y sincronizado desde Factus.
// Invariante: como máximo un rango con IsActive=true por tenant. Nunca se borran (auditoría).
type NumberingRange struct {
	ID               string
	TenantID         string
	FactusID         int64  // id del rango en Factus, único por tenant
	Document         string // "Factura de Venta", "Nota Crédito", ...
	ResolutionNumber string
	Prefix           string
	From             int64
	To               int64
	Current          int64 // consecutivo controlado localmente
	ResolutionDate   *time.Time
	StartDate        *time.Time
	ExpirationDate   *time.Time
	TechnicalKey     string
	IsActive         bool
	IsExpired        bool
	LastSyncedAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining números disponibles: max(0, to - current).
func (r *NumberingRange) Remaining() int64 {
	if r.To-r.Current < 0 {
		return 0
	}
	return r.To - r.Current
}

// UsagePercentage porcentaje consumido del rango.
func (r *NumberingRange) UsagePercentage() float64 {
	total := r.To - r.From
	if total <= 0 {
		return 100
	}
	current := r.Current
	if current == 0 {
		current = r.From
	}
	return float64(current-r.From) / float64(total) * 100
}

// IsValidAt el rango sirve para facturar en la fecha dada:
// activo, no vencido (bandera y fecha) y con números disponibles.
func (r *NumberingRange) IsValidAt(now time.Time) bool {
	return r.IsActive && r.IsUsableAt(now)
}

// IsUsableAt como IsValidAt pero sin exigir que sea el rango activo.
func (r *NumberingRange) IsUsableAt(now time.Time) bool {
	if r.IsExpired {
		return false
	}
	if r.ExpirationDate != nil && dateOnly(*r.ExpirationDate).Before(dateOnly(now)) {
		return false
	}
	return r.Current < r.To
}

// IsCreditNoteRange el prefijo identifica un rango de notas crédito ("NC...").
func (r *NumberingRange) IsCreditNoteRange() bool {
	return strings.HasPrefix(strings.ToUpper(r.Prefix), "NC")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
