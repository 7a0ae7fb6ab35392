package dto

import "time"

// NumberingRangeResponse rango de numeración con campos calculados.
type NumberingRangeResponse struct {
	ID               string     `json:"id"`
	FactusID         int64      `json:"factus_id"`
	Document         string     `json:"document,omitempty"`
	ResolutionNumber string     `json:"resolution_number"`
	Prefix           string     `json:"prefix"`
	From             int64      `json:"from_number"`
	To               int64      `json:"to_number"`
	Current          int64      `json:"current_number"`
	ResolutionDate   *time.Time `json:"resolution_date,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	IsActive         bool       `json:"is_active"`
	IsExpired        bool       `json:"is_expired"`
	IsValid          bool       `json:"is_valid"`
	RemainingNumbers int64      `json:"remaining_numbers"`
	UsagePercentage  float64    `json:"usage_percentage"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
}

// RangeItemError rango de Factus descartado durante la sincronización.
type RangeItemError struct {
	Index    int    `json:"index"`
	FactusID *int64 `json:"factus_id,omitempty"`
	Error    string `json:"error"`
}

// SyncRangesResponse resultado de la sincronización. Nunca se devuelve como error HTTP
// para condiciones esperadas (credenciales faltantes, Factus caído): Success=false y Message.
type SyncRangesResponse struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message"`
	SyncedCount int                      `json:"synced_count"`
	Created     int                      `json:"created"`
	Updated     int                      `json:"updated"`
	Ranges      []NumberingRangeResponse `json:"ranges"`
	Errors      []RangeItemError         `json:"errors,omitempty"`
}

// ActivateRangeResponse respuesta de POST /ranges/:id/activate.
type ActivateRangeResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Range   NumberingRangeResponse `json:"range"`
}

// ReservedNumberResponse consecutivo reservado localmente.
type ReservedNumberResponse struct {
	RangeID string `json:"range_id"`
	Prefix  string `json:"prefix"`
	Number  int64  `json:"number"`
}
