package dto

import "time"

// FactusCredentialsRequest credenciales Factus en texto plano (se cifran antes de persistir).
// En actualización los campos vacíos conservan el valor anterior.
type FactusCredentialsRequest struct {
	ClientID     string `json:"factus_client_id"`
	ClientSecret string `json:"factus_client_secret"`
	Email        string `json:"factus_email"`
	Password     string `json:"factus_password"`
}

// RegisterTenantRequest body para POST /api/tenants.
type RegisterTenantRequest struct {
	Name        string                   `json:"name" validate:"required,max=200"`
	NIT         string                   `json:"nit" validate:"required,max=20"`
	Address     string                   `json:"address,omitempty" validate:"max=500"`
	Credentials FactusCredentialsRequest `json:"credentials"`
}

// TenantResponse restaurante sin credenciales.
type TenantResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	NIT                  string    `json:"nit"`
	Address              string    `json:"address,omitempty"`
	IsActive             bool      `json:"is_active"`
	BillingActive        bool      `json:"billing_active"`
	HasFactusCredentials bool      `json:"has_factus_credentials"`
	CreatedAt            time.Time `json:"created_at"`
}

// TenantStatusResponse estado de facturación del restaurante.
type TenantStatusResponse struct {
	TenantID             string   `json:"tenant_id"`
	IsActive             bool     `json:"is_active"`
	BillingActive        bool     `json:"billing_active"`
	HasFactusCredentials bool     `json:"has_factus_credentials"`
	MissingCredentials   []string `json:"missing_credentials,omitempty"`
}
