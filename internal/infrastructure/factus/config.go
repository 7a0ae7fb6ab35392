// Package factus implementa la integración HTTP con la API de Factus por tenant:
// sesión OAuth2 (SessionManager), llamadas autenticadas con clasificación de errores
// (Gateway) y la fábrica que arma ambos a partir del tenant (SessionFactory).
package factus

import "time"

const (
	DefaultTokenMargin = 300 * time.Second
	DefaultTimeout     = 30 * time.Second
	defaultExpiresIn   = 3600 // segundos, si Factus no informa expires_in

	tokenPath       = "/oauth/token"
	maxResponseBody = 4 << 20
	maxLoggedBody   = 2048
)

// Credentials credenciales Factus ya descifradas. Nunca se loguean.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Email        string
	Password     string
}

// Settings parámetros compartidos por todos los tenants.
type Settings struct {
	BaseURL     string
	TokenMargin time.Duration
	Timeout     time.Duration
}

// Config configuración de una sesión de tenant. Se construye una vez por operación
// y se pasa por valor; nadie la modifica después.
type Config struct {
	TenantID    string
	BaseURL     string
	Credentials Credentials
	TokenMargin time.Duration
	Timeout     time.Duration
}

// NewConfig combina los parámetros compartidos con las credenciales del tenant
// aplicando valores por defecto.
func NewConfig(tenantID string, s Settings, creds Credentials) Config {
	cfg := Config{
		TenantID:    tenantID,
		BaseURL:     s.BaseURL,
		Credentials: creds,
		TokenMargin: s.TokenMargin,
		Timeout:     s.Timeout,
	}
	if cfg.TokenMargin <= 0 {
		cfg.TokenMargin = DefaultTokenMargin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}
