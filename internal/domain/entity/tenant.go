package entity

import "time"

// Tenant es un restaurante con su propia cuenta en Factus.
// Las cuatro credenciales se guardan cifradas; nunca salen descifradas de la capa de integración.
type Tenant struct {
	ID            string
	Name          string
	NIT           string
	Address       string
	IsActive      bool
	BillingActive bool

	FactusClientID     string
	FactusClientSecret string
	FactusEmail        string
	FactusPassword     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MissingCredentials nombres de las credenciales Factus vacías.
func (t *Tenant) MissingCredentials() []string {
	var missing []string
	if t.FactusClientID == "" {
		missing = append(missing, "client_id")
	}
	if t.FactusClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if t.FactusEmail == "" {
		missing = append(missing, "email")
	}
	if t.FactusPassword == "" {
		missing = append(missing, "password")
	}
	return missing
}

// HasFactusCredentials las cuatro credenciales están presentes.
func (t *Tenant) HasFactusCredentials() bool {
	return len(t.MissingCredentials()) == 0
}
