package factus

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
	"github.com/jhoicas/gastro-facturacion/pkg/vault"
)

// CredentialDecrypter lo que la fábrica necesita del vault.
type CredentialDecrypter interface {
	DecryptIfNeeded(value string) (string, error)
}

// SessionFactory arma un Gateway por tenant con sus credenciales descifradas.
type SessionFactory struct {
	tenants  repository.TenantRepository
	vault    CredentialDecrypter
	settings Settings
	log      zerolog.Logger
	metrics  *Metrics
	// newTransport permite a los tests inyectar el transporte.
	newTransport func() *http.Transport
}

// NewSessionFactory crea la fábrica.
func NewSessionFactory(tenants repository.TenantRepository, v CredentialDecrypter, settings Settings, log zerolog.Logger, metrics *Metrics) *SessionFactory {
	return &SessionFactory{
		tenants:  tenants,
		vault:    v,
		settings: settings,
		log:      log,
		metrics:  metrics,
		newTransport: func() *http.Transport {
			return http.DefaultTransport.(*http.Transport).Clone()
		},
	}
}

// CreateSessionFor carga el tenant, descifra sus credenciales y devuelve un Gateway
// con transporte propio. El llamador debe cerrarlo (defer gw.Close()).
func (f *SessionFactory) CreateSessionFor(ctx context.Context, tenantID string) (*Gateway, error) {
	t, err := f.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if t == nil {
		return nil, domain.ErrTenantNotFound.WithDetail("tenant_id", tenantID)
	}
	if !t.IsActive {
		return nil, domain.ErrTenantInactive.WithDetail("tenant_id", tenantID)
	}
	if missing := t.MissingCredentials(); len(missing) > 0 {
		return nil, domain.ErrCredentialsIncomplete.WithDetail("missing", missing)
	}

	creds, err := f.decryptCredentials(t.FactusClientID, t.FactusClientSecret, t.FactusEmail, t.FactusPassword)
	if err != nil {
		f.log.Error().Err(err).Str("tenant_id", tenantID).Msg("no se pudieron descifrar las credenciales de Factus")
		return nil, err
	}

	cfg := NewConfig(tenantID, f.settings, creds)
	transport := f.newTransport()
	client := &http.Client{Timeout: cfg.Timeout, Transport: transport}
	log := f.log.With().Str("tenant_id", tenantID).Logger()

	session := NewSessionManager(cfg, WithHTTPClient(client), WithLogger(log), WithMetrics(f.metrics))
	return NewGateway(cfg, session, client, transport, log, f.metrics), nil
}

func (f *SessionFactory) decryptCredentials(clientID, clientSecret, email, password string) (Credentials, error) {
	fields := []*string{&clientID, &clientSecret, &email, &password}
	names := []string{"client_id", "client_secret", "email", "password"}
	for i, p := range fields {
		plain, err := f.vault.DecryptIfNeeded(*p)
		if err != nil {
			if errors.Is(err, vault.ErrDecryption) {
				return Credentials{}, domain.ErrDecryption.WithDetail("field", names[i]).WithCause(err)
			}
			return Credentials{}, fmt.Errorf("decrypt %s: %w", names[i], err)
		}
		*p = plain
	}
	return Credentials{ClientID: clientID, ClientSecret: clientSecret, Email: email, Password: password}, nil
}
