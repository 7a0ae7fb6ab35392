package factus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/gastro-facturacion/internal/domain"
)

// tokenResponse respuesta de /oauth/token.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionManager mantiene el token OAuth2 de un tenant. Renueva con refresh_token
// cuando existe y cae a login completo si el refresh falla. Es seguro para uso
// concurrente: a lo sumo hay un intercambio con /oauth/token en vuelo.
type SessionManager struct {
	cfg     Config
	client  *http.Client
	log     zerolog.Logger
	metrics *Metrics
	now     func() time.Time

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	renew singleflight.Group
}

// SessionOption personaliza el SessionManager (tests).
type SessionOption func(*SessionManager)

// WithClock reemplaza el reloj.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionManager) { s.now = now }
}

// WithHTTPClient reemplaza el cliente HTTP.
func WithHTTPClient(c *http.Client) SessionOption {
	return func(s *SessionManager) { s.client = c }
}

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *SessionManager) { s.log = l }
}

// WithMetrics asigna los colectores de Prometheus.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *SessionManager) { s.metrics = m }
}

// NewSessionManager crea el manejador de sesión sin token; el primer GetValidToken hace login.
func NewSessionManager(cfg Config, opts ...SessionOption) *SessionManager {
	s := &SessionManager{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetValidToken devuelve un access token con al menos TokenMargin de vida restante.
// Llamadas concurrentes con el token vencido esperan el mismo intercambio.
func (s *SessionManager) GetValidToken(ctx context.Context) (string, error) {
	if tok, ok := s.cachedToken(); ok {
		return tok, nil
	}

	ch := s.renew.DoChan("token", func() (any, error) {
		// otro llamador pudo renovar entre la lectura y el Do
		if tok, ok := s.cachedToken(); ok {
			return tok, nil
		}
		// el intercambio no depende de la cancelación del primer llamador; lo acota el timeout del cliente
		return s.renewToken(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", domain.ErrConnectionFailed.WithCause(ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// Invalidate descarta el estado del token; la siguiente llamada hace login.
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	s.accessToken, s.refreshToken, s.expiresAt = "", "", time.Time{}
	s.mu.Unlock()
}

// ExpiresAt instante de expiración del token actual (cero si no hay token).
func (s *SessionManager) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *SessionManager) cachedToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.accessToken == "" || s.expiresAt.IsZero() {
		return "", false
	}
	if !s.now().Before(s.expiresAt.Add(-s.cfg.TokenMargin)) {
		return "", false
	}
	return s.accessToken, true
}

func (s *SessionManager) renewToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh != "" {
		err := s.exchange(ctx, "refresh_token", url.Values{
			"grant_type":    {"refresh_token"},
			"client_id":     {s.cfg.Credentials.ClientID},
			"client_secret": {s.cfg.Credentials.ClientSecret},
			"refresh_token": {refresh},
		})
		switch {
		case err == nil:
			return s.currentOrUnavailable()
		case domain.KindOf(err) == domain.KindAuthenticationFailed:
			s.log.Warn().Str("tenant_id", s.cfg.TenantID).Msg("refresh de token rechazado, se hace login completo")
			s.Invalidate()
		default:
			return "", err
		}
	}

	if err := s.exchange(ctx, "password", url.Values{
		"grant_type":    {"password"},
		"client_id":     {s.cfg.Credentials.ClientID},
		"client_secret": {s.cfg.Credentials.ClientSecret},
		"username":      {s.cfg.Credentials.Email},
		"password":      {s.cfg.Credentials.Password},
	}); err != nil {
		return "", err
	}
	return s.currentOrUnavailable()
}

func (s *SessionManager) currentOrUnavailable() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.accessToken == "" {
		return "", domain.ErrTokenUnavailable
	}
	return s.accessToken, nil
}

// exchange hace POST a /oauth/token y guarda el resultado.
func (s *SessionManager) exchange(ctx context.Context, grant string, form url.Values) (err error) {
	defer func() { s.metrics.observeExchange(grant, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.ErrConnectionFailed.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("tenant_id", s.cfg.TenantID).Str("grant", grant).Msg("error de conexión con /oauth/token")
		return transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.ErrConnectionFailed.WithCause(fmt.Errorf("leer respuesta de token: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		s.log.Warn().Str("tenant_id", s.cfg.TenantID).Str("grant", grant).Int("status", resp.StatusCode).Msg("Factus rechazó el intercambio de token")
		return domain.ErrAuthenticationFailed.
			WithStatus(resp.StatusCode).
			WithDetail("grant_type", grant).
			WithDetail("response", truncate(string(body), maxLoggedBody))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return domain.ErrTokenUnavailable.WithCause(fmt.Errorf("decodificar respuesta de token: %w", err))
	}
	if tr.AccessToken == "" {
		return domain.ErrTokenUnavailable.WithDetail("grant_type", grant)
	}
	if tr.ExpiresIn <= 0 {
		tr.ExpiresIn = defaultExpiresIn
	}

	s.mu.Lock()
	s.accessToken = tr.AccessToken
	s.refreshToken = tr.RefreshToken
	s.expiresAt = s.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	s.mu.Unlock()

	s.log.Debug().Str("tenant_id", s.cfg.TenantID).Str("grant", grant).Int64("expires_in", tr.ExpiresIn).Msg("token de Factus obtenido")
	return nil
}

// transportError convierte fallas de red o timeout en CONNECTION_FAILED.
func transportError(err error) error {
	e := domain.ErrConnectionFailed.WithCause(err)
	if isTimeout(err) {
		e = e.WithDetail("timeout", true)
	}
	return e
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
