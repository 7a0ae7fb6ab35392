package factus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/domain"
)

// TokenSource origen de tokens del Gateway. *SessionManager lo implementa.
type TokenSource interface {
	GetValidToken(ctx context.Context) (string, error)
	Invalidate()
}

// Gateway ejecuta llamadas autenticadas contra Factus para un tenant.
// Ante un 401 invalida el token y reintenta una sola vez.
// El llamador debe invocar Close al terminar.
type Gateway struct {
	cfg       Config
	tokens    TokenSource
	client    *http.Client
	transport *http.Transport
	log       zerolog.Logger
	metrics   *Metrics
}

// NewGateway crea el gateway. transport puede ser nil si el cliente no es propio.
func NewGateway(cfg Config, tokens TokenSource, client *http.Client, transport *http.Transport, log zerolog.Logger, metrics *Metrics) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Gateway{
		cfg:       cfg,
		tokens:    tokens,
		client:    client,
		transport: transport,
		log:       log,
		metrics:   metrics,
	}
}

// TenantID tenant dueño de la sesión.
func (g *Gateway) TenantID() string { return g.cfg.TenantID }

// Get hace GET al endpoint con los parámetros dados.
func (g *Gateway) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return g.request(ctx, http.MethodGet, path, query, nil)
}

// Post envía body como JSON.
func (g *Gateway) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return g.request(ctx, http.MethodPost, path, nil, body)
}

// Put envía body como JSON.
func (g *Gateway) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return g.request(ctx, http.MethodPut, path, nil, body)
}

// Delete hace DELETE al endpoint.
func (g *Gateway) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return g.request(ctx, http.MethodDelete, path, nil, nil)
}

// Close libera las conexiones del transporte propio.
func (g *Gateway) Close() error {
	if g.transport != nil {
		g.transport.CloseIdleConnections()
	}
	return nil
}

func (g *Gateway) request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, domain.Errorf(domain.KindInvalidInput, "serializar payload para %s: %v", path, err)
		}
		payload = b
	}

	status, respBody, err := g.send(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		g.log.Warn().Str("tenant_id", g.cfg.TenantID).Str("path", path).Msg("401 de Factus, se renueva el token y se reintenta")
		g.tokens.Invalidate()
		status, respBody, err = g.send(ctx, method, path, query, payload)
		if err != nil {
			return nil, err
		}
	}

	if status >= 400 {
		return nil, classifyError(status, path, respBody)
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, domain.ErrServerError.
			WithStatus(status).
			WithDetail("response", truncate(string(respBody), maxLoggedBody))
	}
	return json.RawMessage(respBody), nil
}

// send ejecuta un intento. Devuelve el estado y el cuerpo; err solo para fallas de transporte o token.
func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	token, err := g.tokens.GetValidToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	u := g.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return 0, nil, domain.ErrConnectionFailed.WithCause(fmt.Errorf("armar request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.observeRequest(method, path, 0, time.Since(start))
		g.log.Error().Err(err).Str("tenant_id", g.cfg.TenantID).Str("method", method).Str("path", path).Msg("error de conexión con Factus")
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	g.metrics.observeRequest(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, transportError(fmt.Errorf("leer respuesta: %w", err))
	}

	g.log.Debug().
		Str("tenant_id", g.cfg.TenantID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("llamada a Factus")
	return resp.StatusCode, respBody, nil
}

// providerError forma habitual de los errores de Factus.
type providerError struct {
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

// classifyError traduce un estado >= 400 a la taxonomía de errores.
func classifyError(status int, path string, body []byte) error {
	message := truncate(string(bytes.TrimSpace(body)), maxLoggedBody)
	var details any = message

	var pe providerError
	if err := json.Unmarshal(body, &pe); err == nil {
		if pe.Message != "" {
			message = pe.Message
		}
		if pe.Errors != nil {
			details = pe.Errors
		} else {
			var raw map[string]any
			if json.Unmarshal(body, &raw) == nil {
				details = raw
			}
		}
	}
	if message == "" {
		message = fmt.Sprintf("Error HTTP %d", status)
	}

	var base *domain.Error
	switch {
	case status == http.StatusUnauthorized:
		base = domain.ErrAuthenticationFailed
	case status == http.StatusUnprocessableEntity:
		base = domain.Errorf(domain.KindValidationFailed, "error de validación: %s", message)
	case status == http.StatusNotFound:
		base = domain.Errorf(domain.KindResourceNotFound, "recurso no encontrado: %s", path)
	case status < 500:
		base = domain.Errorf(domain.KindClientError, "error del cliente: %s", message)
	default:
		base = domain.Errorf(domain.KindServerError, "error del servidor de Factus: %s", message)
	}
	return base.WithStatus(status).WithDetail("errors", details)
}
