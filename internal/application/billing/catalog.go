package billing

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
)

const (
	municipalitiesPath = "/v1/municipalities"
	tributesPath       = "/v1/tributes"
	paymentMethodsPath = "/v1/payment-methods"

	defaultPerPage = 50
	maxPerPage     = 100
)

// CatalogService catálogos de Factus (municipios, tributos, medios de pago) con caché por tenant.
type CatalogService struct {
	gateways GatewayFactory
	cache    *cache.Cache
	log      zerolog.Logger
}

// NewCatalogService ttl <= 0 desactiva la caché.
func NewCatalogService(gateways GatewayFactory, ttl time.Duration, log zerolog.Logger) *CatalogService {
	s := &CatalogService{gateways: gateways, log: log}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Municipalities catálogo paginado de municipios.
func (s *CatalogService) Municipalities(ctx context.Context, tenantID string, q dto.MunicipalityQuery) (json.RawMessage, error) {
	page := max(q.Page, 1)
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("search", search)
	}
	return s.fetch(ctx, tenantID, municipalitiesPath, params)
}

// Tributes catálogo de tributos (1 = IVA, 22 = impoconsumo, ...).
func (s *CatalogService) Tributes(ctx context.Context, tenantID string) (json.RawMessage, error) {
	return s.fetch(ctx, tenantID, tributesPath, nil)
}

// PaymentMethods medios de pago DIAN.
func (s *CatalogService) PaymentMethods(ctx context.Context, tenantID string) (json.RawMessage, error) {
	return s.fetch(ctx, tenantID, paymentMethodsPath, nil)
}

// Health verifica la conexión con Factus para el tenant. Nunca devuelve error.
func (s *CatalogService) Health(ctx context.Context, tenantID string) *dto.ProviderHealthResponse {
	err := withGateway(ctx, s.gateways, tenantID, func(gw Gateway) error {
		_, err := gw.Get(ctx, paymentMethodsPath, nil)
		return err
	})
	if err == nil {
		return &dto.ProviderHealthResponse{Status: "ok", Message: "Conexión exitosa con Factus", Authenticated: true}
	}

	s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("health check de Factus fallido")
	msg := err.Error()
	if derr, ok := domain.AsError(err); ok {
		msg = derr.Message
	}
	return &dto.ProviderHealthResponse{Status: "error", Message: msg, Authenticated: authenticatedDespite(err)}
}

// authenticatedDespite el error ocurrió después de obtener token.
func authenticatedDespite(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindValidationFailed, domain.KindResourceNotFound, domain.KindClientError, domain.KindServerError:
		return true
	}
	return false
}

func (s *CatalogService) fetch(ctx context.Context, tenantID, path string, params url.Values) (json.RawMessage, error) {
	key := tenantID + "|" + path + "?" + params.Encode()
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(json.RawMessage), nil
		}
	}

	var raw json.RawMessage
	err := withGateway(ctx, s.gateways, tenantID, func(gw Gateway) error {
		var err error
		raw, err = gw.Get(ctx, path, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data := field(raw, "data"); data != nil {
		raw = data
	}
	if raw == nil {
		raw = json.RawMessage("[]")
	}
	if s.cache != nil {
		s.cache.SetDefault(key, raw)
	}
	return raw, nil
}
