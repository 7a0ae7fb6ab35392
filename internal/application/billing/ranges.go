package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

const (
	numberingRangesPath = "/v1/numbering-ranges"
	// reserveAttempts reintentos del compare-and-swap ante reservas concurrentes.
	reserveAttempts = 5
)

// RangeSynchronizer trae los rangos de numeración de Factus y administra el rango activo.
type RangeSynchronizer struct {
	tenants  repository.TenantRepository
	ranges   repository.NumberingRangeRepository
	tx       BillingTxRunner
	gateways GatewayFactory
	log      zerolog.Logger
	now      func() time.Time
}

// NewRangeSynchronizer construye el sincronizador.
func NewRangeSynchronizer(
	tenants repository.TenantRepository,
	ranges repository.NumberingRangeRepository,
	tx BillingTxRunner,
	gateways GatewayFactory,
	log zerolog.Logger,
) *RangeSynchronizer {
	return &RangeSynchronizer{
		tenants:  tenants,
		ranges:   ranges,
		tx:       tx,
		gateways: gateways,
		log:      log,
		now:      time.Now,
	}
}

// Sync trae los rangos de Factus y los guarda (upsert por tenant + id de Factus) en una sola transacción.
// Las condiciones esperadas (sin credenciales, Factus caído, respuesta rara) vuelven como
// Success=false; solo los errores de base de datos se devuelven como error.
func (s *RangeSynchronizer) Sync(ctx context.Context, tenantID string) (*dto.SyncRangesResponse, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if tenant == nil {
		return failedSync("Restaurante no encontrado"), nil
	}
	if missing := tenant.MissingCredentials(); len(missing) > 0 {
		return failedSync(fmt.Sprintf("El restaurante no tiene credenciales de Factus configuradas (faltan: %v)", missing)), nil
	}

	var raw []byte
	err = withGateway(ctx, s.gateways, tenantID, func(gw Gateway) error {
		var err error
		raw, err = gw.Get(ctx, numberingRangesPath, nil)
		return err
	})
	if err != nil {
		if derr, ok := domain.AsError(err); ok {
			s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("no se pudieron consultar los rangos en Factus")
			return failedSync("Error al consultar Factus: " + derr.Message), nil
		}
		return nil, err
	}

	items, err := rangeListing(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("respuesta de rangos no reconocida")
		return failedSync(err.Error()), nil
	}
	parsed, itemErrs := parseRanges(items)
	for _, ie := range itemErrs {
		s.log.Warn().Str("tenant_id", tenantID).Int("index", ie.Index).Str("error", ie.Error).Msg("rango de Factus descartado")
	}

	now := s.now()
	var created, updated int
	synced := make([]*entity.NumberingRange, 0, len(parsed))
	err = s.tx.RunBilling(ctx, func(ranges repository.NumberingRangeRepository, _ repository.InvoiceRepository) error {
		for _, p := range parsed {
			p.TenantID = tenantID
			p.LastSyncedAt = &now

			existing, err := ranges.GetByFactusID(ctx, tenantID, p.FactusID)
			if err != nil {
				return err
			}
			if existing == nil {
				p.IsActive = false
				if err := ranges.Create(ctx, p); err != nil {
					return err
				}
				created++
				synced = append(synced, p)
				continue
			}

			applyProviderFields(existing, p)
			if err := ranges.UpdateFromProvider(ctx, existing); err != nil {
				return err
			}
			updated++
			synced = append(synced, existing)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("guardar rangos sincronizados: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Int("created", created).
		Int("updated", updated).
		Int("discarded", len(itemErrs)).
		Msg("rangos sincronizados desde Factus")

	msg := fmt.Sprintf("Se sincronizaron %d rangos desde Factus", len(synced))
	if len(itemErrs) > 0 {
		msg += fmt.Sprintf(" (%d descartados)", len(itemErrs))
	}
	return &dto.SyncRangesResponse{
		Success:     true,
		Message:     msg,
		SyncedCount: len(synced),
		Created:     created,
		Updated:     updated,
		Ranges:      toRangeResponses(synced, now),
		Errors:      itemErrs,
	}, nil
}

func failedSync(msg string) *dto.SyncRangesResponse {
	return &dto.SyncRangesResponse{Success: false, Message: msg, Ranges: []dto.NumberingRangeResponse{}}
}

// applyProviderFields copia lo que informa Factus sin tocar is_active.
// El consecutivo local nunca retrocede: las reservas locales pueden ir por delante de Factus.
func applyProviderFields(dst, src *entity.NumberingRange) {
	dst.Document = src.Document
	dst.ResolutionNumber = src.ResolutionNumber
	dst.Prefix = src.Prefix
	dst.From = src.From
	dst.To = src.To
	dst.Current = max(dst.Current, src.Current)
	dst.ResolutionDate = src.ResolutionDate
	dst.StartDate = src.StartDate
	dst.ExpirationDate = src.ExpirationDate
	dst.TechnicalKey = src.TechnicalKey
	dst.IsExpired = src.IsExpired
	dst.LastSyncedAt = src.LastSyncedAt
}

// SetActive deja rangeID como único rango activo del tenant, en una transacción.
func (s *RangeSynchronizer) SetActive(ctx context.Context, tenantID, rangeID string) (*dto.ActivateRangeResponse, error) {
	var activated *entity.NumberingRange
	err := s.tx.RunBilling(ctx, func(ranges repository.NumberingRangeRepository, _ repository.InvoiceRepository) error {
		ok, err := ranges.SetActive(ctx, tenantID, rangeID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Errorf(domain.KindNotFound, "rango de numeración %s no encontrado", rangeID)
		}
		activated, err = ranges.GetByID(ctx, tenantID, rangeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if activated == nil {
		return nil, domain.Errorf(domain.KindNotFound, "rango de numeración %s no encontrado", rangeID)
	}

	s.log.Info().Str("tenant_id", tenantID).Str("range_id", rangeID).Str("prefix", activated.Prefix).Msg("rango activado")
	return &dto.ActivateRangeResponse{
		Success: true,
		Message: fmt.Sprintf("Rango %s activado correctamente", activated.Prefix),
		Range:   toRangeResponse(activated, s.now()),
	}, nil
}

// GetActive rango activo y vigente del tenant, o nil. Solo consulta la base local.
func (s *RangeSynchronizer) GetActive(ctx context.Context, tenantID string) (*entity.NumberingRange, error) {
	r, err := s.ranges.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get active range: %w", err)
	}
	return r, nil
}

// GetActiveResponse versión HTTP de GetActive: NOT_FOUND sin rango, INVALID_STATE si no sirve para facturar.
func (s *RangeSynchronizer) GetActiveResponse(ctx context.Context, tenantID string) (*dto.NumberingRangeResponse, error) {
	r, err := s.GetActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NewError(domain.KindNotFound, "No hay rango de numeración activo. Sincronice y active uno.")
	}
	now := s.now()
	if !r.IsValidAt(now) {
		return nil, domain.NewError(domain.KindInvalidState, "El rango activo no es válido (vencido o agotado)").
			WithDetail("range_id", r.ID).
			WithDetail("remaining_numbers", r.Remaining())
	}
	resp := toRangeResponse(r, now)
	return &resp, nil
}

// List rangos del tenant, el activo primero.
func (s *RangeSynchronizer) List(ctx context.Context, tenantID string) ([]dto.NumberingRangeResponse, error) {
	list, err := s.ranges.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ranges: %w", err)
	}
	return toRangeResponses(list, s.now()), nil
}

// ReserveNumber toma el siguiente consecutivo del rango con compare-and-swap sobre current_number.
// Dos reservas concurrentes nunca obtienen el mismo número.
func (s *RangeSynchronizer) ReserveNumber(ctx context.Context, tenantID, rangeID string) (*dto.ReservedNumberResponse, error) {
	return reserveNumber(ctx, s.ranges, tenantID, rangeID)
}

func reserveNumber(ctx context.Context, ranges repository.NumberingRangeRepository, tenantID, rangeID string) (*dto.ReservedNumberResponse, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		r, err := ranges.GetByID(ctx, tenantID, rangeID)
		if err != nil {
			return nil, fmt.Errorf("get range: %w", err)
		}
		if r == nil {
			return nil, domain.Errorf(domain.KindNotFound, "rango de numeración %s no encontrado", rangeID)
		}
		if r.IsExpired {
			return nil, domain.Errorf(domain.KindInvalidState, "el rango %s está vencido", r.Prefix)
		}
		next := max(r.Current, r.From-1) + 1
		if next > r.To {
			return nil, domain.Errorf(domain.KindInvalidState, "el rango %s no tiene números disponibles", r.Prefix).
				WithDetail("to_number", r.To)
		}
		ok, err := ranges.CompareAndSwapCurrent(ctx, tenantID, r.ID, r.Current, next)
		if err != nil {
			return nil, err
		}
		if ok {
			return &dto.ReservedNumberResponse{RangeID: r.ID, Prefix: r.Prefix, Number: next}, nil
		}
	}
	return nil, domain.Errorf(domain.KindConflict, "no se pudo reservar un número en el rango %s, intente de nuevo", rangeID)
}

func toRangeResponses(list []*entity.NumberingRange, now time.Time) []dto.NumberingRangeResponse {
	return lo.Map(list, func(r *entity.NumberingRange, _ int) dto.NumberingRangeResponse {
		return toRangeResponse(r, now)
	})
}

func toRangeResponse(r *entity.NumberingRange, now time.Time) dto.NumberingRangeResponse {
	return dto.NumberingRangeResponse{
		ID:               r.ID,
		FactusID:         r.FactusID,
		Document:         r.Document,
		ResolutionNumber: r.ResolutionNumber,
		Prefix:           r.Prefix,
		From:             r.From,
		To:               r.To,
		Current:          r.Current,
		ResolutionDate:   r.ResolutionDate,
		StartDate:        r.StartDate,
		ExpirationDate:   r.ExpirationDate,
		IsActive:         r.IsActive,
		IsExpired:        r.IsExpired,
		IsValid:          r.IsValidAt(now),
		RemainingNumbers: r.Remaining(),
		UsagePercentage:  r.UsagePercentage(),
		LastSyncedAt:     r.LastSyncedAt,
	}
}
