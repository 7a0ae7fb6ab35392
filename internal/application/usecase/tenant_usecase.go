package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

// CredentialEncrypter cifra una credencial antes de guardarla.
type CredentialEncrypter interface {
	Encrypt(plaintext string) (string, error)
	IsEncrypted(value string) bool
}

// TenantUseCase alta de restaurantes y manejo de sus credenciales Factus.
// Las credenciales entran en texto plano y solo se guardan cifradas; nunca se devuelven.
type TenantUseCase struct {
	repo  repository.TenantRepository
	vault CredentialEncrypter
	log   zerolog.Logger
}

// NewTenantUseCase construye el caso de uso con el puerto de persistencia y el cifrador.
func NewTenantUseCase(repo repository.TenantRepository, vault CredentialEncrypter, log zerolog.Logger) *TenantUseCase {
	return &TenantUseCase{repo: repo, vault: vault, log: log}
}

// Register crea un restaurante activo. La facturación queda habilitada solo si
// llegan las cuatro credenciales. Devuelve CONFLICT si el NIT ya existe.
func (uc *TenantUseCase) Register(ctx context.Context, in dto.RegisterTenantRequest) (*dto.TenantResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	t := &entity.Tenant{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(in.Name),
		NIT:      strings.TrimSpace(in.NIT),
		Address:  strings.TrimSpace(in.Address),
		IsActive: true,
	}
	if err := uc.applyCredentials(t, in.Credentials); err != nil {
		return nil, err
	}
	t.BillingActive = t.HasFactusCredentials()

	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", t.ID).
		Str("nit", t.NIT).
		Bool("billing_active", t.BillingActive).
		Msg("restaurante registrado")
	return toTenantResponse(t), nil
}

// Get restaurante sin credenciales.
func (uc *TenantUseCase) Get(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toTenantResponse(t), nil
}

// UpdateCredentials reemplaza las credenciales no vacías; las vacías conservan el valor guardado.
// Como cada request abre una sesión nueva con Factus, el cambio aplica desde la siguiente llamada.
func (uc *TenantUseCase) UpdateCredentials(ctx context.Context, tenantID string, in dto.FactusCredentialsRequest) (*dto.TenantStatusResponse, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := uc.applyCredentials(t, in); err != nil {
		return nil, err
	}
	t.BillingActive = t.HasFactusCredentials()
	if err := uc.repo.UpdateCredentials(ctx, t); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", t.ID).Bool("billing_active", t.BillingActive).Msg("credenciales Factus actualizadas")
	return toTenantStatus(t), nil
}

// Status estado de facturación: activo, credenciales completas y cuáles faltan.
func (uc *TenantUseCase) Status(ctx context.Context, tenantID string) (*dto.TenantStatusResponse, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toTenantStatus(t), nil
}

// EncryptPlaintextCredentials cifra las credenciales que quedaron guardadas en texto plano
// (datos anteriores al cifrado). Devuelve cuántos campos cifró; 0 no escribe nada.
func (uc *TenantUseCase) EncryptPlaintextCredentials(ctx context.Context, tenantID string) (int, error) {
	t, err := uc.load(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	var pending dto.FactusCredentialsRequest
	count := 0
	for _, f := range []struct {
		stored string
		dst    *string
	}{
		{t.FactusClientID, &pending.ClientID},
		{t.FactusClientSecret, &pending.ClientSecret},
		{t.FactusEmail, &pending.Email},
		{t.FactusPassword, &pending.Password},
	} {
		if f.stored != "" && !uc.vault.IsEncrypted(f.stored) {
			*f.dst = f.stored
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	if err := uc.applyCredentials(t, pending); err != nil {
		return 0, err
	}
	if err := uc.repo.UpdateCredentials(ctx, t); err != nil {
		return 0, err
	}
	uc.log.Info().Str("tenant_id", t.ID).Int("fields", count).Msg("credenciales en texto plano cifradas")
	return count, nil
}

func (uc *TenantUseCase) load(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := uc.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if t == nil {
		return nil, domain.ErrTenantNotFound.WithDetail("tenant_id", tenantID)
	}
	return t, nil
}

func (uc *TenantUseCase) applyCredentials(t *entity.Tenant, in dto.FactusCredentialsRequest) error {
	fields := []struct {
		name  string
		plain string
		dst   *string
	}{
		{"client_id", in.ClientID, &t.FactusClientID},
		{"client_secret", in.ClientSecret, &t.FactusClientSecret},
		{"email", in.Email, &t.FactusEmail},
		{"password", in.Password, &t.FactusPassword},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.plain)
		if v == "" {
			continue
		}
		enc, err := uc.vault.Encrypt(v)
		if err != nil {
			return domain.NewError(domain.KindInternal, "no se pudo cifrar la credencial").
				WithDetail("field", f.name).
				WithCause(err)
		}
		*f.dst = enc
	}
	return nil
}

func toTenantResponse(t *entity.Tenant) *dto.TenantResponse {
	return &dto.TenantResponse{
		ID:                   t.ID,
		Name:                 t.Name,
		NIT:                  t.NIT,
		Address:              t.Address,
		IsActive:             t.IsActive,
		BillingActive:        t.BillingActive,
		HasFactusCredentials: t.HasFactusCredentials(),
		CreatedAt:            t.CreatedAt,
	}
}

func toTenantStatus(t *entity.Tenant) *dto.TenantStatusResponse {
	return &dto.TenantStatusResponse{
		TenantID:             t.ID,
		IsActive:             t.IsActive,
		BillingActive:        t.BillingActive,
		HasFactusCredentials: t.HasFactusCredentials(),
		MissingCredentials:   t.MissingCredentials(),
	}
}
