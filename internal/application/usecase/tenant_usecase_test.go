package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/application/usecase"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/pkg/vault"
)

type memTenantRepo struct {
	rows map[string]*entity.Tenant
}

func (m *memTenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	for _, row := range m.rows {
		if row.NIT == t.NIT {
			return domain.Errorf(domain.KindConflict, "ya existe un restaurante con NIT %s", t.NIT)
		}
	}
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

func (m *memTenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memTenantRepo) UpdateCredentials(_ context.Context, t *entity.Tenant) error {
	if _, ok := m.rows[t.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	cp := *t
	m.rows[t.ID] = &cp
	return nil
}

type failingEncrypter struct{}

func (failingEncrypter) Encrypt(string) (string, error) { return "", errors.New("llave inválida") }
func (failingEncrypter) IsEncrypted(string) bool { return false }

func newTenantUseCase(t *testing.T) (*usecase.TenantUseCase, *memTenantRepo, *vault.Vault) {
	t.Helper()
	v, err := vault.New("secreto-de-pruebas")
	require.NoError(t, err)
	repo := &memTenantRepo{rows: map[string]*entity.Tenant{}}
	return usecase.NewTenantUseCase(repo, v, zerolog.Nop()), repo, v
}

func TestRegister_CifraCredenciales(t *testing.T) {
	uc, repo, v := newTenantUseCase(t)

	resp, err := uc.Register(context.Background(), dto.RegisterTenantRequest{
		Name: " La Fonda Paisa ",
		NIT:  "900373115",
		Credentials: dto.FactusCredentialsRequest{
			ClientID: "cid", ClientSecret: "csecret", Email: "caja@fonda.co", Password: "pw",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "La Fonda Paisa", resp.Name)
	assert.True(t, resp.IsActive)
	assert.True(t, resp.BillingActive)
	assert.True(t, resp.HasFactusCredentials)

	stored := repo.rows[resp.ID]
	require.NotNil(t, stored)
	for _, c := range []string{stored.FactusClientID, stored.FactusClientSecret, stored.FactusEmail, stored.FactusPassword} {
		assert.True(t, v.IsEncrypted(c), "credencial guardada en texto plano: %q", c)
	}
	plain, err := v.Decrypt(stored.FactusPassword)
	require.NoError(t, err)
	assert.Equal(t, "pw", plain)
}

func TestRegister_SinCredencialesQuedaSinFacturacion(t *testing.T) {
	uc, _, _ := newTenantUseCase(t)

	resp, err := uc.Register(context.Background(), dto.RegisterTenantRequest{Name: "Café Central", NIT: "800197268"})
	require.NoError(t, err)
	assert.False(t, resp.BillingActive)

	status, err := uc.Status(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.False(t, status.HasFactusCredentials)
	assert.ElementsMatch(t, []string{"client_id", "client_secret", "email", "password"}, status.MissingCredentials)
}

func TestRegister_Validaciones(t *testing.T) {
	uc, _, _ := newTenantUseCase(t)

	_, err := uc.Register(context.Background(), dto.RegisterTenantRequest{Name: "Sin NIT"})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = uc.Register(context.Background(), dto.RegisterTenantRequest{Name: "A", NIT: "900373115"})
	require.NoError(t, err)
	_, err = uc.Register(context.Background(), dto.RegisterTenantRequest{Name: "B", NIT: "900373115"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUpdateCredentials_ParcialConservaLasDemas(t *testing.T) {
	uc, repo, v := newTenantUseCase(t)
	resp, err := uc.Register(context.Background(), dto.RegisterTenantRequest{
		Name: "La Fonda", NIT: "900373115",
		Credentials: dto.FactusCredentialsRequest{ClientID: "cid", ClientSecret: "csecret", Email: "caja@fonda.co"},
	})
	require.NoError(t, err)
	assert.False(t, resp.BillingActive)
	before := *repo.rows[resp.ID]

	status, err := uc.UpdateCredentials(context.Background(), resp.ID, dto.FactusCredentialsRequest{Password: "nuevo"})
	require.NoError(t, err)
	assert.True(t, status.BillingActive)
	assert.Empty(t, status.MissingCredentials)

	after := repo.rows[resp.ID]
	assert.Equal(t, before.FactusClientID, after.FactusClientID, "los campos vacíos conservan el valor")
	assert.Equal(t, before.FactusEmail, after.FactusEmail)
	plain, err := v.Decrypt(after.FactusPassword)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", plain)
}

func TestUpdateCredentials_Errores(t *testing.T) {
	uc, _, _ := newTenantUseCase(t)
	_, err := uc.UpdateCredentials(context.Background(), "no-existe", dto.FactusCredentialsRequest{Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrTenantNotFound))

	repo := &memTenantRepo{rows: map[string]*entity.Tenant{"t1": {ID: "t1", Name: "X", NIT: "1"}}}
	broken := usecase.NewTenantUseCase(repo, failingEncrypter{}, zerolog.Nop())
	_, err = broken.UpdateCredentials(context.Background(), "t1", dto.FactusCredentialsRequest{Password: "x"})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, repo.rows["t1"].FactusPassword, "no se guarda nada si el cifrado falla")
}

func TestEncryptPlaintextCredentials(t *testing.T) {
	uc, repo, v := newTenantUseCase(t)
	cipherID, err := v.Encrypt("cid")
	require.NoError(t, err)
	repo.rows["legacy"] = &entity.Tenant{
		ID: "legacy", Name: "Asadero", NIT: "800197268", IsActive: true,
		FactusClientID: cipherID, FactusClientSecret: "csecret", FactusEmail: "caja@asadero.co", FactusPassword: "pw",
	}

	n, err := uc.EncryptPlaintextCredentials(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "solo se cifran los campos en texto plano")

	stored := repo.rows["legacy"]
	assert.Equal(t, cipherID, stored.FactusClientID, "el campo ya cifrado no se toca")
	for _, c := range []string{stored.FactusClientSecret, stored.FactusEmail, stored.FactusPassword} {
		assert.True(t, v.IsEncrypted(c))
	}
	plain, err := v.Decrypt(stored.FactusEmail)
	require.NoError(t, err)
	assert.Equal(t, "caja@asadero.co", plain)

	n, err = uc.EncryptPlaintextCredentials(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Zero(t, n, "segunda pasada no hace nada")
}
