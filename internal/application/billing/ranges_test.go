package billing_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gastro-facturacion/internal/application/billing"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
)

const tenantA, tenantB = "tenant-a", "tenant-b"

func newSynchronizer(tenants *memTenants, ranges *memRanges, provider *fakeProvider) *billing.RangeSynchronizer {
	tx := &fakeTx{ranges: ranges, invoices: newMemInvoices()}
	return billing.NewRangeSynchronizer(tenants, ranges, tx, provider, zerolog.Nop())
}

func TestSync_CreaRangoDesdeRespuestaAnidada(t *testing.T) {
	ranges := newMemRanges()
	provider := newFakeProvider().on("GET", "/v1/numbering-ranges",
		`{"data":{"data":[{"id":8,"document":"Factura de Venta","prefix":"SETT","from":1,"to":1000,"current":5,"resolution_number":"R-1"}]}}`)
	s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), ranges, provider)

	resp, err := s.Sync(context.Background(), tenantA)
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, 1, resp.SyncedCount)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 0, resp.Updated)
	assert.Empty(t, resp.Errors)

	list, err := ranges.ListByTenant(context.Background(), tenantA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	r := list[0]
	assert.Equal(t, int64(8), r.FactusID)
	assert.Equal(t, "SETT", r.Prefix)
	assert.Equal(t, "R-1", r.ResolutionNumber)
	assert.Equal(t, int64(995), r.Remaining())
	assert.False(t, r.IsActive, "un rango nuevo nunca queda activo")
	assert.NotNil(t, r.LastSyncedAt)

	require.Len(t, resp.Ranges, 1)
	assert.Equal(t, int64(995), resp.Ranges[0].RemainingNumbers)
	assert.Equal(t, 1, provider.closed, "la sesión debe cerrarse")
}

func TestSync_FormasDeListado(t *testing.T) {
	item := `{"id":3,"prefix":"SETP","from":990000000,"to":995000000,"current":990000010}`
	cases := map[string]string{
		"arreglo plano":    `[` + item + `]`,
		"data con arreglo": `{"data":[` + item + `]}`,
		"data paginada":    `{"data":{"data":[` + item + `],"pagination":{"total":1}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ranges := newMemRanges()
			provider := newFakeProvider().on("GET", "/v1/numbering-ranges", body)
			s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), ranges, provider)

			resp, err := s.Sync(context.Background(), tenantA)
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, 1, resp.SyncedCount)
		})
	}
}

func TestSync_ItemsInvalidosNoCortanElResto(t *testing.T) {
	ranges := newMemRanges()
	provider := newFakeProvider().on("GET", "/v1/numbering-ranges", `{"data":[
		{"id":1,"prefix":"SETP","from":1,"to":100,"current":0},
		{"prefix":"SIN","from":1,"to":10},
		"basura",
		{"id":4,"prefix":"MAL","from":50,"to":10},
		{"id":"5","prefix":"NC","from":"1","to":"500","current":"2","is_expired":"0"}
	]}`)
	s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), ranges, provider)

	resp, err := s.Sync(context.Background(), tenantA)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.SyncedCount)
	require.Len(t, resp.Errors, 3)
	assert.Equal(t, 1, resp.Errors[0].Index)
	assert.Nil(t, resp.Errors[0].FactusID)
	assert.Equal(t, 2, resp.Errors[1].Index)
	require.NotNil(t, resp.Errors[2].FactusID)
	assert.Equal(t, int64(4), *resp.Errors[2].FactusID)

	nc, err := ranges.GetByFactusID(context.Background(), tenantA, 5)
	require.NoError(t, err)
	require.NotNil(t, nc, "los números como texto también se aceptan")
	assert.Equal(t, int64(2), nc.Current)
}

func TestSync_ActualizaSinTocarActivoNiRetrocederConsecutivo(t *testing.T) {
	existing := &entity.NumberingRange{
		TenantID: tenantA, FactusID: 8, Prefix: "SETT", From: 1, To: 1000, Current: 50, IsActive: true,
	}
	ranges := newMemRanges(existing)
	provider := newFakeProvider().on("GET", "/v1/numbering-ranges",
		`[{"id":8,"prefix":"SETT","from":1,"to":2000,"current":30,"resolution_number":"R-2","end_date":"2027-12-31"}]`)
	s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), ranges, provider)

	resp, err := s.Sync(context.Background(), tenantA)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 1, resp.Updated)

	r, err := ranges.GetByID(context.Background(), tenantA, existing.ID)
	require.NoError(t, err)
	assert.True(t, r.IsActive, "la sincronización no cambia is_active")
	assert.Equal(t, int64(50), r.Current, "el consecutivo local no retrocede")
	assert.Equal(t, int64(2000), r.To)
	assert.Equal(t, "R-2", r.ResolutionNumber)
	require.NotNil(t, r.ExpirationDate)
	assert.Equal(t, 2027, r.ExpirationDate.Year())
}

func TestSync_CondicionesEsperadasNoSonError(t *testing.T) {
	noCreds := tenantWithCredentials(tenantB)
	noCreds.FactusPassword = ""

	t.Run("restaurante inexistente", func(t *testing.T) {
		provider := newFakeProvider()
		s := newSynchronizer(newMemTenants(), newMemRanges(), provider)
		resp, err := s.Sync(context.Background(), "nadie")
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 0, provider.opened)
	})

	t.Run("sin credenciales", func(t *testing.T) {
		provider := newFakeProvider()
		s := newSynchronizer(newMemTenants(noCreds), newMemRanges(), provider)
		resp, err := s.Sync(context.Background(), tenantB)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Message, "password")
		assert.Equal(t, 0, provider.opened, "no se llama a Factus sin credenciales")
	})

	t.Run("Factus caído", func(t *testing.T) {
		provider := newFakeProvider().fail("GET", "/v1/numbering-ranges", domain.ErrServerError)
		s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), newMemRanges(), provider)
		resp, err := s.Sync(context.Background(), tenantA)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Message, "Error al consultar Factus")
		assert.NotNil(t, resp.Ranges)
	})

	t.Run("respuesta sin data", func(t *testing.T) {
		provider := newFakeProvider().on("GET", "/v1/numbering-ranges", `{"message":"ok"}`)
		s := newSynchronizer(newMemTenants(tenantWithCredentials(tenantA)), newMemRanges(), provider)
		resp, err := s.Sync(context.Background(), tenantA)
		require.NoError(t, err)
		assert.False(t, resp.Success)
	})
}

func TestSetActive_UnSoloActivoPorTenant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var seed []*entity.NumberingRange
	for i := 0; i < 12; i++ {
		tenant := tenantA
		if i%3 == 0 {
			tenant = tenantB
		}
		seed = append(seed, &entity.NumberingRange{
			TenantID: tenant, FactusID: int64(i + 1), Prefix: "P", From: 1, To: 100,
		})
	}
	ranges := newMemRanges(seed...)
	s := newSynchronizer(newMemTenants(), ranges, newFakeProvider())

	for step := 0; step < 200; step++ {
		target := seed[rng.Intn(len(seed))]
		resp, err := s.SetActive(context.Background(), target.TenantID, target.ID)
		require.NoError(t, err)
		assert.True(t, resp.Range.IsActive)
		assert.Equal(t, target.ID, resp.Range.ID)

		assert.LessOrEqual(t, ranges.activeCount(tenantA), 1, "paso %d", step)
		assert.LessOrEqual(t, ranges.activeCount(tenantB), 1, "paso %d", step)
		active, err := ranges.GetActive(context.Background(), target.TenantID)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, target.ID, active.ID)
	}
}

func TestSetActive_RangoDeOtroTenant(t *testing.T) {
	r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 10}
	ranges := newMemRanges(r)
	s := newSynchronizer(newMemTenants(), ranges, newFakeProvider())

	_, err := s.SetActive(context.Background(), tenantB, r.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err), "el rango ajeno no se revela")
	assert.Equal(t, 0, ranges.activeCount(tenantA))
}

func TestGetActiveResponse(t *testing.T) {
	past := time.Now().AddDate(0, 0, -2)

	t.Run("sin rango activo", func(t *testing.T) {
		s := newSynchronizer(newMemTenants(), newMemRanges(), newFakeProvider())
		_, err := s.GetActiveResponse(context.Background(), tenantA)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("activo pero vencido por fecha", func(t *testing.T) {
		ranges := newMemRanges(&entity.NumberingRange{
			TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 10, IsActive: true, ExpirationDate: &past,
		})
		s := newSynchronizer(newMemTenants(), ranges, newFakeProvider())
		_, err := s.GetActiveResponse(context.Background(), tenantA)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	})

	t.Run("activo y vigente", func(t *testing.T) {
		ranges := newMemRanges(&entity.NumberingRange{
			TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 10, Current: 4, IsActive: true,
		})
		s := newSynchronizer(newMemTenants(), ranges, newFakeProvider())
		resp, err := s.GetActiveResponse(context.Background(), tenantA)
		require.NoError(t, err)
		assert.True(t, resp.IsValid)
		assert.Equal(t, int64(6), resp.RemainingNumbers)
	})
}

func TestReserveNumber(t *testing.T) {
	t.Run("arranca en from aunque current sea cero", func(t *testing.T) {
		r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 990000000, To: 995000000}
		s := newSynchronizer(newMemTenants(), newMemRanges(r), newFakeProvider())

		first, err := s.ReserveNumber(context.Background(), tenantA, r.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(990000000), first.Number)

		second, err := s.ReserveNumber(context.Background(), tenantA, r.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(990000001), second.Number)
		assert.Equal(t, "SETP", second.Prefix)
	})

	t.Run("rango agotado", func(t *testing.T) {
		r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 3, Current: 3}
		s := newSynchronizer(newMemTenants(), newMemRanges(r), newFakeProvider())
		_, err := s.ReserveNumber(context.Background(), tenantA, r.ID)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
	})

	t.Run("rango vencido", func(t *testing.T) {
		r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 3, IsExpired: true}
		s := newSynchronizer(newMemTenants(), newMemRanges(r), newFakeProvider())
		_, err := s.ReserveNumber(context.Background(), tenantA, r.ID)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
	})

	t.Run("rango de otro tenant", func(t *testing.T) {
		r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 3}
		s := newSynchronizer(newMemTenants(), newMemRanges(r), newFakeProvider())
		_, err := s.ReserveNumber(context.Background(), tenantB, r.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestReserveNumber_ConcurrenteSinDuplicados(t *testing.T) {
	r := &entity.NumberingRange{TenantID: tenantA, FactusID: 1, Prefix: "SETP", From: 1, To: 1000}
	ranges := newMemRanges(r)
	s := newSynchronizer(newMemTenants(), ranges, newFakeProvider())

	const workers, perWorker = 8, 10
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; {
				res, err := s.ReserveNumber(context.Background(), tenantA, r.ID)
				if domain.KindOf(err) == domain.KindConflict {
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				assert.False(t, seen[res.Number], "número repetido %d", res.Number)
				seen[res.Number] = true
				mu.Unlock()
				i++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	got, err := ranges.GetByID(context.Background(), tenantA, r.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), got.Current)
}
