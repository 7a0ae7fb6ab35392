package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/jhoicas/gastro-facturacion/internal/application/billing"
	"github.com/jhoicas/gastro-facturacion/internal/domain"
	"github.com/jhoicas/gastro-facturacion/internal/domain/entity"
	"github.com/jhoicas/gastro-facturacion/internal/domain/repository"
)

// ─── Rangos en memoria ───────────────────────────────────────────────────────

type memRanges struct {
	mu   sync.Mutex
	rows map[string]*entity.NumberingRange
	seq  int
}

var _ repository.NumberingRangeRepository = (*memRanges)(nil)

func newMemRanges(rs ...*entity.NumberingRange) *memRanges {
	m := &memRanges{rows: map[string]*entity.NumberingRange{}}
	for _, r := range rs {
		if err := m.Create(context.Background(), r); err != nil {
			panic(err)
		}
	}
	return m
}

func (m *memRanges) Create(_ context.Context, r *entity.NumberingRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TenantID == r.TenantID && row.FactusID == r.FactusID {
			return domain.ErrConflict
		}
	}
	m.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("r-%d", m.seq)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memRanges) UpdateFromProvider(_ context.Context, r *entity.NumberingRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	active := row.IsActive
	cp := *r
	cp.IsActive = active
	m.rows[r.ID] = &cp
	return nil
}

func (m *memRanges) GetByID(_ context.Context, tenantID, id string) (*entity.NumberingRange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.TenantID != tenantID {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memRanges) GetByFactusID(_ context.Context, tenantID string, factusID int64) (*entity.NumberingRange, error) {
	return m.first(func(r *entity.NumberingRange) bool { return r.TenantID == tenantID && r.FactusID == factusID }), nil
}

func (m *memRanges) FindByFactusID(_ context.Context, factusID int64) ([]*entity.NumberingRange, error) {
	return m.filter(func(r *entity.NumberingRange) bool { return r.FactusID == factusID }), nil
}

func (m *memRanges) GetActive(_ context.Context, tenantID string) (*entity.NumberingRange, error) {
	return m.first(func(r *entity.NumberingRange) bool { return r.TenantID == tenantID && r.IsActive && !r.IsExpired }), nil
}

func (m *memRanges) GetActiveByPrefix(_ context.Context, tenantID, prefix string) (*entity.NumberingRange, error) {
	return m.first(func(r *entity.NumberingRange) bool {
		return r.TenantID == tenantID && r.IsActive && strings.HasPrefix(r.Prefix, prefix)
	}), nil
}

func (m *memRanges) ListByTenant(_ context.Context, tenantID string) ([]*entity.NumberingRange, error) {
	return m.filter(func(r *entity.NumberingRange) bool { return r.TenantID == tenantID }), nil
}

func (m *memRanges) ListByPrefix(_ context.Context, tenantID, prefix string) ([]*entity.NumberingRange, error) {
	return m.filter(func(r *entity.NumberingRange) bool { return r.TenantID == tenantID && r.Prefix == prefix }), nil
}

func (m *memRanges) SetActive(_ context.Context, tenantID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.rows[id]
	if !ok || target.TenantID != tenantID {
		return false, nil
	}
	for _, r := range m.rows {
		if r.TenantID == tenantID {
			r.IsActive = r.ID == id
		}
	}
	return true, nil
}

func (m *memRanges) CompareAndSwapCurrent(_ context.Context, tenantID, id string, expected, next int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.TenantID != tenantID || r.Current != expected || next > r.To {
		return false, nil
	}
	r.Current = next
	return true, nil
}

// first y filter devuelven copias ordenadas como la base: activo primero, luego el más reciente.
func (m *memRanges) first(pred func(*entity.NumberingRange) bool) *entity.NumberingRange {
	list := m.filter(pred)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (m *memRanges) filter(pred func(*entity.NumberingRange) bool) []*entity.NumberingRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.NumberingRange
	for _, r := range m.rows {
		if pred(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memRanges) activeCount(tenantID string) int {
	return len(m.filter(func(r *entity.NumberingRange) bool { return r.TenantID == tenantID && r.IsActive }))
}

// ─── Facturas en memoria ─────────────────────────────────────────────────────

type memInvoices struct {
	mu      sync.Mutex
	rows    map[string]*entity.Invoice
	claimed map[string]bool // por id
	seq     int
}

var _ repository.InvoiceRepository = (*memInvoices)(nil)

func newMemInvoices(invs ...*entity.Invoice) *memInvoices {
	m := &memInvoices{rows: map[string]*entity.Invoice{}, claimed: map[string]bool{}}
	for _, inv := range invs {
		if err := m.Create(context.Background(), inv); err != nil {
			panic(err)
		}
	}
	return m
}

func invoiceKey(tenantID, number string) string { return tenantID + "|" + number }

func (m *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := invoiceKey(inv.TenantID, inv.Number)
	if _, exists := m.rows[key]; exists {
		return domain.ErrConflict
	}
	m.seq++
	if inv.ID == "" {
		inv.ID = fmt.Sprintf("inv-%d", m.seq)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC)
	}
	cp := *inv
	m.rows[key] = &cp
	return nil
}

func (m *memInvoices) GetByNumber(_ context.Context, tenantID, number string) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[invoiceKey(tenantID, number)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memInvoices) byID(tenantID, id string) *entity.Invoice {
	for _, row := range m.rows {
		if row.ID == id && row.TenantID == tenantID {
			return row
		}
	}
	return nil
}

// Claim, Release y Transition respetan el contexto como lo haría la base.
func (m *memInvoices) Claim(ctx context.Context, tenantID, id string, _ time.Duration, from ...entity.InvoiceStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.byID(tenantID, id)
	if row == nil || m.claimed[id] || !slices.Contains(from, row.Status) {
		return false, nil
	}
	m.claimed[id] = true
	return true, nil
}

func (m *memInvoices) Release(ctx context.Context, _, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, id)
	return nil
}

func (m *memInvoices) Transition(ctx context.Context, inv *entity.Invoice, from ...entity.InvoiceStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.byID(inv.TenantID, inv.ID)
	if row == nil {
		return domain.ErrNotFound
	}
	if !slices.Contains(from, row.Status) {
		return domain.ErrConflict.WithDetail("status", row.Status)
	}
	row.Status = inv.Status
	row.CUFE = lo.CoalesceOrEmpty(inv.CUFE, row.CUFE)
	row.PDFURL = lo.CoalesceOrEmpty(inv.PDFURL, row.PDFURL)
	row.XMLURL = lo.CoalesceOrEmpty(inv.XMLURL, row.XMLURL)
	row.QRURL = lo.CoalesceOrEmpty(inv.QRURL, row.QRURL)
	if inv.APIResponse != nil {
		row.APIResponse = inv.APIResponse
	}
	row.ErrorDetail = inv.ErrorDetail
	if inv.ValidatedAt != nil {
		row.ValidatedAt = inv.ValidatedAt
	}
	delete(m.claimed, inv.ID)
	return nil
}

// change modifica la fila guardada, como lo haría otra instancia del servicio.
func (m *memInvoices) change(tenantID, number string, fn func(*entity.Invoice)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.rows[invoiceKey(tenantID, number)])
}

func (m *memInvoices) isClaimed(tenantID, number string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[invoiceKey(tenantID, number)]
	return ok && m.claimed[row.ID]
}

func (m *memInvoices) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memInvoices) get(tenantID, number string) *entity.Invoice {
	inv, _ := m.GetByNumber(context.Background(), tenantID, number)
	return inv
}

// ─── Tenants y transacciones ─────────────────────────────────────────────────

type memTenants struct {
	byID map[string]*entity.Tenant
}

func newMemTenants(ts ...*entity.Tenant) *memTenants {
	m := &memTenants{byID: map[string]*entity.Tenant{}}
	for _, t := range ts {
		m.byID[t.ID] = t
	}
	return m
}

func (m *memTenants) Create(_ context.Context, t *entity.Tenant) error {
	m.byID[t.ID] = t
	return nil
}

func (m *memTenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	return m.byID[id], nil
}

func (m *memTenants) UpdateCredentials(_ context.Context, t *entity.Tenant) error {
	m.byID[t.ID] = t
	return nil
}

func tenantWithCredentials(id string) *entity.Tenant {
	return &entity.Tenant{
		ID:                 id,
		Name:               "Restaurante " + id,
		NIT:                "900373115",
		Address:            "Cra 7 # 12-34",
		IsActive:           true,
		BillingActive:      true,
		FactusClientID:     "cid",
		FactusClientSecret: "secret",
		FactusEmail:        "caja@" + id + ".co",
		FactusPassword:     "pw",
	}
}

type fakeTx struct {
	ranges   *memRanges
	invoices *memInvoices
	runs     int
}

func (f *fakeTx) RunBilling(_ context.Context, fn func(repository.NumberingRangeRepository, repository.InvoiceRepository) error) error {
	f.runs++
	return fn(f.ranges, f.invoices)
}

// ─── Factus simulado ─────────────────────────────────────────────────────────

type providerCall struct {
	Method string
	Path   string
	Body   json.RawMessage
}

// fakeProvider hace de GatewayFactory y de Gateway. Las respuestas se registran por "MÉTODO path".
type fakeProvider struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	openErr   error
	calls     []providerCall
	opened    int
	closed    int

	// before corre antes de responder, fuera del lock; permite bloquear o cancelar en medio de la llamada
	before func(method, path string)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{responses: map[string]json.RawMessage{}, errs: map[string]error{}}
}

func (p *fakeProvider) on(method, path, body string) *fakeProvider {
	p.responses[method+" "+path] = json.RawMessage(body)
	return p
}

func (p *fakeProvider) fail(method, path string, err error) *fakeProvider {
	p.errs[method+" "+path] = err
	return p
}

func (p *fakeProvider) Open(_ context.Context, _ string) (billing.Gateway, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened++
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p, nil
}

func (p *fakeProvider) Get(_ context.Context, path string, _ url.Values) (json.RawMessage, error) {
	return p.do("GET", path, nil)
}

func (p *fakeProvider) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	var raw json.RawMessage
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return p.do("POST", path, raw)
}

func (p *fakeProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakeProvider) do(method, path string, body json.RawMessage) (json.RawMessage, error) {
	if p.before != nil {
		p.before(method, path)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, providerCall{Method: method, Path: path, Body: body})
	key := method + " " + path
	if err, ok := p.errs[key]; ok {
		return nil, err
	}
	if resp, ok := p.responses[key]; ok {
		return resp, nil
	}
	return nil, domain.Errorf(domain.KindResourceNotFound, "recurso no encontrado: %s", path)
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeProvider) lastBody(method, path string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.calls) - 1; i >= 0; i-- {
		c := p.calls[i]
		if c.Method == method && c.Path == path {
			var m map[string]any
			if err := json.Unmarshal(c.Body, &m); err != nil {
				panic(err)
			}
			return m
		}
	}
	return nil
}
