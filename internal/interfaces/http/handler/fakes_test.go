package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lotline/backend/internal/domain/catalog"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
)

// newTestEngine builds a gin engine with the given handlers mounted under
// the versioned API prefix, mirroring the production router setup.
func newTestEngine(registrars ...interface{ RegisterRoutes(*gin.RouterGroup) }) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

type memLotRepo struct {
	mu   sync.Mutex
	lots map[uuid.UUID]stock.Lot
}

func newMemLotRepo() *memLotRepo {
	return &memLotRepo{lots: make(map[uuid.UUID]stock.Lot)}
}

func (m *memLotRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lot, ok := m.lots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &lot, nil
}

func (m *memLotRepo) FindByLcNo(_ context.Context, lcNo string) ([]stock.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stock.Lot, 0)
	for _, lot := range m.lots {
		if strings.EqualFold(lot.LcNo, lcNo) {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (m *memLotRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.Lot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stock.Lot, 0, len(m.lots))
	for _, lot := range m.lots {
		out = append(out, lot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memLotRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lots)), nil
}

func (m *memLotRepo) Save(_ context.Context, lot *stock.Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lots[lot.ID] = *lot
	return nil
}

func (m *memLotRepo) SaveWithLock(_ context.Context, lot *stock.Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.lots[lot.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != lot.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	m.lots[lot.ID] = *lot
	return nil
}

func (m *memLotRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lots[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.lots, id)
	return nil
}

type memRowRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]stock.WarehouseRow
}

func newMemRowRepo() *memRowRepo {
	return &memRowRepo{rows: make(map[uuid.UUID]stock.WarehouseRow)}
}

func (m *memRowRepo) put(row stock.WarehouseRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.ID] = row
}

func (m *memRowRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.WarehouseRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &row, nil
}

func (m *memRowRepo) FindByWarehouse(_ context.Context, whName string) ([]stock.WarehouseRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stock.WarehouseRow, 0)
	for _, row := range m.rows {
		if strings.EqualFold(row.WhName, whName) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memRowRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.WarehouseRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stock.WarehouseRow, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *memRowRepo) Create(_ context.Context, row *stock.WarehouseRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[row.ID]; ok {
		return shared.ErrAlreadyExists
	}
	m.rows[row.ID] = *row
	return nil
}

func (m *memRowRepo) Save(_ context.Context, row *stock.WarehouseRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[row.ID] = *row
	return nil
}

func (m *memRowRepo) SaveWithLock(_ context.Context, row *stock.WarehouseRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rows[row.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != row.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	m.rows[row.ID] = *row
	return nil
}

func (m *memRowRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memSaleSource struct {
	sales []stock.SaleRecord
}

func (m *memSaleSource) FindAll(_ context.Context, _ shared.Filter) ([]stock.SaleRecord, error) {
	return m.sales, nil
}

type memCatalog struct {
	products map[string]*catalog.Product
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: make(map[string]*catalog.Product)}
}

func (m *memCatalog) FindByName(_ context.Context, name string) (*catalog.Product, error) {
	p, ok := m.products[strings.ToLower(name)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *memCatalog) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memCatalog) Save(_ context.Context, product *catalog.Product) error {
	m.products[strings.ToLower(product.Name)] = product
	return nil
}

func (m *memCatalog) Delete(_ context.Context, id uuid.UUID) error {
	for k, p := range m.products {
		if p.ID == id {
			delete(m.products, k)
			return nil
		}
	}
	return shared.ErrNotFound
}

type memIdemStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{seen: make(map[string]bool)}
}

func (m *memIdemStore) MarkProcessed(_ context.Context, token string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[token] {
		return false, nil
	}
	m.seen[token] = true
	return true, nil
}

func (m *memIdemStore) IsProcessed(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[token], nil
}

func (m *memIdemStore) Close() error { return nil }
