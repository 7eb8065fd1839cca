package stock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// RollupCache caches computed rollups keyed by a content hash of the full
// input tuple. Implementations must treat the cache as advisory: a miss or a
// cache failure always falls through to computation.
type RollupCache interface {
	Get(ctx context.Context, key string) (*stock.RollupResult, bool)
	Set(ctx context.Context, key string, result *stock.RollupResult)
}

// StockService orchestrates lot CRUD and rollup computation over the
// repositories of the host.
type StockService struct {
	lots   stock.LotRepository
	rows   stock.WarehouseRowRepository
	sales  stock.SaleRecordSource
	cache  RollupCache
	logger *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(lots stock.LotRepository, rows stock.WarehouseRowRepository, sales stock.SaleRecordSource, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		lots:   lots,
		rows:   rows,
		sales:  sales,
		logger: logger,
	}
}

// SetRollupCache installs an optional rollup cache.
func (s *StockService) SetRollupCache(cache RollupCache) {
	s.cache = cache
}

// CreateLot creates a lot from its raw receipt fields and reconciles the
// derived figures.
func (s *StockService) CreateLot(ctx context.Context, input LotInput) (*LotResponse, error) {
	date, err := parseDate(input.Date)
	if err != nil {
		date = time.Now()
	}
	lot, err := stock.NewLot(input.LcNo, date, input.ProductName, input.Brand)
	if err != nil {
		return nil, err
	}
	applyLotInput(lot, input)
	lot.Reconcile()

	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot: %w", err)
	}
	s.logger.Info("lot created",
		zap.String("lot_id", lot.ID.String()),
		zap.String("lc_no", lot.LcNo),
		zap.String("product", lot.ProductName))

	resp := ToLotResponse(lot)
	return &resp, nil
}

// UpdateLot updates a lot's raw fields and re-derives its figures.
func (s *StockService) UpdateLot(ctx context.Context, id uuid.UUID, input LotInput) (*LotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.LcNo = input.LcNo
	if date, err := parseDate(input.Date); err == nil {
		lot.Date = date
	}
	if input.ProductName != "" {
		lot.ProductName = input.ProductName
	}
	if input.Brand != "" {
		lot.Brand = input.Brand
	}
	applyLotInput(lot, input)
	lot.Reconcile()
	lot.IncrementVersion()

	if err := s.lots.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// GetLot retrieves one lot by ID
func (s *StockService) GetLot(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ListLots lists lots matching the filter
func (s *StockService) ListLots(ctx context.Context, filter shared.Filter) (shared.Paginated[LotResponse], error) {
	lots, err := s.lots.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[LotResponse]{}, err
	}
	total, err := s.lots.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[LotResponse]{}, err
	}
	items := make([]LotResponse, 0, len(lots))
	for i := range lots {
		items = append(items, ToLotResponse(&lots[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListWarehouseRows lists the rows held at one warehouse, or all rows when
// whName is empty.
func (s *StockService) ListWarehouseRows(ctx context.Context, whName string) ([]WarehouseRowResponse, error) {
	var (
		rows []stock.WarehouseRow
		err  error
	)
	if whName == "" {
		rows, err = s.rows.FindAll(ctx, shared.Unpaged())
	} else {
		rows, err = s.rows.FindByWarehouse(ctx, whName)
	}
	if err != nil {
		return nil, err
	}
	items := make([]WarehouseRowResponse, 0, len(rows))
	for i := range rows {
		items = append(items, ToWarehouseRowResponse(&rows[i]))
	}
	return items, nil
}

// Rollup loads the full working set and computes the filtered rollup. The
// result is cached keyed by a content hash of the complete input tuple, so
// identical inputs are served without recomputation.
func (s *StockService) Rollup(ctx context.Context, query RollupQuery) (*stock.RollupResult, error) {
	lots, err := s.lots.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}
	rows, err := s.rows.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse rows: %w", err)
	}
	sales, err := s.sales.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to load sale records: %w", err)
	}

	filter := query.ToFilter()
	key := rollupCacheKey(lots, filter, rows, sales)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	result := stock.ComputeRollup(lots, filter, rows, sales)
	if s.cache != nil {
		s.cache.Set(ctx, key, &result)
	}
	return &result, nil
}

// DeleteLot deletes a lot
func (s *StockService) DeleteLot(ctx context.Context, id uuid.UUID) error {
	return s.lots.Delete(ctx, id)
}

func applyLotInput(lot *stock.Lot, input LotInput) {
	lot.Port = input.Port
	lot.Importer = input.Importer
	lot.Exporter = input.Exporter
	lot.TruckNo = input.TruckNo
	if input.Unit != "" {
		lot.Unit = input.Unit
	}
	lot.Packet = stock.ParseAmount(input.Packet)
	lot.PacketSize = stock.ParseAmount(input.PacketSize)
	lot.Quantity = stock.ParseAmount(input.Quantity)
	lot.SweepedPacket = stock.ParseAmount(input.SweepedPacket)
	lot.SweepedQty = stock.ParseAmount(input.SweepedQty)
	lot.SalePacket = stock.ParseAmount(input.SalePacket)
	lot.SaleQty = stock.ParseAmount(input.SaleQty)
}

// rollupCacheKey hashes the complete rollup input tuple. Any change to a lot,
// row, sale record or filter fields yields a different key.
func rollupCacheKey(lots []stock.Lot, filter stock.RollupFilter, rows []stock.WarehouseRow, sales []stock.SaleRecord) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(filter)
	_ = enc.Encode(lots)
	_ = enc.Encode(rows)
	_ = enc.Encode(sales)
	return "rollup:" + hex.EncodeToString(h.Sum(nil))
}
