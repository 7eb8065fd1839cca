package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/lotline/backend/internal/domain/catalog"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"go.uber.org/zap"
)

const (
	// DefaultIdempotencyTTL bounds how long an applied plan token is remembered.
	DefaultIdempotencyTTL = 24 * time.Hour
)

// ApplyOptions controls how a transfer plan is applied.
type ApplyOptions struct {
	// AllowPartial applies a plan even when some request is under-fulfilled.
	// The default rejects such plans with ErrInsufficientStock.
	AllowPartial bool
}

// ApplyResult reports the outcome of applying a transfer plan, together with
// the refreshed working set the caller must use for any further computation.
type ApplyResult struct {
	Applied        bool
	AlreadyApplied bool
	Fulfilments    []FulfilmentResponse
	Rows           []stock.WarehouseRow
	Lots           []stock.Lot
}

// TransferService plans and applies inter-warehouse transfers. Planning is
// pure; applying persists the plan's deductions and upserts strictly in
// sequence, because the destination lookups of later writes depend on the
// visibility of earlier ones.
type TransferService struct {
	rows     stock.WarehouseRowRepository
	lots     stock.LotRepository
	products catalog.ProductRepository
	idem     shared.IdempotencyStore
	idemTTL  time.Duration
	logger   *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(rows stock.WarehouseRowRepository, lots stock.LotRepository, products catalog.ProductRepository, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		rows:     rows,
		lots:     lots,
		products: products,
		idemTTL:  DefaultIdempotencyTTL,
		logger:   logger,
	}
}

// SetIdempotencyStore installs an optional idempotency store. With a store
// installed, re-applying a plan that already went through is a safe no-op.
func (s *TransferService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idem = store
	if ttl > 0 {
		s.idemTTL = ttl
	}
}

// BuildRequests converts user-entered amounts into transfer requests,
// deriving the packet count from the catalog packet size when the input does
// not carry one. Amounts are parsed tolerantly; a request that ends up with
// no positive amount is kept and later skipped by the planner.
func (s *TransferService) BuildRequests(ctx context.Context, inputs []TransferRequestInput) ([]stock.TransferRequest, error) {
	requests := make([]stock.TransferRequest, 0, len(inputs))
	for _, in := range inputs {
		brand := in.Brand
		if brand == "" {
			brand = in.ProductName
		}
		req := stock.TransferRequest{
			ProductName: in.ProductName,
			Brand:       brand,
			Quantity:    stock.ParseAmount(in.Quantity),
			Packet:      stock.ParseAmount(in.Packet),
		}
		if req.Packet.IsZero() && req.Quantity.IsPositive() && s.products != nil {
			product, err := s.products.FindByName(ctx, in.ProductName)
			if err == nil {
				if size, ok := product.PacketSizeFor(brand); ok {
					req.Packet = stock.PacketsForQuantity(req.Quantity, size)
				}
			}
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// Plan loads the current working set and computes a transfer plan. Requests
// where both amounts are non-positive produce no deductions, no upserts and
// no repository calls beyond the initial working-set read.
func (s *TransferService) Plan(ctx context.Context, source, dest string, requests []stock.TransferRequest) (*stock.TransferPlan, error) {
	rows, err := s.rows.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse rows: %w", err)
	}
	plan, err := stock.PlanTransfer(stock.TransferInput{
		SourceWarehouse: source,
		DestWarehouse:   dest,
		Requests:        requests,
		Rows:            rows,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transfer planned",
		zap.String("plan_id", plan.ID.String()),
		zap.String("source", source),
		zap.String("dest", dest),
		zap.Int("deductions", len(plan.Deductions)),
		zap.Int("upserts", len(plan.Upserts)),
		zap.Bool("fully_fulfilled", plan.FullyFulfilled()))
	return plan, nil
}

// Apply persists a transfer plan: every deduction updates its source row and
// every upsert updates or creates its destination row, in plan order. A
// persistence failure aborts the remaining writes and surfaces to the caller;
// there is no rollback of writes already applied, but the plan ID doubles as
// an idempotency token, so retrying the same plan cannot double-apply.
//
// The token is consumed only after the full write sequence lands. A failed
// apply therefore leaves the token unconsumed, and the retry re-enters the
// write path instead of short-circuiting; writes that already landed are
// caught by the per-row amount checks below rather than silently repeated.
//
// Row versions are checked on every write. If the on-hand of a source row
// changed between planning and applying so that the planned amount can no
// longer be deducted in full, the apply stops with ErrConcurrencyConflict;
// the caller should re-plan against a refreshed working set.
func (s *TransferService) Apply(ctx context.Context, plan *stock.TransferPlan, opts ApplyOptions) (*ApplyResult, error) {
	if plan == nil {
		return nil, shared.ErrInvalidInput
	}
	if !opts.AllowPartial && !plan.FullyFulfilled() {
		return nil, shared.ErrInsufficientStock
	}

	if s.idem != nil {
		done, err := s.idem.IsProcessed(ctx, plan.ID.String())
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if done {
			s.logger.Warn("transfer plan already applied", zap.String("plan_id", plan.ID.String()))
			result, err := s.refresh(ctx, plan)
			if err != nil {
				return nil, err
			}
			result.AlreadyApplied = true
			return result, nil
		}
	}

	for _, d := range plan.Deductions {
		row, err := s.rows.FindByID(ctx, d.RowID)
		if err != nil {
			return nil, fmt.Errorf("transfer apply aborted at source row %s: %w", d.RowID, err)
		}
		gotQty, gotPkt := row.DeductStock(d.Quantity, d.Packet)
		if !gotQty.Equal(d.Quantity) || !gotPkt.Equal(d.Packet) {
			return nil, shared.ErrConcurrencyConflict
		}
		if err := s.rows.SaveWithLock(ctx, row); err != nil {
			return nil, fmt.Errorf("transfer apply aborted at source row %s: %w", d.RowID, err)
		}
	}

	for _, u := range plan.Upserts {
		if u.RowID != nil {
			row, err := s.rows.FindByID(ctx, *u.RowID)
			if err != nil {
				return nil, fmt.Errorf("transfer apply aborted at destination row %s: %w", u.RowID, err)
			}
			row.AddStock(u.Quantity, u.Packet)
			if err := s.rows.SaveWithLock(ctx, row); err != nil {
				return nil, fmt.Errorf("transfer apply aborted at destination row %s: %w", u.RowID, err)
			}
			continue
		}
		if err := s.rows.Create(ctx, u.NewRow); err != nil {
			return nil, fmt.Errorf("transfer apply aborted creating destination row: %w", err)
		}
	}

	if s.idem != nil {
		// The writes are already committed. A failed mark must not fail the
		// apply; a concurrent or later retry runs into the amount checks.
		if _, err := s.idem.MarkProcessed(ctx, plan.ID.String(), s.idemTTL); err != nil {
			s.logger.Warn("failed to record applied plan token",
				zap.String("plan_id", plan.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("transfer applied",
		zap.String("plan_id", plan.ID.String()),
		zap.String("source", plan.SourceWarehouse),
		zap.String("dest", plan.DestWarehouse))

	result, err := s.refresh(ctx, plan)
	if err != nil {
		return nil, err
	}
	result.Applied = true
	return result, nil
}

// refresh re-reads the combined lot and warehouse dataset. The engine keeps
// no incremental state; all further computation starts from this fresh read.
func (s *TransferService) refresh(ctx context.Context, plan *stock.TransferPlan) (*ApplyResult, error) {
	rows, err := s.rows.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to refresh warehouse rows: %w", err)
	}
	lots, err := s.lots.FindAll(ctx, shared.Unpaged())
	if err != nil {
		return nil, fmt.Errorf("failed to refresh lots: %w", err)
	}
	fulfilments := make([]FulfilmentResponse, 0, len(plan.Fulfilments))
	for _, f := range plan.Fulfilments {
		fulfilments = append(fulfilments, ToFulfilmentResponse(f))
	}
	return &ApplyResult{
		Fulfilments: fulfilments,
		Rows:        rows,
		Lots:        lots,
	}, nil
}
