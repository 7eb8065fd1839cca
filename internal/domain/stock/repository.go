package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
)

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByLcNo finds all lots sharing an LC number
	FindByLcNo(ctx context.Context, lcNo string) ([]Lot, error)

	// FindAll finds lots matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Lot, error)

	// Count counts lots matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a lot
	Save(ctx context.Context, lot *Lot) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, lot *Lot) error

	// Delete deletes a lot
	Delete(ctx context.Context, id uuid.UUID) error
}

// WarehouseRowRepository defines the interface for warehouse row persistence
type WarehouseRowRepository interface {
	// FindByID finds a warehouse row by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*WarehouseRow, error)

	// FindByWarehouse finds all rows held at a warehouse
	FindByWarehouse(ctx context.Context, whName string) ([]WarehouseRow, error)

	// FindAll finds rows matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]WarehouseRow, error)

	// Create inserts a new row
	Create(ctx context.Context, row *WarehouseRow) error

	// Save creates or updates a row
	Save(ctx context.Context, row *WarehouseRow) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, row *WarehouseRow) error

	// Delete deletes a row
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaleRecordSource is the read-only source of sale transactions. The engine
// never writes sales.
type SaleRecordSource interface {
	// FindAll lists sale records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]SaleRecord, error)
}
