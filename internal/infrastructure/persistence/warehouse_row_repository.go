package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormWarehouseRowRepository implements stock.WarehouseRowRepository using GORM
type GormWarehouseRowRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRowRepository creates a new GormWarehouseRowRepository
func NewGormWarehouseRowRepository(db *gorm.DB) *GormWarehouseRowRepository {
	return &GormWarehouseRowRepository{db: db}
}

// FindByID finds a warehouse row by its ID
func (r *GormWarehouseRowRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.WarehouseRow, error) {
	var row stock.WarehouseRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByWarehouse finds all rows held at a warehouse
func (r *GormWarehouseRowRepository) FindByWarehouse(ctx context.Context, whName string) ([]stock.WarehouseRow, error) {
	var rows []stock.WarehouseRow
	if err := r.db.WithContext(ctx).
		Where("LOWER(wh_name) = LOWER(?)", whName).
		Order("created_at ASC, lc_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindAll finds rows matching the filter
func (r *GormWarehouseRowRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.WarehouseRow, error) {
	var rows []stock.WarehouseRow
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.WarehouseRow{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new row
func (r *GormWarehouseRowRepository) Create(ctx context.Context, row *stock.WarehouseRow) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save creates or updates a row
func (r *GormWarehouseRowRepository) Save(ctx context.Context, row *stock.WarehouseRow) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormWarehouseRowRepository) SaveWithLock(ctx context.Context, row *stock.WarehouseRow) error {
	result := r.db.WithContext(ctx).
		Model(row).
		Where("id = ? AND version = ?", row.ID, row.Version-1).
		Updates(map[string]interface{}{
			"wh_name":      row.WhName,
			"manager":      row.Manager,
			"location":     row.Location,
			"capacity":     row.Capacity,
			"product_name": row.ProductName,
			"brand":        row.Brand,
			"lc_no":        row.LcNo,
			"wh_pkt":       row.WhPkt,
			"wh_qty":       row.WhQty,
			"sale_packet":  row.SalePacket,
			"sale_qty":     row.SaleQty,
			"record_type":  row.RecordType,
			"version":      row.Version,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a row
func (r *GormWarehouseRowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.WarehouseRow{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies search, field filters, pagination and ordering
func (r *GormWarehouseRowRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("wh_name ILIKE ? OR product_name ILIKE ? OR brand ILIKE ? OR lc_no ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "wh_name":
			query = query.Where("LOWER(wh_name) = LOWER(?)", value)
		case "product_name":
			query = query.Where("LOWER(product_name) = LOWER(?)", value)
		case "brand":
			query = query.Where("LOWER(brand) = LOWER(?)", value)
		case "lc_no":
			query = query.Where("lc_no = ?", value)
		case "record_type":
			query = query.Where("record_type = ?", value)
		case "has_stock":
			if value == true {
				query = query.Where("wh_qty > 0 OR wh_pkt > 0")
			}
		}
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, WarehouseRowSortFields, "created_at")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		// Transfer planning consumes rows oldest first.
		query = query.Order("created_at ASC, lc_no ASC, id ASC")
	}

	return query
}
