package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormLotRepository implements stock.LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Lot, error) {
	var lot stock.Lot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByLcNo finds all lots sharing an LC number
func (r *GormLotRepository) FindByLcNo(ctx context.Context, lcNo string) ([]stock.Lot, error) {
	var lots []stock.Lot
	if err := r.db.WithContext(ctx).
		Where("LOWER(lc_no) = LOWER(?)", lcNo).
		Order("date ASC, created_at ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindAll finds lots matching the filter
func (r *GormLotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.Lot, error) {
	var lots []stock.Lot
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.Lot{}), filter)
	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Count counts lots matching the filter
func (r *GormLotRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&stock.Lot{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a lot
func (r *GormLotRepository) Save(ctx context.Context, lot *stock.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLotRepository) SaveWithLock(ctx context.Context, lot *stock.Lot) error {
	result := r.db.WithContext(ctx).
		Model(lot).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]interface{}{
			"lc_no":                 lot.LcNo,
			"date":                  lot.Date,
			"port":                  lot.Port,
			"importer":              lot.Importer,
			"exporter":              lot.Exporter,
			"product_name":          lot.ProductName,
			"brand":                 lot.Brand,
			"truck_no":              lot.TruckNo,
			"unit":                  lot.Unit,
			"packet":                lot.Packet,
			"packet_size":           lot.PacketSize,
			"quantity":              lot.Quantity,
			"sweeped_packet":        lot.SweepedPacket,
			"sweeped_qty":           lot.SweepedQty,
			"sale_packet":           lot.SalePacket,
			"sale_qty":              lot.SaleQty,
			"total_in_house_packet": lot.TotalInHousePacket,
			"total_in_house_qty":    lot.TotalInHouseQty,
			"in_house_packet":       lot.InHousePacket,
			"in_house_qty":          lot.InHouseQty,
			"wh_pkt":                lot.WhPkt,
			"wh_qty":                lot.WhQty,
			"version":               lot.Version,
			"updated_at":            lot.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a lot
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&stock.Lot{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies search, field filters, pagination and ordering
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, LotSortFields, "date")
		orderDir := ValidateSortOrder(filter.OrderDir)
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("date ASC, created_at ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLotRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where(
			"lc_no ILIKE ? OR product_name ILIKE ? OR brand ILIKE ? OR importer ILIKE ? OR exporter ILIKE ? OR port ILIKE ? OR truck_no ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "lc_no":
			query = query.Where("lc_no = ?", value)
		case "product_name":
			query = query.Where("LOWER(product_name) = LOWER(?)", value)
		case "brand":
			query = query.Where("LOWER(brand) = LOWER(?)", value)
		case "importer":
			query = query.Where("importer = ?", value)
		case "date_from":
			query = query.Where("date >= ?", value)
		case "date_to":
			query = query.Where("date <= ?", value)
		}
	}

	return query
}
