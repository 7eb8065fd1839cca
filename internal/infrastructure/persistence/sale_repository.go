package persistence

import (
	"context"
	"strings"

	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormSaleRepository implements stock.SaleRecordSource using GORM. Sales are
// written by the sale capture system; this repository only reads them.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindAll lists sale records matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.SaleRecord, error) {
	var sales []stock.SaleRecord
	query := r.db.WithContext(ctx).Model(&stock.SaleRecord{})

	for key, value := range filter.Filters {
		switch key {
		case "date_from":
			query = query.Where("date >= ?", value)
		case "date_to":
			query = query.Where("date <= ?", value)
		}
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderDir := "ASC"
	if strings.ToLower(filter.OrderDir) == "desc" {
		orderDir = "DESC"
	}
	query = query.Order("date " + orderDir)

	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
