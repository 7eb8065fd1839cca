package stock

import (
	"time"

	"github.com/lotline/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleRecord is a sale transaction read from the external sale source. The
// rollup engine only reads these; it never mutates them.
type SaleRecord struct {
	shared.BaseEntity
	Date  time.Time  `gorm:"index;not null"`
	Items []SaleItem `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (SaleRecord) TableName() string {
	return "sales"
}

// SaleItem is one product line inside a sale transaction.
type SaleItem struct {
	ProductName string           `json:"product_name"`
	Brands      []SaleBrandEntry `json:"brands"`
}

// SaleBrandEntry carries the sold amount for one brand of the item's product.
// Brand may be blank or "-" when the product is sold without a brand
// distinction (single-brand mode).
type SaleBrandEntry struct {
	Brand    string          `json:"brand"`
	Quantity decimal.Decimal `json:"quantity"`
	Packet   decimal.Decimal `json:"packet"`
}

// IsUnbranded reports whether this entry carries no brand of its own.
func (e SaleBrandEntry) IsUnbranded() bool {
	return e.Brand == "" || e.Brand == "-"
}
