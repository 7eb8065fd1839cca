package stock

import (
	"strings"
	"time"

	"github.com/lotline/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordType distinguishes an original receipt row still holding inventory
// from a row created purely by an inter-warehouse transfer.
type RecordType string

const (
	// RecordTypeStock marks a row backed by an original receipt.
	RecordTypeStock RecordType = "stock"
	// RecordTypeWarehouse marks a row created by a transfer.
	RecordTypeWarehouse RecordType = "warehouse"
)

// IsValid checks if the record type is valid
func (t RecordType) IsValid() bool {
	return t == RecordTypeStock || t == RecordTypeWarehouse
}

// WarehouseRow is the current on-hand record of a product/brand at a specific
// warehouse. LcNo links back to the originating lot when the row was produced
// by a transfer; rows created before warehouse tracking may carry none.
type WarehouseRow struct {
	shared.VersionedEntity
	WhName   string `gorm:"index;not null"`
	Manager  string
	Location string
	Capacity string

	ProductName string `gorm:"index;not null"`
	Brand       string `gorm:"index;not null"`
	LcNo        string `gorm:"index"`

	WhPkt decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WhQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// Sale figures recorded directly against this row.
	SalePacket decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SaleQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	RecordType RecordType `gorm:"type:varchar(16);not null;default:stock"`
}

// TableName returns the table name for GORM
func (WarehouseRow) TableName() string {
	return "warehouse_rows"
}

// NewWarehouseRow creates a row for stock held at a warehouse.
func NewWarehouseRow(whName, productName, brand string, recordType RecordType) (*WarehouseRow, error) {
	if whName == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse name cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if !recordType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RECORD_TYPE", "Record type must be stock or warehouse")
	}
	if brand == "" {
		brand = productName
	}
	return &WarehouseRow{
		VersionedEntity: shared.NewVersionedEntity(),
		WhName:          whName,
		ProductName:     productName,
		Brand:           brand,
		RecordType:      recordType,
	}, nil
}

// HasStock reports whether the row holds any on-hand quantity or packets.
func (r *WarehouseRow) HasStock() bool {
	return r.WhQty.IsPositive() || r.WhPkt.IsPositive()
}

// IsSaleBearing reports whether sale figures are recorded against this row.
func (r *WarehouseRow) IsSaleBearing() bool {
	return r.SaleQty.IsPositive() || r.SalePacket.IsPositive()
}

// Matches reports whether the row holds stock of the given product and brand
// (case-insensitive exact match).
func (r *WarehouseRow) Matches(productName, brand string) bool {
	return strings.EqualFold(r.ProductName, productName) && strings.EqualFold(r.Brand, brand)
}

// SameLot reports whether the row carries the given lot attribution.
// Absent attribution on both sides counts as equal.
func (r *WarehouseRow) SameLot(lcNo string) bool {
	return strings.EqualFold(r.LcNo, lcNo)
}

// AddStock adds quantity and packets to the row's on-hand.
func (r *WarehouseRow) AddStock(qty, pkt decimal.Decimal) {
	r.WhQty = r.WhQty.Add(qty)
	r.WhPkt = r.WhPkt.Add(pkt)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// DeductStock removes quantity and packets from the row's on-hand. The two
// channels are clamped independently so a deduction can never drive either
// figure negative.
func (r *WarehouseRow) DeductStock(qty, pkt decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	dq := decimal.Min(r.WhQty, qty)
	dp := decimal.Min(r.WhPkt, pkt)
	if dq.IsNegative() {
		dq = decimal.Zero
	}
	if dp.IsNegative() {
		dp = decimal.Zero
	}
	r.WhQty = r.WhQty.Sub(dq)
	r.WhPkt = r.WhPkt.Sub(dp)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return dq, dp
}
