package stock

import (
	"time"

	"github.com/lotline/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultUnit is used when a receipt does not name its unit.
const DefaultUnit = "kg"

// Lot is a single stock receipt line. Physically related receipts share an
// LC number. The derived in-house figures are recomputed from the raw fields
// by Reconcile whenever the raw fields change; once the lot's stock is tracked
// at warehouse granularity, WhPkt/WhQty carry the current on-hand and take
// precedence over the lot's own in-house figures.
type Lot struct {
	shared.VersionedEntity
	LcNo        string    `gorm:"index;not null"`
	Date        time.Time `gorm:"index;not null"`
	Port        string
	Importer    string
	Exporter    string
	ProductName string `gorm:"index;not null"`
	Brand       string `gorm:"index;not null"`
	TruckNo     string
	Unit        string `gorm:"not null;default:kg"`

	Packet        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PacketSize    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SweepedPacket decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SweepedQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePacket    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SaleQty       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	TotalInHousePacket decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalInHouseQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InHousePacket      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InHouseQty         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// Set once the lot's remaining stock is tracked per warehouse.
	WhPkt *decimal.Decimal `gorm:"type:decimal(18,4)"`
	WhQty *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates a new lot from its raw receipt figures and derives the
// quantity-equivalent fields.
func NewLot(lcNo string, date time.Time, productName, brand string) (*Lot, error) {
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if brand == "" {
		// Single-brand products record the product name as the brand.
		brand = productName
	}
	lot := &Lot{
		VersionedEntity: shared.NewVersionedEntity(),
		LcNo:            lcNo,
		Date:            date,
		ProductName:     productName,
		Brand:           brand,
		Unit:            DefaultUnit,
	}
	return lot, nil
}

// Reconcile recomputes the derived quantity fields from the raw figures.
// Quantity is only overwritten when a packet size is present; a zero packet
// size keeps the directly recorded quantity.
func (l *Lot) Reconcile() {
	d := Derive(Entry{
		Packet:        l.Packet,
		PacketSize:    l.PacketSize,
		Quantity:      l.Quantity,
		SweepedPacket: l.SweepedPacket,
		SweepedQty:    l.SweepedQty,
		SalePacket:    l.SalePacket,
		SaleQty:       l.SaleQty,
	})
	l.Quantity = d.Quantity
	l.SweepedQty = d.SweepedQuantity
	l.TotalInHousePacket = d.TotalInHousePacket
	l.TotalInHouseQty = d.TotalInHouseQuantity
	l.InHousePacket = d.InHousePacket
	l.InHouseQty = d.InHouseQuantity
	l.UpdatedAt = time.Now()
}

// OnHandPacket returns the current on-hand packet count, preferring the
// warehouse-tracked figure when present.
func (l *Lot) OnHandPacket() decimal.Decimal {
	if l.WhPkt != nil {
		return *l.WhPkt
	}
	return l.InHousePacket
}

// OnHandQuantity returns the current on-hand quantity, preferring the
// warehouse-tracked figure when present.
func (l *Lot) OnHandQuantity() decimal.Decimal {
	if l.WhQty != nil {
		return *l.WhQty
	}
	return l.InHouseQty
}

// Retired reports whether the lot's on-hand has reached zero. Retired lots
// are kept for history, not deleted.
func (l *Lot) Retired() bool {
	return !l.OnHandQuantity().IsPositive() && !l.OnHandPacket().IsPositive()
}
