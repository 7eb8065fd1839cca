package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is catalog master data: a product and the brands it is imported
// under, each with its packet size. The transfer engine uses the packet size
// to convert a user-entered quantity into a packet count.
type Product struct {
	shared.BaseEntity
	Name   string  `gorm:"uniqueIndex;not null"`
	Unit   string  `gorm:"not null;default:kg"`
	Brands []Brand `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Brand is one brand of a product with its packet size.
type Brand struct {
	shared.BaseEntity
	ProductID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name       string          `gorm:"not null"`
	PacketSize decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Brand) TableName() string {
	return "product_brands"
}

// NewProduct creates a new catalog product
func NewProduct(name, unit string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if unit == "" {
		unit = "kg"
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Unit:       unit,
		Brands:     make([]Brand, 0),
	}, nil
}

// AddBrand adds a brand with its packet size, replacing an existing brand of
// the same name.
func (p *Product) AddBrand(name string, packetSize decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_BRAND", "Brand name cannot be empty")
	}
	if packetSize.IsNegative() {
		return shared.NewDomainError("INVALID_PACKET_SIZE", "Packet size cannot be negative")
	}
	for i := range p.Brands {
		if strings.EqualFold(p.Brands[i].Name, name) {
			p.Brands[i].PacketSize = packetSize
			return nil
		}
	}
	p.Brands = append(p.Brands, Brand{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Name:       name,
		PacketSize: packetSize,
	})
	return nil
}

// PacketSizeFor returns the packet size of the named brand. A product sold
// without brand distinction records its single brand under the product name.
func (p *Product) PacketSizeFor(brand string) (decimal.Decimal, bool) {
	for _, b := range p.Brands {
		if strings.EqualFold(b.Name, brand) {
			return b.PacketSize, true
		}
	}
	return decimal.Zero, false
}

// ProductRepository defines the interface for catalog persistence
type ProductRepository interface {
	// FindByName finds a product (with brands) by its name, case-insensitively
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindAll lists products with their brands
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product and its brands
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
