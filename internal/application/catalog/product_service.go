package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/lotline/backend/internal/domain/catalog"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// ProductService maintains the catalog of products and their brand packet
// sizes. The transfer engine reads this catalog to turn user-entered
// quantities into packet counts.
type ProductService struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{products: products, logger: logger}
}

// Create creates a product with its brands. The brand packet sizes arrive as
// strings and are parsed tolerantly, degrading to zero.
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*ProductResponse, error) {
	if _, err := s.products.FindByName(ctx, input.Name); err == nil {
		return nil, fmt.Errorf("product %q: %w", input.Name, shared.ErrAlreadyExists)
	}

	product, err := catalog.NewProduct(input.Name, input.Unit)
	if err != nil {
		return nil, err
	}
	if err := applyBrands(product, input.Brands); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product", product.Name),
		zap.Int("brands", len(product.Brands)))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces a product's unit and merges the submitted brands into its
// brand list. Brands absent from the input are kept.
func (s *ProductService) Update(ctx context.Context, name string, input ProductInput) (*ProductResponse, error) {
	product, err := s.products.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if input.Unit != "" {
		product.Unit = input.Unit
	}
	if err := applyBrands(product, input.Brands); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Get retrieves a product with its brands by name
func (s *ProductService) Get(ctx context.Context, name string) (*ProductResponse, error) {
	product, err := s.products.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List lists products with their brands
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, nil
}

// Delete removes a product and its brands from the catalog. Transfers for
// the product keep working; packet derivation just loses its packet size
// source and falls back to zero.
func (s *ProductService) Delete(ctx context.Context, name string) error {
	product, err := s.products.FindByName(ctx, name)
	if err != nil {
		return err
	}
	return s.products.Delete(ctx, product.ID)
}

func applyBrands(product *catalog.Product, brands []BrandInput) error {
	for _, b := range brands {
		name := b.Name
		if name == "" {
			name = product.Name
		}
		if err := product.AddBrand(name, stock.ParseAmount(b.PacketSize)); err != nil {
			return err
		}
	}
	return nil
}

// ProductInput carries the fields to create or update a catalog product.
type ProductInput struct {
	Name   string       `json:"name"`
	Unit   string       `json:"unit"`
	Brands []BrandInput `json:"brands"`
}

// BrandInput is one brand line with its packet size.
type BrandInput struct {
	Name       string `json:"name"`
	PacketSize string `json:"packet_size"`
}

// ProductResponse is the API shape of a catalog product.
type ProductResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Unit   string          `json:"unit"`
	Brands []BrandResponse `json:"brands"`
}

// BrandResponse is the API shape of a product brand.
type BrandResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PacketSize float64 `json:"packet_size"`
}

// ToProductResponse maps a product to its API shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:     p.ID.String(),
		Name:   p.Name,
		Unit:   p.Unit,
		Brands: make([]BrandResponse, 0, len(p.Brands)),
	}
	for _, b := range p.Brands {
		resp.Brands = append(resp.Brands, BrandResponse{
			ID:         b.ID.String(),
			Name:       b.Name,
			PacketSize: b.PacketSize.InexactFloat64(),
		})
	}
	return resp
}
