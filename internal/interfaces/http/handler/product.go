package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/lotline/backend/internal/application/catalog"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/interfaces/http/dto"
)

// ProductHandler handles catalog product endpoints. Products are addressed
// by name, the key the transfer engine looks them up under.
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductBrandRequest is one brand line with its packet size
type ProductBrandRequest struct {
	Name       string `json:"name" binding:"max=200"`
	PacketSize string `json:"packet_size" binding:"max=30"`
}

// ProductRequest is the request body for creating or updating a product
type ProductRequest struct {
	Name   string                `json:"name" binding:"required,min=1,max=200"`
	Unit   string                `json:"unit" binding:"max=20"`
	Brands []ProductBrandRequest `json:"brands" binding:"dive"`
}

func (r ProductRequest) toInput() catalogapp.ProductInput {
	input := catalogapp.ProductInput{
		Name:   r.Name,
		Unit:   r.Unit,
		Brands: make([]catalogapp.BrandInput, 0, len(r.Brands)),
	}
	for _, b := range r.Brands {
		input.Brands = append(input.Brands, catalogapp.BrandInput{
			Name:       b.Name,
			PacketSize: b.PacketSize,
		})
	}
	return input
}

// Create creates a catalog product with its brand packet sizes
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByName retrieves a product with its brands
func (h *ProductHandler) GetByName(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List lists catalog products
func (h *ProductHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, err := h.productService.List(c.Request.Context(), shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// ProductUpdateRequest is the request body for updating a product. The name
// comes from the path; brands absent from the body are kept.
type ProductUpdateRequest struct {
	Unit   string                `json:"unit" binding:"max=20"`
	Brands []ProductBrandRequest `json:"brands" binding:"dive"`
}

// Update updates a product's unit and merges the submitted brands
func (h *ProductHandler) Update(c *gin.Context) {
	var req ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.ProductInput{Unit: req.Unit, Brands: make([]catalogapp.BrandInput, 0, len(req.Brands))}
	for _, b := range req.Brands {
		input.Brands = append(input.Brands, catalogapp.BrandInput{Name: b.Name, PacketSize: b.PacketSize})
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("name"), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers the product endpoints
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:name", h.GetByName)
		products.PUT("/:name", h.Update)
		products.DELETE("/:name", h.Delete)
	}
}
