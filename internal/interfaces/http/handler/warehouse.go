package handler

import (
	"github.com/gin-gonic/gin"

	stockapp "github.com/lotline/backend/internal/application/stock"
)

// WarehouseHandler serves the per-warehouse stock rows
type WarehouseHandler struct {
	BaseHandler
	stockService *stockapp.StockService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(stockService *stockapp.StockService) *WarehouseHandler {
	return &WarehouseHandler{stockService: stockService}
}

// ListRows lists the stock rows held at one warehouse, oldest first
func (h *WarehouseHandler) ListRows(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		h.BadRequest(c, "Warehouse name is required")
		return
	}

	rows, err := h.stockService.ListWarehouseRows(c.Request.Context(), name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// ListAllRows lists every warehouse row
func (h *WarehouseHandler) ListAllRows(c *gin.Context) {
	rows, err := h.stockService.ListWarehouseRows(c.Request.Context(), "")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// RegisterRoutes registers the warehouse endpoints
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	warehouses := rg.Group("/warehouses")
	{
		warehouses.GET("/rows", h.ListAllRows)
		warehouses.GET("/:name/rows", h.ListRows)
	}
}
