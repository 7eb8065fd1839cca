package handler

import (
	"github.com/gin-gonic/gin"

	stockapp "github.com/lotline/backend/internal/application/stock"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/lotline/backend/internal/interfaces/http/dto"
)

// LotHandler handles lot-related API endpoints
type LotHandler struct {
	BaseHandler
	stockService *stockapp.StockService
}

// NewLotHandler creates a new LotHandler
func NewLotHandler(stockService *stockapp.StockService) *LotHandler {
	return &LotHandler{stockService: stockService}
}

// LotRequest is the request body for creating or updating a lot. Numeric
// fields are strings: the upstream forms submit blank, "-" and comma-grouped
// values, which are parsed tolerantly downstream.
type LotRequest struct {
	LcNo        string `json:"lc_no" binding:"required,min=1,max=100"`
	Date        string `json:"date" binding:"omitempty,max=30"`
	Port        string `json:"port" binding:"max=100"`
	Importer    string `json:"importer" binding:"max=200"`
	Exporter    string `json:"exporter" binding:"max=200"`
	ProductName string `json:"product_name" binding:"required,min=1,max=200"`
	Brand       string `json:"brand" binding:"max=200"`
	TruckNo     string `json:"truck_no" binding:"max=100"`
	Unit        string `json:"unit" binding:"max=20"`

	Packet        string `json:"packet" binding:"max=30"`
	PacketSize    string `json:"packet_size" binding:"max=30"`
	Quantity      string `json:"quantity" binding:"max=30"`
	SweepedPacket string `json:"sweeped_packet" binding:"max=30"`
	SweepedQty    string `json:"sweeped_quantity" binding:"max=30"`
	SalePacket    string `json:"sale_packet" binding:"max=30"`
	SaleQty       string `json:"sale_quantity" binding:"max=30"`
}

func (r LotRequest) toInput() stockapp.LotInput {
	return stockapp.LotInput{
		LcNo:        r.LcNo,
		Date:        r.Date,
		Port:        r.Port,
		Importer:    r.Importer,
		Exporter:    r.Exporter,
		ProductName: r.ProductName,
		Brand:       r.Brand,
		TruckNo:     r.TruckNo,
		Unit:        r.Unit,

		Packet:        r.Packet,
		PacketSize:    r.PacketSize,
		Quantity:      r.Quantity,
		SweepedPacket: r.SweepedPacket,
		SweepedQty:    r.SweepedQty,
		SalePacket:    r.SalePacket,
		SaleQty:       r.SaleQty,
	}
}

// ListLotsRequest carries the list filters for lots
type ListLotsRequest struct {
	dto.ListRequest
	LcNo        string `form:"lc_no"`
	ProductName string `form:"product_name"`
	Brand       string `form:"brand"`
	Importer    string `form:"importer"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
}

// Create creates a lot from its receipt figures; the derived in-house
// figures are computed before the lot is stored.
func (h *LotHandler) Create(c *gin.Context) {
	var req LotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lot, err := h.stockService.CreateLot(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, lot)
}

// GetByID retrieves a lot by its ID
func (h *LotHandler) GetByID(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	lot, err := h.stockService.GetLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lot)
}

// List lists lots with pagination and filters
func (h *LotHandler) List(c *gin.Context) {
	req := ListLotsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
	if req.LcNo != "" {
		filter.Filters["lc_no"] = req.LcNo
	}
	if req.ProductName != "" {
		filter.Filters["product_name"] = req.ProductName
	}
	if req.Brand != "" {
		filter.Filters["brand"] = req.Brand
	}
	if req.Importer != "" {
		filter.Filters["importer"] = req.Importer
	}
	if req.DateFrom != "" {
		filter.Filters["date_from"] = req.DateFrom
	}
	if req.DateTo != "" {
		filter.Filters["date_to"] = req.DateTo
	}

	result, err := h.stockService.ListLots(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update replaces a lot's receipt figures and rederives its in-house figures
func (h *LotHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req LotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lot, err := h.stockService.UpdateLot(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lot)
}

// Delete deletes a lot
func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.stockService.DeleteLot(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers the lot endpoints
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lots := rg.Group("/lots")
	{
		lots.POST("", h.Create)
		lots.GET("", h.List)
		lots.GET("/:id", h.GetByID)
		lots.PUT("/:id", h.Update)
		lots.DELETE("/:id", h.Delete)
	}
}
