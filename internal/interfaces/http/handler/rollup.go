package handler

import (
	"github.com/gin-gonic/gin"

	stockapp "github.com/lotline/backend/internal/application/stock"
	"github.com/lotline/backend/internal/domain/stock"
)

// RollupHandler serves the aggregated stock view
type RollupHandler struct {
	BaseHandler
	stockService *stockapp.StockService
}

// NewRollupHandler creates a new RollupHandler
func NewRollupHandler(stockService *stockapp.StockService) *RollupHandler {
	return &RollupHandler{stockService: stockService}
}

// RollupRequest carries the rollup filter query parameters
type RollupRequest struct {
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	LcNo        string `form:"lc_no"`
	Port        string `form:"port"`
	Importer    string `form:"importer"`
	Brand       string `form:"brand"`
	ProductName string `form:"product_name"`
	Search      string `form:"search"`
}

// BrandLineResponse is one product/brand line of the rollup
type BrandLineResponse struct {
	ProductName string  `json:"product_name"`
	Brand       string  `json:"brand"`
	Importer    string  `json:"importer"`
	Port        string  `json:"port"`
	PacketSize  float64 `json:"packet_size"`

	Packet   float64 `json:"packet"`
	Quantity float64 `json:"quantity"`

	CurrentPacket   float64 `json:"current_packet"`
	CurrentQuantity float64 `json:"current_quantity"`

	TotalInHousePacket   float64 `json:"total_in_house_packet"`
	TotalInHouseQuantity float64 `json:"total_in_house_quantity"`

	SweepedPacket   float64 `json:"sweeped_packet"`
	SweepedQuantity float64 `json:"sweeped_quantity"`

	SoldPacket   float64 `json:"sold_packet"`
	SoldQuantity float64 `json:"sold_quantity"`

	RemainingPacket   float64 `json:"remaining_packet"`
	RemainingQuantity float64 `json:"remaining_quantity"`
}

// RollupTotalsResponse aggregates lines at product or global level
type RollupTotalsResponse struct {
	Packet   float64 `json:"packet"`
	Quantity float64 `json:"quantity"`

	TotalInHousePacket   float64 `json:"total_in_house_packet"`
	TotalInHouseQuantity float64 `json:"total_in_house_quantity"`

	InHousePacket   float64 `json:"in_house_packet"`
	InHouseQuantity float64 `json:"in_house_quantity"`

	SweepedPacket   float64 `json:"sweeped_packet"`
	SweepedQuantity float64 `json:"sweeped_quantity"`

	SoldPacket   float64 `json:"sold_packet"`
	SoldQuantity float64 `json:"sold_quantity"`

	WholePackets     float64 `json:"whole_packets"`
	LeftoverQuantity float64 `json:"leftover_quantity"`
}

// ProductGroupResponse is the rollup of one product
type ProductGroupResponse struct {
	ProductName string               `json:"product_name"`
	Lines       []BrandLineResponse  `json:"lines"`
	Totals      RollupTotalsResponse `json:"totals"`
}

// RollupResponse is the complete filtered rollup
type RollupResponse struct {
	Products []ProductGroupResponse `json:"products"`
	Totals   RollupTotalsResponse   `json:"totals"`
}

// Get computes the filtered rollup over the full working set
func (h *RollupHandler) Get(c *gin.Context) {
	var req RollupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.Rollup(c.Request.Context(), stockapp.RollupQuery{
		DateFrom:    req.DateFrom,
		DateTo:      req.DateTo,
		LcNo:        req.LcNo,
		Port:        req.Port,
		Importer:    req.Importer,
		Brand:       req.Brand,
		ProductName: req.ProductName,
		Search:      req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRollupResponse(result))
}

// RegisterRoutes registers the rollup endpoint
func (h *RollupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rollup", h.Get)
}

func toRollupResponse(result *stock.RollupResult) RollupResponse {
	resp := RollupResponse{
		Products: make([]ProductGroupResponse, 0, len(result.Products)),
		Totals:   toTotalsResponse(result.Totals),
	}
	for _, group := range result.Products {
		g := ProductGroupResponse{
			ProductName: group.ProductName,
			Lines:       make([]BrandLineResponse, 0, len(group.Lines)),
			Totals:      toTotalsResponse(group.Totals),
		}
		for _, line := range group.Lines {
			g.Lines = append(g.Lines, BrandLineResponse{
				ProductName: line.ProductName,
				Brand:       line.Brand,
				Importer:    line.Importer,
				Port:        line.Port,
				PacketSize:  line.PacketSize.InexactFloat64(),

				Packet:   line.Packet.InexactFloat64(),
				Quantity: line.Quantity.InexactFloat64(),

				CurrentPacket:   line.CurrentPacket.InexactFloat64(),
				CurrentQuantity: line.CurrentQuantity.InexactFloat64(),

				TotalInHousePacket:   line.TotalInHousePacket.InexactFloat64(),
				TotalInHouseQuantity: line.TotalInHouseQuantity.InexactFloat64(),

				SweepedPacket:   line.SweepedPacket.InexactFloat64(),
				SweepedQuantity: line.SweepedQuantity.InexactFloat64(),

				SoldPacket:   line.SoldPacket.InexactFloat64(),
				SoldQuantity: line.SoldQuantity.InexactFloat64(),

				RemainingPacket:   line.RemainingPacket.InexactFloat64(),
				RemainingQuantity: line.RemainingQuantity.InexactFloat64(),
			})
		}
		resp.Products = append(resp.Products, g)
	}
	return resp
}

func toTotalsResponse(t stock.RollupTotals) RollupTotalsResponse {
	return RollupTotalsResponse{
		Packet:   t.Packet.InexactFloat64(),
		Quantity: t.Quantity.InexactFloat64(),

		TotalInHousePacket:   t.TotalInHousePacket.InexactFloat64(),
		TotalInHouseQuantity: t.TotalInHouseQuantity.InexactFloat64(),

		InHousePacket:   t.InHousePacket.InexactFloat64(),
		InHouseQuantity: t.InHouseQuantity.InexactFloat64(),

		SweepedPacket:   t.SweepedPacket.InexactFloat64(),
		SweepedQuantity: t.SweepedQuantity.InexactFloat64(),

		SoldPacket:   t.SoldPacket.InexactFloat64(),
		SoldQuantity: t.SoldQuantity.InexactFloat64(),

		WholePackets:     t.WholePackets.InexactFloat64(),
		LeftoverQuantity: t.LeftoverQuantity.InexactFloat64(),
	}
}
