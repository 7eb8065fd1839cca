package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/lotline/backend/internal/application/stock"
	"github.com/lotline/backend/internal/domain/stock"
)

// IdempotencyKeyHeader carries a client-chosen token for the apply step.
// Retrying an apply with the same token is a safe no-op.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferHandler handles inter-warehouse transfer endpoints
type TransferHandler struct {
	BaseHandler
	transferService *stockapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *stockapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// TransferLineRequest is one product/brand line of a transfer submission
type TransferLineRequest struct {
	ProductName string `json:"product_name" binding:"required,min=1,max=200"`
	Brand       string `json:"brand" binding:"max=200"`
	Quantity    string `json:"quantity" binding:"max=30"`
	Packet      string `json:"packet" binding:"max=30"`
}

// TransferRequest is the request body for planning or applying a transfer
type TransferRequest struct {
	SourceWarehouse string                `json:"source_warehouse" binding:"required,min=1,max=200"`
	DestWarehouse   string                `json:"dest_warehouse" binding:"required,min=1,max=200"`
	Lines           []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
	AllowPartial    bool                  `json:"allow_partial"`
}

// DeductionResponse reports stock taken from one source row
type DeductionResponse struct {
	RowID    string  `json:"row_id"`
	LcNo     string  `json:"lc_no"`
	Quantity float64 `json:"quantity"`
	Packet   float64 `json:"packet"`
}

// PlanResponse is the dry-run preview of a transfer
type PlanResponse struct {
	PlanID          string                        `json:"plan_id"`
	SourceWarehouse string                        `json:"source_warehouse"`
	DestWarehouse   string                        `json:"dest_warehouse"`
	FullyFulfilled  bool                          `json:"fully_fulfilled"`
	Fulfilments     []stockapp.FulfilmentResponse `json:"fulfilments"`
	Deductions      []DeductionResponse           `json:"deductions"`
}

// ApplyResponse reports the outcome of an applied transfer together with the
// refreshed stock state
type ApplyResponse struct {
	Applied        bool                           `json:"applied"`
	AlreadyApplied bool                           `json:"already_applied"`
	Fulfilments    []stockapp.FulfilmentResponse  `json:"fulfilments"`
	Rows           []stockapp.WarehouseRowResponse `json:"rows"`
	Lots           []stockapp.LotResponse          `json:"lots"`
}

// Plan computes a transfer without persisting anything. Shortfalls are
// reported per line, never as an error.
func (h *TransferHandler) Plan(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.plan(c, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPlanResponse(plan))
}

// Apply plans and applies a transfer in one step. An under-fulfilled plan is
// rejected unless allow_partial is set. The Idempotency-Key header, when it
// carries a UUID, keys the apply so a retried request does not move stock
// twice.
func (h *TransferHandler) Apply(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.plan(c, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		token, err := uuid.Parse(key)
		if err != nil {
			h.BadRequest(c, "Idempotency-Key must be a UUID")
			return
		}
		plan.ID = token
	}

	result, err := h.transferService.Apply(c.Request.Context(), plan, stockapp.ApplyOptions{
		AllowPartial: req.AllowPartial,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ApplyResponse{
		Applied:        result.Applied,
		AlreadyApplied: result.AlreadyApplied,
		Fulfilments:    result.Fulfilments,
		Rows:           make([]stockapp.WarehouseRowResponse, 0, len(result.Rows)),
		Lots:           make([]stockapp.LotResponse, 0, len(result.Lots)),
	}
	for i := range result.Rows {
		resp.Rows = append(resp.Rows, stockapp.ToWarehouseRowResponse(&result.Rows[i]))
	}
	for i := range result.Lots {
		resp.Lots = append(resp.Lots, stockapp.ToLotResponse(&result.Lots[i]))
	}

	h.Success(c, resp)
}

func (h *TransferHandler) plan(c *gin.Context, req TransferRequest) (*stock.TransferPlan, error) {
	inputs := make([]stockapp.TransferRequestInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		inputs = append(inputs, stockapp.TransferRequestInput{
			ProductName: line.ProductName,
			Brand:       line.Brand,
			Quantity:    line.Quantity,
			Packet:      line.Packet,
		})
	}

	requests, err := h.transferService.BuildRequests(c.Request.Context(), inputs)
	if err != nil {
		return nil, err
	}
	return h.transferService.Plan(c.Request.Context(), req.SourceWarehouse, req.DestWarehouse, requests)
}

func toPlanResponse(plan *stock.TransferPlan) PlanResponse {
	resp := PlanResponse{
		PlanID:          plan.ID.String(),
		SourceWarehouse: plan.SourceWarehouse,
		DestWarehouse:   plan.DestWarehouse,
		FullyFulfilled:  plan.FullyFulfilled(),
		Fulfilments:     make([]stockapp.FulfilmentResponse, 0, len(plan.Fulfilments)),
		Deductions:      make([]DeductionResponse, 0, len(plan.Deductions)),
	}
	for _, f := range plan.Fulfilments {
		resp.Fulfilments = append(resp.Fulfilments, stockapp.ToFulfilmentResponse(f))
	}
	for _, d := range plan.Deductions {
		resp.Deductions = append(resp.Deductions, DeductionResponse{
			RowID:    d.RowID.String(),
			LcNo:     d.LcNo,
			Quantity: d.Quantity.InexactFloat64(),
			Packet:   d.Packet.InexactFloat64(),
		})
	}
	return resp
}

// RegisterRoutes registers the transfer endpoints
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.Apply)
		transfers.POST("/plan", h.Plan)
	}
}
