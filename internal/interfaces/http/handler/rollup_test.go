package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stockapp "github.com/lotline/backend/internal/application/stock"
)

func newRollupTestServer(t *testing.T) (*gin.Engine, *stockapp.StockService) {
	t.Helper()

	svc := stockapp.NewStockService(newMemLotRepo(), newMemRowRepo(), &memSaleSource{}, nil)
	engine := newTestEngine(NewRollupHandler(svc))
	return engine, svc
}

func getRollup(t *testing.T, engine *gin.Engine, query string) RollupResponse {
	t.Helper()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rollup"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    RollupResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestRollupHandler_Get(t *testing.T) {
	engine, svc := newRollupTestServer(t)

	_, err := svc.CreateLot(context.Background(), stockapp.LotInput{
		LcNo: "LC-1", Date: "2026-02-01", ProductName: "Rice", Brand: "Golden",
		Packet: "100", PacketSize: "25", SweepedPacket: "4",
	})
	require.NoError(t, err)

	data := getRollup(t, engine, "")

	require.Len(t, data.Products, 1)
	group := data.Products[0]
	assert.Equal(t, "Rice", group.ProductName)

	require.Len(t, group.Lines, 1)
	line := group.Lines[0]
	assert.Equal(t, "Golden", line.Brand)
	assert.Equal(t, 100.0, line.Packet)
	assert.Equal(t, 2500.0, line.Quantity)
	assert.Equal(t, 96.0, line.TotalInHousePacket)
	assert.Equal(t, 2400.0, line.TotalInHouseQuantity)
	assert.Equal(t, 4.0, line.SweepedPacket)
	assert.Equal(t, 100.0, line.SweepedQuantity)
	assert.Equal(t, 2400.0, line.RemainingQuantity)

	assert.Equal(t, 100.0, data.Totals.Packet)
	assert.Equal(t, 2500.0, data.Totals.Quantity)
}

func TestRollupHandler_Get_MergesLotsAcrossBrands(t *testing.T) {
	engine, svc := newRollupTestServer(t)

	for _, input := range []stockapp.LotInput{
		{LcNo: "LC-1", Date: "2026-02-01", ProductName: "Rice", Brand: "Golden", Packet: "100", PacketSize: "25"},
		{LcNo: "LC-2", Date: "2026-02-10", ProductName: "Rice", Brand: "Golden", Packet: "40", PacketSize: "25"},
		{LcNo: "LC-3", Date: "2026-02-12", ProductName: "Rice", Brand: "Silver", Packet: "10", PacketSize: "50"},
	} {
		_, err := svc.CreateLot(context.Background(), input)
		require.NoError(t, err)
	}

	data := getRollup(t, engine, "")

	require.Len(t, data.Products, 1)
	require.Len(t, data.Products[0].Lines, 2)

	byBrand := make(map[string]BrandLineResponse)
	for _, line := range data.Products[0].Lines {
		byBrand[line.Brand] = line
	}
	assert.Equal(t, 140.0, byBrand["Golden"].Packet)
	assert.Equal(t, 3500.0, byBrand["Golden"].Quantity)
	assert.Equal(t, 500.0, byBrand["Silver"].Quantity)

	assert.Equal(t, 4000.0, data.Products[0].Totals.Quantity)
}

func TestRollupHandler_Get_Filtered(t *testing.T) {
	engine, svc := newRollupTestServer(t)

	for _, input := range []stockapp.LotInput{
		{LcNo: "LC-1", Date: "2026-02-01", ProductName: "Rice", Brand: "Golden", Packet: "100", PacketSize: "25"},
		{LcNo: "LC-2", Date: "2026-02-10", ProductName: "Sugar", Brand: "Sweet", Packet: "50", PacketSize: "10"},
	} {
		_, err := svc.CreateLot(context.Background(), input)
		require.NoError(t, err)
	}

	t.Run("by product name", func(t *testing.T) {
		data := getRollup(t, engine, "?product_name=sugar")
		require.Len(t, data.Products, 1)
		assert.Equal(t, "Sugar", data.Products[0].ProductName)
		assert.Equal(t, 500.0, data.Totals.Quantity)
	})

	t.Run("by date window", func(t *testing.T) {
		data := getRollup(t, engine, "?date_from=2026-02-05")
		require.Len(t, data.Products, 1)
		assert.Equal(t, "Sugar", data.Products[0].ProductName)
	})

	t.Run("by search", func(t *testing.T) {
		data := getRollup(t, engine, "?search=LC-1")
		require.Len(t, data.Products, 1)
		assert.Equal(t, "Rice", data.Products[0].ProductName)
	})

	t.Run("no match", func(t *testing.T) {
		data := getRollup(t, engine, "?product_name=Wheat")
		assert.Empty(t, data.Products)
		assert.Equal(t, 0.0, data.Totals.Quantity)
	})
}
