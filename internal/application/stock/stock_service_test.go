package stock

import (
	"context"
	"testing"

	"github.com/lotline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStockService() (*StockService, *memLotRepo, *memRowRepo, *memSaleSource) {
	lots := newMemLotRepo()
	rows := newMemRowRepo()
	sales := &memSaleSource{}
	return NewStockService(lots, rows, sales, nil), lots, rows, sales
}

func TestStockService_CreateLot(t *testing.T) {
	svc, _, _, _ := newTestStockService()
	ctx := context.Background()

	t.Run("derives figures from raw receipt fields", func(t *testing.T) {
		resp, err := svc.CreateLot(ctx, LotInput{
			LcNo:          "LC-100",
			Date:          "2025-03-10",
			ProductName:   "Rice",
			Brand:         "Golden",
			Packet:        "100",
			PacketSize:    "25",
			SweepedPacket: "10",
		})

		require.NoError(t, err)
		assert.Equal(t, float64(2500), resp.Quantity)
		assert.Equal(t, float64(90), resp.TotalInHousePacket)
		assert.Equal(t, float64(2250), resp.TotalInHouseQty)
		assert.Equal(t, "kg", resp.Unit)
	})

	t.Run("tolerates comma-grouped and blank numerics", func(t *testing.T) {
		resp, err := svc.CreateLot(ctx, LotInput{
			LcNo:        "LC-101",
			Date:        "2025-03-11",
			ProductName: "Lentils",
			Packet:      "1,000",
			PacketSize:  "30",
			SweepedQty:  "not-a-number",
		})

		require.NoError(t, err)
		assert.Equal(t, float64(30000), resp.Quantity)
		assert.Equal(t, float64(0), resp.SweepedQty)
		// Blank brand falls back to the product name.
		assert.Equal(t, "Lentils", resp.Brand)
	})

	t.Run("rejects missing product name", func(t *testing.T) {
		_, err := svc.CreateLot(ctx, LotInput{LcNo: "LC-102", Date: "2025-03-12"})
		require.Error(t, err)
	})
}

func TestStockService_UpdateLot(t *testing.T) {
	svc, lots, _, _ := newTestStockService()
	ctx := context.Background()

	created, err := svc.CreateLot(ctx, LotInput{
		LcNo:        "LC-100",
		Date:        "2025-03-10",
		ProductName: "Rice",
		Brand:       "Golden",
		Packet:      "100",
		PacketSize:  "25",
	})
	require.NoError(t, err)

	all, err := lots.FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, all, 1)

	updated, err := svc.UpdateLot(ctx, all[0].ID, LotInput{
		LcNo:          "LC-100",
		Date:          "2025-03-10",
		ProductName:   "Rice",
		Brand:         "Golden",
		Packet:        "100",
		PacketSize:    "25",
		SweepedPacket: "20",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(80), updated.TotalInHousePacket)
	assert.Equal(t, float64(2000), updated.TotalInHouseQty)
	assert.Greater(t, updated.Version, created.Version)
}

func TestStockService_Rollup(t *testing.T) {
	svc, _, _, _ := newTestStockService()
	ctx := context.Background()

	seed := []LotInput{
		{LcNo: "LC-1", Date: "2025-03-10", ProductName: "Rice", Brand: "Golden", Port: "Chittagong", Importer: "Acme", Packet: "100", PacketSize: "25", SweepedPacket: "10"},
		{LcNo: "LC-2", Date: "2025-03-12", ProductName: "Rice", Brand: "Silver", Port: "Mongla", Importer: "Acme", Packet: "60", PacketSize: "50"},
	}
	for _, in := range seed {
		_, err := svc.CreateLot(ctx, in)
		require.NoError(t, err)
	}

	t.Run("computes filtered rollup", func(t *testing.T) {
		result, err := svc.Rollup(ctx, RollupQuery{Brand: "golden"})
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, "2250", result.Totals.TotalInHouseQuantity.String())
	})

	t.Run("serves identical inputs from the cache", func(t *testing.T) {
		cache := newCountingCache()
		svc.SetRollupCache(cache)

		first, err := svc.Rollup(ctx, RollupQuery{})
		require.NoError(t, err)
		second, err := svc.Rollup(ctx, RollupQuery{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, cache.sets)
		assert.Equal(t, 1, cache.hits)
	})

	t.Run("changed inputs miss the cache", func(t *testing.T) {
		cache := newCountingCache()
		svc.SetRollupCache(cache)

		_, err := svc.Rollup(ctx, RollupQuery{})
		require.NoError(t, err)

		_, err = svc.CreateLot(ctx, LotInput{LcNo: "LC-3", Date: "2025-03-14", ProductName: "Wheat", Packet: "10", PacketSize: "40"})
		require.NoError(t, err)

		_, err = svc.Rollup(ctx, RollupQuery{})
		require.NoError(t, err)
		assert.Equal(t, 2, cache.sets)
		assert.Equal(t, 0, cache.hits)
	})
}
