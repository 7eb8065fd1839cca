package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain integer", "100", "100"},
		{"decimal", "25.5", "25.5"},
		{"comma grouped", "2,500.75", "2500.75"},
		{"padded", "  42  ", "42"},
		{"empty", "", "0"},
		{"dash placeholder", "-", "0"},
		{"garbage", "abc", "0"},
		{"mixed garbage", "12kg", "0"},
		{"negative", "-10", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.input).String())
		})
	}
}

func TestFormatPacket(t *testing.T) {
	assert.Equal(t, "90", FormatPacket(decimal.RequireFromString("90.00")))
	assert.Equal(t, "90.5", FormatPacket(decimal.RequireFromString("90.50")))
	assert.Equal(t, "90.25", FormatPacket(decimal.RequireFromString("90.249")))
	assert.Equal(t, "0", FormatPacket(decimal.Zero))
}

func TestDerive(t *testing.T) {
	t.Run("packet-led derivation", func(t *testing.T) {
		d := Derive(Entry{
			Packet:        decimal.NewFromInt(100),
			PacketSize:    decimal.NewFromInt(25),
			SweepedPacket: decimal.NewFromInt(10),
		})

		assert.Equal(t, "2500", d.Quantity.String())
		assert.Equal(t, "250", d.SweepedQuantity.String())
		assert.Equal(t, "90", d.TotalInHousePacket.String())
		assert.Equal(t, "2250", d.TotalInHouseQuantity.String())
		assert.Equal(t, "90", d.InHousePacket.String())
		assert.Equal(t, "2250", d.InHouseQuantity.String())
	})

	t.Run("sale packets reduce in-house figures", func(t *testing.T) {
		d := Derive(Entry{
			Packet:        decimal.NewFromInt(100),
			PacketSize:    decimal.NewFromInt(25),
			SweepedPacket: decimal.NewFromInt(10),
			SalePacket:    decimal.NewFromInt(40),
		})

		assert.Equal(t, "90", d.TotalInHousePacket.String())
		assert.Equal(t, "50", d.InHousePacket.String())
		assert.Equal(t, "1250", d.InHouseQuantity.String())
	})

	t.Run("zero packet size falls back to direct quantities", func(t *testing.T) {
		d := Derive(Entry{
			Packet:        decimal.NewFromInt(100),
			Quantity:      decimal.NewFromInt(3000),
			SweepedPacket: decimal.NewFromInt(10),
			SweepedQty:    decimal.NewFromInt(120),
		})

		assert.Equal(t, "3000", d.Quantity.String())
		assert.Equal(t, "120", d.SweepedQuantity.String())
		assert.Equal(t, "90", d.TotalInHousePacket.String())
		assert.Equal(t, "2880", d.TotalInHouseQuantity.String())
	})

	t.Run("invariants hold for positive packet sizes", func(t *testing.T) {
		entries := []Entry{
			{Packet: decimal.NewFromInt(7), PacketSize: decimal.RequireFromString("12.5"), SweepedPacket: decimal.NewFromInt(2)},
			{Packet: decimal.RequireFromString("3.5"), PacketSize: decimal.NewFromInt(40)},
			{Packet: decimal.NewFromInt(250), PacketSize: decimal.NewFromInt(1), SweepedPacket: decimal.NewFromInt(250)},
		}
		for _, e := range entries {
			d := Derive(e)
			assert.True(t, d.TotalInHouseQuantity.Equal(d.TotalInHousePacket.Mul(e.PacketSize).Round(2)))
			assert.True(t, d.TotalInHousePacket.Equal(e.Packet.Sub(e.SweepedPacket)))
		}
	})

	t.Run("invariant holds for zero packet size", func(t *testing.T) {
		e := Entry{
			Quantity:   decimal.NewFromInt(500),
			SweepedQty: decimal.NewFromInt(75),
		}
		d := Derive(e)
		assert.True(t, d.TotalInHouseQuantity.Equal(e.Quantity.Sub(e.SweepedQty)))
	})

	t.Run("quantities round to two decimals", func(t *testing.T) {
		d := Derive(Entry{
			Packet:     decimal.RequireFromString("3.333"),
			PacketSize: decimal.RequireFromString("7.77"),
		})
		assert.Equal(t, "25.9", d.Quantity.String())
	})
}

func TestPacketsForQuantity(t *testing.T) {
	assert.Equal(t, "20", PacketsForQuantity(decimal.NewFromInt(500), decimal.NewFromInt(25)).String())
	assert.Equal(t, "0", PacketsForQuantity(decimal.NewFromInt(500), decimal.Zero).String())
	assert.Equal(t, "13.33", PacketsForQuantity(decimal.NewFromInt(400), decimal.NewFromInt(30)).String())
}
