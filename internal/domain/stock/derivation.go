package stock

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a numeric field coming from legacy or partial data.
// Blank, "-" and comma-grouped inputs are tolerated; anything that cannot be
// parsed resolves to zero. It never returns an error.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPacket renders a packet count for display, stripping a trailing
// fractional part of zeros ("90.00" -> "90"). Stored quantities keep their
// two-decimal form; only the display path uses this.
func FormatPacket(d decimal.Decimal) string {
	s := d.Round(2).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// Entry holds the raw figures of a stock receipt line that the derivation
// rules operate on. Quantity, SweepedQuantity and SaleQuantity are the direct
// quantity figures used when PacketSize is zero or unknown.
type Entry struct {
	Packet        decimal.Decimal
	PacketSize    decimal.Decimal
	Quantity      decimal.Decimal
	SweepedPacket decimal.Decimal
	SweepedQty    decimal.Decimal
	SalePacket    decimal.Decimal
	SaleQty       decimal.Decimal
}

// Derived holds the quantity-equivalent figures computed from an Entry.
type Derived struct {
	Quantity             decimal.Decimal
	SweepedQuantity      decimal.Decimal
	TotalInHousePacket   decimal.Decimal
	TotalInHouseQuantity decimal.Decimal
	InHousePacket        decimal.Decimal
	InHouseQuantity      decimal.Decimal
}

// Derive converts the raw entry fields into quantity-equivalent figures.
//
// With a positive packet size every quantity is packet-led:
//
//	quantity             = packet x packetSize
//	sweepedQuantity      = sweepedPacket x packetSize
//	totalInHousePacket   = packet - sweepedPacket
//	totalInHouseQuantity = totalInHousePacket x packetSize
//	inHousePacket        = totalInHousePacket - salePacket
//	inHouseQuantity      = inHousePacket x packetSize
//
// With a zero packet size the multiplicative derivations cannot be computed,
// so the quantity figures fall back to direct quantity arithmetic
// (totalInHouseQuantity = quantity - sweepedQuantity). Packet subtraction
// still applies since it does not involve the packet size. This fallback is
// what keeps lots with unknown packet sizes from corrupting rollups.
func Derive(e Entry) Derived {
	if e.PacketSize.IsPositive() {
		totalPkt := e.Packet.Sub(e.SweepedPacket)
		inPkt := totalPkt.Sub(e.SalePacket)
		return Derived{
			Quantity:             e.Packet.Mul(e.PacketSize).Round(2),
			SweepedQuantity:      e.SweepedPacket.Mul(e.PacketSize).Round(2),
			TotalInHousePacket:   totalPkt,
			TotalInHouseQuantity: totalPkt.Mul(e.PacketSize).Round(2),
			InHousePacket:        inPkt,
			InHouseQuantity:      inPkt.Mul(e.PacketSize).Round(2),
		}
	}

	totalPkt := e.Packet.Sub(e.SweepedPacket)
	totalQty := e.Quantity.Sub(e.SweepedQty)
	return Derived{
		Quantity:             e.Quantity,
		SweepedQuantity:      e.SweepedQty,
		TotalInHousePacket:   totalPkt,
		TotalInHouseQuantity: totalQty,
		InHousePacket:        totalPkt.Sub(e.SalePacket),
		InHouseQuantity:      totalQty.Sub(e.SaleQty),
	}
}

// PacketsForQuantity converts a quantity into a packet count using the brand's
// packet size. A zero packet size yields zero packets.
func PacketsForQuantity(quantity, packetSize decimal.Decimal) decimal.Decimal {
	if !packetSize.IsPositive() {
		return decimal.Zero
	}
	return quantity.Div(packetSize).Round(2)
}
