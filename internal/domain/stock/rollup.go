package stock

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RollupFilter narrows the lots that take part in a rollup. Each field is an
// exact case-insensitive match when present. Search is a case-insensitive
// substring match against lcNo, importer, exporter, port, truckNo, product
// name and brand; a lot passes only when it satisfies every active filter
// and, with a non-empty Search, at least one searched field contains it.
type RollupFilter struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	LcNo        string
	Port        string
	Importer    string
	Brand       string
	ProductName string
	Search      string
}

// BrandLine is the rollup of one (brand, importer, port) sub-group within a
// product.
type BrandLine struct {
	ProductName string
	Brand       string
	Importer    string
	Port        string
	PacketSize  decimal.Decimal

	Packet   decimal.Decimal
	Quantity decimal.Decimal

	CurrentPacket   decimal.Decimal
	CurrentQuantity decimal.Decimal

	TotalInHousePacket   decimal.Decimal
	TotalInHouseQuantity decimal.Decimal

	SweepedPacket   decimal.Decimal
	SweepedQuantity decimal.Decimal

	SoldPacket   decimal.Decimal
	SoldQuantity decimal.Decimal

	RemainingPacket   decimal.Decimal
	RemainingQuantity decimal.Decimal
}

// RollupTotals aggregates lines up to product or global level.
type RollupTotals struct {
	Packet   decimal.Decimal
	Quantity decimal.Decimal

	TotalInHousePacket   decimal.Decimal
	TotalInHouseQuantity decimal.Decimal

	InHousePacket   decimal.Decimal
	InHouseQuantity decimal.Decimal

	SweepedPacket   decimal.Decimal
	SweepedQuantity decimal.Decimal

	SoldPacket   decimal.Decimal
	SoldQuantity decimal.Decimal

	// WholePackets and LeftoverQuantity decompose the in-house packet count
	// into full packets plus a loose-kilogram remainder for display.
	WholePackets     decimal.Decimal
	LeftoverQuantity decimal.Decimal
}

// ProductGroup is the rollup of all brand lines of one product.
type ProductGroup struct {
	ProductName string
	Lines       []BrandLine
	Totals      RollupTotals
}

// RollupResult is the complete filtered rollup.
type RollupResult struct {
	Products []ProductGroup
	Totals   RollupTotals
}

// ComputeRollup folds lots into per-product/per-brand on-hand totals net of
// sales. Pure function of its inputs: permuting any input slice yields an
// identical result, and malformed figures degrade to zero rather than panic.
//
// Sales are resolved in a second pass, once per sub-group key, so a sub-group
// fed by many lots never double counts its sold quantity.
func ComputeRollup(lots []Lot, filter RollupFilter, rows []WarehouseRow, sales []SaleRecord) RollupResult {
	lines := make(map[string]*BrandLine)
	products := make(map[string]string) // folded product name -> display name

	for i := range lots {
		lot := &lots[i]
		if !matchesFilter(lot, filter) {
			continue
		}
		prodKey := foldKey(lot.ProductName)
		subKey := prodKey + "\x00" + foldKey(lot.Brand) + "\x00" + foldKey(lot.Importer) + "\x00" + foldKey(lot.Port)

		if display, ok := products[prodKey]; !ok || lot.ProductName < display {
			products[prodKey] = lot.ProductName
		}

		line, ok := lines[subKey]
		if !ok {
			line = &BrandLine{
				ProductName: lot.ProductName,
				Brand:       lot.Brand,
				Importer:    lot.Importer,
				Port:        lot.Port,
			}
			lines[subKey] = line
		} else {
			// Keep display fields stable under input permutation.
			if lot.ProductName < line.ProductName {
				line.ProductName = lot.ProductName
			}
			if lot.Brand < line.Brand {
				line.Brand = lot.Brand
			}
		}
		if lot.PacketSize.GreaterThan(line.PacketSize) {
			line.PacketSize = lot.PacketSize
		}

		d := Derive(Entry{
			Packet:        lot.Packet,
			PacketSize:    lot.PacketSize,
			Quantity:      lot.Quantity,
			SweepedPacket: lot.SweepedPacket,
			SweepedQty:    lot.SweepedQty,
			SalePacket:    lot.SalePacket,
			SaleQty:       lot.SaleQty,
		})

		line.Packet = line.Packet.Add(lot.Packet)
		line.Quantity = line.Quantity.Add(d.Quantity)
		line.CurrentPacket = line.CurrentPacket.Add(onHandPacket(lot, d))
		line.CurrentQuantity = line.CurrentQuantity.Add(onHandQuantity(lot, d))
		line.TotalInHousePacket = line.TotalInHousePacket.Add(d.TotalInHousePacket)
		line.TotalInHouseQuantity = line.TotalInHouseQuantity.Add(d.TotalInHouseQuantity)
		line.SweepedPacket = line.SweepedPacket.Add(lot.SweepedPacket)
		line.SweepedQuantity = line.SweepedQuantity.Add(d.SweepedQuantity)
	}

	// Second pass: resolve sold figures exactly once per sub-group.
	for _, line := range lines {
		resolveSales(line, rows, sales)
		line.RemainingQuantity = clampZero(line.TotalInHouseQuantity.Sub(line.SoldQuantity))
		line.RemainingPacket = clampZero(line.TotalInHousePacket.Sub(line.SoldPacket))
	}

	return assemble(lines, products)
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// onHandPacket prefers the warehouse-tracked packet figure over the derived
// in-house one.
func onHandPacket(lot *Lot, d Derived) decimal.Decimal {
	if lot.WhPkt != nil {
		return *lot.WhPkt
	}
	return d.InHousePacket
}

func onHandQuantity(lot *Lot, d Derived) decimal.Decimal {
	if lot.WhQty != nil {
		return *lot.WhQty
	}
	return d.InHouseQuantity
}

func matchesFilter(lot *Lot, f RollupFilter) bool {
	if f.DateFrom != nil && lot.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && lot.Date.After(*f.DateTo) {
		return false
	}
	if f.LcNo != "" && !strings.EqualFold(lot.LcNo, f.LcNo) {
		return false
	}
	if f.Port != "" && !strings.EqualFold(lot.Port, f.Port) {
		return false
	}
	if f.Importer != "" && !strings.EqualFold(lot.Importer, f.Importer) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(lot.Brand, f.Brand) {
		return false
	}
	if f.ProductName != "" && !strings.EqualFold(lot.ProductName, f.ProductName) {
		return false
	}
	if f.Search != "" && !matchesSearch(lot, f.Search) {
		return false
	}
	return true
}

func matchesSearch(lot *Lot, search string) bool {
	needle := foldKey(search)
	for _, field := range []string{lot.LcNo, lot.Importer, lot.Exporter, lot.Port, lot.TruckNo, lot.ProductName, lot.Brand} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// resolveSales scans the sale records and sale-bearing warehouse rows for the
// line's product and brand. An unbranded sale entry matches only when the
// line's brand equals the product name, which is how single-brand products
// record their sales.
func resolveSales(line *BrandLine, rows []WarehouseRow, sales []SaleRecord) {
	soldQty := decimal.Zero
	recordedPkt := decimal.Zero
	singleBrand := strings.EqualFold(line.Brand, line.ProductName)

	for i := range sales {
		for _, item := range sales[i].Items {
			if !strings.EqualFold(item.ProductName, line.ProductName) {
				continue
			}
			for _, entry := range item.Brands {
				switch {
				case strings.EqualFold(entry.Brand, line.Brand):
				case entry.IsUnbranded() && singleBrand:
				default:
					continue
				}
				soldQty = soldQty.Add(entry.Quantity)
				recordedPkt = recordedPkt.Add(entry.Packet)
			}
		}
	}

	for i := range rows {
		row := &rows[i]
		if row.IsSaleBearing() && row.Matches(line.ProductName, line.Brand) {
			soldQty = soldQty.Add(row.SaleQty)
			recordedPkt = recordedPkt.Add(row.SalePacket)
		}
	}

	line.SoldQuantity = soldQty
	if line.PacketSize.IsPositive() {
		line.SoldPacket = soldQty.Div(line.PacketSize).Round(2)
	} else {
		line.SoldPacket = recordedPkt
	}
}

func assemble(lines map[string]*BrandLine, products map[string]string) RollupResult {
	grouped := make(map[string][]BrandLine)
	for key, line := range lines {
		prodKey := key[:strings.Index(key, "\x00")]
		grouped[prodKey] = append(grouped[prodKey], *line)
	}

	prodKeys := make([]string, 0, len(grouped))
	for k := range grouped {
		prodKeys = append(prodKeys, k)
	}
	sort.Strings(prodKeys)

	result := RollupResult{Products: make([]ProductGroup, 0, len(prodKeys))}
	for _, pk := range prodKeys {
		groupLines := grouped[pk]
		sort.Slice(groupLines, func(i, j int) bool {
			a, b := groupLines[i], groupLines[j]
			if !strings.EqualFold(a.Brand, b.Brand) {
				return foldKey(a.Brand) < foldKey(b.Brand)
			}
			if !strings.EqualFold(a.Importer, b.Importer) {
				return foldKey(a.Importer) < foldKey(b.Importer)
			}
			return foldKey(a.Port) < foldKey(b.Port)
		})

		group := ProductGroup{ProductName: products[pk], Lines: groupLines}
		for i := range groupLines {
			accumulate(&group.Totals, &groupLines[i])
		}
		accumulateTotals(&result.Totals, &group.Totals)
		result.Products = append(result.Products, group)
	}
	return result
}

func accumulate(t *RollupTotals, line *BrandLine) {
	t.Packet = t.Packet.Add(line.Packet)
	t.Quantity = t.Quantity.Add(line.Quantity)
	t.TotalInHousePacket = t.TotalInHousePacket.Add(line.TotalInHousePacket)
	t.TotalInHouseQuantity = t.TotalInHouseQuantity.Add(line.TotalInHouseQuantity)
	t.InHousePacket = t.InHousePacket.Add(line.RemainingPacket)
	t.InHouseQuantity = t.InHouseQuantity.Add(line.RemainingQuantity)
	t.SweepedPacket = t.SweepedPacket.Add(line.SweepedPacket)
	t.SweepedQuantity = t.SweepedQuantity.Add(line.SweepedQuantity)
	t.SoldPacket = t.SoldPacket.Add(line.SoldPacket)
	t.SoldQuantity = t.SoldQuantity.Add(line.SoldQuantity)

	whole := line.RemainingPacket.Floor()
	t.WholePackets = t.WholePackets.Add(whole)
	t.LeftoverQuantity = t.LeftoverQuantity.Add(line.RemainingPacket.Sub(whole).Mul(line.PacketSize).Round(2))
}

func accumulateTotals(t *RollupTotals, g *RollupTotals) {
	t.Packet = t.Packet.Add(g.Packet)
	t.Quantity = t.Quantity.Add(g.Quantity)
	t.TotalInHousePacket = t.TotalInHousePacket.Add(g.TotalInHousePacket)
	t.TotalInHouseQuantity = t.TotalInHouseQuantity.Add(g.TotalInHouseQuantity)
	t.InHousePacket = t.InHousePacket.Add(g.InHousePacket)
	t.InHouseQuantity = t.InHouseQuantity.Add(g.InHouseQuantity)
	t.SweepedPacket = t.SweepedPacket.Add(g.SweepedPacket)
	t.SweepedQuantity = t.SweepedQuantity.Add(g.SweepedQuantity)
	t.SoldPacket = t.SoldPacket.Add(g.SoldPacket)
	t.SoldQuantity = t.SoldQuantity.Add(g.SoldQuantity)
	t.WholePackets = t.WholePackets.Add(g.WholePackets)
	t.LeftoverQuantity = t.LeftoverQuantity.Add(g.LeftoverQuantity)
}
