package stock

import (
	"time"

	"github.com/lotline/backend/internal/domain/stock"
)

// LotInput carries the raw receipt fields of a lot. Numeric fields arrive as
// strings because the upstream forms allow blank, "-" and comma-grouped
// values; they are parsed tolerantly, degrading to zero.
type LotInput struct {
	LcNo        string `json:"lc_no"`
	Date        string `json:"date"`
	Port        string `json:"port"`
	Importer    string `json:"importer"`
	Exporter    string `json:"exporter"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	TruckNo     string `json:"truck_no"`
	Unit        string `json:"unit"`

	Packet        string `json:"packet"`
	PacketSize    string `json:"packet_size"`
	Quantity      string `json:"quantity"`
	SweepedPacket string `json:"sweeped_packet"`
	SweepedQty    string `json:"sweeped_quantity"`
	SalePacket    string `json:"sale_packet"`
	SaleQty       string `json:"sale_quantity"`
}

// LotResponse is the API shape of a lot with its derived figures.
type LotResponse struct {
	ID          string `json:"id"`
	LcNo        string `json:"lc_no"`
	Date        string `json:"date"`
	Port        string `json:"port"`
	Importer    string `json:"importer"`
	Exporter    string `json:"exporter"`
	ProductName string `json:"product_name"`
	Brand       string `json:"brand"`
	TruckNo     string `json:"truck_no"`
	Unit        string `json:"unit"`

	Packet        float64 `json:"packet"`
	PacketSize    float64 `json:"packet_size"`
	Quantity      float64 `json:"quantity"`
	SweepedPacket float64 `json:"sweeped_packet"`
	SweepedQty    float64 `json:"sweeped_quantity"`

	TotalInHousePacket float64 `json:"total_in_house_packet"`
	TotalInHouseQty    float64 `json:"total_in_house_quantity"`
	InHousePacket      float64 `json:"in_house_packet"`
	InHouseQty         float64 `json:"in_house_quantity"`

	WhPkt *float64 `json:"wh_pkt,omitempty"`
	WhQty *float64 `json:"wh_qty,omitempty"`

	Retired bool `json:"retired"`
	Version int  `json:"version"`
}

// ToLotResponse maps a lot to its API shape
func ToLotResponse(lot *stock.Lot) LotResponse {
	resp := LotResponse{
		ID:          lot.ID.String(),
		LcNo:        lot.LcNo,
		Date:        lot.Date.Format("2006-01-02"),
		Port:        lot.Port,
		Importer:    lot.Importer,
		Exporter:    lot.Exporter,
		ProductName: lot.ProductName,
		Brand:       lot.Brand,
		TruckNo:     lot.TruckNo,
		Unit:        lot.Unit,

		Packet:        lot.Packet.InexactFloat64(),
		PacketSize:    lot.PacketSize.InexactFloat64(),
		Quantity:      lot.Quantity.InexactFloat64(),
		SweepedPacket: lot.SweepedPacket.InexactFloat64(),
		SweepedQty:    lot.SweepedQty.InexactFloat64(),

		TotalInHousePacket: lot.TotalInHousePacket.InexactFloat64(),
		TotalInHouseQty:    lot.TotalInHouseQty.InexactFloat64(),
		InHousePacket:      lot.InHousePacket.InexactFloat64(),
		InHouseQty:         lot.InHouseQty.InexactFloat64(),

		Retired: lot.Retired(),
		Version: lot.Version,
	}
	if lot.WhPkt != nil {
		v := lot.WhPkt.InexactFloat64()
		resp.WhPkt = &v
	}
	if lot.WhQty != nil {
		v := lot.WhQty.InexactFloat64()
		resp.WhQty = &v
	}
	return resp
}

// RollupQuery carries the rollup filter fields as they arrive from the host.
type RollupQuery struct {
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	LcNo        string `json:"lc_no"`
	Port        string `json:"port"`
	Importer    string `json:"importer"`
	Brand       string `json:"brand"`
	ProductName string `json:"product_name"`
	Search      string `json:"search"`
}

// ToFilter converts the query into a domain rollup filter. Unparsable dates
// are treated as absent.
func (q RollupQuery) ToFilter() stock.RollupFilter {
	f := stock.RollupFilter{
		LcNo:        q.LcNo,
		Port:        q.Port,
		Importer:    q.Importer,
		Brand:       q.Brand,
		ProductName: q.ProductName,
		Search:      q.Search,
	}
	if t, err := parseDate(q.DateFrom); err == nil {
		f.DateFrom = &t
	}
	if t, err := parseDate(q.DateTo); err == nil {
		f.DateTo = &t
	}
	return f
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// TransferRequestInput is one product/brand line of a transfer submission.
// The user enters a quantity; the packet count is derived from the catalog
// packet size unless explicitly supplied.
type TransferRequestInput struct {
	ProductName string `json:"product_name" validate:"required"`
	Brand       string `json:"brand"`
	Quantity    string `json:"quantity"`
	Packet      string `json:"packet"`
}

// WarehouseRowResponse is the API shape of a warehouse row.
type WarehouseRowResponse struct {
	ID          string  `json:"id"`
	WhName      string  `json:"wh_name"`
	Manager     string  `json:"manager"`
	Location    string  `json:"location"`
	Capacity    string  `json:"capacity"`
	ProductName string  `json:"product_name"`
	Brand       string  `json:"brand"`
	LcNo        string  `json:"lc_no"`
	WhPkt       float64 `json:"wh_pkt"`
	WhQty       float64 `json:"wh_qty"`
	RecordType  string  `json:"record_type"`
	Version     int     `json:"version"`
}

// ToWarehouseRowResponse maps a warehouse row to its API shape
func ToWarehouseRowResponse(row *stock.WarehouseRow) WarehouseRowResponse {
	return WarehouseRowResponse{
		ID:          row.ID.String(),
		WhName:      row.WhName,
		Manager:     row.Manager,
		Location:    row.Location,
		Capacity:    row.Capacity,
		ProductName: row.ProductName,
		Brand:       row.Brand,
		LcNo:        row.LcNo,
		WhPkt:       row.WhPkt.InexactFloat64(),
		WhQty:       row.WhQty.InexactFloat64(),
		RecordType:  string(row.RecordType),
		Version:     row.Version,
	}
}

// FulfilmentResponse reports how much of one request a plan covers, with the
// packet figures rendered display-style (trailing zeros stripped).
type FulfilmentResponse struct {
	ProductName     string `json:"product_name"`
	Brand           string `json:"brand"`
	PlannedQuantity string `json:"planned_quantity"`
	PlannedPacket   string `json:"planned_packet"`
	ShortQuantity   string `json:"short_quantity"`
	ShortPacket     string `json:"short_packet"`
	Skipped         bool   `json:"skipped"`
	Fulfilled       bool   `json:"fulfilled"`
}

// ToFulfilmentResponse maps a fulfilment to its API shape
func ToFulfilmentResponse(f stock.Fulfilment) FulfilmentResponse {
	return FulfilmentResponse{
		ProductName:     f.Request.ProductName,
		Brand:           f.Request.Brand,
		PlannedQuantity: f.PlannedQuantity.Round(2).String(),
		PlannedPacket:   stock.FormatPacket(f.PlannedPacket),
		ShortQuantity:   f.ShortQuantity.Round(2).String(),
		ShortPacket:     stock.FormatPacket(f.ShortPacket),
		Skipped:         f.Skipped,
		Fulfilled:       f.Fulfilled(),
	}
}
