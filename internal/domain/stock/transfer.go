package stock

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lotline/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransferRequest asks for an amount of one product/brand to move from the
// source warehouse to the destination. Quantity and packet are independent
// channels; either may be zero.
type TransferRequest struct {
	ProductName string
	Brand       string
	Quantity    decimal.Decimal
	Packet      decimal.Decimal
}

// IsNoop reports whether the request carries no positive amount on either
// channel. Such requests are skipped without producing any plan entries.
func (r TransferRequest) IsNoop() bool {
	return !r.Quantity.IsPositive() && !r.Packet.IsPositive()
}

// TransferInput is everything the planner needs: the two warehouses, the
// requests, and the caller's current working set of rows.
type TransferInput struct {
	SourceWarehouse string
	DestWarehouse   string
	Requests        []TransferRequest
	Rows            []WarehouseRow
}

// Deduction records stock taken from one source row.
type Deduction struct {
	RowID    uuid.UUID
	LcNo     string
	Quantity decimal.Decimal
	Packet   decimal.Decimal
}

// Upsert records stock arriving at the destination. RowID is set when an
// existing destination row absorbs the amount; NewRow is set when the
// transfer creates the destination row.
type Upsert struct {
	RowID    *uuid.UUID
	NewRow   *WarehouseRow
	LcNo     string
	Quantity decimal.Decimal
	Packet   decimal.Decimal
}

// Fulfilment reports how much of one request the plan covers.
type Fulfilment struct {
	Request         TransferRequest
	PlannedQuantity decimal.Decimal
	PlannedPacket   decimal.Decimal
	ShortQuantity   decimal.Decimal
	ShortPacket     decimal.Decimal
	Skipped         bool
}

// Fulfilled reports whether the request is fully covered by the plan.
func (f Fulfilment) Fulfilled() bool {
	return f.Skipped || (!f.ShortQuantity.IsPositive() && !f.ShortPacket.IsPositive())
}

// TransferPlan is the computed movement. ID doubles as the idempotency token
// for the apply step, so a retried apply is a safe no-op.
type TransferPlan struct {
	ID              uuid.UUID
	SourceWarehouse string
	DestWarehouse   string
	Deductions      []Deduction
	Upserts         []Upsert
	Fulfilments     []Fulfilment
}

// FullyFulfilled reports whether every request is fully covered.
func (p *TransferPlan) FullyFulfilled() bool {
	for _, f := range p.Fulfilments {
		if !f.Fulfilled() {
			return false
		}
	}
	return true
}

// PlanTransfer computes a lot-preserving movement of on-hand stock from the
// source warehouse to the destination. It never mutates the input rows and
// issues no repository calls; applying the plan is the caller's step.
//
// Per request, candidate source rows are consumed oldest first (creation
// date, then LC number), deducting the quantity and packet channels
// independently until both remaining needs reach zero. Every deduction is
// mirrored by an upsert keyed by (destination, product, brand, lcNo), where
// absent attribution on both sides counts as an equal key, so the total
// on-hand of a (product, brand) pair is conserved and the moved stock keeps
// its lot attribution. A shortfall never fails the planning step; it is
// reported per request in Fulfilments.
func PlanTransfer(in TransferInput) (*TransferPlan, error) {
	if in.SourceWarehouse == "" || in.DestWarehouse == "" {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Source and destination warehouses are required")
	}
	if strings.EqualFold(in.SourceWarehouse, in.DestWarehouse) {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Source and destination warehouses must differ")
	}

	plan := &TransferPlan{
		ID:              uuid.New(),
		SourceWarehouse: in.SourceWarehouse,
		DestWarehouse:   in.DestWarehouse,
		Deductions:      make([]Deduction, 0),
		Upserts:         make([]Upsert, 0),
		Fulfilments:     make([]Fulfilment, 0, len(in.Requests)),
	}

	// Amounts already planned against a row, so several requests in one plan
	// cannot consume the same stock twice.
	consumedQty := make(map[uuid.UUID]decimal.Decimal)
	consumedPkt := make(map[uuid.UUID]decimal.Decimal)

	for _, req := range in.Requests {
		if req.IsNoop() {
			plan.Fulfilments = append(plan.Fulfilments, Fulfilment{Request: req, Skipped: true})
			continue
		}

		candidates := sourceCandidates(in.Rows, in.SourceWarehouse, req)
		remQty := clampZero(req.Quantity)
		remPkt := clampZero(req.Packet)
		plannedQty := decimal.Zero
		plannedPkt := decimal.Zero

		for i := range candidates {
			if !remQty.IsPositive() && !remPkt.IsPositive() {
				break
			}
			row := candidates[i]
			availQty := clampZero(row.WhQty.Sub(consumedQty[row.ID]))
			availPkt := clampZero(row.WhPkt.Sub(consumedPkt[row.ID]))

			dq := decimal.Min(availQty, remQty)
			dp := decimal.Min(availPkt, remPkt)
			if !dq.IsPositive() && !dp.IsPositive() {
				continue
			}

			plan.Deductions = append(plan.Deductions, Deduction{
				RowID:    row.ID,
				LcNo:     row.LcNo,
				Quantity: dq,
				Packet:   dp,
			})
			consumedQty[row.ID] = consumedQty[row.ID].Add(dq)
			consumedPkt[row.ID] = consumedPkt[row.ID].Add(dp)
			remQty = remQty.Sub(dq)
			remPkt = remPkt.Sub(dp)
			plannedQty = plannedQty.Add(dq)
			plannedPkt = plannedPkt.Add(dp)

			upsertDestination(plan, in, req, row, dq, dp)
		}

		plan.Fulfilments = append(plan.Fulfilments, Fulfilment{
			Request:         req,
			PlannedQuantity: plannedQty,
			PlannedPacket:   plannedPkt,
			ShortQuantity:   remQty,
			ShortPacket:     remPkt,
		})
	}

	return plan, nil
}

// sourceCandidates selects the source rows holding stock of the requested
// product/brand, oldest first. The explicit ordering makes greedy consumption
// reproducible regardless of the order the repository returned rows in.
func sourceCandidates(rows []WarehouseRow, source string, req TransferRequest) []*WarehouseRow {
	candidates := make([]*WarehouseRow, 0)
	for i := range rows {
		row := &rows[i]
		if strings.EqualFold(row.WhName, source) && row.Matches(req.ProductName, req.Brand) && row.HasStock() {
			candidates = append(candidates, row)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		if candidates[i].LcNo != candidates[j].LcNo {
			return candidates[i].LcNo < candidates[j].LcNo
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return candidates
}

// upsertDestination merges the deducted amount into an existing destination
// row with the same (product, brand, lcNo), a pending created row from this
// plan, or a brand-new row inheriting the destination's declared profile
// (falling back to the source row's when the destination has never declared
// one).
func upsertDestination(plan *TransferPlan, in TransferInput, req TransferRequest, source *WarehouseRow, qty, pkt decimal.Decimal) {
	for i := range in.Rows {
		row := &in.Rows[i]
		if strings.EqualFold(row.WhName, in.DestWarehouse) && row.Matches(req.ProductName, req.Brand) && row.SameLot(source.LcNo) {
			for j := range plan.Upserts {
				if plan.Upserts[j].RowID != nil && *plan.Upserts[j].RowID == row.ID {
					plan.Upserts[j].Quantity = plan.Upserts[j].Quantity.Add(qty)
					plan.Upserts[j].Packet = plan.Upserts[j].Packet.Add(pkt)
					return
				}
			}
			id := row.ID
			plan.Upserts = append(plan.Upserts, Upsert{RowID: &id, LcNo: source.LcNo, Quantity: qty, Packet: pkt})
			return
		}
	}

	for j := range plan.Upserts {
		pending := plan.Upserts[j].NewRow
		if pending != nil && pending.Matches(req.ProductName, req.Brand) && pending.SameLot(source.LcNo) {
			pending.WhQty = pending.WhQty.Add(qty)
			pending.WhPkt = pending.WhPkt.Add(pkt)
			plan.Upserts[j].Quantity = plan.Upserts[j].Quantity.Add(qty)
			plan.Upserts[j].Packet = plan.Upserts[j].Packet.Add(pkt)
			return
		}
	}

	manager, location, capacity := destProfile(in.Rows, in.DestWarehouse, source)
	row := &WarehouseRow{
		VersionedEntity: shared.NewVersionedEntity(),
		WhName:          in.DestWarehouse,
		Manager:         manager,
		Location:        location,
		Capacity:        capacity,
		ProductName:     source.ProductName,
		Brand:           source.Brand,
		LcNo:            source.LcNo,
		WhQty:           qty,
		WhPkt:           pkt,
		RecordType:      RecordTypeWarehouse,
	}
	plan.Upserts = append(plan.Upserts, Upsert{NewRow: row, LcNo: source.LcNo, Quantity: qty, Packet: pkt})
}

// destProfile returns the destination warehouse's declared manager, location
// and capacity, taking each field from the source row when the destination
// has no value for it.
func destProfile(rows []WarehouseRow, dest string, source *WarehouseRow) (manager, location, capacity string) {
	for i := range rows {
		row := &rows[i]
		if !strings.EqualFold(row.WhName, dest) {
			continue
		}
		if manager == "" {
			manager = row.Manager
		}
		if location == "" {
			location = row.Location
		}
		if capacity == "" {
			capacity = row.Capacity
		}
	}
	if manager == "" {
		manager = source.Manager
	}
	if location == "" {
		location = source.Location
	}
	if capacity == "" {
		capacity = source.Capacity
	}
	return manager, location, capacity
}
