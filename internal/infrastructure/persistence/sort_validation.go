package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "ASC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "DESC" {
		return "DESC"
	}
	return "ASC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LotSortFields contains allowed sort fields for lots
var LotSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"lc_no":        true,
	"date":         true,
	"port":         true,
	"importer":     true,
	"exporter":     true,
	"product_name": true,
	"brand":        true,
	"truck_no":     true,
	"packet":       true,
	"quantity":     true,
}

// WarehouseRowSortFields contains allowed sort fields for warehouse rows
var WarehouseRowSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"warehouse_name": true,
	"lc_no":          true,
	"product_name":   true,
	"brand":          true,
	"record_type":    true,
	"wh_qty":         true,
	"wh_pkt":         true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"unit":       true,
}
