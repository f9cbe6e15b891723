package catalog

import (
	"strings"

	"coop-inventory/feature/catalog/models"
)

// identifierFields lists the item identifier accessors in match priority
// order. A UPC hit on a later item always beats a system_id hit on an
// earlier one.
var identifierFields = []func(*models.Item) string{
	func(i *models.Item) string { return i.UPC },
	func(i *models.Item) string { return i.EAN },
	func(i *models.Item) string { return i.SystemID },
	func(i *models.Item) string { return i.CustomSKU },
	func(i *models.Item) string { return i.ManufactSKU },
}

// Resolve maps a raw scanned or typed code to the first catalog item whose
// identifier matches, scanning identifier fields in fixed priority order:
// upc, ean, system_id, custom_sku, manufact_sku.
//
// Matching is trimmed string equality only. Empty fields never match, so a
// blank scan cannot spuriously resolve to an item with a blank UPC.
// Returns nil when nothing matches; an unmatched code is not an error, and
// the caller decides whether to treat it as a new catalog candidate.
func Resolve(code string, items []models.Item) *models.Item {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	for _, field := range identifierFields {
		for i := range items {
			if strings.TrimSpace(field(&items[i])) == code {
				return &items[i]
			}
		}
	}
	return nil
}
