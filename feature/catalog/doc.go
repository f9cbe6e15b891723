// Package catalog implements the catalog collaborator: the item list a
// counting device resolves scanned codes against.
//
// The core piece is the Identifier Resolver (Resolve), which maps a raw
// scanned or typed code to an item using a fixed priority of identifier
// fields: upc, ean, system_id, custom_sku, manufact_sku. Matching is trimmed
// string equality; no fuzzy matching is attempted, and an unmatched code is
// reported as "no match" rather than an error.
//
// Around the resolver sit thin request/response wrappers: list/upsert
// endpoints and a CSV bulk importer for seeding a device's catalog before a
// count.
//
// # HTTP Endpoints
//
//   - GET  /catalog                : list all items
//   - POST /catalog                : upsert one item (by system_id)
//   - POST /catalog/import        : bulk import from CSV
//   - GET  /catalog/resolve/:code : resolve a scanned code
package catalog
