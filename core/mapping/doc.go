// Package mapping persists the correlation between local catalog entries and
// their remote product/price identifiers.
//
// A MappingRecord is created the first time a local_id is synced and updated
// in place afterwards. Records are never hard-deleted; a record that no longer
// matches a catalog entry is marked inactive instead.
//
// The package holds no business logic. Store is the seam the reconciler and
// validator depend on; GormStore implements it over MySQL or SQLite.
package mapping
