// Package badgerstore implements memory.Store on BadgerDB.
//
// Each item is embedded on write and persisted as a JSON record under a
// tenant-scoped key, so one prefix iteration covers exactly one tenant.
// Search is a brute-force cosine scan over the tenant's records; vectors
// from the embedding service are normalized, so the dot product is the
// cosine similarity. This trades scan cost for zero index maintenance,
// which is the right trade at single-tenant document-collection scale.
package badgerstore
