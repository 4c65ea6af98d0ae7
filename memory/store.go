package memory

import (
	"context"
)

// Item is a tagged content unit held by the memory store.
type Item struct {
	// Content is the text that gets embedded and searched.
	Content string

	// TenantID is the identity partition the item belongs to.
	TenantID string

	// Metadata carries tags such as source, filename, page, document_type
	// and owner labels. Values are open-ended; loaders contribute their
	// own keys.
	Metadata map[string]any
}

// Store is the memory service consumed by the ingestion engine and the
// conversation pipeline. Implementations must be safe for concurrent use;
// the ingestion engine issues independent writes from multiple workers.
type Store interface {
	// Add writes one tagged item into the tenant's memory space.
	Add(ctx context.Context, item *Item) error

	// Search returns up to limit items relevant to the query within the
	// tenant's memory space. The result shape is a best-effort contract:
	// callers must tolerate nil, a bare item sequence, or a mapping that
	// wraps the sequence under a versioned key (see FormatSearchResults).
	Search(ctx context.Context, query, tenantID string, limit int) (any, error)

	// Close releases resources held by the store.
	Close() error
}
