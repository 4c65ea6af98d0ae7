package ingest

// Status classifies how an ingestion batch settled.
type Status string

const (
	// StatusSuccess means every scheduled chunk was written.
	StatusSuccess Status = "success"
	// StatusPartial means some chunks were written and some failed.
	StatusPartial Status = "partial"
	// StatusError means nothing was written.
	StatusError Status = "error"
)

// ChunkError records one chunk that failed to ingest.
type ChunkError struct {
	Page   string
	Reason string
}

// Outcome is the settled result of one ingestion batch.
// Ingested+Failed always equals ChunksTotal.
type Outcome struct {
	Status      Status
	Filename    string
	ChunksTotal int
	Ingested    int
	Failed      int
	Reason      string
	Errors      []ChunkError
	Metadata    map[string]any
}
