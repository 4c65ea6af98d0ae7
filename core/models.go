package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored memory items.
// It is generated using content-based hashing so that identical content
// within a tenant maps to the same item.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentType identifies the kind of document a loader produced.
type DocumentType string

const (
	// DocumentTypePDF is a paginated text document.
	DocumentTypePDF DocumentType = "pdf"
	// DocumentTypeExcel is a tabular spreadsheet workbook.
	DocumentTypeExcel DocumentType = "excel"
	// DocumentTypeUnknown is reported when no loader matches a file.
	DocumentTypeUnknown DocumentType = "unknown"
)

// Chunk is the smallest unit of ingested document content.
// Page carries locality as a label: paginated loaders write 1-indexed
// decimal page numbers, tabular loaders write the sheet name.
// Chunks are immutable after creation.
type Chunk struct {
	Content  string
	Page     string
	Metadata map[string]any
}

// IsEmpty reports whether the chunk has no meaningful content.
// Empty chunks are never persisted but do not count as ingestion failures.
func (c *Chunk) IsEmpty() bool {
	return strings.TrimSpace(c.Content) == ""
}

// LoadResult is the terminal outcome of a single load call.
// A failed parse produces Success=false with Err set; loading is never
// fatal to the caller.
type LoadResult struct {
	Success      bool
	Chunks       []Chunk
	Filename     string
	DocumentType DocumentType
	TotalPages   int
	Err          string
	Metadata     map[string]any
}

// ChunkCount returns the number of non-empty chunks.
func (r *LoadResult) ChunkCount() int {
	count := 0
	for i := range r.Chunks {
		if !r.Chunks[i].IsEmpty() {
			count++
		}
	}
	return count
}

// Principal labels the owner of ingested content.
type Principal struct {
	ID       string
	Username string
}
