package loader

import (
	"github.com/poiesic/recollect/core"
)

// Default chunk sizing. Larger chunks mean fewer vectors, which speeds up
// both ingestion and search on big documents.
const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
	DefaultRowsPerChunk = 50
)

// Loader turns raw document bytes into an ordered sequence of chunks
// plus document-level metadata. Implementations exist per document family
// (paginated text, tabular) and are dispatched through a Registry.
type Loader interface {
	// DocumentType identifies the document family this loader produces.
	DocumentType() core.DocumentType

	// SupportedExtensions returns the lower-cased file extensions
	// (including the leading dot) this loader accepts.
	SupportedExtensions() []string

	// Validate checks that the content can be loaded: it rejects empty
	// input, unsupported extensions, and content that fails to parse as
	// the expected structure. A nil return means Load will not fail on
	// structural grounds.
	Validate(content []byte, filename string) error

	// Load parses the content into chunks. It always validates first and
	// returns a failed LoadResult (never an error or panic) on invalid
	// input — loading is never fatal to the caller.
	Load(content []byte, filename string) *core.LoadResult
}

// Config holds chunk sizing for loaders.
type Config struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive windows in characters.
	// Only meaningful for paginated text.
	ChunkOverlap int

	// RowsPerChunk is the row-group size for tabular documents.
	RowsPerChunk int

	// IncludeHeaders repeats the column header line in every tabular chunk.
	IncludeHeaders bool
}

// DefaultLoaderConfig returns the default chunk sizing.
func DefaultLoaderConfig() Config {
	return Config{
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		RowsPerChunk:   DefaultRowsPerChunk,
		IncludeHeaders: true,
	}
}

// Factory constructs a Loader with the given sizing.
// Registering a Factory (rather than a Loader instance) lets the registry
// apply per-call size overrides without mutating shared state.
type Factory func(cfg Config) Loader

// failedResult builds a failed LoadResult in one place so every loader
// reports parse problems the same way.
func failedResult(filename string, docType core.DocumentType, err error) *core.LoadResult {
	return &core.LoadResult{
		Success:      false,
		Chunks:       nil,
		Filename:     filename,
		DocumentType: docType,
		Err:          err.Error(),
	}
}
