package loader

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/recollect/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// PDFLoader loads paginated text documents.
//
// Text is extracted per page, then each page is split into overlapping
// windows of the configured chunk size. Every chunk keeps the 1-indexed
// page it came from.
type PDFLoader struct {
	cfg Config
}

// NewPDFLoader creates a PDF loader with the given sizing.
func NewPDFLoader(cfg Config) Loader {
	return &PDFLoader{cfg: cfg}
}

// DocumentType returns the PDF document type.
func (l *PDFLoader) DocumentType() core.DocumentType {
	return core.DocumentTypePDF
}

// SupportedExtensions returns PDF files only.
func (l *PDFLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Validate checks that the content is a parseable PDF with at least one page.
func (l *PDFLoader) Validate(content []byte, filename string) error {
	if err := core.ValidateUpload(content, filename, l.SupportedExtensions()); err != nil {
		return err
	}

	_, totalPages, err := extractPages(content)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedDocument, err)
	}
	if totalPages == 0 {
		return fmt.Errorf("%w: document has no pages", core.ErrMalformedDocument)
	}
	return nil
}

// Load parses the PDF into page-tracked chunks.
func (l *PDFLoader) Load(content []byte, filename string) *core.LoadResult {
	if err := l.Validate(content, filename); err != nil {
		return failedResult(filename, l.DocumentType(), err)
	}

	pages, totalPages, err := extractPages(content)
	if err != nil {
		return failedResult(filename, l.DocumentType(), fmt.Errorf("failed to read pdf: %w", err))
	}

	chunks, rawCount, err := splitPages(pages, filename, l.cfg.ChunkSize, l.cfg.ChunkOverlap)
	if err != nil {
		return failedResult(filename, l.DocumentType(), fmt.Errorf("failed to split pdf text: %w", err))
	}

	return &core.LoadResult{
		Success:      true,
		Chunks:       chunks,
		Filename:     filename,
		DocumentType: l.DocumentType(),
		TotalPages:   totalPages,
		Metadata: map[string]any{
			"chunk_size":      l.cfg.ChunkSize,
			"chunk_overlap":   l.cfg.ChunkOverlap,
			"raw_chunk_count": rawCount,
		},
	}
}

// pageText is the extracted text of a single page.
type pageText struct {
	number int // 1-indexed
	text   string
}

// extractPages pulls the plain text out of every page.
// The pdf package panics on some malformed inputs, so the whole read is
// wrapped in a recover that converts panics into parse errors.
func extractPages(content []byte) (pages []pageText, totalPages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, totalPages = nil, 0
			err = fmt.Errorf("invalid pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, 0, fmt.Errorf("invalid pdf: %w", err)
	}

	totalPages = reader.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, pageText{number: i, text: text})
	}

	return pages, totalPages, nil
}

// splitPages windows each page's text independently so every chunk has an
// unambiguous originating page. Whitespace-only windows are dropped.
// Returns the chunks and the raw window count before dropping.
func splitPages(pages []pageText, filename string, chunkSize, chunkOverlap int) ([]core.Chunk, int, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []core.Chunk
	rawCount := 0
	for _, page := range pages {
		windows, err := splitter.SplitText(page.text)
		if err != nil {
			return nil, 0, err
		}
		rawCount += len(windows)

		for _, window := range windows {
			content := strings.TrimSpace(window)
			if content == "" {
				continue
			}
			chunks = append(chunks, core.Chunk{
				Content: content,
				Page:    strconv.Itoa(page.number),
				Metadata: map[string]any{
					"source": filename,
					"page":   page.number,
				},
			})
		}
	}

	return chunks, rawCount, nil
}
