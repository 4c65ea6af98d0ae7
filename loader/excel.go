package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/poiesic/recollect/core"
	"github.com/xuri/excelize/v2"
)

// headerRule separates the column header from data rows inside a chunk.
const headerRule = "--------------------------------------------------"

// ExcelLoader loads tabular spreadsheet workbooks.
//
// Each sheet is partitioned into row-groups of a fixed row count; every
// group is serialized as "column: value" tokens joined by " | ". Groups
// whose serialization exceeds the chunk-size budget are split further on a
// running-length basis, never breaking a row across two chunks unless a
// single row alone exceeds the budget (in which case the row stands alone).
type ExcelLoader struct {
	cfg Config
}

// NewExcelLoader creates an Excel loader with the given sizing.
func NewExcelLoader(cfg Config) Loader {
	return &ExcelLoader{cfg: cfg}
}

// DocumentType returns the Excel document type.
func (l *ExcelLoader) DocumentType() core.DocumentType {
	return core.DocumentTypeExcel
}

// SupportedExtensions returns the OOXML spreadsheet extensions.
func (l *ExcelLoader) SupportedExtensions() []string {
	return []string{".xlsx", ".xlsm"}
}

// Validate checks that the content is a parseable workbook with at least
// one sheet containing data rows.
func (l *ExcelLoader) Validate(content []byte, filename string) error {
	if err := core.ValidateUpload(content, filename, l.SupportedExtensions()); err != nil {
		return err
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("%w: invalid workbook: %v", core.ErrMalformedDocument, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%w: workbook has no sheets", core.ErrMalformedDocument)
	}

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("%w: failed to read sheet %q: %v", core.ErrMalformedDocument, sheet, err)
		}
		// First row is the header; data starts on row two.
		if len(rows) > 1 {
			return nil
		}
	}
	return fmt.Errorf("%w: workbook has no data in any sheet", core.ErrMalformedDocument)
}

// Load parses the workbook into row-group chunks.
func (l *ExcelLoader) Load(content []byte, filename string) *core.LoadResult {
	if err := l.Validate(content, filename); err != nil {
		return failedResult(filename, l.DocumentType(), err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return failedResult(filename, l.DocumentType(), fmt.Errorf("failed to parse workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()

	var chunks []core.Chunk
	sheetInfo := make(map[string]any, len(sheets))

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return failedResult(filename, l.DocumentType(), fmt.Errorf("failed to read sheet %q: %w", sheet, err))
		}

		var headers []string
		var data [][]string
		if len(rows) > 0 {
			headers = rows[0]
			data = rows[1:]
		}

		// Empty sheets are skipped but still reported here.
		sheetInfo[sheet] = map[string]any{
			"rows":         len(data),
			"columns":      len(headers),
			"column_names": headers,
		}

		if len(data) == 0 {
			continue
		}

		chunks = append(chunks, l.chunkSheet(headers, data, sheet, filename)...)
	}

	return &core.LoadResult{
		Success:      true,
		Chunks:       chunks,
		Filename:     filename,
		DocumentType: l.DocumentType(),
		TotalPages:   len(sheets),
		Metadata: map[string]any{
			"sheets":          sheetInfo,
			"sheet_names":     sheets,
			"rows_per_chunk":  l.cfg.RowsPerChunk,
			"include_headers": l.cfg.IncludeHeaders,
		},
	}
}

// chunkSheet partitions a sheet's data rows into row-groups and serializes
// each group, splitting oversize groups without breaking rows.
func (l *ExcelLoader) chunkSheet(headers []string, data [][]string, sheet, filename string) []core.Chunk {
	rowsPerChunk := l.cfg.RowsPerChunk
	if rowsPerChunk < 1 {
		rowsPerChunk = DefaultRowsPerChunk
	}

	var chunks []core.Chunk
	for start := 0; start < len(data); start += rowsPerChunk {
		end := min(start+rowsPerChunk, len(data))
		group := data[start:end]

		meta := func() map[string]any {
			return map[string]any{
				"sheet":     sheet,
				"row_start": start + 1,
				"row_end":   end,
				"source":    filename,
			}
		}

		lines := make([]string, 0, len(group)+2)
		if l.cfg.IncludeHeaders && len(headers) > 0 {
			lines = append(lines, "Columns: "+strings.Join(headers, " | "))
			lines = append(lines, headerRule)
		}
		for _, row := range group {
			lines = append(lines, serializeRow(headers, row))
		}

		content := strings.Join(lines, "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}

		if len(content) <= l.cfg.ChunkSize {
			chunks = append(chunks, core.Chunk{Content: content, Page: sheet, Metadata: meta()})
			continue
		}

		// Group is over budget: split on running length, flushing before a
		// line would overflow. A single oversize line stands alone.
		var current []string
		currentSize := 0
		for _, line := range lines {
			lineSize := len(line) + 1 // +1 for newline
			if currentSize+lineSize > l.cfg.ChunkSize && len(current) > 0 {
				chunks = append(chunks, core.Chunk{Content: strings.Join(current, "\n"), Page: sheet, Metadata: meta()})
				current = nil
				currentSize = 0
			}
			current = append(current, line)
			currentSize += lineSize
		}
		if len(current) > 0 {
			chunks = append(chunks, core.Chunk{Content: strings.Join(current, "\n"), Page: sheet, Metadata: meta()})
		}
	}

	return chunks
}

// serializeRow renders one data row as "column: value" tokens.
// Ragged rows are padded; cells beyond the header width keep a positional name.
func serializeRow(headers []string, row []string) string {
	width := max(len(headers), len(row))
	parts := make([]string, 0, width)
	for i := 0; i < width; i++ {
		name := fmt.Sprintf("col_%d", i+1)
		if i < len(headers) && headers[i] != "" {
			name = headers[i]
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, " | ")
}
