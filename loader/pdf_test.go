package loader

import (
	"strings"
	"testing"

	"github.com/poiesic/recollect/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFLoaderValidate(t *testing.T) {
	l := NewPDFLoader(DefaultLoaderConfig())

	t.Run("empty content", func(t *testing.T) {
		err := l.Validate(nil, "a.pdf")
		assert.ErrorIs(t, err, core.ErrEmptyFile)
	})

	t.Run("wrong extension", func(t *testing.T) {
		err := l.Validate([]byte("%PDF-1.4"), "a.txt")
		assert.ErrorIs(t, err, core.ErrUnsupportedExtension)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		err := l.Validate([]byte("this is definitely not a pdf"), "a.pdf")
		assert.ErrorIs(t, err, core.ErrMalformedDocument)
	})
}

func TestPDFLoaderLoadInvalid(t *testing.T) {
	l := NewPDFLoader(DefaultLoaderConfig())

	result := l.Load([]byte("not a pdf"), "broken.pdf")
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, core.DocumentTypePDF, result.DocumentType)
	assert.NotEmpty(t, result.Err)
	assert.Empty(t, result.Chunks)
}

func TestSplitPagesOnePerPage(t *testing.T) {
	// Three pages, each well under the chunk budget, become exactly one
	// chunk per page with 1-indexed page labels.
	pages := []pageText{
		{number: 1, text: "First page content."},
		{number: 2, text: "Second page content."},
		{number: 3, text: "Third page content."},
	}

	chunks, rawCount, err := splitPages(pages, "doc.pdf", 2000, 200)
	require.NoError(t, err)
	assert.Equal(t, 3, rawCount)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, pages[i].text, chunk.Content)
		assert.Equal(t, []string{"1", "2", "3"}[i], chunk.Page)
		assert.Equal(t, "doc.pdf", chunk.Metadata["source"])
		assert.Equal(t, i+1, chunk.Metadata["page"])
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
	}
}

func TestSplitPagesOversizePage(t *testing.T) {
	// One long page splits into multiple overlapping windows, all
	// attributed to the same page.
	long := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	pages := []pageText{{number: 1, text: long}}

	chunks, rawCount, err := splitPages(pages, "doc.pdf", 500, 50)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	assert.GreaterOrEqual(t, rawCount, len(chunks))

	for _, chunk := range chunks {
		assert.Equal(t, "1", chunk.Page)
		assert.Equal(t, 1, chunk.Metadata["page"])
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
	}
}

func TestSplitPagesDropsWhitespacePages(t *testing.T) {
	pages := []pageText{
		{number: 1, text: "real content"},
		{number: 2, text: "   \n\t  "},
	}

	chunks, _, err := splitPages(pages, "doc.pdf", 2000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "1", chunks[0].Page)
}

func TestSplitPagesEmptyInput(t *testing.T) {
	chunks, rawCount, err := splitPages(nil, "doc.pdf", 2000, 200)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Zero(t, rawCount)
}
