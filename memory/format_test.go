package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSearchResultsEmptyInputs(t *testing.T) {
	assert.Equal(t, "", FormatSearchResults(nil))
	assert.Equal(t, "", FormatSearchResults([]any{}))
	assert.Equal(t, "", FormatSearchResults(map[string]any{"results": []any{}}))
	assert.Equal(t, "", FormatSearchResults(map[string]any{"unrelated": "key"}))
}

func TestFormatSearchResultsSingleItem(t *testing.T) {
	raw := []any{
		map[string]any{
			"memory": "hello",
			"metadata": map[string]any{
				"filename": "a.pdf",
				"page":     2,
			},
		},
	}

	assert.Equal(t, "[a.pdf | page 2] hello", FormatSearchResults(raw))
}

func TestFormatSearchResultsWrapperShapes(t *testing.T) {
	items := []any{
		map[string]any{"memory": "first hit"},
		map[string]any{"memory": "second hit"},
	}

	bare := FormatSearchResults(items)
	results := FormatSearchResults(map[string]any{"results": items})
	memories := FormatSearchResults(map[string]any{"memories": items})
	data := FormatSearchResults(map[string]any{"data": items})

	// Identical item contents produce identical output regardless of wrapper.
	assert.Equal(t, bare, results)
	assert.Equal(t, bare, memories)
	assert.Equal(t, bare, data)
	assert.Equal(t, "[memory] first hit\n\n[memory] second hit", bare)
}

func TestFormatSearchResultsWrapperPrecedence(t *testing.T) {
	raw := map[string]any{
		"memories": []any{map[string]any{"memory": "from memories"}},
		"results":  []any{map[string]any{"memory": "from results"}},
	}

	// "results" is probed before "memories".
	assert.Equal(t, "[memory] from results", FormatSearchResults(raw))
}

func TestFormatSearchResultsIdempotent(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"memory": "alpha", "score": 0.91},
			map[string]any{"text": "beta"},
		},
	}

	first := FormatSearchResults(raw)
	second := FormatSearchResults(raw)
	assert.Equal(t, first, second)
}

func TestFormatSearchResultsContentFieldPrecedence(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
		want string
	}{
		{
			name: "memory field wins",
			item: map[string]any{"memory": "from memory", "text": "from text"},
			want: "[memory] from memory",
		},
		{
			name: "text fallback",
			item: map[string]any{"text": "from text", "content": "from content"},
			want: "[memory] from text",
		},
		{
			name: "content fallback",
			item: map[string]any{"content": "from content"},
			want: "[memory] from content",
		},
		{
			name: "data fallback",
			item: map[string]any{"data": "from data"},
			want: "[memory] from data",
		},
		{
			name: "nested content probed one level",
			item: map[string]any{"memory": map[string]any{"content": "nested"}},
			want: "[memory] nested",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSearchResults([]any{tt.item}))
		})
	}
}

func TestFormatSearchResultsHeaderFields(t *testing.T) {
	raw := []any{
		map[string]any{
			"memory": "chunk text",
			"score":  0.8765,
			"metadata": map[string]any{
				"filename": "report.pdf",
				"page":     3,
				"source":   "chat",
			},
		},
	}

	assert.Equal(t, "[report.pdf | page 3 | source: chat | score: 0.88] chunk text", FormatSearchResults(raw))
}

func TestFormatSearchResultsDocumentSourceOmitted(t *testing.T) {
	raw := []any{
		map[string]any{
			"memory":   "chunk text",
			"metadata": map[string]any{"filename": "report.pdf", "source": "document"},
		},
	}

	// source=document is the default and is not echoed in headers.
	assert.Equal(t, "[report.pdf] chunk text", FormatSearchResults(raw))
}

func TestFormatSearchResultsNestedMetadataWins(t *testing.T) {
	raw := []any{
		map[string]any{
			"memory":   "chunk text",
			"filename": "top.pdf",
			"page":     9,
			"metadata": map[string]any{"filename": "nested.pdf"},
		},
	}

	// filename comes from nested metadata, page falls through to top level.
	assert.Equal(t, "[nested.pdf | page 9] chunk text", FormatSearchResults(raw))
}

func TestFormatSearchResultsScorePrecedence(t *testing.T) {
	nested := []any{
		map[string]any{
			"memory":   "chunk text",
			"score":    0.11,
			"metadata": map[string]any{"score": 0.92},
		},
	}
	assert.Equal(t, "[score: 0.92] chunk text", FormatSearchResults(nested))

	topOnly := []any{
		map[string]any{"memory": "chunk text", "score": 0.42},
	}
	assert.Equal(t, "[score: 0.42] chunk text", FormatSearchResults(topOnly))
}

func TestFormatSearchResultsTruncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	raw := []any{map[string]any{"memory": long}}

	got := FormatSearchResults(raw, WithMaxItemChars(50))
	assert.Equal(t, genericHeader+" "+strings.Repeat("a", 50)+"…", got)
}

func TestFormatSearchResultsMaxItems(t *testing.T) {
	var items []any
	for i := 0; i < 15; i++ {
		items = append(items, map[string]any{"memory": "item"})
	}

	got := FormatSearchResults(items, WithMaxItems(8))
	assert.Len(t, strings.Split(got, "\n\n"), 8)
}

func TestFormatSearchResultsNonMappingItems(t *testing.T) {
	raw := []any{"bare string hit", map[string]any{"memory": "mapped hit"}}

	got := FormatSearchResults(raw)
	require.Equal(t, "[memory] bare string hit\n\n[memory] mapped hit", got)
}

func TestFormatSearchResultsSkipsEmptyItems(t *testing.T) {
	raw := []any{
		map[string]any{"memory": ""},
		map[string]any{"irrelevant": "field"},
		map[string]any{"memory": "kept"},
		nil,
	}

	assert.Equal(t, "[memory] kept", FormatSearchResults(raw))
}

func TestFormatSearchResultsPreservesOrder(t *testing.T) {
	raw := []any{
		map[string]any{"memory": "one"},
		map[string]any{"memory": "two"},
		map[string]any{"memory": "three"},
	}

	got := FormatSearchResults(raw)
	assert.Equal(t, "[memory] one\n\n[memory] two\n\n[memory] three", got)
}

func TestFormatSearchResultsTypedItemSlice(t *testing.T) {
	raw := []map[string]any{
		{"memory": "typed slice hit"},
	}

	assert.Equal(t, "[memory] typed slice hit", FormatSearchResults(raw))
}
