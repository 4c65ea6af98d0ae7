package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunkIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "empty string", content: "", want: true},
		{name: "whitespace only", content: "  \n\t  ", want: true},
		{name: "real content", content: "hello", want: false},
		{name: "content with surrounding whitespace", content: "  hello  ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := &Chunk{Content: tt.content}
			if got := chunk.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadResultChunkCount(t *testing.T) {
	result := &LoadResult{
		Success: true,
		Chunks: []Chunk{
			{Content: "first"},
			{Content: "   "},
			{Content: "second"},
			{Content: ""},
		},
	}

	if got := result.ChunkCount(); got != 2 {
		t.Errorf("ChunkCount() = %d, want 2", got)
	}
}
