package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/memory"
)

// mockStore is a test double for memory.Store.
type mockStore struct {
	mu    sync.Mutex
	items []*memory.Item

	// SearchResult is returned by Search when SearchErr is nil.
	SearchResult any
	SearchErr    error

	searchCalls int
}

func (m *mockStore) Add(ctx context.Context, item *memory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *mockStore) Search(ctx context.Context, query, tenantID string, limit int) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResult, nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) Items() []*memory.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*memory.Item(nil), m.items...)
}

func newTestPipeline(t *testing.T, store *mockStore, model *mock.MockChatModel, opts ...PipelineOption) *Pipeline {
	t.Helper()
	p, err := NewPipeline(store, func() (llms.Model, error) { return model, nil }, opts...)
	require.NoError(t, err)
	return p
}

func systemText(messages []llms.MessageContent) string {
	for _, msg := range messages {
		if msg.Role == llms.ChatMessageTypeSystem {
			var sb strings.Builder
			for _, part := range msg.Parts {
				if text, ok := part.(llms.TextContent); ok {
					sb.WriteString(text.Text)
				}
			}
			return sb.String()
		}
	}
	return ""
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(nil, func() (llms.Model, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(&mockStore{}, nil)
	assert.ErrorIs(t, err, ErrModelRequired)
}

func TestRunValidation(t *testing.T) {
	p := newTestPipeline(t, &mockStore{}, mock.NewMockChatModel("hi"))

	_, err := p.Run(context.Background(), "   ", "alice")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = p.Run(context.Background(), "hello", "")
	assert.ErrorIs(t, err, core.ErrEmptyTenant)
}

func TestRunInjectsRetrievedContext(t *testing.T) {
	store := &mockStore{
		SearchResult: map[string]any{
			"results": []map[string]any{
				{
					"memory":   "cats purr when content",
					"metadata": map[string]any{"filename": "cats.pdf", "page": 2},
				},
			},
		},
	}
	model := mock.NewMockChatModel("they purr")
	p := newTestPipeline(t, store, model)

	reply, err := p.Run(context.Background(), "why do cats purr?", "alice")
	require.NoError(t, err)
	assert.Equal(t, "they purr", reply)

	system := systemText(model.LastMessages())
	assert.Contains(t, system, "Retrieved context:")
	assert.Contains(t, system, "[cats.pdf | page 2] cats purr when content")
}

func TestRunEmptySearchOmitsContextBlock(t *testing.T) {
	store := &mockStore{SearchResult: map[string]any{"results": []any{}}}
	model := mock.NewMockChatModel("no idea")
	p := newTestPipeline(t, store, model)

	_, err := p.Run(context.Background(), "anything?", "alice")
	require.NoError(t, err)

	system := systemText(model.LastMessages())
	assert.NotContains(t, system, "Retrieved context:")
}

func TestRunSearchFailureDegradesToEmptyContext(t *testing.T) {
	store := &mockStore{SearchErr: errors.New("backend down")}
	model := mock.NewMockChatModel("still answering")
	p := newTestPipeline(t, store, model)

	reply, err := p.Run(context.Background(), "hello", "alice")
	require.NoError(t, err)
	assert.Equal(t, "still answering", reply)
	assert.NotContains(t, systemText(model.LastMessages()), "Retrieved context:")
}

func TestRunSingleSystemMessage(t *testing.T) {
	model := mock.NewMockChatModel("ok")
	p := newTestPipeline(t, &mockStore{}, model, WithSystemPrompt("Custom instruction."))

	_, err := p.Run(context.Background(), "hello", "alice")
	require.NoError(t, err)

	messages := model.LastMessages()
	systems := 0
	for _, msg := range messages {
		if msg.Role == llms.ChatMessageTypeSystem {
			systems++
		}
	}
	assert.Equal(t, 1, systems)
	assert.Equal(t, llms.ChatMessageTypeSystem, messages[0].Role)
	assert.Contains(t, systemText(messages), "Custom instruction.")
}

func TestRunPersistsExchange(t *testing.T) {
	store := &mockStore{}
	p := newTestPipeline(t, store, mock.NewMockChatModel("the answer"))

	_, err := p.Run(context.Background(), "the question", "alice")
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 2)

	assert.Equal(t, "the question", items[0].Content)
	assert.Equal(t, "alice", items[0].TenantID)
	assert.Equal(t, "chat", items[0].Metadata["source"])
	assert.Equal(t, "user", items[0].Metadata["role"])

	assert.Equal(t, "the answer", items[1].Content)
	assert.Equal(t, "chat", items[1].Metadata["source"])
	assert.Equal(t, "assistant", items[1].Metadata["role"])
}

func TestRunGenerationFailureSkipsPersistence(t *testing.T) {
	store := &mockStore{}
	model := mock.NewMockChatModel("")
	model.Err = errors.New("model unavailable")
	p := newTestPipeline(t, store, model)

	_, err := p.Run(context.Background(), "hello", "alice")
	require.Error(t, err)
	assert.Empty(t, store.Items())
}

func TestRunStreaming(t *testing.T) {
	store := &mockStore{}
	model := mock.NewMockChatModel("streamed reply")
	p := newTestPipeline(t, store, model)

	var fragments []string
	reply, err := p.RunStreaming(context.Background(), "hello", "alice",
		func(ctx context.Context, fragment []byte) error {
			fragments = append(fragments, string(fragment))
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, "streamed reply", reply)
	assert.Equal(t, "streamed reply", strings.Join(fragments, ""))
	assert.Len(t, store.Items(), 2)
}

func TestModelPoolRecyclesHandles(t *testing.T) {
	constructed := 0
	pool := newModelPool(func() (llms.Model, error) {
		constructed++
		return mock.NewMockChatModel(""), nil
	})

	m1, err := pool.acquire()
	require.NoError(t, err)
	pool.release(m1)

	m2, err := pool.acquire()
	require.NoError(t, err)
	assert.Same(t, m1, m2)
	assert.Equal(t, 1, constructed)

	// A second concurrent acquire constructs a new handle.
	m3, err := pool.acquire()
	require.NoError(t, err)
	assert.NotSame(t, m2, m3)
	assert.Equal(t, 2, constructed)
}
