// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/memory"
	"github.com/tmc/langchaingo/llms"
)

// DefaultSearchLimit is how many memory items retrieval asks the store for.
const DefaultSearchLimit = 10

// defaultSystemPrompt is the base behavioral instruction. Retrieved
// context is appended to it per invocation, never sent as a separate
// message.
const defaultSystemPrompt = "You are a helpful assistant that answers questions " +
	"using the user's ingested documents. Ground your answers in the retrieved " +
	"context below when it is relevant. If the context does not contain the " +
	"answer, say so rather than guessing."

// StreamFunc receives incremental response fragments during a streaming
// run. Returning an error aborts the generation.
type StreamFunc func(ctx context.Context, fragment []byte) error

// Pipeline runs the two-stage conversation flow: retrieve memory context
// for the latest user query, then generate a grounded reply.
//
// Each invocation holds one chat model handle for its full duration, so
// concurrent Run calls never share a handle.
type Pipeline struct {
	store       memory.Store
	models      *modelPool
	logger      *slog.Logger
	system      string
	searchLimit int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSystemPrompt overrides the base system instruction.
func WithSystemPrompt(prompt string) PipelineOption {
	return func(p *Pipeline) {
		if strings.TrimSpace(prompt) != "" {
			p.system = prompt
		}
	}
}

// WithSearchLimit overrides how many items retrieval requests.
func WithSearchLimit(limit int) PipelineOption {
	return func(p *Pipeline) {
		if limit > 0 {
			p.searchLimit = limit
		}
	}
}

// newChatModelFunc constructs chat model handles for the pipeline's pool.
// It matches ai.Provider.NewChatModel.
type newChatModelFunc func() (llms.Model, error)

// NewPipeline creates a conversation pipeline over the given store.
func NewPipeline(store memory.Store, newModel newChatModelFunc, opts ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if newModel == nil {
		return nil, ErrModelRequired
	}

	p := &Pipeline{
		store:       store,
		models:      newModelPool(newModel),
		logger:      slog.Default(),
		system:      defaultSystemPrompt,
		searchLimit: DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes one conversation turn and returns the reply.
// The exchange is written back to the tenant's memory after a successful
// generation; persistence failures are logged, not surfaced.
func (p *Pipeline) Run(ctx context.Context, query, tenantID string) (string, error) {
	return p.run(ctx, query, tenantID, nil)
}

// RunStreaming is Run with incremental delivery: fragments are forwarded
// to fn as they arrive and the assembled reply is returned at the end.
func (p *Pipeline) RunStreaming(ctx context.Context, query, tenantID string, fn StreamFunc) (string, error) {
	return p.run(ctx, query, tenantID, fn)
}

func (p *Pipeline) run(ctx context.Context, query, tenantID string, fn StreamFunc) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	if err := core.ValidateTenant(tenantID); err != nil {
		return "", err
	}

	model, err := p.models.acquire()
	if err != nil {
		return "", err
	}
	defer p.models.release(model)

	state := &State{
		TenantID: tenantID,
		Messages: []Message{{Role: RoleUser, Content: query}},
	}

	p.retrieveContext(ctx, state)

	reply, err := p.generate(ctx, model, state, fn)
	if err != nil {
		return "", err
	}

	p.persistExchange(ctx, state.TenantID, query, reply)
	return reply, nil
}

// retrieveContext searches the tenant's memory for the latest user query
// and attaches the formatted results to the state. Retrieval is advisory:
// any failure degrades to an empty context and a warning.
func (p *Pipeline) retrieveContext(ctx context.Context, state *State) {
	query := state.lastUserQuery()
	if strings.TrimSpace(query) == "" || strings.TrimSpace(state.TenantID) == "" {
		state.MemoryContext = ""
		return
	}

	raw, err := p.store.Search(ctx, query, state.TenantID, p.searchLimit)
	if err != nil {
		p.logger.Warn("memory search failed, continuing without context",
			"tenant", state.TenantID, "err", err)
		state.MemoryContext = ""
		return
	}

	state.MemoryContext = memory.FormatSearchResults(raw)
}

// generate sends the conversation to the model and appends the reply to
// the state. The system instruction always occupies the leading message:
// an existing leading system message is replaced, never duplicated.
func (p *Pipeline) generate(ctx context.Context, model llms.Model, state *State, fn StreamFunc) (string, error) {
	system := p.system
	if state.MemoryContext != "" {
		system += "\n\nRetrieved context:\n" + state.MemoryContext
	}

	messages := state.Messages
	if len(messages) > 0 && messages[0].Role == RoleSystem {
		messages = messages[1:]
	}

	content := make([]llms.MessageContent, 0, len(messages)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, system))
	for _, msg := range messages {
		content = append(content, llms.TextParts(toChatMessageType(msg.Role), msg.Content))
	}

	var callOpts []llms.CallOption
	if fn != nil {
		callOpts = append(callOpts, llms.WithStreamingFunc(fn))
	}

	response, err := model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", ErrNoResponse
	}

	reply := response.Choices[0].Content
	state.Messages = append(state.Messages, Message{Role: RoleAssistant, Content: reply})
	return reply, nil
}

// persistExchange writes the user query and assistant reply back into
// the tenant's memory so later conversations can retrieve them.
func (p *Pipeline) persistExchange(ctx context.Context, tenantID, query, reply string) {
	for _, msg := range []Message{
		{Role: RoleUser, Content: query},
		{Role: RoleAssistant, Content: reply},
	} {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		err := p.store.Add(ctx, &memory.Item{
			Content:  msg.Content,
			TenantID: tenantID,
			Metadata: map[string]any{
				"source": "chat",
				"role":   string(msg.Role),
			},
		})
		if err != nil {
			p.logger.Warn("failed to persist chat exchange",
				"tenant", tenantID, "role", msg.Role, "err", err)
		}
	}
}

func toChatMessageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
