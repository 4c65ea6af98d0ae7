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


package mock

import (
	"github.com/poiesic/recollect/ai"
	"github.com/tmc/langchaingo/llms"
)

// MockProvider is a test double for ai.Provider.
// It aggregates a mock embedder and hands out mock chat models.
type MockProvider struct {
	embedder *MockEmbedder

	// NewChatModelFunc is called by NewChatModel if set.
	// If nil, every call returns a fresh MockChatModel with the default reply.
	NewChatModelFunc func() (llms.Model, error)
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbedder() to access the concrete type for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
	}
}

// NewMockProviderWithEmbedder creates a mock provider with a custom mock embedder.
func NewMockProviderWithEmbedder(embedder *MockEmbedder) *MockProvider {
	return &MockProvider{
		embedder: embedder,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// NewChatModel returns a fresh mock chat model, or delegates to
// NewChatModelFunc when set.
func (p *MockProvider) NewChatModel() (llms.Model, error) {
	if p.NewChatModelFunc != nil {
		return p.NewChatModelFunc()
	}
	return NewMockChatModel(""), nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}
