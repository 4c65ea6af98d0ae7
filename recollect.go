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


package recollect

import (
	"context"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/openai"
	"github.com/poiesic/recollect/chat"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingest"
	"github.com/poiesic/recollect/loader"
	"github.com/poiesic/recollect/memory/badgerstore"
)

// Recollect wires the document loaders, memory store, ingestion engine
// and conversation pipeline over one BadgerDB database.
type Recollect struct {
	backend  *badgerstore.Backend
	store    *badgerstore.Store
	registry *loader.Registry
	engine   *ingest.Engine
	pipeline *chat.Pipeline
	provider ai.Provider
	logger   *slog.Logger
}

// Option configures a Recollect instance.
type Option func(*options)

type options struct {
	aiConfig *ai.Config
	provider ai.Provider
	workers  int
	inMemory bool
}

// WithAIConfig overrides the AI service configuration.
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider, bypassing the OpenAI
// default. Used by tests and embedders with custom transports.
func WithProvider(provider ai.Provider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithIngestWorkers sets the ingestion worker pool width.
func WithIngestWorkers(workers int) Option {
	return func(o *options) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// WithInMemory uses an in-memory database instead of the path.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// Open creates a Recollect instance backed by a BadgerDB database at
// filePath.
func Open(filePath string, opts ...Option) (*Recollect, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		workers:  ingest.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badgerstore.OpenBackend(filePath, o.inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}
	store := badgerstore.New(backend, provider.Embedder())

	engine, err := ingest.NewEngine(store, ingest.WithWorkers(o.workers))
	if err != nil {
		backend.Close()
		provider.Close()
		return nil, err
	}

	pipeline, err := chat.NewPipeline(store, provider.NewChatModel)
	if err != nil {
		engine.Release()
		backend.Close()
		provider.Close()
		return nil, err
	}

	return &Recollect{
		backend:  backend,
		store:    store,
		registry: loader.NewDefaultRegistry(),
		engine:   engine,
		pipeline: pipeline,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the worker pool, the AI provider and the database.
func (r *Recollect) Close() error {
	r.engine.Release()

	if err := r.provider.Close(); err != nil {
		r.logger.Error("error closing AI provider", "err", err)
	}

	if err := r.backend.Close(); err != nil {
		r.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// IngestFile loads a document and writes its chunks into the tenant's
// memory. Loading never returns an error; parse and write failures are
// reported on the outcome.
func (r *Recollect) IngestFile(ctx context.Context, content []byte, filename, tenantID string, owner core.Principal, opts ...loader.LoadOption) *ingest.Outcome {
	result := r.registry.LoadDocument(content, filename, opts...)
	return r.engine.Ingest(ctx, result, tenantID, owner)
}

// Ask runs one conversation turn against the tenant's memory.
func (r *Recollect) Ask(ctx context.Context, query, tenantID string) (string, error) {
	return r.pipeline.Run(ctx, query, tenantID)
}

// AskStream is Ask with incremental delivery of the reply.
func (r *Recollect) AskStream(ctx context.Context, query, tenantID string, fn chat.StreamFunc) (string, error) {
	return r.pipeline.RunStreaming(ctx, query, tenantID, fn)
}

// Formats returns the supported file extensions, sorted.
func (r *Recollect) Formats() []string {
	return r.registry.SupportedExtensions()
}

// Documents summarizes the tenant's ingested files.
func (r *Recollect) Documents(ctx context.Context, tenantID string) ([]badgerstore.DocumentInfo, error) {
	return r.store.ListDocuments(ctx, tenantID)
}

// DeleteDocument removes every chunk of an ingested file from the
// tenant's memory. Returns the number of chunks removed.
func (r *Recollect) DeleteDocument(ctx context.Context, tenantID, filename string) (int, error) {
	return r.store.DeleteByFilename(ctx, tenantID, filename)
}

// Registry exposes the loader registry for callers that register custom
// loaders before ingesting.
func (r *Recollect) Registry() *loader.Registry {
	return r.registry
}
