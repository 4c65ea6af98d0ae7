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


package loader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/recollect/core"
)

// Registry maps lower-cased file extensions to loader factories.
// A Registry is an explicit value constructed once at process start and
// passed by reference to components that need it; there is no ambient
// global registry. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	defaults  Config
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaults sets the sizing applied when a caller omits overrides.
func WithDefaults(cfg Config) RegistryOption {
	return func(r *Registry) {
		r.defaults = cfg
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		defaults:  DefaultLoaderConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry creates a registry with the built-in loaders
// (paginated PDF and tabular Excel) registered.
func NewDefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	r.Register(NewPDFLoader)
	r.Register(NewExcelLoader)
	return r
}

// Register adds a loader factory for every extension the loader supports.
// Later registrations win on extension collisions.
func (r *Registry) Register(factory Factory) {
	// Probe a throwaway instance for its extension set.
	probe := factory(r.defaults)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range probe.SupportedExtensions() {
		r.factories[strings.ToLower(ext)] = factory
	}
}

// Unregister removes the loader for an extension.
// Returns true if a loader was registered for it.
func (r *Registry) Unregister(ext string) bool {
	ext = strings.ToLower(ext)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[ext]; ok {
		delete(r.factories, ext)
		return true
	}
	return false
}

// IsSupported reports whether a loader is registered for the filename's extension.
func (r *Registry) IsSupported(filename string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[core.Extension(filename)]
	return ok
}

// SupportedExtensions returns the registered extensions in sorted order.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.factories))
	for ext := range r.factories {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoadOption overrides chunk sizing for a single load call.
type LoadOption func(*Config)

// WithChunkSize overrides the target chunk size.
func WithChunkSize(size int) LoadOption {
	return func(c *Config) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}

// WithChunkOverlap overrides the window overlap.
func WithChunkOverlap(overlap int) LoadOption {
	return func(c *Config) {
		if overlap >= 0 {
			c.ChunkOverlap = overlap
		}
	}
}

// WithRowsPerChunk overrides the tabular row-group size.
func WithRowsPerChunk(rows int) LoadOption {
	return func(c *Config) {
		if rows > 0 {
			c.RowsPerChunk = rows
		}
	}
}

// LoadDocument selects the loader for the filename's extension and loads the
// content. When no loader matches it returns a failed LoadResult with
// DocumentType unknown — an unsupported type is never a fault.
func (r *Registry) LoadDocument(content []byte, filename string, opts ...LoadOption) *core.LoadResult {
	cfg := r.defaults
	for _, opt := range opts {
		opt(&cfg)
	}

	ext := core.Extension(filename)

	r.mu.RLock()
	factory, ok := r.factories[ext]
	r.mu.RUnlock()

	if !ok {
		return failedResult(filename, core.DocumentTypeUnknown,
			fmt.Errorf("no loader available for extension %q, supported: %v", ext, r.SupportedExtensions()))
	}

	return factory(cfg).Load(content, filename)
}
