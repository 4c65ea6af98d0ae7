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


package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/memory"
)

// DefaultMinSimilarity is the cosine similarity floor for search hits.
// Vectors from the embedding service are normalized, so the dot product
// is the cosine similarity.
const DefaultMinSimilarity = 0.25

// record is the persisted form of a memory item. Values are JSON so the
// open-ended metadata map round-trips without a fixed schema.
type record struct {
	ID         core.ID        `json:"id"`
	Content    string         `json:"content"`
	TenantID   string         `json:"tenant_id"`
	Vector     []float32      `json:"vector"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	InsertedAt time.Time      `json:"inserted_at"`
}

// DocumentInfo summarizes the stored chunks of one ingested file.
type DocumentInfo struct {
	Filename     string
	DocumentType string
	Chunks       int
}

// Store is a BadgerDB-backed memory.Store. Items are embedded on write
// and searched by brute-force cosine scan over the tenant's key prefix.
type Store struct {
	backend       *Backend
	embedder      ai.Embedder
	logger        *slog.Logger
	minSimilarity float32
	ownsBackend   bool
}

var _ memory.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinSimilarity overrides the cosine similarity floor for searches.
func WithMinSimilarity(min float32) StoreOption {
	return func(s *Store) {
		s.minSimilarity = min
	}
}

// New creates a Store over an existing backend. The caller retains
// ownership of the backend; Close does not close it.
func New(backend *Backend, embedder ai.Embedder, opts ...StoreOption) *Store {
	s := &Store{
		backend:       backend,
		embedder:      embedder,
		logger:        slog.Default(),
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a Store over a new BadgerDB database at path. The store
// owns the backend and closes it on Close.
func Open(path string, embedder ai.Embedder, opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	s := New(backend, embedder, opts...)
	s.ownsBackend = true
	return s, nil
}

// Close releases the store. The underlying database is closed only when
// the store opened it.
func (s *Store) Close() error {
	if s.ownsBackend {
		return s.backend.Close()
	}
	return nil
}

// Add embeds and persists one item. The item's ID is derived from its
// tenant and content, so re-ingesting identical content overwrites the
// existing record instead of duplicating it.
func (s *Store) Add(ctx context.Context, item *memory.Item) error {
	if item == nil {
		return memory.ErrNilItem
	}
	if err := core.ValidateTenant(item.TenantID); err != nil {
		return err
	}
	if strings.TrimSpace(item.Content) == "" {
		return core.ErrEmptyContent
	}
	if s.backend.IsClosed() {
		return memory.ErrStoreClosed
	}

	vector, err := s.embedder.EmbedText(ctx, item.Content)
	if err != nil {
		return fmt.Errorf("embedding content: %w", err)
	}

	rec := record{
		ID:         core.IDFromContent(item.TenantID + "\x00" + item.Content),
		Content:    item.Content,
		TenantID:   item.TenantID,
		Vector:     vector,
		Metadata:   item.Metadata,
		InsertedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeItemKey(rec.TenantID, rec.ID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Search embeds the query and scans the tenant's items for cosine
// similarity at or above the store's floor. The response is a mapping
// with a "results" sequence of items carrying "memory", "score" and
// "metadata" fields, ordered by score descending.
func (s *Store) Search(ctx context.Context, query, tenantID string, limit int) (any, error) {
	if err := core.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, memory.ErrStoreClosed
	}
	if limit <= 0 {
		limit = memory.DefaultMaxItems
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type hit struct {
		rec   record
		score float32
	}

	var hits []hit
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTenantPrefix(tenantID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec record
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			if len(rec.Vector) == 0 {
				continue
			}

			score := dotProduct(queryVector, rec.Vector)
			if score >= s.minSimilarity {
				hits = append(hits, hit{rec: rec, score: score})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(hits, func(a, b hit) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		return 0
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	items := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		items = append(items, map[string]any{
			"memory":   h.rec.Content,
			"score":    float64(h.score),
			"metadata": h.rec.Metadata,
		})
	}

	return map[string]any{"results": items}, nil
}

// DeleteByFilename removes every item of the tenant whose metadata names
// the given source filename. Returns the number of items removed.
func (s *Store) DeleteByFilename(ctx context.Context, tenantID, filename string) (int, error) {
	if err := core.ValidateTenant(tenantID); err != nil {
		return 0, err
	}
	if s.backend.IsClosed() {
		return 0, memory.ErrStoreClosed
	}

	deleted := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTenantPrefix(tenantID)
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec record
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				iter.Close()
				return err
			}
			if name, _ := rec.Metadata["filename"].(string); name == filename {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// ListDocuments summarizes the tenant's ingested files by chunk count.
// Items without a filename tag (chat exchanges) are not listed.
func (s *Store) ListDocuments(ctx context.Context, tenantID string) ([]DocumentInfo, error) {
	if err := core.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, memory.ErrStoreClosed
	}

	byName := make(map[string]*DocumentInfo)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTenantPrefix(tenantID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rec record
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}

			name, _ := rec.Metadata["filename"].(string)
			if name == "" {
				continue
			}
			info, exists := byName[name]
			if !exists {
				docType, _ := rec.Metadata["document_type"].(string)
				info = &DocumentInfo{Filename: name, DocumentType: docType}
				byName[name] = info
			}
			info.Chunks++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	docs := make([]DocumentInfo, 0, len(byName))
	for _, info := range byName {
		docs = append(docs, *info)
	}
	slices.SortFunc(docs, func(a, b DocumentInfo) int {
		return strings.Compare(a.Filename, b.Filename)
	})
	return docs, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
