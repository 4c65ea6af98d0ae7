package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/memory"
)

// DefaultWorkers is the default worker pool width for chunk ingestion.
const DefaultWorkers = 5

// Engine fans document chunks out to a bounded worker pool and writes
// them into the memory store. Chunk failures are isolated: one bad chunk
// never aborts the batch.
type Engine struct {
	store  memory.Store
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWorkers sets the worker pool size for concurrent chunk writes.
// Default is DefaultWorkers, with a minimum of 1.
func WithWorkers(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an ingestion engine over the given store.
func NewEngine(store memory.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	pool, err := ants.NewPool(DefaultWorkers)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:  store,
		pool:   pool,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Release releases the worker pool.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Ingest writes every non-empty chunk of a load result into the tenant's
// memory space and blocks until the whole batch has settled. The outcome
// accounts for every scheduled chunk: Ingested+Failed always equals
// ChunksTotal regardless of completion order.
func (e *Engine) Ingest(ctx context.Context, result *core.LoadResult, tenantID string, owner core.Principal) *Outcome {
	if result == nil || !result.Success {
		reason := "load failed"
		if result != nil && result.Err != "" {
			reason = result.Err
		}
		return errorOutcome(result, reason)
	}
	if err := core.ValidateTenant(tenantID); err != nil {
		return errorOutcome(result, err.Error())
	}

	chunks := make([]core.Chunk, 0, len(result.Chunks))
	for i := range result.Chunks {
		if !result.Chunks[i].IsEmpty() {
			chunks = append(chunks, result.Chunks[i])
		}
	}

	outcome := &Outcome{
		Status:      StatusSuccess,
		Filename:    result.Filename,
		ChunksTotal: len(chunks),
		Metadata:    result.Metadata,
	}
	if len(chunks) == 0 {
		e.logger.Info("nothing to ingest", "filename", result.Filename)
		return outcome
	}

	progressEvery := max(1, len(chunks)/10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for i := range chunks {
		chunk := chunks[i]
		wg.Add(1)

		submitErr := e.pool.Submit(func() {
			defer wg.Done()

			err := e.store.Add(ctx, &memory.Item{
				Content:  chunkPayload(result.Filename, &chunk),
				TenantID: tenantID,
				Metadata: chunkMetadata(result, &chunk, owner),
			})

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				outcome.Failed++
				outcome.Errors = append(outcome.Errors, ChunkError{
					Page:   chunk.Page,
					Reason: err.Error(),
				})
				e.logger.Warn("chunk ingestion failed",
					"filename", result.Filename, "page", chunk.Page, "err", err)
			} else {
				outcome.Ingested++
			}
			if completed%progressEvery == 0 || completed == len(chunks) {
				e.logger.Info("ingestion progress",
					"filename", result.Filename,
					"completed", completed, "total", len(chunks))
			}
		})
		if submitErr != nil {
			// Pool rejected the task; account for it inline.
			wg.Done()
			mu.Lock()
			completed++
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, ChunkError{
				Page:   chunk.Page,
				Reason: submitErr.Error(),
			})
			mu.Unlock()
		}
	}

	wg.Wait()

	switch {
	case outcome.Failed == 0:
		outcome.Status = StatusSuccess
	case outcome.Ingested == 0:
		outcome.Status = StatusError
	default:
		outcome.Status = StatusPartial
	}

	e.logger.Info("ingestion complete",
		"filename", result.Filename,
		"status", outcome.Status,
		"ingested", outcome.Ingested,
		"failed", outcome.Failed)

	return outcome
}

// chunkPayload renders the text that gets embedded. Document identity and
// locality are folded into the payload so retrieval carries provenance
// even when a backend strips metadata.
func chunkPayload(filename string, chunk *core.Chunk) string {
	return fmt.Sprintf("Document: %s\nPage/Sheet: %s\nContent:\n%s",
		filename, chunk.Page, chunk.Content)
}

// chunkMetadata merges the standard provenance tags with the chunk's own
// metadata. Chunk metadata wins on key collisions.
func chunkMetadata(result *core.LoadResult, chunk *core.Chunk, owner core.Principal) map[string]any {
	meta := map[string]any{
		"source":        "document",
		"filename":      result.Filename,
		"page":          chunk.Page,
		"document_type": string(result.DocumentType),
	}
	if owner.ID != "" {
		meta["owner_id"] = owner.ID
	}
	if owner.Username != "" {
		meta["owner_username"] = owner.Username
	}
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	return meta
}

func errorOutcome(result *core.LoadResult, reason string) *Outcome {
	outcome := &Outcome{Status: StatusError, Reason: reason}
	if result != nil {
		outcome.Filename = result.Filename
		outcome.Metadata = result.Metadata
	}
	return outcome
}
