package index

import (
	"context"
	"fmt"
	"sync"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/embedding"
	"ai-studypartner-be/pkg/store"
	"ai-studypartner-be/pkg/utils"
)

// Index scopes. User scope holds the one currently uploaded document per
// session; reference scope holds the durable corpus.
const (
	ScopeUser      = "user"
	ScopeReference = "reference"
)

// Chunk is one splittable unit of a source document headed for the index.
type Chunk struct {
	Text    string
	Ordinal int
}

// Store is the persistence side of the index. The registry owns chunking,
// embedding and scope discipline; the store only moves vectors.
type Store interface {
	// ReplaceSession atomically swaps every user-scope chunk of a session
	// for the new set, in one transaction.
	ReplaceSession(ctx context.Context, sessionID string, sourceTag string, chunks []Chunk, vectors [][]float32) error
	// AppendReference inserts reference-scope chunks for a source tag.
	AppendReference(ctx context.Context, sourceTag string, chunks []Chunk, vectors [][]float32) error
	// CountBySourceTag reports how many chunks a source already has in a
	// scope; the reference build uses it for idempotence.
	CountBySourceTag(ctx context.Context, scope string, sourceTag string) (int64, error)
	// Search returns the k nearest chunks in a scope, user scope restricted
	// to the owning session.
	Search(ctx context.Context, scope string, sessionID string, vector []float32, k int) ([]store.Document, error)
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 150
)

// Registry is the process-lifetime content index, keyed by scope. It is
// injected into the engine and services instead of living as a global.
// Per-scope handles are constructed lazily and idempotently.
type Registry struct {
	embedder embedding.EmbeddingProvider
	store    Store
	logger   logger.ILogger

	mu      sync.Mutex
	handles map[string]*scopeHandle

	chunkSize    int
	chunkOverlap int
}

// scopeHandle serializes writers against readers within one scope. A user
// scope rebuild is an exclusive critical section; readers that arrive during
// it get an empty result and fall back to raw text.
type scopeHandle struct {
	rw sync.RWMutex
}

func NewRegistry(embedder embedding.EmbeddingProvider, st Store, log logger.ILogger) *Registry {
	return &Registry{
		embedder:     embedder,
		store:        st,
		logger:       log,
		handles:      make(map[string]*scopeHandle),
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
	}
}

func (r *Registry) handle(scope string) *scopeHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[scope]
	if !ok {
		h = &scopeHandle{}
		r.handles[scope] = h
	}
	return h
}

// IndexUser replaces the session's user-scope index with the given document.
// Old chunks are gone when this returns: wipe-then-rebuild runs as one
// exclusive critical section against retrieval.
func (r *Registry) IndexUser(ctx context.Context, sessionID string, text string, sourceTag string) (int, error) {
	chunks, vectors, err := r.embedChunks(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embedding upload failed: %w", err)
	}

	h := r.handle(ScopeUser)
	h.rw.Lock()
	defer h.rw.Unlock()

	if err := r.store.ReplaceSession(ctx, sessionID, sourceTag, chunks, vectors); err != nil {
		return 0, fmt.Errorf("replacing session index failed: %w", err)
	}

	r.logger.Info("INDEX", "user scope reindexed", map[string]interface{}{
		"session_id": sessionID,
		"source_tag": sourceTag,
		"chunks":     len(chunks),
	})
	return len(chunks), nil
}

// ClearUser drops every user-scope chunk of a session. Reference scope is
// never touched by a clear.
func (r *Registry) ClearUser(ctx context.Context, sessionID string) error {
	h := r.handle(ScopeUser)
	h.rw.Lock()
	defer h.rw.Unlock()

	if err := r.store.ReplaceSession(ctx, sessionID, "", nil, nil); err != nil {
		return fmt.Errorf("clearing session index failed: %w", err)
	}
	return nil
}

// IndexReference adds a source document to the durable corpus. Rebuilding an
// already-indexed source is a no-op; skipped reports that.
func (r *Registry) IndexReference(ctx context.Context, text string, sourceTag string) (added int, skipped bool, err error) {
	existing, err := r.store.CountBySourceTag(ctx, ScopeReference, sourceTag)
	if err != nil {
		return 0, false, fmt.Errorf("reference idempotence check failed: %w", err)
	}
	if existing > 0 {
		return 0, true, nil
	}

	chunks, vectors, err := r.embedChunks(ctx, text)
	if err != nil {
		return 0, false, fmt.Errorf("embedding reference source failed: %w", err)
	}

	h := r.handle(ScopeReference)
	h.rw.Lock()
	defer h.rw.Unlock()

	if err := r.store.AppendReference(ctx, sourceTag, chunks, vectors); err != nil {
		return 0, false, fmt.Errorf("appending reference chunks failed: %w", err)
	}
	return len(chunks), false, nil
}

// Retrieve returns the k most similar passages in a scope. It never fails:
// embedding or store errors, and an in-flight rebuild of the scope, all yield
// an empty result so the caller can fall back.
func (r *Registry) Retrieve(ctx context.Context, scope string, sessionID string, query string, k int) []store.Document {
	h := r.handle(scope)
	if !h.rw.TryRLock() {
		r.logger.Warn("INDEX", "scope is rebuilding, retrieval unavailable", map[string]interface{}{
			"scope": scope,
		})
		return nil
	}
	defer h.rw.RUnlock()

	resp, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Error("INDEX", "query embedding failed", map[string]interface{}{
			"scope": scope,
			"error": err.Error(),
		})
		return nil
	}

	docs, err := r.store.Search(ctx, scope, sessionID, resp.Embedding.Values, k)
	if err != nil {
		r.logger.Error("INDEX", "similarity search failed", map[string]interface{}{
			"scope": scope,
			"error": err.Error(),
		})
		return nil
	}
	return docs
}

func (r *Registry) embedChunks(ctx context.Context, text string) ([]Chunk, [][]float32, error) {
	parts := utils.SplitText(text, r.chunkSize, r.chunkOverlap)
	chunks := make([]Chunk, 0, len(parts))
	vectors := make([][]float32, 0, len(parts))

	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		resp, err := r.embedder.Generate(part, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, Chunk{Text: part, Ordinal: i})
		vectors = append(vectors, resp.Embedding.Values)
	}
	return chunks, vectors, nil
}
