package contract

import (
	"context"

	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContentEmbedding wraps ContentEmbedding with its similarity score.
type ScoredContentEmbedding struct {
	Embedding  *entity.ContentEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ContentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ContentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ContentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteBySessionUnscoped hard deletes every user-scope chunk for a session.
	// The upload flow replaces the whole session index in one transaction.
	DeleteBySessionUnscoped(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns the nearest chunks inside one scope. User scope is
	// additionally restricted to the owning session.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, scope entity.ContentScope, sessionId *uuid.UUID) ([]*entity.ContentEmbedding, error)
	// SearchSimilarWithScore also returns cosine similarity, filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, scope entity.ContentScope, sessionId *uuid.UUID, threshold float64) ([]*ScoredContentEmbedding, error)
}
