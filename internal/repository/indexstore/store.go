package indexstore

import (
	"context"
	"fmt"

	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/model"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/store"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Store persists index chunks in the content_embeddings table, implementing
// index.Store on top of pgvector.
type Store struct {
	db *gorm.DB
}

var _ index.Store = &Store{}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ReplaceSession(ctx context.Context, sessionID string, sourceTag string, chunks []index.Chunk, vectors [][]float32) error {
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	models := buildModels(string(entity.ScopeUser), sourceTag, &sid, chunks, vectors)

	// Wipe and rebuild in one transaction: a reader never sees the session
	// half-replaced.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("scope = ?", string(entity.ScopeUser)).
			Where("chat_session_id = ?", sid).
			Delete(&model.ContentEmbedding{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(models).Error
	})
}

func (s *Store) AppendReference(ctx context.Context, sourceTag string, chunks []index.Chunk, vectors [][]float32) error {
	models := buildModels(string(entity.ScopeReference), sourceTag, nil, chunks, vectors)
	if len(models) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(models).Error
}

func (s *Store) CountBySourceTag(ctx context.Context, scope string, sourceTag string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ContentEmbedding{}).
		Where("scope = ?", scope).
		Where("source_tag = ?", sourceTag).
		Count(&count).Error
	return count, err
}

func (s *Store) Search(ctx context.Context, scope string, sessionID string, vector []float32, k int) ([]store.Document, error) {
	if k <= 0 {
		k = 5
	}

	query := s.db.WithContext(ctx).
		Where("scope = ?", scope).
		Where("deleted_at IS NULL")

	if scope == string(entity.ScopeUser) {
		sid, err := uuid.Parse(sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
		}
		query = query.Where("chat_session_id = ?", sid)
	}

	var models []*model.ContentEmbedding
	err := query.
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(vector))).
		Limit(k).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, len(models))
	for i, m := range models {
		docs[i] = store.Document{
			ID:      m.Id.String(),
			Source:  m.SourceTag,
			Content: m.Document,
			Metadata: map[string]interface{}{
				"scope":       m.Scope,
				"chunk_index": m.ChunkIndex,
			},
		}
	}
	return docs, nil
}

func buildModels(scope, sourceTag string, sessionID *uuid.UUID, chunks []index.Chunk, vectors [][]float32) []*model.ContentEmbedding {
	models := make([]*model.ContentEmbedding, 0, len(chunks))
	for i, c := range chunks {
		models = append(models, &model.ContentEmbedding{
			Document:       c.Text,
			EmbeddingValue: pgvector.NewVector(vectors[i]),
			Scope:          scope,
			SourceTag:      sourceTag,
			ChatSessionId:  sessionID,
			ChunkIndex:     c.Ordinal,
		})
	}
	return models
}
