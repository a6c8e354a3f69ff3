package mapper

import (
	"time"

	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentEmbeddingMapper struct{}

func NewContentEmbeddingMapper() *ContentEmbeddingMapper {
	return &ContentEmbeddingMapper{}
}

func (m *ContentEmbeddingMapper) ToEntity(e *model.ContentEmbedding) *entity.ContentEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		Scope:          entity.ContentScope(e.Scope),
		SourceTag:      e.SourceTag,
		ChatSessionId:  e.ChatSessionId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *ContentEmbeddingMapper) ToModel(e *entity.ContentEmbedding) *model.ContentEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ContentEmbedding{
		Id:             e.Id,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		Scope:          string(e.Scope),
		SourceTag:      e.SourceTag,
		ChatSessionId:  e.ChatSessionId,
		ChunkIndex:     e.ChunkIndex,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ContentEmbeddingMapper) ToEntities(embeddings []*model.ContentEmbedding) []*entity.ContentEmbedding {
	entities := make([]*entity.ContentEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *ContentEmbeddingMapper) ToModels(embeddings []*entity.ContentEmbedding) []*model.ContentEmbedding {
	models := make([]*model.ContentEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = m.ToModel(e)
	}
	return models
}
