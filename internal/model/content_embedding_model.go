package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 use 768 dimensions
	Scope          string          `gorm:"type:varchar(20);not null;index"`
	SourceTag      string          `gorm:"type:varchar(255);not null;index"`
	ChatSessionId  *uuid.UUID      `gorm:"type:uuid;index"` // set for user scope, null for reference scope
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (ContentEmbedding) TableName() string {
	return "content_embeddings"
}
