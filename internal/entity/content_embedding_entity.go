package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentScope separates the ephemeral per-session upload index from the
// durable shared reference corpus.
type ContentScope string

const (
	ScopeUser      ContentScope = "user"
	ScopeReference ContentScope = "reference"
)

type ContentEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	Scope          ContentScope
	SourceTag      string
	ChatSessionId  *uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
