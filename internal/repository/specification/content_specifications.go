package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByScope filters content embeddings by index scope ("user" | "reference").
type ByScope struct {
	Scope string
}

func (s ByScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scope = ?", s.Scope)
}

// BySourceTag filters content embeddings by the tag of the source document.
type BySourceTag struct {
	SourceTag string
}

func (s BySourceTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_tag = ?", s.SourceTag)
}

// ByContentSessionID filters user-scope embeddings by owning chat session.
type ByContentSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByContentSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}
