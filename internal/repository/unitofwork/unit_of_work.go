package unitofwork

import (
	"context"

	"ai-studypartner-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ContentEmbeddingRepository() contract.ContentEmbeddingRepository
}
