package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-studypartner-be/internal/dto"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository/memory"
	"ai-studypartner-be/internal/repository/specification"
	"ai-studypartner-be/internal/repository/unitofwork"
	"ai-studypartner-be/pkg/extract"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicIndexDocument is the bus topic that carries pending reindex jobs.
const TopicIndexDocument = "document.index"

// IUploadService replaces the session's uploaded document. The replacement is
// all-or-nothing: a failed extraction leaves the previous document intact.
type IUploadService interface {
	ReplaceDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, filename string, payload []byte, mimeType string) (*dto.UploadDocumentResponse, error)
}

type uploadService struct {
	uowFactory  unitofwork.RepositoryFactory
	extractor   extract.Extractor
	sessionRepo *memory.SessionRepository
	registry    *index.Registry
	pubSub      *gochannel.GoChannel
	logger      logger.ILogger
}

func NewUploadService(
	uowFactory unitofwork.RepositoryFactory,
	extractor extract.Extractor,
	sessionRepo *memory.SessionRepository,
	registry *index.Registry,
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
) IUploadService {
	return &uploadService{
		uowFactory:  uowFactory,
		extractor:   extractor,
		sessionRepo: sessionRepo,
		registry:    registry,
		pubSub:      pubSub,
		logger:      log,
	}
}

func (us *uploadService) ReplaceDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, filename string, payload []byte, mimeType string) (*dto.UploadDocumentResponse, error) {
	uow := us.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	// Extraction failures reject the upload; the session keeps its previous
	// document untouched.
	text, err := us.extractor.Extract(payload, mimeType)
	if err != nil {
		return nil, err
	}

	sourceTag := strings.TrimSpace(filename)
	if sourceTag == "" {
		sourceTag = "upload-" + sessionId.String()
	}

	// The old document's chunks must be gone before this call returns, not
	// whenever the reindex job happens to run. A failed clear aborts the
	// replacement and leaves the previous document fully intact.
	if err := us.registry.ClearUser(ctx, sessionId.String()); err != nil {
		return nil, fmt.Errorf("failed to clear session index: %w", err)
	}

	memorySess, found := us.sessionRepo.Get(sessionId.String())
	if !found {
		memorySess = &store.Session{
			ID:     sessionId.String(),
			UserID: userId.String(),
		}
	}
	memorySess.UploadedText = text
	// A new document invalidates any quiz built from the old one.
	memorySess.QuizAnswerKey = ""
	memorySess.StickyNextMode = ""
	us.sessionRepo.Save(memorySess)

	// Reindexing runs off the bus; the index was cleared above, so until the
	// job completes retrieval falls back to the raw text.
	job := dto.PublishIndexDocumentMessage{
		ChatSessionId: sessionId,
		UserId:        userId,
		SourceTag:     sourceTag,
		Text:          text,
	}
	jobPayload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	if err := us.pubSub.Publish(TopicIndexDocument, message.NewMessage(watermill.NewUUID(), jobPayload)); err != nil {
		return nil, fmt.Errorf("failed to enqueue reindex: %w", err)
	}

	us.logger.Info("UPLOAD", "document replaced", map[string]interface{}{
		"session_id":  sessionId.String(),
		"source_tag":  sourceTag,
		"text_length": len(text),
	})

	return &dto.UploadDocumentResponse{
		ChatSessionId: sessionId,
		SourceTag:     sourceTag,
		TextLength:    len(text),
		Indexing:      true,
	}, nil
}
