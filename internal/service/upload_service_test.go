package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository/contract"
	"ai-studypartner-be/internal/repository/memory"
	"ai-studypartner-be/internal/repository/specification"
	"ai-studypartner-be/internal/repository/unitofwork"
	"ai-studypartner-be/pkg/embedding"
	"ai-studypartner-be/pkg/extract"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type fakeSessionRepo struct {
	contract.ChatSessionRepository
	session *entity.ChatSession
}

func (f *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return f.session, nil
}

type fakeUnitOfWork struct {
	unitofwork.UnitOfWork
	sessions contract.ChatSessionRepository
}

func (f *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return f.sessions
}

type fakeUowFactory struct {
	uow unitofwork.UnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type replaceCall struct {
	sessionID string
	chunks    int
}

type fakeIndexStore struct {
	mu         sync.Mutex
	replaceErr error
	replaced   []replaceCall
}

func (s *fakeIndexStore) ReplaceSession(ctx context.Context, sessionID string, sourceTag string, chunks []index.Chunk, vectors [][]float32) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = append(s.replaced, replaceCall{sessionID: sessionID, chunks: len(chunks)})
	return nil
}

func (s *fakeIndexStore) AppendReference(ctx context.Context, sourceTag string, chunks []index.Chunk, vectors [][]float32) error {
	return nil
}

func (s *fakeIndexStore) CountBySourceTag(ctx context.Context, scope string, sourceTag string) (int64, error) {
	return 0, nil
}

func (s *fakeIndexStore) Search(ctx context.Context, scope string, sessionID string, vector []float32, k int) ([]store.Document, error) {
	return nil, nil
}

func newUploadFixture(t *testing.T, indexStore *fakeIndexStore) (IUploadService, *memory.SessionRepository, uuid.UUID, uuid.UUID) {
	t.Helper()

	userId := uuid.New()
	sessionId := uuid.New()

	uowFactory := &fakeUowFactory{uow: &fakeUnitOfWork{
		sessions: &fakeSessionRepo{session: &entity.ChatSession{Id: sessionId, UserId: userId}},
	}}

	sessionRepo := memory.NewSessionRepository()
	sessionRepo.Save(&store.Session{
		ID:            sessionId.String(),
		UserID:        userId.String(),
		UploadedText:  "old lecture notes",
		QuizAnswerKey: "1. A\n2. B",
	})

	registry := index.NewRegistry(fakeEmbedder{}, indexStore, nopLogger{})
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	svc := NewUploadService(uowFactory, extract.NewTextExtractor(), sessionRepo, registry, pubSub, nopLogger{})
	return svc, sessionRepo, userId, sessionId
}

func TestReplaceDocumentClearsIndexBeforeReturning(t *testing.T) {
	indexStore := &fakeIndexStore{}
	svc, sessionRepo, userId, sessionId := newUploadFixture(t, indexStore)

	resp, err := svc.ReplaceDocument(context.Background(), userId, sessionId, "notes.txt", []byte("fresh chapter"), "text/plain")
	if err != nil {
		t.Fatalf("ReplaceDocument: %v", err)
	}
	if resp.SourceTag != "notes.txt" {
		t.Errorf("SourceTag = %q, want notes.txt", resp.SourceTag)
	}

	// The old chunks must already be gone when the call returns; the reindex
	// job on the bus only fills the index back in.
	indexStore.mu.Lock()
	replaced := append([]replaceCall(nil), indexStore.replaced...)
	indexStore.mu.Unlock()
	if len(replaced) == 0 {
		t.Fatal("index was never cleared")
	}
	if replaced[0].sessionID != sessionId.String() || replaced[0].chunks != 0 {
		t.Errorf("first index write = %+v, want empty replace for %s", replaced[0], sessionId)
	}

	sess, found := sessionRepo.Get(sessionId.String())
	if !found {
		t.Fatal("memory session missing")
	}
	if sess.UploadedText != "fresh chapter" {
		t.Errorf("UploadedText = %q, want the new document", sess.UploadedText)
	}
	if sess.QuizAnswerKey != "" {
		t.Errorf("QuizAnswerKey = %q, want cleared", sess.QuizAnswerKey)
	}
}

func TestReplaceDocumentKeepsOldDocumentWhenClearFails(t *testing.T) {
	indexStore := &fakeIndexStore{replaceErr: errors.New("index unavailable")}
	svc, sessionRepo, userId, sessionId := newUploadFixture(t, indexStore)

	_, err := svc.ReplaceDocument(context.Background(), userId, sessionId, "notes.txt", []byte("fresh chapter"), "text/plain")
	if err == nil {
		t.Fatal("expected error when the index clear fails")
	}

	sess, found := sessionRepo.Get(sessionId.String())
	if !found {
		t.Fatal("memory session missing")
	}
	if sess.UploadedText != "old lecture notes" {
		t.Errorf("UploadedText = %q, want the previous document intact", sess.UploadedText)
	}
	if sess.QuizAnswerKey != "1. A\n2. B" {
		t.Errorf("QuizAnswerKey = %q, want the previous key intact", sess.QuizAnswerKey)
	}
}
