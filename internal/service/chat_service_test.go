package service

import (
	"context"
	"errors"
	"testing"

	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/repository/memory"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/store"

	"github.com/google/uuid"
)

func newClearContextFixture(t *testing.T, indexStore *fakeIndexStore) (IChatService, *memory.SessionRepository, uuid.UUID, uuid.UUID) {
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
		UploadedText:  "chapter on osmosis",
		QuizAnswerKey: "1. A\n2. C",
	})

	registry := index.NewRegistry(fakeEmbedder{}, indexStore, nopLogger{})

	svc := NewChatService(uowFactory, nil, registry, sessionRepo, nil, nopLogger{})
	return svc, sessionRepo, userId, sessionId
}

func TestClearContextWipesIndexAndMemory(t *testing.T) {
	indexStore := &fakeIndexStore{}
	svc, sessionRepo, userId, sessionId := newClearContextFixture(t, indexStore)

	if err := svc.ClearContext(context.Background(), userId, sessionId); err != nil {
		t.Fatalf("ClearContext: %v", err)
	}

	indexStore.mu.Lock()
	replaced := append([]replaceCall(nil), indexStore.replaced...)
	indexStore.mu.Unlock()
	if len(replaced) != 1 || replaced[0].sessionID != sessionId.String() || replaced[0].chunks != 0 {
		t.Errorf("index writes = %+v, want one empty replace for %s", replaced, sessionId)
	}

	sess, found := sessionRepo.Get(sessionId.String())
	if !found {
		t.Fatal("memory session missing")
	}
	if sess.UploadedText != "" || sess.QuizAnswerKey != "" || sess.StickyNextMode != "" {
		t.Errorf("session not wiped: %+v", sess)
	}
}

func TestClearContextKeepsRawTextWhenIndexWipeFails(t *testing.T) {
	indexStore := &fakeIndexStore{replaceErr: errors.New("index unavailable")}
	svc, sessionRepo, userId, sessionId := newClearContextFixture(t, indexStore)

	if err := svc.ClearContext(context.Background(), userId, sessionId); err == nil {
		t.Fatal("expected error when the index wipe fails")
	}

	// A failed wipe must not leave stale chunks searchable with no raw text
	// to fall back on, so the memory session keeps everything.
	sess, found := sessionRepo.Get(sessionId.String())
	if !found {
		t.Fatal("memory session missing")
	}
	if sess.UploadedText != "chapter on osmosis" {
		t.Errorf("UploadedText = %q, want the original text intact", sess.UploadedText)
	}
	if sess.QuizAnswerKey != "1. A\n2. C" {
		t.Errorf("QuizAnswerKey = %q, want the original key intact", sess.QuizAnswerKey)
	}
}
