package service

import (
	"context"
	"fmt"
	"time"

	"ai-studypartner-be/internal/dto"
	"ai-studypartner-be/internal/entity"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/internal/repository/memory"
	"ai-studypartner-be/internal/repository/specification"
	"ai-studypartner-be/internal/repository/unitofwork"
	"ai-studypartner-be/pkg/agent/engine"
	"ai-studypartner-be/pkg/agent/state"
	"ai-studypartner-be/pkg/events"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/llm"
	"ai-studypartner-be/pkg/nats"
	"ai-studypartner-be/pkg/store"

	"github.com/google/uuid"
)

// IChatService drives the conversation turns and session lifecycle.
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	// ClearContext wipes the uploaded text, the quiz answer key, the sticky
	// route and the session's user-scope index. The reference corpus is
	// never touched.
	ClearContext(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	engine      *engine.Engine
	registry    *index.Registry
	sessionRepo *memory.SessionRepository
	publisher   *nats.Publisher
	logger      logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	turnEngine *engine.Engine,
	registry *index.Registry,
	sessionRepo *memory.SessionRepository,
	publisher *nats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		engine:      turnEngine,
		registry:    registry,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		logger:      log,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Unnamed session",
		CreatedAt: now,
	}

	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          "Hi! Upload your study material or ask me anything.",
		Role:          entity.RoleAssistant,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Mode:      msg.Mode,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}

// SendChat runs one turn through the engine. Nothing is persisted and no
// session state changes when generation fails, so resending the same message
// is always safe.
func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	existing, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(existing)+1)
	for _, msg := range existing {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Chat})
	}
	history = append(history, llm.Message{Role: entity.RoleUser, Content: request.Chat})

	sess := cs.memorySession(userId, request.ChatSessionId)

	turnState := state.TurnState{
		SessionID:      request.ChatSessionId.String(),
		UserID:         userId.String(),
		History:        history,
		UploadedText:   sess.UploadedText,
		StickyNextMode: sess.StickyNextMode,
		QuizAnswerKey:  sess.QuizAnswerKey,
	}

	result, err := cs.engine.RunTurn(ctx, turnState)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          request.Chat,
		Role:          entity.RoleUser,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now,
	}
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          result.Response,
		Role:          entity.RoleAssistant,
		Mode:          result.Mode,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now.Add(1 * time.Millisecond),
	}

	updateTitle := len(existing) <= 1 && len(request.Chat) > 0

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}
	if updateTitle {
		chatSession.Title = truncateTitle(request.Chat)
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// The turn succeeded: fold the generator's patch into the memory session.
	sess.Mode = result.Mode
	sess.StickyNextMode = result.State.StickyNextMode
	sess.QuizAnswerKey = result.State.QuizAnswerKey
	sess.LastQuery = request.Chat
	cs.sessionRepo.Save(sess)

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Mode:             result.Mode,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        assistantMessage.Id,
			Chat:      assistantMessage.Chat,
			Role:      assistantMessage.Role,
			CreatedAt: assistantMessage.CreatedAt,
		},
	}, nil
}

func (cs *chatService) ClearContext(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	// The index goes first. If the wipe fails the memory session keeps its
	// text, so the session never ends up with stale chunks and no raw text
	// to fall back on.
	if err := cs.registry.ClearUser(ctx, sessionId.String()); err != nil {
		return err
	}

	sess := cs.memorySession(userId, sessionId)
	sess.UploadedText = ""
	sess.QuizAnswerKey = ""
	sess.StickyNextMode = ""
	cs.sessionRepo.Save(sess)

	if cs.publisher != nil {
		if err := cs.publisher.Publish(ctx, events.NewSessionCleared(sessionId.String(), userId.String())); err != nil {
			cs.logger.Warn("CHAT", "failed to publish session cleared event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ContentEmbeddingRepository().DeleteBySessionUnscoped(ctx, request.ChatSessionId); err != nil {
		return err
	}

	cs.sessionRepo.Delete(request.ChatSessionId.String())

	return uow.Commit()
}

func (cs *chatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
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
	return sess, nil
}

// memorySession returns the cached session state, creating an empty one on
// first touch.
func (cs *chatService) memorySession(userId uuid.UUID, sessionId uuid.UUID) *store.Session {
	if sess, found := cs.sessionRepo.Get(sessionId.String()); found {
		return sess
	}
	return &store.Session{
		ID:     sessionId.String(),
		UserID: userId.String(),
	}
}

func truncateTitle(chat string) string {
	const maxTitle = 60
	if len(chat) <= maxTitle {
		return chat
	}
	return chat[:maxTitle] + "..."
}
