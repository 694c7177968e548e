package memory

import (
	"context"
	"fmt"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// LongTermStore is the durable memory tier: user profiles with persistent
// preferences and the full conversation record, backed by the relational
// store through the unit-of-work layer.
type LongTermStore struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewLongTermStore(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *LongTermStore {
	return &LongTermStore{
		uowFactory: uowFactory,
		logger:     log,
	}
}

// GetOrCreateUser resolves a user by external identifier, creating the
// profile on first contact. The lookup and create run in one transaction so
// concurrent first requests do not race into duplicates.
func (s *LongTermStore) GetOrCreateUser(ctx context.Context, externalID string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByExternalID{ExternalID: externalID})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		user = &entity.User{
			Id:          uuid.New(),
			ExternalId:  externalID,
			Preferences: map[string]interface{}{},
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("long_term_memory", "Created user profile", map[string]interface{}{
			"user_id":     user.Id.String(),
			"external_id": externalID,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// GetUser resolves a user by external identifier without creating one.
// Returns nil when the user does not exist.
func (s *LongTermStore) GetUser(ctx context.Context, externalID string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().FindOne(ctx, specification.ByExternalID{ExternalID: externalID})
}

// UpdatePreferences merges the given preferences into the user's persistent
// profile.
func (s *LongTermStore) UpdatePreferences(ctx context.Context, externalID string, preferences map[string]interface{}) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindOne(ctx, specification.ByExternalID{ExternalID: externalID})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", externalID)
	}

	if user.Preferences == nil {
		user.Preferences = map[string]interface{}{}
	}
	for key, value := range preferences {
		user.Preferences[key] = value
	}

	if err := uow.UserRepository().UpdatePreferences(ctx, user.Id, user.Preferences); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// ConversationHistory returns the user's most recently active conversations,
// each with its messages in chronological order.
func (s *LongTermStore) ConversationHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userID},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Limit{Limit: limit},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	for _, conversation := range conversations {
		messages, err := uow.MessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conversation.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		for _, message := range messages {
			conversation.Messages = append(conversation.Messages, *message)
		}
	}
	return conversations, nil
}

// FindConversationBySession returns the conversation bound to a session, or
// nil when none exists yet.
func (s *LongTermStore) FindConversationBySession(ctx context.Context, userID uuid.UUID, sessionID string) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.BySessionID{SessionID: sessionID},
	)
}

// RecordExchange appends a user/assistant message pair to the session's
// conversation, creating the conversation on first write. Returns the
// conversation the exchange was recorded into.
func (s *LongTermStore) RecordExchange(ctx context.Context, userID uuid.UUID, sessionID string, messages []*entity.Message) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByUserID{UserID: userID},
		specification.BySessionID{SessionID: sessionID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	if conversation == nil {
		conversation = &entity.Conversation{
			Id:        uuid.New(),
			UserId:    userID,
			SessionId: sessionID,
			Title:     conversationTitle(messages),
		}
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
	} else if err := uow.ConversationRepository().Touch(ctx, conversation.Id); err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	for _, message := range messages {
		message.Id = uuid.New()
		message.ConversationId = conversation.Id
	}
	if err := uow.MessageRepository().CreateBulk(ctx, messages); err != nil {
		return nil, fmt.Errorf("failed to persist messages: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return conversation, nil
}

func conversationTitle(messages []*entity.Message) string {
	for _, message := range messages {
		if message.Content == "" {
			continue
		}
		// slice runes, not bytes, so a multibyte character is never cut
		if runes := []rune(message.Content); len(runes) > 80 {
			return string(runes[:80])
		}
		return message.Content
	}
	return "Unnamed conversation"
}
