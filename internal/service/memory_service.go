package service

import (
	"context"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/rag/memory"
)

// IMemoryService exposes durable memory to the transport layer: conversation
// history reads and preference updates.
type IMemoryService interface {
	ConversationHistory(ctx context.Context, request *dto.ConversationHistoryRequest) (*dto.ConversationHistoryResponse, error)
	UpdatePreferences(ctx context.Context, request *dto.UpdatePreferencesRequest) (*dto.UpdatePreferencesResponse, error)
}

type memoryService struct {
	longTerm  *memory.LongTermStore
	shortTerm *memory.ShortTermStore
	logger    logger.ILogger
}

func NewMemoryService(longTerm *memory.LongTermStore, shortTerm *memory.ShortTermStore, log logger.ILogger) IMemoryService {
	return &memoryService{
		longTerm:  longTerm,
		shortTerm: shortTerm,
		logger:    log,
	}
}

func (s *memoryService) ConversationHistory(ctx context.Context, request *dto.ConversationHistoryRequest) (*dto.ConversationHistoryResponse, error) {
	user, err := s.longTerm.GetUser(ctx, request.UserId)
	if err != nil {
		return nil, err
	}

	response := &dto.ConversationHistoryResponse{
		UserId:        request.UserId,
		Conversations: []dto.ConversationResponse{},
	}
	if user == nil {
		return response, nil
	}

	limit := request.Limit
	if limit <= 0 {
		limit = 10
	}

	conversations, err := s.longTerm.ConversationHistory(ctx, user.Id, limit)
	if err != nil {
		return nil, err
	}

	for _, conversation := range conversations {
		item := dto.ConversationResponse{
			Id:        conversation.Id.String(),
			SessionId: conversation.SessionId,
			Title:     conversation.Title,
			Messages:  []dto.MessageResponse{},
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		}
		for _, message := range conversation.Messages {
			item.Messages = append(item.Messages, dto.MessageResponse{
				Role:      message.Role,
				Content:   message.Content,
				CreatedAt: message.CreatedAt,
			})
		}
		response.Conversations = append(response.Conversations, item)
	}
	return response, nil
}

// UpdatePreferences writes the durable profile first, then refreshes the
// short-term copy so the next compose sees the change immediately.
func (s *memoryService) UpdatePreferences(ctx context.Context, request *dto.UpdatePreferencesRequest) (*dto.UpdatePreferencesResponse, error) {
	user, err := s.longTerm.UpdatePreferences(ctx, request.UserId, request.Preferences)
	if err != nil {
		return nil, err
	}

	s.shortTerm.StorePreferences(ctx, request.UserId, user.Preferences)

	return &dto.UpdatePreferencesResponse{
		UserId:      request.UserId,
		Preferences: user.Preferences,
	}, nil
}
