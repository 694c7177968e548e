package dto

import "time"

type ConversationHistoryRequest struct {
	UserId string `json:"user_id" validate:"required"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type MessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResponse struct {
	Id        string            `json:"id"`
	SessionId string            `json:"session_id"`
	Title     string            `json:"title"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ConversationHistoryResponse struct {
	UserId        string                 `json:"user_id"`
	Conversations []ConversationResponse `json:"conversations"`
}

type UpdatePreferencesRequest struct {
	UserId      string                 `json:"user_id" validate:"required"`
	Preferences map[string]interface{} `json:"preferences" validate:"required"`
}

type UpdatePreferencesResponse struct {
	UserId      string                 `json:"user_id"`
	Preferences map[string]interface{} `json:"preferences"`
}
