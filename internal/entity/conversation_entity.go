package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message
}

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}
