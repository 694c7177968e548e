package memory

import (
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/pkg/store"
)

// Context is the per-request read snapshot over all memory tiers. It is
// assembled once by the Composer and never mutated afterwards. A nil tier
// means the backing store was unavailable or not applicable for the request;
// consumers must treat that as "no data", not as an error.
type Context struct {
	SessionMemory      *store.SessionContext
	ShortTermMemory    *ShortTerm
	LongTermMemory     *LongTerm
	ConversationMemory []store.Document
}

// ShortTerm is the snapshot read from the shared expiring store.
type ShortTerm struct {
	RecentInteractions []store.Interaction
	Preferences        map[string]interface{}
}

// LongTerm is the snapshot read from durable storage.
type LongTerm struct {
	UserProfile         *entity.User
	ConversationHistory []*entity.Conversation
}
