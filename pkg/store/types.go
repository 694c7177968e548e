package store

import "time"

// Document represents a generic retrievable content unit in the RAG system.
// It may originate from the indexed corpus or be synthesized from memory tiers.
type Document struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Content      string                 `json:"content"`
	Source       string                 `json:"source"` // provenance tag, see Source* constants
	Score        float64                `json:"score"`  // raw relevance from the producing search
	BlendedScore float64                `json:"blended_score"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RetrievalResult groups the documents produced by a single source.
type RetrievalResult struct {
	Documents  []Document             `json:"documents"`
	Source     string                 `json:"source"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// RankedDocument is a Document augmented with its fused score and rank position.
type RankedDocument struct {
	Document
	SourceType       string  `json:"source_type"`
	SourceConfidence float64 `json:"source_confidence"`
	FinalScore       float64 `json:"final_score"`
	Rank             int     `json:"rank"`
}

// Turn is a single message in a session's conversation history.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionContext is the per-session volatile conversation state.
type SessionContext struct {
	ID                  string                 `json:"id"`
	ConversationHistory []Turn                 `json:"conversation_history"`
	CurrentTopic        string                 `json:"current_topic"`
	ContextVariables    map[string]interface{} `json:"context_variables"`
	CreatedAt           time.Time              `json:"created_at"`
	LastActivity        time.Time              `json:"last_activity"`
}

// Interaction is a snapshot of a single query/response exchange kept in the
// short-term memory ring.
type Interaction struct {
	Type      string                 `json:"type"`
	Query     string                 `json:"query"`
	Response  string                 `json:"response"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Provenance tags
const (
	SourceSemantic     = "semantic_search"
	SourceKeyword      = "keyword_search"
	SourceHybrid       = "hybrid_search"
	SourceMemory       = "memory_retrieval"
	SourceSession      = "session_memory"
	SourceShortTerm    = "short_term_memory"
	SourceConversation = "conversation_memory"
)

// InteractionQueryResponse is the interaction type recorded for a completed
// query/response pair.
const InteractionQueryResponse = "query_response"
