package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one embedded slice of an indexed document. CorpusId names
// the collection it belongs to ("documents" for the ingested corpus,
// "conversations" for semantic conversation memory). UserId is set only for
// conversation chunks, which are private to a user.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId string
	CorpusId   string
	UserId     *uuid.UUID
	Title      string
	Content    string
	ChunkIndex int
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}
