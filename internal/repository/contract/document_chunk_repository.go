package contract

import (
	"context"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk pairs a chunk with its relevance to a query. For vector
// search Distance is the cosine distance in [0,1] (smaller = closer); for
// keyword search Rank is the normalized ts_rank_cd score in [0,1).
type ScoredDocumentChunk struct {
	Chunk    *entity.DocumentChunk
	Distance float64
	Rank     float64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId string) error
	DeleteByUserId(ctx context.Context, userId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilar runs a cosine-distance vector search within a corpus.
	// userId scopes the search to a user's private chunks when non-nil.
	SearchSimilar(ctx context.Context, embedding []float32, corpusId string, limit int, maxDistance float64, userId *uuid.UUID) ([]*ScoredDocumentChunk, error)

	// SearchKeyword runs a Postgres full-text search within a corpus.
	SearchKeyword(ctx context.Context, query string, corpusId string, limit int, userId *uuid.UUID) ([]*ScoredDocumentChunk, error)
}
