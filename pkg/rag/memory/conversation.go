package memory

import (
	"context"
	"fmt"
	"time"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/store"

	"github.com/google/uuid"
)

// ConversationMemory recalls semantically similar past exchanges. Each
// completed exchange is embedded as a single chunk in the user-scoped
// conversation corpus; Recall searches that corpus with the current query.
type ConversationMemory struct {
	chunks            contract.DocumentChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	corpusID          string
	threshold         float64
	logger            logger.ILogger
}

func NewConversationMemory(
	chunks contract.DocumentChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	corpusID string,
	threshold float64,
	log logger.ILogger,
) *ConversationMemory {
	return &ConversationMemory{
		chunks:            chunks,
		embeddingProvider: embeddingProvider,
		corpusID:          corpusID,
		threshold:         threshold,
		logger:            log,
	}
}

// Recall searches the user's conversation corpus for exchanges similar to
// the query. Recall is best effort: embedding or search failures are logged
// and surface as an empty result.
func (m *ConversationMemory) Recall(ctx context.Context, userID uuid.UUID, query string, limit int) []store.Document {
	resp, err := m.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		m.logger.Warn("conversation_memory", "Failed to embed recall query", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil
	}

	maxDistance := 1.0 - m.threshold
	scored, err := m.chunks.SearchSimilar(ctx, resp.Embedding.Values, m.corpusID, limit, maxDistance, &userID)
	if err != nil {
		m.logger.Warn("conversation_memory", "Conversation recall failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
		return nil
	}

	documents := make([]store.Document, 0, len(scored))
	for _, hit := range scored {
		documents = append(documents, store.Document{
			ID:      hit.Chunk.Id.String(),
			Title:   hit.Chunk.Title,
			Content: hit.Chunk.Content,
			Source:  store.SourceConversation,
			Score:   1.0 - hit.Distance,
			Metadata: map[string]interface{}{
				"session_id": hit.Chunk.DocumentId,
			},
		})
	}
	return documents
}

// Store embeds a completed query/answer exchange into the conversation
// corpus so later queries can recall it.
func (m *ConversationMemory) Store(ctx context.Context, userID uuid.UUID, sessionID, query, answer string) error {
	content := fmt.Sprintf("User: %s\nAssistant: %s", query, answer)

	resp, err := m.embeddingProvider.Generate(content, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("failed to embed exchange: %w", err)
	}

	chunk := &entity.DocumentChunk{
		Id:         uuid.New(),
		DocumentId: sessionID,
		CorpusId:   m.corpusID,
		UserId:     &userID,
		Title:      query,
		Content:    content,
		Embedding:  resp.Embedding.Values,
		Metadata: map[string]interface{}{
			"session_id": sessionID,
		},
		CreatedAt: time.Now(),
	}
	if err := m.chunks.Create(ctx, chunk); err != nil {
		return fmt.Errorf("failed to persist conversation chunk: %w", err)
	}
	return nil
}
