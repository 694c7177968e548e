package memory

import (
	"context"
	"errors"
	"testing"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecallFailsSoftOnEmbeddingError(t *testing.T) {
	m := NewConversationMemory(&fakeChunkRepo{}, &fakeEmbedder{err: errors.New("provider down")}, "conversations", 0.7, logger.NewNopLogger())

	documents := m.Recall(context.Background(), uuid.New(), "query", 5)

	assert.Empty(t, documents)
}

func TestStoreEmbedsExchange(t *testing.T) {
	repo := &fakeChunkRepo{}
	userID := uuid.New()
	m := NewConversationMemory(repo, &fakeEmbedder{}, "conversations", 0.7, logger.NewNopLogger())

	err := m.Store(context.Background(), userID, "session-1", "what is Go?", "A programming language.")
	require.NoError(t, err)

	require.Len(t, repo.chunks, 1)
	chunk := repo.chunks[0]
	assert.Equal(t, "conversations", chunk.CorpusId)
	assert.Equal(t, "session-1", chunk.DocumentId)
	require.NotNil(t, chunk.UserId)
	assert.Equal(t, userID, *chunk.UserId)
	assert.Contains(t, chunk.Content, "User: what is Go?")
	assert.Contains(t, chunk.Content, "Assistant: A programming language.")
	assert.NotEmpty(t, chunk.Embedding)
}

func TestStoreFailsOnEmbeddingError(t *testing.T) {
	m := NewConversationMemory(&fakeChunkRepo{}, &fakeEmbedder{err: errors.New("provider down")}, "conversations", 0.7, logger.NewNopLogger())

	err := m.Store(context.Background(), uuid.New(), "session-1", "q", "a")

	assert.Error(t, err)
}

func TestRecallTagsDocumentsWithConversationSource(t *testing.T) {
	userID := uuid.New()
	repo := &fakeChunkRepo{}
	m := NewConversationMemory(repo, &fakeEmbedder{}, "conversations", 0.7, logger.NewNopLogger())

	require.NoError(t, m.Store(context.Background(), userID, "session-1", "q", "a"))
	repo.similar = append(repo.similar, scoredFromStored(repo)...)

	documents := m.Recall(context.Background(), userID, "q", 5)

	require.Len(t, documents, 1)
	assert.Equal(t, store.SourceConversation, documents[0].Source)
}
