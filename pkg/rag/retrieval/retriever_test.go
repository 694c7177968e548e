package retrieval

import (
	"context"
	"testing"
	"time"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

func newTestRetriever(repo *fakeChunkRepo) *Retriever {
	searcher := NewSearcher(repo, &fakeEmbedder{}, 0.7, logger.NewNopLogger())
	return NewRetriever(searcher, "documents", 0.6, 10, logger.NewNopLogger())
}

func memoryContext() *memory.Context {
	return &memory.Context{
		SessionMemory: &store.SessionContext{
			ID: "s1",
			ConversationHistory: []store.Turn{
				{Role: "user", Content: "earlier question", Timestamp: time.Now()},
			},
		},
		ShortTermMemory: &memory.ShortTerm{
			RecentInteractions: []store.Interaction{
				{Query: "past query", Response: "past answer", SessionID: "s0"},
			},
		},
		ConversationMemory: []store.Document{
			{ID: "recall-1", Content: "recalled exchange", Source: store.SourceConversation, Score: 0.82},
		},
	}
}

func processedQuery(strategy analyzer.Strategy) *analyzer.ProcessedQuery {
	return &analyzer.ProcessedQuery{
		Original:        "query",
		ExpandedQueries: []string{"query"},
		QueryType:       analyzer.QueryTypeFactual,
		Strategy:        strategy,
	}
}

func TestMemoryFirstOrdering(t *testing.T) {
	r := newTestRetriever(&fakeChunkRepo{
		similar: []*contract.ScoredDocumentChunk{scoredChunk("doc hit", 0.2, 0)},
	})

	results := r.RetrieveAll(context.Background(), processedQuery(analyzer.StrategyMemoryFirst), memoryContext())

	assert.Len(t, results, 2)
	assert.Equal(t, store.SourceMemory, results[0].Source)
	assert.Equal(t, store.SourceHybrid, results[1].Source)
}

func TestMultiAgentDocumentsFirst(t *testing.T) {
	r := newTestRetriever(&fakeChunkRepo{
		similar: []*contract.ScoredDocumentChunk{scoredChunk("doc hit", 0.2, 0)},
	})

	results := r.RetrieveAll(context.Background(), processedQuery(analyzer.StrategyMultiAgent), memoryContext())

	assert.Len(t, results, 2)
	assert.Equal(t, store.SourceHybrid, results[0].Source)
	assert.Equal(t, store.SourceMemory, results[1].Source)
}

func TestHybridStrategyDocumentsFirst(t *testing.T) {
	r := newTestRetriever(&fakeChunkRepo{
		similar: []*contract.ScoredDocumentChunk{scoredChunk("doc hit", 0.2, 0)},
	})

	results := r.RetrieveAll(context.Background(), processedQuery(analyzer.StrategyHybrid), memoryContext())

	assert.Len(t, results, 2)
	assert.Equal(t, store.SourceHybrid, results[0].Source)
	assert.Equal(t, store.SourceMemory, results[1].Source)
}

func TestMemoryDocumentScoresAndProvenance(t *testing.T) {
	r := newTestRetriever(&fakeChunkRepo{})

	results := r.RetrieveAll(context.Background(), processedQuery(analyzer.StrategyMemoryFirst), memoryContext())
	memoryResult := results[0]

	assert.Equal(t, 0.8, memoryResult.Confidence)
	assert.Len(t, memoryResult.Documents, 3)

	assert.Equal(t, store.SourceSession, memoryResult.Documents[0].Source)
	assert.Equal(t, 0.9, memoryResult.Documents[0].Score)
	assert.Equal(t, "earlier question", memoryResult.Documents[0].Content)

	assert.Equal(t, store.SourceShortTerm, memoryResult.Documents[1].Source)
	assert.Equal(t, 0.7, memoryResult.Documents[1].Score)

	assert.Equal(t, store.SourceConversation, memoryResult.Documents[2].Source)
	assert.Equal(t, 0.82, memoryResult.Documents[2].Score)
}

func TestEmptyMemoryContextKeepsBothSources(t *testing.T) {
	r := newTestRetriever(&fakeChunkRepo{})

	results := r.RetrieveAll(context.Background(), processedQuery(analyzer.StrategyHybrid), &memory.Context{})

	// an empty memory tier still reports its (empty) result so the
	// per-source shape stays uniform
	assert.Len(t, results, 2)
	assert.Equal(t, store.SourceHybrid, results[0].Source)
	assert.Equal(t, store.SourceMemory, results[1].Source)
	assert.Empty(t, results[1].Documents)
	assert.Equal(t, 0.8, results[1].Confidence)
}
