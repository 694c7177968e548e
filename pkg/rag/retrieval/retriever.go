package retrieval

import (
	"context"
	"fmt"
	"sync"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/store"
)

// Fixed relevance scores for memory-synthesized documents and the overall
// confidence of the memory source.
const (
	sessionTurnScore       = 0.9
	shortTermScore         = 0.7
	memorySourceConfidence = 0.8
)

// Retriever dispatches document and memory retrieval by strategy. Memory
// "documents" are synthesized straight from the composed context with fixed
// relevance scores; only document retrieval hits external search.
type Retriever struct {
	searcher *Searcher
	corpusID string
	alpha    float64
	topK     int
	logger   logger.ILogger
}

func NewRetriever(searcher *Searcher, corpusID string, alpha float64, topK int, log logger.ILogger) *Retriever {
	return &Retriever{
		searcher: searcher,
		corpusID: corpusID,
		alpha:    alpha,
		topK:     topK,
		logger:   log,
	}
}

// RetrieveAll executes the strategy chosen by the analyzer and returns the
// per-source results in the strategy's documented order.
func (r *Retriever) RetrieveAll(ctx context.Context, query *analyzer.ProcessedQuery, memCtx *memory.Context) []store.RetrievalResult {
	switch query.Strategy {
	case analyzer.StrategyMemoryFirst:
		return r.memoryFirst(ctx, query, memCtx)
	case analyzer.StrategyMultiAgent:
		return r.multiAgent(ctx, query, memCtx)
	default:
		// both sources always report, even when memory is empty, so the
		// per-source shape stays uniform downstream
		return []store.RetrievalResult{r.documents(ctx, query), r.fromMemory(memCtx)}
	}
}

func (r *Retriever) memoryFirst(ctx context.Context, query *analyzer.ProcessedQuery, memCtx *memory.Context) []store.RetrievalResult {
	results := []store.RetrievalResult{r.fromMemory(memCtx)}
	return append(results, r.documents(ctx, query))
}

func (r *Retriever) multiAgent(ctx context.Context, query *analyzer.ProcessedQuery, memCtx *memory.Context) []store.RetrievalResult {
	var wg sync.WaitGroup
	var documents, memoryResult store.RetrievalResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		documents = r.documents(ctx, query)
	}()
	go func() {
		defer wg.Done()
		memoryResult = r.fromMemory(memCtx)
	}()
	wg.Wait()

	return []store.RetrievalResult{documents, memoryResult}
}

func (r *Retriever) documents(ctx context.Context, query *analyzer.ProcessedQuery) store.RetrievalResult {
	return r.searcher.HybridSearch(ctx, query.Original, r.corpusID, r.alpha, r.topK)
}

// fromMemory synthesizes a retrieval result from the composed memory
// context: session turns, short-term interactions and recalled past
// exchanges, in that order.
func (r *Retriever) fromMemory(memCtx *memory.Context) store.RetrievalResult {
	result := store.RetrievalResult{
		Source:     store.SourceMemory,
		Confidence: memorySourceConfidence,
		Metadata:   map[string]interface{}{},
	}
	if memCtx == nil {
		return result
	}

	if memCtx.SessionMemory != nil {
		for i, turn := range memCtx.SessionMemory.ConversationHistory {
			result.Documents = append(result.Documents, store.Document{
				ID:      fmt.Sprintf("session_turn_%d", i),
				Title:   fmt.Sprintf("Session turn (%s)", turn.Role),
				Content: turn.Content,
				Source:  store.SourceSession,
				Score:   sessionTurnScore,
				Metadata: map[string]interface{}{
					"role": turn.Role,
				},
			})
		}
	}

	if memCtx.ShortTermMemory != nil {
		for i, interaction := range memCtx.ShortTermMemory.RecentInteractions {
			result.Documents = append(result.Documents, store.Document{
				ID:      fmt.Sprintf("short_term_%d", i),
				Title:   interaction.Query,
				Content: fmt.Sprintf("Q: %s\nA: %s", interaction.Query, interaction.Response),
				Source:  store.SourceShortTerm,
				Score:   shortTermScore,
				Metadata: map[string]interface{}{
					"session_id": interaction.SessionID,
				},
			})
		}
	}

	result.Documents = append(result.Documents, memCtx.ConversationMemory...)
	return result
}
