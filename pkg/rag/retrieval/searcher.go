package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/store"
)

// Base confidences per search mode. Hybrid confidence is the alpha-weighted
// blend of the two.
const (
	semanticConfidence = 0.8
	keywordConfidence  = 0.6
)

// Searcher executes vector, lexical and hybrid searches against the document
// corpus. Search failures resolve to an empty result with confidence 0.0
// rather than an error.
type Searcher struct {
	chunks            contract.DocumentChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
	logger            logger.ILogger
}

func NewSearcher(
	chunks contract.DocumentChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	threshold float64,
	log logger.ILogger,
) *Searcher {
	return &Searcher{
		chunks:            chunks,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
		logger:            log,
	}
}

// SemanticSearch runs a vector similarity search against a corpus. Document
// scores are cosine similarity (1 - distance).
func (s *Searcher) SemanticSearch(ctx context.Context, query, corpusID string, topK int) store.RetrievalResult {
	result := store.RetrievalResult{
		Source:   store.SourceSemantic,
		Metadata: map[string]interface{}{},
	}

	resp, err := s.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		s.logger.Warn("retriever", "Query embedding failed", map[string]interface{}{
			"corpus_id": corpusID,
			"error":     err.Error(),
		})
		return result
	}

	maxDistance := 1.0 - s.threshold
	scored, err := s.chunks.SearchSimilar(ctx, resp.Embedding.Values, corpusID, topK, maxDistance, nil)
	if err != nil {
		s.logger.Warn("retriever", "Semantic search failed", map[string]interface{}{
			"corpus_id": corpusID,
			"error":     err.Error(),
		})
		return result
	}

	result.Confidence = semanticConfidence
	for _, hit := range scored {
		result.Documents = append(result.Documents, store.Document{
			ID:      hit.Chunk.Id.String(),
			Title:   hit.Chunk.Title,
			Content: hit.Chunk.Content,
			Source:  store.SourceSemantic,
			Score:   1.0 - hit.Distance,
			Metadata: map[string]interface{}{
				"document_id": hit.Chunk.DocumentId,
				"distance":    hit.Distance,
			},
		})
	}
	return result
}

// KeywordSearch runs a full-text search against a corpus. Document scores
// are the normalized lexical rank in [0,1).
func (s *Searcher) KeywordSearch(ctx context.Context, query, corpusID string, topK int) store.RetrievalResult {
	result := store.RetrievalResult{
		Source:   store.SourceKeyword,
		Metadata: map[string]interface{}{},
	}

	scored, err := s.chunks.SearchKeyword(ctx, query, corpusID, topK, nil)
	if err != nil {
		s.logger.Warn("retriever", "Keyword search failed", map[string]interface{}{
			"corpus_id": corpusID,
			"error":     err.Error(),
		})
		return result
	}

	result.Confidence = keywordConfidence
	for _, hit := range scored {
		result.Documents = append(result.Documents, store.Document{
			ID:      hit.Chunk.Id.String(),
			Title:   hit.Chunk.Title,
			Content: hit.Chunk.Content,
			Source:  store.SourceKeyword,
			Score:   hit.Rank,
			Metadata: map[string]interface{}{
				"document_id": hit.Chunk.DocumentId,
			},
		})
	}
	return result
}

// HybridSearch runs semantic and keyword search concurrently and fuses them.
// Semantic hits are weighted alpha*(1-distance), keyword hits
// (1-alpha)*rank; the merged list is sorted by blended score and truncated
// to topK. Combined confidence is the same alpha-weighted blend of the two
// source confidences.
func (s *Searcher) HybridSearch(ctx context.Context, query, corpusID string, alpha float64, topK int) store.RetrievalResult {
	var wg sync.WaitGroup
	var semantic, keyword store.RetrievalResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic = s.SemanticSearch(ctx, query, corpusID, topK)
	}()
	go func() {
		defer wg.Done()
		keyword = s.KeywordSearch(ctx, query, corpusID, topK)
	}()
	wg.Wait()

	merged := make([]store.Document, 0, len(semantic.Documents)+len(keyword.Documents))
	for _, doc := range semantic.Documents {
		doc.BlendedScore = alpha * doc.Score
		merged = append(merged, doc)
	}
	for _, doc := range keyword.Documents {
		doc.BlendedScore = (1 - alpha) * doc.Score
		merged = append(merged, doc)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BlendedScore > merged[j].BlendedScore
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}

	return store.RetrievalResult{
		Documents:  merged,
		Source:     store.SourceHybrid,
		Confidence: alpha*semantic.Confidence + (1-alpha)*keyword.Confidence,
		Metadata: map[string]interface{}{
			"semantic_hits": len(semantic.Documents),
			"keyword_hits":  len(keyword.Documents),
			"alpha":         fmt.Sprintf("%.2f", alpha),
		},
	}
}
