package rank

import (
	"sort"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/store"
)

// Composite score weights. Memory bonus rewards session and short-term
// provenance; length bonus rewards content in a readable range.
const (
	weightBlended    = 0.4
	weightConfidence = 0.3
	weightMemory     = 0.2
	weightLength     = 0.1

	minContentLength = 50
	maxContentLength = 1000
)

// Ranker fuses multi-source retrieval results into one ordered list.
type Ranker struct {
	enabled bool
	maxDocs int
	logger  logger.ILogger
}

func NewRanker(enabled bool, maxDocs int, log logger.ILogger) *Ranker {
	return &Ranker{
		enabled: enabled,
		maxDocs: maxDocs,
		logger:  log,
	}
}

// Fuse scores every candidate across all sources and returns them sorted
// non-increasing by composite score, truncated to the configured maximum.
// Ties keep the original (source, position) order. With reranking disabled,
// or if scoring panics, the sources are simply concatenated in order.
func (r *Ranker) Fuse(query string, results []store.RetrievalResult) (ranked []store.RankedDocument) {
	if !r.enabled {
		return r.concat(results)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("ranker", "Reranking panicked, falling back to concatenation", map[string]interface{}{
				"panic": rec,
			})
			ranked = r.concat(results)
		}
	}()

	for _, result := range results {
		for _, doc := range result.Documents {
			ranked = append(ranked, store.RankedDocument{
				Document:         doc,
				SourceType:       result.Source,
				SourceConfidence: result.Confidence,
				FinalScore:       compositeScore(doc, result.Confidence),
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	if len(ranked) > r.maxDocs {
		ranked = ranked[:r.maxDocs]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func (r *Ranker) concat(results []store.RetrievalResult) []store.RankedDocument {
	var ranked []store.RankedDocument
	for _, result := range results {
		for _, doc := range result.Documents {
			ranked = append(ranked, store.RankedDocument{
				Document:         doc,
				SourceType:       result.Source,
				SourceConfidence: result.Confidence,
				FinalScore:       doc.Score,
				Rank:             len(ranked) + 1,
			})
		}
	}
	return ranked
}

func compositeScore(doc store.Document, sourceConfidence float64) float64 {
	blended := doc.BlendedScore
	if blended == 0 {
		blended = doc.Score
	}

	score := weightBlended*blended + weightConfidence*sourceConfidence
	if doc.Source == store.SourceSession || doc.Source == store.SourceShortTerm {
		score += weightMemory
	}
	if length := len(doc.Content); length >= minContentLength && length <= maxContentLength {
		score += weightLength
	}
	return score
}
