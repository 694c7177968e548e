package analyzer

import (
	"context"
	"fmt"
	"strings"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/llm"
)

const maxExpansions = 3

// Analyzer classifies a query, expands it into paraphrase variants and picks
// the retrieval strategy and response agent. It is stateless across requests
// and never returns an error: any failed model call degrades to the
// documented defaults (FACTUAL category, original query only).
type Analyzer struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewAnalyzer(llmProvider llm.LLMProvider, log logger.ILogger) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Analyze runs classification, expansion and strategy selection for a query.
func (a *Analyzer) Analyze(ctx context.Context, query string) *ProcessedQuery {
	queryType := a.classify(ctx, query)
	strategy, agent := Route(queryType)

	return &ProcessedQuery{
		Original:        query,
		ExpandedQueries: a.expand(ctx, query),
		QueryType:       queryType,
		Strategy:        strategy,
		AgentType:       agent,
		Metadata:        map[string]interface{}{},
	}
}

func (a *Analyzer) classify(ctx context.Context, query string) QueryType {
	prompt := fmt.Sprintf(`Classify the following query into exactly one category.
Categories: FACTUAL, CONVERSATIONAL, ANALYTICAL, MULTIMODAL.
Respond with the category name only, nothing else.

Query: %s`, query)

	raw, err := a.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		a.logger.Warn("query_analyzer", "Classification call failed, defaulting to FACTUAL", map[string]interface{}{
			"error": err.Error(),
		})
		return QueryTypeFactual
	}

	queryType, ok := ParseQueryType(raw)
	if !ok {
		a.logger.Warn("query_analyzer", "Unrecognized classification label, defaulting to FACTUAL", map[string]interface{}{
			"label": strings.TrimSpace(raw),
		})
	}
	return queryType
}

func (a *Analyzer) expand(ctx context.Context, query string) []string {
	expanded := []string{query}

	prompt := fmt.Sprintf(`Rephrase the following query in up to %d alternative ways that preserve its meaning.
Return one rephrasing per line, with no numbering and no commentary.

Query: %s`, maxExpansions, query)

	raw, err := a.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil {
		a.logger.Warn("query_analyzer", "Query expansion failed, using original only", map[string]interface{}{
			"error": err.Error(),
		})
		return expanded
	}

	for _, line := range strings.Split(raw, "\n") {
		variant := strings.TrimSpace(line)
		if variant == "" || strings.EqualFold(variant, query) {
			continue
		}
		expanded = append(expanded, variant)
		if len(expanded) == maxExpansions+1 {
			break
		}
	}
	return expanded
}

func normalizeLabel(label string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(label), `."'`))
}
