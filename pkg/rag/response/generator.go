package response

import (
	"context"
	"fmt"
	"strings"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/llm"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/store"
)

// Confidence levels per outcome. Conversational replies lean on session
// history rather than retrieved context, so they carry lower confidence.
const (
	factualConfidence               = 0.85
	conversationalConfidence        = 0.75
	insufficientContextConfidence   = 0.3
	conversationalFailureConfidence = 0.4
	generationFailureConfidence     = 0.1

	maxPromptDocuments = 5
	maxHistoryTurns    = 5
)

// Generator builds the agent-specific prompt and invokes the language model.
// It never returns an error: every failure mode resolves to a fixed fallback
// reply with its documented confidence.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, log logger.ILogger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      log,
	}
}

// Generate produces the final reply text and its confidence, dispatching on
// the agent type the analyzer selected.
func (g *Generator) Generate(ctx context.Context, query *analyzer.ProcessedQuery, ranked []store.RankedDocument, memCtx *memory.Context) (string, float64) {
	if query.AgentType == analyzer.AgentConversational {
		return g.conversational(ctx, query, memCtx)
	}
	return g.contextual(ctx, query, ranked)
}

func (g *Generator) conversational(ctx context.Context, query *analyzer.ProcessedQuery, memCtx *memory.Context) (string, float64) {
	var history []llm.Message
	if memCtx != nil && memCtx.SessionMemory != nil {
		turns := memCtx.SessionMemory.ConversationHistory
		if len(turns) > maxHistoryTurns {
			turns = turns[len(turns)-maxHistoryTurns:]
		}
		for _, turn := range turns {
			history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
		}
	}
	history = append(history, llm.Message{Role: constant.MessageRoleUser, Content: query.Original})

	text, err := g.llmProvider.Chat(ctx, history, llm.WithTemperature(0.7))
	if err != nil {
		g.logger.Warn("response_generator", "Conversational generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.ReplyConversationalError, conversationalFailureConfidence
	}
	return text, conversationalConfidence
}

func (g *Generator) contextual(ctx context.Context, query *analyzer.ProcessedQuery, ranked []store.RankedDocument) (string, float64) {
	if len(ranked) == 0 {
		return constant.ReplyInsufficientContext, insufficientContextConfidence
	}

	text, err := g.llmProvider.Generate(ctx, g.buildContextPrompt(query, ranked), llm.WithTemperature(0.3))
	if err != nil {
		g.logger.Warn("response_generator", "Contextual generation failed", map[string]interface{}{
			"agent": string(query.AgentType),
			"error": err.Error(),
		})
		return constant.ReplyGenerationError, generationFailureConfidence
	}
	return text, factualConfidence
}

func (g *Generator) buildContextPrompt(query *analyzer.ProcessedQuery, ranked []store.RankedDocument) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the context below. Cite the sources you use. ")
	sb.WriteString("If the context is insufficient to answer, say so explicitly.\n\nContext:\n")

	limit := len(ranked)
	if limit > maxPromptDocuments {
		limit = maxPromptDocuments
	}
	for i := 0; i < limit; i++ {
		doc := ranked[i]
		fmt.Fprintf(&sb, "[%d] (%s) %s\n", i+1, doc.SourceType, doc.Document.Content)
	}

	fmt.Fprintf(&sb, "\nQuestion: %s", query.Original)
	return sb.String()
}
