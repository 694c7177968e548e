package response

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/llm"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

type fakeLLM struct {
	reply       string
	err         error
	lastPrompt  string
	lastHistory []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.lastHistory = history
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func factualQuery() *analyzer.ProcessedQuery {
	return &analyzer.ProcessedQuery{
		Original:  "what is Go?",
		QueryType: analyzer.QueryTypeFactual,
		AgentType: analyzer.AgentFactual,
	}
}

func conversationalQuery() *analyzer.ProcessedQuery {
	return &analyzer.ProcessedQuery{
		Original:  "how are you?",
		QueryType: analyzer.QueryTypeConversational,
		AgentType: analyzer.AgentConversational,
	}
}

func rankedDocs(n int) []store.RankedDocument {
	docs := make([]store.RankedDocument, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, store.RankedDocument{
			Document: store.Document{
				ID:      "d",
				Content: "some document content",
				Source:  store.SourceSemantic,
			},
			SourceType: store.SourceHybrid,
			Rank:       i + 1,
		})
	}
	return docs
}

func TestFactualSuccess(t *testing.T) {
	g := NewGenerator(&fakeLLM{reply: "Go is a programming language."}, logger.NewNopLogger())

	text, confidence := g.Generate(context.Background(), factualQuery(), rankedDocs(2), nil)

	assert.Equal(t, "Go is a programming language.", text)
	assert.Equal(t, 0.85, confidence)
}

func TestFactualNoDocuments(t *testing.T) {
	provider := &fakeLLM{reply: "should not be called"}
	g := NewGenerator(provider, logger.NewNopLogger())

	text, confidence := g.Generate(context.Background(), factualQuery(), nil, nil)

	assert.Equal(t, constant.ReplyInsufficientContext, text)
	assert.Equal(t, 0.3, confidence)
	assert.Empty(t, provider.lastPrompt)
}

func TestFactualGenerationFailure(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: errors.New("model offline")}, logger.NewNopLogger())

	text, confidence := g.Generate(context.Background(), factualQuery(), rankedDocs(1), nil)

	assert.Equal(t, constant.ReplyGenerationError, text)
	assert.Equal(t, 0.1, confidence)
}

func TestFactualPromptUsesTopFiveDocuments(t *testing.T) {
	provider := &fakeLLM{reply: "ok"}
	g := NewGenerator(provider, logger.NewNopLogger())

	g.Generate(context.Background(), factualQuery(), rankedDocs(8), nil)

	assert.Contains(t, provider.lastPrompt, "[5]")
	assert.NotContains(t, provider.lastPrompt, "[6]")
	assert.Contains(t, provider.lastPrompt, "Cite the sources")
	assert.Contains(t, provider.lastPrompt, "what is Go?")
}

func TestConversationalSuccess(t *testing.T) {
	provider := &fakeLLM{reply: "Doing great!"}
	g := NewGenerator(provider, logger.NewNopLogger())

	memCtx := &memory.Context{
		SessionMemory: &store.SessionContext{
			ID: "s1",
			ConversationHistory: []store.Turn{
				{Role: "user", Content: "hello", Timestamp: time.Now()},
				{Role: "assistant", Content: "hi", Timestamp: time.Now()},
			},
		},
	}

	text, confidence := g.Generate(context.Background(), conversationalQuery(), nil, memCtx)

	assert.Equal(t, "Doing great!", text)
	assert.Equal(t, 0.75, confidence)
	// history turns plus the current query
	assert.Len(t, provider.lastHistory, 3)
	assert.Equal(t, "how are you?", provider.lastHistory[2].Content)
}

func TestConversationalUsesLastFiveTurns(t *testing.T) {
	provider := &fakeLLM{reply: "ok"}
	g := NewGenerator(provider, logger.NewNopLogger())

	var turns []store.Turn
	for i := 0; i < 9; i++ {
		turns = append(turns, store.Turn{Role: "user", Content: strings.Repeat("x", i+1)})
	}
	memCtx := &memory.Context{
		SessionMemory: &store.SessionContext{ID: "s1", ConversationHistory: turns},
	}

	g.Generate(context.Background(), conversationalQuery(), nil, memCtx)

	assert.Len(t, provider.lastHistory, 6)
	// oldest turn in the window is the fifth from the end
	assert.Equal(t, strings.Repeat("x", 5), provider.lastHistory[0].Content)
}

func TestConversationalFailure(t *testing.T) {
	g := NewGenerator(&fakeLLM{err: errors.New("model offline")}, logger.NewNopLogger())

	text, confidence := g.Generate(context.Background(), conversationalQuery(), nil, &memory.Context{})

	assert.Equal(t, constant.ReplyConversationalError, text)
	assert.Equal(t, 0.4, confidence)
}
