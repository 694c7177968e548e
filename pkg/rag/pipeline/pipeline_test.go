package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/contract"
	sessionmem "rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/llm"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/rag/rank"
	"rag-assistant-be/pkg/rag/response"
	"rag-assistant-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	classifyReply string
	generateReply string
	generateErr   error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.generateReply, f.generateErr
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if len(prompt) >= 8 && prompt[:8] == "Classify" {
		return f.classifyReply, nil
	}
	return f.generateReply, f.generateErr
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}

type fakeChunkRepo struct {
	similar []*contract.ScoredDocumentChunk
}

func (f *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}
func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId string) error { return nil }
func (f *fakeChunkRepo) DeleteByUserId(ctx context.Context, userId uuid.UUID) error      { return nil }
func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, emb []float32, corpusId string, limit int, maxDistance float64, userId *uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	if userId != nil {
		return nil, nil
	}
	return f.similar, nil
}
func (f *fakeChunkRepo) SearchKeyword(ctx context.Context, query string, corpusId string, limit int, userId *uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	return nil, nil
}

// stubFactory must never be reached by anonymous-request tests.
type stubFactory struct{}

func (stubFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	panic("unexpected unit of work access")
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, append([]byte(nil), payload...))
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func newTestPipeline(provider llm.LLMProvider, repo *fakeChunkRepo, timeout time.Duration) (*Pipeline, *sessionmem.SessionStore, *capturingPublisher) {
	log := logger.NewNopLogger()
	sessions := sessionmem.NewSessionStore(time.Hour, time.Hour, 50)
	shortTerm := memory.NewShortTermStore(nil, 24*time.Hour, 100, log)
	longTerm := memory.NewLongTermStore(stubFactory{}, log)
	conversations := memory.NewConversationMemory(repo, fakeEmbedder{}, "conversations", 0.7, log)
	composer := memory.NewComposer(sessions, shortTerm, longTerm, conversations, 100, 10, 5, log)

	searcher := retrieval.NewSearcher(repo, fakeEmbedder{}, 0.7, log)
	retriever := retrieval.NewRetriever(searcher, "documents", 0.6, 10, log)
	ranker := rank.NewRanker(true, 10, log)
	generator := response.NewGenerator(provider, log)
	publisher := &capturingPublisher{}

	p := New(
		composer,
		analyzer.NewAnalyzer(provider, log),
		retriever,
		ranker,
		generator,
		sessions,
		shortTerm,
		longTerm,
		conversations,
		publisher,
		Config{MaxResults: 5, SnippetLength: 200, RequestTimeout: timeout},
		log,
	)
	return p, sessions, publisher
}

func documentHit(content string) *contract.ScoredDocumentChunk {
	return &contract.ScoredDocumentChunk{
		Chunk: &entity.DocumentChunk{
			Id:      uuid.New(),
			Title:   "doc",
			Content: content,
		},
		Distance: 0.2,
	}
}

func TestProcessAnonymousQuery(t *testing.T) {
	provider := &fakeLLM{classifyReply: "FACTUAL", generateReply: "Sunny with a light breeze."}
	p, _, _ := newTestPipeline(provider, &fakeChunkRepo{}, 5*time.Second)

	resp := p.Process(context.Background(), Request{
		Query:          "What is the weather like today?",
		SessionID:      "session-1",
		IncludeSources: true,
	})

	require.NotNil(t, resp)
	assert.Equal(t, "What is the weather like today?", resp.Query)
	assert.Equal(t, "session-1", resp.SessionID)
	assert.Contains(t, []string{"FACTUAL", "CONVERSATIONAL", "ANALYTICAL", "MULTIMODAL"}, resp.QueryType)
	assert.GreaterOrEqual(t, resp.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, resp.ConfidenceScore, 1.0)
	// no documents and no user memory: sources stay empty
	assert.Empty(t, resp.Sources)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)
}

func TestProcessFactualNoDocumentsGenerationUnavailable(t *testing.T) {
	provider := &fakeLLM{classifyReply: "FACTUAL", generateErr: errors.New("model offline")}
	p, _, _ := newTestPipeline(provider, &fakeChunkRepo{}, 5*time.Second)

	resp := p.Process(context.Background(), Request{
		Query:     "obscure question",
		SessionID: "session-1",
	})

	assert.Equal(t, constant.ReplyInsufficientContext, resp.Response)
	assert.Equal(t, 0.3, resp.ConfidenceScore)
}

func TestProcessAttributesSources(t *testing.T) {
	repo := &fakeChunkRepo{similar: []*contract.ScoredDocumentChunk{
		documentHit("a relevant passage about the topic, long enough to matter"),
	}}
	provider := &fakeLLM{classifyReply: "FACTUAL", generateReply: "Answer based on [1]."}
	p, _, _ := newTestPipeline(provider, repo, 5*time.Second)

	resp := p.Process(context.Background(), Request{
		Query:          "topic question",
		SessionID:      "session-1",
		IncludeSources: true,
	})

	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "doc", resp.Sources[0].Title)
	assert.NotEmpty(t, resp.Sources[0].Snippet)
	assert.Equal(t, 1, resp.Metadata["document_count"])
}

func TestProcessTimeoutDegrades(t *testing.T) {
	provider := &fakeLLM{classifyReply: "FACTUAL", generateReply: "too late"}
	p, _, _ := newTestPipeline(provider, &fakeChunkRepo{}, time.Nanosecond)

	resp := p.Process(context.Background(), Request{
		Query:     "anything",
		SessionID: "session-1",
	})

	assert.Equal(t, constant.ReplyPipelineError, resp.Response)
	assert.Equal(t, 0.0, resp.ConfidenceScore)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, "timeout", resp.Metadata["error"])
}

func TestProcessAppendsSessionTurns(t *testing.T) {
	provider := &fakeLLM{classifyReply: "FACTUAL", generateReply: "the answer"}
	repo := &fakeChunkRepo{similar: []*contract.ScoredDocumentChunk{
		documentHit("supporting content for the generated answer here"),
	}}
	p, sessions, publisher := newTestPipeline(provider, repo, 5*time.Second)

	resp := p.Process(context.Background(), Request{
		Query:     "remember this",
		SessionID: "session-1",
	})
	require.Equal(t, "the answer", resp.Response)

	assert.Eventually(t, func() bool {
		history := sessions.Get("session-1").ConversationHistory
		return len(history) == 2 && publisher.count() == 1
	}, time.Second, 10*time.Millisecond)

	history := sessions.Get("session-1").ConversationHistory
	assert.Equal(t, constant.MessageRoleUser, history[0].Role)
	assert.Equal(t, "remember this", history[0].Content)
	assert.Equal(t, constant.MessageRoleAssistant, history[1].Role)
	assert.Equal(t, "the answer", history[1].Content)
}

func TestProcessConversationalUsesMemoryFirst(t *testing.T) {
	provider := &fakeLLM{classifyReply: "CONVERSATIONAL", generateReply: "nice to chat"}
	p, sessions, _ := newTestPipeline(provider, &fakeChunkRepo{}, 5*time.Second)
	sessions.AppendTurn("session-1", "user", "hi")
	sessions.AppendTurn("session-1", "assistant", "hello")

	resp := p.Process(context.Background(), Request{
		Query:     "how are you?",
		SessionID: "session-1",
	})

	assert.Equal(t, "nice to chat", resp.Response)
	assert.Equal(t, 0.75, resp.ConfidenceScore)
	assert.Equal(t, "CONVERSATIONAL", resp.QueryType)
	assert.Equal(t, string(analyzer.StrategyMemoryFirst), resp.Metadata["strategy"])
}
