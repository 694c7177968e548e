package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	sessionmem "rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/pkg/rag/analyzer"
	"rag-assistant-be/pkg/rag/memory"
	"rag-assistant-be/pkg/rag/rank"
	"rag-assistant-be/pkg/rag/response"
	"rag-assistant-be/pkg/rag/retrieval"
	"rag-assistant-be/pkg/store"
)

// EventPublisher pushes the per-request analytics payload onto the
// in-process bus. Publish failures are logged, never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Request is one query submitted to the pipeline. UserID is the caller's
// external identity and may be empty for anonymous sessions; MaxResults
// caps the source attributions in the response (0 means the configured
// default).
type Request struct {
	Query          string
	SessionID      string
	UserID         string
	MaxResults     int
	IncludeSources bool
}

// Source is one attributed document in the response, truncated to a short
// snippet.
type Source struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// Response is the pipeline's single output shape. It is returned for every
// request, including failed ones (as a degraded response with confidence 0).
type Response struct {
	Query           string                 `json:"query"`
	Response        string                 `json:"response"`
	Sources         []Source               `json:"sources"`
	ConfidenceScore float64                `json:"confidence_score"`
	ProcessingTime  float64                `json:"processing_time"`
	SessionID       string                 `json:"session_id"`
	QueryType       string                 `json:"query_type"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// Config carries the pipeline's tunables, validated at startup.
type Config struct {
	MaxResults     int
	SnippetLength  int
	RequestTimeout time.Duration
}

// Pipeline orchestrates one query end to end: compose memory, analyze,
// retrieve, rank, generate, then detach the memory update. It never returns
// an error: any fault degrades to a zero-confidence response.
type Pipeline struct {
	composer      *memory.Composer
	analyzer      *analyzer.Analyzer
	retriever     *retrieval.Retriever
	ranker        *rank.Ranker
	generator     *response.Generator
	sessions      *sessionmem.SessionStore
	shortTerm     *memory.ShortTermStore
	longTerm      *memory.LongTermStore
	conversations *memory.ConversationMemory
	publisher     EventPublisher
	config        Config
	logger        logger.ILogger
}

func New(
	composer *memory.Composer,
	queryAnalyzer *analyzer.Analyzer,
	retriever *retrieval.Retriever,
	ranker *rank.Ranker,
	generator *response.Generator,
	sessions *sessionmem.SessionStore,
	shortTerm *memory.ShortTermStore,
	longTerm *memory.LongTermStore,
	conversations *memory.ConversationMemory,
	publisher EventPublisher,
	config Config,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		composer:      composer,
		analyzer:      queryAnalyzer,
		retriever:     retriever,
		ranker:        ranker,
		generator:     generator,
		sessions:      sessions,
		shortTerm:     shortTerm,
		longTerm:      longTerm,
		conversations: conversations,
		publisher:     publisher,
		config:        config,
		logger:        log,
	}
}

// Process runs the full pipeline for one request. The caller always gets a
// Response; panics and timeouts resolve to the degraded shape.
func (p *Pipeline) Process(ctx context.Context, req Request) (resp *Response) {
	started := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("query_pipeline", "Pipeline panicked", map[string]interface{}{
				"session_id": req.SessionID,
				"panic":      rec,
			})
			resp = p.degraded(req, started, "panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	defer cancel()

	memCtx := p.composer.Compose(ctx, req.UserID, req.SessionID, req.Query)
	processed := p.analyzer.Analyze(ctx, req.Query)
	results := p.retriever.RetrieveAll(ctx, processed, memCtx)
	ranked := p.ranker.Fuse(req.Query, results)
	text, confidence := p.generator.Generate(ctx, processed, ranked, memCtx)

	if ctx.Err() != nil {
		p.logger.Warn("query_pipeline", "Request deadline exceeded", map[string]interface{}{
			"session_id": req.SessionID,
		})
		return p.degraded(req, started, "timeout")
	}

	resp = &Response{
		Query:           req.Query,
		Response:        text,
		Sources:         p.attribute(req, ranked),
		ConfidenceScore: confidence,
		ProcessingTime:  time.Since(started).Seconds(),
		SessionID:       req.SessionID,
		QueryType:       string(processed.QueryType),
		Metadata: map[string]interface{}{
			"agent_type":     string(processed.AgentType),
			"strategy":       string(processed.Strategy),
			"document_count": len(ranked),
		},
	}

	// Memory update is detached: its failure is logged and never affects
	// the response already handed back.
	go p.updateMemory(req, memCtx, resp)
	return resp
}

func (p *Pipeline) attribute(req Request, ranked []store.RankedDocument) []Source {
	sources := []Source{}
	if !req.IncludeSources {
		return sources
	}

	limit := req.MaxResults
	if limit <= 0 || limit > p.config.MaxResults {
		limit = p.config.MaxResults
	}

	for _, doc := range ranked {
		if len(sources) == limit {
			break
		}
		sources = append(sources, Source{
			ID:      doc.ID,
			Title:   doc.Title,
			Snippet: snippet(doc.Content, p.config.SnippetLength),
			Source:  doc.SourceType,
			Score:   doc.FinalScore,
		})
	}
	return sources
}

func (p *Pipeline) degraded(req Request, started time.Time, tag string) *Response {
	return &Response{
		Query:           req.Query,
		Response:        constant.ReplyPipelineError,
		Sources:         []Source{},
		ConfidenceScore: 0.0,
		ProcessingTime:  time.Since(started).Seconds(),
		SessionID:       req.SessionID,
		QueryType:       string(analyzer.QueryTypeFactual),
		Metadata: map[string]interface{}{
			"error": tag,
		},
	}
}

// updateMemory records the completed exchange across every memory tier and
// emits the analytics event. It runs detached from the request with its own
// timeout.
func (p *Pipeline) updateMemory(req Request, memCtx *memory.Context, resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("query_pipeline", "Memory update panicked", map[string]interface{}{
				"session_id": req.SessionID,
				"panic":      rec,
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.config.RequestTimeout)
	defer cancel()

	p.sessions.AppendTurn(req.SessionID, constant.MessageRoleUser, req.Query)
	p.sessions.AppendTurn(req.SessionID, constant.MessageRoleAssistant, resp.Response)

	if req.UserID != "" {
		p.shortTerm.StoreInteraction(ctx, req.UserID, store.Interaction{
			Type:      store.InteractionQueryResponse,
			Query:     req.Query,
			Response:  resp.Response,
			SessionID: req.SessionID,
			Timestamp: time.Now(),
			Metadata: map[string]interface{}{
				"query_type": resp.QueryType,
				"confidence": resp.ConfidenceScore,
			},
		})

		if memCtx != nil && memCtx.LongTermMemory != nil && memCtx.LongTermMemory.UserProfile != nil {
			user := memCtx.LongTermMemory.UserProfile
			messages := []*entity.Message{
				{Role: constant.MessageRoleUser, Content: req.Query},
				{Role: constant.MessageRoleAssistant, Content: resp.Response},
			}
			if _, err := p.longTerm.RecordExchange(ctx, user.Id, req.SessionID, messages); err != nil {
				p.logger.Warn("query_pipeline", "Failed to persist exchange", map[string]interface{}{
					"session_id": req.SessionID,
					"error":      err.Error(),
				})
			}
			if err := p.conversations.Store(ctx, user.Id, req.SessionID, req.Query, resp.Response); err != nil {
				p.logger.Warn("query_pipeline", "Failed to index exchange for recall", map[string]interface{}{
					"session_id": req.SessionID,
					"error":      err.Error(),
				})
			}
		}
	}

	p.publishInteraction(ctx, req, resp)
}

func (p *Pipeline) publishInteraction(ctx context.Context, req Request, resp *Response) {
	if p.publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":            store.InteractionQueryResponse,
		"session_id":      req.SessionID,
		"user_id":         req.UserID,
		"query":           req.Query,
		"query_type":      resp.QueryType,
		"confidence":      resp.ConfidenceScore,
		"processing_time": resp.ProcessingTime,
		"document_count":  resp.Metadata["document_count"],
		"timestamp":       time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := p.publisher.Publish(ctx, payload); err != nil {
		p.logger.Warn("query_pipeline", "Failed to publish interaction event", map[string]interface{}{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
	}
}

func snippet(content string, max int) string {
	if len(content) <= max {
		return content
	}
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
