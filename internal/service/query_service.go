package service

import (
	"context"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/logger"
	sessionmem "rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/pkg/rag/pipeline"
)

// IQueryService is the transport-facing surface of the query pipeline.
type IQueryService interface {
	Process(ctx context.Context, request *dto.ProcessQueryRequest) *dto.ProcessQueryResponse
	ClearSession(ctx context.Context, sessionId string) *dto.ClearSessionResponse
}

type queryService struct {
	pipeline *pipeline.Pipeline
	sessions *sessionmem.SessionStore
	logger   logger.ILogger
}

func NewQueryService(p *pipeline.Pipeline, sessions *sessionmem.SessionStore, log logger.ILogger) IQueryService {
	return &queryService{
		pipeline: p,
		sessions: sessions,
		logger:   log,
	}
}

func (s *queryService) Process(ctx context.Context, request *dto.ProcessQueryRequest) *dto.ProcessQueryResponse {
	includeSources := true
	if request.IncludeSources != nil {
		includeSources = *request.IncludeSources
	}

	result := s.pipeline.Process(ctx, pipeline.Request{
		Query:          request.Query,
		SessionID:      request.SessionId,
		UserID:         request.UserId,
		MaxResults:     request.MaxResults,
		IncludeSources: includeSources,
	})

	sources := make([]dto.SourceDocumentResponse, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, dto.SourceDocumentResponse{
			Id:      src.ID,
			Title:   src.Title,
			Snippet: src.Snippet,
			Source:  src.Source,
			Score:   src.Score,
		})
	}

	return &dto.ProcessQueryResponse{
		Query:           result.Query,
		Response:        result.Response,
		Sources:         sources,
		ConfidenceScore: result.ConfidenceScore,
		ProcessingTime:  result.ProcessingTime,
		SessionId:       result.SessionID,
		QueryType:       result.QueryType,
		Metadata:        result.Metadata,
	}
}

func (s *queryService) ClearSession(ctx context.Context, sessionId string) *dto.ClearSessionResponse {
	s.sessions.Clear(sessionId)
	s.logger.Info("query_service", "Session cleared", map[string]interface{}{
		"session_id": sessionId,
	})
	return &dto.ClearSessionResponse{SessionId: sessionId}
}
