package service

import (
	"context"
	"fmt"
	"time"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	chunkSize    = 1000
	chunkOverlap = 150
)

// IDocumentService ingests documents into the searchable corpus.
type IDocumentService interface {
	Index(ctx context.Context, request *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	corpusID          string
	logger            logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	corpusID string,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		corpusID:          corpusID,
		logger:            log,
	}
}

// Index splits the document into overlapping chunks, embeds each one and
// replaces any chunks previously stored under the same document id. The
// replace runs in one transaction so a re-index never leaves a partial
// document behind.
func (s *documentService) Index(ctx context.Context, request *dto.IndexDocumentRequest) (*dto.IndexDocumentResponse, error) {
	pieces := utils.SplitText(request.Content, chunkSize, chunkOverlap)

	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		resp, err := s.embeddingProvider.Generate(piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: request.DocumentId,
			CorpusId:   s.corpusID,
			Title:      request.Title,
			Content:    piece,
			ChunkIndex: i,
			Embedding:  resp.Embedding.Values,
			Metadata:   request.Metadata,
			CreatedAt:  time.Now(),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, request.DocumentId); err != nil {
		return nil, fmt.Errorf("failed to remove stale chunks: %w", err)
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("document_service", "Document indexed", map[string]interface{}{
		"document_id": request.DocumentId,
		"chunk_count": len(chunks),
	})

	return &dto.IndexDocumentResponse{
		DocumentId: request.DocumentId,
		ChunkCount: len(chunks),
	}, nil
}
