package dto

type IndexDocumentRequest struct {
	DocumentId string                 `json:"document_id" validate:"required"`
	Title      string                 `json:"title" validate:"required"`
	Content    string                 `json:"content" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type IndexDocumentResponse struct {
	DocumentId string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}
