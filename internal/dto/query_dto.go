package dto

type ProcessQueryRequest struct {
	Query          string `json:"query" validate:"required"`
	SessionId      string `json:"session_id" validate:"required"`
	UserId         string `json:"user_id"`
	MaxResults     int    `json:"max_results" validate:"omitempty,min=1,max=20"`
	IncludeSources *bool  `json:"include_sources"`
}

type SourceDocumentResponse struct {
	Id      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

type ProcessQueryResponse struct {
	Query           string                   `json:"query"`
	Response        string                   `json:"response"`
	Sources         []SourceDocumentResponse `json:"sources"`
	ConfidenceScore float64                  `json:"confidence_score"`
	ProcessingTime  float64                  `json:"processing_time"`
	SessionId       string                   `json:"session_id"`
	QueryType       string                   `json:"query_type"`
	Metadata        map[string]interface{}   `json:"metadata"`
}

type ClearSessionResponse struct {
	SessionId string `json:"session_id"`
}
