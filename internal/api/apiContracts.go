package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type CitationResponse struct {
	DocumentId   string  `json:"document_id" example:"doc-1f0a9c2b44de"`
	DocumentName string  `json:"document_name" example:"report.pdf"`
	Chunk        int     `json:"chunk" example:"2"`
	Score        float32 `json:"score" example:"0.87"`
	Snippet      string  `json:"snippet"`
}

type RAGResponse struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Sources  []CitationResponse `json:"sources,omitempty"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	Id             string    `json:"id" example:"doc-1f0a9c2b44de"`
	Name           string    `json:"name" example:"report.pdf"`
	ByteSize       int64     `json:"byte_size"`
	UploadedAt     time.Time `json:"uploaded_at"`
	ChunkCount     int       `json:"chunk_count"`
	FallbackChunks int       `json:"fallback_chunks"`
	Status         string    `json:"status" example:"processed"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

type DeleteDocumentResponse struct {
	Id      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ResetResponse struct {
	Reset bool `json:"reset"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
}
type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
}
