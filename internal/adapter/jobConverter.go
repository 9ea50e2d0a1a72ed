package adapter

import (
	"fmt"
	"time"

	"github.com/synthiquery/api/internal/api"
	"github.com/synthiquery/api/internal/domain/docModel"
	"github.com/synthiquery/api/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(ragData jobModel.JobPayload) *api.RAGResponse {
	if ragData.Answer == "" && len(ragData.Citations) == 0 {
		return nil
	}

	return &api.RAGResponse{
		Question: ragData.Question,
		Answer:   ragData.Answer,
		Sources:  toCitationResponses(ragData.Citations),
	}
}

func toCitationResponses(citations []jobModel.Citation) []api.CitationResponse {
	if len(citations) == 0 {
		return nil
	}
	result := make([]api.CitationResponse, len(citations))
	for i, c := range citations {
		result[i] = api.CitationResponse{
			DocumentId:   c.DocumentId,
			DocumentName: c.DocumentName,
			Chunk:        c.Seq,
			Score:        c.Score,
			Snippet:      c.Snippet,
		}
	}
	return result
}

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:             doc.Id,
		Name:           doc.Name,
		ByteSize:       doc.ByteSize,
		UploadedAt:     doc.UploadedAt,
		ChunkCount:     doc.ChunkCount,
		FallbackChunks: doc.FallbackChunks,
		Status:         string(doc.Status),
	}
}

func ToDocumentListResponse(docs []docModel.Document) api.DocumentListResponse {
	response := api.DocumentListResponse{
		Documents: make([]api.DocumentResponse, 0, len(docs)),
		Count:     len(docs),
	}
	for _, doc := range docs {
		response.Documents = append(response.Documents, ToDocumentResponse(doc))
	}
	return response
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:              string(api.JobStatusError),
			RAGExternalResponse: ToRAGExternalStatus(jobModel.JobPayload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
