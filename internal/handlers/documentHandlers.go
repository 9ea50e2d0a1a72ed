package handlers

import (
	"errors"
	"net/http"

	"github.com/synthiquery/api/internal/adapter"
	"github.com/synthiquery/api/internal/adapter/utils"
	"github.com/synthiquery/api/internal/api"
	"github.com/synthiquery/api/internal/domain/ragerror"
)

// ListDocumentsHandler godoc
// @Summary      List documents
// @Description  Returns every registered document in upload order with its chunk counts and status.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.JobResponse "Registry read error"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docs, err := handlerInstance.ragService.ListDocuments(r.Context())
		if err != nil {
			logRH.Error("Failed to list documents", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document's vectors from the index and then its registry record. Deleting an unknown id is a no-op.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DeleteDocumentResponse
// @Failure      409  {object}  api.JobResponse "Document is being ingested"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		documentId := utils.GetChiURLParam(r, "id")
		if documentId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Document id is required")
			return
		}

		found, err := handlerInstance.ragService.DeleteDocument(r.Context(), documentId)
		if err != nil {
			if errors.Is(err, ragerror.ErrAlreadyProcessing) {
				WriteErrorResponse(w, http.StatusConflict, documentId, "Document is currently being ingested")
				return
			}
			logRH.Error("Failed to delete document", "id", documentId, "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Could not delete document")
			return
		}
		// an unknown id is a clean no-op, not an error
		writeJsonResponse(w, http.StatusOK, api.DeleteDocumentResponse{Id: documentId, Deleted: found})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ResetHandler godoc
// @Summary      Reset the system
// @Description  Clears the vector index, the document registry, and chat history. Refused while an ingestion is in flight.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  api.ResetResponse
// @Failure      409  {object}  api.JobResponse "Ingestion in progress"
// @Router       /reset [post]
func ResetHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		if err := handlerInstance.ragService.Reset(r.Context()); err != nil {
			if errors.Is(err, ragerror.ErrAlreadyProcessing) {
				WriteErrorResponse(w, http.StatusConflict, "", "Cannot reset while an ingestion is in progress")
				return
			}
			logRH.Error("Failed to reset", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Reset failed")
			return
		}

		if err := handlerInstance.service.MessageStore.ResetAll(r.Context()); err != nil {
			// vectors and registry are already gone, report success but log it
			logRH.Error("Failed to clear chat history during reset", "err", err)
		}

		writeJsonResponse(w, http.StatusOK, api.ResetResponse{Reset: true})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// DiagnosticsHandler godoc
// @Summary      System diagnostics
// @Description  Reports per-document health, fallback chunk fraction, and registry/index consistency.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  registry.Report
// @Failure      500  {object}  api.JobResponse "Diagnostics error"
// @Router       /diagnostics [get]
func DiagnosticsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		report, err := handlerInstance.ragService.Diagnostics(r.Context())
		if err != nil {
			logRH.Error("Diagnostics failed", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Diagnostics failed")
			return
		}
		writeJsonResponse(w, http.StatusOK, report)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}
