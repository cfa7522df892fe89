package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/service"
	"github.com/medicab/medicab/pkg/utils"
)

type DocumentHandler struct {
	documentService service.DocumentService
	validate        *validator.Validate
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		validate:        validator.New(),
	}
}

func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/patients/{id}/documents", h.ListPatientDocuments)
}

// POST /v1/documents
//
// A transport authorization carrying ride_id and prescribed_date goes through
// the temporal validity check; a risky date is refused with 409 temporal_risk
// unless confirm_risk is set.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	document, err := h.documentService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, document.ToResponse())
}

// GET /v1/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "document id must be a valid uuid")
		return
	}

	document, err := h.documentService.GetDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, document.ToResponse())
}

// GET /v1/patients/{id}/documents?type=transport_authorization
func (h *DocumentHandler) ListPatientDocuments(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(patientID) {
		utils.BadRequest(w, "patient id must be a valid uuid")
		return
	}

	documents, err := h.documentService.ListByPatient(r.Context(), patientID, r.URL.Query().Get("type"))
	if err != nil {
		handleError(w, err)
		return
	}

	responses := make([]*models.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		responses = append(responses, d.ToResponse())
	}

	utils.Success(w, http.StatusOK, responses)
}
