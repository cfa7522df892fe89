package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/repository"
	"github.com/medicab/medicab/internal/service"
	"github.com/medicab/medicab/pkg/utils"
)

type PatientHandler struct {
	patientRepo  repository.PatientRepository
	quotaService service.QuotaService
	validate     *validator.Validate
}

func NewPatientHandler(patientRepo repository.PatientRepository, quotaService service.QuotaService) *PatientHandler {
	return &PatientHandler{
		patientRepo:  patientRepo,
		quotaService: quotaService,
		validate:     validator.New(),
	}
}

func (h *PatientHandler) RegisterRoutes(r chi.Router) {
	r.Post("/patients", h.CreatePatient)
	r.Get("/patients/{id}", h.GetPatient)
	r.Get("/patients/{id}/quota", h.GetPatientQuota)
	r.Get("/accounts/{id}/patients", h.ListPatients)
}

// POST /v1/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	patient := &models.Patient{
		AccountID: req.AccountID,
		FullName:  req.FullName,
	}
	if req.Phone != "" {
		patient.Phone = &req.Phone
	}
	if req.SocialSecurity != "" {
		patient.SocialSecurity = &req.SocialSecurity
	}
	if req.Address != "" {
		patient.Address = &req.Address
	}

	if err := h.patientRepo.Create(r.Context(), patient); err != nil {
		utils.InternalError(w, "failed to create patient")
		return
	}

	utils.Created(w, patient)
}

// GET /v1/patients/{id}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "patient id must be a valid uuid")
		return
	}

	patient, err := h.patientRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.InternalError(w, "failed to get patient")
		return
	}
	if patient == nil {
		utils.NotFound(w, "patient")
		return
	}

	utils.Success(w, http.StatusOK, patient)
}

// GET /v1/patients/{id}/quota
func (h *PatientHandler) GetPatientQuota(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "patient id must be a valid uuid")
		return
	}

	eval, err := h.quotaService.EvaluatePatient(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, eval)
}

// GET /v1/accounts/{id}/patients?name=prefix
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(accountID) {
		utils.BadRequest(w, "account id must be a valid uuid")
		return
	}

	var patients []*models.Patient
	var err error

	if prefix := r.URL.Query().Get("name"); prefix != "" {
		patients, err = h.patientRepo.SearchByName(r.Context(), accountID, prefix)
	} else {
		patients, err = h.patientRepo.ListByAccount(r.Context(), accountID)
	}
	if err != nil {
		utils.InternalError(w, "failed to list patients")
		return
	}

	utils.Success(w, http.StatusOK, patients)
}
