package service

import (
	"context"
	"log"

	"github.com/medicab/medicab/internal/cache"
	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/quota"
	"github.com/medicab/medicab/internal/repository"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, req *models.CreateDocumentRequest) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListByPatient(ctx context.Context, patientID, docType string) ([]*models.Document, error)
}

type documentService struct {
	documentRepo repository.DocumentRepository
	patientRepo  repository.PatientRepository
	rideRepo     repository.RideRepository
	evalCache    cache.EvaluationCache
}

func NewDocumentService(
	documentRepo repository.DocumentRepository,
	patientRepo repository.PatientRepository,
	rideRepo repository.RideRepository,
	evalCache cache.EvaluationCache,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		patientRepo:  patientRepo,
		rideRepo:     rideRepo,
		evalCache:    evalCache,
	}
}

// CreateDocument records a scanned document. For transport authorizations
// attached to a ride with a prescribed date, the temporal validity check runs
// first: a prescription dated after its ride is rejected unless the request
// carries confirm_risk, and an acknowledged risk is recorded on the document.
func (s *documentService) CreateDocument(ctx context.Context, req *models.CreateDocumentRequest) (*models.Document, error) {
	patient, err := s.patientRepo.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	if req.Type == models.DocumentTypeTransportAuthorization && req.MaxAuthorizedTrips <= 0 {
		return nil, apperrors.BadRequest("transport authorization requires max_authorized_trips")
	}

	document := &models.Document{
		AccountID:          req.AccountID,
		PatientID:          req.PatientID,
		Type:               req.Type,
		MaxAuthorizedTrips: req.MaxAuthorizedTrips,
		PrescribedDate:     req.PrescribedDate,
	}

	if req.StorageKey != "" {
		document.StorageKey = &req.StorageKey
	}

	if req.RideID != nil {
		ride, err := s.rideRepo.GetByID(ctx, *req.RideID)
		if err != nil {
			return nil, err
		}
		if ride == nil {
			return nil, apperrors.NotFound("ride")
		}
		if ride.PatientID != req.PatientID {
			return nil, apperrors.BadRequest("ride belongs to another patient")
		}
		document.RideID = req.RideID

		if req.Type == models.DocumentTypeTransportAuthorization {
			if req.PrescribedDate == nil {
				return nil, apperrors.BadRequest("prescribed_date is required to attach an authorization to a ride")
			}

			if quota.CheckTemporalValidity(ride.ScheduledDate, *req.PrescribedDate) {
				if !req.ConfirmRisk {
					return nil, apperrors.ErrTemporalRisk
				}
				document.RiskAcknowledged = true
			}
		}
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, err
	}

	if s.evalCache != nil {
		if err := s.evalCache.InvalidatePatient(ctx, req.PatientID); err != nil {
			log.Printf("failed to invalidate quota cache for patient %s: %v", req.PatientID, err)
		}
	}

	return document, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperrors.NotFound("document")
	}
	return document, nil
}

func (s *documentService) ListByPatient(ctx context.Context, patientID, docType string) ([]*models.Document, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	if docType != "" {
		return s.documentRepo.ListByPatientAndType(ctx, patientID, docType)
	}
	return s.documentRepo.ListByPatient(ctx, patientID)
}
