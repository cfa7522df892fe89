package service

import (
	"context"
	"log"
	"time"

	"github.com/medicab/medicab/internal/cache"
	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/quota"
	"github.com/medicab/medicab/internal/repository"
)

// QuotaService loads fresh ride/document snapshots and runs the quota engine
// over them. Caching lives here, on the caller side of the engine, and is
// best-effort: a cache failure falls through to a fresh evaluation.
type QuotaService interface {
	EvaluateRide(ctx context.Context, rideID string) (*models.QuotaEvaluation, error)
	EvaluatePatient(ctx context.Context, patientID string) (*models.QuotaEvaluation, error)
}

type quotaService struct {
	engine       quota.Engine
	rideRepo     repository.RideRepository
	documentRepo repository.DocumentRepository
	patientRepo  repository.PatientRepository
	evalCache    cache.EvaluationCache
}

func NewQuotaService(
	engine quota.Engine,
	rideRepo repository.RideRepository,
	documentRepo repository.DocumentRepository,
	patientRepo repository.PatientRepository,
	evalCache cache.EvaluationCache,
) QuotaService {
	return &quotaService{
		engine:       engine,
		rideRepo:     rideRepo,
		documentRepo: documentRepo,
		patientRepo:  patientRepo,
		evalCache:    evalCache,
	}
}

func (s *quotaService) EvaluateRide(ctx context.Context, rideID string) (*models.QuotaEvaluation, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if s.evalCache != nil {
		if cached, err := s.evalCache.Get(ctx, ride.ID); err == nil && cached != nil {
			return cached, nil
		}
	}

	eval, err := s.evaluate(ctx, ride)
	if err != nil {
		return nil, err
	}

	if s.evalCache != nil {
		if err := s.evalCache.Set(ctx, ride.ID, ride.PatientID, eval); err != nil {
			log.Printf("failed to cache quota evaluation for ride %s: %v", ride.ID, err)
		}
	}

	return eval, nil
}

// EvaluatePatient evaluates the patient's next upcoming authorization-requiring
// ride. With no such ride pending, the authorization state alone is reported:
// missing when no BT is on file, otherwise the most recent BT's standing.
func (s *quotaService) EvaluatePatient(ctx context.Context, patientID string) (*models.QuotaEvaluation, error) {
	patient, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	rides, err := s.rideRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	target := nextEvaluableRide(rides, time.Now())
	if target == nil {
		// Synthesize an upcoming one-way ride so the engine still reports
		// the authorization standing for the patient card.
		target = &models.Ride{
			ID:            "patient-standing",
			PatientID:     patientID,
			ScheduledDate: time.Now(),
			Kind:          models.RideKindOneWay,
			Status:        models.RideStatusScheduled,
		}
	}

	return s.evaluate(ctx, target)
}

func (s *quotaService) evaluate(ctx context.Context, ride *models.Ride) (*models.QuotaEvaluation, error) {
	documents, err := s.documentRepo.ListByPatientAndType(ctx, ride.PatientID, models.DocumentTypeTransportAuthorization)
	if err != nil {
		return nil, err
	}
	rides, err := s.rideRepo.ListByPatient(ctx, ride.PatientID)
	if err != nil {
		return nil, err
	}

	return s.engine.Evaluate(ride, documents, rides)
}

func nextEvaluableRide(rides []*models.Ride, now time.Time) *models.Ride {
	var next *models.Ride
	for _, r := range rides {
		if !models.RequiresAuthorization(r.Kind) || !r.IsActive() {
			continue
		}
		if r.ScheduledDate.Before(now) {
			continue
		}
		if next == nil || r.ScheduledDate.Before(next.ScheduledDate) {
			next = r
		}
	}
	return next
}
