package service

import (
	"context"
	"log"
	"time"

	"github.com/medicab/medicab/internal/cache"
	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/repository"
)

type RideService interface {
	CreateRide(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, id string) (*models.RideResponse, error)
	ListUpcoming(ctx context.Context, accountID string) ([]*models.RideResponse, error)
	StartRide(ctx context.Context, id string) error
	FinishRide(ctx context.Context, id string, req *models.FinishRideRequest) error
	CancelRide(ctx context.Context, id string, req *models.CancelRideRequest) error
}

type rideService struct {
	rideRepo    repository.RideRepository
	patientRepo repository.PatientRepository
	accountRepo repository.AccountRepository
	evalCache   cache.EvaluationCache
}

func NewRideService(
	rideRepo repository.RideRepository,
	patientRepo repository.PatientRepository,
	accountRepo repository.AccountRepository,
	evalCache cache.EvaluationCache,
) RideService {
	return &rideService{
		rideRepo:    rideRepo,
		patientRepo: patientRepo,
		accountRepo: accountRepo,
		evalCache:   evalCache,
	}
}

func (s *rideService) CreateRide(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error) {
	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.NotFound("account")
	}

	patient, err := s.patientRepo.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, apperrors.NotFound("patient")
	}

	ride := &models.Ride{
		AccountID:     req.AccountID,
		PatientID:     req.PatientID,
		ScheduledDate: req.ScheduledDate,
		Kind:          req.Kind,
		IsRoundTrip:   req.IsRoundTrip || req.Kind == models.RideKindRoundTrip,
	}

	if req.PickupAddress != "" {
		ride.PickupAddress = &req.PickupAddress
	}
	if req.DropoffAddress != "" {
		ride.DropoffAddress = &req.DropoffAddress
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateQuota(ctx, ride.PatientID)

	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, id string) (*models.RideResponse, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	response := ride.ToResponse()

	patient, err := s.patientRepo.GetByID(ctx, ride.PatientID)
	if err == nil && patient != nil {
		response.Patient = patient.ToResponse()
	}

	return response, nil
}

func (s *rideService) ListUpcoming(ctx context.Context, accountID string) ([]*models.RideResponse, error) {
	rides, err := s.rideRepo.ListUpcomingByAccount(ctx, accountID, startOfToday())
	if err != nil {
		return nil, err
	}

	responses := make([]*models.RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, ride.ToResponse())
	}
	return responses, nil
}

func (s *rideService) StartRide(ctx context.Context, id string) error {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride == nil {
		return apperrors.NotFound("ride")
	}

	if !ride.CanTransitionTo(models.RideStatusStarted) {
		return apperrors.InvalidTransition(ride.Status, models.RideStatusStarted)
	}

	if err := s.rideRepo.Start(ctx, id, time.Now()); err != nil {
		return err
	}

	s.invalidateQuota(ctx, ride.PatientID)
	return nil
}

func (s *rideService) FinishRide(ctx context.Context, id string, req *models.FinishRideRequest) error {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride == nil {
		return apperrors.NotFound("ride")
	}

	if !ride.CanTransitionTo(models.RideStatusFinished) {
		return apperrors.InvalidTransition(ride.Status, models.RideStatusFinished)
	}

	if err := s.rideRepo.Finish(ctx, id, time.Now(), req.DistanceKm); err != nil {
		return err
	}

	s.invalidateQuota(ctx, ride.PatientID)
	return nil
}

func (s *rideService) CancelRide(ctx context.Context, id string, req *models.CancelRideRequest) error {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride == nil {
		return apperrors.NotFound("ride")
	}

	if !ride.CanTransitionTo(models.RideStatusCancelled) {
		return apperrors.InvalidTransition(ride.Status, models.RideStatusCancelled)
	}

	if err := s.rideRepo.Cancel(ctx, id, req.Reason); err != nil {
		return err
	}

	// Cancelled rides stop counting against the quota right away.
	s.invalidateQuota(ctx, ride.PatientID)
	return nil
}

func (s *rideService) invalidateQuota(ctx context.Context, patientID string) {
	if s.evalCache == nil {
		return
	}
	if err := s.evalCache.InvalidatePatient(ctx, patientID); err != nil {
		log.Printf("failed to invalidate quota cache for patient %s: %v", patientID, err)
	}
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
