package service

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/cache"
	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/repository"
)

type TransferService interface {
	ProposeTransfer(ctx context.Context, req *models.CreateTransferRequest) (*models.Transfer, error)
	AcceptTransfer(ctx context.Context, transferID, accountID string) (*models.Transfer, error)
	RefuseTransfer(ctx context.Context, transferID, accountID string) error
	CancelTransfer(ctx context.Context, transferID, accountID string) error
	ListIncoming(ctx context.Context, accountID string) ([]*models.TransferResponse, error)
	ListOutgoing(ctx context.Context, accountID string) ([]*models.TransferResponse, error)
}

// transactor runs a function inside a database transaction, committing when
// it returns nil and rolling back otherwise.
type transactor interface {
	InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type sqlxTransactor struct {
	db *sqlx.DB
}

func (t sqlxTransactor) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type transferService struct {
	tx           transactor
	transferRepo repository.TransferRepository
	rideRepo     repository.RideRepository
	accountRepo  repository.AccountRepository
	evalCache    cache.EvaluationCache
	expiry       time.Duration
}

func NewTransferService(
	db *sqlx.DB,
	transferRepo repository.TransferRepository,
	rideRepo repository.RideRepository,
	accountRepo repository.AccountRepository,
	evalCache cache.EvaluationCache,
	expiry time.Duration,
) TransferService {
	return &transferService{
		tx:           sqlxTransactor{db: db},
		transferRepo: transferRepo,
		rideRepo:     rideRepo,
		accountRepo:  accountRepo,
		evalCache:    evalCache,
		expiry:       expiry,
	}
}

func (s *transferService) ProposeTransfer(ctx context.Context, req *models.CreateTransferRequest) (*models.Transfer, error) {
	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}
	if ride.AccountID != req.FromAccountID {
		return nil, apperrors.TransferNotAllowed()
	}
	if ride.Status != models.RideStatusScheduled {
		return nil, apperrors.RideNotTransferable(ride.Status)
	}

	recipient, err := s.accountRepo.GetByID(ctx, req.ToAccountID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, apperrors.NotFound("recipient account")
	}

	existing, err := s.transferRepo.GetPendingByRideID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("ride already has a pending transfer")
	}

	transfer := &models.Transfer{
		RideID:        req.RideID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		ExpiresAt:     time.Now().Add(s.expiry),
	}
	if req.Message != "" {
		transfer.Message = &req.Message
	}

	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	return transfer, nil
}

// AcceptTransfer reassigns the ride to the recipient inside a transaction,
// with row locks on both the transfer and the ride.
func (s *transferService) AcceptTransfer(ctx context.Context, transferID, accountID string) (*models.Transfer, error) {
	now := time.Now()
	var transfer *models.Transfer
	var ride *models.Ride
	expired := false

	err := s.tx.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		transfer, err = s.transferRepo.GetByIDForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if transfer == nil {
			return apperrors.NotFound("transfer")
		}
		if transfer.ToAccountID != accountID {
			return apperrors.TransferNotAllowed()
		}
		if transfer.Status != models.TransferStatusPending {
			return apperrors.TransferNotPending()
		}

		if transfer.IsExpired(now) {
			// The expiry mark must commit even though the accept fails.
			expired = true
			return s.transferRepo.UpdateStatusTx(ctx, tx, transferID, models.TransferStatusExpired, nil)
		}

		ride, err = s.rideRepo.GetByIDForUpdate(ctx, tx, transfer.RideID)
		if err != nil {
			return err
		}
		if ride == nil {
			return apperrors.NotFound("ride")
		}
		if ride.Status != models.RideStatusScheduled {
			return apperrors.RideNotTransferable(ride.Status)
		}

		if err := s.rideRepo.ReassignAccount(ctx, tx, ride.ID, accountID); err != nil {
			return err
		}
		return s.transferRepo.UpdateStatusTx(ctx, tx, transferID, models.TransferStatusAccepted, &now)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apperrors.TransferExpired()
	}

	if s.evalCache != nil {
		if err := s.evalCache.InvalidatePatient(ctx, ride.PatientID); err != nil {
			log.Printf("failed to invalidate quota cache for patient %s: %v", ride.PatientID, err)
		}
	}

	transfer.Status = models.TransferStatusAccepted
	transfer.RespondedAt = &now
	return transfer, nil
}

func (s *transferService) RefuseTransfer(ctx context.Context, transferID, accountID string) error {
	transfer, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return err
	}
	if transfer == nil {
		return apperrors.NotFound("transfer")
	}
	if transfer.ToAccountID != accountID {
		return apperrors.TransferNotAllowed()
	}
	if transfer.Status != models.TransferStatusPending {
		return apperrors.TransferNotPending()
	}

	now := time.Now()
	if err := s.expireIfPassed(ctx, transfer, now); err != nil {
		return err
	}
	return s.transferRepo.UpdateStatus(ctx, transferID, models.TransferStatusRefused, &now)
}

func (s *transferService) CancelTransfer(ctx context.Context, transferID, accountID string) error {
	transfer, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return err
	}
	if transfer == nil {
		return apperrors.NotFound("transfer")
	}
	if transfer.FromAccountID != accountID {
		return apperrors.TransferNotAllowed()
	}
	if transfer.Status != models.TransferStatusPending {
		return apperrors.TransferNotPending()
	}

	now := time.Now()
	if err := s.expireIfPassed(ctx, transfer, now); err != nil {
		return err
	}
	return s.transferRepo.UpdateStatus(ctx, transferID, models.TransferStatusCancelled, &now)
}

// expireIfPassed marks a still-pending transfer whose response window has
// passed as expired. An expired transfer can no longer be answered either
// way, it is only cleaned up.
func (s *transferService) expireIfPassed(ctx context.Context, transfer *models.Transfer, now time.Time) error {
	if !transfer.IsExpired(now) {
		return nil
	}
	if err := s.transferRepo.UpdateStatus(ctx, transfer.ID, models.TransferStatusExpired, nil); err != nil {
		return err
	}
	return apperrors.TransferExpired()
}

func (s *transferService) ListIncoming(ctx context.Context, accountID string) ([]*models.TransferResponse, error) {
	transfers, err := s.transferRepo.ListIncoming(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, transfers), nil
}

func (s *transferService) ListOutgoing(ctx context.Context, accountID string) ([]*models.TransferResponse, error) {
	transfers, err := s.transferRepo.ListOutgoing(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, transfers), nil
}

func (s *transferService) toResponses(ctx context.Context, transfers []*models.Transfer) []*models.TransferResponse {
	responses := make([]*models.TransferResponse, 0, len(transfers))
	for _, t := range transfers {
		resp := t.ToResponse()
		if ride, err := s.rideRepo.GetByID(ctx, t.RideID); err == nil && ride != nil {
			resp.Ride = ride.ToResponse()
		}
		responses = append(responses, resp)
	}
	return responses
}
