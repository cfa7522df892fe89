package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/pkg/utils"
)

type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	GetByID(ctx context.Context, id string) (*models.Transfer, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Transfer, error)
	GetPendingByRideID(ctx context.Context, rideID string) (*models.Transfer, error)
	ListIncoming(ctx context.Context, accountID string) ([]*models.Transfer, error)
	ListOutgoing(ctx context.Context, accountID string) ([]*models.Transfer, error)
	UpdateStatus(ctx context.Context, id, status string, respondedAt *time.Time) error
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id, status string, respondedAt *time.Time) error
}

type transferRepository struct {
	db *sqlx.DB
}

func NewTransferRepository(db *sqlx.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	if transfer.ID == "" {
		transfer.ID = utils.GenerateID()
	}
	transfer.CreatedAt = time.Now()
	transfer.UpdatedAt = time.Now()
	transfer.Status = models.TransferStatusPending

	query := `
		INSERT INTO transfers (id, ride_id, from_account_id, to_account_id, status,
			message, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		transfer.ID, transfer.RideID, transfer.FromAccountID, transfer.ToAccountID,
		transfer.Status, transfer.Message, transfer.ExpiresAt,
		transfer.CreatedAt, transfer.UpdatedAt)
	return err
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	query := `SELECT * FROM transfers WHERE id = $1`
	err := r.db.GetContext(ctx, &transfer, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &transfer, err
}

// GetByIDForUpdate locks the transfer row so concurrent accept/refuse calls
// serialize on it.
func (r *transferRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Transfer, error) {
	var transfer models.Transfer
	query := `SELECT * FROM transfers WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &transfer, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &transfer, err
}

func (r *transferRepository) GetPendingByRideID(ctx context.Context, rideID string) (*models.Transfer, error) {
	var transfer models.Transfer
	query := `SELECT * FROM transfers WHERE ride_id = $1 AND status = $2`
	err := r.db.GetContext(ctx, &transfer, query, rideID, models.TransferStatusPending)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &transfer, err
}

func (r *transferRepository) ListIncoming(ctx context.Context, accountID string) ([]*models.Transfer, error) {
	transfers := []*models.Transfer{}
	query := `SELECT * FROM transfers WHERE to_account_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &transfers, query, accountID)
	return transfers, err
}

func (r *transferRepository) ListOutgoing(ctx context.Context, accountID string) ([]*models.Transfer, error) {
	transfers := []*models.Transfer{}
	query := `SELECT * FROM transfers WHERE from_account_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &transfers, query, accountID)
	return transfers, err
}

func (r *transferRepository) UpdateStatus(ctx context.Context, id, status string, respondedAt *time.Time) error {
	query := `UPDATE transfers SET status = $1, responded_at = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, status, respondedAt, time.Now(), id)
	return err
}

func (r *transferRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id, status string, respondedAt *time.Time) error {
	query := `UPDATE transfers SET status = $1, responded_at = $2, updated_at = $3 WHERE id = $4`
	_, err := tx.ExecContext(ctx, query, status, respondedAt, time.Now(), id)
	return err
}
