package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/pkg/utils"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	ListByPatient(ctx context.Context, patientID string) ([]*models.Ride, error)
	ListUpcomingByAccount(ctx context.Context, accountID string, from time.Time) ([]*models.Ride, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Start(ctx context.Context, id string, startTime time.Time) error
	Finish(ctx context.Context, id string, endTime time.Time, distanceKm *float64) error
	Cancel(ctx context.Context, id, reason string) error
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error)
	ReassignAccount(ctx context.Context, tx *sqlx.Tx, rideID, accountID string) error
}

type rideRepository struct {
	db *sqlx.DB
}

func NewRideRepository(db *sqlx.DB) RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID == "" {
		ride.ID = utils.GenerateID()
	}
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = time.Now()
	ride.Status = models.RideStatusScheduled

	query := `
		INSERT INTO rides (id, account_id, patient_id, scheduled_date, kind, is_round_trip,
			status, pickup_address, dropoff_address, distance_km, billed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		ride.ID, ride.AccountID, ride.PatientID, ride.ScheduledDate, ride.Kind, ride.IsRoundTrip,
		ride.Status, ride.PickupAddress, ride.DropoffAddress, ride.DistanceKm, ride.Billed,
		ride.CreatedAt, ride.UpdatedAt)
	return err
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1`
	err := r.db.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) ListByPatient(ctx context.Context, patientID string) ([]*models.Ride, error) {
	rides := []*models.Ride{}
	query := `SELECT * FROM rides WHERE patient_id = $1 ORDER BY scheduled_date`
	err := r.db.SelectContext(ctx, &rides, query, patientID)
	return rides, err
}

func (r *rideRepository) ListUpcomingByAccount(ctx context.Context, accountID string, from time.Time) ([]*models.Ride, error) {
	rides := []*models.Ride{}
	query := `
		SELECT * FROM rides
		WHERE account_id = $1 AND scheduled_date >= $2 AND status NOT IN ($3, $4)
		ORDER BY scheduled_date
	`
	err := r.db.SelectContext(ctx, &rides, query,
		accountID, from, models.RideStatusFinished, models.RideStatusCancelled)
	return rides, err
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE rides SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *rideRepository) Start(ctx context.Context, id string, startTime time.Time) error {
	query := `UPDATE rides SET status = $1, start_time = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, models.RideStatusStarted, startTime, time.Now(), id)
	return err
}

func (r *rideRepository) Finish(ctx context.Context, id string, endTime time.Time, distanceKm *float64) error {
	query := `
		UPDATE rides
		SET status = $1, end_time = $2, distance_km = COALESCE($3, distance_km), updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.RideStatusFinished, endTime, distanceKm, time.Now(), id)
	return err
}

func (r *rideRepository) Cancel(ctx context.Context, id, reason string) error {
	query := `
		UPDATE rides
		SET status = $1, cancellation_reason = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.RideStatusCancelled, reason, time.Now(), id)
	return err
}

// GetByIDForUpdate gets a ride with a FOR UPDATE lock (transfer acceptance)
func (r *rideRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) ReassignAccount(ctx context.Context, tx *sqlx.Tx, rideID, accountID string) error {
	query := `UPDATE rides SET account_id = $1, updated_at = $2 WHERE id = $3`
	_, err := tx.ExecContext(ctx, query, accountID, time.Now(), rideID)
	return err
}
