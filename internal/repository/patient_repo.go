package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/pkg/utils"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error)
	SearchByName(ctx context.Context, accountID, namePrefix string) ([]*models.Patient, error)
}

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = utils.GenerateID()
	}
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	query := `
		INSERT INTO patients (id, account_id, full_name, phone, social_security, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID, patient.AccountID, patient.FullName, patient.Phone,
		patient.SocialSecurity, patient.Address, patient.CreatedAt, patient.UpdatedAt)
	return err
}

func (r *patientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	query := `SELECT * FROM patients WHERE id = $1`
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &patient, err
}

func (r *patientRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error) {
	patients := []*models.Patient{}
	query := `SELECT * FROM patients WHERE account_id = $1 ORDER BY full_name`
	err := r.db.SelectContext(ctx, &patients, query, accountID)
	return patients, err
}

// SearchByName is the legacy name-correlation shim: display-time lookup only,
// never used to join quota history (that is keyed by patient id).
func (r *patientRepository) SearchByName(ctx context.Context, accountID, namePrefix string) ([]*models.Patient, error) {
	patients := []*models.Patient{}
	query := `
		SELECT * FROM patients
		WHERE account_id = $1 AND full_name ILIKE $2 || '%'
		ORDER BY full_name
		LIMIT 20
	`
	err := r.db.SelectContext(ctx, &patients, query, accountID, namePrefix)
	return patients, err
}
