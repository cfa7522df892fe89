package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/pkg/utils"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error)
	ListByPatientAndType(ctx context.Context, patientID, docType string) ([]*models.Document, error)
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = utils.GenerateID()
	}
	now := time.Now()
	document.CreatedAt = now
	if document.UploadedAt.IsZero() {
		document.UploadedAt = now
	}

	query := `
		INSERT INTO documents (id, account_id, patient_id, type, storage_key, uploaded_at,
			max_authorized_trips, prescribed_date, ride_id, risk_acknowledged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		document.ID, document.AccountID, document.PatientID, document.Type, document.StorageKey,
		document.UploadedAt, document.MaxAuthorizedTrips, document.PrescribedDate,
		document.RideID, document.RiskAcknowledged, document.CreatedAt)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var document models.Document
	query := `SELECT * FROM documents WHERE id = $1`
	err := r.db.GetContext(ctx, &document, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &document, err
}

func (r *documentRepository) ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error) {
	documents := []*models.Document{}
	query := `SELECT * FROM documents WHERE patient_id = $1 ORDER BY uploaded_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &documents, query, patientID)
	return documents, err
}

func (r *documentRepository) ListByPatientAndType(ctx context.Context, patientID, docType string) ([]*models.Document, error) {
	documents := []*models.Document{}
	query := `
		SELECT * FROM documents
		WHERE patient_id = $1 AND type = $2
		ORDER BY uploaded_at DESC, id DESC
	`
	err := r.db.SelectContext(ctx, &documents, query, patientID, docType)
	return documents, err
}
