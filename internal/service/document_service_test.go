package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
)

type fakePatientRepo struct {
	patients map[string]*models.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *models.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	return f.patients[id], nil
}

func (f *fakePatientRepo) ListByAccount(ctx context.Context, accountID string) ([]*models.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) SearchByName(ctx context.Context, accountID, namePrefix string) ([]*models.Patient, error) {
	return nil, nil
}

type fakeRideRepo struct {
	rides map[string]*models.Ride
}

func (f *fakeRideRepo) Create(ctx context.Context, r *models.Ride) error {
	f.rides[r.ID] = r
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	return f.rides[id], nil
}

func (f *fakeRideRepo) ListByPatient(ctx context.Context, patientID string) ([]*models.Ride, error) {
	return nil, nil
}

func (f *fakeRideRepo) ListUpcomingByAccount(ctx context.Context, accountID string, from time.Time) ([]*models.Ride, error) {
	return nil, nil
}

func (f *fakeRideRepo) UpdateStatus(ctx context.Context, id, status string) error { return nil }

func (f *fakeRideRepo) Start(ctx context.Context, id string, startTime time.Time) error { return nil }

func (f *fakeRideRepo) Finish(ctx context.Context, id string, endTime time.Time, distanceKm *float64) error {
	return nil
}

func (f *fakeRideRepo) Cancel(ctx context.Context, id, reason string) error { return nil }

func (f *fakeRideRepo) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error) {
	return f.rides[id], nil
}

func (f *fakeRideRepo) ReassignAccount(ctx context.Context, tx *sqlx.Tx, rideID, accountID string) error {
	if ride, ok := f.rides[rideID]; ok {
		ride.AccountID = accountID
	}
	return nil
}

type fakeDocumentRepo struct {
	created []*models.Document
}

func (f *fakeDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	d.UploadedAt = time.Now()
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	for _, d := range f.created {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDocumentRepo) ListByPatient(ctx context.Context, patientID string) ([]*models.Document, error) {
	return f.created, nil
}

func (f *fakeDocumentRepo) ListByPatientAndType(ctx context.Context, patientID, docType string) ([]*models.Document, error) {
	return f.created, nil
}

const (
	testPatientID = "5a0f3c60-0000-4000-8000-00000000000a"
	testRideID    = "5a0f3c60-0000-4000-8000-00000000000b"
	testAccountID = "5a0f3c60-0000-4000-8000-00000000000c"
)

func newAttachFixture(rideDate time.Time) (DocumentService, *fakeDocumentRepo) {
	patientRepo := &fakePatientRepo{patients: map[string]*models.Patient{
		testPatientID: {ID: testPatientID, AccountID: testAccountID, FullName: "Jean Dupont"},
	}}
	rideRepo := &fakeRideRepo{rides: map[string]*models.Ride{
		testRideID: {
			ID:            testRideID,
			AccountID:     testAccountID,
			PatientID:     testPatientID,
			ScheduledDate: rideDate,
			Kind:          models.RideKindOneWay,
			Status:        models.RideStatusScheduled,
		},
	}}
	documentRepo := &fakeDocumentRepo{}
	return NewDocumentService(documentRepo, patientRepo, rideRepo, nil), documentRepo
}

func attachRequest(prescribed time.Time, confirm bool) *models.CreateDocumentRequest {
	rideID := testRideID
	return &models.CreateDocumentRequest{
		AccountID:          testAccountID,
		PatientID:          testPatientID,
		Type:               models.DocumentTypeTransportAuthorization,
		MaxAuthorizedTrips: 6,
		PrescribedDate:     &prescribed,
		RideID:             &rideID,
		ConfirmRisk:        confirm,
	}
}

func TestCreateDocumentBlocksRiskyAttachWithoutConfirmation(t *testing.T) {
	rideDate := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newAttachFixture(rideDate)

	// Prescription dated the day after the ride.
	_, err := svc.CreateDocument(context.Background(), attachRequest(rideDate.AddDate(0, 0, 1), false))
	if !errors.Is(err, apperrors.ErrTemporalRisk) {
		t.Fatalf("CreateDocument() error = %v, want ErrTemporalRisk", err)
	}
	if len(repo.created) != 0 {
		t.Error("risky document was attached without confirmation")
	}
}

func TestCreateDocumentAttachesRiskyDocumentWithOverride(t *testing.T) {
	rideDate := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newAttachFixture(rideDate)

	doc, err := svc.CreateDocument(context.Background(), attachRequest(rideDate.AddDate(0, 0, 1), true))
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if !doc.RiskAcknowledged {
		t.Error("override attach must record the acknowledged risk")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created document, got %d", len(repo.created))
	}
}

func TestCreateDocumentSameDayPrescriptionNeedsNoOverride(t *testing.T) {
	rideDate := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newAttachFixture(rideDate)

	doc, err := svc.CreateDocument(context.Background(), attachRequest(rideDate, false))
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if doc.RiskAcknowledged {
		t.Error("same-day prescription must not be flagged")
	}
}

func TestCreateDocumentAttachRequiresPrescribedDate(t *testing.T) {
	rideDate := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newAttachFixture(rideDate)

	req := attachRequest(rideDate, false)
	req.PrescribedDate = nil

	_, err := svc.CreateDocument(context.Background(), req)
	apiErr, ok := err.(*apperrors.APIError)
	if !ok || apiErr.Code != "bad_request" {
		t.Fatalf("CreateDocument() error = %v, want bad_request", err)
	}
}

func TestCreateDocumentAuthorizationRequiresMaxTrips(t *testing.T) {
	rideDate := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newAttachFixture(rideDate)

	req := attachRequest(rideDate.AddDate(0, 0, -3), false)
	req.MaxAuthorizedTrips = 0

	if _, err := svc.CreateDocument(context.Background(), req); err == nil {
		t.Fatal("CreateDocument() accepted an authorization without a trip count")
	}
}
