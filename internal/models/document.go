package models

import (
	"time"
)

// Document type constants
const (
	DocumentTypeTransportAuthorization = "transport_authorization"
	DocumentTypeInsuranceCard          = "insurance_card"
	DocumentTypeOther                  = "other"
)

// Document is the metadata record for a scanned patient document. The scan
// itself lives in external file storage; only its key is kept here.
// Documents are immutable after creation: a newer upload supersedes an older
// one, it never replaces it in place.
type Document struct {
	ID                 string     `db:"id" json:"id"`
	AccountID          string     `db:"account_id" json:"account_id"`
	PatientID          string     `db:"patient_id" json:"patient_id"`
	Type               string     `db:"type" json:"type"`
	StorageKey         *string    `db:"storage_key" json:"storage_key,omitempty"`
	UploadedAt         time.Time  `db:"uploaded_at" json:"uploaded_at"`
	MaxAuthorizedTrips int        `db:"max_authorized_trips" json:"max_authorized_trips"`
	PrescribedDate     *time.Time `db:"prescribed_date" json:"prescribed_date,omitempty"`
	RideID             *string    `db:"ride_id" json:"ride_id,omitempty"`
	RiskAcknowledged   bool       `db:"risk_acknowledged" json:"risk_acknowledged"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

type CreateDocumentRequest struct {
	AccountID          string     `json:"account_id" validate:"required,uuid"`
	PatientID          string     `json:"patient_id" validate:"required,uuid"`
	Type               string     `json:"type" validate:"required,oneof=transport_authorization insurance_card other"`
	StorageKey         string     `json:"storage_key,omitempty"`
	MaxAuthorizedTrips int        `json:"max_authorized_trips,omitempty" validate:"gte=0"`
	PrescribedDate     *time.Time `json:"prescribed_date,omitempty"`
	RideID             *string    `json:"ride_id,omitempty" validate:"omitempty,uuid"`
	ConfirmRisk        bool       `json:"confirm_risk,omitempty"`
}

type DocumentResponse struct {
	ID                 string     `json:"id"`
	PatientID          string     `json:"patient_id"`
	Type               string     `json:"type"`
	UploadedAt         time.Time  `json:"uploaded_at"`
	MaxAuthorizedTrips int        `json:"max_authorized_trips"`
	PrescribedDate     *time.Time `json:"prescribed_date,omitempty"`
	RideID             *string    `json:"ride_id,omitempty"`
	RiskAcknowledged   bool       `json:"risk_acknowledged"`
}

func (d *Document) ToResponse() *DocumentResponse {
	return &DocumentResponse{
		ID:                 d.ID,
		PatientID:          d.PatientID,
		Type:               d.Type,
		UploadedAt:         d.UploadedAt,
		MaxAuthorizedTrips: d.MaxAuthorizedTrips,
		PrescribedDate:     d.PrescribedDate,
		RideID:             d.RideID,
		RiskAcknowledged:   d.RiskAcknowledged,
	}
}
