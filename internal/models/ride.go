package models

import (
	"time"
)

// Ride status constants
const (
	RideStatusScheduled  = "scheduled"
	RideStatusDispatched = "dispatched"
	RideStatusStarted    = "started"
	RideStatusFinished   = "finished"
	RideStatusCancelled  = "cancelled"
)

// Valid ride state transitions
var ValidRideTransitions = map[string][]string{
	RideStatusScheduled:  {RideStatusDispatched, RideStatusStarted, RideStatusCancelled},
	RideStatusDispatched: {RideStatusStarted, RideStatusCancelled},
	RideStatusStarted:    {RideStatusFinished, RideStatusCancelled},
	RideStatusFinished:   {},
	RideStatusCancelled:  {},
}

// Ride kind constants
const (
	RideKindOneWay          = "one_way"
	RideKindReturn          = "return_trip"
	RideKindRoundTrip       = "round_trip"
	RideKindConsultation    = "consultation"
	RideKindHospitalization = "hospitalization"
	RideKindDayHospital     = "day_hospital"
)

// Ride kinds that need a transport authorization (BT) to be reimbursed.
// Hospitalization admissions are covered by the hospital's own paperwork.
var authorizationRequiredKinds = map[string]bool{
	RideKindOneWay:       true,
	RideKindReturn:       true,
	RideKindRoundTrip:    true,
	RideKindConsultation: true,
}

// RequiresAuthorization reports whether rides of the given kind need a
// prescription document to be billable.
func RequiresAuthorization(kind string) bool {
	return authorizationRequiredKinds[kind]
}

type Ride struct {
	ID                 string     `db:"id" json:"id"`
	AccountID          string     `db:"account_id" json:"account_id"`
	PatientID          string     `db:"patient_id" json:"patient_id"`
	ScheduledDate      time.Time  `db:"scheduled_date" json:"scheduled_date"`
	Kind               string     `db:"kind" json:"kind"`
	IsRoundTrip        bool       `db:"is_round_trip" json:"is_round_trip"`
	Status             string     `db:"status" json:"status"`
	PickupAddress      *string    `db:"pickup_address" json:"pickup_address,omitempty"`
	DropoffAddress     *string    `db:"dropoff_address" json:"dropoff_address,omitempty"`
	DistanceKm         *float64   `db:"distance_km" json:"distance_km,omitempty"`
	StartTime          *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime            *time.Time `db:"end_time" json:"end_time,omitempty"`
	Billed             bool       `db:"billed" json:"billed"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRideRequest struct {
	AccountID      string    `json:"account_id" validate:"required,uuid"`
	PatientID      string    `json:"patient_id" validate:"required,uuid"`
	ScheduledDate  time.Time `json:"scheduled_date" validate:"required"`
	Kind           string    `json:"kind" validate:"required,oneof=one_way return_trip round_trip consultation hospitalization day_hospital"`
	IsRoundTrip    bool      `json:"is_round_trip"`
	PickupAddress  string    `json:"pickup_address,omitempty"`
	DropoffAddress string    `json:"dropoff_address,omitempty"`
}

type CancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

type FinishRideRequest struct {
	DistanceKm *float64 `json:"distance_km,omitempty" validate:"omitempty,gte=0"`
}

type RideResponse struct {
	ID             string           `json:"id"`
	Status         string           `json:"status"`
	Patient        *PatientResponse `json:"patient,omitempty"`
	ScheduledDate  time.Time        `json:"scheduled_date"`
	Kind           string           `json:"kind"`
	IsRoundTrip    bool             `json:"is_round_trip"`
	PickupAddress  *string          `json:"pickup_address,omitempty"`
	DropoffAddress *string          `json:"dropoff_address,omitempty"`
	DistanceKm     *float64         `json:"distance_km,omitempty"`
	StartTime      *time.Time       `json:"start_time,omitempty"`
	EndTime        *time.Time       `json:"end_time,omitempty"`
	Billed         bool             `json:"billed"`
	Quota          *QuotaEvaluation `json:"quota,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (r *Ride) ToResponse() *RideResponse {
	return &RideResponse{
		ID:             r.ID,
		Status:         r.Status,
		ScheduledDate:  r.ScheduledDate,
		Kind:           r.Kind,
		IsRoundTrip:    r.IsRoundTrip,
		PickupAddress:  r.PickupAddress,
		DropoffAddress: r.DropoffAddress,
		DistanceKm:     r.DistanceKm,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Billed:         r.Billed,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CanTransitionTo checks if a ride can transition to a new status
func (r *Ride) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidRideTransitions[r.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// IsActive returns true if the ride is not in a terminal state
func (r *Ride) IsActive() bool {
	return r.Status != RideStatusFinished && r.Status != RideStatusCancelled
}
