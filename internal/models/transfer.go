package models

import (
	"time"
)

// Transfer status constants
const (
	TransferStatusPending   = "pending"
	TransferStatusAccepted  = "accepted"
	TransferStatusRefused   = "refused"
	TransferStatusCancelled = "cancelled"
	TransferStatusExpired   = "expired"
)

// Valid transfer state transitions
var ValidTransferTransitions = map[string][]string{
	TransferStatusPending:   {TransferStatusAccepted, TransferStatusRefused, TransferStatusCancelled, TransferStatusExpired},
	TransferStatusAccepted:  {},
	TransferStatusRefused:   {},
	TransferStatusCancelled: {},
	TransferStatusExpired:   {},
}

// Transfer is a peer-to-peer ride handoff. Accepting reassigns the ride to
// the recipient account; refusing leaves it with the sender.
type Transfer struct {
	ID            string     `db:"id" json:"id"`
	RideID        string     `db:"ride_id" json:"ride_id"`
	FromAccountID string     `db:"from_account_id" json:"from_account_id"`
	ToAccountID   string     `db:"to_account_id" json:"to_account_id"`
	Status        string     `db:"status" json:"status"`
	Message       *string    `db:"message" json:"message,omitempty"`
	ExpiresAt     time.Time  `db:"expires_at" json:"expires_at"`
	RespondedAt   *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateTransferRequest struct {
	RideID        string `json:"ride_id" validate:"required,uuid"`
	FromAccountID string `json:"from_account_id" validate:"required,uuid"`
	ToAccountID   string `json:"to_account_id" validate:"required,uuid,nefield=FromAccountID"`
	Message       string `json:"message,omitempty" validate:"omitempty,max=300"`
}

type TransferResponse struct {
	ID            string        `json:"id"`
	Ride          *RideResponse `json:"ride,omitempty"`
	FromAccountID string        `json:"from_account_id"`
	ToAccountID   string        `json:"to_account_id"`
	Status        string        `json:"status"`
	Message       *string       `json:"message,omitempty"`
	ExpiresAt     time.Time     `json:"expires_at"`
	RespondedAt   *time.Time    `json:"responded_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (t *Transfer) ToResponse() *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Status:        t.Status,
		Message:       t.Message,
		ExpiresAt:     t.ExpiresAt,
		RespondedAt:   t.RespondedAt,
		CreatedAt:     t.CreatedAt,
	}
}

// CanTransitionTo checks if a transfer can transition to a new status
func (t *Transfer) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidTransferTransitions[t.Status]
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

// IsExpired reports whether the transfer's response window has passed.
func (t *Transfer) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
