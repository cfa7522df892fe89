package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrTemporalRisk        = errors.New("prescription dated after ride")
	ErrTransferNotPending  = errors.New("transfer is not pending")
	ErrTransferExpired     = errors.New("transfer expired")
	ErrTransferNotAllowed  = errors.New("account is not a party to this transfer")
	ErrRideNotTransferable = errors.New("ride cannot be transferred")
	ErrInvalidQuotaInput   = errors.New("invalid quota input")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common API errors
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func InvalidTransition(from, to string) *APIError {
	return NewAPIError("invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusBadRequest)
}

// TemporalRisk is returned when a prescription is dated after the ride it
// should cover and the request did not carry confirm_risk. The client must
// either correct the date or resubmit with an explicit override.
func TemporalRisk() *APIError {
	return NewAPIError("temporal_risk", "prescription is dated after the ride it covers; resubmit with confirm_risk to attach anyway", http.StatusConflict)
}

func TransferNotPending() *APIError {
	return NewAPIError("transfer_not_pending", "this transfer has already been answered", http.StatusConflict)
}

func TransferExpired() *APIError {
	return NewAPIError("transfer_expired", "this transfer has expired", http.StatusGone)
}

func TransferNotAllowed() *APIError {
	return NewAPIError("transfer_not_allowed", "account is not a party to this transfer", http.StatusForbidden)
}

func RideNotTransferable(status string) *APIError {
	return NewAPIError("ride_not_transferable", fmt.Sprintf("a %s ride cannot be transferred", status), http.StatusConflict)
}
