package quota

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
)

// Quota unit weights. Authorizations are granted in round-trip units: a
// round-trip ride consumes a full unit, a one-way leg half a unit, so two
// one-way legs together consume one authorized round trip.
const (
	roundTripWeight = 1.0
	oneWayWeight    = 0.5
)

// Engine computes the authorization status of a ride from snapshots of the
// patient's documents and ride history. It is pure: no I/O, no caching, no
// mutation of its inputs. Callers re-invoke it on fresh snapshots.
type Engine interface {
	Evaluate(ride *models.Ride, documents []*models.Document, rides []*models.Ride) (*models.QuotaEvaluation, error)
}

type engine struct {
	unlimitedThreshold int
	lowThreshold       float64
}

// NewEngine builds an Engine. unlimitedThreshold is the max_authorized_trips
// sentinel at or above which a prescription is an open-ended series
// authorization; lowThreshold is the remaining-unit level at or below which
// the state degrades from ok to low.
func NewEngine(unlimitedThreshold int, lowThreshold float64) Engine {
	return &engine{
		unlimitedThreshold: unlimitedThreshold,
		lowThreshold:       lowThreshold,
	}
}

func (e *engine) Evaluate(ride *models.Ride, documents []*models.Document, rides []*models.Ride) (*models.QuotaEvaluation, error) {
	if ride == nil {
		return nil, fmt.Errorf("%w: ride is required", apperrors.ErrInvalidQuotaInput)
	}

	// Policy filter, not a failure: rides that never need a BT, and rides
	// already finished, get no banner.
	if !models.RequiresAuthorization(ride.Kind) || ride.Status == models.RideStatusFinished {
		return result(models.QuotaStateNotApplicable), nil
	}

	if ride.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("%w: ride %s has no scheduled date", apperrors.ErrInvalidQuotaInput, ride.ID)
	}

	// No patient identity means no correlatable coverage.
	if ride.PatientID == "" {
		return result(models.QuotaStateMissing), nil
	}

	governing, err := e.governingPrescription(ride.PatientID, documents)
	if err != nil {
		return nil, err
	}
	if governing == nil {
		return result(models.QuotaStateMissing), nil
	}

	if governing.MaxAuthorizedTrips >= e.unlimitedThreshold {
		return result(models.QuotaStateUnlimited), nil
	}

	consumed, err := e.consumedSince(ride.PatientID, governing.UploadedAt, rides)
	if err != nil {
		return nil, err
	}

	remaining := float64(governing.MaxAuthorizedTrips) - consumed

	state := models.QuotaStateOK
	switch {
	case remaining <= 0:
		state = models.QuotaStateExhausted
	case remaining <= e.lowThreshold:
		state = models.QuotaStateLow
	}

	eval := result(state)
	eval.Consumed = &consumed
	max := governing.MaxAuthorizedTrips
	eval.Max = &max
	eval.Remaining = &remaining
	return eval, nil
}

// governingPrescription selects the transport authorization that governs the
// patient's current consumption window: the most recently uploaded one.
// Identical upload timestamps are broken by the greater document id, which
// carries no business meaning beyond determinism.
func (e *engine) governingPrescription(patientID string, documents []*models.Document) (*models.Document, error) {
	candidates := make([]*models.Document, 0, len(documents))
	for _, doc := range documents {
		if doc.Type != models.DocumentTypeTransportAuthorization || doc.PatientID != patientID {
			continue
		}
		if doc.MaxAuthorizedTrips < 0 {
			return nil, fmt.Errorf("%w: document %s has negative max_authorized_trips", apperrors.ErrInvalidQuotaInput, doc.ID)
		}
		if doc.UploadedAt.IsZero() {
			return nil, fmt.Errorf("%w: document %s has no upload timestamp", apperrors.ErrInvalidQuotaInput, doc.ID)
		}
		candidates = append(candidates, doc)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].UploadedAt.Equal(candidates[j].UploadedAt) {
			return candidates[i].UploadedAt.After(candidates[j].UploadedAt)
		}
		return candidates[i].ID > candidates[j].ID
	})

	return candidates[0], nil
}

// consumedSince sums the quota weight of every non-cancelled ride for the
// patient scheduled on or after the window start.
func (e *engine) consumedSince(patientID string, windowStart time.Time, rides []*models.Ride) (float64, error) {
	var consumed float64
	for _, r := range rides {
		if r.PatientID != patientID || r.Status == models.RideStatusCancelled {
			continue
		}
		if r.ScheduledDate.IsZero() {
			return 0, fmt.Errorf("%w: ride %s has no scheduled date", apperrors.ErrInvalidQuotaInput, r.ID)
		}
		if r.ScheduledDate.Before(windowStart) {
			continue
		}
		if r.IsRoundTrip {
			consumed += roundTripWeight
		} else {
			consumed += oneWayWeight
		}
	}
	return consumed, nil
}

func result(state string) *models.QuotaEvaluation {
	return &models.QuotaEvaluation{
		State: state,
		Label: models.QuotaStateLabel(state),
	}
}
