package quota

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
)

const patientID = "6f1c9f9a-0000-4000-8000-000000000001"

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestEngine() Engine {
	return NewEngine(1000, 1.0)
}

func evalRide() *models.Ride {
	return &models.Ride{
		ID:            "ride-under-evaluation",
		PatientID:     patientID,
		ScheduledDate: date("2024-03-01"),
		Kind:          models.RideKindOneWay,
		Status:        models.RideStatusScheduled,
	}
}

func authorization(id string, uploaded string, maxTrips int) *models.Document {
	return &models.Document{
		ID:                 id,
		PatientID:          patientID,
		Type:               models.DocumentTypeTransportAuthorization,
		UploadedAt:         date(uploaded),
		MaxAuthorizedTrips: maxTrips,
	}
}

func patientRide(id string, scheduled string, roundTrip bool, status string) *models.Ride {
	return &models.Ride{
		ID:            id,
		PatientID:     patientID,
		ScheduledDate: date(scheduled),
		Kind:          models.RideKindOneWay,
		IsRoundTrip:   roundTrip,
		Status:        status,
	}
}

// nRides builds n one-way rides on/after the given date, none cancelled.
func nRides(n int, scheduled string) []*models.Ride {
	rides := make([]*models.Ride, 0, n)
	for i := 0; i < n; i++ {
		rides = append(rides, patientRide("r", scheduled, false, models.RideStatusScheduled))
	}
	return rides
}

func TestEvaluateMissing(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		documents []*models.Document
	}{
		{"no documents at all", nil},
		{"only insurance cards", []*models.Document{
			{ID: "d1", PatientID: patientID, Type: models.DocumentTypeInsuranceCard, UploadedAt: date("2024-01-01")},
		}},
		{"authorization for another patient", []*models.Document{
			{ID: "d2", PatientID: "someone-else", Type: models.DocumentTypeTransportAuthorization, UploadedAt: date("2024-01-01"), MaxAuthorizedTrips: 6},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := e.Evaluate(evalRide(), tt.documents, nil)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if eval.State != models.QuotaStateMissing {
				t.Errorf("state = %s, want %s", eval.State, models.QuotaStateMissing)
			}
			if eval.Consumed != nil || eval.Remaining != nil {
				t.Errorf("missing state must not carry counts, got consumed=%v remaining=%v", eval.Consumed, eval.Remaining)
			}
		})
	}
}

func TestEvaluateEmptyPatientIdentifier(t *testing.T) {
	e := newTestEngine()

	ride := evalRide()
	ride.PatientID = ""

	eval, err := e.Evaluate(ride, []*models.Document{authorization("d1", "2024-01-01", 6)}, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.State != models.QuotaStateMissing {
		t.Errorf("state = %s, want %s (absent identity is absent coverage, not a fault)", eval.State, models.QuotaStateMissing)
	}
}

func TestEvaluateNotApplicable(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		kind   string
		status string
	}{
		{"hospitalization kind", models.RideKindHospitalization, models.RideStatusScheduled},
		{"day hospital kind", models.RideKindDayHospital, models.RideStatusScheduled},
		{"finished ride", models.RideKindOneWay, models.RideStatusFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := evalRide()
			ride.Kind = tt.kind
			ride.Status = tt.status

			eval, err := e.Evaluate(ride, nil, nil)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if eval.State != models.QuotaStateNotApplicable {
				t.Errorf("state = %s, want %s", eval.State, models.QuotaStateNotApplicable)
			}
		})
	}
}

func TestEvaluateUnlimited(t *testing.T) {
	e := newTestEngine()

	for _, maxTrips := range []int{1000, 1500, 9999} {
		eval, err := e.Evaluate(evalRide(), []*models.Document{authorization("d1", "2024-01-01", maxTrips)}, nRides(40, "2024-01-02"))
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if eval.State != models.QuotaStateUnlimited {
			t.Errorf("max=%d: state = %s, want %s", maxTrips, eval.State, models.QuotaStateUnlimited)
		}
		if eval.Remaining != nil {
			t.Errorf("max=%d: unlimited state must not carry counts", maxTrips)
		}
	}

	// One below the sentinel is a plain counted authorization.
	eval, err := e.Evaluate(evalRide(), []*models.Document{authorization("d1", "2024-01-01", 999)}, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.State != models.QuotaStateOK {
		t.Errorf("max=999: state = %s, want %s", eval.State, models.QuotaStateOK)
	}
}

func TestEvaluateConsumption(t *testing.T) {
	e := newTestEngine()

	// Prescription uploaded 2024-01-01, max 6. Three one-way rides (0.5 each)
	// and two round trips (1.0 each), all inside the window, none cancelled.
	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}
	rides := []*models.Ride{
		patientRide("r1", "2024-01-05", false, models.RideStatusFinished),
		patientRide("r2", "2024-01-10", false, models.RideStatusScheduled),
		patientRide("r3", "2024-02-01", false, models.RideStatusStarted),
		patientRide("r4", "2024-02-10", true, models.RideStatusScheduled),
		patientRide("r5", "2024-02-20", true, models.RideStatusDispatched),
	}

	eval, err := e.Evaluate(evalRide(), documents, rides)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.State != models.QuotaStateOK {
		t.Errorf("state = %s, want %s", eval.State, models.QuotaStateOK)
	}
	if eval.Consumed == nil || *eval.Consumed != 3.5 {
		t.Errorf("consumed = %v, want 3.5", eval.Consumed)
	}
	if eval.Remaining == nil || *eval.Remaining != 2.5 {
		t.Errorf("remaining = %v, want 2.5", eval.Remaining)
	}
	if eval.Max == nil || *eval.Max != 6 {
		t.Errorf("max = %v, want 6", eval.Max)
	}
}

func TestEvaluateExcludesCancelledAndPreWindowRides(t *testing.T) {
	e := newTestEngine()

	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}
	rides := []*models.Ride{
		patientRide("r1", "2024-01-10", true, models.RideStatusCancelled),
		patientRide("r2", "2023-12-20", true, models.RideStatusFinished), // before the window
		patientRide("r3", "2024-01-01", false, models.RideStatusScheduled), // window start is inclusive
		{ID: "r4", PatientID: "someone-else", ScheduledDate: date("2024-01-15"), Kind: models.RideKindOneWay, IsRoundTrip: true, Status: models.RideStatusScheduled},
	}

	eval, err := e.Evaluate(evalRide(), documents, rides)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Consumed == nil || *eval.Consumed != 0.5 {
		t.Errorf("consumed = %v, want 0.5 (only r3 counts)", eval.Consumed)
	}
}

func TestEvaluateClassificationBoundaries(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name          string
		oneWayRides   int
		wantState     string
		wantRemaining float64
	}{
		{"remaining 1.5 is ok", 9, models.QuotaStateOK, 1.5},
		{"remaining exactly 1 is low", 10, models.QuotaStateLow, 1.0},
		{"remaining 0.5 is low", 11, models.QuotaStateLow, 0.5},
		{"remaining exactly 0 is exhausted", 12, models.QuotaStateExhausted, 0},
		{"overconsumption is exhausted", 14, models.QuotaStateExhausted, -1},
	}

	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := e.Evaluate(evalRide(), documents, nRides(tt.oneWayRides, "2024-01-15"))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if eval.State != tt.wantState {
				t.Errorf("state = %s, want %s", eval.State, tt.wantState)
			}
			if *eval.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %v, want %v", *eval.Remaining, tt.wantRemaining)
			}
		})
	}
}

// The governing prescription is always the most recently uploaded one, even
// for rides scheduled inside an older prescription's window. A
// nearest-prescription implementation fails this test.
func TestEvaluateMostRecentUploadGoverns(t *testing.T) {
	e := newTestEngine()

	documents := []*models.Document{
		authorization("d-january", "2024-01-01", 2),
		authorization("d-february", "2024-02-01", 6),
	}
	// Ride sits between the two uploads, chronologically closest to January's.
	ride := evalRide()
	ride.ScheduledDate = date("2024-01-15")

	rides := []*models.Ride{
		patientRide("r1", "2024-01-15", true, models.RideStatusScheduled),  // before Feb window, excluded
		patientRide("r2", "2024-02-05", false, models.RideStatusScheduled), // inside Feb window
	}

	eval, err := e.Evaluate(ride, documents, rides)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Max == nil || *eval.Max != 6 {
		t.Fatalf("max = %v, want 6 (February prescription governs)", eval.Max)
	}
	if *eval.Consumed != 0.5 {
		t.Errorf("consumed = %v, want 0.5 (window starts at the February upload)", *eval.Consumed)
	}
}

func TestEvaluateTieBreakOnUploadTimestamp(t *testing.T) {
	e := newTestEngine()

	// Same upload instant; the greater document id wins, deterministically,
	// regardless of input order.
	docA := authorization("a-doc", "2024-01-01", 2)
	docZ := authorization("z-doc", "2024-01-01", 8)

	for _, documents := range [][]*models.Document{
		{docA, docZ},
		{docZ, docA},
	} {
		eval, err := e.Evaluate(evalRide(), documents, nil)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if eval.Max == nil || *eval.Max != 8 {
			t.Errorf("max = %v, want 8 (z-doc wins the tie)", eval.Max)
		}
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	e := newTestEngine()

	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}
	rides := nRides(5, "2024-01-15")

	first, err := e.Evaluate(evalRide(), documents, rides)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	second, err := e.Evaluate(evalRide(), documents, rides)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if first.State != second.State || *first.Consumed != *second.Consumed || *first.Remaining != *second.Remaining {
		t.Errorf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
}

func TestEvaluateMonotonicConsumption(t *testing.T) {
	e := newTestEngine()

	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}

	rides := nRides(3, "2024-01-15")
	prev := 7.0
	for i := 0; i < 8; i++ {
		eval, err := e.Evaluate(evalRide(), documents, rides)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if *eval.Remaining >= prev {
			t.Fatalf("remaining did not decrease: %v after %v", *eval.Remaining, prev)
		}
		prev = *eval.Remaining
		rides = append(rides, patientRide("extra", "2024-02-01", i%2 == 0, models.RideStatusScheduled))
	}
}

func TestEvaluateValidationErrors(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name      string
		ride      *models.Ride
		documents []*models.Document
		rides     []*models.Ride
	}{
		{
			name:      "negative max trips",
			ride:      evalRide(),
			documents: []*models.Document{authorization("d1", "2024-01-01", -1)},
		},
		{
			name: "document without upload timestamp",
			ride: evalRide(),
			documents: []*models.Document{
				{ID: "d1", PatientID: patientID, Type: models.DocumentTypeTransportAuthorization, MaxAuthorizedTrips: 6},
			},
		},
		{
			name:      "ride without scheduled date",
			ride:      &models.Ride{ID: "r", PatientID: patientID, Kind: models.RideKindOneWay, Status: models.RideStatusScheduled},
			documents: []*models.Document{authorization("d1", "2024-01-01", 6)},
		},
		{
			name:      "history ride without scheduled date",
			ride:      evalRide(),
			documents: []*models.Document{authorization("d1", "2024-01-01", 6)},
			rides: []*models.Ride{
				{ID: "bad", PatientID: patientID, Kind: models.RideKindOneWay, Status: models.RideStatusScheduled},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Evaluate(tt.ride, tt.documents, tt.rides)
			if !errors.Is(err, apperrors.ErrInvalidQuotaInput) {
				t.Errorf("Evaluate() error = %v, want ErrInvalidQuotaInput", err)
			}
		})
	}
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	e := newTestEngine()

	ride := evalRide()
	documents := []*models.Document{authorization("d1", "2024-01-01", 6)}
	rides := []*models.Ride{patientRide("r1", "2024-01-15", true, models.RideStatusScheduled)}

	before := *rides[0]
	if _, err := e.Evaluate(ride, documents, rides); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if *rides[0] != before {
		t.Error("Evaluate() mutated a supplied ride")
	}
	if ride.Status != models.RideStatusScheduled {
		t.Error("Evaluate() mutated the evaluated ride")
	}
}
