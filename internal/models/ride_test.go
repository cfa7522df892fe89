package models

import (
	"testing"
)

func TestRideCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"scheduled to dispatched", RideStatusScheduled, RideStatusDispatched, true},
		{"scheduled straight to started", RideStatusScheduled, RideStatusStarted, true},
		{"dispatched to started", RideStatusDispatched, RideStatusStarted, true},
		{"started to finished", RideStatusStarted, RideStatusFinished, true},
		{"scheduled to cancelled", RideStatusScheduled, RideStatusCancelled, true},
		{"started to cancelled", RideStatusStarted, RideStatusCancelled, true},
		{"finished is terminal", RideStatusFinished, RideStatusCancelled, false},
		{"cancelled is terminal", RideStatusCancelled, RideStatusScheduled, false},
		{"no skipping to finished", RideStatusScheduled, RideStatusFinished, false},
		{"unknown status", "teleporting", RideStatusFinished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := &Ride{Status: tt.from}
			if got := ride.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRequiresAuthorization(t *testing.T) {
	requiring := []string{RideKindOneWay, RideKindReturn, RideKindRoundTrip, RideKindConsultation}
	for _, kind := range requiring {
		if !RequiresAuthorization(kind) {
			t.Errorf("RequiresAuthorization(%s) = false, want true", kind)
		}
	}

	exempt := []string{RideKindHospitalization, RideKindDayHospital, "unknown"}
	for _, kind := range exempt {
		if RequiresAuthorization(kind) {
			t.Errorf("RequiresAuthorization(%s) = true, want false", kind)
		}
	}
}
