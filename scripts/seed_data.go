//go:build ignore

package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/medicab/medicab/internal/config"
	"github.com/medicab/medicab/internal/database"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/repository"
)

var patientNames = []string{
	"Jean Dupont", "Marie Lambert", "Paul Moreau", "Nicole Fontaine", "Henri Lefevre",
	"Jacqueline Roux", "Andre Girard", "Simone Bonnet", "Marcel Dubois", "Therese Garnier",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(db.DB)
	patientRepo := repository.NewPatientRepository(db.DB)
	rideRepo := repository.NewRideRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)

	log.Println("Creating demo account...")
	account := &models.Account{Phone: "0611223344", Name: "Demo Driver"}
	if err := accountRepo.Create(ctx, account); err != nil {
		log.Fatalf("Failed to create account: %v", err)
	}

	log.Printf("Creating %d patients with rides and authorizations...", len(patientNames))
	for i, name := range patientNames {
		patient := &models.Patient{AccountID: account.ID, FullName: name}
		if err := patientRepo.Create(ctx, patient); err != nil {
			log.Fatalf("Failed to create patient: %v", err)
		}

		// Most patients get a counted BT, a couple get a series authorization
		// and one is left without any to exercise the missing banner.
		if i != 0 {
			maxTrips := 4 + rand.Intn(8)
			if i%4 == 0 {
				maxTrips = 1000
			}
			document := &models.Document{
				AccountID:          account.ID,
				PatientID:          patient.ID,
				Type:               models.DocumentTypeTransportAuthorization,
				UploadedAt:         time.Now().AddDate(0, -1, 0),
				MaxAuthorizedTrips: maxTrips,
			}
			if err := documentRepo.Create(ctx, document); err != nil {
				log.Fatalf("Failed to create document: %v", err)
			}
		}

		for d := 0; d < 2+rand.Intn(4); d++ {
			ride := &models.Ride{
				AccountID:     account.ID,
				PatientID:     patient.ID,
				ScheduledDate: time.Now().AddDate(0, 0, d+1).Add(time.Duration(8+rand.Intn(9)) * time.Hour),
				Kind:          models.RideKindConsultation,
				IsRoundTrip:   rand.Intn(2) == 0,
			}
			if err := rideRepo.Create(ctx, ride); err != nil {
				log.Fatalf("Failed to create ride: %v", err)
			}
		}
	}

	log.Printf("Done. Account id: %s", account.ID)
}
