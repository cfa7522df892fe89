package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/medicab/medicab/internal/cache"
	"github.com/medicab/medicab/internal/config"
	"github.com/medicab/medicab/internal/database"
	"github.com/medicab/medicab/internal/handler"
	"github.com/medicab/medicab/internal/middleware"
	"github.com/medicab/medicab/internal/quota"
	"github.com/medicab/medicab/internal/repository"
	"github.com/medicab/medicab/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	// Initialize PostgreSQL
	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis
	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	// Initialize cache
	evalCache := cache.NewEvaluationCache(redis.Client, time.Duration(cfg.EvaluationCacheTTLSecs)*time.Second)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db.DB)
	patientRepo := repository.NewPatientRepository(db.DB)
	rideRepo := repository.NewRideRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)
	transferRepo := repository.NewTransferRepository(db.DB)

	// Initialize quota engine and services
	engine := quota.NewEngine(cfg.QuotaUnlimitedThreshold, cfg.QuotaLowThreshold)
	quotaService := service.NewQuotaService(engine, rideRepo, documentRepo, patientRepo, evalCache)
	rideService := service.NewRideService(rideRepo, patientRepo, accountRepo, evalCache)
	documentService := service.NewDocumentService(documentRepo, patientRepo, rideRepo, evalCache)
	transferService := service.NewTransferService(db.DB, transferRepo, rideRepo, accountRepo, evalCache,
		time.Duration(cfg.TransferExpiryMinutes)*time.Minute)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountRepo)
	patientHandler := handler.NewPatientHandler(patientRepo, quotaService)
	rideHandler := handler.NewRideHandler(rideService, quotaService)
	documentHandler := handler.NewDocumentHandler(documentService)
	transferHandler := handler.NewTransferHandler(transferService)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// New Relic middleware
	if nrApp != nil {
		r.Use(middleware.NewRelicMiddleware(nrApp))
	}

	// Rate limiter (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(redis.Client, 100, time.Minute)
	r.Use(rateLimiter.Handler)

	// Idempotency middleware
	idempotencyMw := middleware.NewIdempotencyMiddleware(redis.Client)
	r.Use(idempotencyMw.Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}

		if err := redis.Health(ctx); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","services":{"database":"up","redis":"up"}}`))
	})

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r)
		patientHandler.RegisterRoutes(r)
		rideHandler.RegisterRoutes(r)
		documentHandler.RegisterRoutes(r)
		transferHandler.RegisterRoutes(r)
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Println("API endpoints:")
	log.Println("  POST /v1/accounts                 - Create driver account")
	log.Println("  POST /v1/patients                 - Create patient")
	log.Println("  POST /v1/rides                    - Schedule ride")
	log.Println("  GET  /v1/rides/{id}/quota         - Authorization status for a ride")
	log.Println("  POST /v1/documents                - Upload document / attach BT")
	log.Println("  POST /v1/transfers                - Propose ride handoff")
	log.Println("  POST /v1/transfers/{id}/accept    - Accept handoff")
	log.Println("  POST /v1/transfers/{id}/refuse    - Refuse handoff")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
