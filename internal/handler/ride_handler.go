package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/medicab/medicab/internal/errors"
	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/service"
	"github.com/medicab/medicab/pkg/utils"
)

type RideHandler struct {
	rideService  service.RideService
	quotaService service.QuotaService
	validate     *validator.Validate
}

func NewRideHandler(rideService service.RideService, quotaService service.QuotaService) *RideHandler {
	return &RideHandler{
		rideService:  rideService,
		quotaService: quotaService,
		validate:     validator.New(),
	}
}

func (h *RideHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rides", h.CreateRide)
	r.Get("/rides/{id}", h.GetRide)
	r.Get("/rides/{id}/quota", h.GetRideQuota)
	r.Post("/rides/{id}/start", h.StartRide)
	r.Post("/rides/{id}/finish", h.FinishRide)
	r.Post("/rides/{id}/cancel", h.CancelRide)
	r.Get("/accounts/{id}/rides", h.ListUpcomingRides)
}

// POST /v1/rides
func (h *RideHandler) CreateRide(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.CreateRide(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, ride)
}

// GET /v1/rides/{id}
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	ride, err := h.rideService.GetRide(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	// The banner rides along with the ride payload so the client renders
	// both in one round trip.
	if quota, err := h.quotaService.EvaluateRide(r.Context(), id); err == nil {
		ride.Quota = quota
	}

	utils.Success(w, http.StatusOK, ride)
}

// GET /v1/rides/{id}/quota
func (h *RideHandler) GetRideQuota(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	eval, err := h.quotaService.EvaluateRide(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, eval)
}

// POST /v1/rides/{id}/start
func (h *RideHandler) StartRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	if err := h.rideService.StartRide(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"status": models.RideStatusStarted})
}

// POST /v1/rides/{id}/finish
func (h *RideHandler) FinishRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	var req models.FinishRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.rideService.FinishRide(r.Context(), id, &req); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"status": models.RideStatusFinished})
}

// POST /v1/rides/{id}/cancel
func (h *RideHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	var req models.CancelRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.rideService.CancelRide(r.Context(), id, &req); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  "cancelled",
		"message": "ride cancelled successfully",
	})
}

// GET /v1/accounts/{id}/rides
func (h *RideHandler) ListUpcomingRides(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(accountID) {
		utils.BadRequest(w, "account id must be a valid uuid")
		return
	}

	rides, err := h.rideService.ListUpcoming(r.Context(), accountID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, rides)
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*apperrors.APIError); ok {
		utils.Error(w, apiErr)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrTemporalRisk):
		utils.Error(w, apperrors.TemporalRisk())
	case errors.Is(err, apperrors.ErrTransferNotPending):
		utils.Error(w, apperrors.TransferNotPending())
	case errors.Is(err, apperrors.ErrTransferExpired):
		utils.Error(w, apperrors.TransferExpired())
	case errors.Is(err, apperrors.ErrInvalidQuotaInput):
		utils.BadRequest(w, err.Error())
	default:
		utils.InternalError(w, "internal server error")
	}
}
