package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/service"
	"github.com/medicab/medicab/pkg/utils"
)

type TransferHandler struct {
	transferService service.TransferService
	validate        *validator.Validate
}

func NewTransferHandler(transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		validate:        validator.New(),
	}
}

func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Post("/transfers", h.ProposeTransfer)
	r.Post("/transfers/{id}/accept", h.AcceptTransfer)
	r.Post("/transfers/{id}/refuse", h.RefuseTransfer)
	r.Post("/transfers/{id}/cancel", h.CancelTransfer)
	r.Get("/accounts/{id}/transfers/incoming", h.ListIncoming)
	r.Get("/accounts/{id}/transfers/outgoing", h.ListOutgoing)
}

type transferActionRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// POST /v1/transfers
func (h *TransferHandler) ProposeTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	transfer, err := h.transferService.ProposeTransfer(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, transfer.ToResponse())
}

// POST /v1/transfers/{id}/accept
func (h *TransferHandler) AcceptTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "transfer id must be a valid uuid")
		return
	}

	var req transferActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	transfer, err := h.transferService.AcceptTransfer(r.Context(), id, req.AccountID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, transfer.ToResponse())
}

// POST /v1/transfers/{id}/refuse
func (h *TransferHandler) RefuseTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "transfer id must be a valid uuid")
		return
	}

	var req transferActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.transferService.RefuseTransfer(r.Context(), id, req.AccountID); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"status": models.TransferStatusRefused})
}

// POST /v1/transfers/{id}/cancel
func (h *TransferHandler) CancelTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "transfer id must be a valid uuid")
		return
	}

	var req transferActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.transferService.CancelTransfer(r.Context(), id, req.AccountID); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"status": models.TransferStatusCancelled})
}

// GET /v1/accounts/{id}/transfers/incoming
func (h *TransferHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(accountID) {
		utils.BadRequest(w, "account id must be a valid uuid")
		return
	}

	transfers, err := h.transferService.ListIncoming(r.Context(), accountID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, transfers)
}

// GET /v1/accounts/{id}/transfers/outgoing
func (h *TransferHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(accountID) {
		utils.BadRequest(w, "account id must be a valid uuid")
		return
	}

	transfers, err := h.transferService.ListOutgoing(r.Context(), accountID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, transfers)
}
