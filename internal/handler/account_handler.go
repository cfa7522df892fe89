package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/internal/repository"
	"github.com/medicab/medicab/pkg/utils"
)

type AccountHandler struct {
	accountRepo repository.AccountRepository
	validate    *validator.Validate
}

func NewAccountHandler(accountRepo repository.AccountRepository) *AccountHandler {
	return &AccountHandler{
		accountRepo: accountRepo,
		validate:    validator.New(),
	}
}

func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts", h.CreateAccount)
	r.Get("/accounts/{id}", h.GetAccount)
}

// POST /v1/accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	existing, err := h.accountRepo.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		utils.InternalError(w, "failed to check existing account")
		return
	}
	if existing != nil {
		utils.JSON(w, http.StatusConflict, map[string]string{
			"error":   "conflict",
			"message": "account with this phone already exists",
		})
		return
	}

	account := &models.Account{
		Phone: req.Phone,
		Name:  req.Name,
	}
	if req.Email != "" {
		account.Email = &req.Email
	}
	if req.CompanyName != "" {
		account.CompanyName = &req.CompanyName
	}

	if err := h.accountRepo.Create(r.Context(), account); err != nil {
		utils.InternalError(w, "failed to create account")
		return
	}

	utils.Created(w, account.ToResponse())
}

// GET /v1/accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "account id must be a valid uuid")
		return
	}

	account, err := h.accountRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.InternalError(w, "failed to get account")
		return
	}
	if account == nil {
		utils.NotFound(w, "account")
		return
	}

	utils.Success(w, http.StatusOK, account.ToResponse())
}
