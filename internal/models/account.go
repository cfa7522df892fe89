package models

import (
	"time"
)

// Account is a driver account. Rides, patients and documents are scoped to an
// account; peer accounts exchange rides through transfers.
type Account struct {
	ID          string    `db:"id" json:"id"`
	Phone       string    `db:"phone" json:"phone"`
	Name        string    `db:"name" json:"name"`
	Email       *string   `db:"email" json:"email,omitempty"`
	CompanyName *string   `db:"company_name" json:"company_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateAccountRequest struct {
	Phone       string `json:"phone" validate:"required,min=10,max=15"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=120"`
}

type AccountResponse struct {
	ID          string  `json:"id"`
	Phone       string  `json:"phone"`
	Name        string  `json:"name"`
	Email       *string `json:"email,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
}

func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Phone:       a.Phone,
		Name:        a.Name,
		Email:       a.Email,
		CompanyName: a.CompanyName,
	}
}
