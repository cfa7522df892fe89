package models

import (
	"time"
)

type Patient struct {
	ID             string    `db:"id" json:"id"`
	AccountID      string    `db:"account_id" json:"account_id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	SocialSecurity *string   `db:"social_security" json:"social_security,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type CreatePatientRequest struct {
	AccountID      string `json:"account_id" validate:"required,uuid"`
	FullName       string `json:"full_name" validate:"required,min=2,max=120"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	SocialSecurity string `json:"social_security,omitempty" validate:"omitempty,len=15"`
	Address        string `json:"address,omitempty"`
}

type PatientResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

func (p *Patient) ToResponse() *PatientResponse {
	return &PatientResponse{
		ID:       p.ID,
		FullName: p.FullName,
		Phone:    p.Phone,
		Address:  p.Address,
	}
}
