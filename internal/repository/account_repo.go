package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medicab/medicab/internal/models"
	"github.com/medicab/medicab/pkg/utils"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = utils.GenerateID()
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	query := `
		INSERT INTO accounts (id, phone, name, email, company_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Phone, account.Name, account.Email, account.CompanyName,
		account.CreatedAt, account.UpdatedAt)
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	query := `SELECT * FROM accounts WHERE id = $1`
	err := r.db.GetContext(ctx, &account, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &account, err
}

func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	var account models.Account
	query := `SELECT * FROM accounts WHERE phone = $1`
	err := r.db.GetContext(ctx, &account, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &account, err
}
