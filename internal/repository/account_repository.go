package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-registry-api/internal/models"
)

// AccountRepository manages API accounts used for authentication.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `INSERT INTO accounts (id, name, email, password_hash, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// FindByEmail fetches an account by email, case-insensitively.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const query = `SELECT id, name, email, password_hash, created_at, updated_at
        FROM accounts WHERE LOWER(email) = LOWER($1)`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, err
	}
	return &account, nil
}
