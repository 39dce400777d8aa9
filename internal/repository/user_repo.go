package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

// GetByEmail returns nil, nil when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, role, created_at
		FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("UserRepository.GetByEmail: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, name, email, phone, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("UserRepository.Create: hash password: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`, name, email, phone, hashed, role)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("a user with this email already exists")
		}
		return fmt.Errorf("UserRepository.Create: %w", err)
	}
	return nil
}
