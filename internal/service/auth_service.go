package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	Create(ctx context.Context, name, email, phone, password, role string) error
}

// AuthService issues HS256 session tokens and registers users. Passwords are
// compared against their bcrypt hash; a bad email and a bad password produce
// the same error.
type AuthService struct {
	Repo     UserStore
	Secret   []byte
	TokenTTL time.Duration
}

func NewAuthService(repo UserStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{Repo: repo, Secret: []byte(secret), TokenTTL: tokenTTL}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.Validation("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.Validation("invalid credentials")
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(s.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", apperrors.Internal(err, "could not sign token")
	}
	return signed, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) error {
	if name == "" {
		return apperrors.Validation("name is required")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.Validation("a valid email is required")
	}
	if len(password) < 8 {
		return apperrors.Validation("password must be at least 8 characters")
	}
	return s.Repo.Create(ctx, name, email, phone, password, "user")
}
