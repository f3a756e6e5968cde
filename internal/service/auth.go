package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendorpay/vendorpay-backend/internal/auth"
	"github.com/vendorpay/vendorpay-backend/internal/domain"
)

const minPasswordLength = 8

// AuthService registers users and exchanges credentials for bearer tokens.
type AuthService struct {
	users     userStore
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(users userStore, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type RegisterInput struct {
	Email         string
	Name          string
	Password      string
	Country       string
	Currency      string
	AcceptsCrypto bool
}

type AuthResult struct {
	User  domain.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Email == "" || in.Name == "" || in.Country == "" || in.Currency == "" {
		return nil, fmt.Errorf("Register: %w", domain.ErrInvalidRequest)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("Register: %w", domain.ErrInvalidRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash password: %w", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		Email:         in.Email,
		Name:          in.Name,
		PasswordHash:  string(hash),
		Country:       in.Country,
		Currency:      in.Currency,
		AcceptsCrypto: in.AcceptsCrypto,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResult{User: *user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResult{User: *user, Token: token}, nil
}
