package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/service"
)

type authService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

type AuthHandler struct {
	auth authService
}

func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	Country       string `json:"country"`
	Currency      string `json:"currency"`
	AcceptsCrypto bool   `json:"accepts_crypto"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if !strings.Contains(r.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}

	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	if r.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "required"})
	}

	if len(r.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter currency code"})
	}

	return errs
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	Currency      string    `json:"currency"`
	AcceptsCrypto bool      `json:"accepts_crypto"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Country:       u.Country,
		Currency:      u.Currency,
		AcceptsCrypto: u.AcceptsCrypto,
		CreatedAt:     u.CreatedAt,
	}
}

type authResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		Country:       req.Country,
		Currency:      strings.ToUpper(req.Currency),
		AcceptsCrypto: req.AcceptsCrypto,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("registration failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, authResponse{User: toUserDTO(result.User), Token: result.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if req.Email == "" || req.Password == "" {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logging.FromContext(r.Context()).Warn("login failed", "email", req.Email, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, authResponse{User: toUserDTO(result.User), Token: result.Token})
}
