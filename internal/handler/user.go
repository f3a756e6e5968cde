package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/auth"
	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service"
)

type userService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*service.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd repository.UserUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	AddWallet(ctx context.Context, userID uuid.UUID, in service.WalletInput) (*domain.Wallet, error)
	GetWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	GetPaymentMethods(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error)
	GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*service.DashboardSummary, error)
}

type UserHandler struct {
	users userService
}

func NewUserHandler(users userService) *UserHandler {
	return &UserHandler{users: users}
}

type paymentMethodDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func toPaymentMethodDTOs(methods []domain.PaymentMethod) []paymentMethodDTO {
	dtos := make([]paymentMethodDTO, 0, len(methods))
	for _, m := range methods {
		dtos = append(dtos, paymentMethodDTO{
			ID:        m.ID,
			Type:      string(m.Type),
			Name:      m.Name,
			IsDefault: m.IsDefault,
			CreatedAt: m.CreatedAt,
		})
	}
	return dtos
}

type profileDTO struct {
	userDTO
	Wallets        []walletDTO        `json:"wallets"`
	PaymentMethods []paymentMethodDTO `json:"payment_methods"`
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("profile lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, profileDTO{
		userDTO:        toUserDTO(profile.User),
		Wallets:        toWalletDTOs(profile.Wallets),
		PaymentMethods: toPaymentMethodDTOs(profile.PaymentMethods),
	})
}

type updateProfileRequest struct {
	Name          *string `json:"name"`
	Country       *string `json:"country"`
	Currency      *string `json:"currency"`
	AcceptsCrypto *bool   `json:"accepts_crypto"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if req.Currency != nil && len(*req.Currency) != 3 {
		RespondValidationError(w, []FieldError{{Field: "currency", Message: "must be a 3-letter currency code"}})
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, repository.UserUpdate{
		Name:          req.Name,
		Country:       req.Country,
		Currency:      req.Currency,
		AcceptsCrypto: req.AcceptsCrypto,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("profile update failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toUserDTO(*user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r changePasswordRequest) Validate() []FieldError {
	var errs []FieldError

	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "current_password", Message: "required"})
	}
	if len(r.NewPassword) < 8 {
		errs = append(errs, FieldError{Field: "new_password", Message: "must be at least 8 characters"})
	}

	return errs
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		logging.FromContext(r.Context()).Warn("password change failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *UserHandler) AddWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	wallet, err := h.users.AddWallet(r.Context(), userID, service.WalletInput{
		Address:   req.Address,
		Network:   req.Network,
		Type:      req.Type,
		Label:     req.Label,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("user wallet creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toWalletDTO(*wallet))
}

func (h *UserHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	wallets, err := h.users.GetWallets(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("user wallet list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toWalletDTOs(wallets))
}

func (h *UserHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	methods, err := h.users.GetPaymentMethods(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment method list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toPaymentMethodDTOs(methods))
}

type dashboardDTO struct {
	TotalVendors           int64              `json:"total_vendors"`
	VendorsAcceptingCrypto int64              `json:"vendors_accepting_crypto"`
	CryptoPercentage       float64            `json:"crypto_percentage"`
	TotalTransactions      int64              `json:"total_transactions"`
	TotalAmountSent        decimal.Decimal    `json:"total_amount_sent"`
	TotalSavings           decimal.Decimal    `json:"total_savings"`
	ByType                 []typeBreakdownDTO `json:"by_type"`
	RecentTransactions     []transactionDTO   `json:"recent_transactions"`
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	summary, err := h.users.GetDashboardSummary(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("dashboard summary failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, dashboardDTO{
		TotalVendors:           summary.TotalVendors,
		VendorsAcceptingCrypto: summary.VendorsAcceptingCrypto,
		CryptoPercentage:       summary.CryptoPercentage,
		TotalTransactions:      summary.TotalTransactions,
		TotalAmountSent:        summary.TotalAmountSent,
		TotalSavings:           summary.TotalSavings,
		ByType:                 toTypeBreakdownDTOs(summary.ByType),
		RecentTransactions:     toTransactionDTOs(summary.RecentTransactions),
	})
}
