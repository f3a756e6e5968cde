package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendorpay/vendorpay-backend/internal/auth"
	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service"
)

type vendorService interface {
	CreateVendor(ctx context.Context, userID uuid.UUID, in service.CreateVendorInput) (*domain.Vendor, error)
	GetVendors(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	GetVendorsAcceptingCrypto(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	GetVendor(ctx context.Context, userID, vendorID uuid.UUID) (*service.VendorDetail, error)
	UpdateVendor(ctx context.Context, userID, vendorID uuid.UUID, upd domain.VendorUpdate) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, userID, vendorID uuid.UUID) error
	AddBankAccount(ctx context.Context, userID, vendorID uuid.UUID, in service.BankAccountInput) (*domain.BankAccount, error)
	GetBankAccounts(ctx context.Context, userID, vendorID uuid.UUID) ([]domain.BankAccount, error)
	AddWallet(ctx context.Context, userID, vendorID uuid.UUID, in service.WalletInput) (*domain.Wallet, error)
	GetWallets(ctx context.Context, userID, vendorID uuid.UUID) ([]domain.Wallet, error)
	GetVendorPayments(ctx context.Context, userID, vendorID uuid.UUID) ([]repository.TransactionRecord, error)
}

type VendorHandler struct {
	vendors vendorService
}

func NewVendorHandler(vendors vendorService) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

type createVendorRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Country       string  `json:"country"`
	Currency      string  `json:"currency"`
	ContactName   *string `json:"contact_name"`
	ContactPhone  *string `json:"contact_phone"`
	Website       *string `json:"website"`
	AcceptsCrypto bool    `json:"accepts_crypto"`
	PaymentTerms  *string `json:"payment_terms"`
	Notes         *string `json:"notes"`
}

func (r createVendorRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}

	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	} else if !strings.Contains(r.Email, "@") {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}

	if r.Country == "" {
		errs = append(errs, FieldError{Field: "country", Message: "required"})
	}

	if len(r.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter currency code"})
	}

	return errs
}

type updateVendorRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Country       *string `json:"country"`
	Currency      *string `json:"currency"`
	ContactName   *string `json:"contact_name"`
	ContactPhone  *string `json:"contact_phone"`
	Website       *string `json:"website"`
	AcceptsCrypto *bool   `json:"accepts_crypto"`
	PaymentTerms  *string `json:"payment_terms"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"`
}

type vendorDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Country       string    `json:"country"`
	Currency      string    `json:"currency"`
	ContactName   *string   `json:"contact_name,omitempty"`
	ContactPhone  *string   `json:"contact_phone,omitempty"`
	Website       *string   `json:"website,omitempty"`
	AcceptsCrypto bool      `json:"accepts_crypto"`
	PaymentTerms  *string   `json:"payment_terms,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toVendorDTO(v domain.Vendor) vendorDTO {
	return vendorDTO{
		ID:            v.ID,
		Name:          v.Name,
		Email:         v.Email,
		Country:       v.Country,
		Currency:      v.Currency,
		ContactName:   v.ContactName,
		ContactPhone:  v.ContactPhone,
		Website:       v.Website,
		AcceptsCrypto: v.AcceptsCrypto,
		PaymentTerms:  v.PaymentTerms,
		Notes:         v.Notes,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toVendorDTOs(vendors []domain.Vendor) []vendorDTO {
	dtos := make([]vendorDTO, 0, len(vendors))
	for _, v := range vendors {
		dtos = append(dtos, toVendorDTO(v))
	}
	return dtos
}

type bankAccountDTO struct {
	ID            uuid.UUID `json:"id"`
	VendorID      uuid.UUID `json:"vendor_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	SwiftCode     *string   `json:"swift_code,omitempty"`
	RoutingNumber *string   `json:"routing_number,omitempty"`
	IBAN          *string   `json:"iban,omitempty"`
	Currency      string    `json:"currency"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBankAccountDTO(a domain.BankAccount) bankAccountDTO {
	return bankAccountDTO{
		ID:            a.ID,
		VendorID:      a.VendorID,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		AccountName:   a.AccountName,
		SwiftCode:     a.SwiftCode,
		RoutingNumber: a.RoutingNumber,
		IBAN:          a.IBAN,
		Currency:      a.Currency,
		IsDefault:     a.IsDefault,
		CreatedAt:     a.CreatedAt,
	}
}

func toBankAccountDTOs(accounts []domain.BankAccount) []bankAccountDTO {
	dtos := make([]bankAccountDTO, 0, len(accounts))
	for _, a := range accounts {
		dtos = append(dtos, toBankAccountDTO(a))
	}
	return dtos
}

type walletDTO struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Network   string    `json:"network"`
	Type      string    `json:"type"`
	Label     *string   `json:"label,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func toWalletDTO(w domain.Wallet) walletDTO {
	return walletDTO{
		ID:        w.ID,
		Address:   w.Address,
		Network:   w.Network,
		Type:      w.Type,
		Label:     w.Label,
		IsDefault: w.IsDefault,
		CreatedAt: w.CreatedAt,
	}
}

func toWalletDTOs(wallets []domain.Wallet) []walletDTO {
	dtos := make([]walletDTO, 0, len(wallets))
	for _, w := range wallets {
		dtos = append(dtos, toWalletDTO(w))
	}
	return dtos
}

type vendorDetailDTO struct {
	vendorDTO
	BankAccounts   []bankAccountDTO `json:"bank_accounts"`
	Wallets        []walletDTO      `json:"wallets"`
	RecentPayments []transactionDTO `json:"recent_payments"`
}

type createBankAccountRequest struct {
	BankName      string  `json:"bank_name"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	SwiftCode     *string `json:"swift_code"`
	RoutingNumber *string `json:"routing_number"`
	IBAN          *string `json:"iban"`
	Currency      string  `json:"currency"`
	IsDefault     bool    `json:"is_default"`
}

func (r createBankAccountRequest) Validate() []FieldError {
	var errs []FieldError

	if r.BankName == "" {
		errs = append(errs, FieldError{Field: "bank_name", Message: "required"})
	}
	if r.AccountNumber == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	}
	if r.AccountName == "" {
		errs = append(errs, FieldError{Field: "account_name", Message: "required"})
	}
	if len(r.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter currency code"})
	}

	return errs
}

type createWalletRequest struct {
	Address   string  `json:"address"`
	Network   string  `json:"network"`
	Type      string  `json:"type"`
	Label     *string `json:"label"`
	IsDefault bool    `json:"is_default"`
}

func (r createWalletRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Address == "" {
		errs = append(errs, FieldError{Field: "address", Message: "required"})
	}
	if r.Network == "" {
		errs = append(errs, FieldError{Field: "network", Message: "required"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	}

	return errs
}

func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	vendor, err := h.vendors.CreateVendor(r.Context(), userID, service.CreateVendorInput{
		Name:          req.Name,
		Email:         req.Email,
		Country:       req.Country,
		Currency:      strings.ToUpper(req.Currency),
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		Website:       req.Website,
		AcceptsCrypto: req.AcceptsCrypto,
		PaymentTerms:  req.PaymentTerms,
		Notes:         req.Notes,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toVendorDTO(*vendor))
}

func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendors, err := h.vendors.GetVendors(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTOs(vendors))
}

func (h *VendorHandler) ListAcceptingCrypto(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendors, err := h.vendors.GetVendorsAcceptingCrypto(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("crypto vendor list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTOs(vendors))
}

func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	detail, err := h.vendors.GetVendor(r.Context(), userID, vendorID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, vendorDetailDTO{
		vendorDTO:      toVendorDTO(detail.Vendor),
		BankAccounts:   toBankAccountDTOs(detail.BankAccounts),
		Wallets:        toWalletDTOs(detail.Wallets),
		RecentPayments: toTransactionDTOs(detail.RecentPayments),
	})
}

func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req updateVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var status *domain.VendorStatus
	if req.Status != nil {
		s := domain.VendorStatus(*req.Status)
		status = &s
	}

	vendor, err := h.vendors.UpdateVendor(r.Context(), userID, vendorID, domain.VendorUpdate{
		Name:          req.Name,
		Email:         req.Email,
		Country:       req.Country,
		Currency:      req.Currency,
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		Website:       req.Website,
		AcceptsCrypto: req.AcceptsCrypto,
		PaymentTerms:  req.PaymentTerms,
		Notes:         req.Notes,
		Status:        status,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor update failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toVendorDTO(*vendor))
}

func (h *VendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.vendors.DeleteVendor(r.Context(), userID, vendorID); err != nil {
		logging.FromContext(r.Context()).Warn("vendor delete failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *VendorHandler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req createBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.vendors.AddBankAccount(r.Context(), userID, vendorID, service.BankAccountInput{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		SwiftCode:     req.SwiftCode,
		RoutingNumber: req.RoutingNumber,
		IBAN:          req.IBAN,
		Currency:      strings.ToUpper(req.Currency),
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("bank account creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toBankAccountDTO(*account))
}

func (h *VendorHandler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	accounts, err := h.vendors.GetBankAccounts(r.Context(), userID, vendorID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("bank account list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toBankAccountDTOs(accounts))
}

func (h *VendorHandler) AddWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
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

	wallet, err := h.vendors.AddWallet(r.Context(), userID, vendorID, service.WalletInput{
		Address:   req.Address,
		Network:   req.Network,
		Type:      req.Type,
		Label:     req.Label,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("wallet creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toWalletDTO(*wallet))
}

func (h *VendorHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	wallets, err := h.vendors.GetWallets(r.Context(), userID, vendorID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("wallet list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toWalletDTOs(wallets))
}

func (h *VendorHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	vendorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	payments, err := h.vendors.GetVendorPayments(r.Context(), userID, vendorID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("vendor payment list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(payments))
}
