package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/auth"
	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
	"github.com/vendorpay/vendorpay-backend/internal/service/payment"
)

type paymentService interface {
	CreatePayment(ctx context.Context, senderID uuid.UUID, in payment.CreatePaymentInput) (*payment.Receipt, error)
	GetTransaction(ctx context.Context, senderID, transactionID uuid.UUID) (*repository.TransactionRecord, error)
	GetTransactions(ctx context.Context, senderID uuid.UUID) ([]repository.TransactionRecord, error)
	GetPaymentStats(ctx context.Context, senderID uuid.UUID) (*payment.Stats, error)
}

type advisorService interface {
	Recommend(ctx context.Context, userID, vendorID uuid.UUID, amount decimal.Decimal, currency string) (*domain.Recommendation, error)
}

type PaymentHandler struct {
	payments paymentService
	advisor  advisorService
}

func NewPaymentHandler(payments paymentService, advisor advisorService) *PaymentHandler {
	return &PaymentHandler{payments: payments, advisor: advisor}
}

type createPaymentRequest struct {
	VendorID      string  `json:"vendor_id"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Method        *string `json:"method"`
	Description   *string `json:"description"`
	InvoiceNumber *string `json:"invoice_number"`
}

func (r createPaymentRequest) Validate() []FieldError {
	var errs []FieldError

	if _, err := uuid.Parse(r.VendorID); err != nil {
		errs = append(errs, FieldError{Field: "vendor_id", Message: "must be a valid id"})
	}

	if amount, err := decimal.NewFromString(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
	} else if !amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	if len(r.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter currency code"})
	}

	if r.Method != nil && !domain.PaymentType(strings.ToUpper(*r.Method)).IsValid() {
		errs = append(errs, FieldError{Field: "method", Message: "must be SWIFT, WIRE, ACH, SEPA or USDC"})
	}

	return errs
}

type recommendRequest struct {
	VendorID string `json:"vendor_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func (r recommendRequest) Validate() []FieldError {
	var errs []FieldError

	if _, err := uuid.Parse(r.VendorID); err != nil {
		errs = append(errs, FieldError{Field: "vendor_id", Message: "must be a valid id"})
	}

	if amount, err := decimal.NewFromString(r.Amount); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a decimal number"})
	} else if !amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	if len(r.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter currency code"})
	}

	return errs
}

type transactionDTO struct {
	ID            uuid.UUID        `json:"id"`
	VendorID      uuid.UUID        `json:"vendor_id"`
	VendorName    string           `json:"vendor_name"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	Type          string           `json:"type"`
	Description   *string          `json:"description,omitempty"`
	InvoiceNumber *string          `json:"invoice_number,omitempty"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	Fee           *decimal.Decimal `json:"fee,omitempty"`
	AdvisoryText  *string          `json:"advisory_text,omitempty"`
	RailPaymentID *string          `json:"rail_payment_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

func toTransactionDTO(t repository.TransactionRecord) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		VendorID:      t.VendorID,
		VendorName:    t.VendorName,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Status:        string(t.Status),
		Type:          string(t.Type),
		Description:   t.Description,
		InvoiceNumber: t.InvoiceNumber,
		ExchangeRate:  t.ExchangeRate,
		Fee:           t.Fee,
		AdvisoryText:  t.AdvisoryText,
		RailPaymentID: t.RailPaymentID,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

func toTransactionDTOs(records []repository.TransactionRecord) []transactionDTO {
	dtos := make([]transactionDTO, 0, len(records))
	for _, t := range records {
		dtos = append(dtos, toTransactionDTO(t))
	}
	return dtos
}

type receiptDTO struct {
	Transaction   transactionDTO `json:"transaction"`
	RailPaymentID string         `json:"rail_payment_id"`
	RailStatus    string         `json:"rail_status"`
	PaymentLink   *string        `json:"payment_link,omitempty"`
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	vendorID, _ := uuid.Parse(req.VendorID)
	amount, _ := decimal.NewFromString(req.Amount)

	var method *domain.PaymentType
	if req.Method != nil {
		m := domain.PaymentType(strings.ToUpper(*req.Method))
		method = &m
	}

	receipt, err := h.payments.CreatePayment(r.Context(), userID, payment.CreatePaymentInput{
		VendorID:      vendorID,
		Amount:        amount,
		Currency:      strings.ToUpper(req.Currency),
		Method:        method,
		Description:   req.Description,
		InvoiceNumber: req.InvoiceNumber,
	})
	if err != nil {
		log.Warn("payment creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, receiptDTO{
		Transaction:   toTransactionDTO(receipt.Transaction),
		RailPaymentID: receipt.RailPaymentID,
		RailStatus:    receipt.RailStatus,
		PaymentLink:   receipt.PaymentLink,
	})
}

func (h *PaymentHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	vendorID, _ := uuid.Parse(req.VendorID)
	amount, _ := decimal.NewFromString(req.Amount)

	rec, err := h.advisor.Recommend(r.Context(), userID, vendorID, amount, strings.ToUpper(req.Currency))
	if err != nil {
		log.Warn("recommendation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, rec)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	transactionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	record, err := h.payments.GetTransaction(r.Context(), userID, transactionID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(*record))
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	records, err := h.payments.GetTransactions(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction list failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTOs(records))
}

type typeBreakdownDTO struct {
	Type   string          `json:"type"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type paymentStatsDTO struct {
	TotalTransactions  int64              `json:"total_transactions"`
	TotalAmountSent    decimal.Decimal    `json:"total_amount_sent"`
	TotalSavings       decimal.Decimal    `json:"total_savings"`
	ByType             []typeBreakdownDTO `json:"by_type"`
	RecentTransactions []transactionDTO   `json:"recent_transactions"`
}

func toTypeBreakdownDTOs(breakdown []repository.TypeBreakdown) []typeBreakdownDTO {
	dtos := make([]typeBreakdownDTO, 0, len(breakdown))
	for _, b := range breakdown {
		dtos = append(dtos, typeBreakdownDTO{Type: string(b.Type), Count: b.Count, Amount: b.Sum})
	}
	return dtos
}

func (h *PaymentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	stats, err := h.payments.GetPaymentStats(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment stats failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, paymentStatsDTO{
		TotalTransactions:  stats.TotalTransactions,
		TotalAmountSent:    stats.TotalAmountSent,
		TotalSavings:       stats.TotalSavings,
		ByType:             toTypeBreakdownDTOs(stats.ByType),
		RecentTransactions: toTransactionDTOs(stats.RecentTransactions),
	})
}
