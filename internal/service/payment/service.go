package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/logging"
	"github.com/vendorpay/vendorpay-backend/internal/rail"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
)

type vendorRepo interface {
	GetByOwner(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Vendor, error)
}

type transactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetForSender(ctx context.Context, senderID, transactionID uuid.UUID) (*repository.TransactionRecord, error)
	ListBySender(ctx context.Context, senderID uuid.UUID, limit int) ([]repository.TransactionRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, completedAt *time.Time) error
}

type paymentMethodRepo interface {
	FindOrCreate(ctx context.Context, userID uuid.UUID, methodType domain.PaymentType, name string) (*domain.PaymentMethod, error)
}

type fxOptimizationRepo interface {
	Create(ctx context.Context, f *domain.FXOptimization) error
}

type statsRepo interface {
	CountTransactions(ctx context.Context, senderID uuid.UUID) (int64, error)
	SumCompletedAmount(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error)
	SumSavings(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error)
	TransactionsByType(ctx context.Context, senderID uuid.UUID) ([]repository.TypeBreakdown, error)
}

type railClient interface {
	CheckRecipientStatus(ctx context.Context, email string) (*rail.RecipientStatus, error)
	CreatePayment(ctx context.Context, req rail.PaymentRequest) (*rail.Payment, error)
	InviteRecipient(ctx context.Context, req rail.InviteRequest) (*rail.Invite, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*rail.Payment, error)
}

type recommender interface {
	Recommend(ctx context.Context, userID, vendorID uuid.UUID, amount decimal.Decimal, currency string) (*domain.Recommendation, error)
}

// Service drives the payment workflow from vendor lookup to settled receipt.
type Service struct {
	vendors        vendorRepo
	transactions   transactionRepo
	paymentMethods paymentMethodRepo
	optimizations  fxOptimizationRepo
	stats          statsRepo
	rail           railClient
	advisor        recommender
}

func NewService(
	vendors vendorRepo,
	transactions transactionRepo,
	paymentMethods paymentMethodRepo,
	optimizations fxOptimizationRepo,
	stats statsRepo,
	railClient railClient,
	advisor recommender,
) *Service {
	return &Service{
		vendors:        vendors,
		transactions:   transactions,
		paymentMethods: paymentMethods,
		optimizations:  optimizations,
		stats:          stats,
		rail:           railClient,
		advisor:        advisor,
	}
}

type CreatePaymentInput struct {
	VendorID      uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Method        *domain.PaymentType
	Description   *string
	InvoiceNumber *string
}

// Receipt is what the caller gets back after a payment has been submitted to
// the rail and recorded locally.
type Receipt struct {
	Transaction   repository.TransactionRecord
	RailPaymentID string
	RailStatus    string
	PaymentLink   *string
}

func (s *Service) CreatePayment(ctx context.Context, senderID uuid.UUID, in CreatePaymentInput) (*Receipt, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("CreatePayment: %w", domain.ErrInvalidAmount)
	}
	if in.Currency == "" {
		return nil, fmt.Errorf("CreatePayment: %w", domain.ErrInvalidCurrency)
	}
	if in.Method != nil && !in.Method.IsValid() {
		return nil, fmt.Errorf("CreatePayment: %w", domain.ErrInvalidRequest)
	}

	vendor, err := s.vendors.GetByOwner(ctx, senderID, in.VendorID)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	var (
		method       domain.PaymentType
		advisoryText *string
	)
	if in.Method != nil {
		method = *in.Method
	} else {
		rec, err := s.advisor.Recommend(ctx, senderID, in.VendorID, in.Amount, in.Currency)
		if err != nil {
			return nil, fmt.Errorf("CreatePayment: %w", err)
		}
		method = rec.BestOption.Method
		advisoryText = &rec.AdvisoryText
	}

	s.inviteIfNeeded(ctx, vendor, method)

	description := "Payment to " + vendor.Name
	if in.Description != nil && *in.Description != "" {
		description = *in.Description
	}

	railPayment, err := s.rail.CreatePayment(ctx, rail.PaymentRequest{
		Amount:         in.Amount,
		Currency:       in.Currency,
		RecipientEmail: vendor.Email,
		Method:         method,
		Description:    description,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	paymentMethod, err := s.paymentMethods.FindOrCreate(ctx, senderID, method, methodDisplayName(method))
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:              uuid.New(),
		SenderID:        senderID,
		VendorID:        vendor.ID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		Status:          domain.MapRailStatus(railPayment.Status),
		Type:            method,
		Description:     &description,
		InvoiceNumber:   in.InvoiceNumber,
		ExchangeRate:    &railPayment.ExchangeRate,
		Fee:             &railPayment.Fee,
		AdvisoryText:    advisoryText,
		RailPaymentID:   &railPayment.ID,
		PaymentMethodID: &paymentMethod.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	if railPayment.Savings != nil {
		s.recordOptimization(ctx, tx, railPayment, advisoryText)
	}

	return &Receipt{
		Transaction:   repository.TransactionRecord{Transaction: *tx, VendorName: vendor.Name},
		RailPaymentID: railPayment.ID,
		RailStatus:    railPayment.Status,
		PaymentLink:   railPayment.PaymentLink,
	}, nil
}

// inviteIfNeeded offers rail onboarding to crypto recipients that are not
// registered yet. Failures are logged and swallowed; the payment proceeds.
func (s *Service) inviteIfNeeded(ctx context.Context, vendor *domain.Vendor, method domain.PaymentType) {
	if method != domain.PaymentTypeUSDC {
		return
	}
	log := logging.FromContext(ctx)

	status, err := s.rail.CheckRecipientStatus(ctx, vendor.Email)
	if err != nil {
		log.Warn("recipient status check failed, skipping invite", "vendor_id", vendor.ID, "error", err)
		return
	}
	if status.Registered {
		return
	}

	_, err = s.rail.InviteRecipient(ctx, rail.InviteRequest{
		Email:   vendor.Email,
		Name:    vendor.Name,
		Message: "You have an incoming payment. Join to receive it instantly.",
	})
	if err != nil {
		log.Warn("recipient invite failed", "vendor_id", vendor.ID, "error", err)
		return
	}
	log.Info("recipient invited to payment rail", "vendor_id", vendor.ID)
}

func (s *Service) recordOptimization(ctx context.Context, tx *domain.Transaction, railPayment *rail.Payment, advisoryText *string) {
	reasoning := fmt.Sprintf("%s recommended by system", tx.Type)
	if advisoryText != nil && *advisoryText != "" {
		reasoning = *advisoryText
	}

	err := s.optimizations.Create(ctx, &domain.FXOptimization{
		ID:                uuid.New(),
		TransactionID:     tx.ID,
		OptimalMethod:     tx.Type,
		PredictedRate:     railPayment.ExchangeRate,
		SavingsAmount:     railPayment.Savings.Amount,
		SavingsPercentage: railPayment.Savings.Percentage,
		Reasoning:         reasoning,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to record fx optimization", "transaction_id", tx.ID, "error", err)
	}
}

// GetTransaction returns a sender-scoped transaction, reconciling its status
// with the rail first when the stored status is not terminal.
func (s *Service) GetTransaction(ctx context.Context, senderID, transactionID uuid.UUID) (*repository.TransactionRecord, error) {
	record, err := s.transactions.GetForSender(ctx, senderID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}

	if record.Status.IsTerminal() || record.RailPaymentID == nil {
		return record, nil
	}

	railPayment, err := s.rail.GetPaymentStatus(ctx, *record.RailPaymentID)
	if err != nil {
		logging.FromContext(ctx).Warn("status reconciliation failed, returning stored transaction",
			"transaction_id", record.ID, "error", err)
		return record, nil
	}

	status := domain.MapRailStatus(railPayment.Status)
	if status == record.Status {
		return record, nil
	}

	var completedAt *time.Time
	if status == domain.TransactionStatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}
	if err := s.transactions.UpdateStatus(ctx, record.ID, status, completedAt); err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}

	record.Status = status
	if completedAt != nil {
		record.CompletedAt = completedAt
	}
	return record, nil
}

func (s *Service) GetTransactions(ctx context.Context, senderID uuid.UUID) ([]repository.TransactionRecord, error) {
	records, err := s.transactions.ListBySender(ctx, senderID, 0)
	if err != nil {
		return nil, fmt.Errorf("GetTransactions: %w", err)
	}
	return records, nil
}

type Stats struct {
	TotalTransactions  int64
	TotalAmountSent    decimal.Decimal
	TotalSavings       decimal.Decimal
	ByType             []repository.TypeBreakdown
	RecentTransactions []repository.TransactionRecord
}

func (s *Service) GetPaymentStats(ctx context.Context, senderID uuid.UUID) (*Stats, error) {
	count, err := s.stats.CountTransactions(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentStats: %w", err)
	}
	totalSent, err := s.stats.SumCompletedAmount(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentStats: %w", err)
	}
	savings, err := s.stats.SumSavings(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentStats: %w", err)
	}
	byType, err := s.stats.TransactionsByType(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentStats: %w", err)
	}
	recent, err := s.transactions.ListBySender(ctx, senderID, 5)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentStats: %w", err)
	}

	return &Stats{
		TotalTransactions:  count,
		TotalAmountSent:    totalSent,
		TotalSavings:       savings,
		ByType:             byType,
		RecentTransactions: recent,
	}, nil
}

func methodDisplayName(method domain.PaymentType) string {
	switch method {
	case domain.PaymentTypeUSDC:
		return "USDC Stablecoin"
	case domain.PaymentTypeSWIFT:
		return "SWIFT Bank Transfer"
	default:
		return string(method) + " Payment"
	}
}
