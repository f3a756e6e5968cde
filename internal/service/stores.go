package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorpay/vendorpay-backend/internal/domain"
	"github.com/vendorpay/vendorpay-backend/internal/repository"
)

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, upd repository.UserUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type vendorStore interface {
	Create(ctx context.Context, v *domain.Vendor) error
	GetByOwner(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Vendor, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	ListCryptoByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	Update(ctx context.Context, userID, vendorID uuid.UUID, upd domain.VendorUpdate) (*domain.Vendor, error)
	Delete(ctx context.Context, userID, vendorID uuid.UUID) error
}

type bankAccountStore interface {
	Create(ctx context.Context, a *domain.BankAccount) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.BankAccount, error)
}

type walletStore interface {
	Create(ctx context.Context, w *domain.Wallet) error
	VendorWalletExists(ctx context.Context, address, network string) (bool, error)
	UserWalletExists(ctx context.Context, userID uuid.UUID, address, network string) (bool, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
}

type paymentMethodStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PaymentMethod, error)
}

type transactionStore interface {
	ListBySender(ctx context.Context, senderID uuid.UUID, limit int) ([]repository.TransactionRecord, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]repository.TransactionRecord, error)
}

type statsStore interface {
	CountVendors(ctx context.Context, userID uuid.UUID) (total, acceptingCrypto int64, err error)
	CountTransactions(ctx context.Context, senderID uuid.UUID) (int64, error)
	SumCompletedAmount(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error)
	SumSavings(ctx context.Context, senderID uuid.UUID) (decimal.Decimal, error)
	TransactionsByType(ctx context.Context, senderID uuid.UUID) ([]repository.TypeBreakdown, error)
}
